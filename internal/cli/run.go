package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/mnightingale/csvproc"
	"github.com/mnightingale/csvproc/internal/config"
	"github.com/mnightingale/csvproc/source"
	"github.com/prometheus/client_golang/prometheus"
)

// Run decodes the configured input and writes the rows to out.
func Run(ctx context.Context, cfg *Config, out io.Writer, logger *slog.Logger) error {
	opts, encoding, err := resolveOptions(cfg)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	logger.Debug("Decoder options resolved.", "options", opts)

	rc, err := source.Open(cfg.InputPath, source.WithEncoding(encoding))
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	defer rc.Close()

	reg := prometheus.NewRegistry()
	metrics, err := csvproc.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	dec := csvproc.NewDecoder(opts, csvproc.WithLogger(logger), csvproc.WithMetrics(metrics))

	sink, err := newSink(cfg.Output, out, dec)
	if err != nil {
		return err
	}

	gate := newFlowGate(dec, cfg.Buffer)
	rows := make(chan csvproc.Row, cfg.Buffer)

	dec.OnHeader(func(h csvproc.Header) {
		logger.Debug("Header decoded.", "columns", len(h))
	})
	dec.OnRow(func(r csvproc.Row) {
		gate.queued()
		rows <- r
	})

	decodeErr := make(chan error, 1)
	go func() {
		defer close(rows)
		decodeErr <- dec.RunReader(ctx, rc)
	}()

	var writeErr error
	for r := range rows {
		if writeErr == nil {
			if writeErr = sink.write(r); writeErr != nil {
				// Stop decoding; keep draining so the pass can unwind.
				dec.End()
			}
		}
		gate.written()
	}

	if err := <-decodeErr; err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write output: %w", writeErr)
	}
	if err := sink.close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if ctx.Err() != nil {
		return &ExitError{Code: 130, Message: "interrupted"}
	}

	logSummary(logger, reg)
	return nil
}

// resolveOptions loads the settings file, if any, and applies the flag
// overrides on top of it.
func resolveOptions(cfg *Config) (csvproc.Options, string, error) {
	var (
		opts     csvproc.Options
		encoding string
	)

	if cfg.SettingsPath != "" {
		f, err := config.Load(cfg.SettingsPath)
		if err != nil {
			return opts, "", err
		}
		opts = f.Options
		encoding = f.Encoding
	}
	if cfg.Encoding != "" {
		encoding = cfg.Encoding
	}

	for name, value := range cfg.Overrides {
		if err := applyOverride(&opts, name, value); err != nil {
			return opts, "", fmt.Errorf("invalid -%s: %w", name, err)
		}
	}

	return opts, encoding, nil
}

func applyOverride(o *csvproc.Options, name, value string) error {
	var err error
	switch name {
	case "delimiter":
		o.Delimiter = value
	case "quote":
		o.Quote = value
	case "comments":
		o.SkipComments = value != ""
		o.CommentChar = value
	case "skip-lines":
		o.SkipLines, err = strconv.Atoi(value)
	case "max-row-bytes":
		o.MaxRowBytes, err = strconv.ParseInt(value, 10, 64)
	case "special-quotes":
		o.AllowSpecialQuotes, err = strconv.ParseBool(value)
	case "no-header":
		o.NoHeader, err = strconv.ParseBool(value)
	case "skip-empty":
		o.SkipEmptyLines, err = strconv.ParseBool(value)
	case "numbers":
		o.ParseNumbers, err = strconv.ParseBool(value)
	case "booleans":
		o.ParseBooleans, err = strconv.ParseBool(value)
	case "ltrim":
		o.LTrim, err = strconv.ParseBool(value)
	case "rtrim":
		o.RTrim, err = strconv.ParseBool(value)
	case "trim":
		o.Trim, err = strconv.ParseBool(value)
	case "objects":
		o.RowAsObject, err = strconv.ParseBool(value)
	case "strict":
		o.Strict, err = strconv.ParseBool(value)
	case "error-log":
		o.ErrorLog, err = strconv.ParseBool(value)
	default:
		err = errors.New("unknown option")
	}
	return err
}

// sink writes decoded rows in one output format.
type sink interface {
	write(r csvproc.Row) error
	close() error
}

func newSink(format string, out io.Writer, dec *csvproc.Decoder) (sink, error) {
	switch format {
	case "json":
		return &jsonSink{enc: json.NewEncoder(out)}, nil
	case "csv":
		return &csvSink{out: out, dec: dec}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

type jsonSink struct {
	enc *json.Encoder
}

func (s *jsonSink) write(r csvproc.Row) error {
	if r.IsObject() {
		m := make(map[string]any, len(r.Fields))
		for k, c := range r.Fields {
			m[k] = jsonValue(c)
		}
		return s.enc.Encode(m)
	}

	values := make([]any, len(r.Cells))
	for i, c := range r.Cells {
		values[i] = jsonValue(c)
	}
	return s.enc.Encode(values)
}

func (s *jsonSink) close() error { return nil }

// jsonValue maps a cell to a JSON encodable value. JSON has no Infinity or
// NaN, so those stay strings.
func jsonValue(c csvproc.Cell) any {
	if c.Type == csvproc.CellFloat && (math.IsInf(c.Float, 0) || math.IsNaN(c.Float)) {
		return c.String()
	}
	return c.Value()
}

// csvSink re-encodes rows with the decoder's settings. The encoder is
// created on the first row, once the header of the pass is known.
type csvSink struct {
	out io.Writer
	dec *csvproc.Decoder
	enc *csvproc.Encoder
}

func (s *csvSink) write(r csvproc.Row) error {
	if s.enc == nil {
		enc, err := csvproc.NewEncoder(s.out, s.dec.Settings(), csvproc.WithHeader(s.dec.Header()))
		if err != nil {
			return err
		}
		s.enc = enc
	}
	return s.enc.Write(r)
}

func (s *csvSink) close() error {
	if s.enc == nil {
		return nil
	}
	if err := s.enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(s.out, "\n")
	return err
}

// logSummary reports the decoder counters gathered during the run.
func logSummary(logger *slog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("Failed to gather decoder metrics.", "error", err)
		return
	}

	attrs := make([]any, 0, 2*len(families))
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		attrs = append(attrs, mf.GetName(), total)
	}
	logger.Info("Decode complete.", attrs...)
}
