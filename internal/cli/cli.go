package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Config is everything the command needs to run one decode.
type Config struct {
	InputPath    string
	SettingsPath string
	Encoding     string
	Output       string // "json" or "csv"
	Buffer       int    // rows buffered ahead of the writer before pausing
	LogFormat    string
	LogLevel     string

	// Overrides holds decoder flags that were set explicitly, applied on
	// top of the settings file.
	Overrides map[string]string
}

// overridable lists the decoder flags that can override the settings file.
var overridable = []string{
	"delimiter", "quote", "special-quotes", "comments", "skip-lines", "no-header",
	"skip-empty", "numbers", "booleans", "ltrim", "rtrim", "trim",
	"max-row-bytes", "objects", "strict", "error-log",
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("csvproc", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
csvproc - decode delimited text into JSON lines or normalized CSV.

Usage:
  csvproc [options] FILE

Arguments:
  FILE
    Path to the delimited text file. Files ending in .lz4 (or starting
    with an lz4 frame) are decompressed.

Options:
`)
		flagSet.PrintDefaults()
	}

	settingsFlag := flagSet.String("config", "", "Path to a .hcl or .yaml settings file.")
	encodingFlag := flagSet.String("encoding", "", "Source encoding: utf-8, utf-8-sig, latin1, windows-1252.")
	outputFlag := flagSet.String("output", "json", "Output format. Options: 'json' or 'csv'.")
	bufferFlag := flagSet.Int("buffer", 64, "Rows buffered ahead of the writer before decoding pauses.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	flagSet.String("delimiter", ",", "Cell delimiter.")
	flagSet.String("quote", `"`, "Quote marker used with -special-quotes.")
	flagSet.Bool("special-quotes", false, "Re-merge cells wrapped in the quote marker.")
	flagSet.String("comments", "", "Skip lines starting with this comment character.")
	flagSet.Int("skip-lines", 0, "Leading lines to consume; the first is the header.")
	flagSet.Bool("no-header", false, "Do not extract a header line.")
	flagSet.Bool("skip-empty", false, "Skip empty lines.")
	flagSet.Bool("numbers", false, "Coerce numeric cells to floats.")
	flagSet.Bool("booleans", false, "Coerce true/false cells to booleans.")
	flagSet.Bool("ltrim", false, "Trim the start of the first cell.")
	flagSet.Bool("rtrim", false, "Trim the end of the last cell.")
	flagSet.Bool("trim", false, "Trim every cell.")
	flagSet.Int64("max-row-bytes", 0, "Approximate row size limit in bytes. 0 uses the default.")
	flagSet.Bool("objects", false, "Emit rows keyed by header name. Implies -strict.")
	flagSet.Bool("strict", false, "Fail when a row's width differs from the header's.")
	flagSet.Bool("error-log", false, "Log decode failures.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "only one input file may be given"}
	}

	out := strings.ToLower(*outputFlag)
	if out != "json" && out != "csv" {
		return nil, false, &ExitError{Code: 2, Message: "invalid output: must be 'json' or 'csv'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *bufferFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid buffer: must be at least 1"}
	}

	overrides := make(map[string]string)
	flagSet.Visit(func(f *flag.Flag) {
		for _, name := range overridable {
			if f.Name == name {
				overrides[name] = f.Value.String()
			}
		}
	})
	slog.Debug("CLI parameter validation complete.")

	config := &Config{
		InputPath:    flagSet.Arg(0),
		SettingsPath: *settingsFlag,
		Encoding:     *encodingFlag,
		Output:       out,
		Buffer:       *bufferFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Overrides:    overrides,
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// NewLogger builds the process logger described by the config.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
