// Package csvproc decodes delimited text into rows, delivering them to
// subscribed handlers one line at a time with cooperative pause and resume.
package csvproc

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Decoder drives decode passes over a text buffer and dispatches header,
// row, error and finish notifications. One pass runs at a time.
type Decoder struct {
	logger    *slog.Logger
	metrics   *Metrics
	events    emitter
	maxSource int

	mu       sync.Mutex
	settings Settings
	header   Header
	state    State
	running  bool
	paused   bool
	ended    bool
	wake     chan struct{} // non-nil while a pass is suspended
	pass     *errgroup.Group
}

type DecoderOption func(d *Decoder)

// NewDecoder returns a Decoder using the Settings resolved from cfg.
func NewDecoder(cfg Options, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		logger:   slog.Default(),
		settings: Resolve(cfg),
		pass:     new(errgroup.Group),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithLogger sets the logger used for pass lifecycle and, when ErrorLog is
// set, decode failures.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records pass activity in m.
func WithMetrics(m *Metrics) DecoderOption {
	return func(d *Decoder) {
		d.metrics = m
	}
}

// On subscribes h to ev. Handlers for the same event run in subscription
// order.
func (d *Decoder) On(ev Event, h Handler) *Decoder {
	d.events.on(ev, h)
	return d
}

// OnHeader subscribes to the header event.
func (d *Decoder) OnHeader(fn func(Header)) *Decoder {
	return d.On(EventHeader, func(n Notification) { fn(n.Header) })
}

// OnRow subscribes to the row event.
func (d *Decoder) OnRow(fn func(Row)) *Decoder {
	return d.On(EventRow, func(n Notification) { fn(n.Row) })
}

// OnError subscribes to the error event.
func (d *Decoder) OnError(fn func(*DecodeError)) *Decoder {
	return d.On(EventError, func(n Notification) { fn(n.Err) })
}

// OnFinish subscribes to the finish event.
func (d *Decoder) OnFinish(fn func()) *Decoder {
	return d.On(EventFinish, func(Notification) { fn() })
}

// Settings returns the settings the next pass will use.
func (d *Decoder) Settings() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// Reconfigure replaces the settings wholesale. It fails with
// ErrPassInFlight while a pass is running.
func (d *Decoder) Reconfigure(cfg Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return ErrPassInFlight
	}
	d.settings = Resolve(cfg)
	return nil
}

// Header returns the header extracted by the most recent pass. In object
// mode it is available here even though no header event is emitted.
func (d *Decoder) Header() Header {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.header
}

// State returns the current controller state.
func (d *Decoder) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Process starts a decode pass over text in the background and returns
// immediately. Decode failures are reported through the error event, not
// returned; the only error is ErrPassInFlight.
func (d *Decoder) Process(text string) error {
	s, pass, err := d.begin()
	if err != nil {
		return err
	}

	d.mu.Lock()
	g := d.newPassGroup()
	d.mu.Unlock()

	g.Go(func() error {
		if err := d.run(context.Background(), pass, s, textSource(text)); err != nil {
			return err
		}
		return nil
	})
	return nil
}

// newPassGroup replaces the group owning the background pass; a group
// remembers its first error, so each pass gets its own.
func (d *Decoder) newPassGroup() *errgroup.Group {
	d.pass = new(errgroup.Group)
	return d.pass
}

// Wait blocks until the pass started by Process is over and returns the
// decode error that terminated it, if any.
func (d *Decoder) Wait() error {
	d.mu.Lock()
	g := d.pass
	d.mu.Unlock()
	return g.Wait()
}

// Run decodes text on the calling goroutine. Cancelling ctx has the effect
// of End. Handlers that Pause a synchronous pass must arrange for Resume or
// End to be called from another goroutine.
func (d *Decoder) Run(ctx context.Context, text string) error {
	s, pass, err := d.begin()
	if err != nil {
		return err
	}
	if err := d.run(ctx, pass, s, textSource(text)); err != nil {
		return err
	}
	return nil
}

// Pause asks the pass to suspend before the next row. The first row of a
// pass is never delayed.
func (d *Decoder) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

// Resume releases a paused pass, or cancels a pause that has not taken
// effect yet.
func (d *Decoder) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.paused = false
	d.wakeLocked()
}

// End stops the decoder for good: no notification is delivered after End
// returns, from this pass or any later one. Work already inside a handler
// is not interrupted. End is idempotent.
func (d *Decoder) End() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ended = true
	d.state = StateEnded
	d.wakeLocked()
}

func (d *Decoder) wakeLocked() {
	if d.wake != nil {
		close(d.wake)
		d.wake = nil
	}
}

func (d *Decoder) isEnded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ended
}

// begin claims the decoder for one pass.
func (d *Decoder) begin() (Settings, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return Settings{}, "", ErrPassInFlight
	}
	d.running = true
	if !d.ended {
		d.state = StateRunning
	}
	return d.settings, uuid.NewString(), nil
}

// parseState is the per pass position of the controller.
type parseState struct {
	index int // index into the data lines
	line  int // 1-based input line of the current row
}

// source yields the text buffer of a pass.
type source func() (string, error)

func textSource(text string) source {
	return func() (string, error) { return text, nil }
}

func (d *Decoder) run(ctx context.Context, pass string, s Settings, src source) *DecodeError {
	// AfterFunc fires asynchronously, so a context that is already done has
	// to end the decoder before anything is read or emitted.
	if ctx.Err() != nil {
		d.End()
	}
	stop := context.AfterFunc(ctx, d.End)
	defer stop()

	logger := d.logger.With("pass", pass)
	logger.Debug("Decode pass started.")

	final, derr := d.decode(ctx, s, src)

	d.mu.Lock()
	d.running = false
	d.paused = false
	if d.ended {
		final = StateEnded
	}
	d.state = final
	d.mu.Unlock()

	d.metrics.passDone(final)
	logger.Debug("Decode pass stopped.", "state", final)

	if derr == nil {
		return nil
	}
	if s.ErrorLog {
		if derr.Kind == EmptyInput {
			logger.Warn(derr.Error())
		} else {
			logger.Error(derr.Error(), "line", derr.Line)
		}
	}
	return derr
}

// decode is one pass: split, consume the header, then deliver rows in line
// order until the input is exhausted, a row fails or the decoder is ended.
func (d *Decoder) decode(ctx context.Context, s Settings, src source) (State, *DecodeError) {
	if d.isEnded() {
		return StateEnded, nil
	}

	text, err := src()
	if err != nil {
		return d.fail(newDecodeError(UnreadableSource, 0, err))
	}

	lines := splitLines(text)
	if len(lines) == 0 || lines[0] == "" {
		return d.fail(newDecodeError(EmptyInput, 0, nil))
	}

	header, rows := consumeHeader(lines, s)
	d.mu.Lock()
	d.header = header
	d.mu.Unlock()
	if s.AnnounceHeader() && len(header) > 0 {
		d.emit(Notification{Event: EventHeader, Header: header})
	}

	var ps parseState
	for ps.index = range rows {
		if !d.boundary(ctx, ps.index) {
			return StateEnded, nil
		}
		ps.line = rows[ps.index].num

		tokens := strings.Split(rows[ps.index].text, s.Delimiter)
		if s.SkipComments && strings.HasPrefix(tokens[0], s.CommentChar) {
			d.metrics.commentSkipped()
			continue
		}
		if s.AllowSpecialQuotes {
			tokens = resolveQuotes(tokens, s.Quote, s.Delimiter)
		}
		if err := validateRow(tokens, header, ps.line, s); err != nil {
			return d.fail(err)
		}

		cells := coerceRow(tokens, s)
		if s.RowAsObject && isEmptySentinel(cells) {
			continue
		}
		d.emit(Notification{Event: EventRow, Row: materialize(cells, header, ps.line, s.RowAsObject)})
		d.metrics.rowDelivered()
	}

	if d.isEnded() {
		return StateEnded, nil
	}
	d.emit(Notification{Event: EventFinish})
	return StateFinished, nil
}

// boundary is the suspension point between rows. It blocks while the
// decoder is paused and reports false once it has been ended.
func (d *Decoder) boundary(ctx context.Context, index int) bool {
	if ctx.Err() != nil {
		d.End()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for index > 0 && d.paused && !d.ended {
		wake := make(chan struct{})
		d.wake = wake
		d.state = StatePaused
		d.mu.Unlock()

		d.metrics.paused()
		<-wake

		d.mu.Lock()
		if !d.ended {
			d.state = StateRunning
		}
	}
	return !d.ended
}

func (d *Decoder) fail(err *DecodeError) (State, *DecodeError) {
	d.metrics.decodeError(err.Kind)
	d.emit(Notification{Event: EventError, Err: err})
	return StateAborted, err
}

func (d *Decoder) emit(n Notification) {
	d.events.dispatch(n, d.isEnded)
}

func isEmptySentinel(cells []Cell) bool {
	return len(cells) == 0 || (cells[0].Type == CellString && cells[0].Str == "")
}
