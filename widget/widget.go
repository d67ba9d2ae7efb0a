// Package widget keeps the client side view of a coin counter: the last
// server reading, a short activity log and a visible error message.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const MaxActivity = 5

var (
	ErrBusy         = errors.New("a request is already in progress")
	ErrInvalidInput = errors.New("enter a positive number")
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type Entry struct {
	Action string
	At     time.Time
	Amount string
}

// State is a copy of what the widget shows.
type State struct {
	Reading  Reading
	Activity []Entry
	Error    string
	Busy     bool
}

type Option func(*Widget)

func WithClock(clock Clock) Option {
	return func(w *Widget) {
		w.clock = clock
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.log = logger
	}
}

func New(source Source, options ...Option) *Widget {
	w := &Widget{
		source:  source,
		clock:   systemClock{},
		log:     log.Logger,
		reading: Reading{Total: decimal.Zero},
	}

	for _, option := range options {
		option(w)
	}

	return w
}

type Widget struct {
	mu       sync.Mutex
	source   Source
	clock    Clock
	log      zerolog.Logger
	reading  Reading
	activity []Entry
	err      string
	busy     bool
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	activity := make([]Entry, len(w.activity))
	copy(activity, w.activity)

	return State{
		Reading:  copyReading(w.reading),
		Activity: activity,
		Error:    w.err,
		Busy:     w.busy,
	}
}

// Load replaces the reading with the server's. A failure is logged and made
// visible, and the previous reading stays.
func (w *Widget) Load(ctx context.Context) error {
	if err := w.begin(); err != nil {
		return err
	}

	reading, err := w.source.Load(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to load counter")
		w.fail("Failed to load: " + err.Error())
		return err
	}

	w.succeed(reading, nil)
	return nil
}

// Submit validates input locally and sends it only when it is a positive
// number.
func (w *Widget) Submit(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)

	amount, err := ParseAmount(input)
	if err != nil {
		w.mu.Lock()
		w.err = "Please enter a positive number"
		w.mu.Unlock()
		return err
	}

	if err := w.begin(); err != nil {
		return err
	}

	reading, err := w.source.Submit(ctx, amount, input)
	if err != nil {
		w.log.Warn().Err(err).Str("input", input).Msg("submit failed")
		w.fail("Failed to " + w.source.Action() + ": " + err.Error())
		return err
	}

	w.succeed(reading, &Entry{Action: w.source.Action(), At: w.clock.Now(), Amount: input})
	return nil
}

func (w *Widget) Reset(ctx context.Context) error {
	if err := w.begin(); err != nil {
		return err
	}

	reading, err := w.source.Reset(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("reset failed")
		w.fail("Failed to reset: " + err.Error())
		return err
	}

	w.succeed(reading, &Entry{Action: "reset", At: w.clock.Now(), Amount: "0"})
	return nil
}

// ParseAmount accepts positive decimal input only.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidInput
	}

	return amount, nil
}

func (w *Widget) begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		w.err = "Please wait for the current request to finish"
		return ErrBusy
	}

	w.busy = true
	return nil
}

func (w *Widget) fail(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.busy = false
	w.err = message
}

func (w *Widget) succeed(reading Reading, entry *Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.busy = false
	w.err = ""
	w.reading = reading

	if entry != nil {
		w.activity = append([]Entry{*entry}, w.activity...)
		if len(w.activity) > MaxActivity {
			w.activity = w.activity[:MaxActivity]
		}
	}
}

func copyReading(reading Reading) Reading {
	if reading.Counts == nil {
		return reading
	}

	counts := make(map[string]int64, len(reading.Counts))
	for k, v := range reading.Counts {
		counts[k] = v
	}

	return Reading{Counts: counts, Total: reading.Total}
}
