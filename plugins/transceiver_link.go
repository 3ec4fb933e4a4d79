package plugins

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/linht/adrv-manager/adrv903x"
)

// Link is an open register transport to the transceiver
type Link interface {
	adrv903x.RegisterPort
	Close() error
}

// Opener opens a new link for one operation
type Opener func() (Link, error)

type simLink struct {
	*adrv903x.RegisterFile
}

func (simLink) Close() error { return nil }

// SimOpener serves every operation from the same in-memory register file
func SimOpener(regs *adrv903x.RegisterFile) Opener {
	return func() (Link, error) {
		if regs == nil {
			return nil, errors.New("simulated register file is nil")
		}
		return simLink{regs}, nil
	}
}

// SPIOpener opens the SPI port and selects 4-wire mode on every operation
func SPIOpener(device string, speed uint32, retries uint64) Opener {
	return func() (Link, error) {
		dev, err := NewSPIDevice(device, speed, retries)
		if err != nil {
			return nil, err
		}
		if err := dev.Configure(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("failed to configure SPI interface: %w", err)
		}
		return dev, nil
	}
}

// Transceiver owns the formatter state of one device and serializes access
// to it. Links are transient: opened for each operation and released after.
type Transceiver struct {
	open      Opener
	transport string

	mu         sync.Mutex
	state      *adrv903x.State
	initial    adrv903x.State
	order      binary.ByteOrder
	resetHooks []func() error

	metrics *Metrics
	trace   *TraceHub
	log     *slog.Logger
}

// TransceiverOption configures a Transceiver
type TransceiverOption func(*Transceiver)

// WithTransport names the transport for status reports
func WithTransport(name string) TransceiverOption {
	return func(t *Transceiver) { t.transport = name }
}

// WithGainTableByteOrder sets the gain table memory byte order
func WithGainTableByteOrder(order binary.ByteOrder) TransceiverOption {
	return func(t *Transceiver) { t.order = order }
}

// WithResetHook adds a function run by Reset before the state is restored
func WithResetHook(fn func() error) TransceiverOption {
	return func(t *Transceiver) { t.resetHooks = append(t.resetHooks, fn) }
}

// WithMetrics counts register accesses and operations
func WithMetrics(m *Metrics) TransceiverOption {
	return func(t *Transceiver) { t.metrics = m }
}

// WithTrace publishes register accesses to hub
func WithTrace(hub *TraceHub) TransceiverOption {
	return func(t *Transceiver) { t.trace = hub }
}

// WithTransceiverLogger sets the logger handed to the device
func WithTransceiverLogger(l *slog.Logger) TransceiverOption {
	return func(t *Transceiver) { t.log = l }
}

// NewTransceiver creates a transceiver over open. state is copied so Reset
// can restore it.
func NewTransceiver(open Opener, state *adrv903x.State, opts ...TransceiverOption) (*Transceiver, error) {
	if open == nil {
		return nil, errors.New("transceiver needs a link opener")
	}
	if state == nil {
		return nil, errors.New("transceiver needs a device state")
	}

	t := &Transceiver{
		open:      open,
		transport: "custom",
		state:     state,
		initial:   *state,
		order:     binary.LittleEndian,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Transport returns the configured transport name
func (t *Transceiver) Transport() string {
	return t.transport
}

// Metrics returns the metrics collectors, or nil
func (t *Transceiver) Metrics() *Metrics {
	return t.metrics
}

// Trace returns the trace hub, or nil
func (t *Transceiver) Trace() *TraceHub {
	return t.trace
}

// State returns a copy of the current device state
func (t *Transceiver) State() adrv903x.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.state
}

func (t *Transceiver) port(link Link) adrv903x.RegisterPort {
	var p adrv903x.RegisterPort = link
	if t.trace != nil {
		p = t.trace.wrap(p)
	}
	if t.metrics != nil {
		p = t.metrics.wrap(p)
	}
	return p
}

// WithLink runs fn with a freshly opened link
func (t *Transceiver) WithLink(fn func(Link) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	link, err := t.open()
	if err != nil {
		return err
	}
	defer link.Close()

	return fn(link)
}

// WithDevice runs fn with a device bound to a freshly opened link
func (t *Transceiver) WithDevice(fn func(*adrv903x.Device) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	link, err := t.open()
	if err != nil {
		return err
	}
	defer link.Close()

	dev, err := adrv903x.New(t.port(link), t.state,
		adrv903x.WithByteOrder(t.order),
		adrv903x.WithLogger(t.log),
	)
	if err != nil {
		return err
	}
	return fn(dev)
}

// Run is WithDevice plus logging and metrics under the operation name op
func (t *Transceiver) Run(op string, fn func(*adrv903x.Device) error) error {
	err := t.WithDevice(fn)
	if t.metrics != nil {
		t.metrics.ObserveOperation(op, err)
	}
	if err != nil {
		t.log.Warn("Transceiver operation failed", "operation", op, "error", err)
	} else {
		t.log.Debug("Transceiver operation done", "operation", op)
	}
	return err
}

// Reset runs the reset hooks and restores the state loaded from the profile
func (t *Transceiver) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, hook := range t.resetHooks {
		if err := hook(); err != nil {
			return fmt.Errorf("failed to reset transceiver: %w", err)
		}
	}
	*t.state = t.initial
	t.log.Info("Transceiver reset", "transport", t.transport)
	return nil
}

// Close releases the trace subscribers
func (t *Transceiver) Close() error {
	if t.trace != nil {
		t.trace.Close()
	}
	return nil
}
