package switcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/switcherd/internal/errors"
	"github.com/jmylchreest/switcherd/internal/events"
	"github.com/jmylchreest/switcherd/internal/metrics"
)

// Session is a control session with one switcher.
//
// A Session is not safe for concurrent use. All methods must be called from a
// single control goroutine; only the connection handshake runs elsewhere, and
// its result is applied by CompleteConnect (or Tick) on the control goroutine.
type Session struct {
	logger *slog.Logger
	dialer Dialer
	bus    *events.Bus

	status         Status
	address        string
	device         Device
	catalog        *Catalog
	state          ControlState
	bridge         bridge
	pending        *PendingConnect
	productName    string
	connectionID   string
	connectedAt    time.Time
	lastDisconnect DisconnectReason
}

// PendingConnect is an in-flight connection attempt.
type PendingConnect struct {
	address string
	started time.Time
	done    chan struct{}
	result  handshake
}

// Done is closed when the handshake has finished, successfully or not.
func (p *PendingConnect) Done() <-chan struct{} {
	return p.done
}

// Address is the address being connected to.
func (p *PendingConnect) Address() string {
	return p.address
}

// handshake is the outcome of the background connect work.
type handshake struct {
	device   Device
	inputs   []Input
	program  InputID
	preview  InputID
	position float64
	err      error
}

// NewSession creates a disconnected session. initial seeds the control state
// (configured input names and transition position) until the first connect.
func NewSession(logger *slog.Logger, dialer Dialer, initial ControlState) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		logger: logger,
		dialer: dialer,
		state:  initial,
		status: StatusDisconnected,
	}
}

// SetEventBus sets the bus that session events are published to.
func (s *Session) SetEventBus(bus *events.Bus) {
	s.bus = bus
}

// StartConnect begins connecting to address. The handshake (dial plus input
// enumeration plus initial reads) runs on a background goroutine; the caller
// must pass the returned PendingConnect to CompleteConnect once Done is closed,
// or keep calling Tick, which completes it.
//
// It fails with ErrInvalidState unless the session is Disconnected; in that
// case no background work is started.
func (s *Session) StartConnect(ctx context.Context, address string) (*PendingConnect, error) {
	if address == "" {
		return nil, errors.InvalidInputf("switcher address is required")
	}
	if s.status != StatusDisconnected {
		return nil, errors.InvalidStatef("cannot connect to %s while %s", address, s.status)
	}

	p := &PendingConnect{
		address: address,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	s.pending = p
	s.status = StatusConnecting
	s.address = address

	s.logger.Info("session: connecting", "address", address)
	s.publish(events.SessionConnecting, SessionEvent{Address: address})

	go runHandshake(ctx, s.dialer, s.logger, p)
	return p, nil
}

// runHandshake must not touch Session state; it only fills in p.result.
func runHandshake(ctx context.Context, dialer Dialer, logger *slog.Logger, p *PendingConnect) {
	var dev Device
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session: panic during handshake", "address", p.address, "recover", r)
			if dev != nil {
				closeAfterPanic(logger, p.address, dev)
			}
			p.result = handshake{err: fmt.Errorf("panic during handshake: %v", r)}
		}
	}()

	dev, err := dialer.Dial(ctx, p.address)
	if err != nil {
		p.result.err = err
		return
	}

	res := handshake{device: dev}
	if res.inputs, err = dev.Inputs(ctx); err == nil {
		if res.program, err = dev.ProgramInput(ctx); err == nil {
			if res.preview, err = dev.PreviewInput(ctx); err == nil {
				res.position, err = dev.TransitionPosition(ctx)
			}
		}
	}
	if err != nil {
		if cerr := dev.Close(); cerr != nil {
			logger.Debug("session: close after failed handshake", "address", p.address, "error", cerr)
		}
		p.result = handshake{err: err}
		return
	}
	p.result = res
}

func closeAfterPanic(logger *slog.Logger, address string, dev Device) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session: panic closing device", "address", address, "recover", r)
		}
	}()
	if err := dev.Close(); err != nil {
		logger.Debug("session: close after handshake panic", "address", address, "error", err)
	}
}

// CompleteConnect applies the result of a finished handshake. On failure the
// session returns to Disconnected with its control state untouched and an
// ErrConnectionFailed error is returned.
func (s *Session) CompleteConnect(p *PendingConnect) error {
	if p == nil || p != s.pending {
		return errors.InvalidStatef("no matching connection attempt in progress")
	}
	select {
	case <-p.done:
	default:
		return errors.InvalidStatef("connection to %s still in progress", p.address)
	}
	s.pending = nil

	r := p.result
	if r.err != nil {
		s.status = StatusDisconnected
		metrics.ObserveConnect(false, time.Since(p.started))
		s.publish(events.SessionConnectFailed, SessionEvent{Address: p.address, Error: r.err.Error()})
		return errors.LogErrorAndReturn(s.logger,
			errors.ConnectionFailedf("connect to %s: %w", p.address, r.err),
			"session: connect failed",
			"address", p.address,
		)
	}

	s.device = r.device
	s.catalog = NewCatalog(r.inputs)
	s.productName = r.device.ProductName()
	s.state.ProgramInputID = r.program
	s.state.PreviewInputID = r.preview
	s.state.TransitionPosition = r.position
	s.resolveName(PropertyProgram, r.program)
	s.resolveName(PropertyPreview, r.preview)
	s.bridge.start(s.state)

	s.status = StatusConnected
	s.connectionID = uuid.NewString()
	s.connectedAt = time.Now()
	s.lastDisconnect = DisconnectNone

	metrics.ObserveConnect(true, time.Since(p.started))
	metrics.ObserveConnected(s.catalog.Len())

	s.logger.Info("session: connected",
		slog.String("address", s.address),
		slog.String("product", s.productName),
		slog.String("connection_id", s.connectionID),
		slog.Int("inputs", s.catalog.Len()),
		slog.String("program", s.state.ProgramInputName),
		slog.String("preview", s.state.PreviewInputName),
	)
	s.publish(events.SessionConnected, s.sessionEvent())
	return nil
}

// Connect starts a connection attempt and waits for it. If ctx ends first,
// ctx.Err() is returned and the attempt stays in flight; the next Tick
// completes it.
func (s *Session) Connect(ctx context.Context, address string) error {
	p, err := s.StartConnect(ctx, address)
	if err != nil {
		return err
	}
	select {
	case <-p.Done():
		return s.CompleteConnect(p)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect tears the session down at the caller's request. It is a no-op
// when already disconnected and is rejected while a connect is in flight.
func (s *Session) Disconnect() error {
	switch s.status {
	case StatusDisconnected:
		return nil
	case StatusConnecting:
		return errors.InvalidStatef("cannot disconnect while connecting to %s", s.address)
	}
	s.teardown(DisconnectRequested)
	return nil
}

// Tick completes a finished connection attempt or, when connected, probes the
// device and refreshes the program and preview ids, then re-derives their
// display names. A failed device call tears the session down and returns an
// ErrLinkLost error. Tick is a no-op otherwise.
func (s *Session) Tick(ctx context.Context) error {
	if s.status == StatusConnecting && s.pending != nil {
		select {
		case <-s.pending.done:
			return s.CompleteConnect(s.pending)
		default:
			return nil
		}
	}
	if s.status != StatusConnected {
		return nil
	}

	start := time.Now()
	if err := s.device.Probe(ctx); err != nil {
		return s.deviceFailure(ctx, "probe", err)
	}
	program, err := s.device.ProgramInput(ctx)
	if err != nil {
		return s.deviceFailure(ctx, "get program input", err)
	}
	preview, err := s.device.PreviewInput(ctx)
	if err != nil {
		return s.deviceFailure(ctx, "get preview input", err)
	}
	metrics.ObserveTick(time.Since(start))

	// Ids first, names after, so readers never see a name from a stale id.
	programChanged, previewChanged := s.bridge.sample(program, preview)
	s.state.ProgramInputID = program
	s.state.PreviewInputID = preview
	if programChanged {
		s.resolveName(PropertyProgram, program)
		s.publish(events.ProgramChanged, s.propertyEvent(PropertyProgram))
	}
	if previewChanged {
		s.resolveName(PropertyPreview, preview)
		s.publish(events.PreviewChanged, s.propertyEvent(PropertyPreview))
	}
	return nil
}

// SetProgramInput sets the program input by display name.
func (s *Session) SetProgramInput(ctx context.Context, name string) error {
	return s.setInputName(ctx, PropertyProgram, name)
}

// SetPreviewInput sets the preview input by display name.
func (s *Session) SetPreviewInput(ctx context.Context, name string) error {
	return s.setInputName(ctx, PropertyPreview, name)
}

// setInputName records name and, when connected and changed, pushes the
// resolved input id. An unknown name is recorded but never sent.
func (s *Session) setInputName(ctx context.Context, property, name string) error {
	field := s.nameField(property)
	prev := *field
	*field = name

	if s.status != StatusConnected || !s.bridge.nameChanged(property, name) {
		return nil
	}

	id, ok := s.catalog.Lookup(name)
	if !ok {
		metrics.ObserveLookupMiss("name")
		s.logger.Debug("session: input name not in catalog, not sent", "property", property, "name", name)
		return nil
	}

	var err error
	if property == PropertyProgram {
		err = s.device.SetProgramInput(ctx, id)
	} else {
		err = s.device.SetPreviewInput(ctx, id)
	}
	metrics.ObserveDeviceWrite(property, err)
	if err != nil {
		if ctx.Err() != nil {
			*field = prev
			s.bridge.syncName(property, prev)
			return ctx.Err()
		}
		return s.deviceFailure(ctx, "set "+property+" input", err)
	}

	s.logger.Debug("session: input pushed", "property", property, "name", name, "id", id)
	return nil
}

// SetTransitionPosition sets the transition lever position. The value is
// passed through to the device unclamped.
func (s *Session) SetTransitionPosition(ctx context.Context, position float64) error {
	prev := s.state.TransitionPosition
	s.state.TransitionPosition = position

	if s.status != StatusConnected || !s.bridge.positionChanged(position) {
		return nil
	}

	err := s.device.SetTransitionPosition(ctx, position)
	metrics.ObserveDeviceWrite(PropertyTransitionPosition, err)
	if err != nil {
		if ctx.Err() != nil {
			s.state.TransitionPosition = prev
			s.bridge.position.prime(prev)
			return ctx.Err()
		}
		return s.deviceFailure(ctx, "set transition position", err)
	}

	s.publish(events.TransitionPositionChanged, s.propertyEvent(PropertyTransitionPosition))
	return nil
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// IsConnected reports whether the session is connected.
func (s *Session) IsConnected() bool {
	return s.status == StatusConnected
}

// State returns a copy of the control state. After a link loss it holds the
// last known values.
func (s *Session) State() ControlState {
	return s.state
}

// Catalog returns a snapshot of the current input catalog; empty unless connected.
func (s *Session) Catalog() []Input {
	return s.catalog.Inputs()
}

// LastDisconnect reports why the session last left Connected.
func (s *Session) LastDisconnect() DisconnectReason {
	return s.lastDisconnect
}

// Pending returns the in-flight connection attempt, or nil.
func (s *Session) Pending() *PendingConnect {
	return s.pending
}

// Snapshot returns a consistent view of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:         s.status,
		Address:        s.address,
		ProductName:    s.productName,
		ConnectionID:   s.connectionID,
		ConnectedAt:    s.connectedAt,
		LastDisconnect: s.lastDisconnect,
		State:          s.state,
		Inputs:         s.catalog.Inputs(),
	}
}

// resolveName derives a display name from a device-reported id. On a miss the
// name keeps its previous value.
func (s *Session) resolveName(property string, id InputID) {
	name, ok := s.catalog.Name(id)
	if !ok {
		metrics.ObserveLookupMiss("id")
		s.logger.Debug("session: input id not in catalog", "property", property, "id", id)
		return
	}
	*s.nameField(property) = name
	s.bridge.syncName(property, name)
}

func (s *Session) nameField(property string) *string {
	if property == PropertyProgram {
		return &s.state.ProgramInputName
	}
	return &s.state.PreviewInputName
}

// deviceFailure converts a failed device call into a link-loss teardown.
// Cancellation of the caller's context is not a link loss.
func (s *Session) deviceFailure(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.logger.Warn("session: link lost", "address", s.address, "op", op, "error", err)
	s.teardown(DisconnectLinkLost)
	return errors.LinkLostf("%s: %w", op, err)
}

// teardown stops the bridge, releases the device and clears the catalog.
// The control state keeps its last known values.
func (s *Session) teardown(reason DisconnectReason) {
	ev := s.sessionEvent()
	ev.Reason = reason.String()

	s.bridge.stop()
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			s.logger.Debug("session: device close failed", "address", s.address, "error", err)
		}
	}
	s.device = nil
	s.catalog = nil
	s.status = StatusDisconnected
	s.lastDisconnect = reason
	s.connectionID = ""

	metrics.ObserveDisconnect(reason.String())
	s.logger.Info("session: disconnected", "address", s.address, "reason", reason.String())

	if reason == DisconnectLinkLost {
		s.publish(events.SessionLinkLost, ev)
		return
	}
	s.publish(events.SessionDisconnected, ev)
}

func (s *Session) publish(t events.EventType, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.NewEvent(t, data))
}
