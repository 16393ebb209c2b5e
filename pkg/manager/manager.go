// Package manager registers flows and routes inbound events to them: it
// loads session state around each dispatch, fires triggers for fresh events,
// continues in-flight flows, resolves scope priority, and finalizes finished
// sessions.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
)

// FinishCallback runs once per completed session, in registration order. The
// connector still holds the session's data map when callbacks run; it is
// cleared only after.
type FinishCallback func(ctx context.Context, c *flow.Connector) error

// IdentityRecorder ensures subject/channel identity records exist before a
// dispatch touches them. It is an external collaborator concern (analytics,
// relational models); the zero value of the Manager skips it.
type IdentityRecorder interface {
	EnsureUser(ctx context.Context, userID string) error
	EnsureChannel(ctx context.Context, channelID string) error
}

// Manager owns the ordered flow registry and a session store handle.
type Manager struct {
	flows    []*flow.Flow
	store    ports.Store
	keys     *keyLocks
	logger   *slog.Logger
	metrics  *observability.Metrics
	recorder IdentityRecorder

	prefix    string
	controls  flow.Controls
	callbacks []FinishCallback
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithLocker enables distributed per-key locking across replicas.
func WithLocker(locker ports.Locker) Option {
	return func(m *Manager) { m.keys = newKeyLocks(locker) }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithIdentityRecorder sets the identity bootstrap collaborator.
func WithIdentityRecorder(r IdentityRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithCommandPrefix sets the prefix command-shaped messages start with.
// Default "!".
func WithCommandPrefix(prefix string) Option {
	return func(m *Manager) { m.prefix = prefix }
}

// WithControls overrides the go-back/reload control tokens.
func WithControls(controls flow.Controls) Option {
	return func(m *Manager) { m.controls = controls }
}

// OnFinish appends callbacks invoked when a session completes.
func OnFinish(callbacks ...FinishCallback) Option {
	return func(m *Manager) { m.callbacks = append(m.callbacks, callbacks...) }
}

// New builds a Manager over the store and the ordered flow list. Flow IDs
// must be unique, and control tokens must not look like commands.
func New(store ports.Store, flows []*flow.Flow, opts ...Option) (*Manager, error) {
	m := &Manager{
		flows:    flows,
		store:    store,
		keys:     newKeyLocks(nil),
		logger:   logging.NewNop(),
		prefix:   "!",
		controls: flow.DefaultControls,
	}
	for _, opt := range opts {
		opt(m)
	}

	seen := map[string]bool{}
	for _, f := range flows {
		if seen[f.ID()] {
			return nil, fmt.Errorf("duplicate flow %q", f.ID())
		}
		seen[f.ID()] = true
	}
	for _, token := range []string{m.controls.GoBack, m.controls.Reload} {
		if token == "" {
			return nil, fmt.Errorf("control tokens must not be empty")
		}
		if strings.HasPrefix(token, m.prefix) {
			return nil, fmt.Errorf("control token %q collides with command prefix %q", token, m.prefix)
		}
	}
	return m, nil
}

// Dispatch routes one inbound event through exactly one flow. Dispatches for
// the same session key are serialized; a failed dispatch leaves the
// previously persisted state untouched.
func (m *Manager) Dispatch(ctx context.Context, ev flow.Event) error {
	started := time.Now()
	scope := ev.Scope()
	logger := m.logger.With(
		"dispatch_id", uuid.NewString(),
		"event", string(ev.Kind),
		"user_id", ev.UserID,
		"channel_id", ev.ChannelID,
		"scope", string(scope),
	)

	if err := m.ensureIdentities(ctx, ev); err != nil {
		return err
	}

	var keys []string
	if ev.ChannelID != "" {
		keys = append(keys, ports.ChannelKey(ev.ChannelID).String())
	}
	if ev.UserID != "" {
		keys = append(keys, ports.UserKey(ev.UserID).String())
	}

	err := m.keys.withLock(ctx, keys, func(ctx context.Context) error {
		c, err := m.loadConnector(ctx, ev)
		if err != nil {
			return err
		}
		return m.dispatch(ctx, c, scope, logger)
	})

	result := "ok"
	if err != nil {
		result = "error"
	}
	m.metrics.Dispatch(string(scope), result, time.Since(started))
	return err
}

func (m *Manager) ensureIdentities(ctx context.Context, ev flow.Event) error {
	if m.recorder == nil {
		return nil
	}
	if ev.UserID != "" {
		if err := m.recorder.EnsureUser(ctx, ev.UserID); err != nil {
			return fmt.Errorf("ensure user %s: %w", ev.UserID, err)
		}
	}
	if ev.ChannelID != "" {
		if err := m.recorder.EnsureChannel(ctx, ev.ChannelID); err != nil {
			return fmt.Errorf("ensure channel %s: %w", ev.ChannelID, err)
		}
	}
	return nil
}

// loadConnector builds the per-dispatch connector with both scope states and
// data maps loaded.
func (m *Manager) loadConnector(ctx context.Context, ev flow.Event) (*flow.Connector, error) {
	c := flow.NewConnector(ev)
	c.CommandPrefix = m.prefix
	c.Controls = m.controls

	if ev.UserID != "" {
		key := ports.UserKey(ev.UserID)
		token, err := m.store.GetState(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load user state: %w", err)
		}
		data, err := m.store.GetData(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load user data: %w", err)
		}
		c.UserState, c.UserData = token, data
	}
	if ev.ChannelID != "" {
		key := ports.ChannelKey(ev.ChannelID)
		token, err := m.store.GetState(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load channel state: %w", err)
		}
		data, err := m.store.GetData(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load channel data: %w", err)
		}
		c.ChannelState, c.ChannelData = token, data
	}
	return c, nil
}

func (m *Manager) dispatch(ctx context.Context, c *flow.Connector, scope flow.Scope, logger *slog.Logger) error {
	// Trigger phase: the first flow whose trigger fires wins.
	for _, f := range m.flows {
		ok, err := f.CheckTriggers(ctx, c, scope)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		logger.Info("trigger fired", "flow", f.ID())
		out, err := f.Run(ctx, c, nil)
		if err != nil {
			return err
		}
		if out == flow.Finished {
			if err := m.finishFlow(ctx, c, f); err != nil {
				return err
			}
		}
		return m.persist(ctx, c)
	}

	// Continuation phase: find the flows owning an in-flight session.
	var candidates []*flow.Flow
	for _, f := range m.flows {
		if f.Check(ctx, c, scope) {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return m.unmatched(ctx, c, scope, logger)
	}

	// Scope priority: in a shared context, channel-scoped flows win over
	// user-scoped ones.
	if len(candidates) > 1 && !c.Private {
		var channelScoped []*flow.Flow
		for _, f := range candidates {
			if f.Scope() == flow.ScopeChannel {
				channelScoped = append(channelScoped, f)
			}
		}
		if len(channelScoped) > 0 {
			candidates = channelScoped
		}
	}

	f := candidates[0]
	logger.Info("continuing flow", "flow", f.ID())
	out, err := f.Step(ctx, c)
	if err != nil {
		return err
	}
	if out == flow.Finished {
		if err := m.finishFlow(ctx, c, f); err != nil {
			return err
		}
	}
	return m.persist(ctx, c)
}

// unmatched handles an event that fired no trigger and continues no flow.
func (m *Manager) unmatched(ctx context.Context, c *flow.Connector, scope flow.Scope, logger *slog.Logger) error {
	if c.IsCommand() {
		if scope == flow.ScopeUser {
			// Clear the session so the subject is not stuck resuming a flow
			// with an unrecognized command.
			if err := m.store.DeleteState(ctx, ports.UserKey(c.UserID)); err != nil {
				return err
			}
			return fmt.Errorf("unhandled command %q: %w", c.Text, flow.ErrCannotProcess)
		}
		logger.Warn("unhandled out-of-scope command", "text", c.Text)
		return nil
	}

	// A token nobody claims on a continuable event is corrupt state, never a
	// silent fresh start.
	if token := c.State(scope); token != "" && (c.Event == flow.KindMessage || c.Event == flow.KindButtonClick) {
		frames, err := flow.DecodeToken(token)
		if err != nil {
			return &flow.CorruptStateError{Token: token, Err: err}
		}
		if !m.knownFlow(frames[0].Flow) {
			return &flow.CorruptStateError{Token: token, Flow: frames[0].Flow}
		}
	}

	if scope == flow.ScopeUser {
		if c.Event == flow.KindMessage {
			// Plain chatter with no session in flight: reset quietly.
			key := ports.UserKey(c.UserID)
			if err := m.store.DeleteState(ctx, key); err != nil {
				return err
			}
			return m.store.DeleteData(ctx, key)
		}
		return fmt.Errorf("event %s matched nothing: %w", c.Event, flow.ErrCannotProcess)
	}

	// Ambient channel traffic is expected to be mostly irrelevant.
	logger.Debug("dropping out-of-scope event")
	return nil
}

func (m *Manager) knownFlow(id string) bool {
	for _, f := range m.flows {
		if f.ID() == id {
			return true
		}
	}
	return false
}

// finishFlow finalizes a completed session: persisted state and data are
// cleared, finish callbacks run while the connector still holds the data,
// then the connector is emptied so the trailing persist writes nothing back.
func (m *Manager) finishFlow(ctx context.Context, c *flow.Connector, f *flow.Flow) error {
	key := m.scopeKey(c, f.Scope())

	if err := m.store.DeleteState(ctx, key); err != nil {
		return err
	}
	if err := m.store.DeleteData(ctx, key); err != nil {
		return err
	}

	for _, cb := range m.callbacks {
		if err := cb(ctx, c); err != nil {
			return fmt.Errorf("finish callback: %w", err)
		}
	}

	c.SetState(f.Scope(), "")
	if f.Scope() == flow.ScopeChannel {
		c.ChannelData = nil
	} else {
		c.UserData = nil
	}

	m.metrics.FlowFinished(f.ID())
	return nil
}

func (m *Manager) scopeKey(c *flow.Connector, scope flow.Scope) ports.Key {
	if scope == flow.ScopeChannel {
		return ports.ChannelKey(c.ChannelID)
	}
	return ports.UserKey(c.UserID)
}

// persist writes back whatever state and data the connector holds after the
// flow ran. It runs only for dispatches that completed without error, so a
// failed dispatch never overwrites the previous position.
func (m *Manager) persist(ctx context.Context, c *flow.Connector) error {
	if c.UserID != "" {
		if err := m.persistScope(ctx, ports.UserKey(c.UserID), c.UserState, c.UserData); err != nil {
			return err
		}
	}
	if c.ChannelID != "" {
		if err := m.persistScope(ctx, ports.ChannelKey(c.ChannelID), c.ChannelState, c.ChannelData); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) persistScope(ctx context.Context, key ports.Key, token string, data flow.Data) error {
	if token == "" {
		if err := m.store.DeleteState(ctx, key); err != nil {
			return err
		}
	} else if err := m.store.SetState(ctx, key, token); err != nil {
		return err
	}

	if data == nil {
		return m.store.DeleteData(ctx, key)
	}
	return m.store.SetData(ctx, key, data)
}
