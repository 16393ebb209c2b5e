package flow

import "fmt"

// Builder assembles a Flow from an explicit ordered list of named entries.
// Construction is validated: names must be unique and non-empty, and a flow
// must hold at least one entry.
type Builder struct {
	flow *Flow
	err  error
}

// Option configures a flow at construction time.
type Option func(*Flow)

// WithScope sets the scope the flow's sessions are keyed by. Nested flows
// always inherit the scope of their root flow, whatever was configured.
func WithScope(scope Scope) Option {
	return func(f *Flow) { f.scope = scope }
}

// WithTriggers registers the predicates that may start the flow fresh.
func WithTriggers(triggers ...Trigger) Option {
	return func(f *Flow) { f.triggers = append(f.triggers, triggers...) }
}

// WithSubstitutions sets static template bindings merged into every dispatch.
func WithSubstitutions(subs map[string]any) Option {
	return func(f *Flow) { f.substitutions = subs }
}

// WithReset lists data keys cleared whenever the flow starts fresh.
func WithReset(keys ...string) Option {
	return func(f *Flow) { f.resetOnRun = append(f.resetOnRun, keys...) }
}

// WithLoop configures the loop source and the substitution name the current
// element is bound under.
func WithLoop(source LoopSource, bindAs string) Option {
	return func(f *Flow) {
		f.loop = source
		f.loopVar = bindAs
	}
}

// New starts building a flow. The name becomes the token frame identifier and
// must be unique across all flows registered with one manager.
func New(name string, opts ...Option) *Builder {
	f := &Flow{
		id:      name,
		scope:   ScopeUser,
		index:   map[string]int{},
		loopVar: "item",
	}
	for _, opt := range opts {
		opt(f)
	}
	b := &Builder{flow: f}
	if name == "" {
		b.err = fmt.Errorf("flow name must not be empty")
	}
	return b
}

// Step appends a named leaf step.
func (b *Builder) Step(name string, s Step) *Builder {
	return b.add(entry{name: name, step: s})
}

// SubFlow appends a named nested flow.
func (b *Builder) SubFlow(name string, sub *Flow) *Builder {
	return b.add(entry{name: name, sub: sub})
}

func (b *Builder) add(e entry) *Builder {
	if b.err != nil {
		return b
	}
	if e.name == "" {
		b.err = fmt.Errorf("flow %q: step name must not be empty", b.flow.id)
		return b
	}
	if _, dup := b.flow.index[e.name]; dup {
		b.err = fmt.Errorf("flow %q: duplicate step name %q", b.flow.id, e.name)
		return b
	}
	if e.step == nil && e.sub == nil {
		b.err = fmt.Errorf("flow %q: step %q is nil", b.flow.id, e.name)
		return b
	}
	b.flow.index[e.name] = len(b.flow.entries)
	b.flow.entries = append(b.flow.entries, e)
	return b
}

// Build validates and returns the immutable flow.
func (b *Builder) Build() (*Flow, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.flow.entries) == 0 {
		return nil, fmt.Errorf("flow %q has no steps", b.flow.id)
	}
	// Sessions nest within a single token under one key, so sub-flows run
	// under the root's scope.
	b.flow.propagateScope(b.flow.scope)
	return b.flow, nil
}

// MustBuild is Build for wiring code where a construction error is a bug.
func (b *Builder) MustBuild() *Flow {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Flow) propagateScope(scope Scope) {
	f.scope = scope
	for _, e := range f.entries {
		if e.sub != nil {
			e.sub.propagateScope(scope)
		}
	}
}
