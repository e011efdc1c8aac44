package inputmodel

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/go-logr/logr"

	"github.com/reoring/inputmodel/rules"
	"github.com/reoring/inputmodel/types"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry sets the registry used to resolve RefModel names.
func WithRegistry(r *Registry) Option {
	return func(c *Compiler) {
		if r != nil {
			c.reg = r
		}
	}
}

// WithLogger sets the logger. Compilation summaries and deferred task
// failures are logged at V(1).
func WithLogger(l logr.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// Compiler turns authored models into Compiled processors. Results are
// memoized by model identity, so compiling the same node twice, or a node
// shared by several parents, yields the same *Compiled.
//
// A Compiler is safe for concurrent use.
type Compiler struct {
	mu    sync.Mutex
	reg   *Registry
	log   logr.Logger
	store map[Model]*Compiled
}

// NewCompiler returns a Compiler resolving references against
// DefaultRegistry unless WithRegistry says otherwise.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		reg:   DefaultRegistry,
		log:   logr.Discard(),
		store: make(map[Model]*Compiled),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile compiles m and everything reachable from it. Authoring mistakes
// are reported as *ConfigError and leave the memo store untouched.
func (c *Compiler) Compile(m Model) (*Compiled, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &session{c: c}
	out, err := s.compile(m, "")
	if err != nil {
		for _, k := range s.created {
			delete(c.store, k)
		}
		return nil, err
	}
	if len(s.created) > 0 {
		c.log.V(1).Info("compiled model", "kind", out.Kind().String(), "nodes", len(s.created))
	}
	return out, nil
}

// MustCompile is Compile that panics on error.
func (c *Compiler) MustCompile(m Model) *Compiled {
	out, err := c.Compile(m)
	if err != nil {
		panic(err)
	}
	return out
}

var defaultCompiler = NewCompiler()

// Compile compiles m with the package-level Compiler backed by
// DefaultRegistry.
func Compile(m Model) (*Compiled, error) { return defaultCompiler.Compile(m) }

// MustCompile is Compile that panics on error.
func MustCompile(m Model) *Compiled { return defaultCompiler.MustCompile(m) }

// Compiled is the derived, processor-bearing form of a model node.
type Compiled struct {
	kind    Kind
	log     logr.Logger
	meta    *metaInfo
	isMeta  bool
	inner   *Compiled // target of a Meta wrapper
	process processFunc

	// value
	tags     []typeCheck
	strict   bool
	coerce   bool
	ruleArgs map[string]any
	checks   []namedCheck
	validate []ValidateFunc
	converts []ConvertFunc

	// object
	props         []compiledProp
	propIndex     map[string]int
	behaviors     []Behavior
	baseConstruct ConstructFunc
	constructs    []ConstructFunc
	moreProps     bool

	// array
	item     *Compiled
	minLen   *int
	maxLen   *int
	exactLen *int

	// anyOf
	candidates []compiledCandidate
}

type processFunc func(ctx context.Context, s slot, p Path, sc *scope) error

type metaInfo struct {
	optional   bool
	def        any
	hasDefault bool
	nullable   bool
}

type typeCheck struct {
	tag   string
	match types.Predicate
}

type namedCheck struct {
	name string
	run  rules.Check
}

type compiledProp struct {
	name string
	node *Compiled
}

type compiledCandidate struct {
	name string
	node *Compiled
}

// Kind reports the node kind. Meta wrappers report the kind they decorate.
func (c *Compiled) Kind() Kind { return c.kind }

// Optional reports the resolved presence settings: the node's own Meta, the
// wrapped Meta when it declares neither, or for AnyOf the first candidate
// carrying one.
func (c *Compiled) Optional() (optional bool, def any, hasDefault bool) {
	if c.meta == nil {
		return false, nil, false
	}
	return c.meta.optional, c.meta.def, c.meta.hasDefault
}

// Nullable reports whether null is accepted.
func (c *Compiled) Nullable() bool {
	for n := c; n != nil; n = n.inner {
		if n.meta != nil && n.meta.nullable {
			return true
		}
	}
	return false
}

func (c *Compiled) def() *Compiled {
	n := c
	for n.inner != nil {
		n = n.inner
	}
	return n
}

// Property returns the compiled model of an object property, inherited ones
// included.
func (c *Compiled) Property(name string) (*Compiled, bool) {
	d := c.def()
	i, ok := d.propIndex[name]
	if !ok {
		return nil, false
	}
	return d.props[i].node, true
}

// Properties lists property names in processing order.
func (c *Compiled) Properties() []string {
	d := c.def()
	out := make([]string, len(d.props))
	for i, p := range d.props {
		out[i] = p.name
	}
	return out
}

// Item returns the element model of an array, or nil.
func (c *Compiled) Item() *Compiled { return c.def().item }

// Candidates lists the resolved candidate names of an AnyOf node.
func (c *Compiled) Candidates() []string {
	d := c.def()
	out := make([]string, len(d.candidates))
	for i, cand := range d.candidates {
		out[i] = cand.name
	}
	return out
}

// session tracks nodes created by one Compile call. openNodes holds the AnyOf and
// Meta nodes still being compiled; reaching one of them again before an
// object or array intervenes would recurse forever at request time.
type session struct {
	c         *Compiler
	created   []Model
	openNodes map[*Compiled]bool
}

func (s *session) open(cm *Compiled) {
	if s.openNodes == nil {
		s.openNodes = make(map[*Compiled]bool)
	}
	s.openNodes[cm] = true
}

func (s *session) done(cm *Compiled) { delete(s.openNodes, cm) }

func (s *session) pending(cm *Compiled) bool { return s.openNodes[cm] }

func (s *session) remember(m Model, cm *Compiled) {
	cm.log = s.c.log
	cm.process = func(ctx context.Context, sl slot, p Path, sc *scope) error {
		return cm.run(ctx, sl, p, sc, false)
	}
	s.c.store[m] = cm
	s.created = append(s.created, m)
}

func (s *session) resolve(m Model, at string) (Model, error) {
	var seen map[string]bool
	for {
		r, ok := m.(*RefModel)
		if !ok {
			return m, nil
		}
		if r == nil {
			return nil, configErr(at, "nil reference")
		}
		if seen[r.Name] {
			return nil, configErr(at, "reference cycle through %q", r.Name)
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[r.Name] = true
		next, ok := s.c.reg.Lookup(r.Name)
		if !ok {
			return nil, configErr(at, "unknown model reference %q", r.Name)
		}
		m = next
	}
}

func (s *session) compile(m Model, at string) (*Compiled, error) {
	if m == nil {
		return nil, configErr(at, "missing model")
	}
	m, err := s.resolve(m, at)
	if err != nil {
		return nil, err
	}
	if cm, ok := s.c.store[m]; ok {
		return cm, nil
	}
	switch n := m.(type) {
	case *ValueModel:
		if n != nil {
			return s.compileValue(n, at)
		}
	case *ObjectModel:
		if n != nil {
			return s.compileObject(n, at)
		}
	case *ArrayModel:
		if n != nil {
			return s.compileArray(n, at)
		}
	case *AnyOfModel:
		if n != nil {
			return s.compileAnyOf(n, at)
		}
	case *MetaModel:
		if n != nil {
			return s.compileMeta(n, at)
		}
	default:
		return nil, configErr(at, "cannot classify %T", m)
	}
	return nil, configErr(at, "nil %T", m)
}

func (s *session) compileMeta(n *MetaModel, at string) (*Compiled, error) {
	cm := &Compiled{isMeta: true, meta: &metaInfo{
		optional:   n.Optional,
		def:        n.Default,
		hasDefault: n.HasDefault,
		nullable:   n.Nullable,
	}}
	s.remember(n, cm)
	s.open(cm)
	inner, err := s.compile(n.Model, at)
	if err != nil {
		return nil, err
	}
	if s.pending(inner) {
		return nil, configErr(at, "model refers to itself without an enclosing object or array")
	}
	if !n.Optional && !n.HasDefault && inner.meta != nil {
		cm.meta.optional = inner.meta.optional
		cm.meta.def = inner.meta.def
		cm.meta.hasDefault = inner.meta.hasDefault
	}
	cm.inner = inner
	cm.kind = inner.kind
	s.done(cm)
	return cm, nil
}

func (s *session) compileValue(n *ValueModel, at string) (*Compiled, error) {
	cm := &Compiled{kind: KindValue}
	s.remember(n, cm)
	d, err := s.flattenValue(n, at, nil)
	if err != nil {
		return nil, err
	}
	if len(d.types) == 0 {
		return nil, configErr(at, "value model declares no type")
	}
	for _, tag := range d.types {
		f, ok := types.Lookup(tag)
		if !ok {
			return nil, configErr(at, "unknown type tag %q", tag)
		}
		cm.tags = append(cm.tags, typeCheck{tag: tag, match: f(d.strict)})
	}
	names := make([]string, 0, len(d.rules))
	for name := range d.rules {
		names = append(names, name)
	}
	// rules run in name order so issue order is stable
	sort.Strings(names)
	for _, name := range names {
		chk, err := rules.Prepare(name, d.rules[name])
		if err != nil {
			return nil, &ConfigError{Path: at, Reason: "rule " + name, Err: err}
		}
		cm.checks = append(cm.checks, namedCheck{name: name, run: chk})
	}
	cm.strict = d.strict
	cm.coerce = !d.noCoerce
	cm.ruleArgs = d.rules
	cm.validate = d.validate
	cm.converts = d.converts
	return cm, nil
}

func (s *session) compileObject(n *ObjectModel, at string) (*Compiled, error) {
	cm := &Compiled{kind: KindObject}
	s.remember(n, cm)
	d, err := s.flattenObject(n, at, nil)
	if err != nil {
		return nil, err
	}
	cm.propIndex = make(map[string]int, len(d.props))
	for _, p := range d.props {
		child, err := s.compile(p.Model, at+".properties."+EscapeSegment(p.Name))
		if err != nil {
			return nil, err
		}
		cm.propIndex[p.Name] = len(cm.props)
		cm.props = append(cm.props, compiledProp{name: p.Name, node: child})
	}
	cm.behaviors = d.behaviors
	cm.baseConstruct = d.base
	cm.constructs = d.constructs
	cm.converts = d.converts
	cm.moreProps = d.moreProps
	return cm, nil
}

func (s *session) compileArray(n *ArrayModel, at string) (*Compiled, error) {
	for _, l := range []*int{n.MinLength, n.MaxLength, n.ExactLength} {
		if l != nil && *l < 0 {
			return nil, configErr(at, "negative array length %d", *l)
		}
	}
	cm := &Compiled{kind: KindArray, minLen: n.MinLength, maxLen: n.MaxLength, exactLen: n.ExactLength}
	if n.Convert != nil {
		cm.converts = []ConvertFunc{n.Convert}
	}
	s.remember(n, cm)
	item, err := s.compile(n.Item, at+".item")
	if err != nil {
		return nil, err
	}
	cm.item = item
	return cm, nil
}

func (s *session) compileAnyOf(n *AnyOfModel, at string) (*Compiled, error) {
	if len(n.Candidates) == 0 {
		return nil, configErr(at, "anyOf without candidates")
	}
	cm := &Compiled{kind: KindAnyOf}
	s.remember(n, cm)
	s.open(cm)
	seen := make(map[string]bool, len(n.Candidates))
	for i, cand := range n.Candidates {
		name := cand.Name
		if name == "" {
			name = strconv.Itoa(i)
		}
		if seen[name] {
			return nil, configErr(at, "duplicate candidate name %q", name)
		}
		seen[name] = true
		child, err := s.compile(cand.Model, at+".anyOf."+EscapeSegment(name))
		if err != nil {
			return nil, err
		}
		if s.pending(child) {
			return nil, configErr(at, "candidate %q refers back to its anyOf without an enclosing object or array", name)
		}
		cm.candidates = append(cm.candidates, compiledCandidate{name: name, node: child})
	}
	for _, cand := range cm.candidates {
		if cand.node.meta != nil {
			cm.meta = cand.node.meta
			break
		}
	}
	s.done(cm)
	return cm, nil
}

type valueDecl struct {
	types    []string
	strict   bool
	noCoerce bool
	rules    map[string]any
	validate []ValidateFunc
	converts []ConvertFunc
}

// flattenValue merges n with its ancestors. Own declarations win; validate
// and convert chains run ancestor first.
func (s *session) flattenValue(n *ValueModel, at string, chain map[Model]bool) (valueDecl, error) {
	d := valueDecl{
		types:    n.Types,
		strict:   n.StrictType,
		noCoerce: n.NoCoerce,
		rules:    make(map[string]any, len(n.Rules)),
	}
	if n.Extends != nil {
		if chain == nil {
			chain = make(map[Model]bool)
		}
		chain[n] = true
		at += ".extends"
		base, err := s.resolve(n.Extends, at)
		if err != nil {
			return d, err
		}
		bv, ok := base.(*ValueModel)
		if !ok || bv == nil {
			return d, configErr(at, "value model cannot extend %s", describe(base))
		}
		if chain[bv] {
			return d, configErr(at, "inheritance cycle")
		}
		anc, err := s.flattenValue(bv, at, chain)
		if err != nil {
			return d, err
		}
		if len(d.types) == 0 {
			d.types = anc.types
			d.strict = d.strict || anc.strict
		}
		d.noCoerce = d.noCoerce || anc.noCoerce
		for k, v := range anc.rules {
			d.rules[k] = v
		}
		d.validate = append(d.validate, anc.validate...)
		d.converts = append(d.converts, anc.converts...)
	}
	for k, v := range n.Rules {
		d.rules[k] = v
	}
	d.validate = append(d.validate, n.Validate...)
	if n.Convert != nil {
		d.converts = append(d.converts, n.Convert)
	}
	return d, nil
}

type objectDecl struct {
	props      []Property
	behaviors  []Behavior
	base       ConstructFunc
	constructs []ConstructFunc
	converts   []ConvertFunc
	moreProps  bool
}

// flattenObject merges n with its ancestors. Own properties, behaviors and
// base construct win over inherited ones; construct and convert chain
// ancestor first.
func (s *session) flattenObject(n *ObjectModel, at string, chain map[Model]bool) (objectDecl, error) {
	d := objectDecl{base: n.BaseConstruct, moreProps: n.MorePropsAllowed}
	own := make(map[string]bool, len(n.Properties))
	for _, p := range n.Properties {
		if p.Name == "" {
			return d, configErr(at, "property without name")
		}
		if own[p.Name] {
			return d, configErr(at, "duplicate property %q", p.Name)
		}
		own[p.Name] = true
		d.props = append(d.props, p)
	}
	for _, b := range n.Behaviors {
		if b.Attach == nil {
			return d, configErr(at, "behavior %q has no function", b.Name)
		}
	}
	if n.Extends != nil {
		if chain == nil {
			chain = make(map[Model]bool)
		}
		chain[n] = true
		at += ".extends"
		base, err := s.resolve(n.Extends, at)
		if err != nil {
			return d, err
		}
		bo, ok := base.(*ObjectModel)
		if !ok || bo == nil {
			return d, configErr(at, "object model cannot extend %s", describe(base))
		}
		if chain[bo] {
			return d, configErr(at, "inheritance cycle")
		}
		anc, err := s.flattenObject(bo, at, chain)
		if err != nil {
			return d, err
		}
		for _, p := range anc.props {
			if !own[p.Name] {
				d.props = append(d.props, p)
			}
		}
		d.behaviors = append(d.behaviors, anc.behaviors...)
		if d.base == nil {
			d.base = anc.base
		}
		d.constructs = append(d.constructs, anc.constructs...)
		d.converts = append(d.converts, anc.converts...)
		d.moreProps = d.moreProps || anc.moreProps
	}
	for _, b := range n.Behaviors {
		replaced := false
		for i := range d.behaviors {
			if b.Name != "" && d.behaviors[i].Name == b.Name {
				d.behaviors[i] = b
				replaced = true
				break
			}
		}
		if !replaced {
			d.behaviors = append(d.behaviors, b)
		}
	}
	if n.Construct != nil {
		d.constructs = append(d.constructs, n.Construct)
	}
	if n.Convert != nil {
		d.converts = append(d.converts, n.Convert)
	}
	return d, nil
}

func describe(m Model) string {
	switch m.(type) {
	case *ValueModel:
		return "a value model"
	case *ObjectModel:
		return "an object model"
	case *ArrayModel:
		return "an array model"
	case *AnyOfModel:
		return "an anyOf model"
	case *MetaModel:
		return "a meta model"
	}
	return fmt.Sprintf("%T", m)
}
