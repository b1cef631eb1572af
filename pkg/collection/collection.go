package collection

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-drift/uikit/pkg/changeset"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
	"github.com/go-drift/uikit/pkg/state"
)

// ReloadPhase is the state of a Collection's reload cycle.
type ReloadPhase int

const (
	// Idle means no batch is in flight.
	Idle ReloadPhase = iota
	// Reloading means a batch is in flight and nothing is queued behind it.
	Reloading
	// ReloadingPending means a batch is in flight and at least one request
	// arrived meanwhile; exactly one follow-up cycle will run.
	ReloadingPending
)

func (p ReloadPhase) String() string {
	switch p {
	case Reloading:
		return "reloading"
	case ReloadingPending:
		return "reloadingPending"
	default:
		return "idle"
	}
}

// Option configures a Collection.
type Option func(*Collection)

// WithCache measures leaves against cache instead of [sizing.Default].
func WithCache(cache *sizing.Cache) Option {
	return func(c *Collection) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithLogger routes reload diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDispatcher schedules work onto the UI thread: the first reload after
// Attach and every batch completion. The default runs work immediately.
func WithDispatcher(dispatch func(func())) Option {
	return func(c *Collection) {
		if dispatch != nil {
			c.dispatch = dispatch
		}
	}
}

// WithScrollPosition binds the content offset to position.
func WithScrollPosition(position *state.Observable[geometry.Point]) Option {
	return func(c *Collection) { c.scrollPosition = position }
}

// WithSectionInset overrides the layout's section inset per section
// identifier. Returning false keeps the default.
func WithSectionInset(fn func(Identifier) (geometry.EdgeInsets, bool)) Option {
	return func(c *Collection) { c.sectionInset = fn }
}

// WithMinimumLineSpacing overrides the layout's line spacing per section
// identifier. Returning false keeps the default.
func WithMinimumLineSpacing(fn func(Identifier) (float64, bool)) Option {
	return func(c *Collection) { c.lineSpacing = fn }
}

// WithMinimumInteritemSpacing overrides the layout's interitem spacing per
// section identifier. Returning false keeps the default.
func WithMinimumInteritemSpacing(fn func(Identifier) (float64, bool)) Option {
	return func(c *Collection) { c.interitemSpacing = fn }
}

// OnWillDisplay registers a handler for items about to appear.
func OnWillDisplay(fn func(IndexPath)) Option {
	return func(c *Collection) { c.willDisplay = fn }
}

// OnSelect registers a handler for item selection.
func OnSelect(fn func(IndexPath)) Option {
	return func(c *Collection) { c.didSelect = fn }
}

// OnDeselect registers a handler for item deselection.
func OnDeselect(fn func(IndexPath)) Option {
	return func(c *Collection) { c.didDeselect = fn }
}

// OnHighlight registers a handler for item highlight.
func OnHighlight(fn func(IndexPath)) Option {
	return func(c *Collection) { c.didHighlight = fn }
}

// OnUnhighlight registers a handler for the end of an item highlight.
func OnUnhighlight(fn func(IndexPath)) Option {
	return func(c *Collection) { c.didUnhighlight = fn }
}

// OnShouldHighlight gates highlighting. Without it every item highlights.
func OnShouldHighlight(fn func(IndexPath) bool) Option {
	return func(c *Collection) { c.shouldHighlight = fn }
}

type registration struct {
	kind ElementKind
	key  string
}

// Collection reconciles a declared section tree with a RenderTarget.
//
// Collection is NOT thread-safe. Use WithDispatcher when the target
// completes batches off the UI thread.
type Collection struct {
	nodes    []SectionNode
	target   RenderTarget
	attached bool
	// generation invalidates completions of batches issued before Detach.
	generation int

	phase   ReloadPhase
	pending int

	// sections is what the data source reports; it changes as a batch is
	// issued. applied is the last snapshot whose batch completed and is the
	// base of the next diff.
	sections []ResolvedSection
	applied  []ResolvedSection

	registered map[registration]struct{}
	subscribed map[reactive]struct{}

	cache    *sizing.Cache
	logger   *slog.Logger
	dispatch func(func())

	scrollPosition   *state.Observable[geometry.Point]
	sectionInset     func(Identifier) (geometry.EdgeInsets, bool)
	lineSpacing      func(Identifier) (float64, bool)
	interitemSpacing func(Identifier) (float64, bool)

	willDisplay     func(IndexPath)
	didSelect       func(IndexPath)
	didDeselect     func(IndexPath)
	didHighlight    func(IndexPath)
	didUnhighlight  func(IndexPath)
	shouldHighlight func(IndexPath) bool
}

// New creates a collection over a section-level tree.
func New(nodes []SectionNode, opts ...Option) *Collection {
	c := &Collection{
		nodes:      nodes,
		registered: make(map[registration]struct{}),
		subscribed: make(map[reactive]struct{}),
		cache:      sizing.Default,
		logger:     slog.Default(),
		dispatch:   func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBody creates a collection with a single section, identifier 0.
func NewBody(body []BodyNode, opts ...Option) *Collection {
	return New([]SectionNode{Section{ID: 0, Body: body}}, opts...)
}

// Attach binds the collection to target and schedules the first reload.
// Attaching an attached collection does nothing.
func (c *Collection) Attach(target RenderTarget) {
	if target == nil {
		panic("collection: Attach with nil target")
	}
	if c.attached {
		return
	}
	c.target = target
	c.attached = true
	target.SetDataSource(c)
	gen := c.generation
	c.dispatch(func() {
		if c.attached && gen == c.generation {
			c.ReloadData()
		}
	})
}

// Detach unbinds the target, releases every map subscription, and forgets
// all snapshots. A batch still in flight completes without effect.
func (c *Collection) Detach() {
	if !c.attached {
		return
	}
	c.target.SetDataSource(nil)
	for m := range c.subscribed {
		m.Unsubscribe()
	}
	clear(c.subscribed)
	clear(c.registered)
	c.target = nil
	c.attached = false
	c.generation++
	c.phase = Idle
	c.pending = 0
	c.sections = nil
	c.applied = nil
}

// Attached reports whether the collection is bound to a target.
func (c *Collection) Attached() bool { return c.attached }

// Phase returns the current reload phase.
func (c *Collection) Phase() ReloadPhase { return c.phase }

// Pending returns how many requests arrived during the in-flight batch.
// However many there are, they produce one follow-up cycle.
func (c *Collection) Pending() int { return c.pending }

// Sections returns the sections the data source currently reports.
func (c *Collection) Sections() []ResolvedSection {
	return append([]ResolvedSection(nil), c.sections...)
}

// ReloadData re-flattens the tree and applies the difference to the target.
//
// Before Attach it does nothing. While a batch is in flight the request is
// queued, and all queued requests run as one cycle against the state current
// when that batch completes.
func (c *Collection) ReloadData() {
	if !c.attached {
		return
	}
	switch c.phase {
	case Reloading:
		c.phase = ReloadingPending
		c.pending = 1
		c.logger.Debug("collection reload queued", "pending", c.pending)
		return
	case ReloadingPending:
		c.pending++
		c.logger.Debug("collection reload queued", "pending", c.pending)
		return
	}
	c.phase = Reloading
	c.runCycle()
}

func (c *Collection) runCycle() {
	next := c.flatten()

	if len(c.applied) == 0 {
		c.setSections(next)
		c.logger.Debug("collection full reload", "sections", len(next))
		c.target.ReloadData()
		c.finishCycle(next)
		return
	}

	plan := c.plan(c.applied, next)
	c.setSections(next)
	if plan.count() == 0 {
		c.logger.Debug("collection reload unchanged", "sections", len(next))
		c.finishCycle(next)
		return
	}

	c.logger.Debug("collection batch update",
		"sections", len(next),
		"sectionOps", plan.sections.Count(),
		"supplementaries", plan.supplementaries,
		"itemOps", plan.count()-plan.sections.Count()-plan.supplementaries)
	gen := c.generation
	c.target.PerformBatchUpdates(plan.apply, c.completion(gen, func() {
		if len(plan.refresh) == 0 {
			c.finishCycle(next)
			return
		}
		// A batch cannot both move and reload an item, so moved items
		// with new content are reloaded at their new paths once the
		// moves have settled.
		c.logger.Debug("collection reloading moved items", "items", len(plan.refresh))
		c.target.PerformBatchUpdates(func(b BatchUpdater) {
			b.ReloadItems(plan.refresh)
		}, c.completion(gen, func() { c.finishCycle(next) }))
	}))
}

// completion adapts fn to a batch completion that runs on the dispatcher
// and is dropped once the collection has been detached since gen.
func (c *Collection) completion(gen int, fn func()) func(bool) {
	return func(bool) {
		c.dispatch(func() {
			if gen != c.generation {
				return
			}
			fn()
		})
	}
}

// finishCycle commits applied and runs the single follow-up cycle if any
// request arrived meanwhile.
func (c *Collection) finishCycle(applied []ResolvedSection) {
	c.applied = applied
	if c.phase == ReloadingPending {
		c.logger.Debug("collection running follow-up", "collapsed", c.pending)
		c.phase = Reloading
		c.pending = 0
		c.runCycle()
		return
	}
	c.phase = Idle
}

// flatten resolves the tree and moves map subscriptions to the maps it
// reached, releasing maps that are no longer part of the tree.
func (c *Collection) flatten() []ResolvedSection {
	r := newResolver()
	sections := r.sections(c.nodes)
	for m := range c.subscribed {
		if _, ok := r.reached[m]; !ok {
			m.Unsubscribe()
			delete(c.subscribed, m)
		}
	}
	for m := range r.reached {
		m.SubscribeToChanges(c.ReloadData)
		c.subscribed[m] = struct{}{}
	}
	return sections
}

func (c *Collection) setSections(sections []ResolvedSection) {
	c.sections = sections
	for _, s := range sections {
		if s.Header != nil {
			c.register(ElementHeader, s.Header)
		}
		for _, item := range s.Items {
			c.register(ElementCell, item)
		}
		if s.Footer != nil {
			c.register(ElementFooter, s.Footer)
		}
	}
}

func (c *Collection) register(kind ElementKind, r Renderer) {
	key := registration{kind: kind, key: r.ReuseKey()}
	if _, ok := c.registered[key]; ok {
		return
	}
	factory := r.Factory()
	if factory == nil {
		panic(fmt.Sprintf("collection: %s %s has no constructor", kind, key.key))
	}
	c.target.Register(kind, key.key, factory)
	c.registered[key] = struct{}{}
}

type sectionUpdate struct {
	from, to int
	items    changeset.Changeset
}

type reloadPlan struct {
	sections changeset.Changeset
	items    []sectionUpdate
	// supplementaries counts retained sections whose header or footer
	// changed. They issue no operation of their own, but the batch makes
	// the target re-query and re-measure them.
	supplementaries int
	// refresh holds moved items whose content changed, at their new paths.
	refresh []IndexPath
}

func (p reloadPlan) count() int {
	n := p.sections.Count() + p.supplementaries
	for _, u := range p.items {
		n += u.items.Count()
	}
	return n
}

// apply issues section operations first, then item operations per section.
func (p reloadPlan) apply(b BatchUpdater) {
	if len(p.sections.Removals) > 0 {
		b.DeleteSections(p.sections.Removals)
	}
	if len(p.sections.Inserts) > 0 {
		b.InsertSections(p.sections.Inserts)
	}
	for _, m := range p.sections.Moves {
		b.MoveSection(m.From, m.To)
	}
	for _, u := range p.items {
		if len(u.items.Removals) > 0 {
			b.DeleteItems(paths(u.from, u.items.Removals))
		}
		if len(u.items.Inserts) > 0 {
			b.InsertItems(paths(u.to, u.items.Inserts))
		}
		if len(u.items.Mutations) > 0 {
			from := make([]int, len(u.items.Mutations))
			for i, m := range u.items.Mutations {
				from[i] = m.From
			}
			b.ReloadItems(paths(u.from, from))
		}
		for _, m := range u.items.Moves {
			b.MoveItem(IndexPath{Section: u.from, Item: m.From}, IndexPath{Section: u.to, Item: m.To})
		}
	}
}

func paths(section int, items []int) []IndexPath {
	out := make([]IndexPath, len(items))
	for i, item := range items {
		out[i] = IndexPath{Section: section, Item: item}
	}
	return out
}

// plan diffs sections by identifier, then items by identifier within every
// section present in both snapshots. Item content changes become reloads and
// drop the item's cached size; changed headers and footers drop theirs.
func (c *Collection) plan(prev, curr []ResolvedSection) reloadPlan {
	p := reloadPlan{
		sections: changeset.Compute(prev, curr, ResolvedSection.Key, ResolvedSection.Equal),
	}

	inserted := make(map[int]bool, len(p.sections.Inserts))
	for _, j := range p.sections.Inserts {
		inserted[j] = true
	}
	prevIndex := make(map[Identifier]int, len(prev))
	for i, s := range prev {
		prevIndex[s.ID] = i
	}

	for j, s := range curr {
		if inserted[j] {
			continue
		}
		i := prevIndex[s.ID]
		header := c.replaceSupplementary(prev[i].Header, s.Header)
		footer := c.replaceSupplementary(prev[i].Footer, s.Footer)
		if header || footer {
			p.supplementaries++
		}

		cs := changeset.Compute(prev[i].Items, s.Items, Item.Identity, sameContent)
		if cs.IsEmpty() {
			continue
		}
		for _, m := range cs.Mutations {
			c.forget(s.Items[m.To])
		}
		for _, m := range cs.Moves {
			if !sameContent(prev[i].Items[m.From], s.Items[m.To]) {
				c.forget(s.Items[m.To])
				p.refresh = append(p.refresh, IndexPath{Section: j, Item: m.To})
			}
		}
		p.items = append(p.items, sectionUpdate{from: i, to: j, items: cs})
	}
	return p
}

// replaceSupplementary reports whether a header or footer changed identity,
// appeared, disappeared, or changed content, dropping the cached sizes of
// both the old and the new one when it did.
func (c *Collection) replaceSupplementary(old, next Supplementary) bool {
	switch {
	case old == nil && next == nil:
		return false
	case old != nil && next != nil &&
		old.Identity() == next.Identity() && sameRenderer(old, next):
		return false
	}
	if old != nil {
		c.forget(old)
	}
	if next != nil {
		c.forget(next)
	}
	return true
}

func (c *Collection) forget(r Renderer) {
	c.cache.Remove(r.ReuseKey(), r.Identity())
}

func sameContent(a, b Item) bool {
	return sameRenderer(a, b)
}

func sameRenderer(a, b Renderer) bool {
	return reflect.DeepEqual(a.ContentValue(), b.ContentValue())
}
