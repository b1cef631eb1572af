package collection

// ResolvedSection is a flattened section as handed to the render target.
type ResolvedSection struct {
	ID     Identifier
	Header Supplementary
	Items  []Item
	Footer Supplementary
}

// Key returns the section identifier.
func (s ResolvedSection) Key() Identifier {
	return s.ID
}

// Equal compares identities only: the section identifier, the header and
// footer identifiers, and the ordered item identifiers. Content is ignored.
func (s ResolvedSection) Equal(other ResolvedSection) bool {
	if s.ID != other.ID ||
		supplementaryID(s.Header) != supplementaryID(other.Header) ||
		supplementaryID(s.Footer) != supplementaryID(other.Footer) ||
		len(s.Items) != len(other.Items) {
		return false
	}
	for i := range s.Items {
		if s.Items[i].Identity() != other.Items[i].Identity() {
			return false
		}
	}
	return true
}

// noSupplementary stands in for an absent header or footer when comparing.
type noSupplementary struct{}

func supplementaryID(s Supplementary) Identifier {
	if s == nil {
		return noSupplementary{}
	}
	return s.Identity()
}

// resolver flattens a declared tree, recording every map it reaches.
type resolver struct {
	reached map[reactive]struct{}
}

func newResolver() *resolver {
	return &resolver{reached: make(map[reactive]struct{})}
}

// sections expands nodes depth-first and drops sections without items.
// Maps are reached even when every section they produce is dropped, so a
// map that is empty now still triggers a reload once it fills.
func (r *resolver) sections(nodes []SectionNode) []ResolvedSection {
	var all []ResolvedSection
	for _, n := range nodes {
		all = r.expandSection(n, all)
	}
	out := all[:0]
	for _, s := range all {
		if len(s.Items) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (r *resolver) expandSection(n SectionNode, out []ResolvedSection) []ResolvedSection {
	switch n := n.(type) {
	case nil:
	case Section:
		out = append(out, r.resolve(n))
	case SectionGroup:
		for _, child := range n {
			out = r.expandSection(child, out)
		}
	case sectionSource:
		r.reached[n] = struct{}{}
		for _, child := range n.AllItems() {
			out = r.expandSection(child, out)
		}
	}
	return out
}

func (r *resolver) resolve(s Section) ResolvedSection {
	rs := ResolvedSection{ID: s.ID}
	if len(s.Body) > 0 {
		if h, ok := s.Body[0].(Supplementary); ok {
			rs.Header = h
		}
		if f, ok := s.Body[len(s.Body)-1].(Supplementary); ok && len(s.Body) > 1 {
			rs.Footer = f
		}
	}
	for _, n := range s.Body {
		rs.Items = r.expandBody(n, rs.Items)
	}
	return rs
}

func (r *resolver) expandBody(n BodyNode, out []Item) []Item {
	switch n := n.(type) {
	case nil:
	case Item:
		out = append(out, n)
	case Supplementary:
	case Group:
		for _, child := range n {
			out = r.expandBody(child, out)
		}
	case itemSource:
		r.reached[n] = struct{}{}
		for _, child := range n.AllItems() {
			out = r.expandBody(child, out)
		}
	}
	return out
}
