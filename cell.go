package gridcalc

import "sort"

// Cell is a single grid entity: raw content, derived value, validity state,
// and the two edge-sets linking it into the dependency graph. A Cell is
// owned exclusively by one Grid and addressed by coordinate; the adjacency
// sets hold coordinates, never cell handles, so they cannot dangle across
// a snapshot.
type Cell struct {
	ref     Ref
	content any // nil (empty), float64 (number), or string (text / "=" formula)
	value   any // evaluated value; nil when empty or invalid

	subjects  map[Ref]struct{} // coordinates this cell's formula reads
	observers map[Ref]struct{} // coordinates whose formulas read this cell

	// pass-scoped bookkeeping owned by the propagation algorithm
	evaluated bool
	modified  bool

	invalid bool
	errMsg  string
}

func newCell(ref Ref) *Cell {
	return &Cell{
		ref:       ref,
		subjects:  make(map[Ref]struct{}),
		observers: make(map[Ref]struct{}),
	}
}

// Ref returns the cell's coordinate.
func (c *Cell) Ref() Ref { return c.ref }

// Content returns the raw content: nil, float64, or string.
func (c *Cell) Content() any { return c.content }

// Value returns the evaluated value; nil when the cell is empty or invalid.
func (c *Cell) Value() any { return c.value }

// Invalid reports whether the last write or evaluation failed.
func (c *Cell) Invalid() bool { return c.invalid }

// ErrorMessage returns the failure description for an invalid cell.
func (c *Cell) ErrorMessage() string { return c.errMsg }

// IsFormula reports whether the content is formula text.
func (c *Cell) IsFormula() bool { return IsFormula(c.content) }

// IsEmpty reports whether the cell has no content.
func (c *Cell) IsEmpty() bool { return c.content == nil }

// Modified reports whether the cell changed since the last ClearModified.
func (c *Cell) Modified() bool { return c.modified }

// Subjects returns the coordinates this cell's formula reads, sorted
// row-major.
func (c *Cell) Subjects() []Ref { return sortedRefs(c.subjects) }

// Observers returns the coordinates whose formulas read this cell, sorted
// row-major.
func (c *Cell) Observers() []Ref { return sortedRefs(c.observers) }

func (c *Cell) setInvalid(msg string) {
	c.invalid = true
	c.errMsg = msg
	c.value = nil
}

func (c *Cell) clearInvalid() {
	c.invalid = false
	c.errMsg = ""
}

// clone deep-copies the cell, including both adjacency sets.
func (c *Cell) clone() *Cell {
	d := &Cell{
		ref:       c.ref,
		content:   c.content,
		value:     c.value,
		subjects:  make(map[Ref]struct{}, len(c.subjects)),
		observers: make(map[Ref]struct{}, len(c.observers)),
		evaluated: c.evaluated,
		modified:  c.modified,
		invalid:   c.invalid,
		errMsg:    c.errMsg,
	}
	for s := range c.subjects {
		d.subjects[s] = struct{}{}
	}
	for o := range c.observers {
		d.observers[o] = struct{}{}
	}
	return d
}

func sortedRefs(set map[Ref]struct{}) []Ref {
	refs := make([]Ref, 0, len(set))
	for r := range set {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}
