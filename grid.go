package gridcalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Grid is a sparse, addressable collection of cells. Cells are created
// lazily on first reference or first write, and the grid owns every cell
// it holds. A Grid and its cells are mutated in place during a single
// write; Snapshot provides copy-on-write duplication for callers holding
// prior states.
//
// The engine is single-threaded and synchronous: a content write runs to
// completion, including all cascading evaluations, before control returns.
type Grid struct {
	cells      map[Ref]*Cell
	eval       Evaluator
	blankValue float64
}

// NewGrid creates an empty grid.
func NewGrid(opts ...Option) *Grid {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Grid{
		cells:      make(map[Ref]*Cell),
		eval:       o.evaluator,
		blankValue: o.blankValue,
	}
}

// NewGridFrom creates a grid populated with labeled initial content, e.g.
// {"A1": 1, "A2": "=A1+1"}. Writes are incremental, so the result does not
// depend on the order the initial cells are applied in.
func NewGridFrom(contents map[string]any, opts ...Option) (*Grid, error) {
	g := NewGrid(opts...)
	for label, raw := range contents {
		ref, err := ParseRef(label)
		if err != nil {
			return nil, fmt.Errorf("initial content: %w", err)
		}
		g.WriteCell(ref, raw)
	}
	return g, nil
}

// CellView is the read-side projection of a cell.
type CellView struct {
	Content      any
	Value        any
	Invalid      bool
	ErrorMessage string
}

// ReadCell returns the cell state at ref, or ok=false when the coordinate
// is absent (implicitly empty).
func (g *Grid) ReadCell(ref Ref) (CellView, bool) {
	c, ok := g.cells[ref]
	if !ok {
		return CellView{}, false
	}
	return CellView{
		Content:      c.content,
		Value:        c.value,
		Invalid:      c.invalid,
		ErrorMessage: c.errMsg,
	}, true
}

// WriteCell normalizes raw content and writes it at ref, creating the cell
// if absent and running the full evaluate/propagate pass.
func (g *Grid) WriteCell(ref Ref, raw any) *Cell {
	return g.setValue(ref, NormalizeRaw(raw))
}

// NormalizeRaw applies the write-boundary normalization: blank or
// whitespace-only text becomes empty content, text that parses as a number
// is stored as a number, everything else is stored as trimmed text.
// Formula text is passed through untouched.
func NormalizeRaw(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if IsFormula(v) {
			return v
		}
		t := strings.TrimSpace(v)
		if t == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return t
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// setValue implements the write protocol: no-op on equal content, cycle
// check before committing any new edges, edge diff, evaluation of this
// cell, then diamond-safe propagation over the captured frontier.
func (g *Grid) setValue(ref Ref, content any) *Cell {
	c := g.cell(ref)
	if contentEqual(c.content, content) {
		return c
	}

	wasInvalid := c.invalid
	c.content = content
	c.modified = true
	c.clearInvalid()

	newSubjects := make(map[Ref]struct{})
	if IsFormula(content) {
		newSubjects = ExtractRefs(FormulaBody(content))
	}

	if g.introducesCycle(ref, newSubjects) {
		// The cycle-forming edges are never installed: the old subject
		// set stays in place and no propagation happens.
		c.setInvalid(msgCircularDependency)
		return c
	}

	for s := range newSubjects {
		if _, ok := c.subjects[s]; !ok {
			g.cell(s).observers[ref] = struct{}{}
		}
	}
	for s := range c.subjects {
		if _, ok := newSubjects[s]; !ok {
			if sc := g.lookup(s); sc != nil {
				delete(sc.observers, ref)
			}
		}
	}
	c.subjects = newSubjects

	// The affected set is fixed before any evaluation in this pass, so
	// membership and evaluation-state checks stay stable throughout.
	frontier := make(map[Ref]struct{})
	g.descendantObservers(ref, frontier)
	for f := range frontier {
		if fc := g.lookup(f); fc != nil {
			fc.evaluated = false
		}
	}

	old := c.value
	g.evaluateCell(c, frontier)
	// An invalidity transition must reach observers even when the value
	// itself is unchanged (nil before and after).
	if !contentEqual(old, c.value) || c.invalid != wasInvalid {
		g.propagate(c, frontier)
	}
	return c
}

// cell returns the cell at ref, creating it if absent.
func (g *Grid) cell(ref Ref) *Cell {
	if c, ok := g.cells[ref]; ok {
		return c
	}
	c := newCell(ref)
	g.cells[ref] = c
	return c
}

func (g *Grid) lookup(ref Ref) *Cell {
	return g.cells[ref]
}

// contentEqual compares cell contents and values by value. Both sides are
// nil, float64, or string.
func contentEqual(a, b any) bool {
	return a == b
}

// introducesCycle walks the current subject edges depth-first from the
// proposed subject set; reaching origin means the write would close a
// cycle through the edited cell. The visited set keeps shared ancestors
// from being re-walked.
func (g *Grid) introducesCycle(origin Ref, subjects map[Ref]struct{}) bool {
	visited := make(map[Ref]struct{})
	var walk func(Ref) bool
	walk = func(r Ref) bool {
		if r == origin {
			return true
		}
		if _, ok := visited[r]; ok {
			return false
		}
		visited[r] = struct{}{}
		if c := g.lookup(r); c != nil {
			for s := range c.subjects {
				if walk(s) {
					return true
				}
			}
		}
		return false
	}
	for s := range subjects {
		if walk(s) {
			return true
		}
	}
	return false
}

// descendantObservers adds ref plus the transitive closure of its
// observers to out. The visited check keeps the traversal linear in edge
// count under diamond shapes.
func (g *Grid) descendantObservers(ref Ref, out map[Ref]struct{}) {
	if _, ok := out[ref]; ok {
		return
	}
	out[ref] = struct{}{}
	if c := g.lookup(ref); c != nil {
		for o := range c.observers {
			g.descendantObservers(o, out)
		}
	}
}

// evaluateCell recomputes one cell's value. The evaluated flag is set
// before anything else so an already-processed cell is never revisited
// within the same pass.
func (g *Grid) evaluateCell(c *Cell, frontier map[Ref]struct{}) {
	if c.evaluated {
		return
	}
	c.evaluated = true

	// A circular write keeps its invalid state until the content changes;
	// its committed edges still describe the pre-write formula.
	if c.invalid && c.errMsg == msgCircularDependency {
		return
	}

	if !IsFormula(c.content) {
		if !contentEqual(c.value, c.content) {
			c.value = c.content
			c.modified = true
		}
		return
	}

	c.clearInvalid()
	substituted, err := Substitute(FormulaBody(c.content), g.valueForFormula)
	if err != nil {
		// A reference error records which reference triggered it and
		// leaves no partial value behind.
		c.setInvalid(err.Error())
		return
	}
	result, err := g.eval.Evaluate(substituted)
	if err != nil {
		c.setInvalid(msgInvalidFormula)
		return
	}
	if !contentEqual(c.value, result) {
		c.value = result
		c.modified = true
	}
}

// valueForFormula resolves one subject's contribution to a formula: an
// empty or absent subject contributes the blank value, an invalid subject
// aborts the evaluation, non-numeric text contributes the blank value.
func (g *Grid) valueForFormula(ref Ref) (float64, error) {
	c := g.lookup(ref)
	if c == nil || c.IsEmpty() {
		return g.blankValue, nil
	}
	if c.invalid {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRef, ref.Name())
	}
	if v, ok := c.value.(float64); ok {
		return v, nil
	}
	return g.blankValue, nil
}

// propagate notifies observers of a cell that was just re-evaluated. An
// observer still waiting on another not-yet-evaluated ancestor inside the
// frontier is skipped; it is reached later via that ancestor's own path,
// which guarantees it evaluates only after all of its changed inputs have
// settled. The frontier is the complete downstream closure captured before
// the pass began, so these checks are stable for the whole pass.
func (g *Grid) propagate(c *Cell, frontier map[Ref]struct{}) {
	for oref := range c.observers {
		o := g.lookup(oref)
		if o == nil || o.evaluated {
			continue
		}
		if g.waitingOnAncestor(o, frontier) {
			continue
		}
		g.evaluateCell(o, frontier)
		g.propagate(o, frontier)
	}
}

// waitingOnAncestor reports whether any of the observer's subjects inside
// the frontier has not yet been evaluated in this pass.
func (g *Grid) waitingOnAncestor(o *Cell, frontier map[Ref]struct{}) bool {
	for s := range o.subjects {
		if _, in := frontier[s]; !in {
			continue
		}
		if sc := g.lookup(s); sc != nil && !sc.evaluated {
			return true
		}
	}
	return false
}

// resetEvaluated clears every pass-scoped evaluated flag grid-wide.
func (g *Grid) resetEvaluated() {
	for _, c := range g.cells {
		c.evaluated = false
	}
}

// Snapshot duplicates the grid. With no arguments every cell is deep
// copied. With an affected set only those cells are deep copied and the
// rest are shared by reference; the copy-on-write contract is that shared
// cells are never mutated afterward by the snapshot's holder.
func (g *Grid) Snapshot(affected ...Ref) *Grid {
	ng := &Grid{
		cells:      make(map[Ref]*Cell, len(g.cells)),
		eval:       g.eval,
		blankValue: g.blankValue,
	}
	if len(affected) == 0 {
		for ref, c := range g.cells {
			ng.cells[ref] = c.clone()
		}
		return ng
	}
	aff := make(map[Ref]struct{}, len(affected))
	for _, ref := range affected {
		aff[ref] = struct{}{}
	}
	for ref, c := range g.cells {
		if _, ok := aff[ref]; ok {
			ng.cells[ref] = c.clone()
		} else {
			ng.cells[ref] = c
		}
	}
	return ng
}

// OccupiedExtent returns the largest row and column holding non-empty
// content, for layout purposes only. An empty grid reports (0, 0).
func (g *Grid) OccupiedExtent() (maxRow, maxCol int) {
	for ref, c := range g.cells {
		if c.IsEmpty() {
			continue
		}
		if ref.Row > maxRow {
			maxRow = ref.Row
		}
		if ref.Col > maxCol {
			maxCol = ref.Col
		}
	}
	return maxRow, maxCol
}

// CellCount returns the number of materialized cells, occupied or not.
func (g *Grid) CellCount() int {
	return len(g.cells)
}

// ModifiedRefs returns the coordinates of every cell marked modified since
// the last ClearModified, sorted row-major. Feeding this to Snapshot gives
// the selective copy-on-write duplication pattern.
func (g *Grid) ModifiedRefs() []Ref {
	set := make(map[Ref]struct{})
	for ref, c := range g.cells {
		if c.modified {
			set[ref] = struct{}{}
		}
	}
	return sortedRefs(set)
}

// ClearModified resets every cell's modified flag.
func (g *Grid) ClearModified() {
	for _, c := range g.cells {
		c.modified = false
	}
}
