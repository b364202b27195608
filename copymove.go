package gridcalc

// CopyCell duplicates the content at src into dst with relative-reference
// semantics: every reference token in a formula shifts by the coordinate
// delta, and a token that would leave the grid becomes the [invalid ref]
// placeholder without failing the rest of the operation. The write goes
// through the normal setValue path, creating the target if absent.
func (g *Grid) CopyCell(src, dst Ref) *Cell {
	content := g.contentAt(src)
	if IsFormula(content) {
		body := TranslateRefs(FormulaBody(content), dst.Row-src.Row, dst.Col-src.Col)
		content = "=" + body
	}
	// Stale flags from a prior pass must not short-circuit the coming one.
	g.resetEvaluated()
	return g.setValue(dst, content)
}

// MoveCell relocates the content at src to dst and rewrites every observer
// of src so its formula follows the cell to its new position. The source
// coordinate is vacated.
func (g *Grid) MoveCell(src, dst Ref) {
	g.moveCell(src, dst, map[Ref]struct{}{src: {}})
}

// moveCell performs one cell's move as part of the batch in moved. Observer
// formulas rewrite literal occurrences of the source coordinate to the
// target; a range token is endpoint-shifted only when its entire expansion
// belongs to the batch, otherwise its text stays untouched.
func (g *Grid) moveCell(src, dst Ref, moved map[Ref]struct{}) {
	if src == dst {
		return
	}
	rowDelta := dst.Row - src.Row
	colDelta := dst.Col - src.Col

	// Land the content first so rewritten observers resolve against it.
	g.resetEvaluated()
	g.setValue(dst, g.contentAt(src))

	if c := g.lookup(src); c != nil {
		// The observer set shrinks while rewriting, so iterate a copy.
		observers := make([]Ref, 0, len(c.observers))
		for o := range c.observers {
			observers = append(observers, o)
		}
		for _, oref := range observers {
			o := g.lookup(oref)
			if o == nil || !o.IsFormula() {
				continue
			}
			body := FormulaBody(o.content)
			rewritten := rewriteMovedRefs(body, moved, rowDelta, colDelta)
			if rewritten == body {
				continue
			}
			o.evaluated = false
			g.setValue(oref, "="+rewritten)
		}
	}

	// Vacate the source. Observers that kept an untouched range token
	// re-evaluate against the now-empty coordinate.
	g.setValue(src, nil)
}

// CopyRange copies the source block to the block anchored at
// targetTopLeft, member by member with relative-reference translation.
// Members are processed in reverse row-major order when the delta points
// down or right so an overlapping target never clobbers a pending source.
func (g *Grid) CopyRange(src Range, targetTopLeft Ref) {
	rowDelta := targetTopLeft.Row - src.First.Row
	colDelta := targetTopLeft.Col - src.First.Col
	for _, ref := range orderForDelta(src.Refs(), rowDelta, colDelta) {
		dst, err := ref.Translate(rowDelta, colDelta)
		if err != nil {
			continue
		}
		g.CopyCell(ref, dst)
	}
}

// MoveRange relocates the source block to the block anchored at
// targetTopLeft. The member set moves as one batch, so observer range
// tokens spanning the whole block are endpoint-shifted while partially
// covered ranges are left alone.
func (g *Grid) MoveRange(src Range, targetTopLeft Ref) {
	rowDelta := targetTopLeft.Row - src.First.Row
	colDelta := targetTopLeft.Col - src.First.Col

	members := src.Refs()
	moved := make(map[Ref]struct{}, len(members))
	for _, ref := range members {
		moved[ref] = struct{}{}
	}

	for _, ref := range orderForDelta(members, rowDelta, colDelta) {
		dst, err := ref.Translate(rowDelta, colDelta)
		if err != nil {
			continue
		}
		g.moveCell(ref, dst, moved)
	}
}

func (g *Grid) contentAt(ref Ref) any {
	if c := g.lookup(ref); c != nil {
		return c.content
	}
	return nil
}

// orderForDelta returns refs in an order safe for in-place block
// translation: reversed when the block moves down or right.
func orderForDelta(refs []Ref, rowDelta, colDelta int) []Ref {
	if rowDelta > 0 || (rowDelta == 0 && colDelta > 0) {
		out := make([]Ref, len(refs))
		for i, r := range refs {
			out[len(refs)-1-i] = r
		}
		return out
	}
	return refs
}
