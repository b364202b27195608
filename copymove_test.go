package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentAt(t *testing.T, g *Grid, name string) any {
	t.Helper()
	view, ok := g.ReadCell(mustRef(t, name))
	require.True(t, ok, "cell %s absent", name)
	return view.Content
}

func TestCopyCell_RelativeShift(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "B2", "=A1+1")

	g.CopyCell(mustRef(t, "B2"), mustRef(t, "C3"))

	assert.Equal(t, "=B2+1", contentAt(t, g, "C3"))
	assert.Equal(t, 3.0, valueAt(t, g, "C3")) // B2 is 2
	// The source keeps its own content and value.
	assert.Equal(t, "=A1+1", contentAt(t, g, "B2"))
	assert.Equal(t, 2.0, valueAt(t, g, "B2"))
}

func TestCopyCell_LiteralUnchanged(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 7)
	g.CopyCell(mustRef(t, "A1"), mustRef(t, "C9"))
	assert.Equal(t, 7.0, valueAt(t, g, "C9"))
}

func TestCopyCell_OutOfBoundsTokenPlaceholder(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "B2", "=A1+1")

	// Copying up-left pushes A1 off the grid; only that token is
	// invalidated, the formula text itself survives.
	c := g.CopyCell(mustRef(t, "B2"), mustRef(t, "A1"))

	assert.Equal(t, "=[invalid ref]+1", contentAt(t, g, "A1"))
	assert.True(t, c.Invalid())
	assert.Equal(t, "Invalid formula", c.ErrorMessage())
}

func TestCopyRange(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "A2", "=A1+1")

	g.CopyRange(Range{First: mustRef(t, "A1"), Last: mustRef(t, "A2")}, mustRef(t, "B1"))

	assert.Equal(t, 1.0, valueAt(t, g, "B1"))
	assert.Equal(t, "=B1+1", contentAt(t, g, "B2"))
	assert.Equal(t, 2.0, valueAt(t, g, "B2"))
}

func TestCopyRange_OverlappingDownward(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "A2", 2)

	// Target overlaps the source; members are copied bottom-up so A2 is
	// still the original when it lands on A3.
	g.CopyRange(Range{First: mustRef(t, "A1"), Last: mustRef(t, "A2")}, mustRef(t, "A2"))

	assert.Equal(t, 1.0, valueAt(t, g, "A2"))
	assert.Equal(t, 2.0, valueAt(t, g, "A3"))
}

func TestMoveCell_ObserverFollows(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "B1", "=A1+1")

	g.MoveCell(mustRef(t, "A1"), mustRef(t, "D4"))

	assert.Equal(t, "=D4+1", contentAt(t, g, "B1"))
	assert.Equal(t, 2.0, valueAt(t, g, "B1"))
	assert.Equal(t, 1.0, valueAt(t, g, "D4"))
	assert.Nil(t, contentAt(t, g, "A1"))
	assertEdgeSymmetry(t, g)
}

func TestMoveCell_PartialRangeLeftUntouched(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "A2", 2)
	writeAt(t, g, "A3", "=SUM(A1:A2)")
	assert.Equal(t, 3.0, valueAt(t, g, "A3"))

	// Only A1 moves, so the range text must stay as written; the vacated
	// coordinate now contributes its blank value.
	g.MoveCell(mustRef(t, "A1"), mustRef(t, "D4"))

	assert.Equal(t, "=SUM(A1:A2)", contentAt(t, g, "A3"))
	assert.Equal(t, 2.0, valueAt(t, g, "A3"))
	assert.Equal(t, 1.0, valueAt(t, g, "D4"))
}

func TestMoveRange_RangeEndpointsRewritten(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "A2", 2)
	writeAt(t, g, "A3", "=SUM(A1:A2)")

	g.MoveRange(Range{First: mustRef(t, "A1"), Last: mustRef(t, "A2")}, mustRef(t, "B1"))

	assert.Equal(t, "=SUM(B1:B2)", contentAt(t, g, "A3"))
	assert.Equal(t, 3.0, valueAt(t, g, "A3"))
	assert.Equal(t, 1.0, valueAt(t, g, "B1"))
	assert.Equal(t, 2.0, valueAt(t, g, "B2"))
	assert.Nil(t, contentAt(t, g, "A1"))
	assert.Nil(t, contentAt(t, g, "A2"))
	assertEdgeSymmetry(t, g)
}

func TestMoveRange_SingleRefsFollowBatch(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "A2", 2)
	writeAt(t, g, "B1", "=A1+A2")

	g.MoveRange(Range{First: mustRef(t, "A1"), Last: mustRef(t, "A2")}, mustRef(t, "C1"))

	assert.Equal(t, "=C1+C2", contentAt(t, g, "B1"))
	assert.Equal(t, 3.0, valueAt(t, g, "B1"))
}

func TestMoveRange_FormulaInsideBatchKeepsExternalRefs(t *testing.T) {
	g := NewGrid()
	writeAt(t, g, "D1", 10)
	writeAt(t, g, "A1", 1)
	writeAt(t, g, "A2", "=A1+D1")

	g.MoveRange(Range{First: mustRef(t, "A1"), Last: mustRef(t, "A2")}, mustRef(t, "B1"))

	// The internal reference follows the batch, the external one stays.
	assert.Equal(t, "=B1+D1", contentAt(t, g, "B2"))
	assert.Equal(t, 11.0, valueAt(t, g, "B2"))
	assert.Nil(t, contentAt(t, g, "A2"))
}
