package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Ref tests ---

func TestParseRef_SimpleCell(t *testing.T) {
	ref, err := ParseRef("A1")
	require.NoError(t, err)
	assert.Equal(t, 1, ref.Row)
	assert.Equal(t, 1, ref.Col)
}

func TestParseRef_MultiLetterCol(t *testing.T) {
	ref, err := ParseRef("AA1")
	require.NoError(t, err)
	assert.Equal(t, 1, ref.Row)
	assert.Equal(t, 27, ref.Col)
}

func TestParseRef_LargeRow(t *testing.T) {
	ref, err := ParseRef("B12")
	require.NoError(t, err)
	assert.Equal(t, 12, ref.Row)
	assert.Equal(t, 2, ref.Col)
}

func TestParseRef_Lowercase(t *testing.T) {
	ref, err := ParseRef("b3")
	require.NoError(t, err)
	assert.Equal(t, 3, ref.Row)
	assert.Equal(t, 2, ref.Col)
}

func TestParseRef_Invalid_Empty(t *testing.T) {
	_, err := ParseRef("")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestParseRef_Invalid_NoRow(t *testing.T) {
	_, err := ParseRef("A")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestParseRef_Invalid_NoCol(t *testing.T) {
	_, err := ParseRef("123")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestParseRef_Invalid_RowZero(t *testing.T) {
	_, err := ParseRef("A0")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestParseRef_Invalid_TrailingGarbage(t *testing.T) {
	_, err := ParseRef("A1X")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestRef_Name(t *testing.T) {
	assert.Equal(t, "B12", NewRef(12, 2).Name())
	assert.Equal(t, "AA1", NewRef(1, 27).Name())
}

func TestColToName_Boundaries(t *testing.T) {
	assert.Equal(t, "A", ColToName(1))
	assert.Equal(t, "Z", ColToName(26))
	assert.Equal(t, "AA", ColToName(27))
	assert.Equal(t, "ZZ", ColToName(702))
	assert.Equal(t, "AAA", ColToName(703))
}

func TestNameToCol_RoundTrip(t *testing.T) {
	for _, col := range []int{1, 2, 25, 26, 27, 52, 701, 702, 703, 18278} {
		got, err := NameToCol(ColToName(col))
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}
}

func TestParseRef_RoundTrip(t *testing.T) {
	for _, name := range []string{"A1", "Z99", "AA27", "ZZ702", "AAA703"} {
		ref, err := ParseRef(name)
		require.NoError(t, err)
		assert.Equal(t, name, ref.Name())
	}
}

func TestRef_Translate(t *testing.T) {
	ref, err := NewRef(2, 2).Translate(1, 1)
	require.NoError(t, err)
	assert.Equal(t, NewRef(3, 3), ref)
}

func TestRef_Translate_OutOfBounds(t *testing.T) {
	_, err := NewRef(1, 1).Translate(-1, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = NewRef(1, 1).Translate(0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

// --- Range tests ---

func TestParseRange(t *testing.T) {
	rng, err := ParseRange("A1:C5")
	require.NoError(t, err)
	assert.Equal(t, NewRef(1, 1), rng.First)
	assert.Equal(t, NewRef(5, 3), rng.Last)
	assert.Equal(t, "A1:C5", rng.String())
}

func TestParseRange_MissingColon(t *testing.T) {
	_, err := ParseRange("A1C5")
	assert.ErrorIs(t, err, ErrMalformedRef)
}

func TestRange_Refs_RowMajor(t *testing.T) {
	rng := NewRange(NewRef(1, 1), NewRef(2, 2))
	assert.Equal(t, []Ref{
		NewRef(1, 1), NewRef(1, 2),
		NewRef(2, 1), NewRef(2, 2),
	}, rng.Refs())
}

func TestRange_Refs_Dimensions(t *testing.T) {
	rng := NewRange(NewRef(2, 3), NewRef(4, 5))
	refs := rng.Refs()
	assert.Len(t, refs, 9) // 3 rows x 3 cols
	assert.Equal(t, NewRef(2, 3), refs[0])
	assert.Equal(t, NewRef(4, 5), refs[len(refs)-1])
}

func TestRange_Refs_InvertedCorners(t *testing.T) {
	rng := NewRange(NewRef(5, 5), NewRef(1, 1))
	assert.Empty(t, rng.Refs())

	rows, cols := rng.Size()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestRange_Contains(t *testing.T) {
	rng := NewRange(NewRef(2, 2), NewRef(4, 4))
	assert.True(t, rng.Contains(NewRef(3, 3)))
	assert.True(t, rng.Contains(NewRef(2, 2)))
	assert.True(t, rng.Contains(NewRef(4, 4)))
	assert.False(t, rng.Contains(NewRef(1, 3)))
	assert.False(t, rng.Contains(NewRef(3, 5)))
}
