package gridcalc

import (
	"fmt"
	"strings"
)

// Ref is a single cell coordinate. Row and Col are 1-based: A1 is {1, 1}.
type Ref struct {
	Row int
	Col int
}

// NewRef creates a Ref with explicit row and column.
func NewRef(row, col int) Ref {
	return Ref{Row: row, Col: col}
}

// ParseRef parses a cell reference string like "A1" or "AB12".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("%w: empty reference", ErrMalformedRef)
	}

	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}

	col, err := NameToCol(s[:i])
	if err != nil {
		return Ref{}, err
	}

	row := 0
	for _, ch := range s[i:] {
		if ch < '0' || ch > '9' {
			return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, s)
		}
		row = row*10 + int(ch-'0')
	}
	if row < 1 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}

	return Ref{Row: row, Col: col}, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Name returns the canonical label for the coordinate, e.g. "B12".
func (r Ref) Name() string {
	return ColToName(r.Col) + fmt.Sprintf("%d", r.Row)
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	return r.Name()
}

// Translate returns the coordinate shifted by the given deltas. It fails
// wrapping ErrOutOfBounds when the result would have row or column < 1.
func (r Ref) Translate(rowDelta, colDelta int) (Ref, error) {
	t := Ref{Row: r.Row + rowDelta, Col: r.Col + colDelta}
	if t.Row < 1 || t.Col < 1 {
		return Ref{}, fmt.Errorf("%w: %s by (%d,%d)", ErrOutOfBounds, r.Name(), rowDelta, colDelta)
	}
	return t, nil
}

// ColToName converts a 1-based column number to its letter label.
// 1→"A", 26→"Z", 27→"AA", 702→"ZZ", 703→"AAA".
func ColToName(col int) string {
	result := ""
	for col > 0 {
		col-- // base-26 with no zero digit
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column letter label to its 1-based column number.
// "A"→1, "Z"→26, "AA"→27.
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("%w: empty column name", ErrMalformedRef)
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrMalformedRef, name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col, nil
}

// Range is a rectangular block of coordinates from First (top-left) to
// Last (bottom-right), inclusive.
type Range struct {
	First Ref
	Last  Ref
}

// NewRange creates a Range from two corner coordinates.
func NewRange(first, last Ref) Range {
	return Range{First: first, Last: last}
}

// ParseRange parses a range reference string like "A1:C5".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: range %q missing ':'", ErrMalformedRef, s)
	}

	first, err := ParseRef(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	last, err := ParseRef(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}

	return Range{First: first, Last: last}, nil
}

// String formats the range as "A1:C5".
func (a Range) String() string {
	return a.First.Name() + ":" + a.Last.Name()
}

// Refs expands the range to its member coordinates in row-major order.
// A range whose bottom-right corner lies above or left of its top-left
// expands to an empty slice.
func (a Range) Refs() []Ref {
	if a.Last.Row < a.First.Row || a.Last.Col < a.First.Col {
		return nil
	}
	refs := make([]Ref, 0, (a.Last.Row-a.First.Row+1)*(a.Last.Col-a.First.Col+1))
	for row := a.First.Row; row <= a.Last.Row; row++ {
		for col := a.First.Col; col <= a.Last.Col; col++ {
			refs = append(refs, Ref{Row: row, Col: col})
		}
	}
	return refs
}

// Contains returns true if the coordinate lies within the range.
func (a Range) Contains(ref Ref) bool {
	return ref.Row >= a.First.Row && ref.Row <= a.Last.Row &&
		ref.Col >= a.First.Col && ref.Col <= a.Last.Col
}

// Size returns the dimensions of the range; zero when the corners are
// inverted.
func (a Range) Size() (rows, cols int) {
	rows = a.Last.Row - a.First.Row + 1
	cols = a.Last.Col - a.First.Col + 1
	if rows < 1 || cols < 1 {
		return 0, 0
	}
	return rows, cols
}
