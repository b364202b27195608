package gridcalc

import (
	"regexp"
	"strconv"
	"strings"
)

// refTokenRe matches a bare cell reference token like "A1" or "AB12".
var refTokenRe = regexp.MustCompile(`\b[A-Z]{1,3}[1-9][0-9]*\b`)

// rangeTokenRe matches a range token like "A1:B5".
var rangeTokenRe = regexp.MustCompile(`\b[A-Z]{1,3}[1-9][0-9]*:[A-Z]{1,3}[1-9][0-9]*\b`)

// IsFormula reports whether cell content is formula text (text starting
// with "=").
func IsFormula(content any) bool {
	s, ok := content.(string)
	return ok && strings.HasPrefix(s, "=")
}

// FormulaBody returns the expression text after the leading "=".
func FormulaBody(content any) string {
	s, _ := content.(string)
	return strings.TrimPrefix(s, "=")
}

// ExtractRefs returns the set of coordinates a formula body reads. Range
// tokens are expanded to their member coordinates first, so the returned
// set always consists of individual coordinates.
func ExtractRefs(body string) map[Ref]struct{} {
	refs := make(map[Ref]struct{})

	// Blank out range tokens (length-preserving) so their endpoints are
	// not re-matched as standalone references.
	masked := rangeTokenRe.ReplaceAllStringFunc(body, func(tok string) string {
		if rng, err := ParseRange(tok); err == nil {
			for _, ref := range rng.Refs() {
				refs[ref] = struct{}{}
			}
		}
		return strings.Repeat(" ", len(tok))
	})

	for _, tok := range refTokenRe.FindAllString(masked, -1) {
		if ref, err := ParseRef(tok); err == nil {
			refs[ref] = struct{}{}
		}
	}

	return refs
}

// Substitute replaces every reference token in a formula body with its
// resolved value, producing an evaluable expression. Range tokens become
// nested sequence literals in row-major order, so range-consuming aggregate
// operations receive a 2-D structure. resolve supplies the numeric
// contribution of a single coordinate; its error aborts the substitution.
func Substitute(body string, resolve func(Ref) (float64, error)) (string, error) {
	var firstErr error

	out := rangeTokenRe.ReplaceAllStringFunc(body, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		rng, err := ParseRange(tok)
		if err != nil {
			firstErr = err
			return tok
		}
		lit, err := rangeLiteral(rng, resolve)
		if err != nil {
			firstErr = err
			return tok
		}
		return lit
	})
	if firstErr != nil {
		return "", firstErr
	}

	out = refTokenRe.ReplaceAllStringFunc(out, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		ref, err := ParseRef(tok)
		if err != nil {
			firstErr = err
			return tok
		}
		v, err := resolve(ref)
		if err != nil {
			firstErr = err
			return tok
		}
		return numberLiteral(v)
	})
	if firstErr != nil {
		return "", firstErr
	}

	return out, nil
}

// rangeLiteral renders a range as a nested sequence literal, one inner
// sequence per row. An inverted range renders as "[]".
func rangeLiteral(rng Range, resolve func(Ref) (float64, error)) (string, error) {
	rows, cols := rng.Size()

	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			v, err := resolve(Ref{Row: rng.First.Row + i, Col: rng.First.Col + j})
			if err != nil {
				return "", err
			}
			b.WriteString(numberLiteral(v))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String(), nil
}

// numberLiteral formats a substituted value as a float literal. Whole
// numbers get an explicit ".0" so division stays floating-point, and
// negative values are parenthesized so "=2-A1" with A1=-3 stays a
// well-formed expression.
func numberLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

// TranslateRefs shifts every reference token in a formula body by the
// given deltas (relative-reference copy semantics). A token that would
// leave the grid is replaced with the [invalid ref] placeholder; the rest
// of the formula is preserved. Range endpoints are individual tokens and
// translate independently.
func TranslateRefs(body string, rowDelta, colDelta int) string {
	return refTokenRe.ReplaceAllStringFunc(body, func(tok string) string {
		ref, err := ParseRef(tok)
		if err != nil {
			return tok
		}
		t, err := ref.Translate(rowDelta, colDelta)
		if err != nil {
			return invalidRefPlaceholder
		}
		return t.Name()
	})
}

// rewriteMovedRefs rewrites a formula body after the cells in moved have
// been relocated by (rowDelta, colDelta). A range token is endpoint-shifted
// only when every member of its expansion is part of the same move;
// otherwise the range text is left untouched. Standalone reference tokens
// naming a moved coordinate are rewritten to its destination.
func rewriteMovedRefs(body string, moved map[Ref]struct{}, rowDelta, colDelta int) string {
	var b strings.Builder
	last := 0
	for _, m := range rangeTokenRe.FindAllStringIndex(body, -1) {
		b.WriteString(rewriteSingleRefs(body[last:m[0]], moved, rowDelta, colDelta))
		b.WriteString(rewriteRangeToken(body[m[0]:m[1]], moved, rowDelta, colDelta))
		last = m[1]
	}
	b.WriteString(rewriteSingleRefs(body[last:], moved, rowDelta, colDelta))
	return b.String()
}

func rewriteRangeToken(tok string, moved map[Ref]struct{}, rowDelta, colDelta int) string {
	rng, err := ParseRange(tok)
	if err != nil {
		return tok
	}
	members := rng.Refs()
	if len(members) == 0 {
		return tok
	}
	for _, ref := range members {
		if _, ok := moved[ref]; !ok {
			return tok
		}
	}
	first, err1 := rng.First.Translate(rowDelta, colDelta)
	last, err2 := rng.Last.Translate(rowDelta, colDelta)
	if err1 != nil || err2 != nil {
		return tok
	}
	return first.Name() + ":" + last.Name()
}

func rewriteSingleRefs(s string, moved map[Ref]struct{}, rowDelta, colDelta int) string {
	return refTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		ref, err := ParseRef(tok)
		if err != nil {
			return tok
		}
		if _, ok := moved[ref]; !ok {
			return tok
		}
		t, err := ref.Translate(rowDelta, colDelta)
		if err != nil {
			return invalidRefPlaceholder
		}
		return t.Name()
	})
}
