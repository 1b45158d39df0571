package template

import (
	"strconv"
	"strings"
)

// ExpandNumericRanges expands every `[N..M]` range in s (N, M decimal,
// M >= N, both inclusive) into its integer values and returns the
// cross-product of all ranges joined with the literal segments,
// left to right:
//
//	ExpandNumericRanges("id-[1..2]-[1..2]")
//	  => ["id-1-1", "id-1-2", "id-2-1", "id-2-2"]
//
// A '[' that does not open a well-formed range is literal text. Inputs
// without any range expand to themselves.
func ExpandNumericRanges(s string) []string {
	segments := scanRangeSegments(s)

	out := []string{""}
	for _, seg := range segments {
		next := make([]string, 0, len(out)*len(seg))
		for _, prefix := range out {
			for _, alt := range seg {
				next = append(next, prefix+alt)
			}
		}
		out = next
	}
	return out
}

// scanRangeSegments splits s into segments where each segment is either
// a single literal alternative or the expanded values of one range.
func scanRangeSegments(s string) [][]string {
	var segments [][]string
	for len(s) > 0 {
		open := strings.IndexByte(s, '[')
		if open == -1 {
			segments = append(segments, []string{s})
			break
		}
		if open > 0 {
			segments = append(segments, []string{s[:open]})
			s = s[open:]
		}

		values, rest, ok := scanRange(s)
		if !ok {
			segments = append(segments, []string{"["})
			s = s[1:]
			continue
		}
		segments = append(segments, values)
		s = rest
	}
	return segments
}

// scanRange parses a leading "[N..M]" and returns the expanded values.
func scanRange(s string) (values []string, rest string, ok bool) {
	end := strings.IndexByte(s, ']')
	if end == -1 {
		return nil, "", false
	}
	inner := s[1:end]

	dots := strings.Index(inner, "..")
	if dots == -1 {
		return nil, "", false
	}
	lo, loErr := strconv.Atoi(inner[:dots])
	hi, hiErr := strconv.Atoi(inner[dots+2:])
	if loErr != nil || hiErr != nil || lo < 0 || hi < lo {
		return nil, "", false
	}

	values = make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		values = append(values, strconv.Itoa(i))
	}
	return values, s[end+1:], true
}

// Product returns the cross-product of two string-map lists: one merged
// map per (a, b) pair, in a-major order. When both maps bind the same
// key, the value from b wins.
func Product(as, bs []map[string]string) []map[string]string {
	out := make([]map[string]string, 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			merged := make(map[string]string, len(a)+len(b))
			for k, v := range a {
				merged[k] = v
			}
			for k, v := range b {
				merged[k] = v
			}
			out = append(out, merged)
		}
	}
	return out
}
