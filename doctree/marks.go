package doctree

import (
	"reflect"
	"sort"
)

// MarkType is the type of an inline mark.
type MarkType string

// Mark types of the Basic schema.
const (
	MarkLink   MarkType = "link"
	MarkStrong MarkType = "strong"
	MarkEmph   MarkType = "emph"
	MarkStrike MarkType = "strike"
	MarkCode   MarkType = "code"
)

// markRank orders marks from outermost to innermost.
var markRank = map[MarkType]int{
	MarkLink:   0,
	MarkStrong: 1,
	MarkEmph:   2,
	MarkStrike: 3,
	MarkCode:   4,
}

// Mark is a formatting mark of an inline node.
type Mark struct {
	Type  MarkType
	Attrs Attrs
}

// Eq is true if m and other are of the same type with equal attributes.
func (m Mark) Eq(other Mark) bool {
	if m.Type != other.Type {
		return false
	}
	if len(m.Attrs) == 0 && len(other.Attrs) == 0 {
		return true
	}
	return reflect.DeepEqual(m.Attrs, other.Attrs)
}

// Rank returns the nesting rank of m; lower ranks nest outside higher ones.
func (m Mark) Rank() int {
	if r, ok := markRank[m.Type]; ok {
		return r
	}
	return len(markRank)
}

// AddMark returns marks with m added. A mark of the same type is replaced.
// The result is ordered by rank.
func AddMark(marks []Mark, m Mark) []Mark {
	result := make([]Mark, 0, len(marks)+1)
	for _, x := range marks {
		if x.Type != m.Type {
			result = append(result, x)
		}
	}
	result = append(result, m)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Rank() < result[j].Rank()
	})
	return result
}

// HasMark is true if marks contain a mark of type t.
func HasMark(marks []Mark, t MarkType) bool {
	for _, m := range marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// SameMarks is true if a and b contain equal marks in equal order.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}
