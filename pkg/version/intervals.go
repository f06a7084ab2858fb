package version

import (
	"github.com/blang/semver/v4"
)

// bound is one end of an interval over the version order.
// An infinite bound has no version and compares past every finite one.
type bound struct {
	v         semver.Version
	inclusive bool
	infinite  bool
}

// interval is a contiguous range of versions
type interval struct {
	lo, hi bound
}

// intervalSet is a sorted union of pairwise disjoint intervals.
// The canonical form makes structural equality a set equality test.
type intervalSet []interval

func full() intervalSet {
	return intervalSet{{lo: bound{infinite: true}, hi: bound{infinite: true}}}
}

// cmpLower orders two lower bounds. Infinite sorts first, an inclusive
// bound starts before an exclusive one at the same version.
func cmpLower(a, b bound) int {
	if a.infinite || b.infinite {
		return boolCmp(!a.infinite, !b.infinite)
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	return boolCmp(!a.inclusive, !b.inclusive)
}

// cmpUpper orders two upper bounds. Infinite sorts last, an exclusive
// bound ends before an inclusive one at the same version.
func cmpUpper(a, b bound) int {
	if a.infinite || b.infinite {
		return boolCmp(a.infinite, b.infinite)
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	return boolCmp(a.inclusive, b.inclusive)
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func (i interval) empty() bool {
	if i.lo.infinite || i.hi.infinite {
		return false
	}
	c := i.lo.v.Compare(i.hi.v)
	if c > 0 {
		return true
	}
	return c == 0 && !(i.lo.inclusive && i.hi.inclusive)
}

func (i interval) contains(v semver.Version) bool {
	if !i.lo.infinite {
		c := v.Compare(i.lo.v)
		if c < 0 || (c == 0 && !i.lo.inclusive) {
			return false
		}
	}
	if !i.hi.infinite {
		c := v.Compare(i.hi.v)
		if c > 0 || (c == 0 && !i.hi.inclusive) {
			return false
		}
	}
	return true
}

func (i interval) intersect(o interval) (interval, bool) {
	r := i
	if cmpLower(o.lo, r.lo) > 0 {
		r.lo = o.lo
	}
	if cmpUpper(o.hi, r.hi) < 0 {
		r.hi = o.hi
	}
	if r.empty() {
		return interval{}, false
	}
	return r, true
}

// intersect keeps canonical form: both operands are sorted and
// disjoint, so pairwise intersections come out sorted and disjoint too.
func (s intervalSet) intersect(o intervalSet) intervalSet {
	var out intervalSet
	for _, a := range s {
		for _, b := range o {
			if r, ok := a.intersect(b); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func boundsEqual(a, b bound) bool {
	if a.infinite != b.infinite {
		return false
	}
	if a.infinite {
		return true
	}
	return a.inclusive == b.inclusive && a.v.Compare(b.v) == 0
}

func (s intervalSet) equal(o intervalSet) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if !boundsEqual(s[n].lo, o[n].lo) || !boundsEqual(s[n].hi, o[n].hi) {
			return false
		}
	}
	return true
}

func (s intervalSet) contains(v semver.Version) bool {
	for _, i := range s {
		if i.contains(v) {
			return true
		}
	}
	return false
}
