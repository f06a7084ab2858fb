package version

import (
	"strings"

	"github.com/blang/semver/v4"
)

// Relationship between the version sets matched by two constraints
type Relationship int

const (
	// RelSame means both constraints match exactly the same versions
	RelSame Relationship = iota
	// RelDisjoint means no version satisfies both constraints
	RelDisjoint
	// RelSuperset means the first constraint strictly contains the second
	RelSuperset
	// RelSubset means the second constraint strictly contains the first
	RelSubset
	// RelPartial means the constraints overlap but neither contains the other
	RelPartial
)

func (r Relationship) String() string {
	switch r {
	case RelSame:
		return "same"
	case RelDisjoint:
		return "disjoint"
	case RelSuperset:
		return "superset"
	case RelSubset:
		return "subset"
	default:
		return "partial"
	}
}

// Constraint is a conjunction of comparison clauses over release
// versions, e.g. ">=0.8.0,<1.0.0". All clauses must hold at once.
//
// Internally the constraint is normalized to a canonical union of
// intervals, so set relationships are computed exactly rather than by
// sampling candidate versions.
type Constraint struct {
	raw string
	set intervalSet
}

type clauseOp string

const (
	opGE     clauseOp = ">="
	opLE     clauseOp = "<="
	opGT     clauseOp = ">"
	opLT     clauseOp = "<"
	opEQ     clauseOp = "=="
	opNE     clauseOp = "!="
	opApprox clauseOp = "~="
)

var clauseOps = []clauseOp{opGE, opLE, opEQ, opNE, opApprox, opGT, opLT}

// ParseConstraint parses a constraint string.
//
// Supported operators: >=, <=, >, <, ==, != and ~= (compatible
// release). Clauses are separated by commas.
func ParseConstraint(s string) (Constraint, error) {
	if strings.TrimSpace(s) == "" {
		return Constraint{}, ErrInvalidConstraint.WrapMessage("constraint string is empty")
	}
	set := full()
	for _, part := range strings.Split(s, ",") {
		clause := strings.TrimSpace(part)
		if clause == "" {
			return Constraint{}, ErrInvalidConstraint.WrapMessage("%q: empty clause", s)
		}
		clauseSet, err := parseClause(clause)
		if err != nil {
			return Constraint{}, err
		}
		set = set.intersect(clauseSet)
	}
	return Constraint{raw: s, set: set}, nil
}

func parseClause(clause string) (intervalSet, error) {
	var op clauseOp
	for _, candidate := range clauseOps {
		if strings.HasPrefix(clause, string(candidate)) {
			op = candidate
			break
		}
	}
	if op == "" {
		return nil, ErrInvalidConstraint.WrapMessage("%q: missing comparison operator", clause)
	}
	lit := strings.TrimSpace(strings.TrimPrefix(clause, string(op)))
	v, err := semver.ParseTolerant(lit)
	if err != nil {
		return nil, ErrInvalidConstraint.WrapMessage("%q: %v", clause, err)
	}

	inf := bound{infinite: true}
	switch op {
	case opGE:
		return intervalSet{{lo: bound{v: v, inclusive: true}, hi: inf}}, nil
	case opGT:
		return intervalSet{{lo: bound{v: v}, hi: inf}}, nil
	case opLE:
		return intervalSet{{lo: inf, hi: bound{v: v, inclusive: true}}}, nil
	case opLT:
		return intervalSet{{lo: inf, hi: bound{v: v}}}, nil
	case opEQ:
		b := bound{v: v, inclusive: true}
		return intervalSet{{lo: b, hi: b}}, nil
	case opNE:
		return intervalSet{
			{lo: inf, hi: bound{v: v}},
			{lo: bound{v: v}, hi: inf},
		}, nil
	case opApprox:
		upper, err := approxUpper(lit, v)
		if err != nil {
			return nil, err
		}
		return intervalSet{{lo: bound{v: v, inclusive: true}, hi: bound{v: upper}}}, nil
	}
	return nil, ErrInvalidConstraint.WrapMessage("%q: unsupported operator", clause)
}

// approxUpper computes the exclusive upper bound of a compatible
// release clause: ~=X.Y.Z allows up to the next minor, ~=X.Y up to the
// next major. A single segment carries no compatible prefix.
func approxUpper(lit string, v semver.Version) (semver.Version, error) {
	core := lit
	if n := strings.IndexAny(core, "-+"); n >= 0 {
		core = core[:n]
	}
	switch strings.Count(core, ".") {
	case 1:
		return semver.Version{Major: v.Major + 1}, nil
	case 2:
		return semver.Version{Major: v.Major, Minor: v.Minor + 1}, nil
	default:
		return semver.Version{}, ErrInvalidConstraint.WrapMessage("~=%s: at least two version segments required", lit)
	}
}

// String returns the original constraint expression
func (c Constraint) String() string {
	return c.raw
}

// Matches reports whether the version satisfies every clause
func (c Constraint) Matches(v semver.Version) bool {
	return c.set.contains(v)
}

// Compare decides the relationship between the version sets matched by
// two constraints. Two unsatisfiable constraints compare as RelSame.
func (c Constraint) Compare(o Constraint) Relationship {
	if c.set.equal(o.set) {
		return RelSame
	}
	inter := c.set.intersect(o.set)
	if len(inter) == 0 {
		return RelDisjoint
	}
	if inter.equal(o.set) {
		return RelSuperset
	}
	if inter.equal(c.set) {
		return RelSubset
	}
	return RelPartial
}

// CompareConstraints parses both constraint strings and compares them
func CompareConstraints(a, b string) (Relationship, error) {
	ca, err := ParseConstraint(a)
	if err != nil {
		return RelPartial, err
	}
	cb, err := ParseConstraint(b)
	if err != nil {
		return RelPartial, err
	}
	return ca.Compare(cb), nil
}
