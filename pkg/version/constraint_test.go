package version

import (
	"errors"
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConstraint(t *testing.T) {
	valid := []string{
		">=0.8.0",
		">=0.8.0,<1.0.0",
		"==1.0.0",
		"!=1.0.0",
		"~=1.2.3",
		"~=1.2",
		">= 0.8.0, < 1.0.0",
		">0.1.0,<=2.0.0,!=1.5.0",
	}
	for _, s := range valid {
		_, err := ParseConstraint(s)
		assert.NoError(t, err, s)
	}

	invalid := []string{
		"",
		"   ",
		"1.0.0",          // no operator
		">=not.a.version",
		">=0.8.0,,<1.0.0",
		"~=1",            // compatible release needs two segments
		"=>0.8.0",
	}
	for _, s := range invalid {
		_, err := ParseConstraint(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrInvalidConstraint), s)
	}
}

func TestConstraintMatches(t *testing.T) {
	testCases := []struct {
		constraint string
		version    string
		expected   bool
	}{
		{">=0.8.0", "0.8.0", true},
		{">=0.8.0", "0.7.9", false},
		{">0.8.0", "0.8.0", false},
		{">=0.8.0,<1.0.0", "0.9.5", true},
		{">=0.8.0,<1.0.0", "1.0.0", false},
		{"==1.0.0", "1.0.0", true},
		{"==1.0.0", "1.0.1", false},
		{"!=1.0.0", "1.0.0", false},
		{"!=1.0.0", "1.0.1", true},
		{"~=1.2.3", "1.2.9", true},
		{"~=1.2.3", "1.3.0", false},
		{"~=1.2", "1.9.0", true},
		{"~=1.2", "2.0.0", false},
	}
	for _, tc := range testCases {
		c, err := ParseConstraint(tc.constraint)
		require.NoError(t, err)
		v := semver.MustParse(tc.version)
		assert.Equalf(t, tc.expected, c.Matches(v), "%s matches %s", tc.constraint, tc.version)
	}
}

func TestCompareConstraints(t *testing.T) {
	testCases := []struct {
		c1, c2   string
		expected Relationship
	}{
		{">=0.8.0", ">=0.8.0", RelSame},
		{">=0.8.0", ">= 0.8.0", RelSame},
		{">=0.8.0", ">=0.9.0", RelSuperset},
		{">=0.9.0", ">=0.8.0", RelSubset},
		{">=0.8.0,<0.9.0", ">=0.9.0,<1.0.0", RelDisjoint},
		{">=0.8.0,<1.0.0", ">=0.9.0,<1.0.0", RelSuperset},
		{">=0.8.0,<0.9.5", ">=0.9.0,<1.0.0", RelPartial},
		{">=0.9.0,<1.0.0", ">=0.8.0,<0.9.0", RelDisjoint},
		{"==1.0.0", "==1.0.0", RelSame},
		{"==1.0.0", "==2.0.0", RelDisjoint},
		{"==1.0.0", ">=0.9.0,<1.1.0", RelSubset},
		{"~=1.2.3", ">=1.2.3,<1.3.0", RelSame},
		{"~=1.2", ">=1.2.0,<2.0.0", RelSame},
		{"!=1.0.0", ">=0.0.0", RelPartial},
		{"<1.0.0", "<1.0.0,>2.0.0", RelDisjoint}, // unsatisfiable right side matches nothing
	}
	for _, tc := range testCases {
		actual, err := CompareConstraints(tc.c1, tc.c2)
		require.NoError(t, err)
		assert.Equalf(t, tc.expected, actual, "'%s' vs '%s'", tc.c1, tc.c2)
	}
}

func TestCompareConstraintsSymmetry(t *testing.T) {
	constraints := []string{
		">=0.8.0",
		">=0.9.0",
		">=0.8.0,<0.9.0",
		">=0.9.0,<1.0.0",
		">=0.8.0,<1.0.0",
		">=0.8.0,<0.9.5",
		"==1.0.0",
		"!=1.0.0",
		"~=1.2.3",
	}
	mirror := map[Relationship]Relationship{
		RelSame:     RelSame,
		RelDisjoint: RelDisjoint,
		RelSuperset: RelSubset,
		RelSubset:   RelSuperset,
		RelPartial:  RelPartial,
	}
	for _, a := range constraints {
		for _, b := range constraints {
			fwd, err := CompareConstraints(a, b)
			require.NoError(t, err)
			rev, err := CompareConstraints(b, a)
			require.NoError(t, err)
			assert.Equalf(t, mirror[fwd], rev, "'%s' vs '%s'", a, b)
		}
	}
}

func TestCompareConstraintsInvalidInput(t *testing.T) {
	_, err := CompareConstraints("bogus", ">=1.0.0")
	require.Error(t, err)
	_, err = CompareConstraints(">=1.0.0", "bogus")
	require.Error(t, err)
}
