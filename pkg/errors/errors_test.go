package errors

import (
	stderr "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = New("something failed")

func TestWrapKeepsSentinel(t *testing.T) {
	cause := stderr.New("root cause")
	err := errSentinel.Wrap(cause)

	assert.True(t, Is(err, errSentinel))
	assert.True(t, Is(err, cause))
	assert.EqualError(t, err, "something failed: root cause")

	// the sentinel itself is untouched
	assert.NoError(t, errSentinel.Unwrap())
}

func TestWrapMessage(t *testing.T) {
	err := errSentinel.WrapMessage("key %q", "apps.json")
	assert.True(t, Is(err, errSentinel))
	assert.EqualError(t, err, `something failed: key "apps.json"`)
}

func TestWrapChains(t *testing.T) {
	inner := New("inner").Wrap(stderr.New("io failure"))
	outer := errSentinel.Wrap(inner)

	assert.True(t, Is(outer, errSentinel))
	assert.True(t, Is(outer, inner))

	var asErr *Error
	require.True(t, As(outer, &asErr))
}

func TestStandardInterop(t *testing.T) {
	err := fmt.Errorf("outer context: %w", errSentinel.WrapMessage("detail"))
	assert.True(t, stderr.Is(err, errSentinel))
}
