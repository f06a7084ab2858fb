// Package status exports errors produced by the core package.
package status

import (
	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

var (
	// ErrLockHeld indicates another owner's lock marker is present.
	// Fatal: the workflow never waits for or steals a lock.
	ErrLockHeld = errors.New("registry lock is held")

	// ErrConflict indicates an upsert decision reached FAIL, blocking
	// the whole batch
	ErrConflict = errors.New("registry merge conflict")

	// ErrVerifyMismatch indicates the post-upload byte comparison
	// failed, triggering rollback
	ErrVerifyMismatch = errors.New("upload verification mismatch")

	// ErrNoMatch indicates a removal found no entries for the name
	ErrNoMatch = errors.New("no entries match")

	// ErrAborted indicates the operator declined the confirmation
	ErrAborted = errors.New("operation aborted")
)
