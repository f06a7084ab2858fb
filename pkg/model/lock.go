package model

import (
	"encoding/json"
	"time"

	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

// DefaultLockKey is the well-known lock marker key under a catalog root
const DefaultLockKey = "registry.lock"

// LockDescriptor is the content of the lock marker object. Its mere
// presence is the whole lock protocol: there is no lease or expiry, a
// stale lock must be removed by an operator.
type LockDescriptor struct {
	Owner      string    `json:"owner"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquired_at"`
	PID        int       `json:"pid"`
}

// ErrInvalidLock indicates a lock marker which could not be decoded
var ErrInvalidLock = errors.New("invalid lock descriptor")

// Age of the lock relative to now
func (l LockDescriptor) Age() time.Duration {
	return time.Since(l.AcquiredAt).Round(time.Second)
}

// MarshalLock serializes a lock descriptor
func MarshalLock(l LockDescriptor) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// UnmarshalLock parses a lock marker object
func UnmarshalLock(data []byte) (LockDescriptor, error) {
	var l LockDescriptor
	if err := json.Unmarshal(data, &l); err != nil {
		return LockDescriptor{}, ErrInvalidLock.Wrap(err)
	}
	return l, nil
}
