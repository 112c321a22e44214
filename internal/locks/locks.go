// Package locks provides per-user mutual exclusion around the
// read-current-version, mutate, append-version sequence.
package locks

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be taken before ctx ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializes work per key. The returned release func is safe to call
// more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// UserKey namespaces a lock for one user's history.
func UserKey(userID string) string {
	return "resume-agent:lock:user:" + userID
}

// DesignKey namespaces a lock for one user's design assignment.
func DesignKey(userID string) string {
	return "resume-agent:lock:design:" + userID
}
