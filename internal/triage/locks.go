package triage

import "sync"

// sessionLocker serializes the read-modify-write cycle per session so
// concurrent turns for one session cannot interleave destructively. Locks are
// in-process; the service never holds one across an LLM or email call.
type sessionLocker struct {
	locks sync.Map // session id -> *sync.Mutex
}

// lock acquires the session's mutex and returns its unlock func.
func (l *sessionLocker) lock(sessionID string) func() {
	v, _ := l.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
