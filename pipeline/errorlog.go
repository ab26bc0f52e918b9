package pipeline

import "sync"

// ErrorLog is an error accumulator that may be shared between goroutines.
// Each Append is serialized by a mutex. Batch stages do not need it; they
// collect per worker and merge after the workers finish.
type ErrorLog struct {
	mu   sync.Mutex
	errs []string
}

// Append records msgs in call order.
func (l *ErrorLog) Append(msgs ...string) {
	l.mu.Lock()
	l.errs = append(l.errs, msgs...)
	l.mu.Unlock()
}

// Errors returns a copy of the recorded messages.
func (l *ErrorLog) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errs...)
}

// Len returns the number of recorded messages.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}
