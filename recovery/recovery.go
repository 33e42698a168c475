// Package recovery defines the error-recovery policy applied while reading
// malformed PDFs. Components report structural errors with a location; the
// strategy decides whether to abort, patch up, or continue.
package recovery

import "sync"

// Strategy decides how a component reacts to a structural error.
type Strategy interface {
	OnError(err error, location Location) Action
}

// Location pinpoints where in the file an error was observed.
type Location struct {
	ByteOffset int64
	ObjectNum  int
	ObjectGen  int
	Component  string
}

// Action is the strategy's verdict.
type Action int

const (
	// ActionFail aborts the surrounding operation.
	ActionFail Action = iota
	// ActionSkip drops the offending construct and continues.
	ActionSkip
	// ActionFix applies a best-effort repair and continues.
	ActionFix
)

// StrictStrategy fails on the first structural error.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy { return &StrictStrategy{} }

func (s *StrictStrategy) OnError(err error, location Location) Action { return ActionFail }

// LenientStrategy repairs what it can and records everything it saw. Batch
// extraction uses it so that one damaged object does not sink a whole file.
// One strategy may be shared by concurrent readers, so recording is
// mutex-guarded.
type LenientStrategy struct {
	mu     sync.Mutex
	errors []RecordedError
}

// RecordedError pairs an error with where it happened.
type RecordedError struct {
	Err      error
	Location Location
}

func NewLenientStrategy() *LenientStrategy { return &LenientStrategy{} }

func (s *LenientStrategy) OnError(err error, location Location) Action {
	s.mu.Lock()
	s.errors = append(s.errors, RecordedError{Err: err, Location: location})
	s.mu.Unlock()
	return ActionFix
}

// Recorded returns a copy of the errors observed so far.
func (s *LenientStrategy) Recorded() []RecordedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedError(nil), s.errors...)
}
