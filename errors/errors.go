package errors

import (
	"fmt"
	"strings"

	handletable "github.com/wippyai/handle-table"
)

// Phase indicates which table operation the error occurred in
type Phase string

const (
	PhaseAlloc  Phase = "alloc"  // handle allocation
	PhaseAssign Phase = "assign" // explicit-index assignment
	PhaseFree   Phase = "free"   // handle release
	PhaseGrow   Phase = "grow"   // table growth
	PhaseLookup Phase = "lookup" // handle resolution
)

// Kind categorizes the error
type Kind string

const (
	// KindCorruption marks inconsistent table state: free-list links or
	// head/tail invariants violated. Corruption is reported, never
	// silently repaired; the caller decides whether to tear down the
	// table.
	KindCorruption Kind = "corruption"

	// KindExhausted marks index-space exhaustion. This is an
	// out-of-resources condition, not a corruption.
	KindExhausted Kind = "exhausted"

	// KindBusy marks an assignment whose target slot is already occupied.
	KindBusy Kind = "busy"

	// KindStaleHandle marks a handle that failed validation: wrong
	// generation, wrong type, destroyed, or already free.
	KindStaleHandle Kind = "stale_handle"

	// KindInvalidInput marks arguments outside the accepted domain.
	KindInvalidInput Kind = "invalid_input"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Handle handletable.Handle // offending handle, zero when not applicable
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Handle != 0 {
		b.WriteString(" handle ")
		b.WriteString(e.Handle.String())
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Handle sets the offending handle
func (b *Builder) Handle(h handletable.Handle) *Builder {
	b.err.Handle = h
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Corruption creates a corruption error
func Corruption(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCorruption,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Exhausted creates an index-space exhaustion error
func Exhausted(phase Phase, need, limit uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhausted,
		Detail: fmt.Sprintf("index space exhausted: need %d entries, limit %d", need, limit),
		Value:  need,
	}
}

// Busy creates an error for an assignment target that is occupied
func Busy(phase Phase, h handletable.Handle, typ handletable.Type) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBusy,
		Handle: h,
		Detail: fmt.Sprintf("slot is occupied by type %d", typ),
	}
}

// StaleHandle creates a validation-failure error
func StaleHandle(phase Phase, h handletable.Handle, reason string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStaleHandle,
		Handle: h,
		Detail: reason,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
