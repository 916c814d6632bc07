package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure raised while answering a mention.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindTimeout          Kind = "timeout"
	KindTwitterAuth      Kind = "twitter:auth"
	KindTwitterDuplicate Kind = "twitter:duplicate"
	KindTwitterRateLimit Kind = "twitter:rate-limit"
)

// ChatError is a classified failure. Terminal errors must not be retried by
// reprocessing the same mention on a later run.
type ChatError struct {
	Kind     Kind
	Terminal bool
	Status   int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ChatError) Unwrap() error {
	return e.Err
}

// NewChatError builds a ChatError of the given kind.
func NewChatError(kind Kind, terminal bool, status int, message string) *ChatError {
	return &ChatError{
		Kind:     kind,
		Terminal: terminal,
		Status:   status,
		Message:  message,
	}
}

// Timeout builds the terminal error recorded when the AI backend does not
// answer within its budget.
func Timeout(err error) *ChatError {
	return &ChatError{
		Kind:     KindTimeout,
		Terminal: true,
		Message:  "ChatGPT timed out waiting for response",
		Err:      err,
	}
}

// AsChatError finds the first ChatError in err's chain.
func AsChatError(err error) (*ChatError, bool) {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsTerminal reports whether err is a classified terminal failure.
func IsTerminal(err error) bool {
	ce, ok := AsChatError(err)
	return ok && ce.Terminal
}
