package ingest

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrDocumentUnreadable means no usable text could be taken from an uploaded document.
// Callers should offer manual text entry instead.
var ErrDocumentUnreadable = errors.New("document unreadable")

const (
	msgUnreadable  = "Could not read text from this document. Please paste the syllabus text using the manual text entry option."
	msgUpstream    = "Failed to analyze the syllabus. Please try again or enter the syllabus text manually."
	msgRateLimited = "The AI service is temporarily unavailable due to rate limits. Please use the manual text entry option or try again later."
)

// UpstreamError is a failure of the extraction service. It is never retried.
type UpstreamError struct {
	Op          string
	Err         error
	RateLimited bool
}

func newUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err, RateLimited: isRateLimited(err)}
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Message is the text shown to users.
func (e *UpstreamError) Message() string {
	if e.RateLimited {
		return msgRateLimited
	}
	return msgUpstream
}

// UnreadableMessage is the text shown to users when ErrDocumentUnreadable is returned.
func UnreadableMessage() string {
	return msgUnreadable
}

func isRateLimited(err error) bool {
	var rl interface{ RateLimited() bool }
	if errors.As(err, &rl) && rl.RateLimited() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit")
}
