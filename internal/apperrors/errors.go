package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the collaborator that produced it.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindRepositoryAccess   Kind = "repository_access"
	KindGitOperation       Kind = "git_operation"
	KindRemoteRejected     Kind = "remote_rejected"
	KindGenerationProvider Kind = "generation_provider"
	KindGenerationParse    Kind = "generation_parse"
	KindPullRequest        Kind = "pull_request"
	KindAuth               Kind = "auth"
)

// Error carries the originating collaborator's message verbatim so it can be
// surfaced to the submitter without paraphrasing.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match against a kind sentinel, e.g.
// errors.Is(err, apperrors.GenerationParse).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Kind sentinels for errors.Is matching.
var (
	Validation         = &Error{Kind: KindValidation}
	RepositoryAccess   = &Error{Kind: KindRepositoryAccess}
	GitOperation       = &Error{Kind: KindGitOperation}
	RemoteRejected     = &Error{Kind: KindRemoteRejected}
	GenerationProvider = &Error{Kind: KindGenerationProvider}
	GenerationParse    = &Error{Kind: KindGenerationParse}
	PullRequest        = &Error{Kind: KindPullRequest}
	Auth               = &Error{Kind: KindAuth}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying error reachable through errors.Unwrap while
// classifying it.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the classification of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
