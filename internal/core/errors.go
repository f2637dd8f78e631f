package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers that need to choose a response.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	default:
		return "internal"
	}
}

// Error is a failure tagged with its kind. Message is safe to show to users.
// Code, when set, selects a support code more specific than the kind's default.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of a tagged error, or "" if err is untagged.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// IOFailure tags err as an unreadable-input failure.
func IOFailure(err error, format string, args ...any) error {
	return &Error{Kind: KindIO, Message: fmt.Sprintf(format, args...), Err: err}
}

// Support codes carried by tagged errors. See error_messages.go.
const (
	CodeSessionNotFound    = "ENR001"
	CodeMembershipNotFound = "ENR004"
	CodeUnsupportedFile    = "IMP003"
	CodeEmptyFile          = "IMP004"
)

func sessionNotFound(id int64) error {
	return &Error{Kind: KindNotFound, Code: CodeSessionNotFound,
		Message: fmt.Sprintf("session %d introuvable", id)}
}

func membershipNotFound(sessionID, childID int64) error {
	return &Error{Kind: KindNotFound, Code: CodeMembershipNotFound,
		Message: fmt.Sprintf("l'enfant %d n'est pas inscrit dans la session %d", childID, sessionID)}
}

func emptyFile() error {
	return &Error{Kind: KindValidation, Code: CodeEmptyFile, Message: "fichier vide"}
}

func unsupportedFile(contentType string) error {
	return &Error{Kind: KindValidation, Code: CodeUnsupportedFile,
		Message: fmt.Sprintf("type de fichier non pris en charge : %q", contentType)}
}
