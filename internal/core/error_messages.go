package core

// error_messages.go maps technical errors to user messages with a support code.
//
// # Error Codes Reference
//
// Codes are grouped by category:
//
// # Enrollment Errors (ENR001-ENR099)
//
//	ENR000 - Record not found
//	         Kind: NotFound
//
//	ENR001 - Session not found
//	         Action: Refresh the session list
//	         Code: CodeSessionNotFound
//
//	ENR002 - Child already enrolled in this session
//	         Action: Edit the existing child instead
//	         Kind: Conflict
//
//	ENR003 - Invalid child data
//	         Action: Check the submitted fields
//	         Kind: Validation
//
//	ENR004 - Child not enrolled in this session
//	         Action: Refresh the children list
//	         Code: CodeMembershipNotFound
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Spreadsheet could not be read
//	         Action: Save the file as .xlsx and try again
//	         Kind: IO
//
//	IMP002 - Too many imports in progress
//	         Patterns: "too many imports"
//
//	IMP003 - Unsupported file type
//	         Code: CodeUnsupportedFile
//
//	IMP004 - Empty file
//	         Code: CodeEmptyFile
//
//	IMP005 - File too large
//	         Patterns: "file too large", "request body too large"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key              Patterns: "duplicate key", "violates unique"
//	DB002 - Foreign key                Patterns: "violates foreign key"
//	DB003 - Connection refused         Patterns: "connection refused"
//	DB004 - Connection reset           Patterns: "connection reset"
//	DB005 - Deadlock                   Patterns: "deadlock"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled         Patterns: "context canceled"
//	REQ002 - Request timed out         Patterns: "context deadline exceeded", "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests        Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Tagged errors (*Error) are mapped by code, then by kind; untagged errors
// fall through to case-insensitive pattern matching. The first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// kindMessages maps tagged error kinds to their default user message.
// The Message field is replaced by the error's own message when it has one.
var kindMessages = map[ErrorKind]UserMessage{
	KindNotFound: {
		Message: "Record not found",
		Action:  "Refresh the page and try again",
		Code:    "ENR000",
	},
	KindConflict: {
		Message: "Child already enrolled in this session",
		Action:  "Edit the existing child instead",
		Code:    "ENR002",
	},
	KindValidation: {
		Message: "Invalid child data",
		Action:  "Check the submitted fields",
		Code:    "ENR003",
	},
	KindIO: {
		Message: "Spreadsheet could not be read",
		Action:  "Save the file as .xlsx and try again",
		Code:    "IMP001",
	},
}

// codeMessages refines kindMessages for errors tagged with a specific code.
var codeMessages = map[string]UserMessage{
	CodeSessionNotFound: {
		Message: "Session not found",
		Action:  "Refresh the session list",
		Code:    CodeSessionNotFound,
	},
	CodeMembershipNotFound: {
		Message: "Child not enrolled in this session",
		Action:  "Refresh the children list",
		Code:    CodeMembershipNotFound,
	},
	CodeUnsupportedFile: {
		Message: "Unsupported file type",
		Action:  "Upload an Excel workbook (.xlsx)",
		Code:    CodeUnsupportedFile,
	},
	CodeEmptyFile: {
		Message: "The uploaded file is empty",
		Action:  "Upload a workbook with a header row and children",
		Code:    CodeEmptyFile,
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Import Errors (IMP002, IMP005)
	// =========================================================================
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the workbook into smaller files",
			Code:    "IMP005",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the workbook into smaller files",
			Code:    "IMP005",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB005)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with these values already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A record with these values already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Refresh and try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Example:
//
//	msg := MapError(Conflict("already enrolled"))
//	// msg.Code == "ENR002"
//	// msg.Message == "already enrolled"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var tagged *Error
	if errors.As(err, &tagged) && tagged.Kind != KindInternal {
		msg, ok := codeMessages[tagged.Code]
		if !ok {
			msg = kindMessages[tagged.Kind]
		}
		if tagged.Message != "" {
			msg.Message = tagged.Message
		}
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
