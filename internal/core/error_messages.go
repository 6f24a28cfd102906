package core

// # Error Codes Reference
//
// Each failure the CLI can report maps to a short code users can quote when
// asking for help. Typed errors are matched first (errors.Is / errors.As),
// then the lowercased error text is searched for known patterns.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large       tableio.ErrFileTooLarge, "file too large"
//	FILE002 - Invalid CSV          "invalid csv"
//	FILE003 - Unsupported format   *tableio.UnsupportedFormatError, "unsupported file format"
//	FILE004 - File not found       os.ErrNotExist, "no such file"
//	FILE005 - Empty file           tableio.ErrEmptyFile, "empty file"
//	FILE006 - Sheet not found      tableio.ErrSheetNotFound, "sheet not found"
//	FILE007 - Permission denied    os.ErrPermission, "permission denied"
//	FILE008 - Unreadable workbook  "zip: not a valid zip file", "not a valid xls"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid rules file    "invalid rules file"
//	CFG002 - Invalid settings      "validation failed"
//
// # Database Errors (DB001-DB099)
//
// Only reachable when the Postgres export is enabled.
//
//	DB001 - Duplicate key          SQLSTATE 23505, "duplicate key"
//	DB004 - Connection refused     "connection refused"
//	DB005 - Connection reset       "connection reset"
//	DB006 - Timeout                context.DeadlineExceeded, "timeout"
//	DB008 - Permission denied      SQLSTATE 42501
//	DB009 - Unknown database       SQLSTATE 3D000
//	DB010 - Login failed           SQLSTATE 28000, 28P01
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled             context.Canceled
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the original error.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/tableio"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks or raise INPUT_MAX_FILE_SIZE",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated and quotes are balanced",
		Code:    "FILE002",
	}
	msgUnsupported = UserMessage{
		Message: "File type is not supported",
		Action:  "Read .csv, .xls or .xlsx files and write .csv or .xlsx files",
		Code:    "FILE003",
	}
	msgNotFound = UserMessage{
		Message: "File not found",
		Action:  "Check the input path",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The input file is empty",
		Action:  "Provide a file with a header row",
		Code:    "FILE005",
	}
	msgSheetNotFound = UserMessage{
		Message: "Worksheet not found in the workbook",
		Action:  "Check the --sheet flag or INPUT_SHEET against the workbook's sheet names",
		Code:    "FILE006",
	}
	msgPermission = UserMessage{
		Message: "Permission denied",
		Action:  "Check that you can read the input and write the output directory",
		Code:    "FILE007",
	}
	msgCancelled = UserMessage{
		Message: "Run was cancelled",
		Action:  "Run the command again when ready",
		Code:    "RUN001",
	}
	msgTimeout = UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}
)

// errorTarget matches an error by identity or type.
type errorTarget struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// errorTargets are checked in order before any text pattern.
var errorTargets = []errorTarget{
	{match: func(err error) bool {
		var u *tableio.UnsupportedFormatError
		return errors.As(err, &u)
	}, msg: msgUnsupported},
	{match: is(tableio.ErrFileTooLarge), msg: msgFileTooLarge},
	{match: is(tableio.ErrEmptyFile), msg: msgEmptyFile},
	{match: is(tableio.ErrSheetNotFound), msg: msgSheetNotFound},
	{match: is(os.ErrNotExist), msg: msgNotFound},
	{match: is(os.ErrPermission), msg: msgPermission},
	{match: is(context.Canceled), msg: msgCancelled},
	{match: is(context.DeadlineExceeded), msg: msgTimeout},
}

// pgErrorMessages maps Postgres SQLSTATE codes to user messages.
var pgErrorMessages = map[string]UserMessage{
	pgerrcode.UniqueViolation: {
		Message: "A record with this key already exists in the export table",
		Action:  "Use --pg-truncate or export to a new table",
		Code:    "DB001",
	},
	pgerrcode.InsufficientPrivilege: {
		Message: "The database user may not write to the export table",
		Action:  "Grant INSERT and CREATE on the target schema",
		Code:    "DB008",
	},
	pgerrcode.InvalidCatalogName: {
		Message: "The database does not exist",
		Action:  "Check the database name in DATABASE_URL",
		Code:    "DB009",
	},
	pgerrcode.InvalidAuthorizationSpecification: {
		Message: "Database login failed",
		Action:  "Check the credentials in DATABASE_URL",
		Code:    "DB010",
	},
	pgerrcode.InvalidPassword: {
		Message: "Database login failed",
		Action:  "Check the credentials in DATABASE_URL",
		Code:    "DB010",
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "unsupported file format", msg: msgUnsupported},
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "invalid csv", msg: msgInvalidCSV},
	{pattern: "no such file", msg: msgNotFound},
	{pattern: "empty file", msg: msgEmptyFile},
	{pattern: "sheet not found", msg: msgSheetNotFound},
	{pattern: "permission denied", msg: msgPermission},
	{
		pattern: "zip: not a valid zip file",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Re-save the file from Excel as .xlsx",
			Code:    "FILE008",
		},
	},
	{
		pattern: "not a valid xls",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Re-save the file from Excel as .xlsx",
			Code:    "FILE008",
		},
	},

	{
		pattern: "invalid rules file",
		msg: UserMessage{
			Message: "The rules file could not be used",
			Action:  "Fix the YAML in the file named by --rules or CLEANER_RULES_FILE",
			Code:    "CFG001",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "Invalid settings",
			Action:  "Check the environment variables listed in the error",
			Code:    "CFG002",
		},
	},

	{
		pattern: "duplicate key",
		msg:     pgErrorMessages[pgerrcode.UniqueViolation],
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check DATABASE_URL and that the server is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{pattern: "timeout", msg: msgTimeout},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Run again with LOG_LEVEL=debug and check the log output",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors win over text patterns. If nothing matches, a generic
// fallback message with code ERR000 is returned.
//
// Example:
//
//	_, err := svc.Run(ctx, "notes.txt", "out.xlsx")
//	msg := MapError(err)
//	// msg.Code == "FILE003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, t := range errorTargets {
		if t.match(err) {
			return t.msg
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := pgErrorMessages[pgErr.Code]; ok {
			return msg
		}
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
