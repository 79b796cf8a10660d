// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and
// converts them into application errors (e.g., converting
// a "foreign key violation" into a 400, or an "invalid text
// representation" into an errs.CastError)
package sqlerr

import "fmt"

// Code is the application-level category of a Postgres error.
type Code string

const (
	Other                Code = "other"
	NotNullViolation     Code = "not_null_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	UniqueViolation      Code = "unique_violation"
	CheckViolation       Code = "check_violation"
	ExclusionViolation   Code = "exclusion_violation"
	InvalidTextRepr      Code = "invalid_text_representation"
	InvalidDatetime      Code = "invalid_datetime_format"
	DatetimeOverflow     Code = "datetime_field_overflow"
	NumericOutOfRange    Code = "numeric_value_out_of_range"
	StringDataTruncation Code = "string_data_right_truncation"
)

// pgCodes maps SQLSTATE values to Code.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"22P02": InvalidTextRepr,
	"22007": InvalidDatetime,
	"22008": DatetimeOverflow,
	"22003": NumericOutOfRange,
	"22001": StringDataTruncation,
}

// MapCode converts a SQLSTATE into a Code.
func MapCode(sqlState string) Code {
	if c, ok := pgCodes[sqlState]; ok {
		return c
	}
	return Other
}

// IsCast reports whether c describes a value that could not be converted to
// the column type.
func (c Code) IsCast() bool {
	switch c {
	case InvalidTextRepr, InvalidDatetime, DatetimeOverflow, NumericOutOfRange:
		return true
	}
	return false
}

// Severity mirrors the Postgres severity levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity converts the driver's severity string into a Severity.
// Unknown values map to SeverityError.
func MapSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(s)
	}
	return SeverityError
}

// Error is a normalized Postgres error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}
