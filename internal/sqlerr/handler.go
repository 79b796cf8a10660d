package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/errfunnel/internal/errs"
)

var (
	// invalid input syntax for type uuid: "abc"
	invalidInputRe = regexp.MustCompile(`(?:invalid input syntax for(?: type)?|invalid input value for enum) ([\w ]+?): "(.*)"$`)

	// value "99999999999" is out of range for type integer
	outOfRangeRe = regexp.MustCompile(`^value "(.*)" is out of range for type ([\w ]+)$`)

	// date/time field value out of range: "2024-13-45"
	datetimeRe = regexp.MustCompile(`^date/time field value out of range: "(.*)"$`)

	uniqueKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
)

// ErrCode reports the Code of err when it is (or wraps) a *sqlerr.Error,
// Other otherwise.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into *Error, keeping the
// original for Unwrap.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds "<DOMAIN>_<ACTION>" codes such as
// USER_ALREADY_EXISTS from the table name and violation type.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation, ExclusionViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringDataTruncation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation, ExclusionViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case StringDataTruncation:
		return "One or more values are too long"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers a "<entity>_id" column, then the singularized
// table name, then "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns snake_case into Title Case: "first_name" -> "First Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the column from constraint names
// following "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueKeyRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// castFromPgError builds the CastError for a conversion failure. The bad
// value and target type come from the server message; the path is the
// column when Postgres reports one.
func castFromPgError(sqlErr *Error) *errs.CastError {
	var kind, value string

	switch {
	case invalidInputRe.MatchString(sqlErr.Message):
		m := invalidInputRe.FindStringSubmatch(sqlErr.Message)
		kind, value = m[1], m[2]
	case outOfRangeRe.MatchString(sqlErr.Message):
		m := outOfRangeRe.FindStringSubmatch(sqlErr.Message)
		value, kind = m[1], m[2]
	case datetimeRe.MatchString(sqlErr.Message):
		m := datetimeRe.FindStringSubmatch(sqlErr.Message)
		value, kind = m[1], "timestamp"
	}

	if kind == "" {
		kind = sqlErr.DataTypeName
	}

	path := sqlErr.ColumnName
	if path == "" {
		path = "value"
	}

	return errs.NewCastError(path, value, kind, sqlErr)
}

// HandleError converts a database error into an application error.
//
//   - errs.Failure values (AppError, CastError, UnknownError) are returned
//     unchanged.
//   - *pgconn.PgError conversion failures become *errs.CastError.
//   - constraint violations become operational 400/409 *errs.AppError whose
//     Code is the generated domain code and whose Details carry the SQLSTATE.
//   - pgx.ErrNoRows / sql.ErrNoRows become a 404.
//   - anything else is returned unchanged so the terminal handler treats it
//     as an internal failure.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var (
		appErr     *errs.AppError
		castErr    *errs.CastError
		unknownErr *errs.UnknownError
	)
	if errors.As(err, &appErr) || errors.As(err, &castErr) || errors.As(err, &unknownErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sqlErr := ConvertPgError(pgErr)

		if sqlErr.Code.IsCast() {
			return castFromPgError(sqlErr)
		}

		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)
		details := map[string]any{"sqlState": sqlErr.DatabaseCode}

		switch sqlErr.Code {
		case ForeignKeyViolation, CheckViolation, StringDataTruncation:
			return errs.NewBadRequestError(userMessage, errorCode, details)

		case UniqueViolation, ExclusionViolation:
			if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			return errs.NewAppError(userMessage, http.StatusConflict, details, "", errorCode)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{{
				Field: strings.ToLower(sqlErr.ColumnName),
				Error: "is required",
			}}
			return errs.NewBadRequestError(userMessage, errorCode, fieldErrors)

		default:
			return err
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		// Repositories annotate ErrNoRows as "table:<name>: ..." when they
		// want an entity-specific message.
		const tablePrefix = "table:"
		errMsg := err.Error()
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(table, "")), nil)
		}
		return errs.NewNotFoundError("Resource not found", nil)
	}

	return err
}
