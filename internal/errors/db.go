package errors

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Patterns for pulling structure out of PgError.Detail text.
var (
	// "Key (field)=(value) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table ..."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// "... is not present in table ..."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError translates a database error into an AppError the API layer
// can render: pgx.ErrNoRows becomes NotFound, unique violations become
// Conflict, foreign key violations become ForeignKey, check and
// not-null violations become Validation, and context errors become
// Timeout/Canceled. Anything unrecognized passes through unchanged.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return wrapDB(ErrCodeTimeout, "Request timed out. Please try again.", "", err)
	case errors.Is(err, context.Canceled):
		return wrapDB(ErrCodeCanceled, "Request was canceled.", "", err)
	case errors.Is(err, pgx.ErrNoRows):
		return wrapDB(ErrCodeNotFound, "Resource not found", "", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		field := uniqueViolationField(pgErr)
		return wrapDB(ErrCodeConflict, uniqueViolationMessage(pgErr.ConstraintName, field), field, pgErr)
	case pgerrcode.ForeignKeyViolation:
		return wrapDB(ErrCodeForeignKey, foreignKeyMessage(pgErr), "", pgErr)
	case pgerrcode.NotNullViolation:
		if pgErr.ColumnName != "" {
			return wrapDB(ErrCodeValidation, "This field is required.", pgErr.ColumnName, pgErr)
		}
		return wrapDB(ErrCodeValidation, "Required field is missing. Please check your input.", "", pgErr)
	case pgerrcode.CheckViolation:
		if pgErr.ColumnName != "" {
			return wrapDB(ErrCodeValidation, "This field has an invalid value.", pgErr.ColumnName, pgErr)
		}
		return wrapDB(ErrCodeValidation, "Invalid data. Please check your input.", "", pgErr)
	default:
		return wrapDB(ErrCodeInternal, "A database error occurred. Please try again.", "", pgErr)
	}
}

func wrapDB(code ErrorCode, message, field string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Field: field, Cause: cause}
}

// uniqueViolationField identifies the offending column: the ColumnName
// metadata when the server provides it, else the Detail text, else the
// constraint name.
func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return inferFieldFromConstraint(pgErr.ConstraintName)
}

// uniqueViolationMessage speaks the portal's language for the unique
// constraints users actually run into.
func uniqueViolationMessage(constraintName, field string) string {
	name := strings.ToLower(constraintName)
	switch {
	case strings.Contains(name, "applications_job_id_candidate_id"):
		return "You have already applied to this job."
	case strings.Contains(name, "saved_jobs_job_id_candidate_id"):
		return "You have already saved this job."
	case field == "email":
		return "An account with this email already exists."
	default:
		return "This value already exists. Please choose a different one."
	}
}

// foreignKeyMessage distinguishes deleting a referenced parent from
// inserting a child whose parent is missing, via the Detail text.
func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "Cannot delete because this item is in use by " + tableDisplayName(m[1]) + "."
	}
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "Cannot complete operation because the referenced " + tableDisplayName(m[1]) + " does not exist."
	}
	if pgErr.TableName != "" {
		return "Cannot complete operation because this item is in use by " + tableDisplayName(pgErr.TableName) + "."
	}
	return inferForeignKeyMessage(pgErr.ConstraintName)
}

// inferFieldFromConstraint recovers a field name from conventional
// constraint names like "users_email_key". Multi-column constraints and
// expression indexes ("users_lower_key") are ambiguous and yield "".
func inferFieldFromConstraint(constraintName string) string {
	parts := strings.Split(constraintName, "_")
	if len(parts) != 3 {
		return ""
	}
	if isExpressionFunction(parts[1]) {
		return ""
	}
	return parts[1]
}

var tableDisplayNames = map[string]string{
	"users":        "User",
	"jobs":         "Job",
	"applications": "Application",
	"saved_jobs":   "Saved Job",
}

// tableDisplayName renders a table name for end users.
func tableDisplayName(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if name, ok := tableDisplayNames[table]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(table, "_", " "))
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// inferForeignKeyMessage is the last-resort path when the server gave
// us nothing but a constraint name. Applications and saved_jobs are
// checked before jobs since their constraint names contain "job" too.
func inferForeignKeyMessage(constraintName string) string {
	name := strings.ToLower(constraintName)
	switch {
	case strings.Contains(name, "application"):
		return "Cannot complete operation because it is in use by an Application."
	case strings.Contains(name, "saved"):
		return "Cannot complete operation because it is in use by a Saved Job."
	case strings.Contains(name, "job"):
		return "Cannot complete operation because it is in use by a Job."
	case strings.Contains(name, "user"), strings.Contains(name, "candidate"), strings.Contains(name, "recruiter"):
		return "Cannot complete operation because it is in use by a User."
	default:
		return "Cannot complete operation because this item is in use."
	}
}

var expressionFunctions = []string{
	"lower", "upper", "trim", "ltrim", "rtrim",
	"md5", "sha1", "sha256", "encode", "decode",
}

func isExpressionFunction(s string) bool {
	return slices.Contains(expressionFunctions, strings.ToLower(s))
}
