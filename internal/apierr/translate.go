package apierr

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Translate converts data-layer and credential errors into operational
// errors. Anything it does not recognize passes through unchanged and is
// treated as unexpected by the response layer.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(404, "not_found", errors.New("document not found"))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return New(400, "duplicate_field", fmt.Errorf("duplicate field value on %s, please use another value", pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return New(400, "invalid_reference", fmt.Errorf("referenced document does not exist (%s)", pgErr.ConstraintName))
		case pgCheckViolation:
			return New(400, "invalid_input", fmt.Errorf("invalid input data (%s)", pgErr.ConstraintName))
		}
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return New(401, "token_expired", errors.New("your token has expired, please log in again"))
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrSignatureInvalid),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return New(401, "invalid_token", errors.New("invalid token, please log in again"))
	}

	return err
}
