package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que se reintentan.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateCheckViolation       = "23514"
)

// lotMergeConstraint índice único que detecta dos creaciones concurrentes del mismo lote destino.
const lotMergeConstraint = "uq_lots_product_location_expiry"

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == sqlStateUniqueViolation
}

// isCheckViolation verifica si un error es una violación de CHECK (23514), ej. quantity >= 0.
func isCheckViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == sqlStateCheckViolation
}

// retryReason devuelve la causa si el error admite reintentar la transacción completa, o "" si no.
func retryReason(err error) string {
	pgErr := pgError(err)
	if pgErr == nil {
		return ""
	}
	switch pgErr.Code {
	case sqlStateSerializationFailure:
		return "serialization"
	case sqlStateDeadlockDetected:
		return "deadlock"
	case sqlStateUniqueViolation:
		if pgErr.ConstraintName == lotMergeConstraint {
			return "unique"
		}
	}
	return ""
}
