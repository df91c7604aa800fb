package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"societyhub/internal/repository"
)

var ErrNotFound = repository.ErrNotFound

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func ensureAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scopeCondition appends the tenant restriction to a WHERE clause. A
// global scope adds nothing.
func scopeCondition(scope repository.TenantScope, conditions []string, args []any) ([]string, []any) {
	if scope.Global() {
		return conditions, args
	}

	args = append(args, scope.Email)
	conditions = append(conditions, fmt.Sprintf("admin_email = $%d", len(args)))
	return conditions, args
}
