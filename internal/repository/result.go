package repository

import (
	"database/sql"
	"fmt"
)

// expectOne turns an exec result into sql.ErrNoRows when nothing matched, so
// updates of unknown ids surface as not found.
func expectOne(res sql.Result, err error) func(op string) error {
	return func(op string) error {
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if n == 0 {
			return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
		}
		return nil
	}
}
