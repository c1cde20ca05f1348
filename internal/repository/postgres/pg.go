package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes we branch on.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The partial unique indexes on event_sessions and check_ins are
// the authoritative guards for the invariants; application-level checks are
// only a fast path.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pq.ErrorCode(uniqueViolationCode)
}
