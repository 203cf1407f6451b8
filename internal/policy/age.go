// Package policy holds the pure decision logic of the account workflows:
// age calculation, role eligibility and the role-assignment matrix.
package policy

import (
	"errors"
	"time"
)

// ErrInvalidDate is returned when a date of birth is absent or in the future.
var ErrInvalidDate = errors.New("invalid date of birth")

// Age returns the number of completed years between dob and asOf,
// decremented by one when asOf's month/day precedes the birthday in the
// current year count.
func Age(dob, asOf time.Time) (int, error) {
	if dob.IsZero() {
		return 0, ErrInvalidDate
	}
	if dob.After(asOf) {
		return 0, ErrInvalidDate
	}

	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}

	return age, nil
}
