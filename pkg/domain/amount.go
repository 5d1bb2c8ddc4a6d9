package domain

import "github.com/shopspring/decimal"

// CentPlaces is the scale every stored amount has.
const CentPlaces = 2

// IsWholeCents reports whether d has no fraction of a cent. Trailing zeros
// beyond the second decimal are fine: 100.500 is 100.50.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(CentPlaces))
}
