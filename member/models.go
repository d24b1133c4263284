// Package member defines the roster member entity.
package member

import (
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/types"
)

// Member is a roster entry. TotalUnits is the stored balance and the
// store is its sole source of truth; the dollar value is derived on
// read via USDValue and never persisted.
type Member struct {
	types.Entity
	ID                   id.MemberID `json:"id"`
	Handle               string      `json:"handle"`
	Name                 string      `json:"name"`
	Email                string      `json:"email,omitempty"`
	JoinedDate           types.Date  `json:"joined_date"`
	TotalUnits           types.Units `json:"total_units"`
	IsAnonymous          bool        `json:"is_anonymous"`
	IsReserve            bool        `json:"is_reserve"`
	IsPlaceholder        bool        `json:"is_placeholder"`
	LastDistributionDate types.Date  `json:"last_distribution_date"`
	Notes                string      `json:"notes,omitempty"`
}

// Accrues reports whether the member participates in daily accrual.
// Reserve and placeholder accounts hold bookkeeping totals and are
// excluded from per-member distribution and from public counts.
func (m *Member) Accrues() bool {
	return !m.IsReserve && !m.IsPlaceholder
}

// USDValue returns the dollar value of the stored balance at the given
// per-SOLAR price.
func (m *Member) USDValue(usdPerSolar types.Money) types.Money {
	return usdPerSolar.MultiplyUnits(m.TotalUnits)
}
