// Package distribution records the daily SOLAR credit log.
package distribution

import (
	"time"

	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/types"
)

// Distribution is one balance change applied to a member during an
// accrual run. Units is the delta credited, not the resulting balance;
// a catch-up run that covers several missed days produces a single
// entry with a multi-day delta.
type Distribution struct {
	ID        id.DistributionID `json:"id"`
	MemberID  id.MemberID       `json:"member_id"`
	Date      types.Date        `json:"date"`
	Units     types.Units       `json:"units"`
	USDValue  types.Money       `json:"usd_value"`
	Note      string            `json:"note,omitempty"`
	AppliedAt time.Time         `json:"applied_at"`
}
