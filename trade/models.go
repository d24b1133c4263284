package trade

import (
	"time"

	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/types"
)

// Trade records a market sale's value delta for reporting. Recording a
// trade never changes the seller's stored balance; Delta captures how
// far the sale price cleared the protocol baseline, clamped at zero.
type Trade struct {
	ID            id.TradeID  `json:"id"`
	MemberID      id.MemberID `json:"member_id"`
	Quantity      types.Units `json:"quantity"`
	UnitPrice     types.Money `json:"unit_price"`
	BaselinePrice types.Money `json:"baseline_price"`
	Delta         types.Money `json:"delta"`
	ExecutedAt    time.Time   `json:"executed_at"`
}
