package trade

import (
	"context"

	"github.com/currentsee/solarledger/id"
)

type Store interface {
	Create(ctx context.Context, t *Trade) error
	Get(ctx context.Context, tradeID id.TradeID) (*Trade, error)
	List(ctx context.Context, memberID id.MemberID, opts ListOpts) ([]*Trade, error)
}

type ListOpts struct {
	Limit  int
	Offset int
}
