package distribution

import (
	"context"

	"github.com/currentsee/solarledger/id"
)

type Store interface {
	Append(ctx context.Context, ds []*Distribution) error
	List(ctx context.Context, memberID id.MemberID, opts ListOpts) ([]*Distribution, error)
}

type ListOpts struct {
	Limit  int
	Offset int
}
