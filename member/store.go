package member

import (
	"context"

	"github.com/currentsee/solarledger/id"
)

type Store interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, memberID id.MemberID) (*Member, error)
	GetByHandle(ctx context.Context, handle string) (*Member, error)
	List(ctx context.Context, opts ListOpts) ([]*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, memberID id.MemberID) error
}

// ListOpts filters roster listings. Reserve and placeholder accounts
// are excluded unless explicitly included; order is join order.
type ListOpts struct {
	IncludeReserves     bool
	IncludePlaceholders bool
	Limit               int
	Offset              int
}
