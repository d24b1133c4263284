package store

import (
	"context"

	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	"github.com/currentsee/solarledger/trade"
)

// Store is the unified storage interface for all Solar ledger entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Every mutation is persisted before the method returns; there is no
// write-behind caching, and the store is the sole source of truth for
// member balances.
type Store interface {
	// Member methods
	CreateMember(ctx context.Context, m *member.Member) error
	GetMember(ctx context.Context, memberID id.MemberID) (*member.Member, error)
	GetMemberByHandle(ctx context.Context, handle string) (*member.Member, error)
	ListMembers(ctx context.Context, opts member.ListOpts) ([]*member.Member, error)
	UpdateMember(ctx context.Context, m *member.Member) error
	DeleteMember(ctx context.Context, memberID id.MemberID) error

	// Distribution methods
	AppendDistributions(ctx context.Context, ds []*distribution.Distribution) error
	ListDistributions(ctx context.Context, memberID id.MemberID, opts distribution.ListOpts) ([]*distribution.Distribution, error)

	// Trade methods
	CreateTrade(ctx context.Context, t *trade.Trade) error
	GetTrade(ctx context.Context, tradeID id.TradeID) (*trade.Trade, error)
	ListTrades(ctx context.Context, memberID id.MemberID, opts trade.ListOpts) ([]*trade.Trade, error)

	// Market methods
	CreateListing(ctx context.Context, l *market.Listing) error
	ListListings(ctx context.Context, opts market.ListOpts) ([]*market.Listing, error)
	UpdateListing(ctx context.Context, l *market.Listing) error
	DeleteListing(ctx context.Context, listingID id.ListingID) error
	CreateFill(ctx context.Context, f *market.Fill) error
	ListFills(ctx context.Context, opts market.ListOpts) ([]*market.Fill, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
