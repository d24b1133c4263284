package market

import (
	"context"

	"github.com/currentsee/solarledger/id"
)

type Store interface {
	CreateListing(ctx context.Context, l *Listing) error
	ListListings(ctx context.Context, opts ListOpts) ([]*Listing, error)
	UpdateListing(ctx context.Context, l *Listing) error
	DeleteListing(ctx context.Context, listingID id.ListingID) error
	CreateFill(ctx context.Context, f *Fill) error
	ListFills(ctx context.Context, opts ListOpts) ([]*Fill, error)
}

type ListOpts struct {
	Kind   Kind // empty matches both sides
	Limit  int
	Offset int
}
