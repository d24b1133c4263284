// Package market models the Solar-backed energy pool: REC offers,
// PPA demand, and the fills produced when they match.
package market

import (
	"time"

	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/types"
)

// Kind distinguishes supply from demand in the energy pool.
type Kind string

const (
	// KindREC is a renewable energy certificate offer (supply).
	KindREC Kind = "REC"
	// KindPPA is a power purchase agreement posting (demand).
	KindPPA Kind = "PPA"
)

// Valid reports whether the kind is one of the two pool sides.
func (k Kind) Valid() bool {
	return k == KindREC || k == KindPPA
}

// Listing is an open energy pool entry. KWh decrements as fills match
// against it; a depleted listing is removed from the pool.
type Listing struct {
	types.Entity
	ID          id.ListingID `json:"id"`
	Owner       id.MemberID  `json:"owner"`
	Kind        Kind         `json:"kind"`
	KWh         int64        `json:"kwh"`
	PricePerKWh types.Money  `json:"price_per_kwh"`
}

// Fill is a matched trade between a PPA buyer and a REC seller. The
// fill clears at the seller's asking price.
type Fill struct {
	ID        id.FillID   `json:"id"`
	Buyer     id.MemberID `json:"buyer"`
	Seller    id.MemberID `json:"seller"`
	KWh       int64       `json:"kwh"`
	Price     types.Money `json:"price"`
	MatchedAt time.Time   `json:"matched_at"`
}

// Snapshot is the public view of the pool: open listings plus the
// fill history.
type Snapshot struct {
	Listings []*Listing `json:"listings"`
	Fills    []*Fill    `json:"fills"`
}
