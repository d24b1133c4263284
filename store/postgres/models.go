package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	"github.com/currentsee/solarledger/trade"
	"github.com/currentsee/solarledger/types"
)

// ==================== Member models ====================

type memberModel struct {
	grove.BaseModel `grove:"table:solar_members"`

	ID                   string    `grove:"id,pk"`
	Handle               string    `grove:"handle"`
	Name                 string    `grove:"name"`
	Email                string    `grove:"email"`
	JoinedDate           string    `grove:"joined_date"`
	TotalRays            int64     `grove:"total_rays"`
	IsAnonymous          bool      `grove:"is_anonymous"`
	IsReserve            bool      `grove:"is_reserve"`
	IsPlaceholder        bool      `grove:"is_placeholder"`
	LastDistributionDate string    `grove:"last_distribution_date"`
	Notes                string    `grove:"notes"`
	CreatedAt            time.Time `grove:"created_at"`
	UpdatedAt            time.Time `grove:"updated_at"`
}

func toMemberModel(m *member.Member) *memberModel {
	return &memberModel{
		ID:                   m.ID.String(),
		Handle:               m.Handle,
		Name:                 m.Name,
		Email:                m.Email,
		JoinedDate:           m.JoinedDate.String(),
		TotalRays:            m.TotalUnits.Rays(),
		IsAnonymous:          m.IsAnonymous,
		IsReserve:            m.IsReserve,
		IsPlaceholder:        m.IsPlaceholder,
		LastDistributionDate: m.LastDistributionDate.String(),
		Notes:                m.Notes,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func fromMemberModel(m *memberModel) (*member.Member, error) {
	memberID, err := id.ParseMemberID(m.ID)
	if err != nil {
		return nil, err
	}

	joined, err := types.ParseDate(m.JoinedDate)
	if err != nil {
		return nil, err
	}

	var lastDist types.Date
	if m.LastDistributionDate != "" {
		lastDist, err = types.ParseDate(m.LastDistributionDate)
		if err != nil {
			return nil, err
		}
	}

	return &member.Member{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                   memberID,
		Handle:               m.Handle,
		Name:                 m.Name,
		Email:                m.Email,
		JoinedDate:           joined,
		TotalUnits:           types.Rays(m.TotalRays),
		IsAnonymous:          m.IsAnonymous,
		IsReserve:            m.IsReserve,
		IsPlaceholder:        m.IsPlaceholder,
		LastDistributionDate: lastDist,
		Notes:                m.Notes,
	}, nil
}

// ==================== Distribution models ====================

type distributionModel struct {
	grove.BaseModel `grove:"table:solar_distributions"`

	ID        string    `grove:"id,pk"`
	MemberID  string    `grove:"member_id"`
	Date      string    `grove:"date"`
	Rays      int64     `grove:"rays"`
	USDCents  int64     `grove:"usd_cents"`
	Currency  string    `grove:"currency"`
	Note      string    `grove:"note"`
	AppliedAt time.Time `grove:"applied_at"`
}

func toDistributionModel(d *distribution.Distribution) *distributionModel {
	return &distributionModel{
		ID:        d.ID.String(),
		MemberID:  d.MemberID.String(),
		Date:      d.Date.String(),
		Rays:      d.Units.Rays(),
		USDCents:  d.USDValue.Amount,
		Currency:  d.USDValue.Currency,
		Note:      d.Note,
		AppliedAt: d.AppliedAt,
	}
}

func fromDistributionModel(m *distributionModel) (*distribution.Distribution, error) {
	distID, err := id.ParseDistributionID(m.ID)
	if err != nil {
		return nil, err
	}
	memberID, err := id.ParseMemberID(m.MemberID)
	if err != nil {
		return nil, err
	}
	date, err := types.ParseDate(m.Date)
	if err != nil {
		return nil, err
	}

	return &distribution.Distribution{
		ID:        distID,
		MemberID:  memberID,
		Date:      date,
		Units:     types.Rays(m.Rays),
		USDValue:  types.Money{Amount: m.USDCents, Currency: m.Currency},
		Note:      m.Note,
		AppliedAt: m.AppliedAt,
	}, nil
}

// ==================== Trade models ====================

type tradeModel struct {
	grove.BaseModel `grove:"table:solar_trades"`

	ID            string    `grove:"id,pk"`
	MemberID      string    `grove:"member_id"`
	QuantityRays  int64     `grove:"quantity_rays"`
	UnitCents     int64     `grove:"unit_cents"`
	BaselineCents int64     `grove:"baseline_cents"`
	DeltaCents    int64     `grove:"delta_cents"`
	Currency      string    `grove:"currency"`
	ExecutedAt    time.Time `grove:"executed_at"`
}

func toTradeModel(t *trade.Trade) *tradeModel {
	return &tradeModel{
		ID:            t.ID.String(),
		MemberID:      t.MemberID.String(),
		QuantityRays:  t.Quantity.Rays(),
		UnitCents:     t.UnitPrice.Amount,
		BaselineCents: t.BaselinePrice.Amount,
		DeltaCents:    t.Delta.Amount,
		Currency:      t.UnitPrice.Currency,
		ExecutedAt:    t.ExecutedAt,
	}
}

func fromTradeModel(m *tradeModel) (*trade.Trade, error) {
	tradeID, err := id.ParseTradeID(m.ID)
	if err != nil {
		return nil, err
	}
	memberID, err := id.ParseMemberID(m.MemberID)
	if err != nil {
		return nil, err
	}

	return &trade.Trade{
		ID:            tradeID,
		MemberID:      memberID,
		Quantity:      types.Rays(m.QuantityRays),
		UnitPrice:     types.Money{Amount: m.UnitCents, Currency: m.Currency},
		BaselinePrice: types.Money{Amount: m.BaselineCents, Currency: m.Currency},
		Delta:         types.Money{Amount: m.DeltaCents, Currency: m.Currency},
		ExecutedAt:    m.ExecutedAt,
	}, nil
}

// ==================== Market models ====================

type listingModel struct {
	grove.BaseModel `grove:"table:solar_listings"`

	ID         string    `grove:"id,pk"`
	OwnerID    string    `grove:"owner_id"`
	Kind       string    `grove:"kind"`
	KWh        int64     `grove:"kwh"`
	PriceCents int64     `grove:"price_cents"`
	Currency   string    `grove:"currency"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toListingModel(l *market.Listing) *listingModel {
	return &listingModel{
		ID:         l.ID.String(),
		OwnerID:    l.Owner.String(),
		Kind:       string(l.Kind),
		KWh:        l.KWh,
		PriceCents: l.PricePerKWh.Amount,
		Currency:   l.PricePerKWh.Currency,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func fromListingModel(m *listingModel) (*market.Listing, error) {
	listingID, err := id.ParseListingID(m.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := id.ParseMemberID(m.OwnerID)
	if err != nil {
		return nil, err
	}

	return &market.Listing{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          listingID,
		Owner:       ownerID,
		Kind:        market.Kind(m.Kind),
		KWh:         m.KWh,
		PricePerKWh: types.Money{Amount: m.PriceCents, Currency: m.Currency},
	}, nil
}

type fillModel struct {
	grove.BaseModel `grove:"table:solar_fills"`

	ID         string    `grove:"id,pk"`
	BuyerID    string    `grove:"buyer_id"`
	SellerID   string    `grove:"seller_id"`
	KWh        int64     `grove:"kwh"`
	PriceCents int64     `grove:"price_cents"`
	Currency   string    `grove:"currency"`
	MatchedAt  time.Time `grove:"matched_at"`
}

func toFillModel(f *market.Fill) *fillModel {
	return &fillModel{
		ID:         f.ID.String(),
		BuyerID:    f.Buyer.String(),
		SellerID:   f.Seller.String(),
		KWh:        f.KWh,
		PriceCents: f.Price.Amount,
		Currency:   f.Price.Currency,
		MatchedAt:  f.MatchedAt,
	}
}

func fromFillModel(m *fillModel) (*market.Fill, error) {
	fillID, err := id.ParseFillID(m.ID)
	if err != nil {
		return nil, err
	}
	buyerID, err := id.ParseMemberID(m.BuyerID)
	if err != nil {
		return nil, err
	}
	sellerID, err := id.ParseMemberID(m.SellerID)
	if err != nil {
		return nil, err
	}

	return &market.Fill{
		ID:        fillID,
		Buyer:     buyerID,
		Seller:    sellerID,
		KWh:       m.KWh,
		Price:     types.Money{Amount: m.PriceCents, Currency: m.Currency},
		MatchedAt: m.MatchedAt,
	}, nil
}
