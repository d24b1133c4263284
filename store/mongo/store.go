// Package mongo implements the Solar ledger store on MongoDB via the
// Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	solarledger "github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	ledgerstore "github.com/currentsee/solarledger/store"
	"github.com/currentsee/solarledger/trade"
)

// Collection name constants.
const (
	colMembers       = "solar_members"
	colDistributions = "solar_distributions"
	colTrades        = "solar_trades"
	colListings      = "solar_listings"
	colFills         = "solar_fills"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all Solar ledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("solarledger/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Member Store ====================

func (s *Store) CreateMember(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m)
	_, err := s.mdb.NewInsert(model).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return solarledger.ErrHandleConflict
		}
		return fmt.Errorf("solarledger/mongo: create member: %w", err)
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, memberID id.MemberID) (*member.Member, error) {
	var m memberModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": memberID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, solarledger.ErrMemberNotFound
		}
		return nil, fmt.Errorf("solarledger/mongo: get member: %w", err)
	}
	return fromMemberModel(&m)
}

func (s *Store) GetMemberByHandle(ctx context.Context, handle string) (*member.Member, error) {
	var m memberModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"handle": handle}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, solarledger.ErrMemberNotFound
		}
		return nil, fmt.Errorf("solarledger/mongo: get member by handle: %w", err)
	}
	return fromMemberModel(&m)
}

func (s *Store) ListMembers(ctx context.Context, opts member.ListOpts) ([]*member.Member, error) {
	var models []memberModel

	filter := bson.M{}
	if !opts.IncludeReserves {
		filter["is_reserve"] = false
	}
	if !opts.IncludePlaceholders {
		filter["is_placeholder"] = false
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "joined_date", Value: 1}, {Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("solarledger/mongo: list members: %w", err)
	}

	result := make([]*member.Member, len(models))
	for i := range models {
		m, err := fromMemberModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = m
	}
	return result, nil
}

func (s *Store) UpdateMember(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m)
	model.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(model).
		Filter(bson.M{"_id": model.ID}).
		Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return solarledger.ErrHandleConflict
		}
		return fmt.Errorf("solarledger/mongo: update member: %w", err)
	}
	if res.MatchedCount() == 0 {
		return solarledger.ErrMemberNotFound
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, memberID id.MemberID) error {
	res, err := s.mdb.NewDelete((*memberModel)(nil)).
		Filter(bson.M{"_id": memberID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("solarledger/mongo: delete member: %w", err)
	}
	if res.DeletedCount() == 0 {
		return solarledger.ErrMemberNotFound
	}
	return nil
}

// ==================== Distribution Store ====================

func (s *Store) AppendDistributions(ctx context.Context, ds []*distribution.Distribution) error {
	if len(ds) == 0 {
		return nil
	}
	for _, d := range ds {
		m := toDistributionModel(d)
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("solarledger/mongo: append distribution: %w", err)
		}
	}
	return nil
}

func (s *Store) ListDistributions(ctx context.Context, memberID id.MemberID, opts distribution.ListOpts) ([]*distribution.Distribution, error) {
	var models []distributionModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"member_id": memberID.String()}).
		Sort(bson.D{{Key: "applied_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("solarledger/mongo: list distributions: %w", err)
	}

	result := make([]*distribution.Distribution, len(models))
	for i := range models {
		d, err := fromDistributionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = d
	}
	return result, nil
}

// ==================== Trade Store ====================

func (s *Store) CreateTrade(ctx context.Context, t *trade.Trade) error {
	m := toTradeModel(t)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("solarledger/mongo: create trade: %w", err)
	}
	return nil
}

func (s *Store) GetTrade(ctx context.Context, tradeID id.TradeID) (*trade.Trade, error) {
	var m tradeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tradeID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, solarledger.ErrTradeNotFound
		}
		return nil, fmt.Errorf("solarledger/mongo: get trade: %w", err)
	}
	return fromTradeModel(&m)
}

func (s *Store) ListTrades(ctx context.Context, memberID id.MemberID, opts trade.ListOpts) ([]*trade.Trade, error) {
	var models []tradeModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"member_id": memberID.String()}).
		Sort(bson.D{{Key: "executed_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("solarledger/mongo: list trades: %w", err)
	}

	result := make([]*trade.Trade, len(models))
	for i := range models {
		t, err := fromTradeModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

// ==================== Market Store ====================

func (s *Store) CreateListing(ctx context.Context, l *market.Listing) error {
	m := toListingModel(l)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("solarledger/mongo: create listing: %w", err)
	}
	return nil
}

func (s *Store) ListListings(ctx context.Context, opts market.ListOpts) ([]*market.Listing, error) {
	var models []listingModel

	filter := bson.M{}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("solarledger/mongo: list listings: %w", err)
	}

	result := make([]*market.Listing, len(models))
	for i := range models {
		l, err := fromListingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = l
	}
	return result, nil
}

func (s *Store) UpdateListing(ctx context.Context, l *market.Listing) error {
	m := toListingModel(l)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("solarledger/mongo: update listing: %w", err)
	}
	if res.MatchedCount() == 0 {
		return solarledger.ErrListingNotFound
	}
	return nil
}

func (s *Store) DeleteListing(ctx context.Context, listingID id.ListingID) error {
	res, err := s.mdb.NewDelete((*listingModel)(nil)).
		Filter(bson.M{"_id": listingID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("solarledger/mongo: delete listing: %w", err)
	}
	if res.DeletedCount() == 0 {
		return solarledger.ErrListingNotFound
	}
	return nil
}

func (s *Store) CreateFill(ctx context.Context, f *market.Fill) error {
	m := toFillModel(f)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("solarledger/mongo: create fill: %w", err)
	}
	return nil
}

func (s *Store) ListFills(ctx context.Context, opts market.ListOpts) ([]*market.Fill, error) {
	var models []fillModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "matched_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("solarledger/mongo: list fills: %w", err)
	}

	result := make([]*market.Fill, len(models))
	for i := range models {
		f, err := fromFillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = f
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all Solar ledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colMembers: {
			{
				Keys:    bson.D{{Key: "handle", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "joined_date", Value: 1}}},
			{Keys: bson.D{{Key: "is_reserve", Value: 1}, {Key: "is_placeholder", Value: 1}}},
		},
		colDistributions: {
			{Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "applied_at", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		colTrades: {
			{Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "executed_at", Value: 1}}},
		},
		colListings: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		colFills: {
			{Keys: bson.D{{Key: "buyer_id", Value: 1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
			{Keys: bson.D{{Key: "matched_at", Value: 1}}},
		},
	}
}
