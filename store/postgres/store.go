// Package postgres implements the Solar ledger store on PostgreSQL via
// the Grove ORM. This is the recommended driver for production use.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	solarledger "github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	ledgerstore "github.com/currentsee/solarledger/store"
	"github.com/currentsee/solarledger/trade"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("solarledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("solarledger/postgres: %w: %v", solarledger.ErrMigrationFailed, err)
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
	_, err := s.pg.NewInsert(model).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return solarledger.ErrHandleConflict
	}
	return err
}

func (s *Store) GetMember(ctx context.Context, memberID id.MemberID) (*member.Member, error) {
	m := new(memberModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", memberID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, solarledger.ErrMemberNotFound
		}
		return nil, err
	}
	return fromMemberModel(m)
}

func (s *Store) GetMemberByHandle(ctx context.Context, handle string) (*member.Member, error) {
	m := new(memberModel)
	err := s.pg.NewSelect(m).
		Where("handle = ?", handle).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, solarledger.ErrMemberNotFound
		}
		return nil, err
	}
	return fromMemberModel(m)
}

func (s *Store) ListMembers(ctx context.Context, opts member.ListOpts) ([]*member.Member, error) {
	var models []memberModel
	q := s.pg.NewSelect(&models)

	if !opts.IncludeReserves {
		q = q.Where("is_reserve = ?", false)
	}
	if !opts.IncludePlaceholders {
		q = q.Where("is_placeholder = ?", false)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("joined_date ASC, created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(model).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return solarledger.ErrHandleConflict
		}
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return solarledger.ErrMemberNotFound
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, memberID id.MemberID) error {
	res, err := s.pg.NewDelete((*memberModel)(nil)).
		Where("id = ?", memberID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return solarledger.ErrMemberNotFound
	}
	return nil
}

// ==================== Distribution Store ====================

func (s *Store) AppendDistributions(ctx context.Context, ds []*distribution.Distribution) error {
	if len(ds) == 0 {
		return nil
	}
	models := make([]distributionModel, len(ds))
	for i, d := range ds {
		models[i] = *toDistributionModel(d)
	}
	_, err := s.pg.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) ListDistributions(ctx context.Context, memberID id.MemberID, opts distribution.ListOpts) ([]*distribution.Distribution, error) {
	var models []distributionModel
	q := s.pg.NewSelect(&models).
		Where("member_id = ?", memberID.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("applied_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	model := toTradeModel(t)
	_, err := s.pg.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) GetTrade(ctx context.Context, tradeID id.TradeID) (*trade.Trade, error) {
	m := new(tradeModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", tradeID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, solarledger.ErrTradeNotFound
		}
		return nil, err
	}
	return fromTradeModel(m)
}

func (s *Store) ListTrades(ctx context.Context, memberID id.MemberID, opts trade.ListOpts) ([]*trade.Trade, error) {
	var models []tradeModel
	q := s.pg.NewSelect(&models).
		Where("member_id = ?", memberID.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("executed_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	model := toListingModel(l)
	_, err := s.pg.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) ListListings(ctx context.Context, opts market.ListOpts) ([]*market.Listing, error) {
	var models []listingModel
	q := s.pg.NewSelect(&models)

	if opts.Kind != "" {
		q = q.Where("kind = ?", string(opts.Kind))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	model := toListingModel(l)
	model.UpdatedAt = now()
	res, err := s.pg.NewUpdate(model).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return solarledger.ErrListingNotFound
	}
	return nil
}

func (s *Store) DeleteListing(ctx context.Context, listingID id.ListingID) error {
	res, err := s.pg.NewDelete((*listingModel)(nil)).
		Where("id = ?", listingID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return solarledger.ErrListingNotFound
	}
	return nil
}

func (s *Store) CreateFill(ctx context.Context, f *market.Fill) error {
	model := toFillModel(f)
	_, err := s.pg.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) ListFills(ctx context.Context, opts market.ListOpts) ([]*market.Fill, error) {
	var models []fillModel
	q := s.pg.NewSelect(&models)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("matched_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation detects Postgres unique constraint failures (23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key")
}
