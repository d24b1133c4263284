package solarledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/currentsee/solarledger/accrual"
	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/integrity"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	"github.com/currentsee/solarledger/plugin"
	"github.com/currentsee/solarledger/protocol"
	"github.com/currentsee/solarledger/store"
	"github.com/currentsee/solarledger/trade"
	"github.com/currentsee/solarledger/types"
)

// Ledger is the solar accounting engine. It is the only component that
// mutates member balances; everything else reads through it.
type Ledger struct {
	store   store.Store
	consts  protocol.Constants
	plugins *plugin.Registry
	logger  *slog.Logger

	// Per-member write serialization
	locks *lockTable

	// Background distribution worker
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	autoDistribute     bool
	distributeInterval time.Duration
}

// New creates a new Ledger instance. Constants are passed explicitly
// at construction and are immutable from then on; the engine never
// reads protocol values from ambient state.
func New(s store.Store, consts protocol.Constants, opts ...Option) *Ledger {
	l := &Ledger{
		store:              s,
		consts:             consts,
		plugins:            plugin.NewRegistry(),
		logger:             slog.Default(),
		locks:              newLockTable(),
		stopChan:           make(chan struct{}),
		distributeInterval: time.Hour,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithAutoDistribution enables the in-process distribution worker,
// which re-runs AccrueDaily for the current UTC date at the given
// interval. AccrueDaily is idempotent, so re-running within the same
// day is a no-op; the worker exists for deployments without an
// external scheduler.
func WithAutoDistribution(interval time.Duration) Option {
	return func(l *Ledger) {
		l.autoDistribute = true
		if interval > 0 {
			l.distributeInterval = interval
		}
	}
}

// Constants returns the protocol constants the engine was built with.
func (l *Ledger) Constants() protocol.Constants { return l.consts }

// Start validates the protocol constants, migrates the store, and
// begins background workers.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.consts.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProtocol, err)
	}

	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	if l.autoDistribute {
		l.wg.Add(1)
		go l.distributionWorker(ctx)
	}

	l.logger.Info("solar ledger started",
		"protocol_hash", l.consts.Hash(),
		"genesis_date", l.consts.GenesisDate.String(),
		"auto_distribute", l.autoDistribute,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// distributionWorker re-runs the daily distribution on a ticker. The
// run is idempotent per date, so only the first tick after midnight
// UTC produces updates.
func (l *Ledger) distributionWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.distributeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			result, err := l.AccrueDaily(ctx, types.Today())
			if err != nil {
				l.logger.Error("scheduled distribution failed", "error", err)
				continue
			}
			if result.Updated > 0 {
				l.logger.Info("scheduled distribution applied",
					"updated", result.Updated,
					"skipped", result.Skipped,
					"errors", len(result.Errors),
				)
			}
		}
	}
}

// ──────────────────────────────────────────────────
// Signup
// ──────────────────────────────────────────────────

// RecordSignup creates a new roster member. The balance is seeded with
// one day's accrual: the join day counts, so nobody starts at zero.
func (l *Ledger) RecordSignup(ctx context.Context, handle, name, email string, joined types.Date) (*member.Member, error) {
	if handle == "" {
		return nil, ValidationError{Field: "handle", Message: "must not be empty"}
	}
	if joined.IsZero() {
		return nil, ValidationError{Field: "joined_date", Message: "must be set"}
	}

	if _, err := l.store.GetMemberByHandle(ctx, handle); err == nil {
		return nil, fmt.Errorf("signup %q: %w", handle, ErrDuplicateHandle)
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, fmt.Errorf("signup %q: %w", handle, err)
	}

	seed, err := accrual.EntitledUnits(joined, joined, l.consts.DailyRate)
	if err != nil {
		return nil, err
	}

	m := &member.Member{
		Entity:               types.NewEntity(),
		ID:                   id.NewMemberID(),
		Handle:               handle,
		Name:                 name,
		Email:                email,
		JoinedDate:           joined,
		TotalUnits:           seed,
		LastDistributionDate: joined,
	}

	if err := l.store.CreateMember(ctx, m); err != nil {
		return nil, fmt.Errorf("signup %q: %w", handle, err)
	}

	l.appendDistribution(ctx, m, joined, seed, "signup seed")
	l.plugins.EmitMemberJoined(ctx, m)

	l.logger.Info("member joined",
		"member", m.ID.String(),
		"handle", m.Handle,
		"joined", joined.String(),
	)

	return m, nil
}

// ──────────────────────────────────────────────────
// Daily distribution
// ──────────────────────────────────────────────────

// AccrualResult reports the outcome of one distribution run.
type AccrualResult struct {
	AsOf      types.Date    `json:"as_of"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Skipped   int           `json:"skipped"`
	Errors    []MemberError `json:"errors,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// AccrueDaily recomputes every accruing member's entitled balance as of
// asOf and overwrites any stored balance that disagrees. Reserve and
// placeholder accounts are always skipped. The run is idempotent: a
// second call with the same asOf updates nothing.
//
// A failure on one member never aborts the batch; per-member errors are
// collected into the result.
func (l *Ledger) AccrueDaily(ctx context.Context, asOf types.Date) (*AccrualResult, error) {
	if asOf.IsZero() {
		return nil, ValidationError{Field: "as_of", Message: "must be set"}
	}

	start := time.Now()

	members, err := l.store.ListMembers(ctx, member.ListOpts{
		IncludeReserves:     true,
		IncludePlaceholders: true,
	})
	if err != nil {
		return nil, fmt.Errorf("accrue daily: list members: %w", err)
	}

	result := &AccrualResult{AsOf: asOf}

	for _, m := range members {
		if !m.Accrues() {
			result.Skipped++
			continue
		}

		if err := l.accrueMember(ctx, m, asOf, result); err != nil {
			result.Errors = append(result.Errors, MemberError{
				MemberID: m.ID.String(),
				Handle:   m.Handle,
				Err:      err,
			})
		}
	}

	result.Elapsed = time.Since(start)
	l.plugins.EmitDistributionCompleted(ctx, result.Updated, result.Skipped, result.Elapsed)

	l.logger.Info("distribution run complete",
		"as_of", asOf.String(),
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	return result, nil
}

// accrueMember applies one member's recompute under that member's lock,
// so concurrent runs can never interleave writes to the same balance.
// The listing snapshot may be stale by the time the lock is held, so
// the member is re-read inside the lock and the decision is made
// against that row; otherwise a concurrent run that listed before our
// write would re-apply the same delta and double-count the log.
func (l *Ledger) accrueMember(ctx context.Context, m *member.Member, asOf types.Date, result *AccrualResult) error {
	unlock := l.locks.lock(m.ID.String())
	defer unlock()

	m, err := l.store.GetMember(ctx, m.ID)
	if err != nil {
		return err
	}
	if !m.Accrues() {
		result.Skipped++
		return nil
	}

	entitled, err := accrual.EntitledUnits(m.JoinedDate, asOf, l.consts.DailyRate)
	if err != nil {
		if errors.Is(err, accrual.ErrInvalidRange) {
			return ErrInvalidRange
		}
		return err
	}

	if entitled.Equal(m.TotalUnits) {
		result.Unchanged++
		return nil
	}

	delta := entitled.Subtract(m.TotalUnits)
	m.TotalUnits = entitled
	m.LastDistributionDate = asOf
	m.Touch()

	if err := l.store.UpdateMember(ctx, m); err != nil {
		return err
	}

	l.appendDistribution(ctx, m, asOf, delta, "")
	result.Updated++
	l.plugins.EmitDistributionApplied(ctx, m, delta.Rays())

	return nil
}

// appendDistribution writes one log entry; log failures are reported
// but never roll back the balance write that preceded them.
func (l *Ledger) appendDistribution(ctx context.Context, m *member.Member, date types.Date, delta types.Units, note string) {
	entry := &distribution.Distribution{
		ID:        id.NewDistributionID(),
		MemberID:  m.ID,
		Date:      date,
		Units:     delta,
		USDValue:  accrual.Value(delta, l.consts.USDPerSolar),
		Note:      note,
		AppliedAt: time.Now().UTC(),
	}

	if err := l.store.AppendDistributions(ctx, []*distribution.Distribution{entry}); err != nil {
		l.logger.Warn("distribution log append failed",
			"member", m.ID.String(),
			"error", err,
		)
	}
}

// ──────────────────────────────────────────────────
// Integrity audit
// ──────────────────────────────────────────────────

// VerifyIntegrity audits every accruing member's stored balance against
// the accrual formula as of asOf. It is strictly read-only: the store
// is never written, no matter what the audit finds.
func (l *Ledger) VerifyIntegrity(ctx context.Context, asOf types.Date) (*integrity.Report, error) {
	if asOf.IsZero() {
		return nil, ValidationError{Field: "as_of", Message: "must be set"}
	}

	members, err := l.store.ListMembers(ctx, member.ListOpts{
		IncludeReserves:     true,
		IncludePlaceholders: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify integrity: list members: %w", err)
	}

	report := &integrity.Report{
		AsOf:         asOf,
		ProtocolHash: l.consts.Hash(),
		GeneratedAt:  time.Now().UTC(),
	}

	for _, m := range members {
		if !m.Accrues() {
			report.Skipped++
			continue
		}

		row := integrity.Row{
			MemberID: m.ID,
			Handle:   m.Handle,
			Actual:   m.TotalUnits,
		}

		expected, err := accrual.EntitledUnits(m.JoinedDate, asOf, l.consts.DailyRate)
		if err != nil {
			// A join date after asOf means the stored balance cannot be
			// derived for this date at all; report it as a mismatch.
			row.Mismatched = true
		} else {
			row.Expected = expected
			row.Mismatched = !expected.Equal(m.TotalUnits)
		}

		if row.Mismatched {
			report.Mismatches++
			l.plugins.EmitDriftDetected(ctx, m.ID.String(), row.Expected.Rays(), row.Actual.Rays())
		}

		report.Rows = append(report.Rows, row)
		report.Audited++
	}

	if report.Mismatches > 0 {
		l.logger.Warn("integrity audit found drift",
			"as_of", asOf.String(),
			"mismatches", report.Mismatches,
			"audited", report.Audited,
		)
	}

	return report, nil
}

// ──────────────────────────────────────────────────
// Trades
// ──────────────────────────────────────────────────

// RecordTrade records a market sale's value delta for the member. The
// delta is how far the sale cleared the baseline price, clamped at
// zero; the member's stored balance is never touched.
func (l *Ledger) RecordTrade(ctx context.Context, memberID id.MemberID, quantity types.Units, unitPrice, baselinePrice types.Money) (*trade.Trade, error) {
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	m, err := l.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("record trade: %w", err)
	}

	delta := unitPrice.Subtract(baselinePrice)
	if delta.IsNegative() {
		delta = types.Zero(unitPrice.Currency)
	}

	t := &trade.Trade{
		ID:            id.NewTradeID(),
		MemberID:      m.ID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		BaselinePrice: baselinePrice,
		Delta:         delta.MultiplyUnits(quantity),
		ExecutedAt:    time.Now().UTC(),
	}

	if err := l.store.CreateTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("record trade: %w", err)
	}

	l.plugins.EmitTradeRecorded(ctx, t)
	return t, nil
}

// Trades returns a member's trade history.
func (l *Ledger) Trades(ctx context.Context, memberID id.MemberID, opts trade.ListOpts) ([]*trade.Trade, error) {
	return l.store.ListTrades(ctx, memberID, opts)
}

// ──────────────────────────────────────────────────
// Energy market
// ──────────────────────────────────────────────────

// CreateListing posts an energy offer or demand into the pool.
func (l *Ledger) CreateListing(ctx context.Context, owner id.MemberID, kind market.Kind, kwh int64, pricePerKWh types.Money) (*market.Listing, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	if kwh <= 0 || !pricePerKWh.IsPositive() {
		return nil, ErrInvalidListing
	}

	if _, err := l.store.GetMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	listing := &market.Listing{
		Entity:      types.NewEntity(),
		ID:          id.NewListingID(),
		Owner:       owner,
		Kind:        kind,
		KWh:         kwh,
		PricePerKWh: pricePerKWh,
	}

	if err := l.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	l.plugins.EmitListingCreated(ctx, listing)
	return listing, nil
}

// MatchOrders runs one matching pass over the energy pool, persisting
// the fills and updating or removing the affected listings.
func (l *Ledger) MatchOrders(ctx context.Context) ([]*market.Fill, error) {
	start := time.Now()

	listings, err := l.store.ListListings(ctx, market.ListOpts{})
	if err != nil {
		return nil, fmt.Errorf("match orders: list: %w", err)
	}

	fills := market.Match(listings, time.Now().UTC())

	for _, f := range fills {
		f.ID = id.NewFillID()
		if err := l.store.CreateFill(ctx, f); err != nil {
			return nil, fmt.Errorf("match orders: persist fill: %w", err)
		}
	}

	for _, listing := range listings {
		if listing.KWh <= 0 {
			if err := l.store.DeleteListing(ctx, listing.ID); err != nil {
				return nil, fmt.Errorf("match orders: remove depleted listing: %w", err)
			}
			continue
		}
		listing.Touch()
		if err := l.store.UpdateListing(ctx, listing); err != nil {
			return nil, fmt.Errorf("match orders: update listing: %w", err)
		}
	}

	l.plugins.EmitOrdersMatched(ctx, len(fills), time.Since(start))
	return fills, nil
}

// Market returns the public energy pool snapshot.
func (l *Ledger) Market(ctx context.Context) (*market.Snapshot, error) {
	listings, err := l.store.ListListings(ctx, market.ListOpts{})
	if err != nil {
		return nil, err
	}

	fills, err := l.store.ListFills(ctx, market.ListOpts{})
	if err != nil {
		return nil, err
	}

	return &market.Snapshot{Listings: listings, Fills: fills}, nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// GetMember retrieves a member by ID.
func (l *Ledger) GetMember(ctx context.Context, memberID id.MemberID) (*member.Member, error) {
	return l.store.GetMember(ctx, memberID)
}

// GetMemberByHandle retrieves a member by roster handle.
func (l *Ledger) GetMemberByHandle(ctx context.Context, handle string) (*member.Member, error) {
	return l.store.GetMemberByHandle(ctx, handle)
}

// ListMembers lists roster members in join order.
func (l *Ledger) ListMembers(ctx context.Context, opts member.ListOpts) ([]*member.Member, error) {
	return l.store.ListMembers(ctx, opts)
}

// MemberCount returns the public member count: reserve and placeholder
// accounts are excluded.
func (l *Ledger) MemberCount(ctx context.Context) (int, error) {
	members, err := l.store.ListMembers(ctx, member.ListOpts{})
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// Distributions returns a member's distribution log.
func (l *Ledger) Distributions(ctx context.Context, memberID id.MemberID, opts distribution.ListOpts) ([]*distribution.Distribution, error) {
	return l.store.ListDistributions(ctx, memberID, opts)
}

// DeleteMember administratively removes a member. This is not a
// steady-state operation; the roster only shrinks by explicit
// administrative action.
func (l *Ledger) DeleteMember(ctx context.Context, memberID id.MemberID) error {
	unlock := l.locks.lock(memberID.String())
	defer unlock()

	if err := l.store.DeleteMember(ctx, memberID); err != nil {
		return err
	}

	l.plugins.EmitMemberDeleted(ctx, memberID.String())
	return nil
}
