package solarledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	"github.com/currentsee/solarledger/protocol"
	"github.com/currentsee/solarledger/store/memory"
	"github.com/currentsee/solarledger/trade"
	"github.com/currentsee/solarledger/types"
)

func newTestLedger(t *testing.T) (*solarledger.Ledger, *memory.Store) {
	t.Helper()
	st := memory.New()
	return solarledger.New(st, protocol.Default()), st
}

func TestRecordSignup(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	joined := types.NewDate(2025, 4, 7)
	m, err := l.RecordSignup(ctx, "alice", "Alice", "alice@example.com", joined)
	if err != nil {
		t.Fatal(err)
	}

	if m.Handle != "alice" {
		t.Errorf("Handle = %q, want alice", m.Handle)
	}
	if !m.TotalUnits.Equal(types.SOLAR(1)) {
		t.Errorf("seed balance = %s, want 1.0000", m.TotalUnits)
	}
	if !m.LastDistributionDate.Equal(joined) {
		t.Errorf("LastDistributionDate = %s, want %s", m.LastDistributionDate, joined)
	}

	// The seed must show up in the distribution log.
	logs, err := l.Distributions(ctx, m.ID, distribution.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d log entries, want 1", len(logs))
	}
	if logs[0].Note != "signup seed" {
		t.Errorf("Note = %q, want signup seed", logs[0].Note)
	}
	if !logs[0].Units.Equal(types.SOLAR(1)) {
		t.Errorf("logged units = %s, want 1.0000", logs[0].Units)
	}
	if !logs[0].USDValue.Equal(types.USD(13_600_000)) {
		t.Errorf("logged value = %s, want $136000.00", logs[0].USDValue)
	}
}

func TestRecordSignupDuplicateHandle(t *testing.T) {
	ctx := context.Background()
	l, st := newTestLedger(t)

	joined := types.NewDate(2025, 4, 7)
	if _, err := l.RecordSignup(ctx, "alice", "Alice", "", joined); err != nil {
		t.Fatal(err)
	}

	_, err := l.RecordSignup(ctx, "alice", "Imposter", "", joined)
	if !errors.Is(err, solarledger.ErrDuplicateHandle) {
		t.Fatalf("err = %v, want ErrDuplicateHandle", err)
	}

	members, err := st.ListMembers(ctx, member.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 {
		t.Errorf("got %d members after failed signup, want 1", len(members))
	}
}

func TestRecordSignupValidation(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	var ve solarledger.ValidationError

	if _, err := l.RecordSignup(ctx, "", "Nobody", "", types.NewDate(2025, 4, 7)); !errors.As(err, &ve) {
		t.Errorf("empty handle: err = %v, want ValidationError", err)
	}
	if _, err := l.RecordSignup(ctx, "bob", "Bob", "", types.Date{}); !errors.As(err, &ve) {
		t.Errorf("zero join date: err = %v, want ValidationError", err)
	}
}

func TestAccrueDailyCatchUp(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	genesis := types.NewDate(2025, 4, 7)
	m, err := l.RecordSignup(ctx, "alice", "Alice", "", genesis)
	if err != nil {
		t.Fatal(err)
	}

	// Three days after genesis: inclusive counting entitles four days.
	asOf := genesis.AddDays(3)
	result, err := l.AccrueDaily(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	got, err := l.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalUnits.Equal(types.SOLAR(4)) {
		t.Errorf("balance = %s, want 4.0000", got.TotalUnits)
	}
	if !got.LastDistributionDate.Equal(asOf) {
		t.Errorf("LastDistributionDate = %s, want %s", got.LastDistributionDate, asOf)
	}

	// Catch-up delta is logged, not the full balance.
	logs, err := l.Distributions(ctx, m.ID, distribution.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(logs))
	}
	if !logs[1].Units.Equal(types.SOLAR(3)) {
		t.Errorf("catch-up delta = %s, want 3.0000", logs[1].Units)
	}
}

func TestAccrueDailyIdempotent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	genesis := types.NewDate(2025, 4, 7)
	if _, err := l.RecordSignup(ctx, "alice", "Alice", "", genesis); err != nil {
		t.Fatal(err)
	}
	if _, err := l.RecordSignup(ctx, "bob", "Bob", "", genesis.AddDays(1)); err != nil {
		t.Fatal(err)
	}

	asOf := genesis.AddDays(10)
	first, err := l.AccrueDaily(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if first.Updated != 2 {
		t.Errorf("first run Updated = %d, want 2", first.Updated)
	}

	second, err := l.AccrueDaily(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if second.Updated != 0 {
		t.Errorf("second run Updated = %d, want 0", second.Updated)
	}
	if second.Unchanged != 2 {
		t.Errorf("second run Unchanged = %d, want 2", second.Unchanged)
	}
}

// staleRosterStore replays a captured roster from ListMembers, standing
// in for a run that listed members before another run's write landed.
type staleRosterStore struct {
	*memory.Store
	snapshot []*member.Member
}

func (s *staleRosterStore) ListMembers(ctx context.Context, opts member.ListOpts) ([]*member.Member, error) {
	if s.snapshot != nil {
		return s.snapshot, nil
	}
	return s.Store.ListMembers(ctx, opts)
}

func TestAccrueDailyStaleRoster(t *testing.T) {
	ctx := context.Background()
	st := &staleRosterStore{Store: memory.New()}
	l := solarledger.New(st, protocol.Default())

	genesis := types.NewDate(2025, 4, 7)
	m, err := l.RecordSignup(ctx, "alice", "Alice", "", genesis)
	if err != nil {
		t.Fatal(err)
	}

	// Roster as it looked before any distribution run: seed balance only.
	stale, err := st.Store.ListMembers(ctx, member.ListOpts{
		IncludeReserves:     true,
		IncludePlaceholders: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	asOf := genesis.AddDays(4)
	first, err := l.AccrueDaily(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if first.Updated != 1 {
		t.Fatalf("first run Updated = %d, want 1", first.Updated)
	}

	// A second run over the pre-write roster must notice the balance is
	// already current and append nothing.
	st.snapshot = stale
	second, err := l.AccrueDaily(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if second.Updated != 0 {
		t.Errorf("stale-roster run Updated = %d, want 0", second.Updated)
	}
	if second.Unchanged != 1 {
		t.Errorf("stale-roster run Unchanged = %d, want 1", second.Unchanged)
	}

	logs, err := l.Distributions(ctx, m.ID, distribution.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(logs))
	}
	total := types.ZeroUnits
	for _, d := range logs {
		total = total.Add(d.Units)
	}
	got, err := l.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(got.TotalUnits) {
		t.Errorf("logged deltas sum to %s, stored balance is %s", total, got.TotalUnits)
	}
}

func TestAccrueDailySkipsReserves(t *testing.T) {
	ctx := context.Background()
	l, st := newTestLedger(t)

	genesis := types.NewDate(2025, 4, 7)
	if _, err := l.RecordSignup(ctx, "alice", "Alice", "", genesis); err != nil {
		t.Fatal(err)
	}

	reserve := &member.Member{
		Entity:     types.NewEntity(),
		ID:         id.NewMemberID(),
		Handle:     "community-reserve",
		Name:       "Community Reserve",
		JoinedDate: genesis,
		TotalUnits: types.SOLAR(1000),
		IsReserve:  true,
	}
	if err := st.CreateMember(ctx, reserve); err != nil {
		t.Fatal(err)
	}

	placeholder := &member.Member{
		Entity:        types.NewEntity(),
		ID:            id.NewMemberID(),
		Handle:        "future-member",
		Name:          "Future Member",
		JoinedDate:    genesis,
		IsPlaceholder: true,
	}
	if err := st.CreateMember(ctx, placeholder); err != nil {
		t.Fatal(err)
	}

	result, err := l.AccrueDaily(ctx, genesis.AddDays(30))
	if err != nil {
		t.Fatal(err)
	}
	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}

	got, err := l.GetMember(ctx, reserve.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalUnits.Equal(types.SOLAR(1000)) {
		t.Errorf("reserve balance = %s, want untouched 1000.0000", got.TotalUnits)
	}
}

func TestVerifyIntegrity(t *testing.T) {
	ctx := context.Background()
	l, st := newTestLedger(t)

	genesis := types.NewDate(2025, 4, 7)
	alice, err := l.RecordSignup(ctx, "alice", "Alice", "", genesis)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.RecordSignup(ctx, "bob", "Bob", "", genesis.AddDays(5)); err != nil {
		t.Fatal(err)
	}

	asOf := genesis.AddDays(10)
	if _, err := l.AccrueDaily(ctx, asOf); err != nil {
		t.Fatal(err)
	}

	report, err := l.VerifyIntegrity(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Clean() {
		t.Fatalf("fresh ledger not clean: %+v", report.MismatchedRows())
	}
	if report.Audited != 2 {
		t.Errorf("Audited = %d, want 2", report.Audited)
	}
	if report.ProtocolHash != l.Constants().Hash() {
		t.Error("report hash does not match engine constants")
	}

	// Corrupt alice's stored balance behind the engine's back.
	corrupted, err := st.GetMember(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := corrupted.TotalUnits
	corrupted.TotalUnits = corrupted.TotalUnits.Add(types.SOLAR(7))
	if err := st.UpdateMember(ctx, corrupted); err != nil {
		t.Fatal(err)
	}

	report, err = l.VerifyIntegrity(ctx, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if report.Mismatches != 1 {
		t.Fatalf("Mismatches = %d, want 1", report.Mismatches)
	}
	rows := report.MismatchedRows()
	if rows[0].Handle != "alice" {
		t.Errorf("mismatched handle = %q, want alice", rows[0].Handle)
	}
	if !rows[0].Expected.Equal(want) {
		t.Errorf("Expected = %s, want %s", rows[0].Expected, want)
	}

	// The audit never repairs anything.
	after, err := st.GetMember(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !after.TotalUnits.Equal(corrupted.TotalUnits) {
		t.Error("audit mutated a stored balance")
	}
}

func TestRecordTrade(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	m, err := l.RecordSignup(ctx, "alice", "Alice", "", types.NewDate(2025, 4, 7))
	if err != nil {
		t.Fatal(err)
	}
	before := m.TotalUnits

	// 100 SOLAR sold 5 cents over baseline clears a $5.00 delta.
	tr, err := l.RecordTrade(ctx, m.ID, types.SOLAR(100), types.USD(105), types.USD(100))
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Delta.Equal(types.USD(500)) {
		t.Errorf("Delta = %s, want $5.00", tr.Delta)
	}

	// Selling under baseline clamps the delta at zero.
	tr, err = l.RecordTrade(ctx, m.ID, types.SOLAR(100), types.USD(90), types.USD(100))
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Delta.IsZero() {
		t.Errorf("underwater Delta = %s, want $0.00", tr.Delta)
	}

	got, err := l.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalUnits.Equal(before) {
		t.Error("trade touched the stored balance")
	}

	trades, err := l.Trades(ctx, m.ID, trade.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 2 {
		t.Errorf("got %d trades, want 2", len(trades))
	}
}

func TestRecordTradeInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	m, err := l.RecordSignup(ctx, "alice", "Alice", "", types.NewDate(2025, 4, 7))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.RecordTrade(ctx, m.ID, types.ZeroUnits, types.USD(105), types.USD(100)); !errors.Is(err, solarledger.ErrInvalidQuantity) {
		t.Errorf("zero quantity: err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := l.RecordTrade(ctx, m.ID, types.SOLAR(-1), types.USD(105), types.USD(100)); !errors.Is(err, solarledger.ErrInvalidQuantity) {
		t.Errorf("negative quantity: err = %v, want ErrInvalidQuantity", err)
	}
}

func TestCreateListingValidation(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	m, err := l.RecordSignup(ctx, "alice", "Alice", "", types.NewDate(2025, 4, 7))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.CreateListing(ctx, m.ID, market.Kind("FUTURES"), 100, types.USD(12)); !errors.Is(err, solarledger.ErrUnknownKind) {
		t.Errorf("bad kind: err = %v, want ErrUnknownKind", err)
	}
	if _, err := l.CreateListing(ctx, m.ID, market.KindREC, 0, types.USD(12)); !errors.Is(err, solarledger.ErrInvalidListing) {
		t.Errorf("zero kwh: err = %v, want ErrInvalidListing", err)
	}
	if _, err := l.CreateListing(ctx, m.ID, market.KindREC, 100, types.Zero("usd")); !errors.Is(err, solarledger.ErrInvalidListing) {
		t.Errorf("zero price: err = %v, want ErrInvalidListing", err)
	}
	if _, err := l.CreateListing(ctx, id.NewMemberID(), market.KindREC, 100, types.USD(12)); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("unknown owner: err = %v, want ErrMemberNotFound", err)
	}
}

func TestMatchOrders(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	joined := types.NewDate(2025, 4, 7)
	seller, err := l.RecordSignup(ctx, "seller", "Seller", "", joined)
	if err != nil {
		t.Fatal(err)
	}
	buyer, err := l.RecordSignup(ctx, "buyer", "Buyer", "", joined)
	if err != nil {
		t.Fatal(err)
	}

	// Supply outweighs demand; the ask side keeps a residual.
	if _, err := l.CreateListing(ctx, seller.ID, market.KindREC, 500, types.USD(12)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.CreateListing(ctx, buyer.ID, market.KindPPA, 300, types.USD(15)); err != nil {
		t.Fatal(err)
	}

	fills, err := l.MatchOrders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].KWh != 300 {
		t.Errorf("fill KWh = %d, want 300", fills[0].KWh)
	}
	if fills[0].Seller.String() != seller.ID.String() || fills[0].Buyer.String() != buyer.ID.String() {
		t.Error("fill parties do not match the listings")
	}

	snap, err := l.Market(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Listings) != 1 {
		t.Fatalf("got %d surviving listings, want 1", len(snap.Listings))
	}
	if snap.Listings[0].Kind != market.KindREC || snap.Listings[0].KWh != 200 {
		t.Errorf("residual = %s %d kWh, want REC 200", snap.Listings[0].Kind, snap.Listings[0].KWh)
	}
	if len(snap.Fills) != 1 {
		t.Errorf("got %d persisted fills, want 1", len(snap.Fills))
	}

	// A second pass over the residual-only book matches nothing.
	fills, err = l.MatchOrders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fills) != 0 {
		t.Errorf("second pass produced %d fills, want 0", len(fills))
	}
}

func TestMemberCountExcludesReserves(t *testing.T) {
	ctx := context.Background()
	l, st := newTestLedger(t)

	joined := types.NewDate(2025, 4, 7)
	if _, err := l.RecordSignup(ctx, "alice", "Alice", "", joined); err != nil {
		t.Fatal(err)
	}
	if _, err := l.RecordSignup(ctx, "bob", "Bob", "", joined); err != nil {
		t.Fatal(err)
	}

	reserve := &member.Member{
		Entity:     types.NewEntity(),
		ID:         id.NewMemberID(),
		Handle:     "reserve",
		Name:       "Reserve",
		JoinedDate: joined,
		IsReserve:  true,
	}
	if err := st.CreateMember(ctx, reserve); err != nil {
		t.Fatal(err)
	}

	count, err := l.MemberCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("MemberCount = %d, want 2", count)
	}
}

func TestDeleteMember(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	m, err := l.RecordSignup(ctx, "alice", "Alice", "", types.NewDate(2025, 4, 7))
	if err != nil {
		t.Fatal(err)
	}

	if err := l.DeleteMember(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.GetMember(ctx, m.ID); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("err = %v, want ErrMemberNotFound", err)
	}
	if err := l.DeleteMember(ctx, m.ID); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("second delete: err = %v, want ErrMemberNotFound", err)
	}
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := l.RecordSignup(ctx, "alice", "Alice", "", types.NewDate(2025, 4, 7)); err != nil {
		t.Fatal(err)
	}

	if err := l.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestStartRejectsInvalidProtocol(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	consts := protocol.Default()
	consts.KWhPerSolar = 0
	l := solarledger.New(st, consts)

	if err := l.Start(ctx); !errors.Is(err, solarledger.ErrInvalidProtocol) {
		t.Fatalf("err = %v, want ErrInvalidProtocol", err)
	}
}
