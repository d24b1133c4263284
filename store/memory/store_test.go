package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	"github.com/currentsee/solarledger/store/memory"
	"github.com/currentsee/solarledger/trade"
	"github.com/currentsee/solarledger/types"
)

func newMember(handle string, joined types.Date) *member.Member {
	return &member.Member{
		Entity:     types.NewEntity(),
		ID:         id.NewMemberID(),
		Handle:     handle,
		Name:       handle,
		JoinedDate: joined,
		TotalUnits: types.SOLAR(1),
	}
}

func TestMemberCRUD(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMember("alice", types.NewDate(2025, 4, 7))
	if err := st.CreateMember(ctx, m); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Handle != "alice" {
		t.Errorf("Handle = %q, want alice", got.Handle)
	}

	got, err = st.GetMemberByHandle(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != m.ID.String() {
		t.Error("GetMemberByHandle returned a different member")
	}

	got.Name = "Alice Updated"
	if err := st.UpdateMember(ctx, got); err != nil {
		t.Fatal(err)
	}
	got, err = st.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Alice Updated" {
		t.Errorf("Name = %q after update", got.Name)
	}

	if err := st.DeleteMember(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetMember(ctx, m.ID); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("err = %v, want ErrMemberNotFound", err)
	}
	if _, err := st.GetMemberByHandle(ctx, "alice"); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("handle lookup after delete: err = %v, want ErrMemberNotFound", err)
	}
}

func TestMemberNotFound(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	if _, err := st.GetMember(ctx, id.NewMemberID()); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("GetMember: err = %v, want ErrMemberNotFound", err)
	}
	if _, err := st.GetMemberByHandle(ctx, "ghost"); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("GetMemberByHandle: err = %v, want ErrMemberNotFound", err)
	}
	if err := st.UpdateMember(ctx, newMember("ghost", types.NewDate(2025, 4, 7))); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("UpdateMember: err = %v, want ErrMemberNotFound", err)
	}
	if err := st.DeleteMember(ctx, id.NewMemberID()); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("DeleteMember: err = %v, want ErrMemberNotFound", err)
	}
}

func TestHandleConflict(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	joined := types.NewDate(2025, 4, 7)
	if err := st.CreateMember(ctx, newMember("alice", joined)); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateMember(ctx, newMember("bob", joined)); err != nil {
		t.Fatal(err)
	}

	if err := st.CreateMember(ctx, newMember("alice", joined)); !errors.Is(err, solarledger.ErrHandleConflict) {
		t.Errorf("create: err = %v, want ErrHandleConflict", err)
	}

	// Renaming bob onto alice's handle must also collide.
	bob, err := st.GetMemberByHandle(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	bob.Handle = "alice"
	if err := st.UpdateMember(ctx, bob); !errors.Is(err, solarledger.ErrHandleConflict) {
		t.Errorf("update: err = %v, want ErrHandleConflict", err)
	}

	// A rename to a free handle reindexes the lookup.
	bob.Handle = "robert"
	if err := st.UpdateMember(ctx, bob); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetMemberByHandle(ctx, "robert"); err != nil {
		t.Errorf("new handle lookup failed: %v", err)
	}
	if _, err := st.GetMemberByHandle(ctx, "bob"); !errors.Is(err, solarledger.ErrMemberNotFound) {
		t.Errorf("old handle still resolves: err = %v", err)
	}
}

func TestCopyIsolation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMember("alice", types.NewDate(2025, 4, 7))
	if err := st.CreateMember(ctx, m); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's struct or a returned copy must never leak
	// into the store.
	m.TotalUnits = types.SOLAR(999)

	got, err := st.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalUnits.Equal(types.SOLAR(1)) {
		t.Errorf("stored balance = %s, want 1.0000", got.TotalUnits)
	}

	got.Handle = "mallory"
	again, err := st.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Handle != "alice" {
		t.Errorf("stored handle = %q, want alice", again.Handle)
	}
}

func TestListMembersOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	joined := types.NewDate(2025, 4, 7)
	handles := []string{"alice", "bob", "carol"}
	for _, h := range handles {
		if err := st.CreateMember(ctx, newMember(h, joined)); err != nil {
			t.Fatal(err)
		}
	}

	reserve := newMember("reserve", joined)
	reserve.IsReserve = true
	if err := st.CreateMember(ctx, reserve); err != nil {
		t.Fatal(err)
	}
	placeholder := newMember("placeholder", joined)
	placeholder.IsPlaceholder = true
	if err := st.CreateMember(ctx, placeholder); err != nil {
		t.Fatal(err)
	}

	members, err := st.ListMembers(ctx, member.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 3 {
		t.Fatalf("default list = %d members, want 3", len(members))
	}
	for i, m := range members {
		if m.Handle != handles[i] {
			t.Errorf("members[%d] = %q, want %q", i, m.Handle, handles[i])
		}
	}

	all, err := st.ListMembers(ctx, member.ListOpts{IncludeReserves: true, IncludePlaceholders: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("full list = %d members, want 5", len(all))
	}

	page, err := st.ListMembers(ctx, member.ListOpts{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Handle != "bob" || page[1].Handle != "carol" {
		t.Errorf("page = %v, want [bob carol]", page)
	}

	past, err := st.ListMembers(ctx, member.ListOpts{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(past) != 0 {
		t.Errorf("offset past end = %d members, want 0", len(past))
	}
}

func TestDistributionLog(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	alice := newMember("alice", types.NewDate(2025, 4, 7))
	bob := newMember("bob", types.NewDate(2025, 4, 8))
	for _, m := range []*member.Member{alice, bob} {
		if err := st.CreateMember(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	var entries []*distribution.Distribution
	for i := 0; i < 3; i++ {
		entries = append(entries, &distribution.Distribution{
			ID:        id.NewDistributionID(),
			MemberID:  alice.ID,
			Date:      alice.JoinedDate.AddDays(i),
			Units:     types.SOLAR(1),
			USDValue:  types.USD(13_600_000),
			AppliedAt: time.Now().UTC(),
		})
	}
	entries = append(entries, &distribution.Distribution{
		ID:        id.NewDistributionID(),
		MemberID:  bob.ID,
		Date:      bob.JoinedDate,
		Units:     types.SOLAR(1),
		USDValue:  types.USD(13_600_000),
		AppliedAt: time.Now().UTC(),
	})
	if err := st.AppendDistributions(ctx, entries); err != nil {
		t.Fatal(err)
	}

	got, err := st.ListDistributions(ctx, alice.ID, distribution.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("alice entries = %d, want 3", len(got))
	}

	got, err = st.ListDistributions(ctx, alice.ID, distribution.ListOpts{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("paged entries = %d, want 1", len(got))
	}
}

func TestTradeStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	alice := newMember("alice", types.NewDate(2025, 4, 7))
	if err := st.CreateMember(ctx, alice); err != nil {
		t.Fatal(err)
	}

	tr := &trade.Trade{
		ID:            id.NewTradeID(),
		MemberID:      alice.ID,
		Quantity:      types.SOLAR(100),
		UnitPrice:     types.USD(105),
		BaselinePrice: types.USD(100),
		Delta:         types.USD(500),
		ExecutedAt:    time.Now().UTC(),
	}
	if err := st.CreateTrade(ctx, tr); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetTrade(ctx, tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Delta.Equal(types.USD(500)) {
		t.Errorf("Delta = %s, want $5.00", got.Delta)
	}

	if _, err := st.GetTrade(ctx, id.NewTradeID()); !errors.Is(err, solarledger.ErrTradeNotFound) {
		t.Errorf("err = %v, want ErrTradeNotFound", err)
	}

	trades, err := st.ListTrades(ctx, alice.ID, trade.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 {
		t.Errorf("trades = %d, want 1", len(trades))
	}
}

func TestListingStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	alice := newMember("alice", types.NewDate(2025, 4, 7))
	if err := st.CreateMember(ctx, alice); err != nil {
		t.Fatal(err)
	}

	rec := &market.Listing{
		Entity:      types.NewEntity(),
		ID:          id.NewListingID(),
		Owner:       alice.ID,
		Kind:        market.KindREC,
		KWh:         500,
		PricePerKWh: types.USD(12),
	}
	ppa := &market.Listing{
		Entity:      types.NewEntity(),
		ID:          id.NewListingID(),
		Owner:       alice.ID,
		Kind:        market.KindPPA,
		KWh:         300,
		PricePerKWh: types.USD(15),
	}
	for _, l := range []*market.Listing{rec, ppa} {
		if err := st.CreateListing(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	offers, err := st.ListListings(ctx, market.ListOpts{Kind: market.KindREC})
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) != 1 || offers[0].Kind != market.KindREC {
		t.Errorf("REC filter returned %d listings", len(offers))
	}

	rec.KWh = 200
	if err := st.UpdateListing(ctx, rec); err != nil {
		t.Fatal(err)
	}
	all, err := st.ListListings(ctx, market.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if all[0].KWh != 200 {
		t.Errorf("updated KWh = %d, want 200", all[0].KWh)
	}

	if err := st.DeleteListing(ctx, ppa.ID); err != nil {
		t.Fatal(err)
	}
	if err := st.DeleteListing(ctx, ppa.ID); !errors.Is(err, solarledger.ErrListingNotFound) {
		t.Errorf("second delete: err = %v, want ErrListingNotFound", err)
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	if err := st.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if err := st.Ping(ctx); !errors.Is(err, solarledger.ErrStoreClosed) {
		t.Errorf("Ping after close: err = %v, want ErrStoreClosed", err)
	}
	if err := st.CreateMember(ctx, newMember("late", types.NewDate(2025, 4, 7))); !errors.Is(err, solarledger.ErrStoreClosed) {
		t.Errorf("CreateMember after close: err = %v, want ErrStoreClosed", err)
	}
}

func TestCloseRejectsAllMutations(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	m := newMember("alice", types.NewDate(2025, 4, 7))
	if err := st.CreateMember(ctx, m); err != nil {
		t.Fatal(err)
	}
	listing := &market.Listing{
		Entity:      types.NewEntity(),
		ID:          id.NewListingID(),
		Owner:       m.ID,
		Kind:        market.KindREC,
		KWh:         100,
		PricePerKWh: types.USD(12),
	}
	if err := st.CreateListing(ctx, listing); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	mutations := map[string]error{
		"UpdateMember":  st.UpdateMember(ctx, m),
		"DeleteMember":  st.DeleteMember(ctx, m.ID),
		"AppendDistributions": st.AppendDistributions(ctx, []*distribution.Distribution{{
			ID:       id.NewDistributionID(),
			MemberID: m.ID,
			Date:     m.JoinedDate,
			Units:    types.SOLAR(1),
			USDValue: types.USD(13_600_000),
		}}),
		"CreateTrade": st.CreateTrade(ctx, &trade.Trade{
			ID:       id.NewTradeID(),
			MemberID: m.ID,
			Quantity: types.SOLAR(1),
		}),
		"CreateListing": st.CreateListing(ctx, listing),
		"UpdateListing": st.UpdateListing(ctx, listing),
		"DeleteListing": st.DeleteListing(ctx, listing.ID),
		"CreateFill": st.CreateFill(ctx, &market.Fill{
			ID:     id.NewFillID(),
			Buyer:  m.ID,
			Seller: m.ID,
			KWh:    50,
		}),
	}
	for name, err := range mutations {
		if !errors.Is(err, solarledger.ErrStoreClosed) {
			t.Errorf("%s after close: err = %v, want ErrStoreClosed", name, err)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	joined := types.NewDate(2025, 4, 7)
	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(n int) {
			done <- st.CreateMember(ctx, newMember(fmt.Sprintf("member-%d", n), joined))
		}(i)
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}

	members, err := st.ListMembers(ctx, member.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 20 {
		t.Errorf("members = %d, want 20", len(members))
	}
}
