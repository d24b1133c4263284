// Package memory provides an in-memory Store for tests and
// single-process deployments. All data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/currentsee/solarledger"
	"github.com/currentsee/solarledger/distribution"
	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/market"
	"github.com/currentsee/solarledger/member"
	"github.com/currentsee/solarledger/trade"
)

type Store struct {
	mu sync.RWMutex

	// Member storage; order preserves insertion so listings come back
	// in join order
	members     map[string]*member.Member
	memberOrder []string
	byHandle    map[string]string

	// Distribution log
	distributions []*distribution.Distribution

	// Trade history
	trades map[string]*trade.Trade
	// tradeOrder preserves execution order
	tradeOrder []string

	// Energy pool
	listings     map[string]*market.Listing
	listingOrder []string
	fills        []*market.Fill

	closed bool
}

func New() *Store {
	return &Store{
		members:  make(map[string]*member.Member),
		byHandle: make(map[string]string),
		trades:   make(map[string]*trade.Trade),
		listings: make(map[string]*market.Listing),
	}
}

// Member Store implementation

func (s *Store) CreateMember(_ context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}
	if _, exists := s.members[m.ID.String()]; exists {
		return solarledger.ErrInvalidInput
	}
	if _, exists := s.byHandle[m.Handle]; exists {
		return solarledger.ErrHandleConflict
	}

	cp := *m
	s.members[m.ID.String()] = &cp
	s.memberOrder = append(s.memberOrder, m.ID.String())
	s.byHandle[m.Handle] = m.ID.String()
	return nil
}

func (s *Store) GetMember(_ context.Context, memberID id.MemberID) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.members[memberID.String()]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, solarledger.ErrMemberNotFound
}

func (s *Store) GetMemberByHandle(_ context.Context, handle string) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if mid, ok := s.byHandle[handle]; ok {
		cp := *s.members[mid]
		return &cp, nil
	}
	return nil, solarledger.ErrMemberNotFound
}

func (s *Store) ListMembers(_ context.Context, opts member.ListOpts) ([]*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*member.Member, 0, len(s.memberOrder))
	for _, mid := range s.memberOrder {
		m := s.members[mid]
		if m.IsReserve && !opts.IncludeReserves {
			continue
		}
		if m.IsPlaceholder && !opts.IncludePlaceholders {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateMember(_ context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	existing, ok := s.members[m.ID.String()]
	if !ok {
		return solarledger.ErrMemberNotFound
	}

	if existing.Handle != m.Handle {
		if _, taken := s.byHandle[m.Handle]; taken {
			return solarledger.ErrHandleConflict
		}
		delete(s.byHandle, existing.Handle)
		s.byHandle[m.Handle] = m.ID.String()
	}

	cp := *m
	s.members[m.ID.String()] = &cp
	return nil
}

func (s *Store) DeleteMember(_ context.Context, memberID id.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	m, ok := s.members[memberID.String()]
	if !ok {
		return solarledger.ErrMemberNotFound
	}

	delete(s.byHandle, m.Handle)
	delete(s.members, memberID.String())
	for i, mid := range s.memberOrder {
		if mid == memberID.String() {
			s.memberOrder = append(s.memberOrder[:i], s.memberOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Distribution Store implementation

func (s *Store) AppendDistributions(_ context.Context, ds []*distribution.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}
	for _, d := range ds {
		cp := *d
		s.distributions = append(s.distributions, &cp)
	}
	return nil
}

func (s *Store) ListDistributions(_ context.Context, memberID id.MemberID, opts distribution.ListOpts) ([]*distribution.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*distribution.Distribution, 0)
	for _, d := range s.distributions {
		if d.MemberID.String() != memberID.String() {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

// Trade Store implementation

func (s *Store) CreateTrade(_ context.Context, t *trade.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	cp := *t
	s.trades[t.ID.String()] = &cp
	s.tradeOrder = append(s.tradeOrder, t.ID.String())
	return nil
}

func (s *Store) GetTrade(_ context.Context, tradeID id.TradeID) (*trade.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.trades[tradeID.String()]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, solarledger.ErrTradeNotFound
}

func (s *Store) ListTrades(_ context.Context, memberID id.MemberID, opts trade.ListOpts) ([]*trade.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*trade.Trade, 0)
	for _, tid := range s.tradeOrder {
		t := s.trades[tid]
		if t.MemberID.String() != memberID.String() {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

// Market Store implementation

func (s *Store) CreateListing(_ context.Context, l *market.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	cp := *l
	s.listings[l.ID.String()] = &cp
	s.listingOrder = append(s.listingOrder, l.ID.String())
	return nil
}

func (s *Store) ListListings(_ context.Context, opts market.ListOpts) ([]*market.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*market.Listing, 0, len(s.listingOrder))
	for _, lid := range s.listingOrder {
		l := s.listings[lid]
		if opts.Kind != "" && l.Kind != opts.Kind {
			continue
		}
		cp := *l
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateListing(_ context.Context, l *market.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	if _, ok := s.listings[l.ID.String()]; !ok {
		return solarledger.ErrListingNotFound
	}
	cp := *l
	s.listings[l.ID.String()] = &cp
	return nil
}

func (s *Store) DeleteListing(_ context.Context, listingID id.ListingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	if _, ok := s.listings[listingID.String()]; !ok {
		return solarledger.ErrListingNotFound
	}
	delete(s.listings, listingID.String())
	for i, lid := range s.listingOrder {
		if lid == listingID.String() {
			s.listingOrder = append(s.listingOrder[:i], s.listingOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) CreateFill(_ context.Context, f *market.Fill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return solarledger.ErrStoreClosed
	}

	cp := *f
	s.fills = append(s.fills, &cp)
	return nil
}

func (s *Store) ListFills(_ context.Context, opts market.ListOpts) ([]*market.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*market.Fill, 0, len(s.fills))
	for _, f := range s.fills {
		cp := *f
		result = append(result, &cp)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return solarledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// paginate applies offset/limit the way every list method does. A zero
// limit means no limit.
func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
