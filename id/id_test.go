package id_test

import (
	"strings"
	"testing"

	"github.com/currentsee/solarledger/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"MemberID", id.NewMemberID, "mem_"},
		{"DistributionID", id.NewDistributionID, "dst_"},
		{"TradeID", id.NewTradeID, "trd_"},
		{"ListingID", id.NewListingID, "lot_"},
		{"FillID", id.NewFillID, "fil_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixMember)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixMember {
		t.Errorf("expected prefix %q, got %q", id.PrefixMember, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"MemberID", id.NewMemberID, id.ParseMemberID},
		{"DistributionID", id.NewDistributionID, id.ParseDistributionID},
		{"TradeID", id.NewTradeID, id.ParseTradeID},
		{"ListingID", id.NewListingID, id.ParseListingID},
		{"FillID", id.NewFillID, id.ParseFillID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round trip mismatch: got %q, want %q", parsed.String(), original.String())
			}
		})
	}
}

func TestParseWrongPrefix(t *testing.T) {
	memberID := id.NewMemberID()
	if _, err := id.ParseTradeID(memberID.String()); err == nil {
		t.Error("expected error parsing member ID as trade ID")
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "not-an-id", "mem_"} {
		if _, err := id.Parse(input); err == nil {
			t.Errorf("expected error parsing %q", input)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	original := id.NewMemberID()

	text, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round trip mismatch: got %q, want %q", decoded.String(), original.String())
	}
}
