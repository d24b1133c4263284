// Package id defines TypeID-based identity types for all Solar ledger entities.
//
// Every entity uses a single ID struct with a prefix that identifies the
// entity type. IDs are K-sortable (UUIDv7-based), globally unique, and
// URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Solar ledger entity types.
const (
	PrefixMember       Prefix = "mem" // Roster member
	PrefixDistribution Prefix = "dst" // Daily distribution log entry
	PrefixTrade        Prefix = "trd" // Market sale record
	PrefixListing      Prefix = "lot" // Energy market listing
	PrefixFill         Prefix = "fil" // Matched energy order
)

// ID is the primary identifier type for all Solar ledger entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "mem_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// MemberID is a type-safe identifier for members (prefix: "mem").
type MemberID = ID

// DistributionID is a type-safe identifier for distribution log entries (prefix: "dst").
type DistributionID = ID

// TradeID is a type-safe identifier for market sale records (prefix: "trd").
type TradeID = ID

// ListingID is a type-safe identifier for energy listings (prefix: "lot").
type ListingID = ID

// FillID is a type-safe identifier for matched energy orders (prefix: "fil").
type FillID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewMemberID generates a new unique member ID.
func NewMemberID() ID { return New(PrefixMember) }

// NewDistributionID generates a new unique distribution ID.
func NewDistributionID() ID { return New(PrefixDistribution) }

// NewTradeID generates a new unique trade ID.
func NewTradeID() ID { return New(PrefixTrade) }

// NewListingID generates a new unique listing ID.
func NewListingID() ID { return New(PrefixListing) }

// NewFillID generates a new unique fill ID.
func NewFillID() ID { return New(PrefixFill) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseMemberID parses a string and validates the "mem" prefix.
func ParseMemberID(s string) (ID, error) { return ParseWithPrefix(s, PrefixMember) }

// ParseDistributionID parses a string and validates the "dst" prefix.
func ParseDistributionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDistribution) }

// ParseTradeID parses a string and validates the "trd" prefix.
func ParseTradeID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTrade) }

// ParseListingID parses a string and validates the "lot" prefix.
func ParseListingID(s string) (ID, error) { return ParseWithPrefix(s, PrefixListing) }

// ParseFillID parses a string and validates the "fil" prefix.
func ParseFillID(s string) (ID, error) { return ParseWithPrefix(s, PrefixFill) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T", src)
	}
}
