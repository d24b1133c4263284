package solarledger

import "github.com/currentsee/solarledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Units is re-exported from types package.
type Units = types.Units

// Date is re-exported from types package.
type Date = types.Date

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money and Units constructors
var (
	USD       = types.USD
	Zero      = types.Zero
	Sum       = types.Sum
	SOLAR     = types.SOLAR
	Rays      = types.Rays
	ZeroUnits = types.ZeroUnits
)

// Re-export Date constructors
var (
	NewDate   = types.NewDate
	ParseDate = types.ParseDate
	DateOf    = types.DateOf
	Today     = types.Today
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
