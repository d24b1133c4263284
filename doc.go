// Package solarledger provides a solar-backed member ledger engine for Go
// applications.
//
// Solarledger is designed as a library, not a service. Import it directly
// into your Go application and wire in the store driver you want. It
// provides:
//
//   - Deterministic daily accrual: every accruing member is entitled to a
//     fixed rate per day since joining, join day inclusive
//   - Idempotent distribution runs that converge stored balances onto the
//     entitled amount
//   - A read-only integrity audit that reports drift without repairing it
//   - Market trade recording with baseline-clamped value deltas
//   - An energy pool that matches production offers against purchase
//     agreements
//   - Pluggable storage (memory, SQLite, Postgres, MongoDB)
//   - An extensible hook system for observability and audit plugins
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/currentsee/solarledger"
//	    "github.com/currentsee/solarledger/protocol"
//	    "github.com/currentsee/solarledger/store/sqlite"
//	)
//
//	// Initialize store
//	st, err := sqlite.New("ledger.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create the engine with the published protocol constants
//	l := solarledger.New(st, protocol.Default())
//
//	// Start it (validates constants, migrates, begins workers)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Members join the roster once and accrue from their join date forward:
//
//	m, err := l.RecordSignup(ctx, "aaron", "Aaron", "aaron@example.com", joined)
//
// A distribution run brings every balance up to date:
//
//	result, err := l.AccrueDaily(ctx, types.Today())
//
// An integrity audit checks the same formula without writing anything:
//
//	report, err := l.VerifyIntegrity(ctx, types.Today())
//	if !report.Clean() {
//	    // investigate report.MismatchedRows()
//	}
//
// Balances are held in whole rays, the indivisible subunit. One SOLAR is
// one million rays, so arithmetic stays in integers end to end.
//
// # Protocol Constants
//
// The engine takes its constants (genesis date, kWh backing, USD anchor,
// daily rate) explicitly at construction. protocol.Default returns the
// published TC-S Solar Standard values; Hash over the canonical form lets
// two deployments prove they run the same standard.
package solarledger
