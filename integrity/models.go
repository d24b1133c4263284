// Package integrity defines the audit report produced when stored
// balances are checked against the accrual formula.
package integrity

import (
	"time"

	"github.com/currentsee/solarledger/id"
	"github.com/currentsee/solarledger/types"
)

// Row is the audit result for a single member: the formula-derived
// balance next to the stored one.
type Row struct {
	MemberID   id.MemberID `json:"member_id"`
	Handle     string      `json:"handle"`
	Expected   types.Units `json:"expected"`
	Actual     types.Units `json:"actual"`
	Mismatched bool        `json:"mismatched"`
}

// Report is a full read-only audit pass over the roster. Rows covers
// every accruing member; reserves and placeholders are skipped and
// only counted.
type Report struct {
	AsOf         types.Date `json:"as_of"`
	ProtocolHash string     `json:"protocol_hash"`
	Rows         []Row      `json:"rows"`
	Audited      int        `json:"audited"`
	Skipped      int        `json:"skipped"`
	Mismatches   int        `json:"mismatches"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

// Clean reports whether every audited balance matched the formula.
func (r *Report) Clean() bool {
	return r.Mismatches == 0
}

// MismatchedRows returns just the rows that disagree with the formula.
func (r *Report) MismatchedRows() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Mismatched {
			out = append(out, row)
		}
	}
	return out
}
