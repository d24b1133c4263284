package audithook

// Action constants for audit events.
const (
	// Roster actions
	ActionMemberJoined  = "member.joined"
	ActionMemberDeleted = "member.deleted"

	// Distribution actions
	ActionDistributionApplied   = "distribution.applied"
	ActionDistributionCompleted = "distribution.completed"

	// Integrity actions
	ActionDriftDetected = "integrity.drift_detected"

	// Market actions
	ActionTradeRecorded  = "trade.recorded"
	ActionListingCreated = "market.listing_created"
	ActionOrdersMatched  = "market.orders_matched"
)

// Resource constants for audit events.
const (
	ResourceMember       = "member"
	ResourceDistribution = "distribution"
	ResourceIntegrity    = "integrity"
	ResourceTrade        = "trade"
	ResourceListing      = "listing"
	ResourceMarket       = "market"
)

// Category constants for audit events.
const (
	CategoryRoster       = "roster"
	CategoryDistribution = "distribution"
	CategoryIntegrity    = "integrity"
	CategoryMarket       = "market"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
