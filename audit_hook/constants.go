package audithook

// Action constants for audit events.
const (
	// Session actions
	ActionSessionConnected    = "session.connected"
	ActionSessionDisconnected = "session.disconnected"

	// Content actions
	ActionContentRegistered = "content.registered"
	ActionContentUpdated    = "content.updated"

	// Royalty actions
	ActionRoyaltyUpdated = "royalty.updated"
	ActionRoyaltyPaid    = "royalty.paid"

	// Usage actions
	ActionUsageReported       = "usage.reported"
	ActionUsageFlushed        = "usage.flushed"
	ActionDuplicateSuppressed = "usage.duplicate_suppressed"

	// License actions
	ActionLicenseIssued = "license.issued"

	// Pipeline actions
	ActionRegistrationWarning = "registration.warning"
)

// Resource constants for audit events.
const (
	ResourceSession = "session"
	ResourceContent = "content"
	ResourceRoyalty = "royalty"
	ResourceUsage   = "usage"
	ResourceLicense = "license"
)

// Category constants for audit events.
const (
	CategorySession  = "session"
	CategoryRegistry = "registry"
	CategoryRoyalty  = "royalty"
	CategoryUsage    = "usage"
	CategoryLicense  = "license"
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
