package core

import "time"

const (
	// PlatformName is reported by the metadata endpoints.
	PlatformName = "WhiteKnight Security"

	// PlatformTitle is the long product name used in /api/info.
	PlatformTitle = "WhiteKnight Security Platform"

	// PlatformVersion is the API version string.
	PlatformVersion = "1.0.0"

	// PlatformMission is the one-line mission statement returned by the root endpoint.
	PlatformMission = "Digital Forensics for Human Trafficking Investigation"

	// DashboardWindow is the number of recent signals and active threats embedded in a dashboard.
	DashboardWindow = 5

	// SourceIDPrefixLength is how many characters of a signal id are used to derive a source id.
	SourceIDPrefixLength = 8

	// MaxErrorMessageLength caps error messages sent to clients.
	MaxErrorMessageLength = 500
)

// TimestampLayout is the layout used for client-visible string timestamps.
const TimestampLayout = time.RFC3339Nano
