package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Config errors (W100-W199)

	"W101": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "The configuration file could not be found.",
		Suggestion: "Pass --url on the command line or create webcast.json",
	},
	"W102": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be read or is not valid JSON.",
	},
	"W103": {
		Category:   CategoryConfig,
		Message:    "Missing endpoint URL",
		Detail:     "A session needs a ws:// or wss:// endpoint to connect to.",
		Suggestion: "Set \"url\" in webcast.json or pass --url",
	},
	"W104": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},
	"W105": {
		Category:   CategoryConfig,
		Message:    "Invalid key=value flag",
		Suggestion: "Use the form --param room_id=7312",
	},
	"W106": {
		Category: CategoryConfig,
		Message:  "Cookie file unreadable",
		Detail:   "The file named by cookieFile could not be read.",
	},

	// Connect errors (W200-W299)

	"W201": {
		Category:   CategoryConnect,
		Message:    "Connection failed",
		Detail:     "The push endpoint could not be reached.",
		Suggestion: "Check the URL and your network connection",
	},
	"W202": {
		Category:   CategoryConnect,
		Message:    "Handshake rejected",
		Detail:     "The server refused the WebSocket upgrade. This usually means the cookie or query parameters are missing or stale.",
		Suggestion: "Refresh the cookie and room parameters",
	},
	"W203": {
		Category: CategoryConnect,
		Message:  "Credentials unavailable",
		Detail:   "The credential source failed before dialing.",
	},

	// Stream errors (W300-W399)

	"W301": {
		Category: CategoryStream,
		Message:  "Stream closed unexpectedly",
		Detail:   "The transport failed after the session opened. No reconnect is attempted.",
	},
	"W302": {
		Category: CategoryStream,
		Message:  "Metrics server failed",
	},

	// Archive errors (W400-W499)

	"W401": {
		Category:   CategoryArchive,
		Message:    "Archive store unavailable",
		Detail:     "The S3 client for the payload archive could not be configured.",
		Suggestion: "Check archive.region and your AWS credentials",
	},
}
