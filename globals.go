package docmigrate

const (
	// DefaultDatabase is used when neither STORE_DATABASE nor the store URI
	// names a database.
	DefaultDatabase = "freecodecamp"

	DefaultEnvFile = ".env"

	DefaultConnectTimeoutSecs = 30
	DefaultConnectAttempts    = 3

	// ClientVersion is the version reported by the command line tool.
	ClientVersion = "2026-10-19"
)

// BuildRevision is set at link time.
var BuildRevision = ""
