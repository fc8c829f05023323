package constants

import "time"

const (
	OrganizationName = "DCarbon Solutions"

	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"

	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// SessionCookieName carries the portal session JWT for browser clients.
	SessionCookieName = "__Host-portalSession"
	SessionIssuer     = "dcarbon-portal"

	DBConnectTimeout   = 5 * time.Second
	ShutdownTimeout    = 15 * time.Second
	SessionSweepSpec   = "@every 15m"
	MaxMultipartMemory = 12 << 20
)
