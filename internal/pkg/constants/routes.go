package constants

// Marketing page routes
const (
	HomeRoute     = "/"
	AboutRoute    = "/about"
	ServicesRoute = "/services"
	FAQRoute      = "/faq"
	ContactRoute  = "/contact"
)

// API route prefixes
const (
	APIPrefix   = "/api/v1"
	AdminPrefix = "/api/v1/admin"
	DocsRoute   = "/docs/api"
)
