package handler

const (
	// RootPath is the root path of the route group.
	RootPath = "/"

	// RouterRootPath is the root path inside a fiber route group.
	RouterRootPath = "/"

	// AdminAPIPath is the base path of the admin JSON API.
	AdminAPIPath = "/admin/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
