package config

// Supported database drivers.
const (
	DBDriverMySQL    = "mysql"
	DBDriverPostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Driver   string // mysql or postgres
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string // postgres only
}
