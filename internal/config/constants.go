package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort          = 2333
	defaultEnv           = "development"
	defaultDBHost        = "127.0.0.1"
	defaultDBPort        = 3306
	defaultDBUser        = "root"
	defaultDBName        = "youth_club"
	defaultDBCharset     = "utf8mb4"
	defaultDBLoc         = "Local"
	defaultMongoURI      = "mongodb://127.0.0.1:27017"
	defaultMongoDatabase = "youth_club"
	defaultRedisURL      = "redis://localhost:6379/0"
	defaultMediaMaxMB    = 10
	defaultMediaPrefix   = "uploads"

	envPrefix = "YC_"
)
