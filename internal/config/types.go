package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"` // MySQL DSN; built from Database when empty
	Database       DatabaseConfig `yaml:"database"`
	Mongo          MongoConfig    `yaml:"mongo"`
	RedisURL       string         `yaml:"redis_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Timezone       string         `yaml:"timezone"`
	LogLevel       string         `yaml:"log_level"`
	Media          MediaOptions   `yaml:"media"`
	Gateway        GatewayConfig  `yaml:"gateway"`
}

type DatabaseConfig struct {
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Params   map[string]string `yaml:"params"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// MediaOptions configures the S3-compatible bucket that hosts uploaded
// images. Uploads are disabled when Bucket is empty.
type MediaOptions struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	MaxSizeMB       int    `yaml:"max_size_mb"`
}

// Enabled reports whether enough is configured to upload.
func (m MediaOptions) Enabled() bool { return m.Bucket != "" && m.Region != "" }

// MaxBytes is the upload size limit in bytes.
func (m MediaOptions) MaxBytes() int64 { return int64(m.MaxSizeMB) << 20 }

type GatewayConfig struct {
	// NodeID identifies this process in cross-node relays. Generated when empty.
	NodeID string `yaml:"node_id"`
}

// IsProduction reports whether the env is production.
func (c *AppConfig) IsProduction() bool { return c.Env == "production" }
