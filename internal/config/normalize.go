package config

import (
	"os"
	"strings"
)

// applyEnv overrides secrets and endpoints from YC_* environment variables.
func applyEnv(cfg *AppConfig) {
	overrides := map[string]*string{
		"JWT_SECRET":           &cfg.JWTSecret,
		"DSN":                  &cfg.DSN,
		"MONGO_URI":            &cfg.Mongo.URI,
		"REDIS_URL":            &cfg.RedisURL,
		"S3_SECRET_ACCESS_KEY": &cfg.Media.SecretAccessKey,
		"ENV":                  &cfg.Env,
	}
	for name, dst := range overrides {
		if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
			*dst = v
		}
	}
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}

	cfg.Database.Host = strings.TrimSpace(cfg.Database.Host)
	cfg.Database.User = strings.TrimSpace(cfg.Database.User)
	cfg.Database.Name = strings.TrimSpace(cfg.Database.Name)
	if cfg.Database.Host == "" {
		cfg.Database.Host = defaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = defaultDBUser
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = defaultDBName
	}
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" {
		cfg.DSN = cfg.Database.FormatDSN(cfg.Timezone)
	}

	cfg.Mongo.URI = strings.TrimSpace(cfg.Mongo.URI)
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = defaultMongoURI
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = defaultMongoDatabase
	}
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}

	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)

	m := &cfg.Media
	m.Bucket = strings.TrimSpace(m.Bucket)
	m.Region = strings.TrimSpace(m.Region)
	m.Endpoint = strings.TrimRight(strings.TrimSpace(m.Endpoint), "/")
	m.CustomDomain = strings.TrimRight(strings.TrimSpace(m.CustomDomain), "/")
	m.Prefix = strings.Trim(strings.TrimSpace(m.Prefix), "/")
	if m.Prefix == "" {
		m.Prefix = defaultMediaPrefix
	}
	if m.MaxSizeMB <= 0 {
		m.MaxSizeMB = defaultMediaMaxMB
	}

	cfg.Gateway.NodeID = strings.TrimSpace(cfg.Gateway.NodeID)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	seen := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
