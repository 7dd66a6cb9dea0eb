// internal/config/model.go
//
// Typed configuration model for the brochure server.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `BROCHURE_`-prefixed environment overrides – highest precedence.
//
// Any secret whose string begins with `vault:` is resolved through the
// Vault client *before* validation, so the model never carries Vault
// references past Load().
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	// TrustProxy honours X-Forwarded-For / X-Real-IP.  Enable only when a
	// reverse proxy that overwrites those headers fronts the server.
	TrustProxy   bool          `koanf:"trust_proxy"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" validate:"gte=0"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The DSN lives in YAML so operators can tweak host, port, or flags.  The
// password is kept apart (usually a `vault:` reference) and merged into the
// DSN at connect time.
type Database struct {
	DSN          string `koanf:"dsn"           validate:"required"`
	Password     string `koanf:"password"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `koanf:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

//
// Site section
//

// Site controls tenant resolution fallbacks.
type Site struct {
	// DefaultID is served when no site row matches the request host.
	DefaultID uint64 `koanf:"default_id"`
	// LocalhostAlias lets a dev instance answer "localhost" as a real domain.
	LocalhostAlias string `koanf:"localhost_alias"`
	// Theme selects the template override directory under themes/.
	Theme string `koanf:"theme"`
}

//
// Mail section
//

// Mail configures contact notifications.
type Mail struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"         validate:"gte=0,lte=65535"`
	User        string        `koanf:"user"`
	Password    string        `koanf:"password"`
	From        string        `koanf:"from"         validate:"omitempty,email"`
	FallbackTo  string        `koanf:"fallback_to"  validate:"required,email"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

//
// Admin section
//

// Admin holds the HTTP basic-auth credentials for /admin/api.
type Admin struct {
	User     string `koanf:"user"     validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Security section
//

// Security bundles CSRF and rate-limit knobs for the public contact form.
type Security struct {
	CSRFKey           string        `koanf:"csrf_key"`
	ContactRateLimit  int           `koanf:"contact_rate_limit"  validate:"gte=0"`
	ContactRateWindow time.Duration `koanf:"contact_rate_window"`
	GeoIPDatabase     string        `koanf:"geoip_database"`
}

//
// Log section
//

// Log controls the zap level.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.  The loader discovers `Root` (repo root or
// BROCHURE_ROOT override) so later code can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Site     Site     `koanf:"site"`
	Mail     Mail     `koanf:"mail"`
	Admin    Admin    `koanf:"admin"`
	Security Security `koanf:"security"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values that YAML commonly omits.
func (c *Config) applyDefaults() {
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.HTTP.MaxBodyBytes == 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 15
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Site.Theme == "" {
		c.Site.Theme = "default"
	}
	if c.Mail.FallbackTo == "" {
		c.Mail.FallbackTo = "mlujan@tekon-rl.cl"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Mail.DialTimeout == 0 {
		c.Mail.DialTimeout = 10 * time.Second
	}
	if c.Security.ContactRateLimit == 0 {
		c.Security.ContactRateLimit = 5
	}
	if c.Security.ContactRateWindow == 0 {
		c.Security.ContactRateWindow = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
