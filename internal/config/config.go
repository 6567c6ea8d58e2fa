// Package config loads server settings from a .env file, LOSTFOUND_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/lostfound/internal/db"
)

// Storage backends.
const (
	StorageLocal  = "local"
	StorageRemote = "remote"
)

// Config holds the server settings.
type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string
	LogPath  string

	StorageBackend  string
	StorageDir      string
	PublicURL       string
	RemoteEndpoint  string
	RemoteAPIKey    string
	RemoteAPISecret string
	MaxUploadBytes  int64
	UploadTimeout   time.Duration

	AllowAnonymous bool
	CORSOrigins    []string
}

const usage = `Usage: lostfound [flags]

Flags:
  -a, -addr <host:port>       listen address (default: :8080)
  -D, -driver <name>          database driver: sqlite, mysql, postgres (default: sqlite)
  -d, -db <dsn>               database path or DSN (default: lostfound.sqlite3)
  -l, -log <path>             log file path (default: no file, stdout/stderr only)
  -s, -storage <backend>      image storage: local or remote (default: local)
      -storage-dir <path>     local storage directory (default: storage)
      -public-url <url>       base URL for local image links (default: http://localhost:8080)
      -remote-url <url>       remote image host endpoint
      -remote-key <key>       remote image host API key
      -remote-secret <secret> remote image host API secret
      -max-upload <bytes>     upload size limit (default: 10485760)
      -upload-timeout <dur>   remote upload timeout (default: 30s)
      -allow-anonymous        allow reports without a login (default: true)
      -cors-origins <list>    comma-separated allowed origins (default: *)
  -h, -help                   show this help and exit

Every flag can also be set with a LOSTFOUND_* environment variable
(e.g. LOSTFOUND_DB, LOSTFOUND_REMOTE_SECRET) or in a .env file.
`

// Load reads the configuration. args excludes the program name. A help flag
// yields flag.ErrHelp after the usage text is written to out.
func Load(args []string, out io.Writer) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}
	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	addr := env("ADDR", ":8080")
	fs.StringVar(&cfg.Addr, "addr", addr, "")
	fs.StringVar(&cfg.Addr, "a", addr, "")

	driver := env("DRIVER", db.DriverSQLite)
	fs.StringVar(&cfg.DBDriver, "driver", driver, "")
	fs.StringVar(&cfg.DBDriver, "D", driver, "")

	dsn := env("DB", "lostfound.sqlite3")
	fs.StringVar(&cfg.DBDSN, "db", dsn, "")
	fs.StringVar(&cfg.DBDSN, "d", dsn, "")

	logPath := env("LOG", "")
	fs.StringVar(&cfg.LogPath, "log", logPath, "")
	fs.StringVar(&cfg.LogPath, "l", logPath, "")

	backend := env("STORAGE", StorageLocal)
	fs.StringVar(&cfg.StorageBackend, "storage", backend, "")
	fs.StringVar(&cfg.StorageBackend, "s", backend, "")

	fs.StringVar(&cfg.StorageDir, "storage-dir", env("STORAGE_DIR", "storage"), "")
	fs.StringVar(&cfg.PublicURL, "public-url", env("PUBLIC_URL", "http://localhost:8080"), "")
	fs.StringVar(&cfg.RemoteEndpoint, "remote-url", env("REMOTE_URL", ""), "")
	fs.StringVar(&cfg.RemoteAPIKey, "remote-key", env("REMOTE_KEY", ""), "")
	fs.StringVar(&cfg.RemoteAPISecret, "remote-secret", env("REMOTE_SECRET", ""), "")

	maxUpload, err := envInt("MAX_UPLOAD", 10<<20)
	if err != nil {
		return nil, err
	}
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", maxUpload, "")

	timeout, err := envDuration("UPLOAD_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	fs.DurationVar(&cfg.UploadTimeout, "upload-timeout", timeout, "")

	anonymous, err := envBool("ALLOW_ANONYMOUS", true)
	if err != nil {
		return nil, err
	}
	fs.BoolVar(&cfg.AllowAnonymous, "allow-anonymous", anonymous, "")

	origins := env("CORS_ORIGINS", "*")
	fs.StringVar(&origins, "cors-origins", origins, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg.CORSOrigins = splitList(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case db.DriverSQLite, db.DriverMySQL, db.DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.StorageDir == "" {
			return fmt.Errorf("storage directory is required for local storage")
		}
	case StorageRemote:
		if c.RemoteEndpoint == "" || c.RemoteAPIKey == "" || c.RemoteAPISecret == "" {
			return fmt.Errorf("remote storage needs -remote-url, -remote-key and -remote-secret")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("upload timeout must be positive")
	}
	return nil
}

func env(key, def string) string {
	if v := os.Getenv("LOSTFOUND_" + key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int64) (int64, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("LOSTFOUND_%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("LOSTFOUND_%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("LOSTFOUND_%s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
