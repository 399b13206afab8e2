// Package config resolves the settings s3tui starts with: an s3cmd-compatible
// .s3cfg file, overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"

	"github.com/slmtnm/s3tui/internal/events"
	"github.com/slmtnm/s3tui/internal/storage/s3store"
)

const (
	DefaultRegion   = "eu-central-1"
	DefaultRoot     = "."
	defaultHostBase = "s3.amazonaws.com"
)

// ErrNoFile is returned by Load when an explicitly named file does not exist
var ErrNoFile = errors.New("config file not found")

// S3File holds the S3 configuration parsed from .s3cfg
type S3File struct {
	Path        string
	AccessKey   string
	SecretKey   string
	HostBase    string
	HostBucket  string
	UseHTTPS    bool
	SignatureV2 bool
	Region      string
}

// SearchPaths lists the locations tried when no file is named, in order
func SearchPaths() []string {
	paths := []string{".s3cfg"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".s3cfg"))
	}
	return append(paths, "/etc/s3cfg")
}

// Load reads path, or the first existing file from SearchPaths when path is
// empty. Finding nothing in the search paths is not an error: it returns nil.
func Load(path string) (*S3File, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoFile, path)
		}
		return parse(path)
	}

	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return parse(p)
		}
	}
	return nil, nil
}

func parse(path string) (*S3File, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	section := cfg.Section("default")

	return &S3File{
		Path:        path,
		AccessKey:   section.Key("access_key").String(),
		SecretKey:   section.Key("secret_key").String(),
		HostBase:    section.Key("host_base").MustString(defaultHostBase),
		HostBucket:  section.Key("host_bucket").MustString("%(bucket)s.s3.amazonaws.com"),
		UseHTTPS:    section.Key("use_https").MustBool(true),
		SignatureV2: section.Key("signature_v2").MustBool(false),
		Region:      section.Key("bucket_location").String(),
	}, nil
}

// EndpointURL returns the endpoint URL for the S3 service. It is empty for
// AWS itself so the SDK resolves the regional endpoint.
func (f *S3File) EndpointURL() string {
	if f.HostBase == "" || f.HostBase == defaultHostBase {
		return ""
	}
	protocol := "https"
	if !f.UseHTTPS {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s", protocol, f.HostBase)
}

// Save writes the configuration to path in .s3cfg format
func (f *S3File) Save(path string) error {
	cfg := ini.Empty()
	section := cfg.Section("default")

	section.Key("access_key").SetValue(f.AccessKey)
	section.Key("secret_key").SetValue(f.SecretKey)
	section.Key("host_base").SetValue(f.HostBase)
	section.Key("host_bucket").SetValue(f.HostBucket)
	section.Key("use_https").SetValue(pythonBool(f.UseHTTPS))
	section.Key("signature_v2").SetValue(pythonBool(f.SignatureV2))
	if f.Region != "" {
		section.Key("bucket_location").SetValue(f.Region)
	}

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	// the file holds a secret key
	return os.Chmod(path, 0o600)
}

// s3cmd writes booleans the way Python prints them
func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Config is the resolved startup configuration
type Config struct {
	Bucket    string
	Region    string
	Profile   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Root      string
	LogFile   string
	TickRate  time.Duration
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Region:   DefaultRegion,
		Root:     DefaultRoot,
		TickRate: events.DefaultTickRate,
	}
}

// ApplyFile copies the values a .s3cfg file sets. A nil file changes nothing.
func (c *Config) ApplyFile(f *S3File) {
	if f == nil {
		return
	}
	if f.AccessKey != "" && f.SecretKey != "" {
		c.AccessKey = f.AccessKey
		c.SecretKey = f.SecretKey
	}
	if f.Region != "" {
		c.Region = f.Region
	}
	if endpoint := f.EndpointURL(); endpoint != "" {
		c.Endpoint = endpoint
	}
}

// Validate reports the first setting that cannot be used
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket name is required")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %s", c.TickRate)
	}
	if c.Region == "" {
		return errors.New("region must not be empty")
	}
	if c.Root == "" {
		return errors.New("root directory must not be empty")
	}
	return nil
}

// ClientOptions returns what the object store client needs
func (c Config) ClientOptions() s3store.ClientOptions {
	return s3store.ClientOptions{
		Region:    c.Region,
		Profile:   c.Profile,
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
	}
}
