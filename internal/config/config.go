// Package config reads the stepform runtime settings from the environment,
// after loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-stepform/pkg/catalog"
)

// Environment variables read by Load.
const (
	EnvAPIURL       = "STEPFORM_API_URL"
	EnvUploadURL    = "STEPFORM_UPLOAD_URL"
	EnvUploadPreset = "STEPFORM_UPLOAD_PRESET"
	EnvCheckoutKey  = "STEPFORM_CHECKOUT_KEY"
	EnvAddr         = "STEPFORM_ADDR"
	EnvFees         = "STEPFORM_FEES"
)

// DefaultAddr is the preview server listen address.
const DefaultAddr = ":8080"

var ErrInvalidFees = errors.New("config: invalid fee list")

// Config holds the service endpoints and credentials.
type Config struct {
	APIURL       string
	UploadURL    string
	UploadPreset string
	CheckoutKey  string
	Addr         string
	// Fees overrides the registration fee per form slug.
	Fees map[string]string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return fallback
}

// Load reads files into the environment (".env" when none are given, and
// only if it exists) and builds a Config. Variables already set in the
// environment take precedence over file entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", strings.Join(files, ", "), err)
	}

	fees, err := ParseFees(getEnv(EnvFees, ""))
	if err != nil {
		return Config{}, err
	}

	return Config{
		APIURL:       getEnv(EnvAPIURL, ""),
		UploadURL:    getEnv(EnvUploadURL, ""),
		UploadPreset: getEnv(EnvUploadPreset, ""),
		CheckoutKey:  getEnv(EnvCheckoutKey, ""),
		Addr:         getEnv(EnvAddr, DefaultAddr),
		Fees:         fees,
	}, nil
}

// ParseFees parses "slug=amount,slug=amount". An empty string yields nil.
func ParseFees(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	fees := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		slug, amount, ok := strings.Cut(entry, "=")
		slug, amount = strings.TrimSpace(slug), strings.TrimSpace(amount)
		if !ok || slug == "" || amount == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFees, entry)
		}
		fees[slug] = amount
	}
	if len(fees) == 0 {
		return nil, nil
	}
	return fees, nil
}

// CatalogOptions returns the catalog options implied by the config.
func (c Config) CatalogOptions() []catalog.Option {
	if len(c.Fees) == 0 {
		return nil
	}
	return []catalog.Option{catalog.WithAmounts(c.Fees)}
}

// Catalog loads the embedded event catalog with the configured fees.
func (c Config) Catalog() (*catalog.Store, error) {
	return catalog.Default(c.CatalogOptions()...)
}

// String describes the config without credentials.
func (c Config) String() string {
	slugs := make([]string, 0, len(c.Fees))
	for slug := range c.Fees {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return fmt.Sprintf("api=%q upload=%q addr=%q fees=%v checkout_key_set=%t",
		c.APIURL, c.UploadURL, c.Addr, slugs, c.CheckoutKey != "")
}
