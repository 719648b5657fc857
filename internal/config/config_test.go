package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// clearEnv unsets every stepform variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvUploadURL, EnvUploadPreset, EnvCheckoutKey, EnvAddr, EnvFees} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9000")

	path := filepath.Join(t.TempDir(), "stepform.env")
	contents := "STEPFORM_API_URL=https://api.example.com\n" +
		"STEPFORM_UPLOAD_URL=https://upload.example.com/v1\n" +
		"STEPFORM_ADDR=:7000\n" +
		"STEPFORM_FEES=startup-cafe=500, gurus-pitch=750\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		APIURL:    "https://api.example.com",
		UploadURL: "https://upload.example.com/v1",
		Addr:      ":9000",
		Fees:      map[string]string{"startup-cafe": "500", "gurus-pitch": "750"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load without .env: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.Fees != nil || cfg.CatalogOptions() != nil {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}

func TestParseFees(t *testing.T) {
	fees, err := ParseFees(" a=1 ,, b = 2 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "1", "b": "2"}, fees); diff != "" {
		t.Fatalf("fees mismatch (-want +got):\n%s", diff)
	}
	for _, raw := range []string{"a", "=1", "a="} {
		if _, err := ParseFees(raw); !errors.Is(err, ErrInvalidFees) {
			t.Fatalf("ParseFees(%q): expected ErrInvalidFees, got %v", raw, err)
		}
	}
}

func TestCatalogAppliesFees(t *testing.T) {
	store, err := Config{Fees: map[string]string{"gurus-pitch": "999"}}.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	def, ok := store.Get("gurus-pitch")
	if !ok {
		t.Fatalf("gurus-pitch missing from catalog")
	}
	if def.Submission.Amount != "999" {
		t.Fatalf("expected overridden amount, got %q", def.Submission.Amount)
	}
}

func TestStringHidesCheckoutKey(t *testing.T) {
	got := Config{Addr: ":1", CheckoutKey: "rzp_secret"}.String()
	if got != `api="" upload="" addr=":1" fees=[] checkout_key_set=true` {
		t.Fatalf("unexpected string %q", got)
	}
}
