package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/internal/server"
	"github.com/iwvelando/sba-spread/internal/store"
	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/optimization"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

const testDealPath = "../../test/test_deal.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--env-file", ""))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		wantError bool
	}{
		{name: "Defaults", config: config.LoggingConfig{}},
		{name: "Console debug", config: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "Override wins", config: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "Invalid level", config: config.LoggingConfig{Level: "loud"}, wantError: true},
		{name: "Invalid format", config: config.LoggingConfig{Format: "xml"}, wantError: true},
		{name: "Output file", config: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "spread.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.wantError {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			logger.Info("hello")
			_ = logger.Sync()

			if tt.config.OutputFile != "" {
				data, err := os.ReadFile(tt.config.OutputFile)
				if err != nil {
					t.Fatalf("reading log file: %v", err)
				}
				if !strings.Contains(string(data), "hello") {
					t.Errorf("expected the log line in the output file, got %q", data)
				}
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("a missing env file should be ignored, got %v", err)
	}
	if err := loadEnvFile(""); err != nil {
		t.Errorf("an empty path should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SBASPREAD_TEST_MARKER=loaded\n"), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("SBASPREAD_TEST_MARKER") })

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile() error = %v", err)
	}
	if got := os.Getenv("SBASPREAD_TEST_MARKER"); got != "loaded" {
		t.Errorf("expected env var from file, got %q", got)
	}
}

func TestResolveOutputFormat(t *testing.T) {
	tests := []struct {
		configured, override, expected string
		wantError                      bool
	}{
		{"", "", "pretty", false},
		{"csv", "", "csv", false},
		{"csv", "pretty", "pretty", false},
		{"", "JSON", "json", false},
		{"pretty", "xml", "", true},
	}
	for _, tt := range tests {
		got, err := resolveOutputFormat(tt.configured, tt.override)
		if tt.wantError {
			if err == nil {
				t.Errorf("resolveOutputFormat(%q, %q) expected an error", tt.configured, tt.override)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("resolveOutputFormat(%q, %q) = %q, %v; expected %q", tt.configured, tt.override, got, err, tt.expected)
		}
	}
}

func TestSpreadCommand(t *testing.T) {
	out, err := execute(t, "--config", testDealPath)
	if err != nil {
		t.Fatalf("root command error = %v", err)
	}
	if !strings.Contains(out, "SBA Spread: Example Co") || !strings.Contains(out, "Global DSCR") {
		t.Errorf("unexpected pretty output:\n%s", out)
	}

	out, err = execute(t, "spread", "--config", testDealPath, "--output-format", "csv")
	if err != nil {
		t.Fatalf("spread command error = %v", err)
	}
	if !strings.HasPrefix(out, "section,line,period,value") {
		t.Errorf("expected CSV output, got:\n%s", out)
	}

	out, err = execute(t, "spread", "--config", testDealPath, "--output-format", "json")
	if err != nil {
		t.Fatalf("spread --output-format json error = %v", err)
	}
	var analysis dscr.Analysis
	if err := json.Unmarshal([]byte(out), &analysis); err != nil {
		t.Fatalf("JSON output did not parse: %v\n%s", err, out)
	}
	if analysis.DealName != "Example Co" || analysis.FullYear == nil || analysis.FullYear.Label != "FY2024" {
		t.Errorf("unexpected JSON analysis: %+v", analysis)
	}

	out, err = execute(t, "spread", "--config", testDealPath, "--narrative")
	if err != nil {
		t.Fatalf("spread --narrative error = %v", err)
	}
	if !strings.Contains(out, "credit memorandum") || !strings.Contains(out, "Example Co") {
		t.Errorf("unexpected narrative output:\n%s", out)
	}
}

func TestSpreadCommandErrors(t *testing.T) {
	if _, err := execute(t, "spread", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing deal file")
	}
	if _, err := execute(t, "spread", "--config", testDealPath, "--output-format", "xml"); err == nil {
		t.Error("expected an error for an unknown output format")
	}
	if _, err := execute(t, "spread", "--config", testDealPath, "--log-level", "loud"); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestSizeCommand(t *testing.T) {
	out, err := execute(t, "size", "--config", testDealPath)
	if err != nil {
		t.Fatalf("size command error = %v", err)
	}
	if !strings.Contains(out, "Loan Sizing (FY2024)") || !strings.Contains(out, "Maximum Supportable") {
		t.Errorf("unexpected sizing output:\n%s", out)
	}

	out, err = execute(t, "size", "--config", testDealPath, "--max", "100000", "--json")
	if err != nil {
		t.Fatalf("size --json error = %v", err)
	}
	var summary optimization.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("size --json output did not parse: %v\n%s", err, out)
	}
	if summary.Value != 100000 || !summary.Converged {
		t.Errorf("expected the ceiling to be supportable, got %+v", summary)
	}

	if _, err := execute(t, "size", "--config", testDealPath, "--target", "-1"); err == nil {
		t.Error("expected an error for a negative target")
	}
}

func TestSaveLoadDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "deals.db")

	out, err := execute(t, "save", "--config", testDealPath, "--db", db)
	if err != nil {
		t.Fatalf("save error = %v", err)
	}
	if !strings.Contains(out, `saved "Example Co"`) {
		t.Errorf("expected the deal name as the default key, got %q", out)
	}

	out, err = execute(t, "load", "--db", db)
	if err != nil {
		t.Fatalf("load (list) error = %v", err)
	}
	if !strings.Contains(out, "Saved Deals") || !strings.Contains(out, "Example Co") {
		t.Errorf("unexpected listing:\n%s", out)
	}

	out, err = execute(t, "load", "--db", db, "--key", "Example Co")
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	reloaded, err := config.LoadConfigurationFromReader(strings.NewReader(out), "yaml")
	if err != nil {
		t.Fatalf("loaded YAML did not parse: %v", err)
	}
	if reloaded.Deal.Name != "Example Co" || len(reloaded.Deal.BusinessPeriods) != 3 {
		t.Errorf("unexpected loaded deal %+v", reloaded.Deal)
	}

	if _, err := execute(t, "delete", "--db", db, "--key", "Example Co"); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if _, err := execute(t, "load", "--db", db, "--key", "Example Co"); err == nil {
		t.Error("expected an error loading a deleted deal")
	}
	if _, err := execute(t, "delete", "--db", db); err == nil {
		t.Error("expected an error deleting without a key")
	}

	out, err = execute(t, "load", "--db", db)
	if err != nil {
		t.Fatalf("load (list) error = %v", err)
	}
	if !strings.Contains(out, "no saved deals") {
		t.Errorf("expected an empty listing, got %q", out)
	}
}

func TestSeedDeal(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "deals.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	cfg := &server.Config{DealKey: server.DefaultDealKey, DealFile: testDealPath}

	d, err := seedDeal(nil, nil, &server.Config{})
	if err != nil || d.Name != "" {
		t.Errorf("expected an empty deal, got %+v, %v", d, err)
	}

	d, err = seedDeal(nil, db, cfg)
	if err != nil {
		t.Fatalf("seedDeal() error = %v", err)
	}
	if d.Name != "Example Co" {
		t.Errorf("expected the deal file when nothing is saved, got %q", d.Name)
	}

	if err := db.Put(server.DefaultDealKey, spread.Deal{Name: "Saved Co"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	d, err = seedDeal(nil, db, cfg)
	if err != nil {
		t.Fatalf("seedDeal() error = %v", err)
	}
	if d.Name != "Saved Co" {
		t.Errorf("expected the saved deal to win, got %q", d.Name)
	}

	if _, err := seedDeal(nil, nil, &server.Config{DealFile: "missing.yaml"}); err == nil {
		t.Error("expected an error for a missing deal file")
	}
}
