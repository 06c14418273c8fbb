package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"MarketPulse/internal/export"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := `data_source:
  provider: mock
  symbols: [AAPL, MSFT, NVDA]
database:
  sqlite_path: ` + filepath.Join(dir, "pulse.db") + `
export:
  dir: ` + filepath.Join(dir, "exports") + `
logging:
  level: error
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, dir
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("pulse %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestCalc(t *testing.T) {
	cfg, _ := writeConfig(t)

	if out := mustRun(t, cfg, "calc", "cagr", "100", "200", "1"); !strings.Contains(out, "+100.00%") {
		t.Errorf("expected +100.00%% CAGR, got:\n%s", out)
	}
	if out := mustRun(t, cfg, "calc", "compound", "1000", "10", "2", "--frequency", "1"); !strings.Contains(out, "1210.00") {
		t.Errorf("expected final value 1210.00, got:\n%s", out)
	}
	if _, err := run(t, cfg, "calc", "cagr", "0", "200", "1"); err == nil {
		t.Error("expected error for zero start value")
	}
}

func TestLists(t *testing.T) {
	cfg, _ := writeConfig(t)

	mustRun(t, cfg, "lists", "save", "chips", "nvda", "amd,nvda")
	if out := mustRun(t, cfg, "lists", "show", "chips"); !strings.Contains(out, "NVDA AMD") {
		t.Errorf("expected normalized tickers, got:\n%s", out)
	}
	if out := mustRun(t, cfg, "lists", "ls"); !strings.Contains(out, "chips") {
		t.Errorf("expected chips in list names, got:\n%s", out)
	}
	mustRun(t, cfg, "lists", "rm", "chips")
	if _, err := run(t, cfg, "lists", "show", "chips"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestChangesAndCache(t *testing.T) {
	cfg, _ := writeConfig(t)

	out := mustRun(t, cfg, "changes", "Q1", "2024", "aapl", "msft")
	for _, want := range []string{"Q1 2024", "AAPL", "MSFT", "0 cached, 2 fetched"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	out = mustRun(t, cfg, "changes", "Q1", "2024", "aapl", "msft")
	if !strings.Contains(out, "2 cached, 0 fetched") {
		t.Errorf("expected cache hits on second run:\n%s", out)
	}
	if out := mustRun(t, cfg, "cache", "stats"); !strings.Contains(out, "2 rows") {
		t.Errorf("expected 2 cached rows, got:\n%s", out)
	}
	if out := mustRun(t, cfg, "cache", "purge", "Q1", "2024"); !strings.Contains(out, "purged 2 rows") {
		t.Errorf("expected 2 purged rows, got:\n%s", out)
	}

	if _, err := run(t, cfg, "changes", "Q9", "2024"); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestMatrixAndExport(t *testing.T) {
	cfg, dir := writeConfig(t)

	out := mustRun(t, cfg, "matrix", "--periods", "Q1-2024,Q2-2024", "--list", "default")
	for _, want := range []string{"Q1 2024", "Q2 2024", "GOOGL", "META"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in matrix:\n%s", want, out)
		}
	}

	path := filepath.Join(dir, "out.parquet")
	mustRun(t, cfg, "export", "--periods", "2023", "-o", path)
	rows, err := export.ReadMatrix(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	// watchlist of 3 symbols x 1 period
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}

	if _, err := run(t, cfg, "matrix", "--quarters", "2", "--years", "2"); err == nil {
		t.Error("expected error for conflicting flags")
	}
}

func TestPortfolio(t *testing.T) {
	cfg, dir := writeConfig(t)

	out := mustRun(t, cfg, "portfolio", "add", "msft", "10", "300", "--date", "2024-01-05")
	if !strings.Contains(out, "added MSFT") {
		t.Errorf("unexpected add output:\n%s", out)
	}
	if out := mustRun(t, cfg, "portfolio", "ls"); !strings.Contains(out, "MSFT") || !strings.Contains(out, "2024-01-05") {
		t.Errorf("expected holding in list:\n%s", out)
	}
	if out := mustRun(t, cfg, "portfolio"); !strings.Contains(out, "Portfolio") {
		t.Errorf("expected performance view:\n%s", out)
	}

	file := filepath.Join(dir, "holdings.json")
	if out := mustRun(t, cfg, "portfolio", "export", file); !strings.Contains(out, "exported 1 holdings") {
		t.Errorf("unexpected export output:\n%s", out)
	}
	if _, err := run(t, cfg, "portfolio", "add", "msft", "abc", "300"); err == nil {
		t.Error("expected error for invalid shares")
	}
}

func TestCompareAndRuns(t *testing.T) {
	cfg, _ := writeConfig(t)

	out := mustRun(t, cfg, "compare", "aapl", "msft", "--start", "2024-01-01", "--end", "2024-06-28")
	for _, want := range []string{"Compare 2024-01-01", "RSI14", "AAPL", "MSFT"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in compare output:\n%s", want, out)
		}
	}
	if _, err := run(t, cfg, "compare", "aapl"); err == nil {
		t.Error("expected error for a single symbol")
	}

	if out := mustRun(t, cfg, "cache", "runs"); !strings.Contains(out, "no recorded runs") {
		t.Errorf("expected empty run history, got:\n%s", out)
	}
}

func TestFundamentals(t *testing.T) {
	cfg, _ := writeConfig(t)

	out := mustRun(t, cfg, "fundamentals", "aapl", "msft")
	for _, want := range []string{"P/E", "Fwd EPS", "AAPL", "MSFT Corp"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in fundamentals output:\n%s", want, out)
		}
	}

	mustRun(t, cfg, "lists", "save", "pair", "nvda")
	if out := mustRun(t, cfg, "funds", "--list", "pair"); !strings.Contains(out, "NVDA") {
		t.Errorf("expected NVDA from the saved list, got:\n%s", out)
	}
}

func TestNoCache(t *testing.T) {
	cfg, _ := writeConfig(t)

	mustRun(t, cfg, "--no-cache", "changes", "Q1", "2024", "aapl")
	if out := mustRun(t, cfg, "cache", "stats"); !strings.Contains(out, "0 rows") {
		t.Errorf("expected nothing persisted with --no-cache, got:\n%s", out)
	}
}
