package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sandeepkv93/leap/internal/config"
	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/storage"
	"github.com/sandeepkv93/leap/internal/store"
)

func testEnv(t *testing.T) (dbPath string, envFile string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "state.db")
	t.Setenv("LEAP_STATE_DB", dbPath)
	t.Setenv("LEAP_LOG_FILE", filepath.Join(dir, "leap.log"))
	t.Setenv("LEAP_VERIFIER", "none")
	for _, name := range []string{"LEAP_STATE_FILE", "LEAP_SUPABASE_DSN", "LEAP_REVENUECAT_API_KEY", "LEAP_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
	return dbPath, filepath.Join(dir, "missing.env")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("leap %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func seedState(t *testing.T, dbPath string) {
	t.Helper()
	repo, err := storage.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()
	st := store.New(repo, store.Options{Logger: zap.NewNop()})
	if err := st.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if err := st.SetUserName(ctx, "Ava"); err != nil {
		t.Fatalf("name: %v", err)
	}
	if err := st.SetOnboardingCategory(ctx, model.CategoryTravel); err != nil {
		t.Fatalf("category: %v", err)
	}
	if err := st.CompleteOnboarding(ctx); err != nil {
		t.Fatalf("onboarding: %v", err)
	}
	if _, err := st.AddDream(ctx, model.Dream{Title: "Bali solo trip", Category: model.CategoryTravel}); err != nil {
		t.Fatalf("dream: %v", err)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	if root.Use != "leap" || root.RunE == nil {
		t.Fatalf("unexpected root command: %q", root.Use)
	}
	if root.PersistentFlags().Lookup("env-file") == nil {
		t.Fatal("expected env-file flag")
	}
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"status", "reset"} {
		if !names[want] {
			t.Fatalf("expected %s subcommand", want)
		}
	}
	reset, _, err := root.Find([]string{"reset"})
	if err != nil {
		t.Fatalf("find reset: %v", err)
	}
	if reset.Flags().Lookup("remote") == nil {
		t.Fatal("expected --remote flag on reset")
	}
}

func TestStatusOnFreshState(t *testing.T) {
	_, envFile := testEnv(t)
	out := run(t, "--env-file", envFile, "status")
	if !strings.Contains(out, "user: (not set)") || !strings.Contains(out, "onboarding: not started") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}

func TestStatusThenReset(t *testing.T) {
	dbPath, envFile := testEnv(t)
	seedState(t, dbPath)

	out := run(t, "--env-file", envFile, "status")
	for _, want := range []string{"user: Ava", "dream: Bali solo trip", "streak: 0", "pro: false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output:\n%s", want, out)
		}
	}

	out = run(t, "--env-file", envFile, "reset")
	if !strings.Contains(out, "local state reset") {
		t.Fatalf("unexpected reset output: %s", out)
	}
	out = run(t, "--env-file", envFile, "status")
	if !strings.Contains(out, "onboarding: not started") {
		t.Fatalf("expected fresh state after reset:\n%s", out)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	cfg := config.DefaultRuntimeConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "leap.log")
	cfg.LogLevel = "loud"
	if _, err := newLogger(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
	cfg.LogLevel = "debug"
	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("debug logger: %v", err)
	}
	_ = logger.Sync()
}
