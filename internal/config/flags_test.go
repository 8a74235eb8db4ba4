package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestNewFlagCommandRegistersURLFlag(t *testing.T) {
	cmd := newFlagCommand()
	if cmd.Flags().Lookup("url") == nil {
		t.Fatal("expected --url flag to be registered")
	}
	if cmd.Use != "loadrush" {
		t.Errorf("Use = %q, want loadrush", cmd.Use)
	}
}

func TestDisplayHelpWritesUsage(t *testing.T) {
	cmd := newFlagCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	displayHelp(cmd)
	out := buf.String()
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage output to contain \"Usage:\", got %q", out)
	}
	if !strings.Contains(out, "--url") {
		t.Errorf("expected usage output to mention --url, got %q", out)
	}
}

func TestApplyFlagOverridesEveryField(t *testing.T) {
	cfg := &Config{Headers: map[string]string{}}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--url=http://a.example.com", "--url=http://b.example.com",
		"--method=post",
		"--header=X-Trace=abc",
		"--body={\"k\":\"v\"}",
		"--body-file=/tmp/body.bin",
		"--content-type=application/json",
		"--concurrency=8",
		"--rate=12.5",
		"--duration=1m",
		"--requests=50",
		"--timeout=5s",
		"--basic-auth-user=alice",
		"--basic-auth-pass=secret",
		"--proxy=http://proxy.example.com:8080",
		"--http2",
		"--host=virtual.example.com",
		"--disable-compression",
		"--disable-keepalive",
		"--disable-redirects",
		"--form=name=gopher",
		"--form-file=avatar=/tmp/g.png",
		"--json-output",
		"--log-errors",
		"--output-file=/tmp/out.json",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if len(cfg.URLs) != 2 {
		t.Errorf("URLs = %v, want 2 entries", cfg.URLs)
	}
	if cfg.Method != "post" {
		t.Errorf("Method = %q, want post", cfg.Method)
	}
	if cfg.Headers["X-Trace"] != "abc" {
		t.Errorf("Headers[X-Trace] = %q, want abc", cfg.Headers["X-Trace"])
	}
	if cfg.Body != `{"k":"v"}` {
		t.Errorf("Body = %q", cfg.Body)
	}
	if cfg.BodyFile != "/tmp/body.bin" {
		t.Errorf("BodyFile = %q", cfg.BodyFile)
	}
	if cfg.ContentType != "application/json" {
		t.Errorf("ContentType = %q", cfg.ContentType)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.RateLimit != 12.5 {
		t.Errorf("RateLimit = %v, want 12.5", cfg.RateLimit)
	}
	if cfg.Duration != time.Minute {
		t.Errorf("Duration = %v, want 1m", cfg.Duration)
	}
	if cfg.NumRequests != 50 {
		t.Errorf("NumRequests = %d, want 50", cfg.NumRequests)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.BasicAuthUser != "alice" || cfg.BasicAuthPass != "secret" {
		t.Errorf("got user=%q pass=%q, want alice/secret", cfg.BasicAuthUser, cfg.BasicAuthPass)
	}
	if cfg.Proxy != "http://proxy.example.com:8080" {
		t.Errorf("Proxy = %q", cfg.Proxy)
	}
	if !cfg.HTTP2 {
		t.Error("HTTP2 = false, want true")
	}
	if cfg.Host != "virtual.example.com" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if !cfg.DisableCompression || !cfg.DisableKeepAlive || !cfg.DisableRedirects {
		t.Errorf("expected all disable toggles true, got %+v", cfg)
	}
	if len(cfg.FormFields) != 1 || cfg.FormFields[0] != "name=gopher" {
		t.Errorf("FormFields = %v, want [name=gopher]", cfg.FormFields)
	}
	if len(cfg.FormFiles) != 1 || cfg.FormFiles[0].Key != "avatar" || cfg.FormFiles[0].Path != "/tmp/g.png" {
		t.Errorf("FormFiles = %+v, want [{avatar /tmp/g.png}]", cfg.FormFiles)
	}
	if !cfg.JSONOutput {
		t.Error("JSONOutput = false, want true")
	}
	if !cfg.LogErrors {
		t.Error("LogErrors = false, want true")
	}
	if cfg.OutputFile != "/tmp/out.json" {
		t.Errorf("OutputFile = %q", cfg.OutputFile)
	}
}

func TestApplyFlagOverridesLeavesUnsetFieldsAlone(t *testing.T) {
	cfg := &Config{Method: "GET", Concurrency: 7, Headers: map[string]string{}}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}
	if cfg.Method != "GET" {
		t.Errorf("Method = %q, want unchanged GET", cfg.Method)
	}
	if cfg.Concurrency != 7 {
		t.Errorf("Concurrency = %d, want unchanged 7", cfg.Concurrency)
	}
}

func TestRampFromFlagsNoneChangedReturnsExisting(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	existing := &RampConfig{Initial: 2, Max: 10, Increment: 1}
	ramp, err := rampFromFlags(existing, fs)
	if err != nil {
		t.Fatalf("rampFromFlags() error = %v", err)
	}
	if ramp != existing {
		t.Errorf("expected existing ramp to be returned unchanged, got %+v", ramp)
	}
}

func TestRampFromFlagsBuildsFromScratch(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--ramp-initial=2", "--ramp-max=20", "--ramp-interval=10s", "--ramp-increment=3"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ramp, err := rampFromFlags(nil, fs)
	if err != nil {
		t.Fatalf("rampFromFlags() error = %v", err)
	}
	if ramp == nil {
		t.Fatal("expected non-nil ramp")
	}
	if ramp.Initial != 2 || ramp.Max != 20 || ramp.Interval != 10*time.Second || ramp.Increment != 3 {
		t.Errorf("unexpected ramp: %+v", ramp)
	}
}

func TestRampFromFlagsZeroInitialDisables(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--ramp-max=20"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ramp, err := rampFromFlags(nil, fs)
	if err != nil {
		t.Fatalf("rampFromFlags() error = %v", err)
	}
	if ramp != nil {
		t.Errorf("expected nil ramp when initial <= 0, got %+v", ramp)
	}
}

func TestAssertionFromFlagsNoneChangedReturnsExisting(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	existing := &AssertionConfig{HasStatus: true, ExpectStatus: 200}
	assertion, err := assertionFromFlags(existing, fs)
	if err != nil {
		t.Fatalf("assertionFromFlags() error = %v", err)
	}
	if assertion != existing {
		t.Errorf("expected existing assertion to be returned unchanged, got %+v", assertion)
	}
}

func TestAssertionFromFlagsBuildsFromScratch(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--assert-status=201", "--assert-body=ok", "--assert-max-rt=500ms"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	assertion, err := assertionFromFlags(nil, fs)
	if err != nil {
		t.Fatalf("assertionFromFlags() error = %v", err)
	}
	if assertion == nil {
		t.Fatal("expected non-nil assertion")
	}
	if !assertion.HasStatus || assertion.ExpectStatus != 201 {
		t.Errorf("ExpectStatus = %d (has=%v), want 201", assertion.ExpectStatus, assertion.HasStatus)
	}
	if assertion.BodyContains != "ok" {
		t.Errorf("BodyContains = %q, want ok", assertion.BodyContains)
	}
	if !assertion.HasMaxRT || assertion.MaxResponseTime != 500*time.Millisecond {
		t.Errorf("MaxResponseTime = %v (has=%v), want 500ms", assertion.MaxResponseTime, assertion.HasMaxRT)
	}
}
