package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with every flag registered,
// mirroring the teacher's newFlagCommand/configureFlags split.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loadrush",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	flags.StringSlice("url", nil, "Target URL to load test (repeatable for round-robin)")
	flags.String("method", "GET", "HTTP method to use")
	flags.StringSlice("header", nil, "Additional request header in key=value form (repeatable)")
	flags.String("body", "", "Inline request body payload")
	flags.String("body-file", "", "Path to file containing the request body")
	flags.String("content-type", "", "Content-Type header for a raw body")

	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.Float64P("rate", "r", 0, "Per-worker requests-per-second limit (0 means unlimited)")
	flags.DurationP("duration", "d", 0, "How long to run the test (e.g. 30s, 1m)")
	flags.IntP("requests", "n", 0, "Total number of requests to send (ignored if --duration is set)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")

	flags.String("basic-auth-user", "", "Basic auth username")
	flags.String("basic-auth-pass", "", "Basic auth password")
	flags.String("proxy", "", "Forward HTTP proxy address (host:port)")
	flags.Bool("http2", false, "Negotiate HTTP/2 instead of HTTP/1.1")
	flags.String("host", "", "Override the HTTP Host header")
	flags.Bool("disable-compression", false, "Disable request/response compression")
	flags.Bool("disable-keepalive", false, "Disable HTTP keep-alive")
	flags.Bool("disable-redirects", false, "Do not follow redirects")

	flags.StringSlice("form", nil, "Multipart form field in key=value form (repeatable)")
	flags.StringSlice("form-file", nil, "Multipart form file in key=path form (repeatable)")

	flags.Int("ramp-initial", 0, "Initial worker count for ramp-up (0 disables ramp-up)")
	flags.Int("ramp-max", 0, "Maximum worker count for ramp-up")
	flags.Duration("ramp-interval", 0, "Interval between ramp-up steps")
	flags.Int("ramp-increment", 1, "Workers added per ramp-up step")

	flags.Int("assert-status", 0, "Expected response status code")
	flags.String("assert-body", "", "Required response body substring")
	flags.Duration("assert-max-rt", 0, "Maximum acceptable response time")

	flags.String("config", "", "Path to a YAML configuration file")
	flags.Bool("json-output", false, "Emit the summary as JSON")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("output-file", "", "Write the JSON result export to this path")
}

// displayHelp prints the command's usage, matching the teacher's
// displayHelp helper.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides copies every flag the user actually set on the
// command line onto cfg, overriding whatever a config file supplied.
// Mirrors the teacher's applyFlagOverrides, trimmed to loadrush's
// smaller field set.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("url") {
		v, err := fs.GetStringSlice("url")
		if err != nil {
			return err
		}
		cfg.URLs = v
	}
	if fs.Changed("method") {
		v, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = v
	}
	if fs.Changed("header") {
		v, err := fs.GetStringSlice("header")
		if err != nil {
			return err
		}
		for _, raw := range v {
			if key, value, ok := parseHeader(raw); ok {
				cfg.Headers[key] = value
			}
		}
	}
	if fs.Changed("body") {
		v, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = v
	}
	if fs.Changed("body-file") {
		v, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = v
	}
	if fs.Changed("content-type") {
		v, err := fs.GetString("content-type")
		if err != nil {
			return err
		}
		cfg.ContentType = v
	}
	if fs.Changed("concurrency") {
		v, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = v
	}
	if fs.Changed("rate") {
		v, err := fs.GetFloat64("rate")
		if err != nil {
			return err
		}
		cfg.RateLimit = v
	}
	if fs.Changed("duration") {
		v, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = v
	}
	if fs.Changed("requests") {
		v, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.NumRequests = v
	}
	if fs.Changed("timeout") {
		v, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = v
	}
	if fs.Changed("basic-auth-user") {
		v, err := fs.GetString("basic-auth-user")
		if err != nil {
			return err
		}
		cfg.BasicAuthUser = v
	}
	if fs.Changed("basic-auth-pass") {
		v, err := fs.GetString("basic-auth-pass")
		if err != nil {
			return err
		}
		cfg.BasicAuthPass = v
	}
	if fs.Changed("proxy") {
		v, err := fs.GetString("proxy")
		if err != nil {
			return err
		}
		cfg.Proxy = v
	}
	if fs.Changed("http2") {
		v, err := fs.GetBool("http2")
		if err != nil {
			return err
		}
		cfg.HTTP2 = v
	}
	if fs.Changed("host") {
		v, err := fs.GetString("host")
		if err != nil {
			return err
		}
		cfg.Host = v
	}
	if fs.Changed("disable-compression") {
		v, err := fs.GetBool("disable-compression")
		if err != nil {
			return err
		}
		cfg.DisableCompression = v
	}
	if fs.Changed("disable-keepalive") {
		v, err := fs.GetBool("disable-keepalive")
		if err != nil {
			return err
		}
		cfg.DisableKeepAlive = v
	}
	if fs.Changed("disable-redirects") {
		v, err := fs.GetBool("disable-redirects")
		if err != nil {
			return err
		}
		cfg.DisableRedirects = v
	}
	if fs.Changed("form") {
		v, err := fs.GetStringSlice("form")
		if err != nil {
			return err
		}
		cfg.FormFields = v
	}
	if fs.Changed("form-file") {
		v, err := fs.GetStringSlice("form-file")
		if err != nil {
			return err
		}
		for _, raw := range v {
			if key, path, ok := parseHeader(raw); ok {
				cfg.FormFiles = append(cfg.FormFiles, FormFileConfig{Key: key, Path: path})
			}
		}
	}

	ramp, err := rampFromFlags(cfg.Ramp, fs)
	if err != nil {
		return err
	}
	cfg.Ramp = ramp

	assertion, err := assertionFromFlags(cfg.Assertion, fs)
	if err != nil {
		return err
	}
	cfg.Assertion = assertion

	if fs.Changed("json-output") {
		v, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = v
	}
	if fs.Changed("log-errors") {
		v, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = v
	}
	if fs.Changed("output-file") {
		v, err := fs.GetString("output-file")
		if err != nil {
			return err
		}
		cfg.OutputFile = v
	}

	return nil
}

func rampFromFlags(existing *RampConfig, fs *pflag.FlagSet) (*RampConfig, error) {
	if !fs.Changed("ramp-initial") && !fs.Changed("ramp-max") &&
		!fs.Changed("ramp-interval") && !fs.Changed("ramp-increment") {
		return existing, nil
	}

	ramp := existing
	if ramp == nil {
		ramp = &RampConfig{Increment: 1}
	}
	if fs.Changed("ramp-initial") {
		v, err := fs.GetInt("ramp-initial")
		if err != nil {
			return nil, err
		}
		ramp.Initial = v
	}
	if fs.Changed("ramp-max") {
		v, err := fs.GetInt("ramp-max")
		if err != nil {
			return nil, err
		}
		ramp.Max = v
	}
	if fs.Changed("ramp-interval") {
		v, err := fs.GetDuration("ramp-interval")
		if err != nil {
			return nil, err
		}
		ramp.Interval = v
	}
	if fs.Changed("ramp-increment") {
		v, err := fs.GetInt("ramp-increment")
		if err != nil {
			return nil, err
		}
		ramp.Increment = v
	}
	if ramp.Initial <= 0 {
		return nil, nil
	}
	return ramp, nil
}

func assertionFromFlags(existing *AssertionConfig, fs *pflag.FlagSet) (*AssertionConfig, error) {
	if !fs.Changed("assert-status") && !fs.Changed("assert-body") && !fs.Changed("assert-max-rt") {
		return existing, nil
	}

	assertion := existing
	if assertion == nil {
		assertion = &AssertionConfig{}
	}
	if fs.Changed("assert-status") {
		v, err := fs.GetInt("assert-status")
		if err != nil {
			return nil, err
		}
		assertion.ExpectStatus = v
		assertion.HasStatus = true
	}
	if fs.Changed("assert-body") {
		v, err := fs.GetString("assert-body")
		if err != nil {
			return nil, err
		}
		assertion.BodyContains = v
	}
	if fs.Changed("assert-max-rt") {
		v, err := fs.GetDuration("assert-max-rt")
		if err != nil {
			return nil, err
		}
		assertion.MaxResponseTime = v
		assertion.HasMaxRT = true
	}
	return assertion, nil
}
