package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from a file and command-line
// arguments, mirroring the teacher's internal/config.Loader.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help, or supplies
// no arguments at all.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses CLI args and, if --config points at a file, merges in its
// settings first so that flags always take precedence — same order of
// precedence as the teacher's Loader.Load.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		Method:      "GET",
		Headers:     map[string]string{},
		Concurrency: 1,
		Timeout:     30 * time.Second,
		ConfigFile:  configPath,
	}

	if configPath != "" {
		fileViper := viper.New()
		fileViper.SetConfigFile(configPath)
		if err := fileViper.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := applyFileSettings(cfg, fileViper.AllSettings()); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyFileSettings maps a viper-decoded settings tree onto cfg. Scalar
// and slice fields are looked up by names that follow the CLI flags (the
// flag name, a snake_case or plural form, or both; the disable_* toggles
// accept only snake_case), matching the teacher's
// applyConfigSettings/lookupSetting convention.
func applyFileSettings(cfg *Config, settings map[string]interface{}) error {
	if v, ok := lookupSetting(settings, "urls", "url"); ok {
		urls, err := asStringSlice(v)
		if err != nil {
			return err
		}
		cfg.URLs = urls
	}
	if v, ok := lookupSetting(settings, "method"); ok {
		s, err := asString(v)
		if err != nil {
			return err
		}
		cfg.Method = s
	}
	if v, ok := lookupSetting(settings, "headers", "header"); ok {
		headers, err := asStringMap(v)
		if err != nil {
			return err
		}
		for k, val := range headers {
			cfg.Headers[k] = val
		}
	}
	if v, ok := lookupSetting(settings, "body"); ok {
		s, err := asString(v)
		if err != nil {
			return err
		}
		cfg.Body = s
	}
	if v, ok := lookupSetting(settings, "body_file", "body-file"); ok {
		s, err := asString(v)
		if err != nil {
			return err
		}
		cfg.BodyFile = s
	}
	if v, ok := lookupSetting(settings, "content_type", "content-type"); ok {
		s, err := asString(v)
		if err != nil {
			return err
		}
		cfg.ContentType = s
	}
	if v, ok := lookupSetting(settings, "concurrency"); ok {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		cfg.Concurrency = n
	}
	if v, ok := lookupSetting(settings, "rate", "rate_limit"); ok {
		f, err := asFloat(v)
		if err != nil {
			return err
		}
		cfg.RateLimit = f
	}
	if v, ok := lookupSetting(settings, "duration"); ok {
		d, err := asDuration(v)
		if err != nil {
			return err
		}
		cfg.Duration = d
	}
	if v, ok := lookupSetting(settings, "requests", "num_requests"); ok {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		cfg.NumRequests = n
	}
	if v, ok := lookupSetting(settings, "timeout"); ok {
		d, err := asDuration(v)
		if err != nil {
			return err
		}
		cfg.Timeout = d
	}
	if v, ok := lookupSetting(settings, "proxy"); ok {
		s, err := asString(v)
		if err != nil {
			return err
		}
		cfg.Proxy = s
	}
	if v, ok := lookupSetting(settings, "http2"); ok {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		cfg.HTTP2 = b
	}
	if v, ok := lookupSetting(settings, "host"); ok {
		s, err := asString(v)
		if err != nil {
			return err
		}
		cfg.Host = s
	}
	if v, ok := lookupSetting(settings, "disable_compression"); ok {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		cfg.DisableCompression = b
	}
	if v, ok := lookupSetting(settings, "disable_keepalive"); ok {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		cfg.DisableKeepAlive = b
	}
	if v, ok := lookupSetting(settings, "disable_redirects"); ok {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		cfg.DisableRedirects = b
	}

	if v, ok := lookupSetting(settings, "auth"); ok {
		user, pass, err := parseAuthSetting(v)
		if err != nil {
			return err
		}
		cfg.BasicAuthUser, cfg.BasicAuthPass = user, pass
	}

	if v, ok := lookupSetting(settings, "ramp"); ok {
		ramp, err := parseRampSetting(v)
		if err != nil {
			return err
		}
		cfg.Ramp = ramp
	}

	if v, ok := lookupSetting(settings, "assertion", "assert"); ok {
		assertion, err := parseAssertionSetting(v)
		if err != nil {
			return err
		}
		cfg.Assertion = assertion
	}

	return nil
}

func parseAuthSetting(value interface{}) (user, pass string, err error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return "", "", nil
	}
	if v, ok := m["user"]; ok {
		user, err = asString(v)
		if err != nil {
			return "", "", err
		}
	}
	if v, ok := m["pass"]; ok {
		pass, err = asString(v)
		if err != nil {
			return "", "", err
		}
	}
	return user, pass, nil
}

func parseRampSetting(value interface{}) (*RampConfig, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	ramp := &RampConfig{Increment: 1}
	if v, ok := m["initial"]; ok {
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		ramp.Initial = n
	}
	if v, ok := m["max"]; ok {
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		ramp.Max = n
	}
	if v, ok := m["interval"]; ok {
		d, err := asDuration(v)
		if err != nil {
			return nil, err
		}
		ramp.Interval = d
	}
	if v, ok := m["increment"]; ok {
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		ramp.Increment = n
	}
	if ramp.Initial <= 0 {
		return nil, nil
	}
	return ramp, nil
}

func parseAssertionSetting(value interface{}) (*AssertionConfig, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	assertion := &AssertionConfig{}
	if v, ok := m["status"]; ok {
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		assertion.ExpectStatus = n
		assertion.HasStatus = true
	}
	if v, ok := m["body_contains"]; ok {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		assertion.BodyContains = s
	}
	if v, ok := m["max_response_time"]; ok {
		d, err := asDuration(v)
		if err != nil {
			return nil, err
		}
		assertion.MaxResponseTime = d
		assertion.HasMaxRT = true
	}
	return assertion, nil
}
