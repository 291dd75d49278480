package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/gems/internal/collector"
	"github.com/newthinker/gems/internal/core"
	"github.com/spf13/viper"
)

// DefaultOutputFile is the base name used when none is given
const DefaultOutputFile = "hidden_gems_watchlist.csv"

// DefaultTickers is the starter universe; replace it in the config file
var DefaultTickers = []string{"ZNGA", "NIO", "PLUG", "FUBO", "RBLX", "AFRM"}

type Config struct {
	Tickers  []string                `mapstructure:"tickers"`
	Policy   string                  `mapstructure:"policy"`
	Policies map[string]PolicyConfig `mapstructure:"policies"`
	Output   OutputConfig            `mapstructure:"output"`
	Fetch    FetchConfig             `mapstructure:"fetch"`
	Archive  ArchiveConfig           `mapstructure:"archive"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
	Notify   NotifyConfig            `mapstructure:"notify"`
}

// PolicyConfig holds per-policy threshold overrides
type PolicyConfig struct {
	Params map[string]any `mapstructure:"params"`
}

type OutputConfig struct {
	File string `mapstructure:"file"`
}

// FetchConfig controls access to the market data provider.
type FetchConfig struct {
	Provider  string        `mapstructure:"provider"`
	Period    string        `mapstructure:"period"`
	Interval  string        `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 = unpaced
	UserAgent string        `mapstructure:"user_agent"`
	Proxy     string        `mapstructure:"proxy"`
}

// ArchiveConfig enables mirroring of written reports to S3.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

type NotifyConfig struct {
	Email   EmailConfig   `mapstructure:"email"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig posts the digest as JSON to an HTTP endpoint.
type WebhookConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// EmailConfig holds SMTP settings for the latest-watchlist digest.
type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// Load reads configuration from file. Keys missing from the file keep
// their Defaults value; GEMS_* environment variables override both.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return decode(v)
}

// FromEnv builds a configuration from Defaults and GEMS_* environment
// variables only.
func FromEnv() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides: GEMS_FETCH_TIMEOUT=30s
	v.SetEnvPrefix("gems")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Tickers = normalizeTickers(cfg.Tickers)
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tickers", d.Tickers)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("fetch.provider", d.Fetch.Provider)
	v.SetDefault("fetch.period", d.Fetch.Period)
	v.SetDefault("fetch.interval", d.Fetch.Interval)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.rate_limit", d.Fetch.RateLimit)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.proxy", d.Fetch.Proxy)
	v.SetDefault("archive.enabled", d.Archive.Enabled)
	v.SetDefault("archive.s3.bucket", "")
	v.SetDefault("archive.s3.endpoint", "")
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.access_key", "")
	v.SetDefault("archive.s3.secret_key", "")
	v.SetDefault("archive.s3.prefix", d.Archive.S3.Prefix)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("notify.email.enabled", d.Notify.Email.Enabled)
	v.SetDefault("notify.email.host", "")
	v.SetDefault("notify.email.port", d.Notify.Email.Port)
	v.SetDefault("notify.email.username", "")
	v.SetDefault("notify.email.password", "")
	v.SetDefault("notify.email.from", "")
	v.SetDefault("notify.email.to", []string{})
	v.SetDefault("notify.webhook.enabled", false)
	v.SetDefault("notify.webhook.url", "")
}

// normalizeTickers trims and upper-cases symbols and drops blanks and
// repeats, keeping first-seen order.
func normalizeTickers(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Tickers: append([]string(nil), DefaultTickers...),
		Policy:  "additive",
		Output: OutputConfig{
			File: DefaultOutputFile,
		},
		Fetch: FetchConfig{
			Provider:  "yahoo",
			Period:    "6mo",
			Interval:  "1d",
			Timeout:   20 * time.Second,
			RateLimit: 2,
		},
		Archive: ArchiveConfig{
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "watchlists",
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Notify: NotifyConfig{
			Email: EmailConfig{Port: 587},
		},
	}
}

// PolicyParams returns the configured params for the named policy.
func (c *Config) PolicyParams(name string) map[string]any {
	if pc, ok := c.Policies[name]; ok && pc.Params != nil {
		return pc.Params
	}
	return map[string]any{}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("at least one ticker is required"))
	}
	if c.Policy == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("policy is required"))
	}
	if strings.TrimSpace(c.Output.File) == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("output file is required"))
	}

	// Fetch validation
	if !collector.ValidPeriod(c.Fetch.Period) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("period must be one of %v, got %q", collector.SupportedPeriods, c.Fetch.Period))
	}
	if !collector.ValidInterval(c.Fetch.Interval) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("interval must be one of %v, got %q", collector.SupportedIntervals, c.Fetch.Interval))
	}
	if c.Fetch.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fetch timeout must be positive, got %s", c.Fetch.Timeout))
	}
	if c.Fetch.RateLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rate_limit cannot be negative, got %f", c.Fetch.RateLimit))
	}

	if c.Archive.Enabled && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 bucket required when archive is enabled"))
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("metrics textfile path required when metrics are enabled"))
	}

	if e := c.Notify.Email; e.Enabled {
		if e.Host == "" || e.From == "" || len(e.To) == 0 {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("email host, from and to required when email is enabled"))
		}
		if e.Port < 1 || e.Port > 65535 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("email port must be between 1 and 65535, got %d", e.Port))
		}
	}

	if c.Notify.Webhook.Enabled && c.Notify.Webhook.URL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("webhook url required when webhook is enabled"))
	}

	return nil
}
