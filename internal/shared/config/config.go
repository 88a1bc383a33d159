package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, read once at startup and injected
// into every component.
type Config struct {
	Server      Server
	WhatsApp    WhatsApp
	WooCommerce WooCommerce
	Automator   Automator
	Order       Order
	Reminders   []ReminderRoute
	LogLevel    string
}

type Server struct {
	Port            int
	ShutdownTimeout time.Duration
}

// WhatsApp holds the Meta Graph API credentials. Missing secrets are not a startup
// error: sends are skipped and reported per call.
type WhatsApp struct {
	BusinessAccountID string
	PhoneNumberID     string
	AccessToken       string
	BaseURL           string
	APIVersion        string
	RateLimit         float64 // messages per second, 0 = unlimited
	Timeout           time.Duration
}

// WooCommerce holds the order system REST credentials.
type WooCommerce struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

// Automator is the optional email automation side channel.
type Automator struct {
	EmailWebhookURL string
	Timeout         time.Duration
}

type Order struct {
	SettleDelay time.Duration
}

const (
	DefaultPort            = 3000
	DefaultGraphBaseURL    = "https://graph.facebook.com"
	DefaultGraphAPIVersion = "v20.0"
	DefaultSettleDelay     = 15 * time.Second
	DefaultHTTPTimeout     = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Lookup resolves an environment variable.
type Lookup func(key string) (string, bool)

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applies defaults and validates it.
func FromLookup(lookup Lookup) (*Config, error) {
	var cfg Config
	var problems []string

	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	intVar := func(key string, dst *int) {
		if v := env(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s must be an integer", key))
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if v := env(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s must be a number", key))
				return
			}
			*dst = f
		}
	}
	durationVar := func(key string, dst *time.Duration) {
		if v := env(key); v != "" {
			d, err := parseDuration(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s must be a duration (e.g. 15s)", key))
				return
			}
			*dst = d
		}
	}

	cfg.Server.Port = -1
	intVar("PORT", &cfg.Server.Port)
	durationVar("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	cfg.WhatsApp.BusinessAccountID = env("WABA_ID")
	cfg.WhatsApp.PhoneNumberID = env("PHONE_NUMBER_ID")
	cfg.WhatsApp.AccessToken = env("META_ACCESS_TOKEN")
	cfg.WhatsApp.BaseURL = env("GRAPH_API_BASE_URL")
	cfg.WhatsApp.APIVersion = env("GRAPH_API_VERSION")
	floatVar("WHATSAPP_RATE_LIMIT", &cfg.WhatsApp.RateLimit)
	durationVar("WHATSAPP_TIMEOUT", &cfg.WhatsApp.Timeout)

	cfg.WooCommerce.BaseURL = env("WC_URL")
	cfg.WooCommerce.ConsumerKey = env("WC_CONSUMER_KEY")
	cfg.WooCommerce.ConsumerSecret = env("WC_CONSUMER_SECRET")
	durationVar("WC_TIMEOUT", &cfg.WooCommerce.Timeout)

	cfg.Automator.EmailWebhookURL = env("AUTOMATOR_EMAIL_WEBHOOK_URL")
	durationVar("AUTOMATOR_TIMEOUT", &cfg.Automator.Timeout)

	cfg.Order.SettleDelay = -1
	durationVar("ORDER_SETTLE_DELAY", &cfg.Order.SettleDelay)

	cfg.LogLevel = env("LOG_LEVEL")

	if path := env("REMINDERS_FILE"); path != "" {
		routes, err := LoadReminders(path)
		if err != nil {
			problems = append(problems, err.Error())
		}
		cfg.Reminders = routes
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseDuration accepts Go durations ("15s") and bare seconds ("15").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// applyDefaults sets safe defaults for unset fields.
func applyDefaults(cfg *Config) {
	// Server
	if cfg.Server.Port == -1 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// WhatsApp
	if cfg.WhatsApp.BaseURL == "" {
		cfg.WhatsApp.BaseURL = DefaultGraphBaseURL
	}
	if cfg.WhatsApp.APIVersion == "" {
		cfg.WhatsApp.APIVersion = DefaultGraphAPIVersion
	}
	if cfg.WhatsApp.Timeout == 0 {
		cfg.WhatsApp.Timeout = DefaultHTTPTimeout
	}

	// WooCommerce + automator
	if cfg.WooCommerce.Timeout == 0 {
		cfg.WooCommerce.Timeout = DefaultHTTPTimeout
	}
	if cfg.Automator.Timeout == 0 {
		cfg.Automator.Timeout = DefaultHTTPTimeout
	}

	// Order pipeline; an explicit 0 disables the settle delay
	if cfg.Order.SettleDelay == -1 {
		cfg.Order.SettleDelay = DefaultSettleDelay
	}

	if cfg.Reminders == nil {
		cfg.Reminders = DefaultReminders()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks ranges and URL shapes.
func (c *Config) validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be in 1..65535")
	}
	if c.Server.ShutdownTimeout < 0 {
		problems = append(problems, "SHUTDOWN_TIMEOUT must be >= 0")
	}
	if c.Order.SettleDelay < 0 {
		problems = append(problems, "ORDER_SETTLE_DELAY must be >= 0")
	}
	if c.WhatsApp.RateLimit < 0 {
		problems = append(problems, "WHATSAPP_RATE_LIMIT must be >= 0")
	}
	if c.WhatsApp.Timeout < 0 || c.WooCommerce.Timeout < 0 || c.Automator.Timeout < 0 {
		problems = append(problems, "timeouts must be >= 0")
	}

	for key, raw := range map[string]string{
		"GRAPH_API_BASE_URL":          c.WhatsApp.BaseURL,
		"WC_URL":                      c.WooCommerce.BaseURL,
		"AUTOMATOR_EMAIL_WEBHOOK_URL": c.Automator.EmailWebhookURL,
	} {
		if raw != "" && !isHTTPURL(raw) {
			problems = append(problems, key+" must be an absolute http(s) URL")
		}
	}

	if err := validateReminders(c.Reminders); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Missing lists the absent messaging secrets by their environment names.
func (w WhatsApp) Missing() []string {
	var missing []string
	if w.BusinessAccountID == "" {
		missing = append(missing, "WABA_ID")
	}
	if w.PhoneNumberID == "" {
		missing = append(missing, "PHONE_NUMBER_ID")
	}
	if w.AccessToken == "" {
		missing = append(missing, "META_ACCESS_TOKEN")
	}
	return missing
}

// Missing lists the absent order system settings by their environment names.
func (w WooCommerce) Missing() []string {
	var missing []string
	if w.BaseURL == "" {
		missing = append(missing, "WC_URL")
	}
	if w.ConsumerKey == "" {
		missing = append(missing, "WC_CONSUMER_KEY")
	}
	if w.ConsumerSecret == "" {
		missing = append(missing, "WC_CONSUMER_SECRET")
	}
	return missing
}
