package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// ProxyAddr is the host:port the intercepting proxy listens on.
	ProxyAddr string `koanf:"proxy_addr" validate:"required,listen_addr"`

	// AdminAddr is the host:port the admin API listens on.
	AdminAddr string `koanf:"admin_addr" validate:"required,listen_addr"`

	// DBPath is the path of the bbolt database holding the persisted lists and counter.
	DBPath string `koanf:"db_path" validate:"required"`

	// FeedDir is an optional directory of tracker feed files (plain or hosts format).
	// Empty means no feeds are loaded.
	FeedDir string `koanf:"feed_dir"`

	// CacheSize is the capacity of the verdict cache.
	CacheSize uint `koanf:"cache_size" validate:"required,gte=1"`

	// DisableCache disables verdict caching when set to true.
	// Useful for testing scenarios where cache behavior needs to be bypassed.
	DisableCache bool `koanf:"disable_cache"`

	// BadgeColor is the badge background color shown while requests are being blocked.
	BadgeColor string `koanf:"badge_color" validate:"required,hexcolor"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings for blockd.
// It includes default values for the runtime environment, log level, listen addresses,
// database path, and the verdict cache.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:          "prod",
	LogLevel:     "info",
	ProxyAddr:    ":8888",
	AdminAddr:    ":8889",
	DBPath:       "/var/lib/blockd/blockd.db",
	FeedDir:      "",
	CacheSize:    1000,
	DisableCache: false,
	BadgeColor:   "#FF0000",
}

// validListenAddr validates whether the provided field value is a usable listen
// address in "host:port" form. The host part may be empty (bind all interfaces)
// or a valid IP address; the port must be a number between 1 and 65535.
func validListenAddr(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	// empty host means all interfaces; otherwise it must be a valid IP
	if host != "" && net.ParseIP(host) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// envLoader is a function that loads environment variables with the prefix "BLOCKD_".
// It transforms the keys to lowercase and removes the prefix.
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	// Load environment variables with prefix "BLOCKD_".
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "BLOCKD_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "BLOCKD_"))
			value = strings.TrimSpace(value)
			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	// Load default values using structs provider.
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers a custom validation function "listen_addr" with the
// provided validator. It associates the "listen_addr" tag with the validListenAddr
// validation logic. Returns an error if registration fails.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("listen_addr", validListenAddr)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	// Load default values using structs provider.
	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Load environment variables with prefix "BLOCKD_".
	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	// Unmarshal the loaded configuration into AppConfig struct.
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Validate the configuration.
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Register the custom validation function for listen addresses.
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
