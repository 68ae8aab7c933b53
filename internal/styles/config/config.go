package config

import (
	"fmt"
	"regexp"
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

	// StorePath is the location of the style database file.
	StorePath string `koanf:"store_path" validate:"required"`

	// SourceDir optionally names a directory of style files used to seed
	// an empty store at startup.
	SourceDir string `koanf:"source_dir"`

	// OwnScheme optionally names the embedding application's URL scheme,
	// which is matchable alongside http(s), ftp, and file.
	OwnScheme string `koanf:"own_scheme" validate:"omitempty,url_scheme"`

	// FilterCacheSize caps the filter-result cache entry count.
	FilterCacheSize uint `koanf:"filter_cache_size" validate:"required,gte=1"`

	// EmptinessCacheSize caps the code-emptiness memoization cache.
	EmptinessCacheSize uint `koanf:"emptiness_cache_size" validate:"required,gte=1"`

	// DomainCacheSize caps the domain-decomposition cache.
	DomainCacheSize uint `koanf:"domain_cache_size" validate:"required,gte=1"`

	// BloomFPRate is the target false-positive rate of the domain index.
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`
}

// DEFAULT_APP_CONFIG defines the default application configuration for the
// style cache service.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:                "prod",
	LogLevel:           "info",
	StorePath:          "/var/lib/stylecache/styles.db",
	SourceDir:          "",
	OwnScheme:          "",
	FilterCacheSize:    10000,
	EmptinessCacheSize: 512,
	DomainCacheSize:    100,
	BloomFPRate:        0.01,
}

var schemeRe = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

// validURLScheme validates that the field is a syntactically valid URL
// scheme per RFC 3986 (lowercase form).
func validURLScheme(fl validator.FieldLevel) bool {
	return schemeRe.MatchString(fl.Field().String())
}

// envLoader loads environment variables with the prefix "STYLED_",
// lowercasing keys and stripping the prefix. Mockable in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "STYLED_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "STYLED_"))
			value = strings.TrimSpace(value)
			return key, value
		},
	}), nil)
}

// defaultLoader loads default values via the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "url_scheme" validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("url_scheme", validURLScheme)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
