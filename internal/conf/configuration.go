package conf

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/gobwas/glob"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/supabase/siws/internal/utilities/siws"
)

const defaultJWTExp = 3600

// APIConfiguration holds the HTTP listener settings.
type APIConfiguration struct {
	Host               string
	Port               string        `envconfig:"PORT" default:"8081"`
	ExternalURL        string        `json:"external_url" envconfig:"API_EXTERNAL_URL" required:"true"`
	RequestIDHeader    string        `envconfig:"REQUEST_ID_HEADER"`
	MaxRequestDuration time.Duration `json:"max_request_duration" split_words:"true" default:"10s"`
	MaxMessageSize     int           `json:"max_message_size" split_words:"true" default:"20480"`
}

func (a *APIConfiguration) Validate() error {
	_, err := url.ParseRequestURI(a.ExternalURL)
	if err != nil {
		return err
	}

	return nil
}

type LoggingConfig struct {
	Level  string            `mapstructure:"log_level" json:"log_level"`
	File   string            `mapstructure:"log_file" json:"log_file"`
	Fields map[string]string `mapstructure:"fields" json:"fields"`
}

// SIWSConfiguration holds the relying party's expectations for signed
// messages.
type SIWSConfiguration struct {
	// Domain is compared against the message domain. Defaults to the host
	// of API_EXTERNAL_URL.
	Domain string `json:"domain"`

	ParserMode siws.ParserMode `json:"parser_mode" split_words:"true" default:"grammar"`

	NonceExpiryDuration     time.Duration `json:"nonce_expiry_duration" split_words:"true" default:"5m"`
	MaximumValidityDuration time.Duration `json:"maximum_validity_duration" split_words:"true" default:"10m"`

	URIAllowList    []string `json:"uri_allow_list" split_words:"true"`
	URIAllowListMap map[string]glob.Glob `json:"-" ignored:"true"`
}

func (c *SIWSConfiguration) Validate() error {
	if c.Domain != "" {
		if _, err := siws.ValidateDomain(c.Domain); err != nil {
			return err
		}
	}

	if c.NonceExpiryDuration <= 0 {
		return errors.New("SIWS_SOLANA_NONCE_EXPIRY_DURATION must be positive")
	}

	if c.MaximumValidityDuration <= 0 {
		return errors.New("SIWS_SOLANA_MAXIMUM_VALIDITY_DURATION must be positive")
	}

	return nil
}

// JWTConfiguration holds all the JWT related configuration.
type JWTConfiguration struct {
	Secret string `json:"secret" required:"true"`
	Exp    int    `json:"exp"`
	Aud    string `json:"aud"`
	Issuer string `json:"issuer"`
}

func (c *JWTConfiguration) Validate() error {
	if c.Secret == "" {
		return errors.New("SIWS_JWT_SECRET must be set")
	}
	if c.Exp < 0 {
		return fmt.Errorf("jwt exp must not be negative, got %d", c.Exp)
	}
	return nil
}

type CORSConfiguration struct {
	AllowedHeaders []string `json:"allowed_headers" split_words:"true"`
}

func (c *CORSConfiguration) AllAllowedHeaders(defaults []string) []string {
	set := make(map[string]bool)
	for _, header := range defaults {
		set[header] = true
	}

	var result []string
	result = append(result, defaults...)

	for _, header := range c.AllowedHeaders {
		if !set[header] {
			result = append(result, header)
		}

		set[header] = true
	}

	return result
}

// GlobalConfiguration holds all the configuration that applies to all instances.
type GlobalConfiguration struct {
	API     APIConfiguration
	Logging LoggingConfig `envconfig:"LOG"`
	Metrics MetricsConfig
	SIWS    SIWSConfiguration `json:"siws" envconfig:"SOLANA"`
	JWT     JWTConfiguration  `json:"jwt"`
	CORS    CORSConfiguration `json:"cors"`
}

func loadEnvironment(filename string) error {
	var err error
	if filename != "" {
		err = godotenv.Overload(filename)
	} else {
		err = godotenv.Load()
		// handle if .env file does not exist, this is OK
		if os.IsNotExist(err) {
			return nil
		}
	}
	return err
}

// LoadGlobal reads the optional env file, then the SIWS_* environment.
func LoadGlobal(filename string) (*GlobalConfiguration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, err
	}

	config := new(GlobalConfiguration)

	if err := envconfig.Process("siws", config); err != nil {
		return nil, err
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyDefaults sets defaults for a GlobalConfiguration
func (config *GlobalConfiguration) ApplyDefaults() error {
	if config.JWT.Exp == 0 {
		config.JWT.Exp = defaultJWTExp
	}

	if config.JWT.Issuer == "" {
		config.JWT.Issuer = config.API.ExternalURL
	}

	if config.SIWS.Domain == "" && config.API.ExternalURL != "" {
		u, err := url.Parse(config.API.ExternalURL)
		if err != nil {
			return err
		}
		config.SIWS.Domain = u.Host
	}

	config.SIWS.URIAllowListMap = make(map[string]glob.Glob)
	for _, uri := range config.SIWS.URIAllowList {
		g, err := glob.Compile(uri, '.', '/')
		if err != nil {
			return fmt.Errorf("invalid uri allow list pattern %q: %w", uri, err)
		}
		config.SIWS.URIAllowListMap[uri] = g
	}

	return nil
}

// Validate validates all of configuration.
func (c *GlobalConfiguration) Validate() error {
	validatables := []interface {
		Validate() error
	}{
		&c.API,
		&c.Metrics,
		&c.SIWS,
		&c.JWT,
	}

	for _, validatable := range validatables {
		if err := validatable.Validate(); err != nil {
			return err
		}
	}

	return nil
}
