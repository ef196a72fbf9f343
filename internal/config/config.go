package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains client and stub server configuration parameters.
type Config struct {
	LogLevel       int    `env:"LOG_LEVEL" envDefault:"0"`
	StorePath      string `env:"STORE_PATH"`
	RecaptchaToken string `env:"RECAPTCHA_TOKEN" envDefault:"dev-recaptcha-token"`
	API            API    `envPrefix:"API_"`
	TwoFA          TwoFA  `envPrefix:"TWOFA_"`
	Stub           Stub   `envPrefix:"STUB_"`
}

// API contains account service connection parameters.
type API struct {
	HostURL     string        `env:"HOST_URL" envDefault:"http://localhost:8080"`
	DefaultPath string        `env:"DEFAULT_PATH" envDefault:"/api/v1"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// BaseURL returns the prefix every account service endpoint is appended to.
func (a API) BaseURL() string {
	return a.HostURL + a.DefaultPath
}

// TwoFA contains second-factor challenge parameters.
type TwoFA struct {
	Budget              time.Duration `env:"BUDGET" envDefault:"300s"`
	ExpiryRedirectDelay time.Duration `env:"EXPIRY_REDIRECT_DELAY" envDefault:"3s"`
}

// Stub contains development account server parameters.
type Stub struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool          `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string        `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string        `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"devsecret"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RememberTTL        time.Duration `env:"REMEMBER_TTL" envDefault:"720h"`
	ChallengeTTL       time.Duration `env:"CHALLENGE_TTL" envDefault:"5m"`
	Issuer             string        `env:"ISSUER" envDefault:"AccountStub"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
