package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	jwtKeyEnv = "MBOARD_JWT_KEY"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpAddr      string        `yaml:"http_addr" validate:"required"`
	Storage       Storage       `yaml:"storage"`
	LockTimeout   time.Duration `yaml:"lock_timeout" validate:"gte=0"` // max wait for the storage guard, 0 waits forever
	JwtTTL        time.Duration `yaml:"jwt_ttl" validate:"required"`
	LogLevel      string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogJSON       bool          `yaml:"log_json"`
	CorsOrigins   []string      `yaml:"cors_origins"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

type Storage struct {
	Driver     string `yaml:"driver" validate:"required,oneof=sqlite postgres"`
	SqlitePath string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key"`
}

// implementing setup dependencies

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// Validate checks the loaded values, including the driver specific ones.
func (s *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(s.Public); err != nil {
		return err
	}
	if s.Private.JwtKey == "" {
		return fmt.Errorf("jwt_key is required (private.yaml or %s)", jwtKeyEnv)
	}
	if s.Public.Storage.Driver == DriverPostgres {
		pg := s.Private.Pg
		if pg.Host == "" || pg.Port == 0 || pg.User == "" || pg.Dbname == "" {
			return fmt.Errorf("pg host, port, user and dbname are required for the postgres driver")
		}
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.UnmarshalStrict(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if key := os.Getenv(jwtKeyEnv); key != "" {
		private.JwtKey = key
	}

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
