// Package config loads the service configuration.
// Values are layered with increasing priority: built-in defaults,
// a JSON file (CONFIG / -c), environment variables (optionally from .env)
// and command-line flags. The result is validated before use.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting of the service.
type Config struct {
	RunAddr         string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	GRPCAddr        string        `env:"GRPC_ADDRESS" json:"grpc_address" validate:"hostname_port"`
	LogLevel        string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	LogFile         string        `env:"LOG_FILE" json:"log_file"`
	MediaBaseURL    string        `env:"MEDIA_BASE_URL" json:"media_base_url" validate:"url"`
	UploadBaseURL   string        `env:"UPLOAD_BASE_URL" json:"upload_base_url" validate:"url"`
	TrustedSubnet   string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" json:"-" validate:"gt=0"`
	ConfigFile      string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	RunAddr:         ":8080",
	GRPCAddr:        ":3200",
	LogLevel:        "info",
	MediaBaseURL:    "https://example.com",
	UploadBaseURL:   "https://upload.example.com",
	TrustedSubnet:   "",
	ShutdownTimeout: 10 * time.Second,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (values *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs replaces os.Args[1:] as the source of command-line flags.
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.GRPCAddr == "" {
		values.GRPCAddr = defaults.GRPCAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.MediaBaseURL == "" {
		values.MediaBaseURL = defaults.MediaBaseURL
	}
	if values.UploadBaseURL == "" {
		values.UploadBaseURL = defaults.UploadBaseURL
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
	if values.ShutdownTimeout == 0 {
		values.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// applyOverrides copies every non-zero field of src over values.
func applyOverrides(values *Config, src Config) {
	if src.RunAddr != "" {
		values.RunAddr = src.RunAddr
	}
	if src.GRPCAddr != "" {
		values.GRPCAddr = src.GRPCAddr
	}
	if src.LogLevel != "" {
		values.LogLevel = src.LogLevel
	}
	if src.LogFile != "" {
		values.LogFile = src.LogFile
	}
	if src.MediaBaseURL != "" {
		values.MediaBaseURL = src.MediaBaseURL
	}
	if src.UploadBaseURL != "" {
		values.UploadBaseURL = src.UploadBaseURL
	}
	if src.TrustedSubnet != "" {
		values.TrustedSubnet = src.TrustedSubnet
	}
	if src.ShutdownTimeout != 0 {
		values.ShutdownTimeout = src.ShutdownTimeout
	}
	if src.ConfigFile != "" {
		values.ConfigFile = src.ConfigFile
	}
}

func parseFlags(args []string) (Config, error) {
	var fromFlags Config

	flagSet := flag.NewFlagSet("videocatalog", flag.ContinueOnError)
	flagSet.StringVar(&fromFlags.RunAddr, "a", "", "address and port to run server")
	flagSet.StringVar(&fromFlags.GRPCAddr, "g", "", "address and port to run the gRPC server")
	flagSet.StringVar(&fromFlags.LogLevel, "l", "", "logger level")
	flagSet.StringVar(&fromFlags.LogFile, "f", "", "rotated JSON log file, console only when empty")
	flagSet.StringVar(&fromFlags.MediaBaseURL, "m", "", "base URL of the synthetic video and thumbnail links")
	flagSet.StringVar(&fromFlags.UploadBaseURL, "u", "", "base URL of the returned upload links")
	flagSet.StringVar(&fromFlags.TrustedSubnet, "t", "", "CIDR allowed to read the internal stats")
	flagSet.DurationVar(&fromFlags.ShutdownTimeout, "s", 0, "graceful shutdown timeout")
	flagSet.StringVar(&fromFlags.ConfigFile, "c", "", "path to a JSON configuration file")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}

	return fromFlags, nil
}

func readJSONFile(fileName string) (Config, error) {
	var fromJSON Config

	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, fmt.Errorf("in internal/config/config.go/readJSONFile(): error while `os.ReadFile()` calling: %w", err)
	}

	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return Config{}, fmt.Errorf("in internal/config/config.go/readJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	return fromJSON, nil
}

// New builds a validated Config. Priority: CLI > ENV > JSON > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var fromFlags Config
	if !options.disableFlagsParsing {
		fromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, err
	}

	values := &Config{}

	configFile := fromEnv.ConfigFile
	if fromFlags.ConfigFile != "" {
		configFile = fromFlags.ConfigFile
	}
	if configFile != "" {
		fromJSON, err := readJSONFile(configFile)
		if err != nil {
			return nil, err
		}
		applyOverrides(values, fromJSON)
		values.ConfigFile = configFile
	}

	applyOverrides(values, fromEnv)
	applyOverrides(values, fromFlags)
	applyDefaults(values, defaultConfig)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
