package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/baristalabs/barista/pkg/buildinfo"
	"github.com/baristalabs/barista/pkg/config"
	"github.com/baristalabs/barista/pkg/utils"
)

func loadConfig() error {
	// Defaults
	for k, v := range getDefaultConfig() {
		viper.SetDefault(k, v)
	}

	// Env
	viper.SetEnvPrefix("BARISTA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.barista")
	viper.AddConfigPath("/etc/barista")

	// Check if we have a specific config file to load
	confFile := os.Getenv("BARISTA_CONFIG")
	if confFile != "" {
		viper.SetConfigFile(confFile)
	}

	// Read the config
	// Note: don't print any log that's not fatal-level before loading the desired log level
	err := viper.ReadInConfig()
	if err != nil {
		// Ignore errors if the config file doesn't exist
		var notfoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notfoundErr) {
			return newLoadConfigError(err, "Error loading config file")
		}
	}

	// Process the configuration
	return processConfig()
}

// Gets the default config
// The defaults for the environment record match the development tenant
func getDefaultConfig() map[string]any {
	production := utils.IsTruthy(buildinfo.Production)

	logLevel := "debug"
	if production {
		logLevel = "info"
	}

	return map[string]any{
		config.KeyLogLevel:         logLevel,
		config.KeyPort:             8080,
		config.KeyBind:             "0.0.0.0",
		config.KeyProduction:       production,
		config.KeyAPIServerUrl:     "http://localhost:5000",
		config.KeyAuth0Url:         "dev-ya94ppfc.us",
		config.KeyAuth0Audience:    "drinks",
		config.KeyAuth0CallbackURL: "http://localhost:8100",
		config.KeyMigrationsPath:   "db/migrations",
	}
}

// Processes the configuration from viper
func processConfig() (err error) {
	// Log level
	err = setLogLevel()
	if err != nil {
		return err
	}

	// Check required variables
	err = validateConfig()
	if err != nil {
		return err
	}

	// In production, Gin runs in release mode
	if viper.GetBool(config.KeyProduction) {
		gin.SetMode(gin.ReleaseMode)
	}

	return nil
}

// Validates the environment record built from the configuration
func validateConfig() error {
	err := config.FromViper().Validate()
	if err != nil {
		return newLoadConfigError(err, "Invalid configuration")
	}
	return nil
}

// Sets the log level based on the configuration
func setLogLevel() error {
	switch strings.ToLower(viper.GetString(config.KeyLogLevel)) {
	case "debug":
		appLogger.SetLogLevel(zerolog.DebugLevel)
	case "", "info": // Also default log level
		appLogger.SetLogLevel(zerolog.InfoLevel)
	case "warn":
		appLogger.SetLogLevel(zerolog.WarnLevel)
	case "error":
		appLogger.SetLogLevel(zerolog.ErrorLevel)
	default:
		return newLoadConfigError("Invalid value for 'logLevel'", "Invalid configuration")
	}
	return nil
}

// Error returned by loadConfig
type loadConfigError struct {
	err string
	msg string
}

// newLoadConfigError returns a new loadConfigError.
// The err argument can be a string or an error.
func newLoadConfigError(err any, msg string) *loadConfigError {
	return &loadConfigError{
		err: fmt.Sprintf("%v", err),
		msg: msg,
	}
}

// Error implements the error interface
func (e loadConfigError) Error() string {
	return e.err + ": " + e.msg
}

// LogFatal causes a fatal log
func (e loadConfigError) LogFatal() {
	appLogger.Raw().Fatal().
		Str("error", e.err).
		Msg(e.msg)
}
