package testutils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/baristalabs/barista/pkg/utils"
)

// SetTestConfigs updates the configuration in the viper global object for the test
// Returns a function that should be called with "defer" to restore the previous configuration
func SetTestConfigs(values map[string]any) func() {
	prevConfig := make(map[string]any, len(values))
	for k, v := range values {
		prevConfig[k] = viper.Get(k)
		viper.Set(k, v)
	}

	return func() {
		for k, v := range prevConfig {
			viper.Set(k, v)
		}
	}
}

// SetAppLogger sets appLogger, optionally with a custom buffer as destination
// Returns a function that should be called with "defer" to restore the previous appLogger
func SetAppLogger(appLogger **utils.AppLogger, dest io.Writer) func() {
	prevAppLogger := *appLogger

	if dest == nil {
		dest = os.Stderr
	}
	*appLogger = utils.NewAppLogger("test", dest)
	(*appLogger).SetLogLevel(zerolog.DebugLevel)

	return func() {
		*appLogger = prevAppLogger
	}
}
