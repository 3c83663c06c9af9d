package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. TUMBLER_PASSPHRASE.
const envPrefix = "tumbler"

// loadConfig layers the command's flags over TUMBLER_* environment variables
// over the optional --config file.
func loadConfig(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}
