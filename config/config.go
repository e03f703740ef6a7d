package config

import (
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/hdlforge/xbt/log"
)

// Config holds the user-level configuration of the tool.
type Config struct {
	// BoardPath lists additional directories searched for board definition files.
	BoardPath []string `mapstructure:"board_path"`

	// Tools maps an external tool name to the executable that should be invoked
	// instead, e.g. an absolute path to a specific Vivado installation.
	Tools map[string]string `mapstructure:"tools"`
}

var config *Config

// GetConfigDir returns the directory holding the user configuration and any
// fetched board definition collections.
func GetConfigDir() string {
	if dir := viper.GetString("config_dir"); dir != "" {
		return dir
	}
	home, err := homedir.Dir()
	if err != nil {
		log.Fatal("Unable to locate the home directory: %s.\n", err)
	}
	return path.Join(home, ".config", "xbt")
}

func loadConfiguration() Config {
	var cfg Config

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(GetConfigDir())
	viper.SetEnvPrefix("XBT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warning("Error reading configuration file: %s. Using default configuration.\n", err)
		}
		return cfg
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Warning("Error parsing configuration file: %s. Using default configuration.\n", err)
		return cfg
	}

	log.Debug("Loaded configuration from '%s'.\n", viper.ConfigFileUsed())
	log.Debug("Running with configuration: %+v\n", cfg)
	return cfg
}

// GetConfig returns the user configuration, loading it on first use.
func GetConfig() Config {
	if config == nil {
		loadedConfig := loadConfiguration()
		config = &loadedConfig
	}
	return *config
}

// ToolPath returns the executable to invoke for the named external tool,
// honoring any user override.
func ToolPath(tool string) string {
	if override, ok := GetConfig().Tools[tool]; ok {
		return override
	}
	return tool
}

// EnvScriptVar returns the name of the environment variable that may point to
// a setup script sourced before any tool of the given toolchain is invoked.
func EnvScriptVar(toolchain string) string {
	return "XBT_ENV_" + toolchain
}
