package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"log/slog"
	"os"
	"path/filepath"
)

type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	RemoteDir   string
	LocalDir    string
	Timeout     int
	ExplicitTLS bool
	Compare     string
	Interval    int

	// Debug is set from the command line, never from the config file.
	Debug bool
}

// Load reads the configuration in ascending precedence: built-in defaults,
// then ftpmirror.json (working directory first, then ~/.config/ftpmirror),
// then FTPMIRROR_* environment variables. A .env file in the working
// directory is folded into the environment first. FTPMIRROR_CONFIG points
// at an explicit config file and replaces the search path.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("FTPMIRROR_CONFIG"))
}

// LoadFrom loads like Load but reads the given config file when file is
// non-empty. A named file that cannot be read is an error; an absent file
// on the default search path is not.
func LoadFrom(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	v := viper.New()

	v.SetDefault("host", "")
	v.SetDefault("port", 21)
	v.SetDefault("user", "anonymous")
	v.SetDefault("password", "")
	v.SetDefault("remote_dir", "/")
	v.SetDefault("local_dir", ".")
	v.SetDefault("timeout", 30)
	v.SetDefault("explicit_tls", false)
	v.SetDefault("compare", "auto")
	v.SetDefault("interval", 300)

	v.SetEnvPrefix("FTPMIRROR")
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("ftpmirror")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ftpmirror"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Warn("config file not found, using environment variables and defaults")
	}

	config := &Config{
		Host:        v.GetString("host"),
		Port:        v.GetInt("port"),
		User:        v.GetString("user"),
		Password:    v.GetString("password"),
		RemoteDir:   v.GetString("remote_dir"),
		LocalDir:    v.GetString("local_dir"),
		Timeout:     v.GetInt("timeout"),
		ExplicitTLS: v.GetBool("explicit_tls"),
		Compare:     v.GetString("compare"),
		Interval:    v.GetInt("interval"),
	}

	return config, nil
}
