// Package config loads typed configuration from the environment, optionally
// seeded from a .env file. Components declare envconfig-tagged structs and
// receive explicit values; nothing reads ambient globals after startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const envFileVar = "ENV_FILE"

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

func New[T any](prefix string) (*T, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// loadEnvFile exports key/values from ENV_FILE (or ./.env when present) into
// the process environment so envconfig can see them. Existing variables win.
func loadEnvFile() error {
	path := strings.TrimSpace(os.Getenv(envFileVar))
	explicit := path != ""
	if path == "" {
		path = ".env"
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, val := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
