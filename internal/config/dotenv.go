package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file. If path is empty,
// ".env" in the current directory is used. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}

// LoadConfig loads configuration layered as defaults, then the optional YAML
// config file, then the optional .env file plus environment variables.
// Later layers override earlier ones.
func LoadConfig(envPath, filePath string) (AppConfig, error) {
	fileCfg, err := LoadFile(filePath)
	if err != nil {
		return AppConfig{}, err
	}

	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	opts := append(fileCfg.Options(), envCfg.Options()...)
	return NewAppConfigWithOptions(opts...), nil
}
