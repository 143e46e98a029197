// Package config loads application configuration with viper.
//
// LoadConfig reads a YAML file (./config.yml, ./cmd/<app>/config.yml or
// ~/.config/<app>/config.yml unless one is given), loads a .env file into the
// environment with godotenv, and lets environment variables override file
// values. With WithEnvPrefix("EXECRUN") only EXECRUN_* variables are bound:
//
//	var cfg Config
//	err := config.LoadConfig("execrun", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithEnvPrefix("EXECRUN"))
//
// EXECRUN_EXECUTION_TIMEOUT=30s then sets execution.timeout.
package config
