// Package config loads configuration documents with Viper.
//
// Load reads a YAML, JSON or TOML file (chosen by extension), loads an
// optional .env file, then applies environment overrides. Overrides use
// the ETL_ prefix with underscore-separated paths, so ETL_SETTINGS_CHUNK_SIZE
// sets settings.chunk_size.
//
// # Usage
//
//	var cfg MyConfig
//	err := config.Load("recipe.yml", &cfg)
package config
