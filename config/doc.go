// Package config builds the single Config value offlinestt runs with.
//
// Sources, lowest precedence first: built-in defaults, an optional
// config.yml, an optional .env file, process environment variables and
// finally command-line flags. Viper merges them; godotenv loads the .env
// file without overriding variables that are already set.
//
// # Usage
//
//	cfg, err := config.Load(config.WithEnvFile(".env"))
//
// The result is constructed once at process start and passed explicitly
// to every component; nothing in the module reads the environment after
// Load returns.
package config
