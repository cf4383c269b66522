/*
Package config loads and validates railmatch configuration.

Structure lives in config.yml (YAML, validated with go-playground/validator);
secrets are read from the environment, with a local .env file honored for
development. The loaded AppConfig is passed explicitly into each component
constructor - nothing in this package is mutable global state.
*/
package config
