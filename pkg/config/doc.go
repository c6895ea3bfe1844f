// Package config provides configuration management for Minerva.
//
// This package handles loading and validating configuration from YAML files
// with environment variable overrides. It provides a type-safe configuration
// system with collected validation errors and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.Load("minerva.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadWithEnvOverrides("minerva.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MINERVA_SECTION_FIELD.
// For example:
//
//   - MINERVA_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - MINERVA_RULESETS_GIT_AUTH_TOKEN overrides rulesets.git.auth.token
//   - MINERVA_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// errors are collected, not fail-fast, and include field paths:
//
//	configuration validation failed with 2 errors:
//	  - rulesets.git.repository: repository URL is required in git mode
//	  - eligibility.parallelism: parallelism must be at least 1
//
// Programmatic checks can use errors.Is(err, config.ErrInvalidConfig).
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	rulesets:
//	  mode: "file"
//	  path: "./rulesets"
//	  watch: true
//
//	facts:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/facts.db"
//
//	judgment:
//	  enabled: true
//	  base_url: "http://reasoning.internal:8081"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
