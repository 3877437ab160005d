// Package config handles configuration loading for schoolbook.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. A missing file is not an error: defaults are used.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SCHOOLBOOK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/schoolbook/config.yaml
//  3. ~/.config/schoolbook/config.yaml
//
// Files ending in .toml are decoded as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	storage:
//	  postgres:
//	    url: "${DATABASE_URL}"
//
// # Storage Backends
//
//	storage:
//	  backend: sqlite      # sqlite (pure Go), sqlite3 (cgo), memory, redis, postgres
//	  path: ~/.local/share/schoolbook/school.db
//	  redis:
//	    addr: localhost:6379
//	    dial_timeout: "2s"
//
// # Logging
//
//	logging:
//	  level: info    # debug, info, warn, error
//	  format: text   # text or json
package config
