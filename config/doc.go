// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including the target URL, ping interval and timeout, the ordered endpoint
// fallback list, and the status server listen address.
package config
