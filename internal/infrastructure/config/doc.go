// Package config loads server settings from environment variables.
//
// Every field has a default, so an empty environment yields a working
// server serving the built-in sample project on 0.0.0.0:8000.
package config
