// Package config provides configuration structures and utilities for
// carbonscan. It defines the main configuration options for the renderer,
// page declarations, report generation preferences, and storage paths.
package config
