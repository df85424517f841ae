// Package config provides configuration structures and utilities for pdfdiff.
// It defines the comparison settings (diff threshold, render zoom, page
// concurrency), the output and working directories, and the optional YAML
// configuration file that can override the defaults.
package config
