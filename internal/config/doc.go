// Package config provides configuration structures and utilities for msefunds.
// It defines run settings (directories, retries, waits), the portal
// description (URL, element selectors, delays), and the YAML file loader.
package config
