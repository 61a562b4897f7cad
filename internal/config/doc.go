// Package config provides configuration for storepreview.
// It holds the capture settings, the optional .storepreview YAML file with
// per-storefront overrides, and the environment variables that override both.
package config
