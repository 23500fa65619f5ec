// Package config loads, normalizes, and validates totem-disc configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the TOTEM_DISC_DEVICE environment override. Always
// obtain settings through this package so callers receive expanded paths,
// canonical enum values, and clear validation errors.
package config
