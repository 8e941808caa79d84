// Package config loads, normalizes, and validates loopguard configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads a single TOML document per invocation. The Config type
// centralizes every knob the pre-queue and post-process handlers need:
// the duplicate-detection window, history and log file locations, category
// filters, Radarr/Sonarr instances, and the notifier selection.
//
// A missing configuration file is not an error; defaults apply so a
// misconfigured install never blocks the host application's queue.
package config
