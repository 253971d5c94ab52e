// Package config loads, normalizes, and validates textflix configuration.
//
// Configuration is TOML, resolved from an explicit path, then
// ~/.config/textflix/config.toml, then ./textflix.toml. Secrets may also be
// supplied through environment variables (TMDB_API_KEY, TWILIO_AUTH_TOKEN,
// RADARR_API_KEY, LLM_API_KEY) so a config file never has to hold them.
package config
