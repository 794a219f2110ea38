// Package config loads, normalizes, and validates cinelist configuration.
//
// Configuration lives in TOML (default ~/.config/cinelist/config.toml, or
// ./cinelist.toml in the working directory). Missing files fall back to
// built-in defaults; API keys may come from OMDB_API_KEY and
// OPENROUTER_API_KEY. Load expands "~" in paths and rejects values the
// suggestion engine cannot honour.
package config
