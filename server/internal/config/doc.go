// Package config loads the server configuration from config.yaml.
//
// Sections:
//   - server     HTTP port (default 8050) and optional static UI directory
//   - dataset    source file or DSN, xlsx sheet, SQL table, unknown-site policy
//   - cache      view memoization toggle and TTL (default 5m)
//   - dashboard  title, default site, slider step and mark interval
//   - hub        WebSocket ping period
//   - logging    slog level and format
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch re-reads the file on change; only the dashboard section is applied
// live, through Settings. LoadEnv reads .env files before anything else.
package config
