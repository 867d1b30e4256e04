// Package config loads the runtime settings of the 2048 game server.
//
// Settings come from three layers, later ones winning:
//   - a .env file in the working directory, loaded with godotenv
//   - the process environment, parsed with caarlos0/env
//   - command-line flags, applied by the caller for flags that were set
//
// Environment Variables:
//
//	GAME2048_HOST              listen host (default localhost)
//	GAME2048_PORT              listen port (default 8080)
//	GAME2048_DEBUG             file:line in log output
//	GAME2048_SEED              fixed tile seed for reproducible games
//	GAME2048_SESSION_TTL       idle time before a session is dropped (default 24h)
//	GAME2048_CLEANUP_INTERVAL  how often idle sessions are swept (default 1h)
//	GAME2048_OTEL_ENDPOINT     OTLP/HTTP endpoint; tracing is off when empty
//	NGROK_ENABLED, NGROK_AUTHTOKEN, NGROK_DOMAIN
package config
