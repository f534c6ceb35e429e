// Package params resolves connection parameters from the process
// environment and from .env files.
//
// Resolution precedence is decided by the CLI layer; this package only
// provides the individual sources:
//
//   - ReadEnvFile / ParseEnvContent load .env files (godotenv format)
//   - ConnectionFromEnv maps the standard libpq PG* variables
//   - ParseKeyValuePairs parses repeated key=value flag values
//
// All functions are pure and safe for concurrent use.
package params
