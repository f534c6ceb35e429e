package params

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvLookup reports the value of an environment variable and whether it
// is set. os.LookupEnv satisfies this signature.
type EnvLookup func(key string) (string, bool)

// ConnectionValues holds connection parameters gathered from one source.
// Zero values mean "not provided by this source".
type ConnectionValues struct {
	ConnectionString string
	Host             string
	Port             int
	Database         string
	Username         string
	Password         string
	SSLMode          string
}

// Merge overlays non-zero fields of other on top of v and returns the
// result. other wins where both sources provide a value.
func (v ConnectionValues) Merge(other ConnectionValues) ConnectionValues {
	if other.ConnectionString != "" {
		v.ConnectionString = other.ConnectionString
	}
	if other.Host != "" {
		v.Host = other.Host
	}
	if other.Port != 0 {
		v.Port = other.Port
	}
	if other.Database != "" {
		v.Database = other.Database
	}
	if other.Username != "" {
		v.Username = other.Username
	}
	if other.Password != "" {
		v.Password = other.Password
	}
	if other.SSLMode != "" {
		v.SSLMode = other.SSLMode
	}
	return v
}

// ReadEnvFile reads a .env file and returns its key-value pairs without
// mutating the process environment.
func ReadEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

// ParseEnvContent parses .env file content already held in memory.
func ParseEnvContent(content []byte) (map[string]string, error) {
	values, err := godotenv.UnmarshalBytes(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env content: %w", err)
	}
	return values, nil
}

// ConnectionFromEnv gathers connection parameters from the standard
// libpq environment variables plus PGPLAN_DATABASE_URL / DATABASE_URL
// for a full connection string. An unparseable PGPORT is an error so a
// typo does not silently fall through to the default port.
func ConnectionFromEnv(lookup EnvLookup) (ConnectionValues, error) {
	var values ConnectionValues

	for _, key := range []string{"PGPLAN_DATABASE_URL", "DATABASE_URL"} {
		if s, ok := lookup(key); ok && s != "" {
			values.ConnectionString = s
			break
		}
	}

	if s, ok := lookup("PGHOST"); ok {
		values.Host = s
	}
	if s, ok := lookup("PGPORT"); ok && s != "" {
		port, err := strconv.Atoi(s)
		if err != nil {
			return ConnectionValues{}, fmt.Errorf("PGPORT %q is not a number", s)
		}
		values.Port = port
	}
	if s, ok := lookup("PGDATABASE"); ok {
		values.Database = s
	}
	if s, ok := lookup("PGUSER"); ok {
		values.Username = s
	}
	if s, ok := lookup("PGPASSWORD"); ok {
		values.Password = s
	}
	if s, ok := lookup("PGSSLMODE"); ok {
		values.SSLMode = s
	}

	return values, nil
}

// MapLookup adapts a plain map (for example the result of ReadEnvFile)
// to the EnvLookup signature.
func MapLookup(m map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
