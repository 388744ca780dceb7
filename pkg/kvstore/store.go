package kvstore

import "context"

// Store defines the durable key-value layer the cart is mirrored into.
type Store interface {
	// Get retrieves the value stored under key
	// Returns value, true if found
	// Returns "", false if the key holds nothing
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}

// Supported drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

var Drivers = []string{
	DriverMemory,
	DriverSQLite,
	DriverRedis,
	DriverPostgres,
	DriverS3,
}
