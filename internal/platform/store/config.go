package store

// Driver names the selectable storage backends
type Driver string

const (
	// DriverPostgres is the durable pgx-backed store
	DriverPostgres Driver = "postgres"

	// DriverMemory is the in-process dev store
	DriverMemory Driver = "memory"
)

// Config aggregates backend configuration
type Config struct {
	AppName string
	Driver  Driver

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}
