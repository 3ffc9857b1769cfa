// Package config loads the simulator's run configuration from a
// Java-properties style key-value file and builds the driver-level
// connection configurations consumed by the postgresengine strategies.
package config
