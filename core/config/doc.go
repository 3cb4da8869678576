// Package config loads env-tagged structs once per type.
//
// The first Load reads a .env file from the working directory if present,
// then parses the struct with caarlos0/env. Later calls for the same type
// return the cached value:
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// MustLoad panics instead of returning the error; the CLI uses it at startup.
// Parse skips the cache and the .env file; tests use it together with
// t.Setenv to build fresh values.
package config
