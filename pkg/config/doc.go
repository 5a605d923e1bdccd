// Package config holds deterministic cluster-naming logic and the
// handful of constants the controller needs to provision and address
// worker pods. Everything here is pure or an env/file read; it holds
// no state and makes no cluster calls itself.
package config
