// Package app wires adapters into core services. It is the only package
// that knows every concrete engine, repository and config store, and it
// implements driving.Factory for the CLI.
package app
