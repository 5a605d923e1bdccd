// Package log wraps zerolog with the field conventions shared by the
// engine and controller binaries: a "component" field identifying
// which binary/subsystem emitted the line, a "node" field on anything
// scoped to a single worker, and a "task_id" field on anything scoped
// to a single stress task. Init is called once at startup from
// cobra.OnInitialize; everything after that goes through the package
// Logger or one of the With* child-logger constructors.
package log
