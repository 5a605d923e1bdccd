// Package wire holds the JSON types exchanged between clients, the
// controller, and the engine. Every field is optional at the wire level;
// defaulting and validation happen where the request is admitted, not
// here.
package wire
