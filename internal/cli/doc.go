// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags and an optional settings file into decoder options
// and runs the decode for the csvproc command.
package cli
