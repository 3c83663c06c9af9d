// Package logging provides leveled output for tumbler CLI commands.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always shown. All output goes to the logger's
// writer, stderr by default, so stdout stays free for payload data.
//
// # Usage
//
//	log := logging.Logger{Verbose: verbose, Debug: debug}
//	log.Infof("sealed %d bytes", n)
package logging
