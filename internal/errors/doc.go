// Package errors provides structured, actionable error messages for the
// webcast command line.
//
// Every error carries a code (e.g., "W201") that maps to a short message,
// a longer explanation and, where it helps, a hint on how to fix it.
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: webcast.json and flag problems
//   - connect: dialing and handshake failures
//   - stream: failures after the session opened
//   - archive: payload archive failures
//
// # Usage
//
//	err := errors.New("W101").
//	    WithDetail("No webcast.json found in " + dir).
//	    WithSuggestion("Pass --url or create webcast.json")
//
//	errors.PrintError(err)
//	// Output:
//	// ERROR W101: Config file not found
//	//
//	//   No webcast.json found in /srv/app
//	//
//	//   Hint: Pass --url or create webcast.json
package errors
