package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or invalid config)
	ExitDataError   = 3 // Data error (malformed input, too few samples, empty query)
	ExitNotFound    = 4 // Nothing matched the query
	ExitAmbiguous   = 5 // Title fragment matched several documents
)
