package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, invalid values)
	ExitDataError   = 3 // Data error (malformed input file)
	ExitStoreError  = 4 // Store error (connection or transaction failure)
	ExitNoMatch     = 5 // Lookup found no confident match
)
