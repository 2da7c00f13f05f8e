package main

// Exit codes reported by the CLI.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing journal, users, store, config file)
	ExitDataError   = 3 // Data error (broken tree walk, failed articles)
)
