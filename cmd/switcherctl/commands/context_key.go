package commands

// ClientContextKey is used for storing the client in context for commands.
// The root command installs an HTTP client under this key unless one is
// already present, which is how tests inject mocks.
var ClientContextKey = &struct{}{}
