// Package cli provides the command-line interface for the seolens application.
package cli

import (
	"github.com/seolens/seolens/internal/app"
)

// Global application reference shared by all commands. Initialized in the
// root command's PersistentPreRunE and torn down in PersistentPostRun.
var globalApp *app.Application

// GetApp retrieves the shared Application
func GetApp() *app.Application {
	return globalApp
}

// SetApp stores the shared Application
func SetApp(a *app.Application) {
	globalApp = a
}
