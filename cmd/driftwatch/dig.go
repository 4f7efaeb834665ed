package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/driftwatch/internal"
)

// injectAppContext builds the container and resolves the controllers. Wiring
// errors are programming errors, so they panic.
func injectAppContext() *internal.AppInternal {
	container := dig.New()
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		panic(err)
	}

	return appInternal
}
