package internal

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/controllers"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories"
)

// RegisterProviders registers every layer with the DIG container, bottom-up:
// infrastructure repositories, domain commands, controllers, then AppInternal.
// Settings are not provided here; controllers load them per invocation.
func RegisterProviders(container *dig.Container) error {
	layers := []func(*dig.Container) error{
		repositories.RegisterProviders,
		commands.RegisterProviders,
		controllers.RegisterProviders,
	}
	for _, register := range layers {
		if err := register(container); err != nil {
			return err
		}
	}

	return container.Provide(NewAppInternal)
}
