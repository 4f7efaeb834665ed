package entities

import "github.com/spf13/cobra"

// ControllerBind holds the Cobra command metadata a controller is exposed with.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is a CLI entry point bound to a Cobra subcommand.
type Controller interface {
	GetBind() ControllerBind
	Execute(cmd *cobra.Command, args []string)
}
