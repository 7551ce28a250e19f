package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "diagnosis",
		Short: "Rule-based health severity classifier",
		Long: "diagnosis classifies a patient observation into one of five severity categories " +
			"(NOT_SICK, MILD_ILLNESS, ACUTE_ILLNESS, CHRONIC_ILLNESS, TERMINAL_ILLNESS).\n" +
			"It is a simulation and must not be used for medical diagnosis.",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newVersionCmd())
	return root
}
