package cmd

import (
	"fmt"

	"github.com/officehours/officehours/pkg/schedule"
	"github.com/spf13/cobra"
)

var setActor string

var setDefaultCmd = &cobra.Command{
	Use:     "set-default DAY TIME",
	Short:   "Set the default hours of a weekday",
	Example: `  officehours set-default Monday "2:00 PM - 5:00 PM"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSetDefault,
}

var setOverrideCmd = &cobra.Command{
	Use:     "set-override DATE DAY TIME",
	Short:   "Override the hours of a weekday for the date MM/DD",
	Example: `  officehours set-override 09/01 Monday "CLOSED (Labor Day)"`,
	Args:    cobra.ExactArgs(3),
	RunE:    runSetOverride,
}

func init() {
	for _, c := range []*cobra.Command{setDefaultCmd, setOverrideCmd} {
		c.Flags().StringVar(&setActor, "actor", "CLI", "name shown in update notifications")
		rootCmd.AddCommand(c)
	}
}

func runSetDefault(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	deps, err := loadDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	doc, err := deps.ScheduleService.SetDefault(schedule.WithActor(ctx, setActor), args[0], args[1])
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	printDocument(cmd, doc)
	return nil
}

func runSetOverride(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	deps, err := loadDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	doc, err := deps.ScheduleService.SetOverride(schedule.WithActor(ctx, setActor), args[0], args[1], args[2])
	if err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	printDocument(cmd, doc)
	return nil
}
