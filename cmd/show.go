package cmd

import (
	"fmt"

	"github.com/officehours/officehours/pkg/schedule"
	"github.com/spf13/cobra"
)

var showNext bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective schedule of the current week",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showNext, "next", false, "show the following week")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	deps, err := loadDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	weekStart := deps.ScheduleService.CurrentWeekStart()
	if showNext {
		weekStart = weekStart.AddDate(0, 0, 7)
	}
	days, err := deps.ScheduleService.EffectiveWeek(ctx, weekStart)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Week of %s\n", weekStart.Format("January 2, 2006"))
	for _, day := range days {
		marker := ""
		if day.Overridden {
			marker = " *"
		}
		fmt.Fprintf(out, "%-10s %s  %s%s\n", day.Day, day.DateKey, day.DisplayTime(), marker)
	}
	return nil
}

// printDocument is shared by the set commands.
func printDocument(cmd *cobra.Command, doc schedule.Document) {
	out := cmd.OutOrStdout()
	for _, day := range schedule.Weekdays {
		value := doc.Default[day]
		if value == "" {
			value = schedule.EmptyTimePlaceholder
		}
		fmt.Fprintf(out, "%-10s %s\n", day, value)
	}
	if len(doc.Overrides) > 0 {
		fmt.Fprintf(out, "%d date(s) with overrides\n", len(doc.Overrides))
	}
}
