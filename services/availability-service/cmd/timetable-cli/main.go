package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "timetable-cli",
		Short: "Compute bookable timeslots from flat files or a running availability service",
		Long: `timetable-cli runs the availability computation outside the HTTP service.

Examples:
  timetable-cli compute --start 20231001 --tz Europe/Berlin --duration 3600 --days 7
  timetable-cli compute --start 20231001 --tz UTC --duration 1800 --events events.yaml --human
  timetable-cli compute --start 20231001 --tz UTC --duration 1800 --remote localhost:9094`,
		SilenceUsage: true,
	}
	root.AddCommand(newComputeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
