package cmd

import (
	"fmt"
	"os"

	gntaxdb "github.com/gnames/gntaxdb/pkg"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/spf13/cobra"
)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", gntaxdb.Version, gntaxdb.Build)
		os.Exit(0)
	}
}

// jobFlags adds flags shared by commands that run taxonomy jobs.
func jobFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("jobs", "j", 0,
		"number of concurrent workers (default from config)")
	cmd.Flags().StringP("metrics-file", "m", "",
		"write Prometheus textfile metrics to this path")
}

// jobOptions converts explicitly set job flags to config options.
func jobOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	if cmd.Flags().Changed("jobs") {
		i, _ := cmd.Flags().GetInt("jobs")
		res = append(res, config.OptJobsNumber(i))
	}
	if cmd.Flags().Changed("metrics-file") {
		s, _ := cmd.Flags().GetString("metrics-file")
		res = append(res, config.OptMetricsFile(s))
	}
	return res
}
