package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"nbmend/internal/driver"
	"nbmend/internal/report"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <assignment>",
		Short: "Summarise every submission of an assignment",
		Long: `For each source notebook of the assignment, list every submission's owner,
file size, cell count, total execution count and the execution count of each
tagged cell. Results go to <course>/reports/<assignment>/info-<notebook>.csv.`,
		Args: cobra.ExactArgs(1),
		RunE: runInfo,
	}
	cmd.Flags().Int("jobs", 0, "submissions read in parallel (0 = course.jobs or GOMAXPROCS)")
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	assignment := args[0]
	c, err := loadCourse(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = c.cfg.Course.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tables, err := driver.Info(cmd.Context(), driver.InfoRequest{
		Layout:     c.layout,
		Assignment: assignment,
		Select:     c.sel,
		Jobs:       jobs,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("info %s: %w", assignment, err)
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	out := cmd.OutOrStdout()
	for _, table := range tables {
		path := c.layout.ReportPath(assignment, "info", table.Notebook)
		if c.dryRun {
			if err := report.WriteInfo(out, table); err != nil {
				return err
			}
			continue
		}
		if err := report.SaveInfo(path, table); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if !quiet {
			fmt.Fprintf(out, "%s: %d submission(s) -> %s\n", table.Notebook, len(table.Rows), path)
		}
	}
	return nil
}
