package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nbmend/internal/driver"
	"nbmend/internal/extract"
	"nbmend/internal/observ"
	"nbmend/internal/reconcile"
	"nbmend/internal/report"
	"nbmend/internal/stage"
)

// mutatingCommands are registered in this order.
var mutatingCommands = []string{"add", "fix", "meta", "sortcells", "rmcells", "forcegrade"}

// commandOps maps each command to the operation it runs.
var commandOps = map[string]string{
	"add":        "add",
	"fix":        "fix",
	"meta":       "meta",
	"sortcells":  "sort",
	"rmcells":    "prune",
	"forcegrade": "force",
}

var commandHelp = map[string]string{
	"add":        "Match answer cells by tag or declared name and insert the template's missing test cells after them.",
	"fix":        "Copy points from the template by tag, demote student cells wrongly marked graded and merge duplicate cells.",
	"meta":       "Replace cell type and metadata with the template's, matched by tag.",
	"sortcells":  "Reorder tagged cells into template order. Cells without a template tag move to the end.",
	"rmcells":    "Drop every cell without a template tag and sort the rest. Back up first: this is destructive.",
	"forcegrade": "Replace locked cells with the template's, write the result to the staging area and execute it there.",
}

func newMutateCmd(name string) *cobra.Command {
	opName := commandOps[name]
	op, _ := reconcile.Lookup(opName)
	cmd := &cobra.Command{
		Use:   name + " <assignment> <notebook.ipynb>",
		Short: op.Usage,
		Long:  commandHelp[name],
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutate(cmd, name, args[0], args[1])
		},
	}
	switch name {
	case "add":
		cmd.Flags().String("keyword", extract.DefaultKeyword, "declaration keyword used to match cells that lost their tag")
		cmd.Flags().Bool("no-fallback", false, "match by tag only")
	case "forcegrade":
		cmd.Flags().Bool("no-execute", false, "stage without executing")
	}
	return cmd
}

func engineFor(cmd *cobra.Command) (*reconcile.Engine, error) {
	if cmd.Flags().Lookup("keyword") == nil {
		return reconcile.Default(), nil
	}
	noFallback, err := cmd.Flags().GetBool("no-fallback")
	if err != nil {
		return nil, err
	}
	if noFallback {
		return reconcile.New(extract.Disabled{}), nil
	}
	word, err := cmd.Flags().GetString("keyword")
	if err != nil {
		return nil, err
	}
	return reconcile.New(extract.Keyword{Word: word}), nil
}

func runMutate(cmd *cobra.Command, name, assignment, nb string) error {
	c, err := loadCourse(cmd)
	if err != nil {
		return err
	}
	engine, err := engineFor(cmd)
	if err != nil {
		return err
	}
	op, ok := engine.Lookup(commandOps[name])
	if !ok {
		return fmt.Errorf("unknown operation for %s", name)
	}

	// A dry run writes nothing, so it may preview while another run holds the course.
	if !c.dryRun {
		lock, err := driver.AcquireCourseLock(c.layout.CourseDir)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()
	}

	req := &driver.Request{
		Layout:     c.layout,
		Assignment: assignment,
		Notebook:   nb,
		Operation:  op,
		Select:     c.sel,
		DryRun:     c.dryRun,
		Logger:     logger,
	}
	if op.Target == reconcile.Staging {
		req.Stage = stage.Area{Dir: c.layout.StageDir}
		noExec, err := cmd.Flags().GetBool("no-execute")
		if err != nil {
			return err
		}
		if c.cfg.Execute.Enabled && !noExec {
			req.Executor = stage.NBConvert{
				Command:     c.cfg.Execute.Command,
				CellTimeout: c.cfg.Execute.CellTimeout.Std(),
				Timeout:     c.cfg.Execute.Deadline.Std(),
			}
		}
	} else if c.cache {
		cache, err := driver.OpenResultCache(c.cfg.Cache.Dir, "nbmend")
		if err != nil {
			logger.Sugar().Warnf("result cache disabled: %v", err)
		} else {
			req.Cache = cache
		}
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if showTimings {
		req.Timer = observ.NewTimer()
	}

	items, err := driver.Plan(req)
	if err != nil {
		return fmt.Errorf("discover submissions: %w", err)
	}
	req.Items = items

	start := time.Now()
	res, err := runBatch(cmd, fmt.Sprintf("%s %s/%s", name, assignment, nb), req)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	reportPath := ""
	if !c.dryRun {
		reportPath = c.layout.ReportPath(assignment, name, nb)
		if err := report.SaveOutcomes(reportPath, res); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		printSummary(out, res, reportPath, c.dryRun, elapsed)
	}
	if showTimings {
		printTimings(out, req.Timer)
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d of %d submissions failed", n, len(res.Items))
	}
	return nil
}

func printSummary(out io.Writer, res driver.Result, reportPath string, dryRun bool, elapsed time.Duration) {
	okColor := color.New(color.FgGreen, color.Bold)
	warnColor := color.New(color.FgYellow)
	errColor := color.New(color.FgRed, color.Bold)

	for _, it := range res.Items {
		switch {
		case it.Err != nil:
			fmt.Fprintf(out, "%s %s: %v\n", errColor.Sprint("failed"), it.Owner, it.Err.Err)
		case it.Report.HasWarnings():
			fmt.Fprintf(out, "%s %s: %s\n", warnColor.Sprint("warning"), it.Owner, it.Report.Summary())
		}
	}

	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	fmt.Fprintf(out, "%s %d submission(s), %d %s, %d failed in %s\n",
		okColor.Sprint(res.Op),
		len(res.Items),
		res.ChangedCount(),
		verb,
		res.Failed(),
		elapsed.Round(time.Millisecond),
	)
	if reportPath != "" {
		fmt.Fprintf(out, "report: %s\n", reportPath)
	}
}
