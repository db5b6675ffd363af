package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nbmend/internal/config"
	"nbmend/internal/driver"
)

// course is the configuration of one invocation after flags are applied.
type course struct {
	cfg    config.Course
	layout driver.Layout
	sel    driver.Selector
	dryRun bool
	cache  bool
}

// loadCourse resolves nbmend.toml and NBMEND_* from the course directory
// (or the working directory), then applies the persistent flags.
func loadCourse(cmd *cobra.Command) (*course, error) {
	flags := cmd.Root().PersistentFlags()
	cdir, err := flags.GetString("cdir")
	if err != nil {
		return nil, err
	}
	sdir, err := flags.GetString("sdir")
	if err != nil {
		return nil, err
	}
	odir, err := flags.GetString("odir")
	if err != nil {
		return nil, err
	}
	patterns, err := flags.GetStringSlice("select")
	if err != nil {
		return nil, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return nil, err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, err
	}

	start := cdir
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Resolve(start)
	if err != nil {
		return nil, err
	}
	if cdir != "" {
		cfg.Course.Dir = cdir
	}
	if sdir != "" {
		cfg.Course.Source = sdir
	}
	if odir != "" {
		cfg.Course.Submitted = odir
	}
	if cfg.Course.Dir == "" {
		cfg.Course.Dir = start
	}

	c := &course{
		cfg:    cfg,
		layout: layoutOf(cfg),
		sel:    driver.Selector(patterns),
		dryRun: dryRun,
		cache:  cfg.Cache.Enabled && !noCache,
	}
	if err := c.sel.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(c.layout.SubmittedDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid submitted directory: %s", c.layout.SubmittedDir)
	}
	return c, nil
}

func layoutOf(cfg config.Course) driver.Layout {
	return driver.Layout{
		CourseDir:    filepath.Clean(cfg.Course.Dir),
		SourceDir:    cfg.Course.Source,
		SubmittedDir: cfg.Course.Submitted,
		StageDir:     cfg.Course.Stage,
		ReportDir:    cfg.Report.Dir,
	}.WithDefaults()
}
