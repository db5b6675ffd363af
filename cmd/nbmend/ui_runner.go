package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"nbmend/internal/driver"
	"nbmend/internal/ui"
)

type batchOutcome struct {
	result driver.Result
	err    error
}

// runBatch runs req, behind the progress view when --ui allows it.
func runBatch(cmd *cobra.Command, title string, req *driver.Request) (driver.Result, error) {
	modeStr, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return driver.Result{}, err
	}
	mode, err := parseProgressMode(modeStr)
	if err != nil {
		return driver.Result{}, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return driver.Result{}, err
	}
	if quiet || !mode.showFor(cmd.OutOrStdout(), len(req.Items)) {
		return driver.Run(cmd.Context(), req)
	}
	return runBatchWithUI(cmd, title, req)
}

func runBatchWithUI(cmd *cobra.Command, title string, req *driver.Request) (driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(cmd.Context(), &reqCopy)
		outcomeCh <- batchOutcome{result: res, err: err}
		close(events)
	}()

	owners := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		owners = append(owners, it.Owner)
	}
	model := ui.NewProgressModel(title, owners, events)
	program := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()))
	_, uiErr := program.Run()
	if uiErr != nil {
		// The view is gone; keep the batch from blocking on a full channel.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
