package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// progressMode is the --ui setting for the live batch view.
type progressMode int

const (
	progressAuto progressMode = iota
	progressOn
	progressOff
)

var progressModes = map[string]progressMode{
	"":     progressAuto,
	"auto": progressAuto,
	"on":   progressOn,
	"off":  progressOff,
}

func parseProgressMode(value string) (progressMode, error) {
	mode, ok := progressModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return progressAuto, fmt.Errorf("--ui must be auto, on or off, got %q", value)
	}
	return mode, nil
}

// showFor reports whether a batch of n submissions written to out gets the
// live view. Auto only shows it on a terminal.
func (m progressMode) showFor(out io.Writer, n int) bool {
	switch {
	case n == 0 || m == progressOff:
		return false
	case m == progressOn:
		return true
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f)
}
