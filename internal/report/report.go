// Package report writes batch outcomes and info scans as CSV files.
package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"nbmend/internal/driver"
	"nbmend/internal/notebook"
)

var (
	outcomeHeader = []string{"Student ID", "Path", "Status", "Changed", "Entries", "Error"}
	infoHeader    = []string{"Student ID", "File Size", "Cell Count", "Total Execution Count", "[grade id : execution count]"}
)

// WriteOutcomes renders one row per submission of a batch.
func WriteOutcomes(w io.Writer, res driver.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(outcomeHeader); err != nil {
		return err
	}
	for _, it := range res.Items {
		errText := ""
		if it.Err != nil {
			errText = it.Err.Err.Error()
		}
		row := []string{
			it.Owner,
			it.Path,
			it.Status(),
			strconv.FormatBool(it.Changed),
			entries(it),
			errText,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func entries(it driver.ItemResult) string {
	var parts []string
	for _, e := range it.Report.Items() {
		part := e.Code.Name()
		if subject := e.Subject(); subject != "" {
			part += "(" + subject + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// WriteInfo renders an info table. Each tag pair takes its own trailing
// column, so rows may differ in length.
func WriteInfo(w io.Writer, table driver.InfoTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(infoHeader); err != nil {
		return err
	}
	for _, r := range table.Rows {
		if r.Err != nil {
			if err := cw.Write([]string{r.Owner, "", "", "", "error: " + r.Err.Err.Error()}); err != nil {
				return err
			}
			continue
		}
		row := []string{
			r.Owner,
			strconv.FormatInt(r.Size, 10),
			strconv.Itoa(r.Cells),
			strconv.Itoa(r.TotalExec),
		}
		for _, tc := range r.Tags {
			row = append(row, tc.Tag+" : "+tc.Count)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveOutcomes writes the batch CSV to path atomically.
func SaveOutcomes(path string, res driver.Result) error {
	var buf bytes.Buffer
	if err := WriteOutcomes(&buf, res); err != nil {
		return err
	}
	return notebook.WriteFileAtomic(path, buf.Bytes())
}

// SaveInfo writes an info CSV to path atomically.
func SaveInfo(path string, table driver.InfoTable) error {
	var buf bytes.Buffer
	if err := WriteInfo(&buf, table); err != nil {
		return err
	}
	return notebook.WriteFileAtomic(path, buf.Bytes())
}
