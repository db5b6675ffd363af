package driver

import (
	"context"
	"os"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nbmend/internal/notebook"
)

// TagCount pairs a cell tag with its execution count as stored.
type TagCount struct {
	Tag   string
	Count string
}

// InfoRow is the quick summary of one submission.
type InfoRow struct {
	Item
	Size      int64
	Cells     int
	TotalExec int
	Tags      []TagCount
	Err       *ItemError
}

// InfoTable holds the rows of one notebook of an assignment.
type InfoTable struct {
	Notebook string
	Rows     []InfoRow
}

// InfoRequest describes a read-only scan of an assignment.
type InfoRequest struct {
	Layout     Layout
	Assignment string
	Select     Selector
	Jobs       int
	Logger     *zap.Logger
}

// Info scans every submission of every source notebook of an assignment.
// Documents are only read, so they are loaded concurrently.
func Info(ctx context.Context, req InfoRequest) ([]InfoTable, error) {
	req.Layout = req.Layout.WithDefaults()
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	names, err := req.Layout.SourceNotebooks(req.Assignment)
	if err != nil {
		return nil, err
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tables := make([]InfoTable, 0, len(names))
	for _, nb := range names {
		items, err := Discover(req.Layout.SubmittedDir, req.Assignment, nb, req.Select)
		if err != nil {
			return tables, err
		}
		rows := make([]InfoRow, len(items))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(1, min(jobs, len(items))))
		for i, it := range items {
			i, it := i, it
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				// index i is owned by this goroutine
				rows[i] = scanItem(it)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return tables, err
		}
		for _, r := range rows {
			if r.Err != nil {
				logger.Warn("info scan failed", zap.String("owner", r.Owner), zap.String("path", r.Path), zap.Error(r.Err.Err))
			}
		}
		tables = append(tables, InfoTable{Notebook: nb, Rows: rows})
	}
	return tables, nil
}

func scanItem(it Item) InfoRow {
	row := InfoRow{Item: it}
	if it.Err != nil {
		row.Err = itemErr(it, OpRead, it.Err)
		return row
	}
	st, err := os.Stat(it.Path)
	if err != nil {
		row.Err = itemErr(it, OpRead, err)
		return row
	}
	row.Size = st.Size()
	doc, err := notebook.Load(it.Path)
	if err != nil {
		row.Err = itemErr(it, OpParse, err)
		return row
	}
	row.Cells = doc.Len()
	for _, c := range doc.Cells() {
		n, isInt := c.ExecutionCount()
		if isInt {
			row.TotalExec += n
		}
		if !c.HasExecutionCount() {
			continue
		}
		tag, ok := c.Tag()
		if !ok {
			continue
		}
		count := "null"
		if isInt {
			count = strconv.Itoa(n)
		}
		row.Tags = append(row.Tags, TagCount{Tag: tag, Count: count})
	}
	return row
}
