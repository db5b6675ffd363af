package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nbmend/internal/change"
	"nbmend/internal/notebook"
	"nbmend/internal/observ"
	"nbmend/internal/reconcile"
	"nbmend/internal/stage"
	"nbmend/internal/trace"
)

// Request describes one batch: one operation over every submission of one
// notebook of one assignment.
type Request struct {
	Layout     Layout
	Assignment string
	Notebook   string
	Operation  reconcile.Operation
	Select     Selector
	// Items overrides discovery when non-nil.
	Items  []Item
	DryRun bool

	Cache    *ResultCache
	Stage    stage.Area
	Executor stage.Executor

	Logger   *zap.Logger
	Progress ProgressSink
	Timer    *observ.Timer
}

// ItemResult is the outcome for one submission.
type ItemResult struct {
	Item
	Changed    bool
	Persisted  bool
	Cached     bool
	StagedPath string
	Report     *change.Report
	Err        *ItemError
}

// Status summarises the item for reports.
func (r ItemResult) Status() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Persisted:
		return "written"
	case r.StagedPath != "":
		return "staged"
	case r.Changed:
		return "changed"
	case r.Cached:
		return "cached"
	default:
		return "unchanged"
	}
}

// Result is the outcome of a batch.
type Result struct {
	RunID    string
	Op       string
	Template string
	Items    []ItemResult
}

// Failed counts items that hit a storage or execution fault.
func (r Result) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

// ChangedCount counts items whose document changed.
func (r Result) ChangedCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Changed {
			n++
		}
	}
	return n
}

// Report merges every item report.
func (r Result) Report() *change.Report {
	rep := change.NewReport()
	for _, it := range r.Items {
		rep.Merge(it.Report)
	}
	return rep
}

// Err joins the item errors, nil when every item succeeded.
func (r Result) Err() error {
	var errs []error
	for _, it := range r.Items {
		if it.Err != nil {
			errs = append(errs, it.Err)
		}
	}
	return errors.Join(errs...)
}

// Plan resolves the items a request would process.
func Plan(req *Request) ([]Item, error) {
	if req.Items != nil {
		return req.Items, nil
	}
	return Discover(req.Layout.SubmittedDir, req.Assignment, req.Notebook, req.Select)
}

// Run loads the template once and applies the operation to each submission
// in turn. A failing submission is recorded and the loop moves on; only an
// unusable template, a failed discovery or cancellation stop the batch.
func Run(ctx context.Context, req *Request) (Result, error) {
	if req == nil || req.Operation.Apply == nil {
		return Result{}, fmt.Errorf("missing operation")
	}
	req.Layout = req.Layout.WithDefaults()
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	res := Result{RunID: uuid.NewString(), Op: req.Operation.Name}
	logger = logger.With(
		zap.String("run", res.RunID),
		zap.String("op", res.Op),
		zap.String("assignment", req.Assignment),
		zap.String("notebook", req.Notebook),
	)

	ctx, span := trace.Start(ctx, trace.ScopeBatch, "batch")
	span.WithExtra("op", res.Op).WithExtra("run", res.RunID)
	defer func() {
		span.WithExtra("items", strconv.Itoa(len(res.Items))).
			WithExtra("failed", strconv.Itoa(res.Failed())).
			End("")
	}()

	res.Template = req.Layout.TemplatePath(req.Assignment, req.Notebook)
	tmpl, tmplDigest, err := loadTemplate(ctx, req, res.Template)
	if err != nil {
		return res, err
	}

	items, err := Plan(req)
	if err != nil {
		return res, fmt.Errorf("discover submissions: %w", err)
	}
	logger.Debug("batch planned", zap.Int("items", len(items)), zap.String("template", res.Template))
	for _, it := range items {
		emit(req.Progress, Event{Owner: it.Owner, Path: it.Path, Status: StatusQueued})
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r := processItem(ctx, req, logger, tmpl, tmplDigest, it)
		logItem(logger, r)
		res.Items = append(res.Items, r)
	}
	emit(req.Progress, Event{Status: StatusDone})
	return res, nil
}

func loadTemplate(ctx context.Context, req *Request, path string) (*notebook.Document, notebook.Digest, error) {
	_, sp := trace.Start(ctx, trace.ScopeStage, "load-template")
	defer sp.End(path)
	done := req.Timer.Track("template")
	defer done()

	tmpl, err := notebook.Load(path)
	if err != nil {
		return nil, notebook.Digest{}, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	digest, err := tmpl.Digest()
	if err != nil {
		return nil, notebook.Digest{}, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return tmpl, digest, nil
}

func processItem(ctx context.Context, req *Request, logger *zap.Logger, tmpl *notebook.Document, tmplDigest notebook.Digest, it Item) (res ItemResult) {
	res = ItemResult{Item: it, Report: change.NewReport()}
	ctx, span := trace.Start(ctx, trace.ScopeNotebook, "notebook")
	span.WithExtra("owner", it.Owner)
	start := time.Now()

	var stageNow Stage
	step := func(s Stage) {
		stageNow = s
		emit(req.Progress, Event{Owner: it.Owner, Path: it.Path, Stage: s, Status: StatusWorking})
	}
	fail := func(op Op, err error) ItemResult {
		res.Err = itemErr(it, op, err)
		res.Report.Failure(op.Code(), err)
		emit(req.Progress, Event{Owner: it.Owner, Path: it.Path, Stage: stageNow, Status: StatusError, Err: res.Err, Elapsed: time.Since(start)})
		return res
	}
	defer func() {
		span.WithExtra("status", res.Status()).End(res.Report.Summary())
	}()

	step(StageLoad)
	if it.Err != nil {
		return fail(OpRead, it.Err)
	}
	stopLoad := req.Timer.Track(string(StageLoad))
	data, err := os.ReadFile(it.Path)
	if err != nil {
		stopLoad()
		return fail(OpRead, err)
	}
	sub, err := notebook.Parse(data)
	stopLoad()
	if err != nil {
		return fail(OpParse, err)
	}

	inPlace := req.Operation.Target == reconcile.InPlace
	var key CacheKey
	if inPlace && req.Cache != nil {
		if digest, err := sub.Digest(); err == nil {
			key = NewCacheKey(req.Operation.Key(), tmplDigest, digest)
			rep, ok, err := req.Cache.Get(key)
			if err != nil {
				logger.Warn("result cache read failed", zap.String("owner", it.Owner), zap.Error(err))
			}
			if err == nil && ok {
				res.Cached = true
				res.Report = rep
				trace.Point(ctx, trace.ScopeNotebook, "cache-hit", it.Owner)
				emit(req.Progress, Event{Owner: it.Owner, Path: it.Path, Status: StatusDone, Elapsed: time.Since(start)})
				return res
			}
		}
	}

	step(StageReconcile)
	stopRec := req.Timer.Track(string(StageReconcile))
	out, err := req.Operation.Apply(tmpl, sub)
	stopRec()
	if err != nil {
		return fail(OpApply, err)
	}
	res.Changed = out.Changed
	res.Report.Merge(out.Report)
	for _, e := range out.Report.Items() {
		trace.Point(ctx, trace.ScopeCell, e.Code.Name(), e.Subject())
	}

	switch {
	case req.DryRun:
	case !inPlace:
		step(StageStage)
		stopStage := req.Timer.Track(string(StageStage))
		path, err := req.Stage.Write(out.Doc, it.Owner, req.Assignment, req.Notebook)
		stopStage()
		if err != nil {
			return fail(OpStage, err)
		}
		res.StagedPath = path
		if req.Executor != nil {
			step(StageExecute)
			stopExec := req.Timer.Track(string(StageExecute))
			err := req.Executor.Execute(ctx, path)
			stopExec()
			if err != nil {
				return fail(OpExecute, err)
			}
		}
	case out.Changed:
		step(StageWrite)
		stopWrite := req.Timer.Track(string(StageWrite))
		err := out.Doc.Save(it.Path)
		stopWrite()
		if err != nil {
			return fail(OpWrite, err)
		}
		res.Persisted = true
	case req.Cache != nil && key != (CacheKey{}):
		if err := req.Cache.Put(key, req.Operation.Key(), out.Report); err != nil {
			logger.Warn("result cache write failed", zap.String("owner", it.Owner), zap.Error(err))
		}
	}

	emit(req.Progress, Event{Owner: it.Owner, Path: it.Path, Status: StatusDone, Elapsed: time.Since(start)})
	return res
}

func logItem(logger *zap.Logger, r ItemResult) {
	fields := []zap.Field{
		zap.String("owner", r.Owner),
		zap.String("path", r.Path),
		zap.String("status", r.Status()),
		zap.Bool("changed", r.Changed),
		zap.Int("entries", r.Report.Len()),
	}
	if r.Err != nil {
		logger.Warn("submission failed", append(fields, zap.String("step", string(r.Err.Op)), zap.Error(r.Err.Err))...)
		return
	}
	if r.Report.HasWarnings() {
		logger.Info("submission reconciled with findings", append(fields, zap.String("findings", r.Report.Summary()))...)
		return
	}
	logger.Debug("submission reconciled", fields...)
}
