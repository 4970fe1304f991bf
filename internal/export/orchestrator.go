package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/artifact"
	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
	"wf-exporter/internal/diagnostic"
	"wf-exporter/internal/observability"
	"wf-exporter/internal/rewrite"
	"wf-exporter/internal/substitute"
	"wf-exporter/internal/task"
)

// Orchestrator processes configured items one at a time.
type Orchestrator struct {
	resolver *config.Resolver
	source   MetadataSource
	fetcher  artifact.Fetcher
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetadataSource sets where original workspace paths and ACLs come from.
func WithMetadataSource(s MetadataSource) Option {
	return func(o *Orchestrator) { o.source = s }
}

// WithFetcher sets the fallback used for artifacts missing from the export.
func WithFetcher(f artifact.Fetcher) Option {
	return func(o *Orchestrator) { o.fetcher = f }
}

// WithMetrics records run metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator for a validated configuration.
func New(resolver *config.Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Process exports one item from the bundle generate output at exportDir.
// Failures are reported in the Result, never returned.
func (o *Orchestrator) Process(ctx context.Context, exportDir string, job config.ExportJob) Result {
	run, _ := o.process(ctx, exportDir, job)
	return run.Result()
}

// Run processes jobs leaves-first under the configured start path, then
// writes the mapping CSV, the run summary and the metrics textfile. These
// outputs are also written when the run is cancelled or stops on a fatal
// error, covering the items finished so far. The returned error is set only
// for run-fatal failures; per-item failures are in the Summary.
func (o *Orchestrator) Run(ctx context.Context, jobs []config.ExportJob) (*Summary, error) {
	root := o.resolver.File().InitialVariables.StartPath

	summary := &Summary{RunID: uuid.NewString(), StartedAt: o.now().UTC()}
	logger := o.logger.With("run_id", summary.RunID)

	order, err := leavesFirst(o.orderItems(root, jobs))
	if errors.Is(err, errCycle) {
		summary.Warnings = append(summary.Warnings, "items reference each other in a cycle; using configuration order")
		logger.Warn("dependency cycle between items, using configuration order")
	}

	logger.Info("export run started", "items", len(jobs), "start_path", root)

	mapping, runErr := o.runItems(ctx, root, jobs, order, summary)

	if err := o.flush(summary, mapping, logger); err != nil {
		if runErr != nil {
			logger.Error("failed to write run outputs", "error", err)
			return summary, runErr
		}

		return summary, err
	}

	if runErr != nil {
		logger.Error("export run stopped", "error", runErr, "saved", summary.Saved(), "failed", summary.Failed())
		return summary, runErr
	}

	logger.Info("export run completed", "saved", summary.Saved(), "failed", summary.Failed())

	return summary, nil
}

// runItems processes jobs in order and returns the mapping rows of the
// existing items that were saved. It stops at cancellation or a fatal error.
func (o *Orchestrator) runItems(ctx context.Context, root string, jobs []config.ExportJob,
	order []int, summary *Summary,
) ([][2]string, error) {
	var mapping [][2]string

	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return mapping, apperrors.Cancelled(err)
		}

		job := jobs[i]

		run, err := o.process(ctx, root, job)
		summary.add(run)

		if run.State == StateSaved && job.IsExisting {
			mapping = append(mapping, [2]string{run.ResourceKey, job.ID})
		}

		if err != nil {
			return mapping, err
		}
	}

	return mapping, nil
}

// flush writes the run outputs configured in initial_variables.
func (o *Orchestrator) flush(summary *Summary, mapping [][2]string, logger *slog.Logger) error {
	iv := o.resolver.File().InitialVariables

	if len(mapping) > 0 {
		if err := writeMapping(iv.MappingCSVPath, mapping); err != nil {
			return err
		}

		logger.Info("resource key to job id mapping saved", "path", iv.MappingCSVPath, "rows", len(mapping))
	}

	if iv.SummaryPath != "" {
		if err := writeSummary(iv.SummaryPath, summary); err != nil {
			return err
		}
	}

	if iv.MetricsPath != "" && o.metrics != nil {
		if err := o.metrics.WriteTextfile(iv.MetricsPath); err != nil {
			return apperrors.OutputUnwritable("write", iv.MetricsPath, err)
		}
	}

	return nil
}

// orderItems reads each item's references. Items whose resource cannot be
// found have none; their failure is reported when they are processed.
func (o *Orchestrator) orderItems(root string, jobs []config.ExportJob) []orderItem {
	items := make([]orderItem, len(jobs))

	for i, job := range jobs {
		items[i] = orderItem{kind: job.Kind, id: job.ID}

		if _, res, err := FindResource(root, job); err == nil {
			items[i].resourceKey = res.Key
			items[i].refs = task.References(res)
		}
	}

	return items
}

// process runs one item to a terminal state. The error is non-nil only for
// run-fatal failures.
func (o *Orchestrator) process(ctx context.Context, root string, job config.ExportJob) (*Run, error) {
	run := newRun(job, o.now())
	logger := o.logger.With("job_id", job.ID, "kind", string(job.Kind), "job", job.Name)

	err := o.execute(ctx, run, root, logger)
	run.finish(o.now(), err)

	outcome := observability.OutcomeSaved

	switch {
	case err != nil:
		outcome = observability.OutcomeFailed
		logger.Error("export failed", "error", err)
	default:
		logger.Info("export saved", "resource_key", run.ResourceKey,
			"rewritten_paths", run.Rewritten, "warnings", len(run.Diagnostics.Warnings))
	}

	o.metrics.RecordItem(ctx, string(job.Kind), outcome, run.Rewritten,
		len(run.Diagnostics.Warnings), run.Duration().Seconds())

	if err != nil && apperrors.IsFatal(err) {
		return run, err
	}

	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, root string, logger *slog.Logger) error {
	job := run.Job
	settings := o.resolver.Resolve(job)

	root, err := filepath.Abs(root)
	if err != nil {
		return apperrors.OutputUnwritable("resolve", root, err)
	}

	if err := run.transition(StateScanning); err != nil {
		return err
	}

	doc, res, err := FindResource(root, job)
	if err != nil {
		return err
	}

	run.ResourceKey = res.Key

	if dir := o.resolver.File().InitialVariables.BackupPath; dir != "" {
		if err := backupFile(doc.Path, dir); err != nil {
			return err
		}
	}

	plan, diags := task.Extract(res)
	run.Diagnostics.Merge(*diags)

	for _, w := range diags.Warnings {
		logger.Warn("task skipped", "code", w.Code, "field", w.Field, "reason", w.Message)
	}

	if err := plan.ValidateScopes(); err != nil {
		return err
	}

	idx, err := artifact.NewIndex(root, o.excluded(root)...)
	if err != nil {
		return err
	}

	logger.Debug("export tree indexed", "root", idx.Root(), "files", len(idx.Files()))

	paths := o.workspacePaths(ctx, run, logger)
	bindings := o.bind(ctx, run, plan, doc, idx, paths, settings, logger)

	if err := run.transition(StateRewriting); err != nil {
		return err
	}

	changed, rdiags := rewrite.NewEngine(idx.Root(), logger).Rewrite(doc, bindings, settings)
	run.Diagnostics.Merge(*rdiags)
	run.Rewritten = changed

	if removed := rewrite.DedupeDependencies(plan); removed > 0 {
		logger.Debug("duplicate environment dependencies removed", "count", removed)
	}

	relocator := artifact.NewRelocator(idx.Root(), logger)
	for _, b := range bindings {
		if _, err := relocator.Place(b.Record); err != nil {
			return err
		}
	}

	if err := run.transition(StateSubstituting); err != nil {
		return err
	}

	if n := substitute.Values(doc.Root(), settings.ValueRules); n > 0 {
		logger.Debug("values substituted", "count", n)
	}

	for _, c := range substitute.SparkConf(res, settings.SparkConfRules) {
		logger.Debug("spark conf transformed", "field", c.Locator, "search_key", c.SearchKey, "target_key", c.TargetKey)
	}

	if job.Kind == bundle.KindWorkflow {
		bundle.DeleteMappingKey(bundle.MappingValue(res.Node, "schedule"), "pause_status")
	}

	o.injectPermissions(ctx, run, res, logger)

	if err := doc.WriteFile(doc.Path); err != nil {
		return apperrors.OutputUnwritable("write", doc.Path, err)
	}

	return run.transition(StateSaved)
}

// excluded lists output locations under root that are not artifacts.
func (o *Orchestrator) excluded(root string) []string {
	iv := o.resolver.File().InitialVariables

	var out []string

	for _, p := range []string{iv.BackupPath, filepath.Dir(iv.MappingCSVPath)} {
		if p == "" {
			continue
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}

		if rel, err := filepath.Rel(root, abs); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			out = append(out, rel)
		}
	}

	return out
}

func (o *Orchestrator) workspacePaths(ctx context.Context, run *Run, logger *slog.Logger) task.WorkspacePaths {
	if o.source == nil {
		return nil
	}

	paths, err := o.source.WorkspacePaths(ctx, run.Job)
	if err != nil {
		run.Diagnostics.AddWarning("metadata_unavailable", err.Error(), run.Job.Name, "")
		logger.Warn("workspace paths unavailable, locating artifacts from the export only", "error", err)

		return nil
	}

	return paths
}

// bind locates the artifact of every path field in plan.
func (o *Orchestrator) bind(
	ctx context.Context,
	run *Run,
	plan *task.Plan,
	doc *bundle.Document,
	idx *artifact.Index,
	paths task.WorkspacePaths,
	settings config.EffectiveSettings,
	logger *slog.Logger,
) []rewrite.Binding {
	loc := artifact.NewLocator(idx, o.fetcher, logger)
	name := run.Job.Name

	var bindings []rewrite.Binding

	add := func(owner, pathsKey string, fields []task.PathField) {
		for _, f := range fields {
			field := owner + "." + f.Locator

			if f.Kind == task.KindWheel && !settings.ExportLibraries {
				run.Diagnostics.AddInfo("libraries_not_exported", "export_libraries is off; wheel left as is", name, field)
				continue
			}

			rec, err := loc.Locate(ctx, artifact.Request{
				Ref:           f.Value(),
				WorkspacePath: paths.Lookup(pathsKey, f.Locator),
				Kind:          f.Kind,
				BaseDir:       doc.Dir(),
			})
			if errors.Is(err, artifact.ErrVariableRef) {
				run.Diagnostics.AddInfo("variable_reference", "bundle variable reference left as is", name, field)
				continue
			}

			if err != nil {
				run.Diagnostics.Add(diagnostic.Diagnostic{
					Severity:    diagnostic.DiagnosticWarning,
					Code:        "artifact_not_found",
					Message:     err.Error(),
					Job:         name,
					Field:       field,
					Suggestions: loc.Suggest(f.Value()),
				})
				logger.Warn("artifact not found", "task_key", owner, "field", f.Locator, "error", err)

				continue
			}

			if len(rec.Ambiguous) > 0 {
				run.Diagnostics.Add(diagnostic.Diagnostic{
					Severity:    diagnostic.DiagnosticWarning,
					Code:        "ambiguous_artifact",
					Message:     fmt.Sprintf("%s matched several files; using %s", f.Value(), rec.LocalPath),
					Job:         name,
					Field:       field,
					Suggestions: rec.Ambiguous,
				})
				logger.Warn("ambiguous artifact", "task_key", owner, "field", f.Locator,
					"local_path", rec.LocalPath, "ties", rec.Ambiguous)
			}

			bindings = append(bindings, rewrite.Binding{TaskKey: owner, Field: f, Record: rec})
		}
	}

	for _, n := range plan.Tasks {
		pathsKey := n.TaskKey
		if plan.Resource.Kind == bundle.KindPipeline {
			pathsKey = ""
		}

		add(n.TaskKey, pathsKey, n.Fields)
	}

	for _, e := range plan.Environments {
		add(e.Key, e.Key, e.Fields)
	}

	return bindings
}

func (o *Orchestrator) injectPermissions(ctx context.Context, run *Run, res bundle.Resource, logger *slog.Logger) {
	if o.source == nil {
		return
	}

	perms, err := o.source.Permissions(ctx, run.Job)
	if err != nil {
		run.Diagnostics.AddWarning("permissions_unavailable", err.Error(), run.Job.Name, "permissions")
		logger.Warn("permissions unavailable", "error", err)

		return
	}

	added, err := bundle.SetPermissions(res, perms)
	if err != nil {
		run.Diagnostics.AddWarning("permissions_unavailable", err.Error(), run.Job.Name, "permissions")
		return
	}

	if added {
		logger.Debug("permissions added", "entries", len(perms))
	}
}
