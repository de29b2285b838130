package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/JonMunkholm/csvgate/internal/config"
	"github.com/JonMunkholm/csvgate/internal/logging"
	"github.com/JonMunkholm/csvgate/internal/validator"
)

// Request errors. Their texts are matched by MapError.
var (
	ErrNoFile         = errors.New("no file provided")
	ErrEmptyFile      = errors.New("empty file")
	ErrFileTooLarge   = errors.New("file too large")
	ErrNoProject      = errors.New("no project provided")
	ErrUnknownProject = errors.New("unknown project")
)

// persistTimeout bounds the history write after a run. It is detached from
// the request so a client hanging up does not lose the record.
const persistTimeout = 5 * time.Second

// Request is one file submitted for validation.
type Request struct {
	FileName string
	Data     []byte
	Project  string
	Columns  validator.ColumnConfig
}

// Run is the outcome of Service.Validate.
type Run struct {
	ID          string           `json:"id"`
	FileName    string           `json:"fileName"`
	Project     string           `json:"project"`
	Fingerprint string           `json:"fingerprint"`
	SizeBytes   int64            `json:"sizeBytes"`
	StartedAt   time.Time        `json:"startedAt"`
	Duration    time.Duration    `json:"-"`
	DurationMS  int64            `json:"durationMs"`
	Result      validator.Result `json:"result"`
}

// Summary reduces the run to what history stores.
func (r *Run) Summary(ctx context.Context) RunSummary {
	s := RunSummary{
		ID:          r.ID,
		FileName:    r.FileName,
		Project:     r.Project,
		Fingerprint: r.Fingerprint,
		SizeBytes:   r.SizeBytes,
		Outcome:     r.Result.Outcome(),
		DurationMS:  r.DurationMS,
		ClientIP:    ClientIPFromContext(ctx),
		UserAgent:   UserAgentFromContext(ctx),
		CreatedAt:   r.StartedAt,
	}
	if r.Result.Structural != nil {
		s.StructuralKind = string(r.Result.Structural.Kind)
	}
	if rep := r.Result.Report; rep != nil {
		s.Encoding = rep.Encoding
		s.Rows = rep.RowCount
		s.Findings = len(rep.Findings)
		s.Warnings = len(rep.Warnings)
	}
	return s
}

// Service hosts the validation engine: it enforces intake limits, keeps run
// history, and records metrics. Safe for concurrent use.
type Service struct {
	engine      *validator.Engine
	limiter     *ValidationLimiter
	store       RunStore
	metrics     *Metrics
	maxFileSize int64
	timeout     time.Duration
	listLimit   int
}

// NewService wires a Service from configuration. A nil store falls back to
// an in-memory history.
func NewService(cfg *config.Config, store RunStore) *Service {
	if store == nil {
		store = NewMemoryRunStore(cfg.History.MemoryLimit)
	}

	limiter := NewValidationLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	metrics := NewMetrics()
	metrics.RegisterLimiter(limiter)

	return &Service{
		engine: validator.New(validator.Options{
			Workers:           cfg.Validation.Workers,
			ParallelThreshold: cfg.Validation.ParallelThreshold,
			ShardSize:         cfg.Validation.ShardSize,
		}),
		limiter:     limiter,
		store:       store,
		metrics:     metrics,
		maxFileSize: cfg.Upload.MaxFileSize.Bytes(),
		timeout:     cfg.Upload.Timeout,
		listLimit:   cfg.History.ListLimit,
	}
}

// Validate checks one file. Structural problems and findings are part of the
// returned Run; the error is reserved for requests that could not be
// validated at all.
func (s *Service) Validate(ctx context.Context, req Request) (*Run, error) {
	profile, err := s.checkRequest(req)
	if err != nil {
		s.metrics.ObserveRejected(MapError(err).Code)
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.ObserveRejected(MapError(err).Code)
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	run := &Run{
		ID:          uuid.New().String(),
		FileName:    req.FileName,
		Project:     profile.Name,
		Fingerprint: Fingerprint(req.Data),
		SizeBytes:   int64(len(req.Data)),
		StartedAt:   time.Now().UTC(),
	}
	logger := logging.WithFields(ctx,
		"run_id", run.ID,
		"project", run.Project,
		"file", run.FileName,
	)

	start := time.Now()
	res, err := s.engine.Validate(ctx, req.Data, profile.Name, req.Columns)
	run.Duration = time.Since(start)
	run.DurationMS = run.Duration.Milliseconds()
	if err != nil {
		logger.Warn("validation aborted", "error", err, "duration_ms", run.DurationMS)
		return nil, fmt.Errorf("validate %s: %w", run.FileName, err)
	}
	run.Result = res

	s.metrics.ObserveRun(run.Project, res, run.Duration)
	summary := run.Summary(ctx)
	logger.Info("validation finished",
		"outcome", summary.Outcome,
		"structural", summary.StructuralKind,
		"rows", summary.Rows,
		"findings", summary.Findings,
		"warnings", summary.Warnings,
		"size", humanize.Bytes(uint64(run.SizeBytes)),
		"fingerprint", run.Fingerprint,
		"duration_ms", run.DurationMS,
	)

	s.persist(ctx, summary)
	return run, nil
}

// checkRequest applies intake rules and resolves the project profile.
func (s *Service) checkRequest(req Request) (validator.Profile, error) {
	if strings.TrimSpace(req.Project) == "" {
		return validator.Profile{}, ErrNoProject
	}
	profile, ok := validator.LookupProfile(req.Project)
	if !ok {
		return validator.Profile{}, fmt.Errorf("%w: %q", ErrUnknownProject, req.Project)
	}
	if req.Data == nil {
		return validator.Profile{}, ErrNoFile
	}
	if len(req.Data) == 0 {
		return validator.Profile{}, ErrEmptyFile
	}
	if s.maxFileSize > 0 && int64(len(req.Data)) > s.maxFileSize {
		return validator.Profile{}, fmt.Errorf("%w: %s exceeds %s", ErrFileTooLarge,
			humanize.Bytes(uint64(len(req.Data))), humanize.Bytes(uint64(s.maxFileSize)))
	}
	return profile, nil
}

// persist saves the summary. Failures are logged and counted but never fail
// the validation the user is waiting on.
func (s *Service) persist(ctx context.Context, summary RunSummary) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.store.Save(saveCtx, summary); err != nil {
		s.metrics.ObservePersistFailure()
		logging.FromContext(ctx).Error("failed to save run history",
			"run_id", summary.ID,
			"error", err,
		)
	}
}

// RecentRuns lists history, newest first. The project name is normalized to
// its registered spelling.
func (s *Service) RecentRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error) {
	if filter.Project != "" {
		if p, ok := validator.LookupProfile(filter.Project); ok {
			filter.Project = p.Name
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = s.listLimit
	}
	return s.store.List(ctx, filter)
}

// GetRun returns one history entry.
func (s *Service) GetRun(ctx context.Context, id string) (RunSummary, error) {
	return s.store.Get(ctx, id)
}

// Profiles lists the destination projects files can be validated against.
func (s *Service) Profiles() []validator.Profile {
	return validator.Profiles()
}

// MaxFileSize is the largest accepted upload in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Metrics exposes the service collectors.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// LimiterStatus reports validation slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForValidations blocks until in-flight validations finish or ctx ends.
// Used during graceful shutdown.
func (s *Service) WaitForValidations(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
