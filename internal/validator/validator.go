package validator

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Defaults for Options fields left at zero.
const (
	DefaultParallelThreshold = 5000
	DefaultShardSize         = 2000
)

// Options tunes how the semantic pass is executed. Results never depend on
// these values.
type Options struct {
	// Workers caps concurrent shards. 0 means runtime.GOMAXPROCS(0); 1 forces
	// a sequential pass.
	Workers int

	// ParallelThreshold is the row count at which sharding starts.
	ParallelThreshold int

	// ShardSize is the number of rows per shard.
	ShardSize int
}

// Engine validates files. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	opts Options
}

// New creates an Engine, filling zero Options with defaults.
func New(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	if opts.ShardSize <= 0 {
		opts.ShardSize = DefaultShardSize
	}
	return &Engine{opts: opts}
}

var defaultEngine = New(Options{})

// Validate runs the default engine. See Engine.Validate.
func Validate(ctx context.Context, data []byte, project string, cfg ColumnConfig) (Result, error) {
	return defaultEngine.Validate(ctx, data, project, cfg)
}

// Validate checks data for the named project.
//
// Structural problems are returned in Result.Structural, never as an error.
// The error is non-nil only for an unknown project or when ctx ends before
// the semantic pass completes; no partial report is returned then.
func (e *Engine) Validate(ctx context.Context, data []byte, project string, cfg ColumnConfig) (Result, error) {
	profile, ok := LookupProfile(project)
	if !ok {
		return Result{}, fmt.Errorf("unknown project: %q", project)
	}

	doc, serr := Decode(data)
	if serr != nil {
		return Result{Structural: serr}, nil
	}

	header, warnings, serr := CheckStructure(doc, profile)
	if serr != nil {
		return Result{Structural: serr}, nil
	}

	table, serr := Materialize(doc, header)
	if serr != nil {
		return Result{Structural: serr}, nil
	}

	policies := ResolvePolicies(header, profile, cfg)

	findings, err := e.checkTable(ctx, table, policies)
	if err != nil {
		return Result{}, err
	}

	if warnings == nil {
		warnings = []Warning{}
	}
	if findings == nil {
		findings = []Finding{}
	}
	return Result{Report: &Report{
		Encoding: doc.Encoding,
		Header:   header,
		RowCount: len(table.Rows),
		Warnings: warnings,
		Findings: findings,
	}}, nil
}

// checkTable runs the semantic pass, sharding rows across goroutines for
// large tables. Output is sorted so it is identical either way.
func (e *Engine) checkTable(ctx context.Context, table *Table, policies []ColumnPolicy) ([]Finding, error) {
	rows := table.Rows
	if e.opts.Workers <= 1 || len(rows) < e.opts.ParallelThreshold {
		findings, err := CheckRows(ctx, rows, policies)
		if err != nil {
			return nil, err
		}
		SortFindings(findings)
		return findings, nil
	}

	shards := (len(rows) + e.opts.ShardSize - 1) / e.opts.ShardSize
	results := make([][]Finding, shards)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := 0; i < shards; i++ {
		start := i * e.opts.ShardSize
		end := min(start+e.opts.ShardSize, len(rows))
		g.Go(func() error {
			found, err := CheckRows(gctx, rows[start:end], policies)
			if err != nil {
				return err
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	SortFindings(findings)
	return findings, nil
}
