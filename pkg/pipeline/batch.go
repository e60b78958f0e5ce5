package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// Job is one diagram file in a batch.
type Job struct {
	Path    string
	Diagram *diagram.Diagram
}

// JobResult pairs a job with its outcome. Err is per job; one bad file
// does not stop the batch.
type JobResult struct {
	Job
	Result *Result
	Err    error
}

// ExpandPaths turns files and directories into a sorted list of diagram
// files. Directories contribute their *.json, *.yaml and *.yml entries.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", p)
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml":
				out = append(out, filepath.Join(p, e.Name()))
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// LoadJobs reads every path into a job.
func LoadJobs(paths []string) ([]Job, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		d, err := diagram.ReadDiagramFile(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		jobs = append(jobs, Job{Path: f, Diagram: d})
	}
	return jobs, nil
}

// RunBatch executes jobs concurrently, at most GOMAXPROCS at a time.
// Results come back in job order. The returned error is only set when ctx
// is cancelled.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, opts Options) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, job.Diagram, opts)
			results[i] = JobResult{Job: job, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
