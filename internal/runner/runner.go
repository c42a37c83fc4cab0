// Package runner drives background load-generation jobs against the external
// key-value tool. At most one job may run at a time; a second start request is
// rejected, never queued.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobKind identifies the kind of background job.
type JobKind int

const (
	JobNone JobKind = iota
	JobSeed
	JobGet
)

func (k JobKind) String() string {
	switch k {
	case JobSeed:
		return "seed"
	case JobGet:
		return "get"
	default:
		return "none"
	}
}

var (
	// ErrAlreadyRunning is returned when a start request arrives while a job
	// of any kind is active.
	ErrAlreadyRunning = errors.New("a load generation job is already running")
	// ErrNotRunning is returned by Stop when no job of the requested kind is
	// active.
	ErrNotRunning = errors.New("no job of this kind is running")
	// ErrInvalidCount is returned when the operation count is out of range.
	ErrInvalidCount = errors.New("invalid operation count")
	// ErrMissingKeys is returned when a get job is started without keys.
	ErrMissingKeys = errors.New("keys must be a non-empty list")
)

// Invoker issues a single key-value operation. Implementations must honor ctx
// cancellation and return once the operation completed or was killed.
type Invoker interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) error
}

const (
	// opTimeout bounds a single tool invocation. The subprocess is killed
	// when it is exceeded; the operation still counts as done.
	opTimeout = 30 * time.Second
	// opDelay is the fixed pause between consecutive operations.
	opDelay = 100 * time.Millisecond
	// seedKeySpace bounds the generated keys and values for seed jobs.
	seedKeySpace = 100000
)

// validGetCounts are the operation counts accepted for get jobs.
var validGetCounts = map[int]struct{}{100: {}, 500: {}, 1000: {}}

// Runner owns the single process-wide job state. It is created once at
// startup and shared by the HTTP handlers.
type Runner struct {
	invoker Invoker
	log     zerolog.Logger

	mu      sync.Mutex
	running bool
	kind    JobKind
	jobID   string
	cancel  context.CancelFunc
}

// New creates a Runner in the idle state.
func New(invoker Invoker, log zerolog.Logger) *Runner {
	return &Runner{invoker: invoker, log: log}
}

// StartSeeding launches a background job issuing count random SET operations.
func (r *Runner) StartSeeding(count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: count must be a positive integer, got %d", ErrInvalidCount, count)
	}
	ctx, jobID, err := r.begin(JobSeed)
	if err != nil {
		return err
	}
	go r.run(ctx, JobSeed, jobID, count, nil)
	return nil
}

// StartGetting launches a background job issuing count GET operations sampled
// uniformly from keys. count must be one of 100, 500 or 1000.
func (r *Runner) StartGetting(keys []string, count int) error {
	if len(keys) == 0 {
		return ErrMissingKeys
	}
	if _, ok := validGetCounts[count]; !ok {
		return fmt.Errorf("%w: count must be one of 100, 500 or 1000, got %d", ErrInvalidCount, count)
	}
	ctx, jobID, err := r.begin(JobGet)
	if err != nil {
		return err
	}
	sample := make([]string, len(keys))
	copy(sample, keys)
	go r.run(ctx, JobGet, jobID, count, sample)
	return nil
}

// Stop requests cancellation of the active job of the given kind. The loop
// checks the flag between operations, so an in-flight invocation finishes or
// times out before the state actually clears.
func (r *Runner) Stop(kind JobKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.kind != kind {
		return ErrNotRunning
	}
	r.log.Info().Str("job_id", r.jobID).Str("kind", kind.String()).Msg("stop requested")
	r.cancel()
	return nil
}

// Active reports whether a job of the given kind is currently running. It
// does not report progress counts.
func (r *Runner) Active(kind JobKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running && r.kind == kind
}

// begin transitions Idle -> Running(kind) or fails with ErrAlreadyRunning.
func (r *Runner) begin(kind JobKind) (context.Context, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, "", ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.running = true
	r.kind = kind
	r.jobID = uuid.NewString()
	r.cancel = cancel
	return ctx, r.jobID, nil
}

// finish resets the state to Idle on every loop exit path.
func (r *Runner) finish() {
	r.mu.Lock()
	cancel := r.cancel
	r.running = false
	r.kind = JobNone
	r.jobID = ""
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// run is the job loop. It executes outside the caller's request cycle and
// joins implicitly by its own completion.
func (r *Runner) run(ctx context.Context, kind JobKind, jobID string, count int, keys []string) {
	defer r.finish()

	log := r.log.With().Str("job_id", jobID).Str("kind", kind.String()).Logger()
	log.Info().Int("count", count).Msg("job started")

	completed := 0
	for completed < count {
		select {
		case <-ctx.Done():
			log.Info().Int("completed", completed).Msg("job cancelled")
			return
		default:
		}

		// The per-operation context is deliberately independent of the job
		// context: cancellation takes effect between operations, an
		// in-flight subprocess runs to exit or the timeout.
		opCtx, opCancel := context.WithTimeout(context.Background(), opTimeout)
		var err error
		switch kind {
		case JobSeed:
			key := fmt.Sprintf("key_%d", rand.Intn(seedKeySpace))
			value := fmt.Sprintf("value_%d", rand.Intn(seedKeySpace))
			err = r.invoker.Set(opCtx, key, value)
		case JobGet:
			err = r.invoker.Get(opCtx, keys[rand.Intn(len(keys))])
		}
		opCancel()

		// Failures and timeouts still count toward progress.
		completed++
		if err != nil {
			log.Warn().Err(err).Int("completed", completed).Msg("operation failed")
		} else {
			log.Debug().Int("completed", completed).Msg("operation done")
		}

		time.Sleep(opDelay)
	}

	log.Info().Int("completed", completed).Msg("job finished")
}
