package types

import (
	"errors"
	"fmt"
)

// JobMeta contains ingestion job identity and retry metadata. The task
// substrate owns scheduling and attempt counting; the pipeline only reads
// these values.
type JobMeta struct {
	// JobID is the task substrate's job identifier. Must be non-empty.
	JobID string
	// ModelID is the catalog model this job ingests into.
	ModelID string
	// Attempt is the attempt number. Starts at 1.
	Attempt int
	// MaxAttempts is the substrate's retry limit for this job.
	MaxAttempts int
}

// Validate checks attempt accounting invariants:
//   - job_id and model_id non-empty
//   - attempt >= 1
//   - max_attempts >= attempt
func (j *JobMeta) Validate() error {
	if j == nil {
		return errors.New("job metadata is required")
	}
	if j.JobID == "" {
		return errors.New("job_id must be non-empty")
	}
	if j.ModelID == "" {
		return errors.New("model_id must be non-empty")
	}
	if j.Attempt < 1 {
		return fmt.Errorf("attempt must be >= 1, got %d", j.Attempt)
	}
	if j.MaxAttempts < j.Attempt {
		return fmt.Errorf("max_attempts (%d) must be >= attempt (%d)", j.MaxAttempts, j.Attempt)
	}
	return nil
}

// FinalAttempt reports whether this is the last attempt the substrate
// will schedule. Gates error-status writes and temp cleanup: earlier
// attempts propagate failures without touching catalog state so the job
// can be retried against the preserved upload.
func (j *JobMeta) FinalAttempt() bool {
	return j.Attempt >= j.MaxAttempts
}
