package lifecycle

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
)

// SkipReason explains why a unit of work was dropped.
type SkipReason string

const (
	// SkipFetchFailed means the authority did not answer or answered with
	// an error.
	SkipFetchFailed SkipReason = "fetch failed"
	// SkipEmptyPayload means the authority returned nothing.
	SkipEmptyPayload SkipReason = "empty payload"
	// SkipMalformedPayload means the payload stopped being readable.
	// Records read before the problem are kept.
	SkipMalformedPayload SkipReason = "malformed payload"
	// SkipMalformedRecord means one record of a payload was unusable.
	SkipMalformedRecord SkipReason = "malformed record"
	// SkipInsertConflict means a batch insert failed and was rolled back.
	SkipInsertConflict SkipReason = "insert conflict"
	// SkipUpdateFailed means a batch of updates failed.
	SkipUpdateFailed SkipReason = "update failed"
	// SkipNotFound means a taxid was not returned by the authority.
	SkipNotFound SkipReason = "not found"
)

// Result is an outcome of one unit of work. A unit is either done
// (Skip is empty) or dropped for a reason, with an optional error.
type Result[T any] struct {
	Value T
	Skip  SkipReason
	Err   error
}

// Done creates a successful Result.
func Done[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Skipped creates a Result of a dropped unit.
func Skipped[T any](reason SkipReason, err error) Result[T] {
	return Result[T]{Skip: reason, Err: err}
}

// OK is true if the unit was not dropped.
func (r Result[T]) OK() bool {
	return r.Skip == ""
}

// Summary describes one run of a job.
type Summary struct {
	// Job is the name of the job.
	Job string
	// RunID identifies the run in logs and metrics.
	RunID string
	// Resolved counts units that were processed successfully.
	Resolved int
	// Inserted counts records that were created.
	Inserted int
	// Skipped counts units dropped by best-effort policy.
	Skipped int
	// Failed counts batches that could not be written.
	Failed int
	// Updated counts records that were changed.
	Updated int
	// Deleted counts records that were removed.
	Deleted int
	// Conflicts counts taxa with more than one parent.
	Conflicts int
	// Reasons breaks Skipped and Failed down by reason.
	Reasons  map[SkipReason]int
	Duration time.Duration
}

// NewSummary creates an empty Summary for a job.
func NewSummary(job string) Summary {
	return Summary{Job: job, Reasons: make(map[SkipReason]int)}
}

// Skip registers n dropped units.
func (s *Summary) Skip(reason SkipReason, n int) {
	if n <= 0 {
		return
	}
	if s.Reasons == nil {
		s.Reasons = make(map[SkipReason]int)
	}
	s.Skipped += n
	s.Reasons[reason] += n
}

// Fail registers n failed batches.
func (s *Summary) Fail(reason SkipReason, n int) {
	if n <= 0 {
		return
	}
	if s.Reasons == nil {
		s.Reasons = make(map[SkipReason]int)
	}
	s.Failed += n
	s.Reasons[reason] += n
}

// Add records the outcome of one unit.
func Add[T any](s *Summary, r Result[T]) {
	if r.OK() {
		s.Resolved++
		return
	}
	s.Skip(r.Skip, 1)
}

// Merge adds counters of another summary. Job, RunID and Duration are
// kept.
func (s *Summary) Merge(o Summary) {
	s.Resolved += o.Resolved
	s.Inserted += o.Inserted
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Updated += o.Updated
	s.Deleted += o.Deleted
	s.Conflicts += o.Conflicts
	if len(o.Reasons) > 0 && s.Reasons == nil {
		s.Reasons = make(map[SkipReason]int)
	}
	for k, v := range o.Reasons {
		s.Reasons[k] += v
	}
}

// String returns a one-line human readable description.
func (s Summary) String() string {
	res := fmt.Sprintf(
		"%s: resolved %s, inserted %s, updated %s, deleted %s, skipped %s, failed %s",
		s.Job,
		humanize.Comma(int64(s.Resolved)),
		humanize.Comma(int64(s.Inserted)),
		humanize.Comma(int64(s.Updated)),
		humanize.Comma(int64(s.Deleted)),
		humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.Failed)),
	)
	if s.Conflicts > 0 {
		res += fmt.Sprintf(", conflicts %s", humanize.Comma(int64(s.Conflicts)))
	}
	if len(s.Reasons) > 0 {
		var rs []string
		for _, k := range slices.Sorted(maps.Keys(s.Reasons)) {
			rs = append(rs, fmt.Sprintf("%s: %d", k, s.Reasons[k]))
		}
		res += " (" + strings.Join(rs, ", ") + ")"
	}
	if s.Duration > 0 {
		res += ", took " + gnfmt.TimeString(s.Duration.Seconds())
	}
	return res
}
