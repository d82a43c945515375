package notification

import (
	"maps"
	"slices"
	"time"
)

// BatchResult is the outcome report of one dispatch call. It is filled by the
// call that created it and read-only once returned.
type BatchResult struct {
	id        string
	total     int
	skipped   int
	cancelled bool
	duration  time.Duration
	succeeded []string
	failed    map[string]string
}

func newBatchResult(id string, total int) *BatchResult {
	return &BatchResult{
		id:     id,
		total:  total,
		failed: make(map[string]string),
	}
}

func (r *BatchResult) recordSuccess(address string) {
	r.succeeded = append(r.succeeded, address)
}

// recordFailure keeps the last failure reason per address.
func (r *BatchResult) recordFailure(address, reason string) {
	r.failed[address] = reason
}

// ID identifies the batch in logs.
func (r *BatchResult) ID() string { return r.id }

// Total is the length of the recipient list, nil entries included.
func (r *BatchResult) Total() int { return r.total }

// Skipped counts nil recipient entries.
func (r *BatchResult) Skipped() int { return r.skipped }

// Cancelled reports whether the batch stopped early on cancellation.
func (r *BatchResult) Cancelled() bool { return r.cancelled }

// Duration is the wall time spent inside the dispatch call.
func (r *BatchResult) Duration() time.Duration { return r.duration }

// SuccessfulEmails returns delivered addresses in send order.
func (r *BatchResult) SuccessfulEmails() []string { return slices.Clone(r.succeeded) }

// FailedEmails maps each failed address to its failure reason.
func (r *BatchResult) FailedEmails() map[string]string { return maps.Clone(r.failed) }

// SuccessCount is len(SuccessfulEmails()).
func (r *BatchResult) SuccessCount() int { return len(r.succeeded) }

// FailureCount is len(FailedEmails()).
func (r *BatchResult) FailureCount() int { return len(r.failed) }

// HasErrors reports whether any delivery failed.
func (r *BatchResult) HasErrors() bool { return len(r.failed) > 0 }
