// Package report accumulates the result of one reconciliation run.
package report

import (
	"fmt"
	"time"

	"memberlink/internal/identity/models"
)

// DeadlineExceeded is the skip reason of emails the run had no time left for.
const DeadlineExceeded = "run deadline exceeded"

// Report is the result of one run. It is built fresh per run and never stored.
type Report struct {
	RunID     string
	DryRun    bool
	Truncated bool

	TotalMembers  int
	TotalAccounts int

	// Counts holds the classification of every email; it does not depend on DryRun.
	Counts map[models.Outcome]int
	// Applied lists, per outcome, the emails whose change was carried out
	// (or, in a dry run, would have been).
	Applied map[models.Outcome][]string
	Errors  []models.ItemError
	Skipped []string

	StartedAt  time.Time
	FinishedAt time.Time
}

// AppliedCount returns how many emails of an outcome were applied.
func (r *Report) AppliedCount(o models.Outcome) int {
	return len(r.Applied[o])
}

// Duration of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Builder collects counts and ordered errors while a run executes.
// It is not safe for concurrent use; the per-email loop is sequential.
type Builder struct {
	r     *Report
	clock func() time.Time
}

func NewBuilder(runID string, dryRun bool, clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}
	r := &Report{
		RunID:     runID,
		DryRun:    dryRun,
		Counts:    make(map[models.Outcome]int, len(models.Outcomes)),
		Applied:   make(map[models.Outcome][]string, len(models.Outcomes)),
		Errors:    []models.ItemError{},
		Skipped:   []string{},
		StartedAt: clock(),
	}
	for _, o := range models.Outcomes {
		r.Counts[o] = 0
		r.Applied[o] = []string{}
	}
	return &Builder{r: r, clock: clock}
}

// Totals records the sizes of both snapshots.
func (b *Builder) Totals(members, accounts int) {
	b.r.TotalMembers = members
	b.r.TotalAccounts = accounts
}

// Classified counts one email under its outcome.
func (b *Builder) Classified(o models.Outcome) {
	b.r.Counts[o]++
}

// Applied records a carried-out change.
func (b *Builder) Applied(o models.Outcome, email string) {
	b.r.Applied[o] = append(b.r.Applied[o], email)
}

// Fail records a per-item failure. The run goes on.
func (b *Builder) Fail(email string, err error) {
	b.r.Errors = append(b.r.Errors, models.ItemError{Email: email, Message: err.Error()})
}

// Failf records a per-item failure with a formatted message.
func (b *Builder) Failf(email, format string, args ...any) {
	b.r.Errors = append(b.r.Errors, models.ItemError{Email: email, Message: fmt.Sprintf(format, args...)})
}

// Skip records a reason an email was not processed.
func (b *Builder) Skip(reasons ...string) {
	b.r.Skipped = append(b.r.Skipped, reasons...)
}

// Truncate marks the run as cut short and lists the emails left over.
func (b *Builder) Truncate(emails []string) {
	b.r.Truncated = true
	for _, e := range emails {
		b.r.Skipped = append(b.r.Skipped, fmt.Sprintf("%s: %s", e, DeadlineExceeded))
	}
}

// Build finalizes the report. The builder must not be used afterwards.
func (b *Builder) Build() *Report {
	b.r.FinishedAt = b.clock()
	return b.r
}
