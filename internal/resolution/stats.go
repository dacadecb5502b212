package resolution

import (
    "fmt"
    "time"
)

// maxRecordedIssues bounds the error and warning lists on a statistics
// object so a pathological batch cannot grow them without limit.  Counters
// keep incrementing past the bound.
const maxRecordedIssues = 200

// BuildStatistics aggregates the outcome of a build run.  Callers of
// ResolveBatch always receive a complete statistics object, even on
// partial failure; only a catastrophic store failure surfaces as an error.
type BuildStatistics struct {
    RunID            string    `json:"run_id"`
    OrdersProcessed  int       `json:"orders_processed"`
    Created          int       `json:"created"`
    Updated          int       `json:"updated"`
    SkippedOrders    int       `json:"skipped_orders"`
    ValidationErrors int       `json:"validation_errors"`
    PlayersProcessed int       `json:"players_processed"`
    Errors           []string  `json:"errors"`
    Warnings         []string  `json:"warnings"`
    StartTime        time.Time `json:"start_time"`
    EndTime          time.Time `json:"end_time"`

    errorsDropped   int
    warningsDropped int
}

// AddError records a human-readable error string, keeping the list bounded.
func (s *BuildStatistics) AddError(format string, args ...interface{}) {
    if len(s.Errors) >= maxRecordedIssues {
        s.errorsDropped++
        return
    }
    s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records a human-readable warning string, keeping the list bounded.
func (s *BuildStatistics) AddWarning(format string, args ...interface{}) {
    if len(s.Warnings) >= maxRecordedIssues {
        s.warningsDropped++
        return
    }
    s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// pageMark captures the counters and issue-list lengths at a page
// boundary.
type pageMark struct {
    ordersProcessed  int
    created          int
    updated          int
    skippedOrders    int
    validationErrors int
    playersProcessed int
    errors           int
    warnings         int
}

func (s *BuildStatistics) mark() pageMark {
    return pageMark{
        ordersProcessed:  s.OrdersProcessed,
        created:          s.Created,
        updated:          s.Updated,
        skippedOrders:    s.SkippedOrders,
        validationErrors: s.ValidationErrors,
        playersProcessed: s.PlayersProcessed,
        errors:           len(s.Errors),
        warnings:         len(s.Warnings),
    }
}

// rewind discards everything recorded since the mark, so a rolled-back
// page's increments never reach the reported statistics.
func (s *BuildStatistics) rewind(m pageMark) {
    s.OrdersProcessed = m.ordersProcessed
    s.Created = m.created
    s.Updated = m.updated
    s.SkippedOrders = m.skippedOrders
    s.ValidationErrors = m.validationErrors
    s.PlayersProcessed = m.playersProcessed
    s.Errors = s.Errors[:m.errors]
    s.Warnings = s.Warnings[:m.warnings]
}

// Finish stamps the end time and folds any dropped-issue counts into a
// final list entry so truncation is visible to the reader.
func (s *BuildStatistics) Finish() {
    s.EndTime = time.Now().UTC()
    if s.errorsDropped > 0 {
        s.Errors = append(s.Errors, fmt.Sprintf("... and %d more errors", s.errorsDropped))
    }
    if s.warningsDropped > 0 {
        s.Warnings = append(s.Warnings, fmt.Sprintf("... and %d more warnings", s.warningsDropped))
    }
}

// PreviewSummary is the dry-run counterpart of BuildStatistics: what a
// build would do, with no writes performed.
type PreviewSummary struct {
    OrdersExamined int       `json:"orders_examined"`
    Resolvable     int       `json:"resolvable_items"`
    SkippedItems   int       `json:"skipped_items"`
    WouldCreate    int       `json:"would_create"`
    WouldUpdate    int       `json:"would_update"`
    SkippedOrders  int       `json:"skipped_orders"`
    Warnings       []string  `json:"warnings"`
    GeneratedAt    time.Time `json:"generated_at"`
}

// IntegrityReport is the result of the read-only integrity pass.
// Mismatches are reported, never auto-repaired.
type IntegrityReport struct {
    EntriesChecked     int       `json:"entries_checked"`
    MissingOrders      []uint64  `json:"missing_orders"`
    MissingAttendees   []uint64  `json:"missing_attendees"`
    IdentityMismatches []string  `json:"identity_mismatches"`
    DateOverlaps       []string  `json:"date_overlaps"`
    CheckedAt          time.Time `json:"checked_at"`
}

// Clean reports whether the pass found nothing to flag.
func (r *IntegrityReport) Clean() bool {
    return len(r.MissingOrders) == 0 && len(r.MissingAttendees) == 0 &&
        len(r.IdentityMismatches) == 0 && len(r.DateOverlaps) == 0
}
