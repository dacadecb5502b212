// Package resolution turns purchase records into per-attendee roster
// entries.  It contains the descriptor extractor, the attendee matcher,
// the eligibility validator and the build orchestrator; event identity
// hashing lives in the signature package.
package resolution

import "fmt"

// The pipeline's failure taxonomy.  Failures are caught at the smallest
// enclosing unit (line item, then order, then batch page), converted into
// a recorded reason plus a statistics counter, and never re-raised past
// the batch boundary.

// ExtractionError reports that a required event attribute could not be
// extracted for a line item.  The item is skipped with the reason recorded.
type ExtractionError struct {
    ItemID uint64
    Field  string
    Reason string
}

func (e *ExtractionError) Error() string {
    return fmt.Sprintf("item %d: cannot extract %s: %s", e.ItemID, e.Field, e.Reason)
}

// MatchError reports that no attendee could be resolved for a line item
// above the confidence floor.  The item is skipped with the reason recorded.
type MatchError struct {
    ItemID uint64
    Reason string
}

func (e *MatchError) Error() string {
    return fmt.Sprintf("item %d: no attendee match: %s", e.ItemID, e.Reason)
}

// EligibilityError reports why one attendee was dropped from a match
// result.  It is not fatal to the item while other attendees survive.
type EligibilityError struct {
    AttendeeID uint64
    Reason     string
}

func (e *EligibilityError) Error() string {
    return fmt.Sprintf("attendee %d ineligible: %s", e.AttendeeID, e.Reason)
}

// PersistenceError reports a failed roster upsert.  The item is aborted
// with the reason recorded; the rest of the order continues.
type PersistenceError struct {
    ItemID uint64
    Err    error
}

func (e *PersistenceError) Error() string {
    return fmt.Sprintf("item %d: roster upsert failed: %v", e.ItemID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// OrderError reports that an order is missing required identity (customer
// or household unresolvable).  The order is aborted; the batch continues.
type OrderError struct {
    OrderID uint64
    Reason  string
}

func (e *OrderError) Error() string {
    return fmt.Sprintf("order %d: %s", e.OrderID, e.Reason)
}
