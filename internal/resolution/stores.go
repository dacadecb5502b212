package resolution

import (
    "context"
    "errors"
    "time"

    "github.com/activekidz/roster-resolution/internal/model"
)

// Not-found sentinels returned by collaborator implementations.  They let
// the orchestrator distinguish "referent gone" (an integrity finding or an
// order failure) from a store breakage that must propagate.
var (
    ErrOrderNotFound     = errors.New("order not found")
    ErrEntryNotFound     = errors.New("catalog entry not found")
    ErrVariantNotFound   = errors.New("variant not found")
    ErrHouseholdNotFound = errors.New("household not found")
    ErrAttendeeNotFound  = errors.New("attendee not found")
)

// Collaborator interfaces consumed by the pipeline.  The MySQL
// repositories implement them in production; orchestrator tests use
// in-memory fakes.  All reads are synchronous; the only write path
// outside the roster store is the assigned-attendee annotation.

// OrderFilter selects orders for a batch run.
type OrderFilter struct {
    Statuses []string
    From     *time.Time
    To       *time.Time
    Offset   int
    Limit    int
}

// OrderSource yields orders and their line items from the order store.
type OrderSource interface {
    // OrderByID loads one order with its items, or ErrOrderNotFound.
    OrderByID(ctx context.Context, id uint64) (*model.Order, error)
    // OrdersPage returns one page of orders matching the filter, items
    // included, ordered by ID.
    OrdersPage(ctx context.Context, f OrderFilter) ([]model.Order, error)
    // SetAssignedAttendee writes the assigned-attendee annotation back
    // onto a line item.  This is the pipeline's only order-store write.
    SetAssignedAttendee(ctx context.Context, itemID uint64, name string) error
}

// CatalogSource yields catalog entries and purchasable variants.
type CatalogSource interface {
    // EntryByID loads a catalog entry with its attribute bag and variants.
    EntryByID(ctx context.Context, id uint64) (*model.CatalogEntry, error)
    // VariantByID loads a single variant with its attribute bag.
    VariantByID(ctx context.Context, id uint64) (*model.Variant, error)
}

// PlayerSource yields the ordered attendee list of a household.
type PlayerSource interface {
    // HouseholdAttendees returns the household's attendee profiles in
    // slot order.  An empty slice means the household has no children
    // on file; an error means the household itself is unresolvable.
    HouseholdAttendees(ctx context.Context, householdID uint64) ([]model.AttendeeProfile, error)
    // AttendeeByID loads a single profile, or ErrAttendeeNotFound.
    AttendeeByID(ctx context.Context, id uint64) (*model.AttendeeProfile, error)
}

// RosterFilter selects roster entries for deletion.
type RosterFilter struct {
    OrderID         *uint64
    OrderItemID     *uint64
    EventSignature  *string
    PlaceholderOnly bool
    IDs             []uint64
}

// RosterStore is the persistence collaborator for roster entries.  The
// pipeline treats it as a simple keyed table and relies on the store's
// single-row upsert atomicity; it does not prescribe the backing engine.
type RosterStore interface {
    // FindByKey returns the entry for the unique
    // (order_id, order_item_id, attendee_slot) key, or nil when absent.
    FindByKey(ctx context.Context, orderID, itemID uint64, slot int) (*model.RosterEntry, error)
    // Insert creates a new entry and populates its ID.
    Insert(ctx context.Context, e *model.RosterEntry) error
    // Update overwrites the mutable fields of an existing entry.
    Update(ctx context.Context, e *model.RosterEntry) error
    // DeleteWhere removes entries matching the filter and reports how
    // many rows were removed.
    DeleteWhere(ctx context.Context, f RosterFilter) (int64, error)
    // All returns every persisted entry, placeholders included.
    All(ctx context.Context) ([]model.RosterEntry, error)
    // RunInTransaction executes fn against a transaction-scoped store.
    // A non-nil error from fn rolls the transaction back.
    RunInTransaction(ctx context.Context, fn func(RosterStore) error) error
}
