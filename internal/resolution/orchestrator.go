package resolution

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/activekidz/roster-resolution/internal/model"
    "github.com/activekidz/roster-resolution/internal/signature"
)

// Options control how a single order is resolved.
type Options struct {
    // SkipAgeGender suppresses the age and gender checks, used when an
    // explicit manual assignment has already been approved.  Profile
    // completeness is still enforced.
    SkipAgeGender bool
    // SkipDuplicates switches the upsert to insert-only: existing rows
    // are left untouched instead of updated in place.
    SkipDuplicates bool
}

// BatchOptions control a full build run.
type BatchOptions struct {
    // ClearExisting removes all non-placeholder roster entries before
    // the run.
    ClearExisting bool
    // Statuses filters which orders the run considers (empty = all).
    Statuses []string
    // From/To bound the order placement date.
    From *time.Time
    To   *time.Time
    // BatchSize is the page size; 0 uses the orchestrator default.
    BatchSize int
    // Validate enforces the age/gender checks.  When false the run only
    // checks profile completeness.
    Validate bool
    // SkipDuplicates runs the upsert insert-only.
    SkipDuplicates bool
}

func (o BatchOptions) itemOptions() Options {
    return Options{SkipAgeGender: !o.Validate, SkipDuplicates: o.SkipDuplicates}
}

// Orchestrator drives the roster resolution pipeline: for every order and
// line item it extracts the event descriptor, computes the signature,
// resolves attendees, validates them and upserts roster entries.  Failures
// are isolated per item, per order and per batch page, so one bad record
// never aborts the run.  Single-threaded by design; the per-run matcher
// cache is not safe for concurrent use.
type Orchestrator struct {
    orders    OrderSource
    catalog   CatalogSource
    players   PlayerSource
    roster    RosterStore
    extractor *Extractor
    matcher   *Matcher
    signer    *signature.Generator
    batchSize int
}

// DefaultBatchSize pages batch runs when the options do not say otherwise.
const DefaultBatchSize = 50

// NewOrchestrator wires the pipeline.  All collaborators are required.
func NewOrchestrator(orders OrderSource, catalog CatalogSource, players PlayerSource, roster RosterStore,
    extractor *Extractor, matcher *Matcher, signer *signature.Generator) *Orchestrator {
    if orders == nil || catalog == nil || players == nil || roster == nil {
        panic("nil collaborator passed to NewOrchestrator")
    }
    return &Orchestrator{
        orders:    orders,
        catalog:   catalog,
        players:   players,
        roster:    roster,
        extractor: extractor,
        matcher:   matcher,
        signer:    signer,
        batchSize: DefaultBatchSize,
    }
}

// Matcher exposes the attendee matcher so callers can invalidate its
// per-run cache after a manual re-assignment.
func (o *Orchestrator) Matcher() *Matcher { return o.matcher }

// ResolveOrder resolves a single order and returns the roster entries now
// persisted for it.  Order-level failures (missing customer identity)
// return an OrderError; item-level failures are recorded in the returned
// statistics embedded in the entries' absence rather than raised.
func (o *Orchestrator) ResolveOrder(ctx context.Context, orderID uint64, opts Options) ([]model.RosterEntry, error) {
    order, err := o.orders.OrderByID(ctx, orderID)
    if err != nil {
        if errors.Is(err, ErrOrderNotFound) {
            return nil, &OrderError{OrderID: orderID, Reason: "order not found"}
        }
        return nil, err
    }
    o.matcher.Reset()
    stats := newStatistics()
    entries := o.processOrder(ctx, o.roster, *order, opts, stats)
    stats.Finish()
    if stats.SkippedOrders > 0 {
        return nil, &OrderError{OrderID: orderID, Reason: firstOr(stats.Errors, "order skipped")}
    }
    return entries, nil
}

// ResolveBatch processes all orders matching the options in fixed-size
// pages, each page inside one roster-store transaction.  A failed page is
// recorded and the run continues with the next page.  The returned
// statistics are always complete; only a failure to read the order pages
// themselves propagates as an error.
func (o *Orchestrator) ResolveBatch(ctx context.Context, opts BatchOptions) (*BuildStatistics, error) {
    stats := newStatistics()
    defer stats.Finish()

    if opts.ClearExisting {
        if _, err := o.roster.DeleteWhere(ctx, RosterFilter{}); err != nil {
            return stats, err
        }
    }
    o.matcher.Reset()

    size := opts.BatchSize
    if size <= 0 {
        size = o.batchSize
    }
    filter := OrderFilter{Statuses: opts.Statuses, From: opts.From, To: opts.To, Limit: size}
    itemOpts := opts.itemOptions()

    for page := 0; ; page++ {
        filter.Offset = page * size
        orders, err := o.orders.OrdersPage(ctx, filter)
        if err != nil {
            // The order store being unreachable is catastrophic, not a
            // page failure.
            return stats, err
        }
        if len(orders) == 0 {
            break
        }
        mark := stats.mark()
        err = o.roster.RunInTransaction(ctx, func(tx RosterStore) error {
            for _, order := range orders {
                o.processOrder(ctx, tx, order, itemOpts, stats)
            }
            return nil
        })
        if err != nil {
            // The page rolled back, so its increments report work that
            // was never persisted.
            stats.rewind(mark)
            stats.AddError("page %d failed: %v", page, err)
        }
        // Progress checkpoint; observability only.
        log.Printf("roster-build %s: page %d done (orders=%d created=%d updated=%d errors=%d)",
            stats.RunID, page, stats.OrdersProcessed, stats.Created, stats.Updated, len(stats.Errors))
        if len(orders) < size {
            break
        }
    }
    return stats, nil
}

// RebuildOrders re-resolves the given orders inside a single transaction.
// Unknown order IDs are recorded and skipped.
func (o *Orchestrator) RebuildOrders(ctx context.Context, orderIDs []uint64, opts Options) (*BuildStatistics, error) {
    stats := newStatistics()
    defer stats.Finish()
    o.matcher.Reset()

    err := o.roster.RunInTransaction(ctx, func(tx RosterStore) error {
        for _, id := range orderIDs {
            order, err := o.orders.OrderByID(ctx, id)
            if err != nil {
                if errors.Is(err, ErrOrderNotFound) {
                    stats.SkippedOrders++
                    stats.AddError("order %d: not found", id)
                    continue
                }
                return err
            }
            o.processOrder(ctx, tx, *order, opts, stats)
        }
        return nil
    })
    if err != nil {
        stats.AddError("rebuild failed: %v", err)
        return stats, err
    }
    return stats, nil
}

// processOrder runs the per-order state machine: resolve the household,
// then extract, sign, match, validate and upsert each line item.  Item
// failures are recorded and the loop continues; an order missing its
// household identity is skipped whole with no partial entries.  Returns
// the entries upserted for the order.
func (o *Orchestrator) processOrder(ctx context.Context, store RosterStore, order model.Order, opts Options, stats *BuildStatistics) []model.RosterEntry {
    household, err := o.players.HouseholdAttendees(ctx, order.CustomerID)
    if err != nil {
        stats.SkippedOrders++
        stats.AddError("order %d: household %d unresolvable: %v", order.ID, order.CustomerID, err)
        return nil
    }
    if len(household) == 0 {
        stats.SkippedOrders++
        stats.AddError("order %d: household %d has no attendee profiles", order.ID, order.CustomerID)
        return nil
    }

    var entries []model.RosterEntry
    touched := make(map[uint64]struct{})
    for _, item := range order.Items {
        itemEntries, err := o.processItem(ctx, store, order, item, household, opts, stats)
        if err != nil {
            // Item terminal state skipped/failed; reason already typed.
            switch err.(type) {
            case *ExtractionError, *MatchError:
                stats.AddWarning("%v", err)
            default:
                stats.AddError("%v", err)
            }
            continue
        }
        for _, e := range itemEntries {
            touched[e.AttendeeID] = struct{}{}
        }
        entries = append(entries, itemEntries...)
    }
    stats.OrdersProcessed++
    stats.PlayersProcessed += len(touched)
    return entries
}

// processItem resolves one line item to zero or more roster entries.
func (o *Orchestrator) processItem(ctx context.Context, store RosterStore, order model.Order, item model.OrderItem,
    household []model.AttendeeProfile, opts Options, stats *BuildStatistics) ([]model.RosterEntry, error) {

    entry, err := o.catalog.EntryByID(ctx, item.CatalogEntryID)
    if err != nil {
        return nil, &ExtractionError{ItemID: item.ID, Field: "catalog_entry", Reason: err.Error()}
    }
    var variant *model.Variant
    if item.VariantID != nil {
        variant, err = o.catalog.VariantByID(ctx, *item.VariantID)
        if err != nil && !errors.Is(err, ErrVariantNotFound) {
            return nil, &ExtractionError{ItemID: item.ID, Field: "variant", Reason: err.Error()}
        }
    }

    desc, err := o.extractor.Extract(item, entry, variant)
    if err != nil {
        return nil, err
    }
    sig := o.signer.Generate(desc)
    if sig == "" {
        return nil, &ExtractionError{ItemID: item.ID, Field: "signature", Reason: "descriptor is unsignable"}
    }

    outcome, err := o.matcher.Match(item, household, desc, opts.SkipAgeGender)
    if err != nil {
        return nil, err
    }
    stats.ValidationErrors += len(outcome.Dropped)
    for _, reason := range outcome.Dropped {
        stats.AddWarning("order %d item %d: %s", order.ID, item.ID, reason)
    }
    if len(outcome.Eligible) == 0 {
        // All matched attendees failed validation: the item yields zero
        // entries with a warning, not an error.
        stats.AddWarning("order %d item %d: no eligible attendee remained", order.ID, item.ID)
        return nil, nil
    }

    var entries []model.RosterEntry
    for _, attendee := range outcome.Eligible {
        rosterEntry, err := o.upsert(ctx, store, order, item, attendee, desc, sig, opts, stats)
        if err != nil {
            // A failed upsert aborts this item; the order continues.
            return entries, &PersistenceError{ItemID: item.ID, Err: err}
        }
        if rosterEntry != nil {
            entries = append(entries, *rosterEntry)
        }
    }
    return entries, nil
}

// upsert writes one roster entry keyed on (order, item, attendee slot):
// update in place when the key exists, insert otherwise.  In duplicate-
// skip mode an existing row is left untouched.  A fresh insert supersedes
// any placeholder carrying the same event signature.
func (o *Orchestrator) upsert(ctx context.Context, store RosterStore, order model.Order, item model.OrderItem,
    attendee model.AttendeeProfile, desc model.EventDescriptor, sig string, opts Options, stats *BuildStatistics) (*model.RosterEntry, error) {

    existing, err := store.FindByKey(ctx, order.ID, item.ID, attendee.Slot)
    if err != nil {
        return nil, err
    }
    if existing != nil {
        if opts.SkipDuplicates {
            return existing, nil
        }
        applyResolution(existing, attendee, desc, sig)
        if err := store.Update(ctx, existing); err != nil {
            return nil, err
        }
        stats.Updated++
        return existing, nil
    }

    e := &model.RosterEntry{
        OrderID:      order.ID,
        OrderItemID:  item.ID,
        AttendeeSlot: attendee.Slot,
    }
    applyResolution(e, attendee, desc, sig)
    if err := store.Insert(ctx, e); err != nil {
        return nil, err
    }
    stats.Created++
    // A real booking with this signature makes its placeholder obsolete.
    if n, err := store.DeleteWhere(ctx, RosterFilter{EventSignature: &sig, PlaceholderOnly: true}); err == nil && n > 0 {
        stats.AddWarning("superseded %d placeholder entries for signature %s", n, sig[:12])
    }
    return e, nil
}

// applyResolution overwrites the mutable fields of a roster entry with the
// outcome of the current resolution.
func applyResolution(e *model.RosterEntry, attendee model.AttendeeProfile, desc model.EventDescriptor, sig string) {
    e.AttendeeID = attendee.ID
    e.FirstName = attendee.FirstName
    e.LastName = attendee.LastName
    e.DateOfBirth = attendee.DateOfBirth
    e.EventSignature = sig
    e.EventKind = desc.Kind
    e.Venue = desc.Venue
    e.AgeGroup = desc.AgeGroup
    e.Season = desc.Season
    e.EventStart = desc.StartsAt
    e.EventEnd = desc.EndsAt
    e.Placeholder = false
}

// Preview reports what a batch run would do without performing any writes.
func (o *Orchestrator) Preview(ctx context.Context, opts BatchOptions) (*PreviewSummary, error) {
    sum := &PreviewSummary{Warnings: []string{}, GeneratedAt: time.Now().UTC()}
    o.matcher.Reset()
    size := opts.BatchSize
    if size <= 0 {
        size = o.batchSize
    }
    filter := OrderFilter{Statuses: opts.Statuses, From: opts.From, To: opts.To, Limit: size}
    itemOpts := opts.itemOptions()

    for page := 0; ; page++ {
        filter.Offset = page * size
        orders, err := o.orders.OrdersPage(ctx, filter)
        if err != nil {
            return nil, err
        }
        if len(orders) == 0 {
            break
        }
        for _, order := range orders {
            o.previewOrder(ctx, order, itemOpts, sum)
        }
        if len(orders) < size {
            break
        }
    }
    return sum, nil
}

func (o *Orchestrator) previewOrder(ctx context.Context, order model.Order, opts Options, sum *PreviewSummary) {
    household, err := o.players.HouseholdAttendees(ctx, order.CustomerID)
    if err != nil || len(household) == 0 {
        sum.SkippedOrders++
        sum.Warnings = append(sum.Warnings,
            fmt.Sprintf("order %d: household %d unresolvable", order.ID, order.CustomerID))
        return
    }
    sum.OrdersExamined++
    for _, item := range order.Items {
        entry, err := o.catalog.EntryByID(ctx, item.CatalogEntryID)
        if err != nil {
            previewSkip(sum, order.ID, item.ID, fmt.Sprintf("catalog entry %d: %v", item.CatalogEntryID, err))
            continue
        }
        var variant *model.Variant
        if item.VariantID != nil {
            variant, _ = o.catalog.VariantByID(ctx, *item.VariantID)
        }
        desc, err := o.extractor.Extract(item, entry, variant)
        if err != nil {
            previewSkip(sum, order.ID, item.ID, err.Error())
            continue
        }
        sig := o.signer.Generate(desc)
        if sig == "" {
            previewSkip(sum, order.ID, item.ID, "descriptor is unsignable")
            continue
        }
        outcome, err := o.matcher.Match(item, household, desc, opts.SkipAgeGender)
        if err != nil {
            previewSkip(sum, order.ID, item.ID, err.Error())
            continue
        }
        if len(outcome.Eligible) == 0 {
            previewSkip(sum, order.ID, item.ID, "no eligible attendee remained")
            continue
        }
        sum.Resolvable++
        for _, attendee := range outcome.Eligible {
            existing, err := o.roster.FindByKey(ctx, order.ID, item.ID, attendee.Slot)
            if err != nil {
                continue
            }
            if existing != nil {
                sum.WouldUpdate++
            } else {
                sum.WouldCreate++
            }
        }
    }
}

// SeedPlaceholders creates one synthetic roster entry per variant of the
// given catalog entry, so the event stays visible in listings before any
// booking exists.  Placeholders key on (order 0, variant ID, slot -1) and
// are removed when a real booking produces the same signature.
func (o *Orchestrator) SeedPlaceholders(ctx context.Context, catalogEntryID uint64) (int, error) {
    entry, err := o.catalog.EntryByID(ctx, catalogEntryID)
    if err != nil {
        return 0, err
    }
    seeded := 0
    for i := range entry.Variants {
        variant := entry.Variants[i]
        desc, err := o.extractor.Extract(model.OrderItem{CatalogEntryID: entry.ID}, entry, &variant)
        if err != nil {
            continue
        }
        sig := o.signer.Generate(desc)
        if sig == "" {
            continue
        }
        existing, err := o.roster.FindByKey(ctx, 0, variant.ID, placeholderSlot)
        if err != nil {
            return seeded, err
        }
        if existing != nil {
            continue
        }
        e := &model.RosterEntry{
            OrderItemID:    variant.ID,
            AttendeeSlot:   placeholderSlot,
            EventSignature: sig,
            EventKind:      desc.Kind,
            Venue:          desc.Venue,
            AgeGroup:       desc.AgeGroup,
            Season:         desc.Season,
            EventStart:     desc.StartsAt,
            EventEnd:       desc.EndsAt,
            Placeholder:    true,
        }
        if err := o.roster.Insert(ctx, e); err != nil {
            return seeded, err
        }
        seeded++
    }
    return seeded, nil
}

// placeholderSlot keeps placeholder keys out of the real attendee-slot
// space, which starts at 0.
const placeholderSlot = -1

func newStatistics() *BuildStatistics {
    return &BuildStatistics{
        RunID:     uuid.NewString(),
        Errors:    []string{},
        Warnings:  []string{},
        StartTime: time.Now().UTC(),
    }
}

func previewSkip(sum *PreviewSummary, orderID, itemID uint64, reason string) {
    sum.SkippedItems++
    sum.Warnings = append(sum.Warnings, fmt.Sprintf("order %d item %d: %s", orderID, itemID, reason))
}

func firstOr(list []string, def string) string {
    if len(list) > 0 {
        return list[0]
    }
    return def
}
