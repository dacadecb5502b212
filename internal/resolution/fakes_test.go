package resolution

// In-memory fakes of the pipeline's collaborator interfaces, shared by the
// orchestrator and integrity tests.

import (
    "context"
    "sort"
    "time"

    "github.com/activekidz/roster-resolution/internal/model"
)

type fakeOrders struct {
    orders   map[uint64]*model.Order
    assigned map[uint64]string
}

func newFakeOrders() *fakeOrders {
    return &fakeOrders{orders: make(map[uint64]*model.Order), assigned: make(map[uint64]string)}
}

func (f *fakeOrders) OrderByID(_ context.Context, id uint64) (*model.Order, error) {
    o, ok := f.orders[id]
    if !ok {
        return nil, ErrOrderNotFound
    }
    return o, nil
}

func (f *fakeOrders) OrdersPage(_ context.Context, filter OrderFilter) ([]model.Order, error) {
    ids := make([]uint64, 0, len(f.orders))
    for id := range f.orders {
        ids = append(ids, id)
    }
    sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

    var matched []model.Order
    for _, id := range ids {
        o := f.orders[id]
        if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
            continue
        }
        if filter.From != nil && o.PlacedAt.Before(*filter.From) {
            continue
        }
        if filter.To != nil && !o.PlacedAt.Before(*filter.To) {
            continue
        }
        matched = append(matched, *o)
    }
    if filter.Offset >= len(matched) {
        return nil, nil
    }
    matched = matched[filter.Offset:]
    if filter.Limit > 0 && len(matched) > filter.Limit {
        matched = matched[:filter.Limit]
    }
    return matched, nil
}

func (f *fakeOrders) SetAssignedAttendee(_ context.Context, itemID uint64, name string) error {
    f.assigned[itemID] = name
    return nil
}

func containsStatus(statuses []string, s string) bool {
    for _, st := range statuses {
        if st == s {
            return true
        }
    }
    return false
}

type fakeCatalog struct {
    entries  map[uint64]*model.CatalogEntry
    variants map[uint64]*model.Variant
}

func newFakeCatalog() *fakeCatalog {
    return &fakeCatalog{entries: make(map[uint64]*model.CatalogEntry), variants: make(map[uint64]*model.Variant)}
}

func (f *fakeCatalog) EntryByID(_ context.Context, id uint64) (*model.CatalogEntry, error) {
    e, ok := f.entries[id]
    if !ok {
        return nil, ErrEntryNotFound
    }
    return e, nil
}

func (f *fakeCatalog) VariantByID(_ context.Context, id uint64) (*model.Variant, error) {
    v, ok := f.variants[id]
    if !ok {
        return nil, ErrVariantNotFound
    }
    return v, nil
}

type fakePlayers struct {
    households map[uint64][]model.AttendeeProfile
}

func newFakePlayers() *fakePlayers {
    return &fakePlayers{households: make(map[uint64][]model.AttendeeProfile)}
}

func (f *fakePlayers) HouseholdAttendees(_ context.Context, householdID uint64) ([]model.AttendeeProfile, error) {
    hs, ok := f.households[householdID]
    if !ok {
        return nil, ErrHouseholdNotFound
    }
    return hs, nil
}

func (f *fakePlayers) AttendeeByID(_ context.Context, id uint64) (*model.AttendeeProfile, error) {
    for _, hs := range f.households {
        for i := range hs {
            if hs[i].ID == id {
                return &hs[i], nil
            }
        }
    }
    return nil, ErrAttendeeNotFound
}

type fakeRoster struct {
    nextID  uint64
    entries map[uint64]*model.RosterEntry
    txErr   error // returned at commit time when set
}

func newFakeRoster() *fakeRoster {
    return &fakeRoster{entries: make(map[uint64]*model.RosterEntry)}
}

func (f *fakeRoster) FindByKey(_ context.Context, orderID, itemID uint64, slot int) (*model.RosterEntry, error) {
    for _, e := range f.entries {
        if e.OrderID == orderID && e.OrderItemID == itemID && e.AttendeeSlot == slot {
            cp := *e
            return &cp, nil
        }
    }
    return nil, nil
}

func (f *fakeRoster) Insert(_ context.Context, e *model.RosterEntry) error {
    f.nextID++
    e.ID = f.nextID
    e.CreatedAt = time.Now().UTC()
    e.UpdatedAt = e.CreatedAt
    cp := *e
    f.entries[e.ID] = &cp
    return nil
}

func (f *fakeRoster) Update(_ context.Context, e *model.RosterEntry) error {
    e.UpdatedAt = time.Now().UTC()
    cp := *e
    f.entries[e.ID] = &cp
    return nil
}

func (f *fakeRoster) DeleteWhere(_ context.Context, filter RosterFilter) (int64, error) {
    var removed int64
    for id, e := range f.entries {
        if filter.OrderID != nil && e.OrderID != *filter.OrderID {
            continue
        }
        if filter.OrderItemID != nil && e.OrderItemID != *filter.OrderItemID {
            continue
        }
        if filter.EventSignature != nil && e.EventSignature != *filter.EventSignature {
            continue
        }
        if filter.PlaceholderOnly && !e.Placeholder {
            continue
        }
        if len(filter.IDs) > 0 && !containsID(filter.IDs, id) {
            continue
        }
        // An unconstrained filter clears real entries, not placeholders.
        if filter.OrderID == nil && filter.OrderItemID == nil && filter.EventSignature == nil &&
            !filter.PlaceholderOnly && len(filter.IDs) == 0 && e.Placeholder {
            continue
        }
        delete(f.entries, id)
        removed++
    }
    return removed, nil
}

func (f *fakeRoster) All(_ context.Context) ([]model.RosterEntry, error) {
    ids := make([]uint64, 0, len(f.entries))
    for id := range f.entries {
        ids = append(ids, id)
    }
    sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
    out := make([]model.RosterEntry, 0, len(ids))
    for _, id := range ids {
        out = append(out, *f.entries[id])
    }
    return out, nil
}

func (f *fakeRoster) RunInTransaction(_ context.Context, fn func(RosterStore) error) error {
    if err := fn(f); err != nil {
        return err
    }
    return f.txErr
}

func containsID(ids []uint64, id uint64) bool {
    for _, v := range ids {
        if v == id {
            return true
        }
    }
    return false
}
