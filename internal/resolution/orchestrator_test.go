package resolution

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/activekidz/roster-resolution/internal/model"
    "github.com/activekidz/roster-resolution/internal/signature"
)

type fixture struct {
    orders  *fakeOrders
    catalog *fakeCatalog
    players *fakePlayers
    roster  *fakeRoster
    orch    *Orchestrator
}

// newFixture wires an orchestrator over two resolvable orders: order 1
// (household 1, quantity 2) and order 2 (household 2, quantity 1), both for
// the same summer camp week.
func newFixture() *fixture {
    f := &fixture{
        orders:  newFakeOrders(),
        catalog: newFakeCatalog(),
        players: newFakePlayers(),
        roster:  newFakeRoster(),
    }

    entry := campEntry()
    variant := campVariant()
    entry.Variants = []model.Variant{*variant}
    f.catalog.entries[entry.ID] = entry
    f.catalog.variants[variant.ID] = variant

    f.players.households[1] = testHousehold()
    f.players.households[2] = []model.AttendeeProfile{
        {ID: 201, HouseholdID: 2, Slot: 0, FirstName: "Dora", LastName: "Beispiel", Gender: "F",
            DateOfBirth: time.Date(2016, 4, 3, 0, 0, 0, 0, time.UTC)},
    }

    variantID := variant.ID
    f.orders.orders[1] = &model.Order{
        ID: 1, CustomerID: 1, Status: "paid",
        PlacedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
        Items: []model.OrderItem{
            {ID: 11, OrderID: 1, CatalogEntryID: entry.ID, VariantID: &variantID, Quantity: 2,
                Attributes: model.AttributeBag{}},
        },
    }
    f.orders.orders[2] = &model.Order{
        ID: 2, CustomerID: 2, Status: "paid",
        PlacedAt: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
        Items: []model.OrderItem{
            {ID: 21, OrderID: 2, CatalogEntryID: entry.ID, VariantID: &variantID, Quantity: 1,
                Attributes: model.AttributeBag{}},
        },
    }

    signer := signature.NewGenerator(signature.NewTermTable(nil), signature.DefaultTables())
    f.orch = NewOrchestrator(f.orders, f.catalog, f.players, f.roster,
        testExtractor(), testMatcher(), signer)
    return f
}

func TestResolveBatchCreatesEntries(t *testing.T) {
    f := newFixture()

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err)

    assert.Equal(t, 3, stats.Created)
    assert.Equal(t, 0, stats.Updated)
    assert.Equal(t, 2, stats.OrdersProcessed)
    assert.Equal(t, 0, stats.SkippedOrders)
    assert.Equal(t, 3, stats.PlayersProcessed)
    assert.NotEmpty(t, stats.RunID)
    assert.False(t, stats.EndTime.Before(stats.StartTime))

    entries, err := f.roster.All(context.Background())
    require.NoError(t, err)
    require.Len(t, entries, 3)
    // One event, one signature: every entry groups identically.
    sig := entries[0].EventSignature
    require.NotEmpty(t, sig)
    for _, e := range entries {
        assert.Equal(t, sig, e.EventSignature)
        assert.Equal(t, model.KindCamp, e.EventKind)
        assert.False(t, e.Placeholder)
    }
}

func TestResolveBatchIdempotent(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    first, err := f.orch.ResolveBatch(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)
    require.Equal(t, 3, first.Created)

    second, err := f.orch.ResolveBatch(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)
    assert.Equal(t, 0, second.Created, "re-running creates nothing new")
    assert.Equal(t, 3, second.Updated, "existing keys update in place")

    entries, err := f.roster.All(ctx)
    require.NoError(t, err)
    assert.Len(t, entries, 3, "no duplicate rows after re-run")
}

func TestResolveBatchSkipDuplicates(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    _, err := f.orch.ResolveBatch(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)

    stats, err := f.orch.ResolveBatch(ctx, BatchOptions{Validate: true, SkipDuplicates: true})
    require.NoError(t, err)
    assert.Equal(t, 0, stats.Created)
    assert.Equal(t, 0, stats.Updated, "insert-only mode leaves existing rows untouched")
}

func TestResolveBatchPartialFailure(t *testing.T) {
    f := newFixture()
    // Order 3 references a household the player directory cannot resolve.
    f.orders.orders[3] = &model.Order{
        ID: 3, CustomerID: 99, Status: "paid",
        PlacedAt: time.Date(2025, 5, 3, 10, 0, 0, 0, time.UTC),
        Items:    []model.OrderItem{{ID: 31, OrderID: 3, CatalogEntryID: 42, Quantity: 1, Attributes: model.AttributeBag{}}},
    }

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err, "one bad order never aborts the batch")

    assert.Equal(t, 1, stats.SkippedOrders)
    assert.Equal(t, 2, stats.OrdersProcessed)
    assert.Equal(t, 3, stats.Created, "healthy orders still resolve")
    require.NotEmpty(t, stats.Errors)
    assert.Contains(t, stats.Errors[0], "order 3")
}

func TestResolveBatchEmptyHouseholdSkipsOrder(t *testing.T) {
    f := newFixture()
    f.players.households[2] = nil // household exists but has no profiles

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err)
    assert.Equal(t, 1, stats.SkippedOrders)
    assert.Equal(t, 2, stats.Created, "order 1 still resolves")
}

func TestResolveBatchStatusFilter(t *testing.T) {
    f := newFixture()
    f.orders.orders[2].Status = "pending"

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true, Statuses: []string{"paid"}})
    require.NoError(t, err)
    assert.Equal(t, 1, stats.OrdersProcessed)
    assert.Equal(t, 2, stats.Created)
}

func TestResolveBatchClearExisting(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    // A stale entry from an earlier run with a key no current order produces.
    stale := &model.RosterEntry{OrderID: 77, OrderItemID: 770, AttendeeSlot: 0, AttendeeID: 999,
        FirstName: "Stale", LastName: "Row", EventSignature: "deadbeef"}
    require.NoError(t, f.roster.Insert(ctx, stale))

    stats, err := f.orch.ResolveBatch(ctx, BatchOptions{Validate: true, ClearExisting: true})
    require.NoError(t, err)
    assert.Equal(t, 3, stats.Created)

    entries, err := f.roster.All(ctx)
    require.NoError(t, err)
    assert.Len(t, entries, 3, "the stale row is gone")
}

func TestResolveBatchValidationDrops(t *testing.T) {
    f := newFixture()
    // Make the camp girls-only: Ben is dropped, Anna stays on order 1.
    f.catalog.entries[42].Attributes["girls_only"] = model.BoolAttr(true)

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err)

    assert.Equal(t, 2, stats.Created, "Anna and Dora; Ben is dropped")
    assert.Equal(t, 1, stats.ValidationErrors)
    require.NotEmpty(t, stats.Warnings)

    // With validation off the same batch admits everyone.
    f2 := newFixture()
    f2.catalog.entries[42].Attributes["girls_only"] = model.BoolAttr(true)
    stats, err = f2.orch.ResolveBatch(context.Background(), BatchOptions{Validate: false})
    require.NoError(t, err)
    assert.Equal(t, 3, stats.Created)
    assert.Equal(t, 0, stats.ValidationErrors)
}

func TestResolveBatchSoleAttendeeDropped(t *testing.T) {
    f := newFixture()
    f.catalog.entries[42].Attributes["girls_only"] = model.BoolAttr(true)
    // Household 2's only child is a boy: the item yields zero entries with
    // a warning, not an error.
    f.players.households[2][0].Gender = "M"

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err)

    assert.Equal(t, 2, stats.OrdersProcessed, "the order itself is still processed")
    assert.Equal(t, 0, stats.SkippedOrders)
    assert.Empty(t, stats.Errors)
    found := false
    for _, w := range stats.Warnings {
        if w == "order 2 item 21: no eligible attendee remained" {
            found = true
        }
    }
    assert.True(t, found, "zero-eligible items leave a warning: %v", stats.Warnings)
}

func TestResolveBatchPaging(t *testing.T) {
    f := newFixture()

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true, BatchSize: 1})
    require.NoError(t, err)
    assert.Equal(t, 2, stats.OrdersProcessed)
    assert.Equal(t, 3, stats.Created)
}

func TestResolveBatchPageFailureDiscardsCounts(t *testing.T) {
    f := newFixture()
    f.roster.txErr = errors.New("commit: connection lost")

    stats, err := f.orch.ResolveBatch(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err, "a failed page is recorded, not raised")

    assert.Equal(t, 0, stats.Created, "rolled-back writes must not be counted")
    assert.Equal(t, 0, stats.Updated)
    assert.Equal(t, 0, stats.OrdersProcessed)
    assert.Equal(t, 0, stats.PlayersProcessed)
    require.Len(t, stats.Errors, 1)
    assert.Contains(t, stats.Errors[0], "page 0 failed")
}

func TestResolveOrder(t *testing.T) {
    f := newFixture()

    entries, err := f.orch.ResolveOrder(context.Background(), 1, Options{})
    require.NoError(t, err)
    require.Len(t, entries, 2)
    assert.Equal(t, uint64(101), entries[0].AttendeeID)
    assert.Equal(t, uint64(102), entries[1].AttendeeID)
    assert.Equal(t, entries[0].EventSignature, entries[1].EventSignature)
}

func TestResolveOrderNotFound(t *testing.T) {
    f := newFixture()

    _, err := f.orch.ResolveOrder(context.Background(), 999, Options{})
    var oe *OrderError
    require.ErrorAs(t, err, &oe)
    assert.Equal(t, uint64(999), oe.OrderID)
}

func TestResolveOrderUnresolvableHousehold(t *testing.T) {
    f := newFixture()
    f.orders.orders[1].CustomerID = 99

    _, err := f.orch.ResolveOrder(context.Background(), 1, Options{})
    var oe *OrderError
    require.ErrorAs(t, err, &oe)
}

func TestRebuildOrders(t *testing.T) {
    f := newFixture()

    stats, err := f.orch.RebuildOrders(context.Background(), []uint64{1, 999}, Options{})
    require.NoError(t, err)
    assert.Equal(t, 1, stats.OrdersProcessed)
    assert.Equal(t, 2, stats.Created)
    assert.Equal(t, 1, stats.SkippedOrders)
    require.NotEmpty(t, stats.Errors)
    assert.Contains(t, stats.Errors[0], "order 999")
}

func TestRebuildSeesChangedItemAttributes(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    stats, err := f.orch.RebuildOrders(ctx, []uint64{1}, Options{})
    require.NoError(t, err)
    require.Equal(t, 2, stats.Created, "quantity match fills slots 0 and 1")

    // The item gains an explicit attendee annotation between runs.  The
    // next rebuild must re-match instead of serving the previous run's
    // cached quantity result.
    f.orders.orders[1].Items[0].Attributes["assigned_attendee"] = model.StringAttr("Clara Muster")

    stats, err = f.orch.RebuildOrders(ctx, []uint64{1}, Options{})
    require.NoError(t, err)
    assert.Equal(t, 1, stats.Created, "the name match now selects Clara at slot 2")

    entries, err := f.roster.All(ctx)
    require.NoError(t, err)
    found := false
    for _, e := range entries {
        if e.AttendeeID == 103 {
            found = true
        }
    }
    assert.True(t, found, "Clara's entry exists after the second rebuild")
}

func TestResolveOrderSeesChangedItemAttributes(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    entries, err := f.orch.ResolveOrder(ctx, 1, Options{})
    require.NoError(t, err)
    require.Len(t, entries, 2)

    f.orders.orders[1].Items[0].Attributes["assigned_attendee"] = model.StringAttr("Clara Muster")

    entries, err = f.orch.ResolveOrder(ctx, 1, Options{})
    require.NoError(t, err)
    require.Len(t, entries, 1)
    assert.Equal(t, uint64(103), entries[0].AttendeeID)
}

func TestPlaceholderLifecycle(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    seeded, err := f.orch.SeedPlaceholders(ctx, 42)
    require.NoError(t, err)
    assert.Equal(t, 1, seeded, "one placeholder per variant")

    // Seeding again is a no-op.
    seeded, err = f.orch.SeedPlaceholders(ctx, 42)
    require.NoError(t, err)
    assert.Equal(t, 0, seeded)

    entries, err := f.roster.All(ctx)
    require.NoError(t, err)
    require.Len(t, entries, 1)
    placeholder := entries[0]
    assert.True(t, placeholder.Placeholder)
    assert.Equal(t, -1, placeholder.AttendeeSlot)
    require.NotEmpty(t, placeholder.EventSignature)

    // A real booking with the same signature supersedes the placeholder.
    stats, err := f.orch.ResolveBatch(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)
    require.Equal(t, 3, stats.Created)

    entries, err = f.roster.All(ctx)
    require.NoError(t, err)
    require.Len(t, entries, 3)
    for _, e := range entries {
        assert.False(t, e.Placeholder)
        assert.Equal(t, placeholder.EventSignature, e.EventSignature)
    }
}

func TestSeedPlaceholdersUnknownEntry(t *testing.T) {
    f := newFixture()

    _, err := f.orch.SeedPlaceholders(context.Background(), 999)
    assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestPreviewWritesNothing(t *testing.T) {
    f := newFixture()
    ctx := context.Background()

    sum, err := f.orch.Preview(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)
    assert.Equal(t, 2, sum.OrdersExamined)
    assert.Equal(t, 2, sum.Resolvable)
    assert.Equal(t, 3, sum.WouldCreate)
    assert.Equal(t, 0, sum.WouldUpdate)

    entries, err := f.roster.All(ctx)
    require.NoError(t, err)
    assert.Empty(t, entries, "preview must not write")

    // After a real build the same preview reports updates instead.
    _, err = f.orch.ResolveBatch(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)
    sum, err = f.orch.Preview(ctx, BatchOptions{Validate: true})
    require.NoError(t, err)
    assert.Equal(t, 0, sum.WouldCreate)
    assert.Equal(t, 3, sum.WouldUpdate)
}

func TestPreviewRecordsSkipReasons(t *testing.T) {
    f := newFixture()
    // An item pointing at a catalog entry that no longer exists, and an
    // order whose household cannot be resolved.
    f.orders.orders[1].Items = append(f.orders.orders[1].Items,
        model.OrderItem{ID: 12, OrderID: 1, CatalogEntryID: 404, Quantity: 1, Attributes: model.AttributeBag{}})
    f.orders.orders[3] = &model.Order{
        ID: 3, CustomerID: 99, Status: "paid",
        PlacedAt: time.Date(2025, 5, 3, 10, 0, 0, 0, time.UTC),
        Items:    []model.OrderItem{{ID: 31, OrderID: 3, CatalogEntryID: 42, Quantity: 1, Attributes: model.AttributeBag{}}},
    }

    sum, err := f.orch.Preview(context.Background(), BatchOptions{Validate: true})
    require.NoError(t, err)
    assert.Equal(t, 1, sum.SkippedOrders)
    assert.Equal(t, 1, sum.SkippedItems)
    require.Len(t, sum.Warnings, 2)
    assert.Contains(t, sum.Warnings[0], "order 1 item 12")
    assert.Contains(t, sum.Warnings[1], "order 3")
}
