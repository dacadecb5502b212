package resolution

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/activekidz/roster-resolution/internal/model"
)

func testHousehold() []model.AttendeeProfile {
    return []model.AttendeeProfile{
        {ID: 101, HouseholdID: 1, Slot: 0, FirstName: "Anna", LastName: "Muster", Gender: "F",
            DateOfBirth: time.Date(2015, 3, 12, 0, 0, 0, 0, time.UTC)},
        {ID: 102, HouseholdID: 1, Slot: 1, FirstName: "Ben", LastName: "Muster", Gender: "M",
            DateOfBirth: time.Date(2013, 8, 2, 0, 0, 0, 0, time.UTC)},
        {ID: 103, HouseholdID: 1, Slot: 2, FirstName: "Clara", LastName: "Muster", Gender: "F",
            DateOfBirth: time.Date(2017, 1, 20, 0, 0, 0, 0, time.UTC)},
    }
}

func testMatcher() *Matcher {
    v := NewValidator()
    v.Now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
    return NewMatcher(DefaultStrategies(), v)
}

func TestMatchStrategyPriority(t *testing.T) {
    m := testMatcher()
    // Slot index and assigned name both present: the slot wins because
    // strategies run in fixed order and results are never merged.
    item := model.OrderItem{ID: 1, Quantity: 1, Attributes: model.AttributeBag{
        "attendee_slot":     model.IntAttr(1),
        "assigned_attendee": model.StringAttr("Anna Muster"),
    }}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, "slot-index", out.Strategy)
    require.Len(t, out.Eligible, 1)
    assert.Equal(t, uint64(102), out.Eligible[0].ID)
}

func TestMatchSlotOutOfRangeFallsThrough(t *testing.T) {
    m := testMatcher()
    item := model.OrderItem{ID: 2, Quantity: 1, Attributes: model.AttributeBag{
        "attendee_slot":     model.IntAttr(9),
        "assigned_attendee": model.StringAttr("Anna Muster"),
    }}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, "assigned-name", out.Strategy)
    require.Len(t, out.Eligible, 1)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)
    // The fall-through is recorded, never silent.
    require.NotEmpty(t, out.Notes)
    assert.Contains(t, out.Notes[0], "slot index 9")
}

func TestMatchFuzzyName(t *testing.T) {
    m := testMatcher()
    item := model.OrderItem{ID: 3, Quantity: 1, Attributes: model.AttributeBag{
        "assigned_attendee": model.StringAttr("Ana Muster"), // typo for Anna
    }}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, "assigned-name", out.Strategy)
    require.Len(t, out.Eligible, 1)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)
}

func TestMatchNameBelowFloorFallsThrough(t *testing.T) {
    m := testMatcher()
    // A name nothing like any household member must not be guessed; the
    // quantity strategy takes over instead.
    item := model.OrderItem{ID: 4, Quantity: 1, Attributes: model.AttributeBag{
        "assigned_attendee": model.StringAttr("Giuseppe Verdi"),
    }}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, "quantity", out.Strategy)
    require.Len(t, out.Eligible, 1)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)
    require.NotEmpty(t, out.Notes)
    assert.Contains(t, out.Notes[0], "Giuseppe Verdi")
}

func TestMatchNameTieBreaksToLowestSlot(t *testing.T) {
    m := testMatcher()
    household := []model.AttendeeProfile{
        {ID: 201, Slot: 0, FirstName: "Anna", LastName: "Muster", Gender: "F",
            DateOfBirth: time.Date(2015, 3, 12, 0, 0, 0, 0, time.UTC)},
        {ID: 202, Slot: 1, FirstName: "Anna", LastName: "Muster", Gender: "F",
            DateOfBirth: time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)},
    }
    item := model.OrderItem{ID: 5, Quantity: 1, Attributes: model.AttributeBag{
        "assigned_attendee": model.StringAttr("Ana Muster"),
    }}

    out, err := m.Match(item, household, model.EventDescriptor{}, false)
    require.NoError(t, err)
    require.Len(t, out.Eligible, 1)
    assert.Equal(t, uint64(201), out.Eligible[0].ID)
}

func TestMatchQuantity(t *testing.T) {
    m := testMatcher()
    item := model.OrderItem{ID: 6, Quantity: 2, Attributes: model.AttributeBag{}}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, "quantity", out.Strategy)
    require.Len(t, out.Eligible, 2)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)
    assert.Equal(t, uint64(102), out.Eligible[1].ID)
}

func TestMatchHouseholdFallback(t *testing.T) {
    m := testMatcher()
    // Quantity larger than the household: the whole household is assigned
    // by the last-resort strategy.
    item := model.OrderItem{ID: 7, Quantity: 5, Attributes: model.AttributeBag{}}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, "household", out.Strategy)
    assert.Len(t, out.Eligible, 3)
}

func TestMatchEmptyHouseholdErrors(t *testing.T) {
    m := testMatcher()
    item := model.OrderItem{ID: 8, Quantity: 1, Attributes: model.AttributeBag{}}

    _, err := m.Match(item, nil, model.EventDescriptor{}, false)
    var me *MatchError
    require.ErrorAs(t, err, &me)
    assert.Equal(t, uint64(8), me.ItemID)
}

func TestMatchValidationDropsAreNotErrors(t *testing.T) {
    m := testMatcher()
    item := model.OrderItem{ID: 9, Quantity: 3, Attributes: model.AttributeBag{}}
    d := model.EventDescriptor{GirlsOnly: true}

    out, err := m.Match(item, testHousehold(), d, false)
    require.NoError(t, err)
    assert.Len(t, out.Eligible, 2, "the boy is dropped, the girls stay")
    require.Len(t, out.Dropped, 1)
    assert.Contains(t, out.Dropped[0], "girls-only")

    // Skipping age/gender admits everyone.
    out, err = m.Match(item, testHousehold(), d, true)
    require.NoError(t, err)
    assert.Len(t, out.Eligible, 3)
    assert.Empty(t, out.Dropped)
}

func TestMatchCacheAndInvalidate(t *testing.T) {
    m := testMatcher()
    household := testHousehold()
    item := model.OrderItem{ID: 10, Quantity: 1, Attributes: model.AttributeBag{
        "assigned_attendee": model.StringAttr("Anna Muster"),
    }}

    out, err := m.Match(item, household, model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)

    // A rewritten annotation alone does not change the cached outcome:
    // the cache keys on item identity and household composition.
    item.Attributes["assigned_attendee"] = model.StringAttr("Clara Muster")
    out, err = m.Match(item, household, model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)

    m.Invalidate(item.ID)
    out, err = m.Match(item, household, model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, uint64(103), out.Eligible[0].ID)

    // Reset clears everything, not just one item.
    item.Attributes["assigned_attendee"] = model.StringAttr("Ben Muster")
    m.Reset()
    out, err = m.Match(item, household, model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, uint64(102), out.Eligible[0].ID)
}

func TestMatchCacheKeyedOnHousehold(t *testing.T) {
    m := testMatcher()
    item := model.OrderItem{ID: 11, Quantity: 1, Attributes: model.AttributeBag{}}

    out, err := m.Match(item, testHousehold(), model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, uint64(101), out.Eligible[0].ID)

    // A changed household composition misses the cache.
    changed := testHousehold()[1:]
    out, err = m.Match(item, changed, model.EventDescriptor{}, false)
    require.NoError(t, err)
    assert.Equal(t, uint64(102), out.Eligible[0].ID)
}
