package resolution

import (
    "fmt"
    "strings"

    "github.com/activekidz/roster-resolution/internal/model"
)

// MinNameConfidence is the floor below which a fuzzy name candidate is
// never selected; the matcher returns empty rather than a weak guess.
const MinNameConfidence = 0.70

// Metadata keys checked for an explicit attendee slot or assigned name.
// Keys vary by storefront language, so every variant is tried.
var (
    slotIndexKeys    = []string{"attendee_slot", "slot", "child_index", "kind_index", "enfant_index"}
    assignedNameKeys = []string{"assigned_attendee", "attendee", "attendee_name", "teilnehmer", "participant", "partecipante", "child_name", "kind", "enfant"}
)

// MatchStrategy resolves attendees for a line item.  Strategies are tried
// in a fixed order; the first non-empty result wins and results are never
// merged across strategies.  The note explains an empty result so a
// fall-through is recorded rather than silent.
type MatchStrategy interface {
    Name() string
    Match(item model.OrderItem, household []model.AttendeeProfile) (result []model.AttendeeProfile, note string)
}

// SlotIndexStrategy selects the attendee at the item's explicit slot
// index.  An index pointing outside the household yields empty with the
// reason noted; it never guesses a different attendee.
type SlotIndexStrategy struct{}

func (SlotIndexStrategy) Name() string { return "slot-index" }

func (SlotIndexStrategy) Match(item model.OrderItem, household []model.AttendeeProfile) ([]model.AttendeeProfile, string) {
    v := item.Attributes.First(slotIndexKeys...)
    if v.Missing() {
        return nil, ""
    }
    slot := int(v.AsInt())
    for _, a := range household {
        if a.Slot == slot {
            return []model.AttendeeProfile{a}, ""
        }
    }
    return nil, fmt.Sprintf("slot index %d not present in household of %d", slot, len(household))
}

// NameStrategy selects the attendee whose name matches the item's
// assigned-attendee annotation: exact full-name match first, then fuzzy
// scoring with MinConfidence as the floor.  Ties above the floor break
// deterministically to the lowest slot index.
type NameStrategy struct {
    MinConfidence float64
}

func (NameStrategy) Name() string { return "assigned-name" }

func (s NameStrategy) Match(item model.OrderItem, household []model.AttendeeProfile) ([]model.AttendeeProfile, string) {
    target := strings.TrimSpace(item.Attributes.First(assignedNameKeys...).Text())
    if target == "" {
        return nil, ""
    }
    for _, a := range household {
        if strings.EqualFold(strings.TrimSpace(a.FullName()), target) {
            return []model.AttendeeProfile{a}, ""
        }
    }
    floor := s.MinConfidence
    if floor <= 0 {
        floor = MinNameConfidence
    }
    var best *model.AttendeeProfile
    bestScore := 0.0
    // Household is iterated in slot order and a candidate must score
    // strictly higher to displace the current best, so equal scores
    // resolve to the lowest slot index.
    for i := range household {
        score := NameSimilarity(target, household[i].FullName())
        if score >= floor && score > bestScore {
            best = &household[i]
            bestScore = score
        }
    }
    if best == nil {
        return nil, fmt.Sprintf("no attendee matched name %q above confidence %.2f", target, floor)
    }
    return []model.AttendeeProfile{*best}, ""
}

// QuantityStrategy takes quantity attendees from the front of the
// household list when the quantity fits the household size.
type QuantityStrategy struct{}

func (QuantityStrategy) Name() string { return "quantity" }

func (QuantityStrategy) Match(item model.OrderItem, household []model.AttendeeProfile) ([]model.AttendeeProfile, string) {
    if item.Quantity < 1 || item.Quantity > len(household) {
        return nil, ""
    }
    return household[:item.Quantity], ""
}

// HouseholdStrategy assigns the entire household.  Last resort, for
// events that do not require individual identification.
type HouseholdStrategy struct{}

func (HouseholdStrategy) Name() string { return "household" }

func (HouseholdStrategy) Match(_ model.OrderItem, household []model.AttendeeProfile) ([]model.AttendeeProfile, string) {
    return household, ""
}

// DefaultStrategies returns the production strategy chain in priority
// order.
func DefaultStrategies() []MatchStrategy {
    return []MatchStrategy{
        SlotIndexStrategy{},
        NameStrategy{MinConfidence: MinNameConfidence},
        QuantityStrategy{},
        HouseholdStrategy{},
    }
}

// MatchOutcome is the result of resolving one line item: the eligible
// attendees, which strategy produced them, the reasons any attendees were
// dropped by validation, and diagnostic notes from strategies that
// declined with a reason.
type MatchOutcome struct {
    Eligible []model.AttendeeProfile
    Strategy string
    Dropped  []string
    Notes    []string
}

// matchKey is the composite per-run cache key: line-item identity,
// household composition and whether age/gender checks were skipped.
type matchKey struct {
    itemID      uint64
    householdFP string
    skipChecks  bool
}

// Matcher resolves which household attendees a line item is for.  Results
// are cached for the duration of a run; the cache is invalidated per item
// when a manual re-assignment rewrites the item's annotation.
type Matcher struct {
    strategies []MatchStrategy
    validator  *Validator
    cache      map[matchKey]MatchOutcome
}

// NewMatcher returns a Matcher over the given strategy chain.
func NewMatcher(strategies []MatchStrategy, validator *Validator) *Matcher {
    return &Matcher{
        strategies: strategies,
        validator:  validator,
        cache:      make(map[matchKey]MatchOutcome),
    }
}

// Match resolves attendees for the item and validates each selected
// attendee against the descriptor.  Attendees failing validation are
// dropped with the reason recorded but do not fail the match; a match
// where every strategy came up empty returns a MatchError.  A match whose
// only attendees were dropped by validation returns an empty outcome with
// the drop reasons, not an error.
func (m *Matcher) Match(item model.OrderItem, household []model.AttendeeProfile, d model.EventDescriptor, skipAgeGender bool) (MatchOutcome, error) {
    key := matchKey{itemID: item.ID, householdFP: householdFingerprint(household), skipChecks: skipAgeGender}
    if out, ok := m.cache[key]; ok {
        return out, nil
    }

    var selected []model.AttendeeProfile
    var out MatchOutcome
    for _, s := range m.strategies {
        result, note := s.Match(item, household)
        if note != "" {
            out.Notes = append(out.Notes, s.Name()+": "+note)
        }
        if len(result) > 0 {
            selected = result
            out.Strategy = s.Name()
            break
        }
    }
    if len(selected) == 0 {
        reason := "no strategy produced a result"
        if len(out.Notes) > 0 {
            reason = strings.Join(out.Notes, "; ")
        }
        return MatchOutcome{}, &MatchError{ItemID: item.ID, Reason: reason}
    }

    for _, a := range selected {
        if err := m.validator.Validate(a, d, skipAgeGender); err != nil {
            out.Dropped = append(out.Dropped, err.Error())
            continue
        }
        out.Eligible = append(out.Eligible, a)
    }
    m.cache[key] = out
    return out, nil
}

// Invalidate drops cached results for one line item, in every household
// and skip-flag variant.  Called after a manual re-assignment.
func (m *Matcher) Invalidate(itemID uint64) {
    for k := range m.cache {
        if k.itemID == itemID {
            delete(m.cache, k)
        }
    }
}

// Reset clears the whole per-run cache.
func (m *Matcher) Reset() {
    m.cache = make(map[matchKey]MatchOutcome)
}

// householdFingerprint summarizes the household composition for the cache
// key so a changed profile never serves a stale match.
func householdFingerprint(household []model.AttendeeProfile) string {
    parts := make([]string, len(household))
    for i, a := range household {
        parts[i] = fmt.Sprintf("%d:%d:%s:%s:%s", a.ID, a.Slot, a.FirstName, a.LastName, a.DateOfBirth.Format("2006-01-02"))
    }
    return strings.Join(parts, "|")
}
