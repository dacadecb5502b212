package resolution

import (
    "fmt"
    "strings"
    "time"

    "github.com/activekidz/roster-resolution/internal/model"
)

// Validator checks whether an attendee may occupy a roster slot for a
// given event.  Profile completeness is always enforced; the age and
// gender checks can be skipped for explicit manual assignments that have
// already been approved, so bulk rebuilds do not re-litigate them.
type Validator struct {
    // Now returns the reference time for age checks when the event start
    // is unknown.  Overridable in tests.
    Now func() time.Time
}

// NewValidator returns a Validator using wall-clock time.
func NewValidator() *Validator {
    return &Validator{Now: func() time.Time { return time.Now().UTC() }}
}

// Validate returns nil when the attendee may attend the described event,
// or an EligibilityError naming the first failed check.  Checks run in
// order: profile completeness, age-group bounds, gender restriction.
func (v *Validator) Validate(a model.AttendeeProfile, d model.EventDescriptor, skipAgeGender bool) error {
    if reason, ok := v.complete(a); !ok {
        return &EligibilityError{AttendeeID: a.ID, Reason: reason}
    }
    if skipAgeGender {
        return nil
    }
    if min, max, ok := AgeGroupBounds(d.AgeGroup); ok {
        at := v.Now()
        if d.StartsAt != nil {
            at = *d.StartsAt
        }
        age := a.AgeAt(at)
        if age < min || age > max {
            return &EligibilityError{
                AttendeeID: a.ID,
                Reason:     fmt.Sprintf("age %d outside group %s", age, d.AgeGroup),
            }
        }
    }
    if d.GirlsOnly && !isFemale(a.Gender) {
        return &EligibilityError{AttendeeID: a.ID, Reason: "event is girls-only"}
    }
    return nil
}

// complete checks the mandatory identity fields.  This check is never
// skippable: a roster entry without a name or birth date is unusable.
func (v *Validator) complete(a model.AttendeeProfile) (string, bool) {
    switch {
    case strings.TrimSpace(a.FirstName) == "":
        return "first name missing", false
    case strings.TrimSpace(a.LastName) == "":
        return "last name missing", false
    case a.DateOfBirth.IsZero():
        return "date of birth missing", false
    case strings.TrimSpace(a.Gender) == "":
        return "gender missing", false
    }
    return "", true
}

func isFemale(gender string) bool {
    switch strings.ToUpper(strings.TrimSpace(gender)) {
    case "F", "FEMALE", "W", "GIRL":
        return true
    }
    return false
}
