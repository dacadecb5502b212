package model

import "time"

// AttendeeProfile is one child within a household's attendee list.  The
// profile is owned by the external player directory and read-only to the
// resolution pipeline.  Slot is the child's positional index within the
// household list and doubles as the attendee-slot component of the roster
// entry key.
//
// Fields:
//  ID           – primary key identifier.
//  HouseholdID  – owning household (buyer account).
//  Slot         – positional index within the household's list.
//  FirstName    – given name.
//  LastName     – family name.
//  DateOfBirth  – birth date (zero when not recorded).
//  Gender       – recorded gender (F, M or empty).
//  Medical      – optional medical notes.
//  Dietary      – optional dietary notes.
//  EmergencyTel – optional emergency contact number.
type AttendeeProfile struct {
    ID           uint64    // attendees.id
    HouseholdID  uint64    // attendees.household_id
    Slot         int       // attendees.slot
    FirstName    string    // attendees.first_name
    LastName     string    // attendees.last_name
    DateOfBirth  time.Time // attendees.date_of_birth
    Gender       string    // attendees.gender
    Medical      *string   // attendees.medical (nullable)
    Dietary      *string   // attendees.dietary (nullable)
    EmergencyTel *string   // attendees.emergency_tel (nullable)
}

// FullName returns "First Last" for display and name matching.
func (a AttendeeProfile) FullName() string {
    if a.FirstName == "" {
        return a.LastName
    }
    if a.LastName == "" {
        return a.FirstName
    }
    return a.FirstName + " " + a.LastName
}

// AgeAt returns the attendee's age in whole years at the given date.
func (a AttendeeProfile) AgeAt(at time.Time) int {
    years := at.Year() - a.DateOfBirth.Year()
    anniversary := a.DateOfBirth.AddDate(years, 0, 0)
    if anniversary.After(at) {
        years--
    }
    return years
}
