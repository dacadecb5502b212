package model

import "time"

// EventKind classifies a descriptor into the closed set of event types the
// platform sells.  The kind decides which descriptor fields are required
// for the item to be resolvable.
type EventKind string

const (
    KindCamp       EventKind = "camp"
    KindCourse     EventKind = "course"
    KindBirthday   EventKind = "birthday"
    KindTournament EventKind = "tournament"
    KindUnknown    EventKind = ""
)

// EventDescriptor is the normalized in-memory identity of a purchased
// event.  It is derived per line item and never persisted directly; only
// its signature is.  Two descriptors that normalize identically yield the
// same signature even when the raw attribute spellings, languages or
// casing differ.
//
// Fields:
//  Kind           – classified event kind.
//  ActivityType   – normalized activity type (camp, course, ...).
//  Venue          – canonical venue name.
//  AgeGroup       – canonical form "<min>-<max>y (<suffix>)".
//  Season         – season name plus year, canonical language.
//  TermOrWeekday  – camp term label or course weekday.
//  TimeRange      – daily time range ("09:00-17:00"), may be empty.
//  GirlsOnly      – whether the event is gender gated.
//  CatalogEntryID – parent catalog entry identifier.
//  StartsAt       – event start when known (nil otherwise).
//  EndsAt         – event end when known (nil otherwise).
type EventDescriptor struct {
    Kind           EventKind
    ActivityType   string
    Venue          string
    AgeGroup       string
    Season         string
    TermOrWeekday  string
    TimeRange      string
    GirlsOnly      bool
    CatalogEntryID uint64
    StartsAt       *time.Time
    EndsAt         *time.Time
}
