package model

import "time"

// RosterEntry is the persisted output of the resolution pipeline: one row
// per (order, order item, attendee slot).  At most one entry exists per
// purchased slot; re-resolving the same order updates the row in place and
// never duplicates it.  Entries are only ever removed by explicit orphan
// cleanup or placeholder supersession.
//
// Fields:
//  ID             – primary key identifier.
//  OrderID        – order component of the unique key (0 for placeholders).
//  OrderItemID    – order item component of the unique key.
//  AttendeeSlot   – attendee slot component of the unique key.
//  AttendeeID     – resolved attendee (0 for placeholders).
//  FirstName      – attendee first name as recorded at resolution time.
//  LastName       – attendee last name as recorded at resolution time.
//  DateOfBirth    – attendee birth date as recorded at resolution time.
//  EventSignature – deterministic event identity hash.
//  EventKind      – classified event kind.
//  Venue          – canonical venue of the event.
//  AgeGroup       – canonical age group of the event.
//  Season         – canonical season of the event.
//  EventStart     – event start when known.
//  EventEnd       – event end when known.
//  Placeholder    – true for synthetic unbooked-slot entries.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type RosterEntry struct {
    ID             uint64     // roster_entries.id
    OrderID        uint64     // roster_entries.order_id
    OrderItemID    uint64     // roster_entries.order_item_id
    AttendeeSlot   int        // roster_entries.attendee_slot
    AttendeeID     uint64     // roster_entries.attendee_id
    FirstName      string     // roster_entries.first_name
    LastName       string     // roster_entries.last_name
    DateOfBirth    time.Time  // roster_entries.date_of_birth
    EventSignature string     // roster_entries.event_signature
    EventKind      EventKind  // roster_entries.event_kind
    Venue          string     // roster_entries.venue
    AgeGroup       string     // roster_entries.age_group
    Season         string     // roster_entries.season
    EventStart     *time.Time // roster_entries.event_start (nullable)
    EventEnd       *time.Time // roster_entries.event_end (nullable)
    Placeholder    bool       // roster_entries.placeholder
    CreatedAt      time.Time  // roster_entries.created_at
    UpdatedAt      time.Time  // roster_entries.updated_at
}
