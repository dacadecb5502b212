package resolution

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/activekidz/roster-resolution/internal/model"
)

// CheckIntegrity runs the read-only integrity pass over every persisted
// roster entry: the referenced order must still exist, the referenced
// attendee must still exist with unchanged identity fields, and no
// attendee may hold entries with overlapping date ranges across different
// events.  Findings are reported, never repaired.
func (o *Orchestrator) CheckIntegrity(ctx context.Context) (*IntegrityReport, error) {
    entries, err := o.roster.All(ctx)
    if err != nil {
        return nil, err
    }
    report := &IntegrityReport{
        MissingOrders:      []uint64{},
        MissingAttendees:   []uint64{},
        IdentityMismatches: []string{},
        DateOverlaps:       []string{},
        CheckedAt:          time.Now().UTC(),
    }

    orderSeen := make(map[uint64]bool)
    // nil profile = attendee confirmed missing; only the lookup is
    // memoized, identity is compared per entry.
    profiles := make(map[uint64]*model.AttendeeProfile)
    flaggedOrders := make(map[uint64]bool)
    flaggedAttendees := make(map[uint64]bool)

    type span struct {
        signature string
        start     time.Time
        end       time.Time
    }
    spans := make(map[uint64][]span)

    for _, e := range entries {
        if e.Placeholder {
            continue
        }
        report.EntriesChecked++

        exists, ok := orderSeen[e.OrderID]
        if !ok {
            _, err := o.orders.OrderByID(ctx, e.OrderID)
            switch {
            case err == nil:
                exists = true
            case errors.Is(err, ErrOrderNotFound):
                exists = false
            default:
                return nil, err
            }
            orderSeen[e.OrderID] = exists
        }
        if !exists && !flaggedOrders[e.OrderID] {
            report.MissingOrders = append(report.MissingOrders, e.OrderID)
            flaggedOrders[e.OrderID] = true
        }

        attendee, fetched := profiles[e.AttendeeID]
        if !fetched {
            p, err := o.players.AttendeeByID(ctx, e.AttendeeID)
            if err != nil && !errors.Is(err, ErrAttendeeNotFound) {
                return nil, err
            }
            profiles[e.AttendeeID] = p
            attendee = p
        }
        switch {
        case attendee == nil:
            if !flaggedAttendees[e.AttendeeID] {
                report.MissingAttendees = append(report.MissingAttendees, e.AttendeeID)
                flaggedAttendees[e.AttendeeID] = true
            }
        case attendee.FirstName != e.FirstName || attendee.LastName != e.LastName ||
            !attendee.DateOfBirth.Equal(e.DateOfBirth):
            report.IdentityMismatches = append(report.IdentityMismatches,
                fmt.Sprintf("entry %d: attendee %d recorded as %q %s, directory has %q %s",
                    e.ID, e.AttendeeID, e.FirstName+" "+e.LastName, e.DateOfBirth.Format("2006-01-02"),
                    attendee.FullName(), attendee.DateOfBirth.Format("2006-01-02")))
        }

        if e.EventStart != nil && e.EventEnd != nil {
            for _, s := range spans[e.AttendeeID] {
                if s.signature == e.EventSignature {
                    continue
                }
                if !e.EventStart.After(s.end) && !s.start.After(*e.EventEnd) {
                    report.DateOverlaps = append(report.DateOverlaps,
                        fmt.Sprintf("attendee %d: events %s and %s overlap (%s..%s vs %s..%s)",
                            e.AttendeeID, shortSig(s.signature), shortSig(e.EventSignature),
                            s.start.Format("2006-01-02"), s.end.Format("2006-01-02"),
                            e.EventStart.Format("2006-01-02"), e.EventEnd.Format("2006-01-02")))
                }
            }
            spans[e.AttendeeID] = append(spans[e.AttendeeID], span{e.EventSignature, *e.EventStart, *e.EventEnd})
        }
    }
    return report, nil
}

// CleanupOrphans removes roster entries whose order or attendee no longer
// exists.  This is the only path besides placeholder supersession that
// destroys entries, and it only runs when explicitly invoked.
func (o *Orchestrator) CleanupOrphans(ctx context.Context) (int64, error) {
    entries, err := o.roster.All(ctx)
    if err != nil {
        return 0, err
    }
    orderSeen := make(map[uint64]bool)
    attendeeSeen := make(map[uint64]bool)
    var orphanIDs []uint64

    for _, e := range entries {
        if e.Placeholder {
            continue
        }
        orderOK, ok := orderSeen[e.OrderID]
        if !ok {
            _, err := o.orders.OrderByID(ctx, e.OrderID)
            switch {
            case err == nil:
                orderOK = true
            case errors.Is(err, ErrOrderNotFound):
                orderOK = false
            default:
                return 0, err
            }
            orderSeen[e.OrderID] = orderOK
        }
        attendeeOK, ok := attendeeSeen[e.AttendeeID]
        if !ok {
            _, err := o.players.AttendeeByID(ctx, e.AttendeeID)
            switch {
            case err == nil:
                attendeeOK = true
            case errors.Is(err, ErrAttendeeNotFound):
                attendeeOK = false
            default:
                return 0, err
            }
            attendeeSeen[e.AttendeeID] = attendeeOK
        }
        if !orderOK || !attendeeOK {
            orphanIDs = append(orphanIDs, e.ID)
        }
    }
    if len(orphanIDs) == 0 {
        return 0, nil
    }
    return o.roster.DeleteWhere(ctx, RosterFilter{IDs: orphanIDs})
}

func shortSig(sig string) string {
    if len(sig) > 12 {
        return sig[:12]
    }
    return sig
}
