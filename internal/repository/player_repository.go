package repository

import (
    "context"
    "database/sql"

    "github.com/activekidz/roster-resolution/internal/model"
    "github.com/activekidz/roster-resolution/internal/resolution"
)

// PlayerRepo is the MySQL player directory: the ordered attendee profiles
// of each household.  Read-only to the pipeline.
type PlayerRepo struct {
    db *sql.DB
}

// NewPlayerRepo returns a PlayerRepo bound to the given database.
func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: db} }

const attendeeColumns = `id, household_id, slot, first_name, last_name, date_of_birth, gender, medical, dietary, emergency_tel`

// HouseholdAttendees returns the household's attendee profiles in slot
// order.  Returns resolution.ErrHouseholdNotFound when the household
// itself does not exist; a household with no children yields an empty
// slice, which the orchestrator treats as an order failure.
func (r *PlayerRepo) HouseholdAttendees(ctx context.Context, householdID uint64) ([]model.AttendeeProfile, error) {
    var exists bool
    err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM households WHERE id = ?)`, householdID).Scan(&exists)
    if err != nil {
        return nil, err
    }
    if !exists {
        return nil, resolution.ErrHouseholdNotFound
    }

    q := `SELECT ` + attendeeColumns + ` FROM attendees WHERE household_id = ? ORDER BY slot`
    rows, err := r.db.QueryContext(ctx, q, householdID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    attendees := make([]model.AttendeeProfile, 0)
    for rows.Next() {
        a, err := scanAttendee(rows)
        if err != nil {
            return nil, err
        }
        attendees = append(attendees, *a)
    }
    return attendees, rows.Err()
}

// AttendeeByID loads a single profile, or resolution.ErrAttendeeNotFound.
func (r *PlayerRepo) AttendeeByID(ctx context.Context, id uint64) (*model.AttendeeProfile, error) {
    q := `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = ?`
    a, err := scanAttendee(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, resolution.ErrAttendeeNotFound
    }
    if err != nil {
        return nil, err
    }
    return a, nil
}

func scanAttendee(row rowScanner) (*model.AttendeeProfile, error) {
    var a model.AttendeeProfile
    var medical, dietary, emergency sql.NullString
    err := row.Scan(&a.ID, &a.HouseholdID, &a.Slot, &a.FirstName, &a.LastName,
        &a.DateOfBirth, &a.Gender, &medical, &dietary, &emergency)
    if err != nil {
        return nil, err
    }
    if medical.Valid {
        v := medical.String
        a.Medical = &v
    }
    if dietary.Valid {
        v := dietary.String
        a.Dietary = &v
    }
    if emergency.Valid {
        v := emergency.String
        a.EmergencyTel = &v
    }
    return &a, nil
}
