package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/activekidz/roster-resolution/internal/model"
    "github.com/activekidz/roster-resolution/internal/resolution"
)

// sqlRunner covers *sql.DB and *sql.Tx so the same queries serve both the
// plain store and its transaction-scoped view.
type sqlRunner interface {
    ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// RosterRepo is the MySQL roster store.  The roster_entries table carries
// a unique key on (order_id, order_item_id, attendee_slot) so the store's
// single-row atomicity prevents duplicate rows even if two runs race.
type RosterRepo struct {
    db  *sql.DB   // nil on a transaction-scoped view
    run sqlRunner // db, or the enclosing transaction
}

// NewRosterRepo returns a RosterRepo bound to the given database.
func NewRosterRepo(db *sql.DB) *RosterRepo { return &RosterRepo{db: db, run: db} }

const rosterColumns = `id, order_id, order_item_id, attendee_slot, attendee_id,
    first_name, last_name, date_of_birth, event_signature, event_kind,
    venue, age_group, season, event_start, event_end, placeholder,
    created_at, updated_at`

// FindByKey returns the entry for the unique key, or nil when absent.
func (r *RosterRepo) FindByKey(ctx context.Context, orderID, itemID uint64, slot int) (*model.RosterEntry, error) {
    q := `SELECT ` + rosterColumns + ` FROM roster_entries
          WHERE order_id = ? AND order_item_id = ? AND attendee_slot = ? LIMIT 1`
    e, err := scanRosterEntry(r.run.QueryRowContext(ctx, q, orderID, itemID, slot))
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return e, nil
}

// Insert creates a new entry and populates the generated ID.
func (r *RosterRepo) Insert(ctx context.Context, e *model.RosterEntry) error {
    const q = `INSERT INTO roster_entries
        (order_id, order_item_id, attendee_slot, attendee_id, first_name, last_name,
         date_of_birth, event_signature, event_kind, venue, age_group, season,
         event_start, event_end, placeholder)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
    res, err := r.run.ExecContext(ctx, q,
        e.OrderID, e.OrderItemID, e.AttendeeSlot, e.AttendeeID, e.FirstName, e.LastName,
        nullableDate(e.DateOfBirth), e.EventSignature, string(e.EventKind), e.Venue, e.AgeGroup, e.Season,
        nullableTime(e.EventStart), nullableTime(e.EventEnd), e.Placeholder)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// Update overwrites the mutable fields of an existing entry in place.
// The key triple is never rewritten.
func (r *RosterRepo) Update(ctx context.Context, e *model.RosterEntry) error {
    const q = `UPDATE roster_entries SET
        attendee_id = ?, first_name = ?, last_name = ?, date_of_birth = ?,
        event_signature = ?, event_kind = ?, venue = ?, age_group = ?, season = ?,
        event_start = ?, event_end = ?, placeholder = ?
        WHERE id = ?`
    _, err := r.run.ExecContext(ctx, q,
        e.AttendeeID, e.FirstName, e.LastName, nullableDate(e.DateOfBirth),
        e.EventSignature, string(e.EventKind), e.Venue, e.AgeGroup, e.Season,
        nullableTime(e.EventStart), nullableTime(e.EventEnd), e.Placeholder, e.ID)
    return err
}

// DeleteWhere removes entries matching the filter.  An empty filter
// removes every non-placeholder entry (the clear-existing path).
func (r *RosterRepo) DeleteWhere(ctx context.Context, f resolution.RosterFilter) (int64, error) {
    q := `DELETE FROM roster_entries`
    var conds []string
    var args []interface{}
    if f.OrderID != nil {
        conds = append(conds, "order_id = ?")
        args = append(args, *f.OrderID)
    }
    if f.OrderItemID != nil {
        conds = append(conds, "order_item_id = ?")
        args = append(args, *f.OrderItemID)
    }
    if f.EventSignature != nil {
        conds = append(conds, "event_signature = ?")
        args = append(args, *f.EventSignature)
    }
    if f.PlaceholderOnly {
        conds = append(conds, "placeholder = 1")
    }
    if len(f.IDs) > 0 {
        placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.IDs)), ",")
        conds = append(conds, "id IN ("+placeholders+")")
        for _, id := range f.IDs {
            args = append(args, id)
        }
    }
    if len(conds) == 0 {
        conds = append(conds, "placeholder = 0")
    }
    q += " WHERE " + strings.Join(conds, " AND ")
    res, err := r.run.ExecContext(ctx, q, args...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// All returns every persisted entry, placeholders included, ordered by ID
// for deterministic integrity reports.
func (r *RosterRepo) All(ctx context.Context) ([]model.RosterEntry, error) {
    q := `SELECT ` + rosterColumns + ` FROM roster_entries ORDER BY id`
    rows, err := r.run.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    entries := make([]model.RosterEntry, 0)
    for rows.Next() {
        e, err := scanRosterEntry(rows)
        if err != nil {
            return nil, err
        }
        entries = append(entries, *e)
    }
    return entries, rows.Err()
}

// RunInTransaction executes fn against a transaction-scoped view of the
// store.  A non-nil error from fn rolls the transaction back.  Nested
// calls reuse the enclosing transaction.
func (r *RosterRepo) RunInTransaction(ctx context.Context, fn func(resolution.RosterStore) error) error {
    if r.db == nil {
        return fn(r)
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&RosterRepo{run: tx}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func scanRosterEntry(row rowScanner) (*model.RosterEntry, error) {
    var e model.RosterEntry
    var kind string
    var dob, start, end sql.NullTime
    err := row.Scan(&e.ID, &e.OrderID, &e.OrderItemID, &e.AttendeeSlot, &e.AttendeeID,
        &e.FirstName, &e.LastName, &dob, &e.EventSignature, &kind,
        &e.Venue, &e.AgeGroup, &e.Season, &start, &end, &e.Placeholder,
        &e.CreatedAt, &e.UpdatedAt)
    if err != nil {
        return nil, err
    }
    e.EventKind = model.EventKind(kind)
    if dob.Valid {
        e.DateOfBirth = dob.Time.UTC()
    }
    e.EventStart = nullTimePtr(start)
    e.EventEnd = nullTimePtr(end)
    return &e, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
    if !t.Valid {
        return nil
    }
    u := t.Time.UTC()
    return &u
}

func nullableTime(t *time.Time) interface{} {
    if t == nil {
        return nil
    }
    return t.UTC()
}

func nullableDate(t time.Time) interface{} {
    if t.IsZero() {
        return nil
    }
    return t.UTC().Format("2006-01-02")
}
