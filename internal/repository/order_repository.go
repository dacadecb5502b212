package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/activekidz/roster-resolution/internal/model"
    "github.com/activekidz/roster-resolution/internal/resolution"
)

// OrderRepo is the MySQL order store.  Orders and their line items are
// read-only to the pipeline; the single write path is the
// assigned-attendee annotation on a line item.  All timestamp fields are
// stored in UTC.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderByID loads one order with its line items and their attribute bags.
// Returns resolution.ErrOrderNotFound when no such order exists.
func (r *OrderRepo) OrderByID(ctx context.Context, id uint64) (*model.Order, error) {
    const q = `SELECT id, customer_id, status, placed_at FROM orders WHERE id = ?`
    var o model.Order
    err := r.db.QueryRowContext(ctx, q, id).Scan(&o.ID, &o.CustomerID, &o.Status, &o.PlacedAt)
    if err == sql.ErrNoRows {
        return nil, resolution.ErrOrderNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadItems(ctx, []*model.Order{&o}); err != nil {
        return nil, err
    }
    return &o, nil
}

// OrdersPage returns one page of orders matching the filter, ordered by
// ID so paging is stable across the run.  Items and attributes are
// loaded for the whole page in two follow-up queries.
func (r *OrderRepo) OrdersPage(ctx context.Context, f resolution.OrderFilter) ([]model.Order, error) {
    q := `SELECT id, customer_id, status, placed_at FROM orders`
    var conds []string
    var args []interface{}
    if len(f.Statuses) > 0 {
        placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Statuses)), ",")
        conds = append(conds, "status IN ("+placeholders+")")
        for _, s := range f.Statuses {
            args = append(args, s)
        }
    }
    if f.From != nil {
        conds = append(conds, "placed_at >= ?")
        args = append(args, f.From.UTC())
    }
    if f.To != nil {
        conds = append(conds, "placed_at < ?")
        args = append(args, f.To.UTC())
    }
    if len(conds) > 0 {
        q += " WHERE " + strings.Join(conds, " AND ")
    }
    q += " ORDER BY id LIMIT ? OFFSET ?"
    args = append(args, f.Limit, f.Offset)

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    orders := make([]model.Order, 0)
    for rows.Next() {
        var o model.Order
        if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.PlacedAt); err != nil {
            return nil, err
        }
        orders = append(orders, o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    refs := make([]*model.Order, len(orders))
    for i := range orders {
        refs[i] = &orders[i]
    }
    if err := r.loadItems(ctx, refs); err != nil {
        return nil, err
    }
    return orders, nil
}

// SetAssignedAttendee writes the assigned-attendee annotation back onto a
// line item.  The annotation is stored as a regular item attribute so the
// matcher's name strategy picks it up on the next resolution.
func (r *OrderRepo) SetAssignedAttendee(ctx context.Context, itemID uint64, name string) error {
    const q = `INSERT INTO order_item_attributes (order_item_id, attr_key, attr_kind, attr_value)
               VALUES (?, 'assigned_attendee', 'string', ?)
               ON DUPLICATE KEY UPDATE attr_value = VALUES(attr_value)`
    _, err := r.db.ExecContext(ctx, q, itemID, name)
    return err
}

// loadItems populates Items (with attribute bags) for all given orders in
// two queries: one for the items of the page, one for their attributes.
func (r *OrderRepo) loadItems(ctx context.Context, orders []*model.Order) error {
    if len(orders) == 0 {
        return nil
    }
    index := make(map[uint64]*model.Order, len(orders))
    ids := make([]interface{}, 0, len(orders))
    placeholders := make([]string, 0, len(orders))
    for _, o := range orders {
        o.Items = []model.OrderItem{}
        index[o.ID] = o
        ids = append(ids, o.ID)
        placeholders = append(placeholders, "?")
    }

    itemQ := `SELECT id, order_id, catalog_entry_id, variant_id, quantity
              FROM order_items
              WHERE order_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY order_id, id`
    rows, err := r.db.QueryContext(ctx, itemQ, ids...)
    if err != nil {
        return err
    }
    defer rows.Close()

    itemIndex := make(map[uint64]*model.OrderItem)
    var itemIDs []interface{}
    var itemPlaceholders []string
    for rows.Next() {
        var it model.OrderItem
        var variantID sql.NullInt64
        if err := rows.Scan(&it.ID, &it.OrderID, &it.CatalogEntryID, &variantID, &it.Quantity); err != nil {
            return err
        }
        if variantID.Valid {
            vid := uint64(variantID.Int64)
            it.VariantID = &vid
        }
        it.Attributes = model.AttributeBag{}
        o := index[it.OrderID]
        o.Items = append(o.Items, it)
        itemIndex[it.ID] = &o.Items[len(o.Items)-1]
        itemIDs = append(itemIDs, it.ID)
        itemPlaceholders = append(itemPlaceholders, "?")
    }
    if err := rows.Err(); err != nil {
        return err
    }
    if len(itemIDs) == 0 {
        return nil
    }

    attrQ := `SELECT order_item_id, attr_key, attr_kind, attr_value
              FROM order_item_attributes
              WHERE order_item_id IN (` + strings.Join(itemPlaceholders, ",") + `)`
    arows, err := r.db.QueryContext(ctx, attrQ, itemIDs...)
    if err != nil {
        return err
    }
    defer arows.Close()
    for arows.Next() {
        var itemID uint64
        var key, kind, value string
        if err := arows.Scan(&itemID, &key, &kind, &value); err != nil {
            return err
        }
        if it, ok := itemIndex[itemID]; ok {
            it.Attributes[key] = decodeAttr(kind, value)
        }
    }
    return arows.Err()
}

// decodeAttr rebuilds a tagged attribute value from its stored kind and
// text representation.
func decodeAttr(kind, value string) model.AttributeValue {
    switch kind {
    case "int":
        return model.IntAttr(model.StringAttr(value).AsInt())
    case "bool":
        return model.BoolAttr(model.StringAttr(value).AsBool())
    default:
        return model.StringAttr(value)
    }
}

