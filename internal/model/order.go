package model

import "time"

// Order represents a purchase placed by a household against the activity
// catalog.  Orders are owned by the external order store and read-only to
// the resolution pipeline except for the assigned-attendee annotation on
// individual items.
//
// Fields:
//  ID         – primary key identifier.
//  CustomerID – household (buyer account) that placed the order.
//  Status     – order state (PENDING, PAID, COMPLETED, CANCELLED).
//  PlacedAt   – when the order was placed.
//  Items      – purchased line items.
type Order struct {
    ID         uint64      // orders.id
    CustomerID uint64      // orders.customer_id
    Status     string      // orders.status
    PlacedAt   time.Time   // orders.placed_at
    Items      []OrderItem // order_items rows for this order
}

// OrderItem is a purchased unit within an order.  It references a catalog
// entry and optionally one of its purchasable variants, carries a quantity
// and the attribute bag captured at purchase time.  Immutable once read,
// except for the assigned-attendee annotation written back by manual
// assignment flows.
//
// Fields:
//  ID             – primary key identifier.
//  OrderID        – owning order.
//  CatalogEntryID – parent catalog entry purchased.
//  VariantID      – specific purchasable variant (nil when none).
//  Quantity       – number of slots purchased.
//  Attributes     – key/value attributes attached at purchase time.
type OrderItem struct {
    ID             uint64       // order_items.id
    OrderID        uint64       // order_items.order_id
    CatalogEntryID uint64       // order_items.catalog_entry_id
    VariantID      *uint64      // order_items.variant_id (nullable)
    Quantity       int          // order_items.quantity
    Attributes     AttributeBag // order_item_attributes rows
}
