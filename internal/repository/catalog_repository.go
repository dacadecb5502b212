package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/activekidz/roster-resolution/internal/model"
    "github.com/activekidz/roster-resolution/internal/resolution"
)

// CatalogRepo is the MySQL catalog service: bookable entries, their
// purchasable variants and the taxonomy term registry.  Read-only to the
// pipeline.
type CatalogRepo struct {
    db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// EntryByID loads a catalog entry with its attribute bag and variants.
// Returns resolution.ErrEntryNotFound when no such entry exists.
func (r *CatalogRepo) EntryByID(ctx context.Context, id uint64) (*model.CatalogEntry, error) {
    const q = `SELECT id, title, description FROM catalog_entries WHERE id = ?`
    var e model.CatalogEntry
    err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Title, &e.Description)
    if err == sql.ErrNoRows {
        return nil, resolution.ErrEntryNotFound
    }
    if err != nil {
        return nil, err
    }
    e.Attributes, err = r.loadAttrs(ctx, "catalog_entry_attributes", "catalog_entry_id", e.ID)
    if err != nil {
        return nil, err
    }
    if e.Variants, err = r.variantsOf(ctx, e.ID); err != nil {
        return nil, err
    }
    return &e, nil
}

// VariantByID loads one variant with its attribute bag.  Returns
// resolution.ErrVariantNotFound when no such variant exists.
func (r *CatalogRepo) VariantByID(ctx context.Context, id uint64) (*model.Variant, error) {
    const q = `SELECT id, catalog_entry_id, title, capacity, starts_at, ends_at FROM variants WHERE id = ?`
    v, err := r.scanVariant(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, resolution.ErrVariantNotFound
    }
    if err != nil {
        return nil, err
    }
    v.Attributes, err = r.loadAttrs(ctx, "variant_attributes", "variant_id", v.ID)
    if err != nil {
        return nil, err
    }
    return v, nil
}

// LoadTerms returns the full taxonomy term registry, used to build the
// in-memory term table the signature generator resolves against.
func (r *CatalogRepo) LoadTerms(ctx context.Context) ([]model.TaxonomyTerm, error) {
    const q = `SELECT taxonomy, slug, name, lang FROM taxonomy_terms`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    terms := make([]model.TaxonomyTerm, 0)
    for rows.Next() {
        var t model.TaxonomyTerm
        if err := rows.Scan(&t.Taxonomy, &t.Slug, &t.Name, &t.Lang); err != nil {
            return nil, err
        }
        terms = append(terms, t)
    }
    return terms, rows.Err()
}

// KnownVenues returns the canonical-language venue names for the
// extractor's known-venues table.
func (r *CatalogRepo) KnownVenues(ctx context.Context, canonicalLang string) ([]string, error) {
    const q = `SELECT name FROM taxonomy_terms WHERE taxonomy = 'venue' AND lang = ? ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q, canonicalLang)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    venues := make([]string, 0)
    for rows.Next() {
        var name string
        if err := rows.Scan(&name); err != nil {
            return nil, err
        }
        venues = append(venues, name)
    }
    return venues, rows.Err()
}

func (r *CatalogRepo) variantsOf(ctx context.Context, entryID uint64) ([]model.Variant, error) {
    const q = `SELECT id, catalog_entry_id, title, capacity, starts_at, ends_at
               FROM variants WHERE catalog_entry_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, entryID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    variants := make([]model.Variant, 0)
    for rows.Next() {
        v, err := r.scanVariant(rows)
        if err != nil {
            return nil, err
        }
        variants = append(variants, *v)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range variants {
        variants[i].Attributes, err = r.loadAttrs(ctx, "variant_attributes", "variant_id", variants[i].ID)
        if err != nil {
            return nil, err
        }
    }
    return variants, nil
}

// rowScanner covers *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func (r *CatalogRepo) scanVariant(row rowScanner) (*model.Variant, error) {
    var v model.Variant
    var start, end sql.NullTime
    if err := row.Scan(&v.ID, &v.CatalogEntryID, &v.Title, &v.Capacity, &start, &end); err != nil {
        return nil, err
    }
    v.StartsAt = nullTimePtr(start)
    v.EndsAt = nullTimePtr(end)
    v.Attributes = model.AttributeBag{}
    return &v, nil
}

// loadAttrs reads one attribute table into a bag.  The table and owner
// column are fixed strings chosen by the callers, never user input.
func (r *CatalogRepo) loadAttrs(ctx context.Context, table, ownerCol string, ownerID uint64) (model.AttributeBag, error) {
    q := `SELECT attr_key, attr_kind, attr_value FROM ` + table + ` WHERE ` + ownerCol + ` = ?`
    rows, err := r.db.QueryContext(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bag := model.AttributeBag{}
    for rows.Next() {
        var key, kind, value string
        if err := rows.Scan(&key, &kind, &value); err != nil {
            return nil, err
        }
        bag[strings.ToLower(key)] = decodeAttr(kind, value)
    }
    return bag, rows.Err()
}
