package model

import "time"

// CatalogEntry is a bookable event listed in the activity catalog: a camp,
// a course, a tournament or a birthday party.  Entries are owned by the
// external catalog service and read-only to the resolution pipeline.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title (storefront language).
//  Description – free-text description, used for pattern extraction.
//  Attributes  – structured attribute bag of the entry.
//  Variants    – purchasable variants of the entry.
type CatalogEntry struct {
    ID          uint64       // catalog_entries.id
    Title       string       // catalog_entries.title
    Description string       // catalog_entries.description
    Attributes  AttributeBag // catalog_entry_attributes rows
    Variants    []Variant    // variants of this entry
}

// Variant is a specific purchasable configuration of a catalog entry, for
// example one camp week or one course term.  Variant attributes take
// precedence over the parent entry's attributes during extraction.
//
// Fields:
//  ID             – primary key identifier.
//  CatalogEntryID – parent catalog entry.
//  Title          – variant display title.
//  Capacity       – bookable slots on this variant.
//  StartsAt       – event start (nil when not scheduled).
//  EndsAt         – event end (nil when not scheduled).
//  Attributes     – variant-level attribute bag.
type Variant struct {
    ID             uint64       // variants.id
    CatalogEntryID uint64       // variants.catalog_entry_id
    Title          string       // variants.title
    Capacity       int          // variants.capacity
    StartsAt       *time.Time   // variants.starts_at (nullable)
    EndsAt         *time.Time   // variants.ends_at (nullable)
    Attributes     AttributeBag // variant_attributes rows
}

// TaxonomyTerm is one entry of the catalog's term registry.  Terms carry a
// language-independent slug plus one display name per language; venue and
// age-group values are resolved against this registry when computing event
// signatures.
//
// Fields:
//  Taxonomy – taxonomy the term belongs to (venue, age_group, region).
//  Slug     – canonical, language-independent identifier.
//  Name     – display name in Lang.
//  Lang     – two-letter language code of Name.
type TaxonomyTerm struct {
    Taxonomy string // taxonomy_terms.taxonomy
    Slug     string // taxonomy_terms.slug
    Name     string // taxonomy_terms.name
    Lang     string // taxonomy_terms.lang
}
