// Package signature computes the deterministic event identity hash used to
// group roster entries.  The signature is a SHA-256 digest over the
// canonical field tuple of an event descriptor, so two purchases of the
// same real-world event hash identically regardless of storefront language
// or which purchasable variant sold them.
package signature

import (
    "crypto/sha256"
    "encoding/hex"
    "strconv"
    "strings"

    "github.com/activekidz/roster-resolution/internal/model"
)

// delimiter joins canonical fields.  It never appears in normalized values
// because slugs and synonym outputs are restricted to [a-z0-9 -:].
const delimiter = "|"

// Generator normalizes descriptor fields into a canonical tuple and hashes
// it.  Construct with NewGenerator; the zero value is not usable.
type Generator struct {
    terms  TermRegistry
    tables Tables
}

// NewGenerator returns a Generator backed by the given term registry and
// lookup tables.
func NewGenerator(terms TermRegistry, tables Tables) *Generator {
    return &Generator{terms: terms, tables: tables}
}

// Generate returns the signature for a descriptor, or the empty string when
// normalization fails internally.  Callers must treat an empty signature as
// "unsignable" and skip the item: the empty string is never a valid
// grouping key, since grouping on it would collapse unrelated events.
func (g *Generator) Generate(d model.EventDescriptor) (sig string) {
    defer func() {
        if r := recover(); r != nil {
            sig = ""
        }
    }()
    fields := []string{
        g.normalizeActivity(d.ActivityType),
        g.lookupTerm("venue", d.Venue),
        g.lookupTerm("age_group", d.AgeGroup),
        lowerTrim(d.TermOrWeekday),
        strings.ReplaceAll(d.TimeRange, " ", ""),
        g.normalizeSeason(d.Season),
        boolField(d.GirlsOnly),
        strconv.FormatUint(d.CatalogEntryID, 10),
    }
    sum := sha256.Sum256([]byte(strings.Join(fields, delimiter)))
    return hex.EncodeToString(sum[:])
}

// normalizeActivity lower-cases the raw value and maps it through the
// activity synonym table, so "Camp", "Lager" and "Campeggio" all normalize
// to "camp".  Unknown values pass through lower-cased.
func (g *Generator) normalizeActivity(raw string) string {
    v := lowerTrim(raw)
    if canonical, ok := g.tables.ActivitySynonyms[v]; ok {
        return canonical
    }
    return v
}

// lookupTerm resolves a taxonomy value to its canonical slug.  The lookup
// is tried against the canonical language first and then against each
// display language, covering values recorded in whichever storefront
// language the purchase happened in.  When every lookup misses the raw
// value is slugified so the signature stays stable for ad-hoc terms.
func (g *Generator) lookupTerm(taxonomy, raw string) string {
    if strings.TrimSpace(raw) == "" {
        return ""
    }
    if slug, ok := g.terms.Resolve(taxonomy, raw, g.tables.CanonicalLang); ok {
        return slug
    }
    for _, lang := range g.tables.Langs {
        if slug, ok := g.terms.Resolve(taxonomy, raw, lang); ok {
            return slug
        }
    }
    return Slugify(raw)
}

// normalizeSeason translates the season word through the season table and
// preserves a trailing 4-digit year, so "Été 2025" and "Summer 2025" both
// normalize to "summer 2025".
func (g *Generator) normalizeSeason(raw string) string {
    words := strings.Fields(lowerTrim(raw))
    out := make([]string, 0, len(words))
    for _, w := range words {
        if canonical, ok := g.tables.SeasonNames[w]; ok {
            out = append(out, canonical)
            continue
        }
        if len(w) == 4 && isDigits(w) {
            out = append(out, w)
        }
    }
    if len(out) == 0 {
        return lowerTrim(raw)
    }
    return strings.Join(out, " ")
}

// Slugify reduces a raw string to a lower-case slug: runs of anything that
// is not a letter or digit collapse to a single hyphen.
func Slugify(raw string) string {
    var b strings.Builder
    lastHyphen := true
    for _, r := range strings.ToLower(raw) {
        switch {
        case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
            b.WriteRune(r)
            lastHyphen = false
        default:
            if !lastHyphen {
                b.WriteByte('-')
                lastHyphen = true
            }
        }
    }
    return strings.TrimRight(b.String(), "-")
}

func boolField(b bool) string {
    if b {
        return "1"
    }
    return "0"
}

func lowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isDigits(s string) bool {
    for _, r := range s {
        if r < '0' || r > '9' {
            return false
        }
    }
    return len(s) > 0
}
