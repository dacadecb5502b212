package signature

// Lookup tables used when normalizing descriptor fields.  The tables are
// injected at construction so deployments can extend them per storefront
// without touching package state.

import "github.com/activekidz/roster-resolution/internal/model"

// TermRegistry resolves a display-language taxonomy term to its canonical,
// language-independent slug.  The catalog service's term registry is the
// production implementation; tests use an in-memory table.
type TermRegistry interface {
    Resolve(taxonomy, name, lang string) (string, bool)
}

// Tables bundles the language configuration and synonym maps of a
// generator.  CanonicalLang is the registry's canonical language; Langs
// lists the display languages tried when a canonical lookup misses.
type Tables struct {
    CanonicalLang    string
    Langs            []string
    ActivitySynonyms map[string]string
    SeasonNames      map[string]string
}

// DefaultTables returns the synonym tables for the languages the platform
// sells in (English, German, French, Italian).
func DefaultTables() Tables {
    return Tables{
        CanonicalLang: "en",
        Langs:         []string{"de", "fr", "it"},
        ActivitySynonyms: map[string]string{
            "camp":         "camp",
            "lager":        "camp",
            "ferienlager":  "camp",
            "campeggio":    "camp",
            "course":       "course",
            "kurs":         "course",
            "cours":        "course",
            "corso":        "course",
            "birthday":     "birthday",
            "geburtstag":   "birthday",
            "anniversaire": "birthday",
            "compleanno":   "birthday",
            "tournament":   "tournament",
            "turnier":      "tournament",
            "tournoi":      "tournament",
            "torneo":       "tournament",
        },
        SeasonNames: map[string]string{
            "spring":    "spring",
            "frühling":  "spring",
            "fruehling": "spring",
            "printemps": "spring",
            "primavera": "spring",
            "summer":    "summer",
            "sommer":    "summer",
            "été":       "summer",
            "ete":       "summer",
            "estate":    "summer",
            "autumn":    "autumn",
            "fall":      "autumn",
            "herbst":    "autumn",
            "automne":   "autumn",
            "autunno":   "autumn",
            "winter":    "winter",
            "hiver":     "winter",
            "inverno":   "winter",
        },
    }
}

// TermTable is an in-memory TermRegistry backed by a slice of taxonomy
// terms, typically preloaded from the catalog service at startup.
type TermTable struct {
    slugs map[termKey]string
}

type termKey struct {
    taxonomy string
    lang     string
    name     string
}

// NewTermTable indexes the given terms by (taxonomy, lang, lower-cased name).
func NewTermTable(terms []model.TaxonomyTerm) *TermTable {
    t := &TermTable{slugs: make(map[termKey]string, len(terms))}
    for _, term := range terms {
        t.slugs[termKey{term.Taxonomy, term.Lang, lowerTrim(term.Name)}] = term.Slug
    }
    return t
}

// Resolve implements TermRegistry.
func (t *TermTable) Resolve(taxonomy, name, lang string) (string, bool) {
    slug, ok := t.slugs[termKey{taxonomy, lang, lowerTrim(name)}]
    return slug, ok
}
