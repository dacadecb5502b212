package signature

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/activekidz/roster-resolution/internal/model"
)

func testTerms() []model.TaxonomyTerm {
    return []model.TaxonomyTerm{
        {Taxonomy: "venue", Slug: "stade-de-varembe", Name: "Stade de Varembé", Lang: "en"},
        {Taxonomy: "venue", Slug: "stade-de-varembe", Name: "Stade de Varembé", Lang: "fr"},
        {Taxonomy: "venue", Slug: "stade-de-varembe", Name: "Varembé Stadion", Lang: "de"},
        {Taxonomy: "age_group", Slug: "5-13", Name: "5-13y (Full Day)", Lang: "en"},
        {Taxonomy: "age_group", Slug: "5-13", Name: "5-13J (Ganztags)", Lang: "de"},
    }
}

func newTestGenerator() *Generator {
    return NewGenerator(NewTermTable(testTerms()), DefaultTables())
}

func campDescriptor() model.EventDescriptor {
    return model.EventDescriptor{
        Kind:           model.KindCamp,
        ActivityType:   "Camp",
        Venue:          "Stade de Varembé",
        AgeGroup:       "5-13y (Full Day)",
        Season:         "Summer 2025",
        TermOrWeekday:  "Week 1",
        TimeRange:      "09:00-17:00",
        CatalogEntryID: 42,
    }
}

func TestGenerateDeterministic(t *testing.T) {
    g := newTestGenerator()
    d := campDescriptor()

    first := g.Generate(d)
    second := g.Generate(d)

    require.NotEmpty(t, first)
    assert.Len(t, first, 64, "sha-256 hex digest")
    assert.Equal(t, first, second)
}

func TestGenerateLocaleInvariance(t *testing.T) {
    g := newTestGenerator()

    english := campDescriptor()

    german := campDescriptor()
    german.ActivityType = "Lager"
    german.Venue = "Varembé Stadion"
    german.AgeGroup = "5-13J (Ganztags)"
    german.Season = "Sommer 2025"

    french := campDescriptor()
    french.ActivityType = "Camp"
    french.Season = "Été 2025"

    want := g.Generate(english)
    require.NotEmpty(t, want)
    assert.Equal(t, want, g.Generate(german), "German storefront values hash identically")
    assert.Equal(t, want, g.Generate(french), "French storefront values hash identically")
}

func TestGenerateFieldSensitivity(t *testing.T) {
    g := newTestGenerator()
    base := g.Generate(campDescriptor())
    require.NotEmpty(t, base)

    mutations := map[string]func(*model.EventDescriptor){
        "activity":  func(d *model.EventDescriptor) { d.ActivityType = "Tournament" },
        "venue":     func(d *model.EventDescriptor) { d.Venue = "Sportzentrum Zürich" },
        "age group": func(d *model.EventDescriptor) { d.AgeGroup = "8-16y" },
        "term":      func(d *model.EventDescriptor) { d.TermOrWeekday = "Week 2" },
        "time":      func(d *model.EventDescriptor) { d.TimeRange = "09:00-12:00" },
        "season":    func(d *model.EventDescriptor) { d.Season = "Autumn 2025" },
        "girls":     func(d *model.EventDescriptor) { d.GirlsOnly = true },
        "entry":     func(d *model.EventDescriptor) { d.CatalogEntryID = 43 },
    }
    for name, mutate := range mutations {
        d := campDescriptor()
        mutate(&d)
        assert.NotEqual(t, base, g.Generate(d), "changing %s must change the signature", name)
    }
}

func TestGenerateCosmeticInvariance(t *testing.T) {
    g := newTestGenerator()
    base := g.Generate(campDescriptor())

    d := campDescriptor()
    d.ActivityType = "  CAMP "
    d.TermOrWeekday = "WEEK 1"
    d.TimeRange = "09:00 - 17:00"
    assert.Equal(t, base, g.Generate(d))
}

func TestGenerateSlugFallback(t *testing.T) {
    g := newTestGenerator()

    // A venue the registry does not know in any language still signs
    // stably through slugification.
    d := campDescriptor()
    d.Venue = "Pavillon des Sports, 1202 Genève"
    first := g.Generate(d)
    second := g.Generate(d)
    require.NotEmpty(t, first)
    assert.Equal(t, first, second)
    assert.NotEqual(t, g.Generate(campDescriptor()), first)
}

func TestSlugify(t *testing.T) {
    cases := map[string]string{
        "Stade de Varembé":       "stade-de-varemb",
        "  Multi   Sports! 2025": "multi-sports-2025",
        "---":                    "",
        "Zürich":                 "z-rich",
    }
    for in, want := range cases {
        assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
    }
}

func TestNormalizeSeason(t *testing.T) {
    g := newTestGenerator()
    cases := map[string]string{
        "Summer 2025":  "summer 2025",
        "Sommer 2025":  "summer 2025",
        "Été 2025":     "summer 2025",
        "Herbst":       "autumn",
        "Fall 2024":    "autumn 2024",
        "Saison speciale": "saison speciale", // no season word, raw passthrough
    }
    for in, want := range cases {
        assert.Equal(t, want, g.normalizeSeason(in), "normalizeSeason(%q)", in)
    }
}

func TestTermTableResolve(t *testing.T) {
    table := NewTermTable(testTerms())

    slug, ok := table.Resolve("venue", "varembé stadion", "de")
    require.True(t, ok)
    assert.Equal(t, "stade-de-varembe", slug)

    _, ok = table.Resolve("venue", "varembé stadion", "en")
    assert.False(t, ok, "name is only registered under de")

    _, ok = table.Resolve("season", "anything", "en")
    assert.False(t, ok)
}
