package resolution

import (
    "fmt"
    "regexp"
    "strings"

    "github.com/activekidz/roster-resolution/internal/model"
)

// Attribute keys vary by storefront language; each canonical field lists
// every key variant it may arrive under.
var (
    venueKeys    = []string{"venue", "location", "standort", "ort", "lieu", "luogo"}
    ageGroupKeys = []string{"age_group", "age-group", "age", "alter", "âge", "eta"}
    seasonKeys   = []string{"season", "saison", "stagione"}
    activityKeys = []string{"activity_type", "activity", "type", "aktivität", "activité"}
    bookingKeys  = []string{"booking_type", "booking", "buchungsart"}
    weekdayKeys  = []string{"weekday", "day", "wochentag", "jour", "giorno"}
    termKeys     = []string{"camp_term", "term", "week", "woche", "semaine"}
    timeKeys     = []string{"time_range", "time", "times", "zeit", "horaire", "orario"}
    girlsKeys    = []string{"girls_only", "girls", "mädchen", "filles"}
)

var (
    ageRangeRe  = regexp.MustCompile(`(\d{1,2})\s*[-–]\s*(\d{1,2})\s*(?:y|yo|years?|ans?|jahre?|anni)?`)
    ageSuffixRe = regexp.MustCompile(`\(([^)]+)\)`)
    timeRangeRe = regexp.MustCompile(`(\d{1,2}[:.]\d{2})\s*[-–]\s*(\d{1,2}[:.]\d{2})`)
    seasonRe    = regexp.MustCompile(`(?i)\b(spring|summer|autumn|fall|winter|frühling|sommer|été|herbst|automne|hiver|printemps|primavera|estate|autunno|inverno)\b(?:\s+(\d{4}))?`)
)

// KindPattern maps a regular expression over the normalized activity type
// to an event kind.  Patterns are evaluated in order; first match wins.
type KindPattern struct {
    Pattern *regexp.Regexp
    Kind    model.EventKind
}

// ExtractTables is the configuration of an Extractor: the known-venues
// list, synonym tables and classification patterns.  Injected at
// construction per deployment rather than held in package state.
type ExtractTables struct {
    // KnownVenues lists canonical venue names.  Raw venue strings are
    // matched by substring in both directions.
    KnownVenues []string
    // RegionSynonyms canonicalizes region/canton prefixes in venue strings.
    RegionSynonyms map[string]string
    // BookingTypeSynonyms reduces booking-type wording to "single-day",
    // "multi-day" or "term" for the kind fallback heuristic.
    BookingTypeSynonyms map[string]string
    // WeekdayNames expands weekday names and abbreviations in any sales
    // language to the canonical English day name.
    WeekdayNames map[string]string
    // KindPatterns classify the normalized activity type.
    KindPatterns []KindPattern
    // RequiredFields lists the descriptor fields an event kind cannot
    // resolve without.
    RequiredFields map[model.EventKind][]string
    // ActivityKeywords detect an activity type inside free text when no
    // structured attribute carries one.
    ActivityKeywords map[string]string
}

// DefaultExtractTables returns the tables for the platform's four sales
// languages and standard event kinds.
func DefaultExtractTables() ExtractTables {
    return ExtractTables{
        RegionSynonyms: map[string]string{
            "ge": "geneva", "genève": "geneva", "genf": "geneva", "ginevra": "geneva",
            "vd": "lausanne", "zh": "zurich", "zürich": "zurich", "zurigo": "zurich",
            "bs": "basel", "bâle": "basel", "basilea": "basel",
        },
        BookingTypeSynonyms: map[string]string{
            "single day": "single-day", "single-day": "single-day", "tagesbuchung": "single-day",
            "multi day": "multi-day", "multi-day": "multi-day", "week": "multi-day",
            "camp week": "multi-day", "wochenbuchung": "multi-day", "semaine": "multi-day",
            "term": "term", "semester": "term", "trimestre": "term", "quartal": "term",
        },
        WeekdayNames: map[string]string{
            "mon": "monday", "mo": "monday", "monday": "monday", "montag": "monday", "lundi": "monday", "lunedì": "monday",
            "tue": "tuesday", "di": "tuesday", "tuesday": "tuesday", "dienstag": "tuesday", "mardi": "tuesday", "martedì": "tuesday",
            "wed": "wednesday", "mi": "wednesday", "wednesday": "wednesday", "mittwoch": "wednesday", "mercredi": "wednesday", "mercoledì": "wednesday",
            "thu": "thursday", "do": "thursday", "thursday": "thursday", "donnerstag": "thursday", "jeudi": "thursday", "giovedì": "thursday",
            "fri": "friday", "fr": "friday", "friday": "friday", "freitag": "friday", "vendredi": "friday", "venerdì": "friday",
            "sat": "saturday", "sa": "saturday", "saturday": "saturday", "samstag": "saturday", "samedi": "saturday", "sabato": "saturday",
            "sun": "sunday", "so": "sunday", "sunday": "sunday", "sonntag": "sunday", "dimanche": "sunday", "domenica": "sunday",
        },
        KindPatterns: []KindPattern{
            {regexp.MustCompile(`camp|lager|campeggio`), model.KindCamp},
            {regexp.MustCompile(`course|kurs|cours|corso|training`), model.KindCourse},
            {regexp.MustCompile(`birthday|geburtstag|anniversaire|compleanno|party`), model.KindBirthday},
            {regexp.MustCompile(`tournament|turnier|tournoi|torneo|cup`), model.KindTournament},
        },
        RequiredFields: map[model.EventKind][]string{
            model.KindCamp:       {"venue", "age_group", "season", "camp_term"},
            model.KindCourse:     {"venue", "age_group", "season", "weekday"},
            model.KindBirthday:   {"venue"},
            model.KindTournament: {"venue", "season"},
        },
        ActivityKeywords: map[string]string{
            "camp": "camp", "lager": "camp", "ferienlager": "camp", "campeggio": "camp",
            "course": "course", "kurs": "course", "cours": "course", "corso": "course",
            "birthday": "birthday", "geburtstag": "birthday", "anniversaire": "birthday",
            "tournament": "tournament", "turnier": "tournament", "tournoi": "tournament",
        },
    }
}

// Extractor derives a normalized event descriptor from a purchased line
// item, its parent catalog entry and the purchased variant.
type Extractor struct {
    tables ExtractTables
}

// NewExtractor returns an Extractor using the given tables.
func NewExtractor(tables ExtractTables) *Extractor {
    return &Extractor{tables: tables}
}

// Extract resolves each descriptor field by precedence: line-item
// attribute, then variant attribute, then parent catalog attribute, then
// pattern extraction from the entry and variant titles.  A missing
// required field fails extraction with a typed reason; the caller skips
// the item and records it — a partial descriptor is never returned.
func (x *Extractor) Extract(item model.OrderItem, entry *model.CatalogEntry, variant *model.Variant) (model.EventDescriptor, error) {
    freeText := entry.Title + " " + entry.Description
    if variant != nil {
        freeText += " " + variant.Title
    }

    attr := func(keys []string) model.AttributeValue {
        if v := item.Attributes.First(keys...); !v.Missing() {
            return v
        }
        if variant != nil {
            if v := variant.Attributes.First(keys...); !v.Missing() {
                return v
            }
        }
        return entry.Attributes.First(keys...)
    }

    d := model.EventDescriptor{CatalogEntryID: entry.ID}
    if variant != nil {
        d.StartsAt = variant.StartsAt
        d.EndsAt = variant.EndsAt
    }

    d.ActivityType = x.normalizeActivity(attr(activityKeys).Text(), freeText)
    d.Venue = x.NormalizeVenue(attr(venueKeys).Text())
    d.AgeGroup = NormalizeAgeGroup(firstNonEmpty(attr(ageGroupKeys).Text(), extractPattern(ageRangeRe, freeText)))
    d.Season = firstNonEmpty(attr(seasonKeys).Text(), extractSeason(freeText))
    d.TimeRange = normalizeTimeRange(firstNonEmpty(attr(timeKeys).Text(), extractPattern(timeRangeRe, freeText)))
    d.GirlsOnly = attr(girlsKeys).AsBool() || containsAny(strings.ToLower(freeText), "girls only", "nur mädchen", "filles uniquement")

    bookingType := x.normalizeBookingType(attr(bookingKeys).Text())
    d.Kind = x.classify(d.ActivityType, bookingType)
    if d.Kind == model.KindUnknown {
        return model.EventDescriptor{}, &ExtractionError{ItemID: item.ID, Field: "activity_type", Reason: "event kind not recognized"}
    }
    if d.ActivityType == "" {
        d.ActivityType = string(d.Kind)
    }

    // Camps carry a term label, courses a weekday; both land in the same
    // descriptor field feeding the signature.
    switch d.Kind {
    case model.KindCamp:
        d.TermOrWeekday = strings.ToLower(strings.TrimSpace(firstNonEmpty(attr(termKeys).Text(), variantTitle(variant))))
    default:
        d.TermOrWeekday = x.NormalizeWeekday(firstNonEmpty(attr(weekdayKeys).Text(), x.extractWeekday(freeText)))
    }

    if field, ok := x.missingRequired(d); !ok {
        return model.EventDescriptor{}, &ExtractionError{
            ItemID: item.ID,
            Field:  field,
            Reason: fmt.Sprintf("required for %s events", d.Kind),
        }
    }
    return d, nil
}

// missingRequired checks the kind's required field set against the
// descriptor and names the first missing field.
func (x *Extractor) missingRequired(d model.EventDescriptor) (string, bool) {
    for _, f := range x.tables.RequiredFields[d.Kind] {
        var v string
        switch f {
        case "venue":
            v = d.Venue
        case "age_group":
            v = d.AgeGroup
        case "season":
            v = d.Season
        case "camp_term", "weekday":
            v = d.TermOrWeekday
        }
        if v == "" {
            return f, false
        }
    }
    return "", true
}

// normalizeActivity lower-cases the structured attribute value, falling
// back to keyword detection in the free text when no attribute is set.
func (x *Extractor) normalizeActivity(raw, freeText string) string {
    v := strings.ToLower(strings.TrimSpace(raw))
    if v != "" {
        return v
    }
    lower := strings.ToLower(freeText)
    for keyword, canonical := range x.tables.ActivityKeywords {
        if strings.Contains(lower, keyword) {
            return canonical
        }
    }
    return ""
}

// classify resolves the event kind: activity-type patterns first, then the
// booking-type heuristic (day bookings are camps, term bookings courses).
func (x *Extractor) classify(activityType, bookingType string) model.EventKind {
    for _, kp := range x.tables.KindPatterns {
        if activityType != "" && kp.Pattern.MatchString(activityType) {
            return kp.Kind
        }
    }
    switch bookingType {
    case "single-day", "multi-day":
        return model.KindCamp
    case "term":
        return model.KindCourse
    }
    return model.KindUnknown
}

// NormalizeVenue cleans a raw venue string and canonicalizes it against
// the known-venues table.  A "Region - Venue" prefix has its region token
// translated first; the venue match is substring in both directions so
// "Stade de Varembé" and "Geneva - Stade de Varembé, 1202" meet.
func (x *Extractor) NormalizeVenue(raw string) string {
    v := collapseSpaces(raw)
    if v == "" {
        return ""
    }
    if i := strings.Index(v, " - "); i > 0 {
        region := strings.ToLower(strings.TrimSpace(v[:i]))
        if canonical, ok := x.tables.RegionSynonyms[region]; ok {
            v = capitalize(canonical) + " - " + strings.TrimSpace(v[i+3:])
        }
    }
    lower := strings.ToLower(v)
    for _, known := range x.tables.KnownVenues {
        kl := strings.ToLower(known)
        if strings.Contains(lower, kl) || strings.Contains(kl, lower) {
            return known
        }
    }
    return v
}

// NormalizeWeekday expands a weekday name or abbreviation in any sales
// language to the canonical English day name.
func (x *Extractor) NormalizeWeekday(raw string) string {
    v := strings.ToLower(strings.TrimSpace(raw))
    if canonical, ok := x.tables.WeekdayNames[v]; ok {
        return canonical
    }
    return v
}

func (x *Extractor) normalizeBookingType(raw string) string {
    v := strings.ToLower(collapseSpaces(raw))
    if canonical, ok := x.tables.BookingTypeSynonyms[v]; ok {
        return canonical
    }
    return v
}

// extractWeekday scans free text for any known weekday token.
func (x *Extractor) extractWeekday(text string) string {
    for _, w := range strings.Fields(strings.ToLower(text)) {
        w = strings.Trim(w, ",.;:()")
        if canonical, ok := x.tables.WeekdayNames[w]; ok {
            return canonical
        }
    }
    return ""
}

// NormalizeAgeGroup reduces an age-group string to the canonical form
// "<min>-<max>y" with the parenthesized suffix preserved, e.g.
// "5 - 13 years (Full Day)" -> "5-13y (Full Day)".
func NormalizeAgeGroup(raw string) string {
    m := ageRangeRe.FindStringSubmatch(raw)
    if m == nil {
        return strings.TrimSpace(raw)
    }
    out := m[1] + "-" + m[2] + "y"
    if sm := ageSuffixRe.FindStringSubmatch(raw); sm != nil {
        out += " (" + strings.TrimSpace(sm[1]) + ")"
    }
    return out
}

// AgeGroupBounds parses the min/max bounds out of a canonical or raw
// age-group string.  ok is false when no range is present.
func AgeGroupBounds(ageGroup string) (min, max int, ok bool) {
    m := ageRangeRe.FindStringSubmatch(ageGroup)
    if m == nil {
        return 0, 0, false
    }
    min = atoiSafe(m[1])
    max = atoiSafe(m[2])
    if min > max {
        min, max = max, min
    }
    return min, max, true
}

func extractSeason(text string) string {
    m := seasonRe.FindStringSubmatch(text)
    if m == nil {
        return ""
    }
    out := m[1]
    if m[2] != "" {
        out += " " + m[2]
    }
    return out
}

func extractPattern(re *regexp.Regexp, text string) string {
    return strings.TrimSpace(re.FindString(text))
}

func normalizeTimeRange(raw string) string {
    v := strings.ReplaceAll(raw, " ", "")
    v = strings.ReplaceAll(v, ".", ":")
    v = strings.ReplaceAll(v, "–", "-")
    return v
}

func variantTitle(v *model.Variant) string {
    if v == nil {
        return ""
    }
    return v.Title
}

func collapseSpaces(s string) string {
    return strings.Join(strings.Fields(s), " ")
}

func capitalize(s string) string {
    if s == "" {
        return s
    }
    return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(values ...string) string {
    for _, v := range values {
        if strings.TrimSpace(v) != "" {
            return v
        }
    }
    return ""
}

func containsAny(s string, subs ...string) bool {
    for _, sub := range subs {
        if strings.Contains(s, sub) {
            return true
        }
    }
    return false
}

func atoiSafe(s string) int {
    n := 0
    for _, r := range s {
        if r < '0' || r > '9' {
            return n
        }
        n = n*10 + int(r-'0')
    }
    return n
}
