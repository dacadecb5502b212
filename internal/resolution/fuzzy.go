package resolution

import "strings"

// Name similarity scoring for the assigned-name match strategy.  Scores
// are in [0,1]: 1.0 for identical raw strings, 0.95 when the names are
// equal after cleanup, at least 0.90 when the same words appear in a
// different order, and otherwise one minus the normalized edit distance.

// CleanupName lower-cases a name, strips punctuation and collapses
// whitespace so cosmetic differences do not affect scoring.
func CleanupName(name string) string {
    var b strings.Builder
    for _, r := range strings.ToLower(name) {
        switch {
        case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127:
            b.WriteRune(r)
        default:
            b.WriteByte(' ')
        }
    }
    return collapseSpaces(b.String())
}

// NameSimilarity scores how closely candidate matches target.
func NameSimilarity(target, candidate string) float64 {
    if target == candidate {
        return 1.0
    }
    ct, cc := CleanupName(target), CleanupName(candidate)
    if ct == "" || cc == "" {
        return 0
    }
    if ct == cc {
        return 0.95
    }
    score := 1.0 - float64(levenshtein(ct, cc))/float64(maxInt(len([]rune(ct)), len([]rune(cc))))
    if score < 0 {
        score = 0
    }
    // "Smith John" vs "John Smith" is the same child with the name parts
    // swapped; edit distance alone punishes that heavily.
    if sameWordSet(ct, cc) && score < 0.90 {
        score = 0.90
    }
    return score
}

// levenshtein computes the edit distance between two strings by rune,
// using the two-row dynamic programming form.
func levenshtein(a, b string) int {
    ra, rb := []rune(a), []rune(b)
    if len(ra) == 0 {
        return len(rb)
    }
    if len(rb) == 0 {
        return len(ra)
    }
    prev := make([]int, len(rb)+1)
    curr := make([]int, len(rb)+1)
    for j := range prev {
        prev[j] = j
    }
    for i := 1; i <= len(ra); i++ {
        curr[0] = i
        for j := 1; j <= len(rb); j++ {
            cost := 1
            if ra[i-1] == rb[j-1] {
                cost = 0
            }
            curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
        }
        prev, curr = curr, prev
    }
    return prev[len(rb)]
}

func sameWordSet(a, b string) bool {
    wa, wb := strings.Fields(a), strings.Fields(b)
    if len(wa) != len(wb) || len(wa) == 0 {
        return false
    }
    set := make(map[string]int, len(wa))
    for _, w := range wa {
        set[w]++
    }
    for _, w := range wb {
        set[w]--
        if set[w] < 0 {
            return false
        }
    }
    return true
}

func minInt(a, b int) int {
    if a < b {
        return a
    }
    return b
}

func maxInt(a, b int) int {
    if a > b {
        return a
    }
    return b
}
