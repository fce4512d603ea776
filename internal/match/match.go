package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum fuzzy score accepted for player lookups.
const DefaultThreshold = 70

// Pick resolves query against candidate names using, in order:
//
//  1. exact case-insensitive match
//  2. single-token query equal to a candidate's last token (longest wins)
//  3. case-insensitive substring
//  4. case-insensitive prefix
//
// It returns "" when nothing matches. Candidates are scanned in the order given.
func Pick(cands []string, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(cands) == 0 {
		return ""
	}
	for _, c := range cands {
		if strings.ToLower(strings.TrimSpace(c)) == q {
			return c
		}
	}
	if !strings.ContainsAny(q, " \t") {
		best := ""
		for _, c := range cands {
			f := strings.Fields(strings.ToLower(c))
			if len(f) == 0 || f[len(f)-1] != q {
				continue
			}
			if len(c) > len(best) {
				best = c
			}
		}
		if best != "" {
			return best
		}
	}
	for _, c := range cands {
		if strings.Contains(strings.ToLower(c), q) {
			return c
		}
	}
	for _, c := range cands {
		if strings.HasPrefix(strings.ToLower(c), q) {
			return c
		}
	}
	return ""
}

// Score is a 0-100 similarity between a and b, the best of a plain edit
// ratio, a token-order-insensitive ratio and a partial (best window) ratio.
// Partial and token matches are discounted slightly so exact spellings win.
func Score(a, b string) int {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return 0
	}
	best := ratio(a, b)
	if ts := ratio(sortTokens(a), sortTokens(b)) * 0.95; ts > best {
		best = ts
	}
	if pr := partialRatio(a, b) * 0.9; pr > best {
		best = pr
	}
	return int(best + 0.5)
}

// Best returns the highest-scoring candidate and its score. Earlier
// candidates win ties.
func Best(cands []string, query string) (string, int) {
	best, bestScore := "", 0
	for _, c := range cands {
		if s := Score(query, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}

// Strategy combines the ordered rules of Pick with a fuzzy fallback.
// A zero Threshold disables the fallback.
type Strategy struct {
	Threshold int
}

// Result is a resolved name plus how it was found.
type Result struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Fuzzy bool   `json:"fuzzy"`
}

// Resolve applies Pick first (scored 100), then the fuzzy scorer when a
// threshold is set. ok is false when nothing clears the bar.
func (s Strategy) Resolve(cands []string, query string) (Result, bool) {
	if name := Pick(cands, query); name != "" {
		return Result{Name: name, Score: 100}, true
	}
	if s.Threshold <= 0 {
		return Result{}, false
	}
	name, score := Best(cands, query)
	if name == "" || score < s.Threshold {
		return Result{Name: name, Score: score, Fuzzy: true}, false
	}
	return Result{Name: name, Score: score, Fuzzy: true}, true
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sortTokens(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) > n {
		n = len(rb)
	}
	if n == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(n))
}

func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return ratio(a, b)
	}
	best := 0.0
	s := string(short)
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(s, string(long[i:i+len(short)])); r > best {
			best = r
		}
	}
	return best
}
