// Package matcher picks catalog products worth showing next to a chat reply.
//
// Scoring is a keyword heuristic: a purchase-intent gate, token overlap
// between the message and each product's name and description, a topical
// category bonus and a small price-range nudge. The weights are named
// constants and are not tuned; treat them as a starting calibration.
//
// Message tokens shorter than three runes take no part in token overlap, so
// conjunctions such as "و" cannot match every product that contains the
// letter.
package matcher

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Default weights and thresholds.
const (
	NameWeight        = 10
	DescriptionWeight = 3
	CategoryBonus     = 5
	PriceBonus        = 2
	// LowPriceCutoff applies to any price below it, zero included.
	LowPriceCutoff    = 500_000
	HighPriceCutoff   = 1_000_000
	MaxResults        = 3

	minNameTokenRunes        = 3
	minDescriptionTokenRunes = 4
	minMessageTokenRunes     = 3
)

// Product is a read-only catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Link        string  `json:"link"`
	CTALabel    string  `json:"cta_label"`
}

// ScoredMatch pairs a product with its accumulated score.
type ScoredMatch struct {
	Product Product `json:"product"`
	Score   int     `json:"score"`
}

// Weights overrides the scoring constants. Zero fields use the defaults.
type Weights struct {
	Name            int
	Description     int
	Category        int
	Price           int
	LowPriceCutoff  float64
	HighPriceCutoff float64
	MaxResults      int
}

func (w Weights) withDefaults() Weights {
	if w.Name <= 0 {
		w.Name = NameWeight
	}
	if w.Description <= 0 {
		w.Description = DescriptionWeight
	}
	if w.Category <= 0 {
		w.Category = CategoryBonus
	}
	if w.Price <= 0 {
		w.Price = PriceBonus
	}
	if w.LowPriceCutoff <= 0 {
		w.LowPriceCutoff = LowPriceCutoff
	}
	if w.HighPriceCutoff <= 0 {
		w.HighPriceCutoff = HighPriceCutoff
	}
	if w.MaxResults <= 0 {
		w.MaxResults = MaxResults
	}
	return w
}

// Matcher scores products against chat messages. It holds no mutable state
// and is safe for concurrent use.
type Matcher struct {
	tables  compiledTables
	weights Weights
}

func New(tables KeywordTables, weights Weights) *Matcher {
	return &Matcher{
		tables:  tables.withDefaults().normalized(),
		weights: weights.withDefaults(),
	}
}

var defaultMatcher = New(DefaultKeywordTables(), Weights{})

// FindMatchingProducts runs the default matcher.
func FindMatchingProducts(message string, products []Product) []Product {
	return defaultMatcher.FindMatchingProducts(message, products)
}

// FindMatchingProducts returns at most MaxResults products, best first. The
// result is empty when the message carries no purchase intent or nothing
// scores above zero.
func (m *Matcher) FindMatchingProducts(message string, products []Product) []Product {
	ranked := m.Rank(message, products)
	if len(ranked) > m.weights.MaxResults {
		ranked = ranked[:m.weights.MaxResults]
	}
	out := make([]Product, 0, len(ranked))
	for _, sm := range ranked {
		out = append(out, sm.Product)
	}
	return out
}

// Rank scores every product and returns those above zero in descending score
// order. Equal scores keep catalog order.
func (m *Matcher) Rank(message string, products []Product) []ScoredMatch {
	msg := Normalize(message)
	if msg == "" || len(products) == 0 {
		return []ScoredMatch{}
	}
	if !m.HasPurchaseIntent(msg) {
		return []ScoredMatch{}
	}
	msgTokens := messageTokens(msg)
	ranked := make([]ScoredMatch, 0, len(products))
	for _, p := range products {
		if s := m.score(msg, msgTokens, p); s > 0 {
			ranked = append(ranked, ScoredMatch{Product: p, Score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// HasPurchaseIntent reports whether the message mentions any intent keyword.
func (m *Matcher) HasPurchaseIntent(message string) bool {
	msg := Normalize(message)
	if msg == "" {
		return false
	}
	return containsAny(msg, m.tables.intent)
}

// Score returns the raw score of one product, without the intent gate.
func (m *Matcher) Score(message string, p Product) int {
	msg := Normalize(message)
	if msg == "" {
		return 0
	}
	return m.score(msg, messageTokens(msg), p)
}

func (m *Matcher) score(msg string, msgTokens []string, p Product) int {
	name := Normalize(p.Name)
	desc := Normalize(p.Description)

	score := 0
	for _, tok := range strings.Fields(name) {
		if utf8.RuneCountInString(tok) >= minNameTokenRunes && overlaps(tok, msgTokens) {
			score += m.weights.Name
		}
	}
	for _, tok := range strings.Fields(desc) {
		if utf8.RuneCountInString(tok) >= minDescriptionTokenRunes && overlaps(tok, msgTokens) {
			score += m.weights.Description
		}
	}

	text := name + " " + desc
	for _, cat := range m.tables.categories {
		for _, kw := range cat.keywords {
			if strings.Contains(msg, kw) && strings.Contains(text, kw) {
				score += m.weights.Category
				break
			}
		}
	}

	if containsAny(msg, m.tables.cheap) && p.Price < m.weights.LowPriceCutoff {
		score += m.weights.Price
	}
	if containsAny(msg, m.tables.premium) && p.Price > m.weights.HighPriceCutoff {
		score += m.weights.Price
	}
	return score
}

// arabicLetters maps Arabic code points that Persian keyboards and pasted
// text mix in to their Persian forms. NFKC leaves them distinct.
var arabicLetters = strings.NewReplacer("ي", "ی", "ى", "ی", "ك", "ک")

// Normalize applies NFKC, folds Arabic yeh and kaf to Persian, trims and
// lower-cases.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(arabicLetters.Replace(norm.NFKC.String(s))))
}

func messageTokens(msg string) []string {
	fields := strings.Fields(msg)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minMessageTokenRunes {
			out = append(out, f)
		}
	}
	return out
}

// overlaps is the bidirectional substring test between one product token and
// the message tokens.
func overlaps(tok string, msgTokens []string) bool {
	for _, mt := range msgTokens {
		if strings.Contains(mt, tok) || strings.Contains(tok, mt) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
