package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []Product {
	return []Product{
		{ID: "phone", Name: "گوشی سامسونگ A54", Description: "گوشی هوشمند با دوربین عالی", Price: 18_000_000},
		{ID: "shoe", Name: "کفش ورزشی", Description: "کفش مناسب دویدن", Price: 2_500_000},
	}
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFindMatchingProducts_NoPurchaseIntent(t *testing.T) {
	got := FindMatchingProducts("سلام، خوبی؟", catalog())
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFindMatchingProducts_PhoneQuestion(t *testing.T) {
	got := FindMatchingProducts("قیمت گوشی سامسونگ چنده؟", catalog())
	require.Len(t, got, 1)
	assert.Equal(t, "phone", got[0].ID)

	score := defaultMatcher.Score("قیمت گوشی سامسونگ چنده؟", catalog()[0])
	assert.GreaterOrEqual(t, score, 2*NameWeight)
	assert.Zero(t, defaultMatcher.Score("قیمت گوشی سامسونگ چنده؟", catalog()[1]))
}

func TestFindMatchingProducts_EmptyInputs(t *testing.T) {
	assert.Empty(t, FindMatchingProducts("", catalog()))
	assert.Empty(t, FindMatchingProducts("   ", catalog()))
	assert.Empty(t, FindMatchingProducts("قیمت", nil))
	assert.Empty(t, FindMatchingProducts("قیمت", []Product{}))
}

func TestFindMatchingProducts_TopThreeByScore(t *testing.T) {
	products := []Product{
		{ID: "a", Name: "گوشی سامسونگ"},
		{ID: "b", Name: "گوشی شیائومی", Description: "بهترین گوشی برای عکاسی"},
		{ID: "c", Name: "قاب گوشی"},
		{ID: "d", Name: "کفش ورزشی"},
		{ID: "e", Name: "هدفون", Description: "هدفون بی‌سیم مناسب گوشی"},
	}

	ranked := defaultMatcher.Rank("قیمت گوشی", products)
	require.Len(t, ranked, 4)
	assert.Equal(t, []int{18, 15, 15, 8}, []int{ranked[0].Score, ranked[1].Score, ranked[2].Score, ranked[3].Score})

	got := FindMatchingProducts("قیمت گوشی", products)
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestFindMatchingProducts_Deterministic(t *testing.T) {
	products := catalog()
	first := FindMatchingProducts("خرید گوشی سامسونگ", products)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, FindMatchingProducts("خرید گوشی سامسونگ", products))
	}
}

func TestScore_TokenLengthThresholds(t *testing.T) {
	m := New(KeywordTables{Categories: map[string][]string{"none": {"zzzz"}}}, Weights{})

	// two-rune name tokens never count
	assert.Zero(t, m.Score("قیمت ab", Product{Name: "ab"}))
	assert.Equal(t, NameWeight, m.Score("قیمت abc", Product{Name: "abc"}))

	// description tokens need four runes
	assert.Zero(t, m.Score("قیمت abc", Product{Description: "abc"}))
	assert.Equal(t, DescriptionWeight, m.Score("قیمت abcd", Product{Description: "abcd"}))
}

func TestScore_BidirectionalContainment(t *testing.T) {
	m := New(KeywordTables{Categories: map[string][]string{"none": {"zzzz"}}}, Weights{})

	// message token inside product token
	assert.Equal(t, NameWeight, m.Score("buy phone", Product{Name: "smartphones"}))
	// product token inside message token
	assert.Equal(t, NameWeight, m.Score("buy smartphones", Product{Name: "phone"}))
}

func TestScore_CategoryBonus(t *testing.T) {
	m := New(KeywordTables{Categories: map[string][]string{"books": {"کتاب"}}}, Weights{})

	p := Product{Name: "رمان کلاسیک", Description: "یک کتاب خواندنی"}
	got := m.Score("خرید کتاب", p)
	// desc token "کتاب" (4 runes) overlaps, plus the category bonus
	assert.Equal(t, DescriptionWeight+CategoryBonus, got)
}

func TestScore_PriceHints(t *testing.T) {
	m := New(KeywordTables{Categories: map[string][]string{"none": {"zzzz"}}}, Weights{})

	cheap := Product{Name: "x", Price: 100_000}
	pricey := Product{Name: "y", Price: 5_000_000}

	assert.Equal(t, PriceBonus, m.Score("یک چیز ارزان می‌خواهم", cheap))
	assert.Zero(t, m.Score("یک چیز ارزان می‌خواهم", pricey))
	assert.Equal(t, PriceBonus, m.Score("یک مدل لوکس", pricey))
	assert.Zero(t, m.Score("یک مدل لوکس", cheap))
	// an unpriced product is still below the cheap cutoff
	assert.Equal(t, PriceBonus, m.Score("قیمت یک چیز ارزان", Product{Name: "z"}))
}

func TestScore_ShortMessageTokensIgnored(t *testing.T) {
	products := []Product{
		{ID: "tv", Name: "تلویزیون هوشمند"},
		{ID: "book", Name: "کتاب داستان", Description: "دفتر و کتاب"},
	}
	got := defaultMatcher.FindMatchingProducts("قیمت کتاب و دفتر", products)
	assert.Equal(t, []string{"book"}, ids(got))
	assert.Zero(t, defaultMatcher.Score("قیمت و", Product{Name: "تلویزیون"}))
}

func TestFindMatchingProducts_ArabicLetters(t *testing.T) {
	persian := defaultMatcher.FindMatchingProducts("قیمت گوشی سامسونگ", catalog())
	arabic := defaultMatcher.FindMatchingProducts("قيمت گوشي سامسونگ", catalog())
	require.NotEmpty(t, arabic)
	assert.Equal(t, ids(persian), ids(arabic))
	assert.Equal(t, "phone", arabic[0].ID)
}

func TestRank_DropsZeroScores(t *testing.T) {
	ranked := defaultMatcher.Rank("قیمت گوشی سامسونگ", catalog())
	for _, sm := range ranked {
		assert.Positive(t, sm.Score)
	}
}

func TestHasPurchaseIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"price question", "قیمت این چنده", true},
		{"order", "میخوام سفارش بدم", true},
		{"english", "What is the PRICE?", true},
		{"greeting", "سلام، خوبی؟", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultMatcher.HasPurchaseIntent(tt.message))
		})
	}
}

func TestNew_CustomWeights(t *testing.T) {
	m := New(DefaultKeywordTables(), Weights{Name: 1, MaxResults: 1})
	products := []Product{{ID: "1", Name: "گوشی"}, {ID: "2", Name: "گوشی قرمز"}}
	got := m.FindMatchingProducts("قیمت گوشی", products)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "abc", Normalize("  ABC "))
	// fullwidth letters fold under NFKC
	assert.Equal(t, "abc", Normalize("ＡＢＣ"))
	assert.Equal(t, "کیک", Normalize("كيك"))
}

func TestLoadKeywordTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	content := `purchase_intent:
  - pricecheck
categories:
  gadgets:
    - widget
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadKeywordTables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pricecheck"}, tables.PurchaseIntent)
	assert.Equal(t, []string{"widget"}, tables.Categories["gadgets"])
	assert.Equal(t, DefaultKeywordTables().CheapTerms, tables.CheapTerms)

	m := New(tables, Weights{})
	assert.True(t, m.HasPurchaseIntent("pricecheck please"))
	assert.False(t, m.HasPurchaseIntent("قیمت"))
}

func TestLoadKeywordTables_MissingFile(t *testing.T) {
	_, err := LoadKeywordTables(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
