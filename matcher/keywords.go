package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// KeywordTables is the keyword corpus the matcher scores against. It is data:
// swap it via LoadKeywordTables without touching the scoring code.
type KeywordTables struct {
	PurchaseIntent []string            `mapstructure:"purchase_intent" json:"purchase_intent"`
	Categories     map[string][]string `mapstructure:"categories" json:"categories"`
	CheapTerms     []string            `mapstructure:"cheap_terms" json:"cheap_terms"`
	PremiumTerms   []string            `mapstructure:"premium_terms" json:"premium_terms"`
}

// DefaultKeywordTables returns the built-in corpus (Persian first, with a few
// English equivalents for mixed-language visitors).
func DefaultKeywordTables() KeywordTables {
	return KeywordTables{
		PurchaseIntent: []string{
			"قیمت", "خرید", "بخرم", "بخرید", "سفارش", "تخفیف", "ارسال", "کیفیت",
			"برند", "گارانتی", "ضمانت", "موجودی", "هزینه", "چند", "فروش", "محصول",
			"price", "buy", "order", "discount", "delivery", "shipping", "quality",
			"brand", "warranty", "guarantee", "product",
		},
		Categories: map[string][]string{
			"electronics": {"گوشی", "موبایل", "لپ تاپ", "لپتاپ", "تبلت", "هدفون", "شارژر", "سامسونگ", "آیفون", "تلویزیون", "کامپیوتر", "laptop", "phone"},
			"clothing":    {"لباس", "پیراهن", "شلوار", "کفش", "مانتو", "تیشرت", "کاپشن", "جوراب"},
			"home":        {"مبل", "فرش", "آشپزخانه", "ظروف", "یخچال", "جاروبرقی", "دکوراسیون", "پرده"},
			"beauty":      {"آرایشی", "کرم", "عطر", "ادکلن", "شامپو", "پوست"},
			"food":        {"غذا", "خوراکی", "قهوه", "چای", "شکلات", "برنج", "آجیل"},
			"books":       {"کتاب", "رمان", "مجله", "دفتر"},
			"sports":      {"ورزشی", "ورزش", "دمبل", "تردمیل", "دوچرخه"},
			"health":      {"دارو", "ویتامین", "مکمل", "سلامت", "بهداشتی"},
		},
		CheapTerms:   []string{"ارزان", "ارزون", "اقتصادی", "مقرون", "cheap", "budget", "affordable"},
		PremiumTerms: []string{"گران", "گرون", "لوکس", "حرفه‌ای", "پریمیوم", "premium", "luxury", "expensive"},
	}
}

// LoadKeywordTables reads a YAML, JSON or TOML keyword file. Sections missing
// from the file keep their built-in defaults.
func LoadKeywordTables(path string) (KeywordTables, error) {
	v := viper.New()
	v.SetConfigFile(strings.TrimSpace(path))
	if err := v.ReadInConfig(); err != nil {
		return KeywordTables{}, fmt.Errorf("read keyword tables %s: %w", path, err)
	}
	var t KeywordTables
	if err := v.Unmarshal(&t); err != nil {
		return KeywordTables{}, fmt.Errorf("decode keyword tables %s: %w", path, err)
	}
	return t.withDefaults(), nil
}

func (t KeywordTables) withDefaults() KeywordTables {
	d := DefaultKeywordTables()
	if len(t.PurchaseIntent) == 0 {
		t.PurchaseIntent = d.PurchaseIntent
	}
	if len(t.Categories) == 0 {
		t.Categories = d.Categories
	}
	if len(t.CheapTerms) == 0 {
		t.CheapTerms = d.CheapTerms
	}
	if len(t.PremiumTerms) == 0 {
		t.PremiumTerms = d.PremiumTerms
	}
	return t
}

// normalized lower-cases every keyword once and fixes the category order so
// scoring never depends on map iteration.
func (t KeywordTables) normalized() compiledTables {
	c := compiledTables{
		intent:  normalizeAll(t.PurchaseIntent),
		cheap:   normalizeAll(t.CheapTerms),
		premium: normalizeAll(t.PremiumTerms),
	}
	names := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.categories = append(c.categories, category{name: name, keywords: normalizeAll(t.Categories[name])})
	}
	return c
}

type category struct {
	name     string
	keywords []string
}

type compiledTables struct {
	intent     []string
	categories []category
	cheap      []string
	premium    []string
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}
