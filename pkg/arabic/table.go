package arabic

import "strings"

// Entry maps an English phrase to the Arabic word that replaces it
type Entry struct {
	English string
	Arabic  string
}

// Table is an ordered list of substitutions. Phrases match as literal
// substrings, and each entry sees the text left by the entries before it.
type Table []Entry

// Apply rewrites s with every entry in table order
func (t Table) Apply(s string) string {
	for _, e := range t {
		if e.English == "" {
			continue
		}
		s = strings.ReplaceAll(s, e.English, e.Arabic)
	}
	return s
}

// Lookup returns the replacement for an English phrase
func (t Table) Lookup(english string) (string, bool) {
	for _, e := range t {
		if e.English == english {
			return e.Arabic, true
		}
	}
	return "", false
}

// DefaultTable returns the shipped vocabulary. "a old" keeps its first
// position but the later meaning "قديم" (old, of things) rather than
// "عجوز" (old, of people).
func DefaultTable() Table {
	t := make(Table, len(defaultEntries))
	copy(t, defaultEntries)
	return t
}

var defaultEntries = Table{
	{"a person", "شخص"},
	{"a man", "رجل"},
	{"a woman", "امرأة"},
	{"a child", "طفل"},
	{"a dog", "كلب"},
	{"a cat", "قط"},
	{"a car", "سيارة"},
	{"a building", "مبنى"},
	{"a tree", "شجرة"},
	{"a flower", "زهرة"},
	{"a table", "طاولة"},
	{"a chair", "كرسي"},
	{"a book", "كتاب"},
	{"a phone", "هاتف"},
	{"a computer", "حاسوب"},
	{"a camera", "كاميرا"},
	{"a street", "شارع"},
	{"a road", "طريق"},
	{"a mountain", "جبل"},
	{"a sea", "بحر"},
	{"a river", "نهر"},
	{"a sky", "سماء"},
	{"a sun", "شمس"},
	{"a moon", "قمر"},
	{"a star", "نجمة"},
	{"a cloud", "سحابة"},
	{"a rain", "مطر"},
	{"a snow", "ثلج"},
	{"a fire", "نار"},
	{"a water", "ماء"},
	{"a food", "طعام"},
	{"a drink", "شراب"},
	{"a shirt", "قميص"},
	{"a pants", "بنطلون"},
	{"a hat", "قبعة"},
	{"a shoe", "حذاء"},
	{"a bag", "حقيبة"},
	{"a clock", "ساعة"},
	{"a door", "باب"},
	{"a window", "نافذة"},
	{"a wall", "جدار"},
	{"a floor", "أرضية"},
	{"a ceiling", "سقف"},
	{"a light", "ضوء"},
	{"a shadow", "ظل"},
	{"a color", "لون"},
	{"a red", "أحمر"},
	{"a blue", "أزرق"},
	{"a green", "أخضر"},
	{"a yellow", "أصفر"},
	{"a black", "أسود"},
	{"a white", "أبيض"},
	{"a big", "كبير"},
	{"a small", "صغير"},
	{"a tall", "طويل"},
	{"a short", "قصير"},
	{"a beautiful", "جميل"},
	{"a nice", "جميل"},
	{"a good", "جيد"},
	{"a bad", "سيء"},
	{"a happy", "سعيد"},
	{"a sad", "حزين"},
	{"a young", "شاب"},
	{"a old", "قديم"},
	{"a new", "جديد"},
}
