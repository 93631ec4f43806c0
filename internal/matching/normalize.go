package matching

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/desertthunder/tunesmith/internal/models"
	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped from query tokens. The qualifier words come from track-title noise
// ("radio edit", "club mix", "remastered").
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {}, "from": {}, "in": {},
	"is": {}, "it": {}, "my": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"with": {}, "your": {}, "feat": {}, "featuring": {}, "ft": {},
	"club": {}, "edit": {}, "extended": {}, "live": {}, "mix": {}, "radio": {},
	"remaster": {}, "remastered": {}, "remix": {}, "version": {},
}

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// normalizeForSimilarity lower-cases s, strips every character that is not a word character,
// whitespace or a hyphen, and collapses whitespace.
func normalizeForSimilarity(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	s = nonWord.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// CleanQueryText strips punctuation from s so it can be embedded in a catalog query.
func CleanQueryText(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeTokens returns the lower-cased tokens of title with stopwords removed. Tokens that are
// also style or mood terms are kept even when they are stopwords.
func NormalizeTokens(title string, style models.StyleContext, mood models.MoodContext) []string {
	keep := make(map[string]struct{}, len(style.Terms)+len(mood.Terms))
	for _, term := range style.Terms {
		keep[strings.ToLower(term)] = struct{}{}
	}
	for _, term := range mood.Terms {
		keep[strings.ToLower(term)] = struct{}{}
	}

	fields := strings.Fields(strings.ToLower(CleanQueryText(title)))
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if _, stop := stopwords[token]; stop {
			if _, preserved := keep[token]; !preserved {
				continue
			}
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// QueryTitle joins the normalized tokens of title, falling back to the cleaned title when every
// token was a stopword ("The The").
func QueryTitle(title string, style models.StyleContext, mood models.MoodContext) string {
	if tokens := NormalizeTokens(title, style, mood); len(tokens) > 0 {
		return strings.Join(tokens, " ")
	}
	return CleanQueryText(title)
}

// containsPhrase reports whether phrase occurs in text on word boundaries. Both are cleaned first.
func containsPhrase(text, phrase string) bool {
	phrase = strings.ToLower(CleanQueryText(phrase))
	if phrase == "" {
		return false
	}
	text = " " + strings.ToLower(CleanQueryText(text)) + " "
	return strings.Contains(text, " "+phrase+" ")
}
