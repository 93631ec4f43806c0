package matching

import (
	"regexp"
	"strings"
)

// remixKeywords mark a title as an alternate version of a recording.
var remixKeywords = regexp.MustCompile(`(?i)\b(remix\w*|mix(?:es)?|edit(?:s|ed)?|versions?|dub|extended|radio edit|club mix|instrumental|remaster\w*|live|acoustic)\b`)

// remixerPattern extracts the remixer label from one qualifier shape.
type remixerPattern struct {
	name string
	re   *regexp.Regexp
}

func (p remixerPattern) extract(title string) (string, bool) {
	m := p.re.FindStringSubmatch(title)
	if len(m) < 2 {
		return "", false
	}
	label := strings.TrimSpace(m[1])
	return label, label != ""
}

// remixerPatterns are tried in order; the first capture wins.
var remixerPatterns = []remixerPattern{
	{name: "parenthetical", re: regexp.MustCompile(`(?i)\(([^()]+?)\s+(?:remix|mix|edit|version|dub)\)`)},
	{name: "bracketed", re: regexp.MustCompile(`(?i)\[([^\[\]]+?)\s+(?:remix|mix|edit|version|dub)\]`)},
	{name: "dash", re: regexp.MustCompile(`(?i)-\s*([^-]+?)\s+(?:remix|mix|edit|version|dub)\s*$`)},
}

// IsRemix reports whether title carries a version qualifier (remix, edit, live, acoustic, ...).
func IsRemix(title string) bool {
	return remixKeywords.MatchString(title)
}

// ExtractRemixer returns the label preceding the qualifier keyword, e.g. "DJ Kex" from
// "Midnight (DJ Kex Remix)".
func ExtractRemixer(title string) (string, bool) {
	for _, p := range remixerPatterns {
		if label, ok := p.extract(title); ok {
			return label, true
		}
	}
	return "", false
}
