package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	markdownHeading = regexp.MustCompile(`^#\s+(.+)$`)
	orderingPrefix  = regexp.MustCompile(`^\d+[-_.\s]+`)
)

// extractHeading returns the text of the first level-one heading, or "".
func extractHeading(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if match := markdownHeading.FindStringSubmatch(line); match != nil {
			return strings.TrimSpace(strings.TrimRight(match[1], "#"))
		}
	}
	return ""
}

// TitleFromFilename turns a filename stem such as "02-vague-code-problem"
// into "Vague Code Problem". The numeric ordering prefix is dropped.
func TitleFromFilename(stem string) string {
	title := orderingPrefix.ReplaceAllString(stem, "")
	if title == "" {
		title = stem
	}

	title = strings.ReplaceAll(title, "-", " ")
	title = strings.ReplaceAll(title, "_", " ")

	caser := cases.Title(language.English)
	words := strings.Fields(title)
	for i, word := range words {
		if i == 0 || len(word) > 2 {
			words[i] = caser.String(strings.ToLower(word))
		} else {
			words[i] = strings.ToLower(word)
		}
	}

	return strings.Join(words, " ")
}
