package frontmatter

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---(?:\n(.*))?$`)

// Frontmatter represents the structured metadata at the beginning of a chapter
type Frontmatter struct {
	ID           string   `yaml:"id,omitempty"`
	Title        string   `yaml:"title,omitempty"`
	SidebarLabel string   `yaml:"sidebar_label,omitempty"`
	Slug         string   `yaml:"slug,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Keywords     []string `yaml:"keywords,flow"`
	Tags         []string `yaml:"tags,flow"`
	Draft        bool     `yaml:"draft,omitempty"`
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		// No frontmatter found
		return nil, content, nil
	}

	frontmatterStr := matches[1]
	bodyContent := matches[2]

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(frontmatterStr), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// Ensure arrays are never nil
	if fm.Keywords == nil {
		fm.Keywords = []string{}
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return &fm, bodyContent, nil
}
