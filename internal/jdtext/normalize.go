// Package jdtext turns loosely Markdown-formatted job-description text into plain display text
// and classifies it into heading and body paragraphs.
package jdtext

import (
	"regexp"
	"strings"
)

const (
	boldMarker   = "**"
	bulletMarker = "* "
	bulletGlyph  = "• "
	ruleMarker   = "---"
)

// headingPrefix matches a leading run of '#' plus any whitespace after it.
var headingPrefix = regexp.MustCompile(`^#+\s*`)

// Normalize strips heading, bold, bullet and horizontal-rule markup from text, line by line,
// and drops lines that end up blank. Stray markers that cannot be removed are left in place.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := normalizeLine(line)
		if strings.TrimSpace(cleaned) == "" {
			continue
		}
		kept = append(kept, cleaned)
	}

	return strings.Join(kept, "\n")
}

// normalizeLine applies the line rules until the line stops changing.
func normalizeLine(line string) string {
	for {
		next := cleanLine(line)
		if next == line {
			return line
		}
		line = next
	}
}

// cleanLine is one pass of the line rules, in order.
func cleanLine(line string) string {
	if strings.HasPrefix(line, "#") {
		line = headingPrefix.ReplaceAllString(line, "")
	}

	line = strings.ReplaceAll(line, boldMarker, "")

	if strings.HasPrefix(line, bulletMarker) {
		line = bulletGlyph + strings.TrimPrefix(line, bulletMarker)
	}

	if strings.TrimSpace(line) == ruleMarker {
		return ""
	}

	return line
}
