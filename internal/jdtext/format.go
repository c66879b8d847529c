package jdtext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind tags a formatted block.
type Kind string

const (
	KindHeading Kind = "heading"
	KindBody    Kind = "body"
)

// HeadingMaxLength is the exclusive upper bound on a heading's length in characters.
const HeadingMaxLength = 80

// RolePrefix starts the synthetic first block of every formatted description.
const RolePrefix = "Role: "

var (
	// headingPattern is optional leading digits/dots, optional space, then a letter.
	headingPattern = regexp.MustCompile(`^[0-9.]*\s*[A-Za-z]`)
	// paragraphBreak is a blank line, possibly holding whitespace.
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
)

// Block is one paragraph of the final, structured view.
type Block struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Classify tags a paragraph as a heading when it is short and starts with an
// optionally numbered word; everything else is body text.
func Classify(paragraph string) Kind {
	trimmed := strings.TrimSpace(paragraph)
	if headingPattern.MatchString(trimmed) && utf8.RuneCountInString(trimmed) < HeadingMaxLength {
		return KindHeading
	}
	return KindBody
}

// Paragraphs splits raw text on blank-line boundaries and normalizes each segment.
// Segmentation happens before normalization, which would otherwise erase the boundaries.
func Paragraphs(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	segments := paragraphBreak.Split(raw, -1)
	paragraphs := make([]string, 0, len(segments))
	for _, segment := range segments {
		p := Normalize(segment)
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// Format builds the final view: a role heading followed by the classified paragraphs of raw.
func Format(raw, role string) []Block {
	paragraphs := Paragraphs(raw)

	blocks := make([]Block, 0, len(paragraphs)+1)
	blocks = append(blocks, Block{Kind: KindHeading, Text: RolePrefix + role})
	for _, p := range paragraphs {
		blocks = append(blocks, Block{Kind: Classify(p), Text: p})
	}
	return blocks
}

// RevealText is the plain text shown while typing: the role line, a blank line, then the
// normalized description.
func RevealText(raw, role string) string {
	return RolePrefix + role + "\n\n" + Normalize(raw)
}
