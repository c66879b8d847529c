package export

import (
	"strings"
	"unicode/utf8"
)

// Layout describes an A4 page in millimetres and the wrap width in runes.
type Layout struct {
	PageWidthMM  float64
	PageHeightMM float64
	MarginMM     float64 // left and right
	TopMM        float64 // first baseline, also kept free at the bottom
	LineStepMM   float64
	LineWidth    int
}

// DefaultLayout returns the A4 layout: 15mm side margins, first line at 20mm,
// 10mm per line and 90 runes per line.
func DefaultLayout() Layout {
	return Layout{
		PageWidthMM:  210,
		PageHeightMM: 297,
		MarginMM:     15,
		TopMM:        20,
		LineStepMM:   10,
		LineWidth:    90,
	}
}

// withDefaults fills zero fields from DefaultLayout.
func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.PageWidthMM <= 0 {
		l.PageWidthMM = d.PageWidthMM
	}
	if l.PageHeightMM <= 0 {
		l.PageHeightMM = d.PageHeightMM
	}
	if l.MarginMM < 0 {
		l.MarginMM = d.MarginMM
	}
	if l.TopMM <= 0 {
		l.TopMM = d.TopMM
	}
	if l.LineStepMM <= 0 {
		l.LineStepMM = d.LineStepMM
	}
	if l.LineWidth <= 0 {
		l.LineWidth = d.LineWidth
	}
	return l
}

// LinesPerPage is the number of baselines from TopMM down to PageHeightMM-TopMM.
func (l Layout) LinesPerPage() int {
	l = l.withDefaults()
	n := int((l.PageHeightMM-2*l.TopMM)/l.LineStepMM) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Paginate wraps every line of text to the layout width and splits the result into pages.
// Empty text has no pages.
func Paginate(text string, layout Layout) [][]string {
	if text == "" {
		return nil
	}
	layout = layout.withDefaults()
	perPage := layout.LinesPerPage()

	var pages [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		for _, wrapped := range Wrap(line, layout.LineWidth) {
			if len(current) == perPage {
				pages = append(pages, current)
				current = nil
			}
			current = append(current, wrapped)
		}
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// Wrap breaks line into pieces of at most width runes, breaking at spaces
// and splitting words that are longer than width. A blank line stays one empty line.
func Wrap(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			out = append(out, string(runes[:width]))
			word = string(runes[width:])
		}

		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > width {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()
	return out
}
