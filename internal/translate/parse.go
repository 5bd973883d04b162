package translate

import (
	"strings"
	"unicode"
)

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionDetail
	sectionFull
)

var markers = []struct {
	prefix string
	target section
}{
	{"요약:", sectionSummary},
	{"Summary:", sectionSummary},
	{"상세:", sectionDetail},
	{"Detail:", sectionDetail},
	{"전문:", sectionFull},
	{"Full:", sectionFull},
}

const (
	rawSummaryFallback = 200
	rawDetailFallback  = 300
	bullet             = "•"
)

// ParseResponse splits a model answer into summary, detail and full text.
// Marker lines switch the current section; any text after a marker on the
// same line belongs to the new section. Only bullet lines count towards the
// summary. Empty sections fall back to truncated raw text.
func ParseResponse(raw string) Result {
	var summary, detail, full []string
	state := sectionNone

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if next, rest, ok := matchMarker(line); ok {
			state = next
			if line = rest; line == "" {
				continue
			}
		}

		switch state {
		case sectionSummary:
			if strings.HasPrefix(line, bullet) {
				summary = append(summary, line)
			}
		case sectionDetail:
			detail = append(detail, line)
		case sectionFull:
			full = append(full, line)
		}
	}

	res := Result{
		Summary:     strings.Join(summary, "\n"),
		Detailed:    strings.Join(detail, " "),
		FullContent: strings.Join(full, " "),
	}
	if res.Summary == "" {
		res.Summary = truncateRunes(raw, rawSummaryFallback) + "..."
	}
	if res.FullContent == "" {
		res.FullContent = res.Detailed
	}
	if res.Detailed == "" {
		res.Detailed = truncateRunes(raw, rawDetailFallback) + "..."
	}
	if res.FullContent == "" {
		res.FullContent = raw
	}
	return res
}

func matchMarker(line string) (section, string, bool) {
	// list numbering, bullets and markdown emphasis may precede a marker
	stripped := strings.TrimLeftFunc(line, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, m := range markers {
		if strings.HasPrefix(stripped, m.prefix) {
			rest := strings.TrimSpace(strings.TrimPrefix(stripped, m.prefix))
			return m.target, strings.TrimLeft(rest, "* "), true
		}
	}
	return sectionNone, "", false
}
