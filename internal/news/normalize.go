package news

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const idLength = 16

// ArticleID derives a stable identifier from the article URL. Truncation
// makes collisions possible but harmless: IDs are display keys only.
func ArticleID(articleURL string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(articleURL))
	return strings.ReplaceAll(id.String(), "-", "")[:idLength]
}

// CleanMarkup strips HTML tags, decodes entities and normalizes the text to
// NFC so Hangul from different providers compares equal.
func CleanMarkup(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

var sourceAliases = map[string]string{
	"bbc-news":            "BBC News",
	"cnn":                 "CNN",
	"reuters":             "Reuters",
	"associated-press":    "AP 통신",
	"the-guardian-uk":     "The Guardian",
	"the-new-york-times":  "New York Times",
	"bloomberg":           "Bloomberg",
	"financial-times":     "Financial Times",
	"wall-street-journal": "Wall Street Journal",
	"abc-news":            "ABC News",
	"fox-news":            "Fox News",
	"nbc-news":            "NBC News",
	"usa-today":           "USA Today",
	"yonhap-news-agency":  "연합뉴스",
	"nhk-world":           "NHK World",
	"japan-times":         "Japan Times",
	"asahi-shimbun":       "아사히신문",
}

// SourceAlias maps a provider source name to its display alias. Names are
// compared lowercased with spaces folded to dashes, so "BBC News" and
// "bbc-news" resolve alike.
func SourceAlias(name string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	if alias, ok := sourceAliases[key]; ok {
		return alias
	}
	return name
}

// naverPublishers is ordered; the first domain contained in the host wins.
var naverPublishers = []struct {
	domain string
	name   string
}{
	{"chosun.com", "조선일보"},
	{"joongang.co.kr", "중앙일보"},
	{"donga.com", "동아일보"},
	{"hankyoreh.com", "한겨레"},
	{"khan.co.kr", "경향신문"},
	{"ytn.co.kr", "YTN"},
	{"sbs.co.kr", "SBS"},
	{"kbs.co.kr", "KBS"},
	{"mbc.co.kr", "MBC"},
	{"jtbc.co.kr", "JTBC"},
}

const naverFallbackSource = "Naver News"

// PublisherFromLink resolves a publisher name from an article link.
func PublisherFromLink(link string) string {
	if link == "" {
		return naverFallbackSource
	}
	u, err := url.Parse(link)
	if err != nil {
		return naverFallbackSource
	}
	host := u.Hostname()
	for _, p := range naverPublishers {
		if strings.Contains(host, p.domain) {
			return p.name
		}
	}
	if host = strings.TrimPrefix(host, "www."); host != "" {
		return host
	}
	return naverFallbackSource
}

// SourceDisplay renders "<alias> <localized timestamp>".
func SourceDisplay(name string, published time.Time, loc *time.Location) string {
	alias := SourceAlias(name)
	if published.IsZero() {
		return alias
	}
	return alias + " " + FormatKoreanTime(published, loc)
}

// FormatKoreanTime formats t the way ko-KR locales print a short date-time,
// e.g. "2025. 10. 01. 오후 03:04".
func FormatKoreanTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	meridiem := "오전"
	if t.Hour() >= 12 {
		meridiem = "오후"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%04d. %02d. %02d. %s %02d:%02d", t.Year(), int(t.Month()), t.Day(), meridiem, hour, t.Minute())
}
