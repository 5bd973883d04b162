package translate

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var baseEntries = map[string]string{
	"breaking":      "속보",
	"news":          "뉴스",
	"update":        "업데이트",
	"report":        "보고서",
	"analysis":      "분석",
	"government":    "정부",
	"president":     "대통령",
	"minister":      "장관",
	"company":       "회사",
	"market":        "시장",
	"economy":       "경제",
	"business":      "비즈니스",
	"technology":    "기술",
	"science":       "과학",
	"health":        "건강",
	"sports":        "스포츠",
	"culture":       "문화",
	"entertainment": "엔터테인먼트",
	"politics":      "정치",
	"international": "국제",
	"domestic":      "국내",
	"global":        "글로벌",
	"world":         "세계",
	"country":       "국가",
	"city":          "도시",
	"people":        "사람들",
	"public":        "공공",
	"private":       "민간",
	"official":      "공식",
	"statement":     "성명",
	"announcement":  "발표",
	"decision":      "결정",
	"agreement":     "합의",
	"meeting":       "회의",
	"conference":    "회의",
	"summit":        "정상회담",
	"trade":         "무역",
	"investment":    "투자",
	"finance":       "금융",
	"bank":          "은행",
	"stock":         "주식",
	"price":         "가격",
	"increase":      "증가",
	"decrease":      "감소",
	"growth":        "성장",
	"development":   "개발",
	"research":      "연구",
	"study":         "연구",
	"project":       "프로젝트",
	"program":       "프로그램",
	"policy":        "정책",
	"law":           "법",
	"regulation":    "규제",
	"reform":        "개혁",
	"change":        "변화",
	"new":           "새로운",
	"latest":        "최신",
	"recent":        "최근",
	"current":       "현재",
	"future":        "미래",
	"past":          "과거",
	"year":          "년",
	"month":         "월",
	"week":          "주",
	"day":           "일",
	"today":         "오늘",
	"yesterday":     "어제",
	"tomorrow":      "내일",

	"japan":    "일본",
	"japanese": "일본의",
	"tokyo":    "도쿄",
	"osaka":    "오사카",
	"kyoto":    "교토",
	"ohtani":   "오타니",
	"shohei":   "쇼헤이",
	"baseball": "야구",
	"mlb":      "MLB",
	"dodgers":  "다저스",
	"angels":   "에인절스",

	"korea":   "한국",
	"korean":  "한국의",
	"seoul":   "서울",
	"busan":   "부산",
	"samsung": "삼성",
	"lg":      "LG",
	"hyundai": "현대",
	"kia":     "기아",

	"america":        "미국",
	"american":       "미국의",
	"usa":            "미국",
	"china":          "중국",
	"chinese":        "중국의",
	"europe":         "유럽",
	"european":       "유럽의",
	"russia":         "러시아",
	"russian":        "러시아의",
	"ukraine":        "우크라이나",
	"nato":           "NATO",
	"united nations": "유엔",
	"white house":    "백악관",
	"congress":       "의회",
	"senate":         "상원",
	"house":          "하원",

	"ai":                      "AI",
	"artificial intelligence": "인공지능",
	"machine learning":        "머신러닝",
	"blockchain":              "블록체인",
	"cryptocurrency":          "암호화폐",
	"bitcoin":                 "비트코인",
	"ethereum":                "이더리움",
	"meta":                    "메타",
	"facebook":                "페이스북",
	"google":                  "구글",
	"apple":                   "애플",
	"microsoft":               "마이크로소프트",
	"amazon":                  "아마존",
	"tesla":                   "테슬라",
	"nvidia":                  "엔비디아",
	"intel":                   "인텔",
	"amd":                     "AMD",
}

// Dictionary is the last-resort word-for-word translator.
type Dictionary struct {
	entries map[string]string
	pattern *regexp.Regexp
}

// NewDictionary builds a dictionary from the built-in entries plus extra,
// which may override built-ins.
func NewDictionary(extra map[string]string) *Dictionary {
	entries := make(map[string]string, len(baseEntries)+len(extra))
	for k, v := range baseEntries {
		entries[k] = v
	}
	for k, v := range extra {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || v == "" {
			continue
		}
		entries[k] = v
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	// Longer entries first so "white house" wins over "house".
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}

	return &Dictionary{
		entries: entries,
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// TranslateText replaces every whole-word entry, case-insensitively, in a
// single pass over text.
func (d *Dictionary) TranslateText(text string) string {
	return d.pattern.ReplaceAllStringFunc(text, func(match string) string {
		if v, ok := d.entries[strings.ToLower(match)]; ok {
			return v
		}
		return match
	})
}

// Name identifies the dictionary in logs and results.
func (d *Dictionary) Name() string {
	return StrategyDictionary
}

// Translate produces all three content blocks from the dictionary. It never fails.
func (d *Dictionary) Translate(title, description string) Result {
	translatedTitle := d.TranslateText(title)
	translatedDescription := d.TranslateText(description)

	detailed := translatedDescription
	if utf8.RuneCountInString(detailed) > dictionaryDetail {
		detailed = truncateRunes(detailed, dictionaryDetail) + "..."
	}

	return Result{
		Summary:     BasicSummary(translatedDescription),
		Detailed:    detailed,
		FullContent: translatedTitle + "\n\n" + translatedDescription + "\n\n" + dictionaryFootnote,
		Strategy:    StrategyDictionary,
	}
}
