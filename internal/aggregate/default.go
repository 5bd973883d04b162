package aggregate

import (
	"time"

	"emarknews/internal/enrich"
	"emarknews/internal/news"
)

// DefaultResult is served when nothing has been cached yet and a refresh
// cannot produce a result.
func DefaultResult(now time.Time) Result {
	stamp := news.FormatKoreanTime(now, nil)
	article := func(id, title, summary, description, full, link, source string, marks []string, stars int, category string, keywords []string) news.Article {
		return news.Article{
			ID:          id,
			Title:       title,
			Description: description,
			URL:         link,
			OriginalURL: link,
			PublishedAt: now,
			Source:      news.Source{Name: source, Display: source + " " + stamp},
			Summary:     summary,
			Detail:      description,
			FullContent: full,
			Marks:       marks,
			Stars:       stars,
			Category:    category,
			Keywords:    keywords,
		}
	}

	return Result{
		Sections: Sections{
			World: []news.Article{article(
				"default-world-1",
				"NASA 우주비행사 지구 귀환 성공",
				"• NASA 크루-10 미션 4명 우주비행사가 5개월간의 국제우주정거장 체류를 마치고 안전하게 지구로 귀환했습니다\n• 재진입 과정에서 3,000도 고온을 경험하며 17시간의 여행을 완료했습니다\n• 이번 미션에서는 다양한 과학 실험과 우주정거장 유지보수 작업을 성공적으로 수행했습니다",
				"NASA 크루-10 미션의 4명 우주비행사들이 국제우주정거장에서 5개월간의 장기 체류를 성공적으로 마치고 지구로 안전하게 귀환했습니다.",
				"NASA 크루-10 미션의 4명 우주비행사들이 국제우주정거장에서 5개월간의 장기 체류를 성공적으로 마치고 지구로 안전하게 귀환했습니다. 이번 미션에서는 다양한 과학 실험과 우주정거장 유지보수 작업을 성공적으로 수행했습니다.",
				"https://www.nasa.gov/news/crew-10-return",
				"NASA",
				[]string{enrich.MarkImportant, enrich.MarkBuzz}, 4, enrich.CategoryScience,
				[]string{"NASA", "우주", "과학", "귀환"},
			)},
			Korea: []news.Article{article(
				"default-korea-1",
				"손흥민 MLS 데뷔전에서 강렬한 인상",
				"• 손흥민 선수가 미국 메이저리그 사커 데뷔전에서 1골 1어시스트를 기록하며 화려한 활약을 펼쳤습니다\n• MLS 홈페이지에서 \"손흥민의 시대가 시작됐다\"고 극찬했습니다\n• 팬들과 언론은 그의 MLS 적응력과 리더십에 대해 높은 기대를 표하고 있습니다",
				"손흥민 선수가 MLS 데뷔전에서 놀라운 활약을 보여주며 새로운 도전의 성공적인 시작을 알렸습니다.",
				"손흥민 선수가 MLS 데뷔전에서 놀라운 활약을 보여주며 새로운 도전의 성공적인 시작을 알렸습니다. 팬들과 언론은 그의 MLS 적응력과 리더십에 대해 높은 기대를 표하고 있습니다.",
				"https://www.mls.com/son-debut",
				"MLS",
				[]string{enrich.MarkUrgent, enrich.MarkBuzz}, 5, enrich.CategorySports,
				[]string{"손흥민", "MLS", "스포츠", "데뷔"},
			)},
			Japan: []news.Article{article(
				"default-japan-1",
				"오타니 쇼헤이, 시즌 50홈런 달성",
				"• 오타니 쇼헤이가 2024시즌 50번째 홈런을 기록하며 역사적인 순간을 만들어냈습니다\n• 이는 일본 선수로는 최초로 MLB에서 50홈런을 달성한 기록입니다\n• 팬들과 언론은 그의 놀라운 성과에 대해 극찬을 아끼지 않고 있습니다",
				"오타니 쇼헤이가 MLB에서 일본 선수 최초로 시즌 50홈런을 달성하는 역사적인 순간을 만들어냈습니다.",
				"오타니 쇼헤이가 MLB에서 일본 선수 최초로 시즌 50홈런을 달성하는 역사적인 순간을 만들어냈습니다. 팬들과 언론은 그의 놀라운 성과에 대해 극찬을 아끼지 않고 있습니다.",
				"https://www.mlb.com/ohtani-50-homeruns",
				"MLB",
				[]string{enrich.MarkImportant, enrich.MarkBuzz}, 5, enrich.CategorySports,
				[]string{"오타니", "쇼헤이", "홈런", "기록"},
			)},
		},
		Trending: []enrich.TrendingKeyword{
			{Keyword: "NASA", Count: 25},
			{Keyword: "손흥민", Count: 22},
			{Keyword: "오타니", Count: 20},
			{Keyword: "MLS", Count: 18},
			{Keyword: "우주탐사", Count: 15},
			{Keyword: "스포츠", Count: 12},
			{Keyword: "과학", Count: 10},
			{Keyword: "기술", Count: 8},
		},
		ExchangeRates: news.DefaultRates(now),
		SystemStatus: SystemStatus{
			Version:    Version,
			LastUpdate: now,
			Features:   append([]string(nil), features...),
		},
	}
}
