package trend

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/umputun/trendposter/pkg/domain"
)

// parseTrends24 extracts trends from trends24.in pages. Each .trend-card holds an ordered list
// for one hour, the first card is the most recent one.
func parseTrends24(body []byte) ([]domain.Trend, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var res []domain.Trend
	doc.Find(".trend-card ol li a").Each(func(_ int, s *goquery.Selection) {
		res = append(res, domain.Trend{Name: strings.TrimSpace(s.Text())})
	})
	return res, nil
}

// parseGetDayTrends extracts trends from getdaytrends.com tables,
// first cell link is the trend name and the second cell is the post count
func parseGetDayTrends(body []byte) ([]domain.Trend, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var res []domain.Trend
	doc.Find("table.table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		link := cells.First().Find("a").First()
		if link.Length() == 0 {
			return
		}
		t := domain.Trend{Name: strings.TrimSpace(link.Text())}
		if cells.Length() > 1 {
			t.Volume = strings.TrimSpace(cells.Eq(1).Text())
		}
		res = append(res, t)
	})
	return res, nil
}
