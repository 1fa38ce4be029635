package trend

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/trendposter/pkg/domain"
)

// parseGoogleRSS extracts trends from the Google Trends daily RSS feed.
// Approximate traffic comes from the ht:approx_traffic extension element.
func parseGoogleRSS(body []byte) ([]domain.Trend, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	res := make([]domain.Trend, 0, len(feed.Items))
	for _, item := range feed.Items {
		t := domain.Trend{Name: strings.TrimSpace(item.Title)}
		if ht, ok := item.Extensions["ht"]; ok {
			if traffic := ht["approx_traffic"]; len(traffic) > 0 {
				t.Volume = strings.TrimSpace(traffic[0].Value)
			}
		}
		if len(item.Categories) > 0 {
			t.Category = item.Categories[0]
		}
		res = append(res, t)
	}
	return res, nil
}
