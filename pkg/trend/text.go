package trend

import (
	"fmt"
	"strings"

	"github.com/umputun/trendposter/pkg/domain"
)

// NoTrendsText is rendered for an empty trend list
const NoTrendsText = "No trending topics found."

// Text renders trends as a numbered list, one per line. The same rendering goes into
// the model prompt and to the API, so both always show identical lists.
func Text(trends []domain.Trend) string {
	if len(trends) == 0 {
		return NoTrendsText
	}
	lines := make([]string, 0, len(trends))
	for i, t := range trends {
		line := fmt.Sprintf("%d. %s", i+1, t.Name)
		switch {
		case t.Volume != "" && t.VolumeUnit != "":
			line += fmt.Sprintf(" (%s %s)", t.Volume, t.VolumeUnit)
		case t.Volume != "":
			line += fmt.Sprintf(" (%s)", t.Volume)
		}
		if t.Category != "" {
			line += fmt.Sprintf(" [%s]", t.Category)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
