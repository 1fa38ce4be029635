package domain

// Trend represents an externally observed trending topic
type Trend struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Volume     string `json:"volume,omitempty"`      // free-form hint, e.g. "125K"
	VolumeUnit string `json:"volume_unit,omitempty"` // what volume counts, e.g. posts or searches
}

// TrendNames returns names of the given trends, preserving order
func TrendNames(trends []Trend) []string {
	names := make([]string, 0, len(trends))
	for _, t := range trends {
		names = append(names, t.Name)
	}
	return names
}
