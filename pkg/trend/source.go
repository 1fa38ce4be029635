// Package trend fetches trending topics from public aggregator sites. Sources are tried
// strictly in order and the first one returning anything wins.
package trend

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/trendposter/pkg/domain"
)

const (
	defaultMaxTrends = 30
	defaultTimeout   = 15 * time.Second
	maxBodySize      = 5 * 1024 * 1024
)

// ParseFunc turns a source response body into an ordered list of trends
type ParseFunc func(body []byte) ([]domain.Trend, error)

// Source is a single trend aggregator. URL may contain {country} and {geo} placeholders.
// VolumeUnit names what the source's volume counts.
type Source struct {
	Name       string
	URL        string
	Parse      ParseFunc
	VolumeUnit string
}

// builtin sources, in default priority order
var builtinSources = []Source{
	{Name: "trends24", URL: "https://trends24.in/{country}/", Parse: parseTrends24, VolumeUnit: "posts"},
	{Name: "getdaytrends", URL: "https://getdaytrends.com/{country}/", Parse: parseGetDayTrends, VolumeUnit: "posts"},
	{Name: "google-rss", URL: "https://trends.google.com/trending/rss?geo={geo}", Parse: parseGoogleRSS, VolumeUnit: "searches"},
}

// DefaultSourceNames returns names of built-in sources in default order
func DefaultSourceNames() []string {
	res := make([]string, 0, len(builtinSources))
	for _, s := range builtinSources {
		res = append(res, s.Name)
	}
	return res
}

// SourcesByName resolves built-in sources by name, keeping the given order.
// overrides replaces the URL of a named source, useful for mirrors and tests.
func SourcesByName(names []string, overrides map[string]string) ([]Source, error) {
	res := make([]Source, 0, len(names))
	for _, name := range names {
		var found bool
		for _, s := range builtinSources {
			if !strings.EqualFold(s.Name, name) {
				continue
			}
			if u, ok := overrides[s.Name]; ok && u != "" {
				s.URL = u
			}
			res = append(res, s)
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("unknown trend source %q", name)
		}
	}
	return res, nil
}

// Params defines fetcher configuration
type Params struct {
	Sources   []Source
	Country   string        // slug for {country}, e.g. united-states
	Geo       string        // code for {geo}, e.g. US
	Timeout   time.Duration // per source request timeout
	MaxTrends int
	UserAgent string
	Client    *http.Client
}

// Fetcher retrieves trends with ordered fallback between sources
type Fetcher struct {
	Params
	policy *bluemonday.Policy
}

// NewFetcher makes a trend fetcher, zero values in params replaced by defaults
func NewFetcher(params Params) *Fetcher {
	if params.Country == "" {
		params.Country = "united-states"
	}
	if params.Geo == "" {
		params.Geo = "US"
	}
	if params.Timeout <= 0 {
		params.Timeout = defaultTimeout
	}
	if params.MaxTrends <= 0 {
		params.MaxTrends = defaultMaxTrends
	}
	if params.Client == nil {
		params.Client = &http.Client{Timeout: params.Timeout}
	}
	if params.Sources == nil {
		params.Sources = builtinSources
	}
	return &Fetcher{Params: params, policy: bluemonday.StrictPolicy()}
}

// GetTrends returns trends from the first source yielding at least one, capped at MaxTrends.
// All sources failing is not an error, the result is just empty.
func (f *Fetcher) GetTrends(ctx context.Context) []domain.Trend {
	for _, src := range f.Sources {
		trends, err := f.fetch(ctx, src)
		if err != nil {
			log.Printf("[WARN] failed to fetch trends from %s: %v", src.Name, err)
			continue
		}
		if len(trends) == 0 {
			log.Printf("[WARN] no trends from %s", src.Name)
			continue
		}
		if len(trends) > f.MaxTrends {
			trends = trends[:f.MaxTrends]
		}
		log.Printf("[INFO] got %d trends from %s", len(trends), src.Name)
		return trends
	}
	log.Printf("[ERROR] all trend sources failed")
	return []domain.Trend{}
}

// fetch retrieves and parses a single source, result is normalized and deduplicated
func (f *Fetcher) fetch(ctx context.Context, src Source) ([]domain.Trend, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL(src), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	trends, err := src.Parse(body)
	if err != nil {
		return nil, err
	}
	trends = f.normalize(trends)
	for i := range trends {
		if trends[i].Volume != "" && trends[i].VolumeUnit == "" {
			trends[i].VolumeUnit = src.VolumeUnit
		}
	}
	return trends, nil
}

func (f *Fetcher) sourceURL(src Source) string {
	r := strings.NewReplacer("{country}", f.Country, "{geo}", f.Geo)
	return r.Replace(src.URL)
}

// normalize cleans names and drops empty and case-insensitive duplicates, keeping first-seen order
func (f *Fetcher) normalize(trends []domain.Trend) []domain.Trend {
	seen := make(map[string]bool, len(trends))
	res := make([]domain.Trend, 0, len(trends))
	for _, t := range trends {
		t.Name = f.clean(t.Name)
		t.Volume = f.clean(t.Volume)
		t.Category = f.clean(t.Category)
		if t.Name == "" {
			continue
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, t)
	}
	return res
}

func (f *Fetcher) clean(s string) string {
	s = html.UnescapeString(f.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}
