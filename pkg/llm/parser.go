package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/trendposter/pkg/domain"
)

// fencedRe matches a fenced code block with an optional language tag
var fencedRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\n?(.*?)```")

// ParseSingle parses the best-match response. Returns nil when the model signals no match
// (should_post false or best_tweet_id null) and when the response can't be parsed.
// Unknown ids resolve to an empty draft text.
func ParseSingle(raw string, known map[int64]string) *domain.Analysis {
	obj, err := decodeObject(raw)
	if err != nil {
		log.Printf("[WARN] failed to parse model response: %v, raw: %s", err, truncate(raw, 500))
		return nil
	}

	shouldPostRaw, ok := obj["should_post"]
	if !ok {
		log.Printf("[WARN] model response has no should_post, raw: %s", truncate(raw, 500))
		return nil
	}
	idRaw, ok := obj["best_tweet_id"]
	if !ok {
		log.Printf("[WARN] model response has no best_tweet_id, raw: %s", truncate(raw, 500))
		return nil
	}
	if !truthy(shouldPostRaw) || isNull(idRaw) {
		return nil
	}

	id, err := parseID(idRaw)
	if err != nil {
		log.Printf("[WARN] invalid best_tweet_id in model response: %v", err)
		return nil
	}
	score, err := parseScore(obj["relevance_score"])
	if err != nil {
		log.Printf("[WARN] invalid relevance_score in model response: %v", err)
		return nil
	}

	return &domain.Analysis{
		DraftID:      id,
		DraftText:    known[id],
		Score:        score,
		MatchedTrend: stringValue(obj["matched_trend"]),
		Reasoning:    stringValue(obj["reasoning"]),
		ShouldPost:   true,
	}
}

// ParseRanking parses the rank-all response. Entries with null, non-numeric or unknown ids are
// dropped, ShouldPost is set for positive scores. Result is sorted by score descending, ties keep
// the model's order. Entry without id key, bad score or malformed response gives an empty result.
func ParseRanking(raw string, known map[int64]string) []domain.Analysis {
	obj, err := decodeObject(raw)
	if err != nil {
		log.Printf("[WARN] failed to parse model ranking response: %v, raw: %s", err, truncate(raw, 500))
		return []domain.Analysis{}
	}

	var rankings []map[string]json.RawMessage
	if r, ok := obj["rankings"]; ok && !isNull(r) {
		if err := json.Unmarshal(r, &rankings); err != nil {
			log.Printf("[WARN] invalid rankings in model response: %v", err)
			return []domain.Analysis{}
		}
	}

	res := make([]domain.Analysis, 0, len(rankings))
	for _, r := range rankings {
		idRaw, ok := r["id"]
		if !ok {
			log.Printf("[WARN] ranking entry without id, raw: %s", truncate(raw, 500))
			return []domain.Analysis{}
		}
		id, err := parseID(idRaw)
		if err != nil {
			log.Printf("[WARN] skip ranking entry with invalid id: %v", err)
			continue
		}
		text, ok := known[id]
		if !ok {
			continue // hallucinated id
		}
		score, err := parseScore(r["relevance_score"])
		if err != nil {
			log.Printf("[WARN] invalid ranking score: %v", err)
			return []domain.Analysis{}
		}
		res = append(res, domain.Analysis{
			DraftID:      id,
			DraftText:    text,
			Score:        score,
			MatchedTrend: stringValue(r["matched_trend"]),
			Reasoning:    stringValue(r["reasoning"]),
			ShouldPost:   score > 0,
		})
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].Score > res[j].Score })
	return res
}

// decodeObject extracts a JSON object from model output. Tries the fenced block content first,
// then the whole text, then the largest balanced {...} object found anywhere in the text.
func decodeObject(raw string) (map[string]json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errors.New("empty response")
	}

	candidates := make([]string, 0, 2)
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, text)

	var lastErr error
	for _, c := range candidates {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(c), &obj); err != nil {
			lastErr = err
			continue
		}
		if obj == nil {
			lastErr = errors.New("not a json object")
			continue
		}
		return obj, nil
	}

	if obj := largestObject(text); obj != nil {
		return obj, nil
	}
	return nil, fmt.Errorf("no json object found: %w", lastErr)
}

// largestObject decodes a JSON object starting at every '{' and returns the longest one,
// text after an object is ignored so trailing prose with braces doesn't break parsing
func largestObject(text string) map[string]json.RawMessage {
	var best map[string]json.RawMessage
	var bestLen int64
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil || obj == nil {
			continue
		}
		if size := dec.InputOffset(); size > bestLen {
			best, bestLen = obj, size
		}
	}
	return best
}

// parseID accepts integer ids as JSON numbers or numeric strings
func parseID(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if id, err := n.Int64(); err == nil {
			return id, nil
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f), nil
		}
		return 0, fmt.Errorf("not an integer id: %s", raw)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unexpected id %s", raw)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a numeric id %q", s)
	}
	return id, nil
}

// parseScore truncates a numeric score and clamps it to 0-100, missing or null score is 0
func parseScore(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || isNull(raw) {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("unexpected score %s", raw)
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("not a numeric score %q", s)
		}
	}
	score := int(f)
	switch {
	case score < 0:
		score = 0
	case score > 100:
		score = 100
	}
	return score, nil
}

// truthy follows JSON truthiness: false, null, 0, "" and empty containers are false
func truthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != "" && !strings.EqualFold(val, "false")
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// stringValue returns string content, empty for null, missing or non-string values
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
