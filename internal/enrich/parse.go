package enrich

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

const placeholderSummary = "We couldn't generate a summary for this coffee shop right now. Please try again later."

// Parse decodes a provider reply into a summary and checks the required
// fields. Markdown code fences and text around the object are ignored.
func Parse(raw string) (*model.AISummary, error) {
	body := cleanJSON(raw)
	if body == "" {
		return nil, eris.New("enrich: response contains no JSON object")
	}

	var s model.AISummary
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, eris.Wrap(err, "enrich: decode response")
	}
	if missing := s.MissingRequired(); len(missing) > 0 {
		return nil, eris.Errorf("enrich: response missing required fields: %s", strings.Join(missing, ", "))
	}
	s.Error = ""
	return &s, nil
}

// Fallback is returned to callers when a reply cannot be used. It is never
// persisted.
func Fallback(p *model.Place, cause error) *model.AISummary {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return &model.AISummary{
		PlaceName:         p.Name,
		SummaryForDisplay: placeholderSummary,
		Error:             msg,
	}
}

func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
