package organizer

import (
	"encoding/json"
	"strings"

	"github.com/jswain/questlog-api/internal/domain"
)

// ExtractResult is the outcome of parsing a model reply. It is always
// produced: when no usable JSON can be found, Recommendations is empty
// and Analysis carries the full raw text. That degraded path is a
// success, not an error.
type ExtractResult struct {
	Analysis        string
	Recommendations []Recommendation
	Summary         string
}

// jsonSpan is a candidate JSON object located inside a larger text,
// along with the text surrounding the match.
type jsonSpan struct {
	object string
	before string
	after  string
}

// extractStrategy locates a candidate JSON object in free text. Each
// strategy is independent; they are tried in order until one yields
// parseable JSON.
type extractStrategy func(string) (jsonSpan, bool)

// extractionStrategies, in order of preference: a fenced code block, the
// first object mentioning the recommendations key, any balanced object.
var extractionStrategies = []extractStrategy{
	extractFencedObject,
	extractObjectWithRecommendations,
	extractFirstObject,
}

// ExtractRecommendations parses the raw text returned by the model and
// validates every recommendation against the candidate task set that was
// offered to it. It never fails: malformed model output degrades to zero
// recommendations with the raw text surfaced as analysis.
func ExtractRecommendations(raw string, candidates []*domain.Task) ExtractResult {
	reply, span, ok := decodeReply(raw)
	if !ok {
		return ExtractResult{
			Analysis:        strings.TrimSpace(raw),
			Recommendations: []Recommendation{},
		}
	}

	byID := make(map[string]*domain.Task, len(candidates))
	for _, task := range candidates {
		byID[task.ID.String()] = task
	}

	recs := make([]Recommendation, 0, len(reply.Recommendations))
	for _, entry := range reply.Recommendations {
		// The model must not be trusted to invent or misquote task IDs.
		task, known := byID[strings.TrimSpace(entry.TaskID)]
		if !known {
			continue
		}
		if rec := reconcile(entry, task); rec != nil {
			recs = append(recs, *rec)
		}
	}

	result := ExtractResult{
		Analysis:        strings.TrimSpace(reply.Analysis),
		Recommendations: recs,
		Summary:         strings.TrimSpace(reply.Summary),
	}

	// Text split around the JSON span fills in whatever the structured
	// reply left blank. Best effort; either side may be empty.
	if result.Analysis == "" {
		result.Analysis = strings.TrimSpace(span.before)
	}
	if result.Summary == "" {
		result.Summary = strings.TrimSpace(span.after)
	}

	return result
}

// decodeReply runs the extraction strategies in order and returns the
// first candidate object that unmarshals as a modelReply.
func decodeReply(raw string) (modelReply, jsonSpan, bool) {
	for _, strategy := range extractionStrategies {
		span, ok := strategy(raw)
		if !ok {
			continue
		}
		var reply modelReply
		if err := json.Unmarshal([]byte(span.object), &reply); err != nil {
			continue
		}
		return reply, span, true
	}
	return modelReply{}, jsonSpan{}, false
}

// extractFencedObject finds a JSON object inside a ``` code fence,
// with or without a language tag.
func extractFencedObject(s string) (jsonSpan, bool) {
	open := strings.Index(s, "```")
	if open < 0 {
		return jsonSpan{}, false
	}

	start := open + 3
	// Skip the language tag line, if any ("json", "JSON", or nothing).
	if nl := strings.Index(s[start:], "\n"); nl >= 0 {
		firstLine := strings.TrimSpace(s[start : start+nl])
		if firstLine == "" || strings.EqualFold(firstLine, "json") {
			start += nl + 1
		}
	}

	closing := strings.Index(s[start:], "```")
	if closing < 0 {
		return jsonSpan{}, false
	}

	object := strings.TrimSpace(s[start : start+closing])
	if !strings.HasPrefix(object, "{") {
		return jsonSpan{}, false
	}

	return jsonSpan{
		object: object,
		before: s[:open],
		after:  s[start+closing+3:],
	}, true
}

// extractObjectWithRecommendations finds the first balanced object that
// contains the recommendations key.
func extractObjectWithRecommendations(s string) (jsonSpan, bool) {
	return scanObjects(s, func(object string) bool {
		return strings.Contains(object, `"recommendations"`)
	})
}

// extractFirstObject finds the first balanced {...} span in the text.
func extractFirstObject(s string) (jsonSpan, bool) {
	return scanObjects(s, func(string) bool { return true })
}

// scanObjects walks the text left to right, producing each balanced
// top-level {...} span and returning the first one the predicate accepts.
func scanObjects(s string, accept func(string) bool) (jsonSpan, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end, ok := balancedEnd(s, i)
		if !ok {
			// No balanced close for this opener; later openers are
			// inside it, so stop scanning.
			return jsonSpan{}, false
		}
		object := s[i : end+1]
		if accept(object) {
			return jsonSpan{
				object: object,
				before: s[:i],
				after:  s[end+1:],
			}, true
		}
		i = end
	}
	return jsonSpan{}, false
}

// balancedEnd returns the index of the brace closing the object opened
// at start, honoring JSON string literals and escapes.
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++ // skip the escaped character
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
