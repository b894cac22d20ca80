package verification

import (
	"encoding/json"
	"math"

	"github.com/vytor/learnflow/internal/models"
)

// Area is one of the three teach-back scoring dimensions.
type Area string

const (
	AreaAccuracy     Area = "accuracy"
	AreaCompleteness Area = "completeness"
	AreaClarity      Area = "clarity"
)

// IsValid reports whether a is a known area.
func (a Area) IsValid() bool {
	switch a {
	case AreaAccuracy, AreaCompleteness, AreaClarity:
		return true
	}
	return false
}

// EvaluateAssessment is the model's verdict on an evaluate challenge.
type EvaluateAssessment struct {
	ChallengePassed bool   `json:"challengePassed"`
	FlawIdentified  string `json:"flawIdentified,omitempty"`
	Quality         int    `json:"quality"`
}

// TeachBackAssessment is the model's verdict on a teach-back explanation.
// Scores are on 0-5.
type TeachBackAssessment struct {
	Completeness   float64 `json:"completeness"`
	Accuracy       float64 `json:"accuracy"`
	Clarity        float64 `json:"clarity"`
	OverallQuality float64 `json:"overallQuality"`
	WeakestArea    Area    `json:"weakestArea"`
	GapIdentified  *string `json:"gapIdentified"`
}

const (
	evaluateKey  = "challengePassed"
	teachBackKey = "completeness"

	defaultScore = 3.0
)

// ParseEvaluateAssessment extracts an evaluate verdict from free-form model
// output. It returns nil when no JSON object carrying challengePassed as a
// boolean can be found.
func ParseEvaluateAssessment(text string) *EvaluateAssessment {
	obj := findObject(text, evaluateKey)
	if obj == nil {
		return nil
	}

	var a EvaluateAssessment
	if isNull(obj[evaluateKey]) {
		return nil
	}
	if err := json.Unmarshal(obj[evaluateKey], &a.ChallengePassed); err != nil {
		return nil
	}
	if raw, ok := obj["quality"]; ok {
		var q float64
		if err := json.Unmarshal(raw, &q); err == nil {
			a.Quality = int(math.Round(clampFloat(q, 0, 5)))
		}
	}
	if raw, ok := obj["flawIdentified"]; ok {
		var flaw string
		if err := json.Unmarshal(raw, &flaw); err == nil {
			a.FlawIdentified = flaw
		}
	}
	return &a
}

// ParseTeachBackAssessment extracts a teach-back verdict from free-form
// model output. Scores are clamped to 0-5 and default to 3 when missing; the
// weakest area is inferred when the model does not name a valid one.
func ParseTeachBackAssessment(text string) *TeachBackAssessment {
	obj := findObject(text, teachBackKey)
	if obj == nil {
		return nil
	}

	a := TeachBackAssessment{
		Completeness:   score(obj, "completeness"),
		Accuracy:       score(obj, "accuracy"),
		Clarity:        score(obj, "clarity"),
		OverallQuality: score(obj, "overallQuality"),
	}

	if raw, ok := obj["weakestArea"]; ok {
		var area string
		if err := json.Unmarshal(raw, &area); err == nil && Area(area).IsValid() {
			a.WeakestArea = Area(area)
		}
	}
	if a.WeakestArea == "" {
		a.WeakestArea = weakest(a)
	}

	if raw, ok := obj["gapIdentified"]; ok {
		var gap *string
		if err := json.Unmarshal(raw, &gap); err == nil {
			a.GapIdentified = gap
		}
	}
	return &a
}

func score(obj map[string]json.RawMessage, key string) float64 {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return defaultScore
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return defaultScore
	}
	return clampFloat(v, 0, 5)
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// weakest picks the lowest score; ties go to accuracy, then completeness.
func weakest(a TeachBackAssessment) Area {
	area, low := AreaAccuracy, a.Accuracy
	if a.Completeness < low {
		area, low = AreaCompleteness, a.Completeness
	}
	if a.Clarity < low {
		area = AreaClarity
	}
	return area
}

// LatestEvaluateAssessment returns the first verdict found in events, which
// are expected newest first.
func LatestEvaluateAssessment(events []models.Event) *EvaluateAssessment {
	for _, ev := range events {
		if a := ParseEvaluateAssessment(ev.Content); a != nil {
			return a
		}
	}
	return nil
}

// LatestTeachBackAssessment returns the first verdict found in events, which
// are expected newest first.
func LatestTeachBackAssessment(events []models.Event) *TeachBackAssessment {
	for _, ev := range events {
		if a := ParseTeachBackAssessment(ev.Content); a != nil {
			return a
		}
	}
	return nil
}

// findObject returns the first JSON object in text that decodes cleanly and
// contains key. Objects nested inside prose or code fences are found too.
func findObject(text, key string) map[string]json.RawMessage {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end := matchBrace(text, start)
		if end < 0 {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
			continue
		}
		if _, ok := obj[key]; ok {
			return obj
		}
	}
	return nil
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
