package narrator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
)

// Conservative defaults filled in when pattern extraction finds an option
// without numeric fields.
const extractedSuccessRate = 0.5

// FallbackNarration is recorded when every parse stage fails. It describes
// an ambiguous, continuable scene so the session can keep moving.
const FallbackNarration = "The scene shifts in ways hard to describe. The air feels heavy with possibility, and the path forward is unclear. You sense that careful observation might reveal more."

// Parse coerces raw narrator output into a result payload.
//
// Stages run in order, first success wins: strict JSON decode, lenient
// field lookup tolerant of surrounding prose and formatting, pattern-based
// extraction of narration and option fragments, and finally a synthesized
// fallback. Parse never fails; acceptance rules are a separate concern
// handled by Accept.
func Parse(raw string) history.Result {
	if result, ok := parseStrict(raw); ok {
		return clampOptions(result)
	}
	if result, ok := parseLenient(raw); ok {
		return clampOptions(result)
	}
	if result, ok := parseExtract(raw); ok {
		return clampOptions(result)
	}
	return Fallback()
}

// Accept applies the acceptance rules to an already-parsed result.
//
// Turn > 0 responses must carry at least one option, and a narration that
// repeats the previous narrator entry verbatim (case-insensitively) is
// rejected. Both violations abort the turn.
func Accept(result history.Result, turn int, previousNarration string) error {
	if turn > 0 && len(result.Options) == 0 {
		return apperrors.New(apperrors.CodeValidationFailure, "narrator returned no options on a continuation turn")
	}
	previous := strings.TrimSpace(previousNarration)
	if previous != "" && strings.EqualFold(strings.TrimSpace(result.Narration), previous) {
		return apperrors.New(apperrors.CodeValidationFailure, "narrator repeated the previous narration")
	}
	return nil
}

// Fallback synthesizes the canned result used when all parse stages fail.
func Fallback() history.Result {
	return history.Result{
		Narration: FallbackNarration,
		Options: []history.Option{
			{ID: 1, Description: "Look around carefully", SuccessRate: 0.9},
			{ID: 2, Description: "Wait and listen", SuccessRate: 0.95},
		},
	}
}

// parseStrict decodes the raw text as the exact result schema.
func parseStrict(raw string) (history.Result, bool) {
	var result history.Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return history.Result{}, false
	}
	if strings.TrimSpace(result.Narration) == "" {
		return history.Result{}, false
	}
	return result, true
}

// parseLenient tolerates prose or code fences around the JSON object and
// quoting deviations inside it.
func parseLenient(raw string) (history.Result, bool) {
	candidate := extractObject(raw)
	if candidate == "" {
		return history.Result{}, false
	}

	parsed := gjson.Parse(candidate)
	narration := parsed.Get("narration")
	if !narration.Exists() || strings.TrimSpace(narration.String()) == "" {
		return history.Result{}, false
	}

	result := history.Result{Narration: narration.String(), Options: []history.Option{}}
	for _, item := range parsed.Get("options").Array() {
		option := history.Option{
			ID:                int(item.Get("id").Int()),
			Description:       item.Get("description").String(),
			SuccessRate:       item.Get("success_rate").Float(),
			HealthPointChange: item.Get("health_point_change").Float(),
			ManaPointChange:   item.Get("mana_point_change").Float(),
			RelatedStat:       item.Get("related_stat").String(),
		}
		if option.ID == 0 && option.Description == "" {
			continue
		}
		if option.ID == 0 {
			option.ID = len(result.Options) + 1
		}
		if !item.Get("success_rate").Exists() {
			option.SuccessRate = extractedSuccessRate
		}
		result.Options = append(result.Options, option)
	}
	return result, true
}

// extractObject returns the outermost {...} span of the text, if any.
func extractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

var (
	narrationPattern = regexp.MustCompile(`(?s)"?narration"?\s*[:=]\s*"((?:[^"\\]|\\.)*)"`)
	optionPattern    = regexp.MustCompile(`(?s)\{[^{}]*?"?id"?\s*[:=]\s*(\d+)[^{}]*?"?description"?\s*[:=]\s*"((?:[^"\\]|\\.)*)"[^{}]*\}`)
	ratePattern      = regexp.MustCompile(`"?success_rate"?\s*[:=]\s*([0-9.]+)`)
	statPattern      = regexp.MustCompile(`"?related_stat"?\s*[:=]\s*"([^"]*)"`)
)

// parseExtract scavenges narration and option fragments from malformed
// output. Absent numeric fields get conservative defaults.
func parseExtract(raw string) (history.Result, bool) {
	narrationMatch := narrationPattern.FindStringSubmatch(raw)
	if narrationMatch == nil {
		return history.Result{}, false
	}
	narration := unescape(narrationMatch[1])
	if strings.TrimSpace(narration) == "" {
		return history.Result{}, false
	}

	result := history.Result{Narration: narration, Options: []history.Option{}}
	for _, fragment := range optionPattern.FindAllStringSubmatch(raw, -1) {
		id, err := strconv.Atoi(fragment[1])
		if err != nil {
			continue
		}
		option := history.Option{
			ID:          id,
			Description: unescape(fragment[2]),
			SuccessRate: extractedSuccessRate,
		}
		if rate := ratePattern.FindStringSubmatch(fragment[0]); rate != nil {
			if value, err := strconv.ParseFloat(rate[1], 64); err == nil {
				option.SuccessRate = value
			}
		}
		if stat := statPattern.FindStringSubmatch(fragment[0]); stat != nil {
			option.RelatedStat = stat[1]
		}
		result.Options = append(result.Options, option)
	}
	return result, true
}

func unescape(value string) string {
	var decoded string
	if err := json.Unmarshal([]byte(`"`+value+`"`), &decoded); err != nil {
		return value
	}
	return decoded
}

func clampOptions(result history.Result) history.Result {
	if result.Options == nil {
		result.Options = []history.Option{}
	}
	for i := range result.Options {
		result.Options[i] = result.Options[i].Clamp()
	}
	return result
}
