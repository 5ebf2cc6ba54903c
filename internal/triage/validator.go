package triage

import (
	"fmt"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

// FallbackDraft is the customer-safe reply stored when triage fails or the
// model returns no usable draft. It must never expose internal details.
const FallbackDraft = "We are reviewing your request and will get back to you shortly."

// DefaultSentiment substitutes for missing or out-of-range sentiment scores.
const DefaultSentiment = 5

// Result is the validated triage outcome. Every field is a member of its
// closed enumeration; raw model output never passes through unchecked.
type Result struct {
	Category       domain.Category
	Urgency        domain.Urgency
	SentimentScore int
	DraftReply     string
	Warnings       []string
}

// category aliases the model drifts into, after normalization.
var categoryAliases = map[string]domain.Category{
	"billing":         domain.CategoryBilling,
	"technical":       domain.CategoryTechnical,
	"feature":         domain.CategoryFeature,
	"feature_request": domain.CategoryFeature,
	"general":         domain.CategoryGeneral,
}

var urgencyValues = map[string]domain.Urgency{
	"high":   domain.UrgencyHigh,
	"medium": domain.UrgencyMedium,
	"low":    domain.UrgencyLow,
}

// Validate normalizes raw model output into a usable Result. It never fails:
// unrecognized or out-of-range values are replaced with safe defaults and
// recorded as warnings.
func Validate(raw *RawResult) Result {
	if raw == nil {
		return Result{
			Category:       domain.CategoryGeneral,
			Urgency:        domain.UrgencyMedium,
			SentimentScore: DefaultSentiment,
			DraftReply:     FallbackDraft,
			Warnings:       []string{"no triage output; using defaults"},
		}
	}

	result := Result{
		Category:       domain.CategoryGeneral,
		Urgency:        domain.UrgencyMedium,
		SentimentScore: DefaultSentiment,
		DraftReply:     raw.DraftReply,
	}

	if category, ok := categoryAliases[Normalize(raw.Category)]; ok {
		result.Category = category
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unrecognized category %q; defaulting to %s", raw.Category, domain.CategoryGeneral))
	}

	if urgency, ok := urgencyValues[Normalize(raw.Urgency)]; ok {
		result.Urgency = urgency
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unrecognized urgency %q; defaulting to %s", raw.Urgency, domain.UrgencyMedium))
	}

	switch {
	case raw.SentimentScore == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("missing sentiment score; defaulting to %d", DefaultSentiment))
	case *raw.SentimentScore < domain.SentimentMin || *raw.SentimentScore > domain.SentimentMax:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("sentiment score %d out of range; defaulting to %d", *raw.SentimentScore, DefaultSentiment))
	default:
		result.SentimentScore = *raw.SentimentScore
	}

	if strings.TrimSpace(result.DraftReply) == "" {
		result.DraftReply = FallbackDraft
		result.Warnings = append(result.Warnings, "empty draft reply; substituting fallback")
	}

	return result
}

// Normalize makes enum comparison tolerant of model drift: trim, lowercase,
// collapse internal whitespace to underscores.
func Normalize(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(value))), "_")
}
