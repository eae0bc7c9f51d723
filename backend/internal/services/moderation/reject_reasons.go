package moderation

import (
	"sort"
	"strings"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/pkg/validate"
)

type RejectReasonItem struct {
	ReasonCode      string
	Label           string
	ReasonText      string
	RequiredFixStep string
}

type rejectReasonTemplate struct {
	Label           string
	ReasonText      string
	RequiredFixStep string
}

var rejectReasonTemplates = map[string]rejectReasonTemplate{
	"INSUFFICIENT_DETAIL": {
		Label:           "Insufficient detail",
		ReasonText:      "The petition does not explain the problem or the requested change clearly enough.",
		RequiredFixStep: "Describe the issue, who it affects and what you are asking for, then resubmit.",
	},
	"MISSING_TARGET": {
		Label:           "No clear addressee",
		ReasonText:      "The petition does not name the institution or official it is addressed to.",
		RequiredFixStep: "Name the decision maker the petition targets and resubmit.",
	},
	"DUPLICATE": {
		Label:           "Duplicate petition",
		ReasonText:      "A petition with the same demand is already live on the platform.",
		RequiredFixStep: "Sign and share the existing petition instead, or explain how yours differs.",
	},
	"HATE_OR_HARASSMENT": {
		Label:           "Hate speech or harassment",
		ReasonText:      "The petition contains hateful, abusive or harassing content.",
		RequiredFixStep: "Remove the offending content and resubmit.",
	},
	"PERSONAL_DATA": {
		Label:           "Personal data exposed",
		ReasonText:      "The petition publishes private information about an individual.",
		RequiredFixStep: "Remove phone numbers, addresses and other personal details, then resubmit.",
	},
	"MISLEADING": {
		Label:           "Misleading claims",
		ReasonText:      "The petition makes factual claims that could not be verified.",
		RequiredFixStep: "Add sources for your claims or remove them, then resubmit.",
	},
	"SPAM_ADS_LINKS": {
		Label:           "Spam, ads or links",
		ReasonText:      "The petition contains advertising, spam or unrelated external links.",
		RequiredFixStep: "Remove the promotional content and links, then resubmit.",
	},
	"WRONG_CATEGORY": {
		Label:           "Wrong category",
		ReasonText:      "The selected category does not match the petition subject.",
		RequiredFixStep: "Pick the category that fits the petition and resubmit.",
	},
	"OTHER": {
		Label:           "Other",
		ReasonText:      "The petition needs changes before it can be published.",
		RequiredFixStep: "Follow the moderator's notes and resubmit.",
	},
}

func (s *Service) ListRejectReasons() []RejectReasonItem {
	codes := make([]string, 0, len(rejectReasonTemplates))
	for code := range rejectReasonTemplates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	items := make([]RejectReasonItem, 0, len(codes))
	for _, code := range codes {
		template := rejectReasonTemplates[code]
		items = append(items, RejectReasonItem{
			ReasonCode:      code,
			Label:           strings.TrimSpace(template.Label),
			ReasonText:      strings.TrimSpace(template.ReasonText),
			RequiredFixStep: strings.TrimSpace(template.RequiredFixStep),
		})
	}

	return items
}

// resolveNotes trims free-form notes and falls back to the template text
// of reasonCode when the notes are empty.
func resolveNotes(notes, reasonCode string) (string, error) {
	notes = validate.Text(notes)
	code := strings.ToUpper(strings.TrimSpace(reasonCode))
	if code == "" {
		return notes, nil
	}

	template, ok := rejectReasonTemplates[code]
	if !ok {
		return "", apperr.Validation("reason_code", "unknown reject reason code")
	}
	if notes != "" {
		return notes, nil
	}
	return template.ReasonText + " " + template.RequiredFixStep, nil
}
