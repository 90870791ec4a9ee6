// Package campaign computes recruitment campaign metrics and provides the
// campaign creation form.
package campaign

import (
	"math"

	"github.com/goliatone/go-formstate/pkg/model"
)

// FormID identifies the campaign creation form.
const FormID = "campaign"

// Stats are delivery counters reported for one campaign.
type Stats struct {
	Sent    int `json:"sent" yaml:"sent"`
	Opened  int `json:"opened" yaml:"opened"`
	Clicked int `json:"clicked" yaml:"clicked"`
}

// OpenRate is the share of sent messages that were opened, as a percentage
// rounded to two decimals. Zero sends yield zero.
func (s Stats) OpenRate() float64 {
	return percentage(s.Opened, s.Sent)
}

// ClickRate is the share of sent messages that were clicked.
func (s Stats) ClickRate() float64 {
	return percentage(s.Clicked, s.Sent)
}

// ClickThroughRate is the share of opened messages that were clicked.
func (s Stats) ClickThroughRate() float64 {
	return percentage(s.Clicked, s.Opened)
}

func percentage(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// Form returns the campaign creation form.
func Form() *model.Schema {
	return model.NewBuilder(FormID).
		Title("Create Campaign").
		Purpose(model.PurposeCampaign).
		Section("details", "Campaign Details",
			model.Field{Key: "name", Label: "Campaign Name", Kind: model.FieldKindText, Required: true,
				Rules: []model.ValidationRule{model.MinLength(3), model.MaxLength(100)}},
			model.Field{Key: "channel", Kind: model.FieldKindEnum, Required: true, Options: []string{"email", "sms", "whatsapp"}},
			model.Field{Key: "audience", Kind: model.FieldKindEnum, Required: true,
				Options: []string{"candidates", "employers", "colleges", "exam_centers"}},
		).
		Section("content", "Content",
			model.Field{Key: "subject", Kind: model.FieldKindText, Required: true, EnabledWhen: `channel == "email"`,
				Rules: []model.ValidationRule{model.MaxLength(150)}},
			model.Field{Key: "message", Kind: model.FieldKindTextArea, Required: true,
				Rules: []model.ValidationRule{model.MinLength(10), model.MaxLength(2000)}},
		).
		Section("schedule", "Schedule",
			model.Field{Key: "sendDate", Label: "Send Date", Kind: model.FieldKindDate, Required: true},
			model.Field{Key: "dailyLimit", Label: "Daily Send Limit", Kind: model.FieldKindNumber,
				Rules: []model.ValidationRule{model.Min(1), model.Max(100000)}},
		).
		MustBuild()
}
