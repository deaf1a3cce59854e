package core

import "strings"

// Category is the display annotation assigned to a plan line.
type Category string

const (
	CategoryMedication Category = "medication"
	CategoryLifestyle  Category = "lifestyle"
	CategoryReminder   Category = "reminder"
	CategoryGeneral    Category = "general"
	CategoryPlain      Category = "plain"
)

// Icon returns the marker shown next to bullet lines.  Plain lines have none.
func (c Category) Icon() string {
	switch c {
	case CategoryMedication:
		return "💊"
	case CategoryLifestyle:
		return "🏃"
	case CategoryReminder:
		return "📋"
	case CategoryGeneral:
		return "📈"
	default:
		return ""
	}
}

// PlanLine is one line of generated plan text with its category.
type PlanLine struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

const bulletMarker = "- "

// RenderPlan splits plan text into lines and classifies each bullet by
// keyword.  Precedence is medication, lifestyle, remind/recommend, general.
// Line text is returned unchanged.
func RenderPlan(text string) []PlanLine {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	out := make([]PlanLine, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		out = append(out, PlanLine{Text: l, Category: classify(l)})
	}
	return out
}

func classify(line string) Category {
	if !strings.HasPrefix(strings.TrimLeft(line, " \t"), bulletMarker) {
		return CategoryPlain
	}
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "medication"):
		return CategoryMedication
	case strings.Contains(lower, "lifestyle"):
		return CategoryLifestyle
	case strings.Contains(lower, "remind"), strings.Contains(lower, "recommend"):
		return CategoryReminder
	default:
		return CategoryGeneral
	}
}
