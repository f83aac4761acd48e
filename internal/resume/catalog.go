package resume

import (
	"math"
	"strings"
	"time"
)

// TemplateInfo describes one selectable layout for the template picker.
type TemplateInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Features    []string `json:"features"`
}

var templates = []TemplateInfo{
	{ID: TemplateClassic, Name: "Classic", Description: "Traditional professional layout with clean typography", Category: "Professional", Difficulty: "Easy", Features: []string{"Clean Layout", "Professional", "ATS Friendly"}},
	{ID: TemplateModern, Name: "Modern", Description: "Contemporary design with bold colors and modern typography", Category: "Creative", Difficulty: "Medium", Features: []string{"Bold Colors", "Modern Typography", "Creative"}},
	{ID: TemplateCreative, Name: "Creative", Description: "Artistic and unique styling for creative professionals", Category: "Creative", Difficulty: "Hard", Features: []string{"Unique Design", "Creative", "Stand Out"}},
	{ID: TemplateMinimal, Name: "Minimal", Description: "Simple and elegant design focusing on content", Category: "Professional", Difficulty: "Easy", Features: []string{"Simple", "Elegant", "Content Focused"}},
	{ID: TemplateProfessional, Name: "Professional", Description: "Corporate and formal design for business professionals", Category: "Professional", Difficulty: "Medium", Features: []string{"Corporate", "Formal", "Business Ready"}},
	{ID: TemplateTech, Name: "Tech", Description: "Perfect for developers and engineers with code-like styling", Category: "Technical", Difficulty: "Medium", Features: []string{"Developer Friendly", "Code Styling", "Technical"}},
	{ID: TemplateDesign, Name: "Design", Description: "Creative design template for designers and artists", Category: "Creative", Difficulty: "Hard", Features: []string{"Design Focused", "Creative", "Portfolio Ready"}},
	{ID: TemplateExecutive, Name: "Executive", Description: "Senior-level template with executive styling", Category: "Professional", Difficulty: "Medium", Features: []string{"Executive", "Senior Level", "Leadership"}},
}

// Templates returns the catalog, optionally filtered by category (case-insensitive).
func Templates(category string) []TemplateInfo {
	category = strings.TrimSpace(category)
	out := make([]TemplateInfo, 0, len(templates))
	for _, t := range templates {
		if category == "" || strings.EqualFold(category, "all") || strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out
}

// IsTemplate reports whether id names a known template.
func IsTemplate(id string) bool {
	for _, t := range templates {
		if t.ID == id {
			return true
		}
	}
	return false
}

// FullName joins first and last name.
func (p PersonalInfo) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

const hoursPerYear = 24 * 365

// TotalExperience sums experience durations in years, rounded to one decimal.
// Current positions run until now; entries without an end date and not current count as zero.
func TotalExperience(entries []Experience, now time.Time) float64 {
	var total time.Duration
	for _, e := range entries {
		var end time.Time
		switch {
		case e.Current:
			end = now
		case !e.EndDate.IsZero():
			end = e.EndDate.Time
		default:
			continue
		}
		if end.After(e.StartDate.Time) {
			total += end.Sub(e.StartDate.Time)
		}
	}
	return math.Round(total.Hours()/hoursPerYear*10) / 10
}
