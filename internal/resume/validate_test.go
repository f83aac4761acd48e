package resume

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContent() Content {
	return Content{
		Title:    "Draft",
		Template: TemplateClassic,
		PersonalInfo: PersonalInfo{
			FirstName: "Ann",
			LastName:  "Lee",
			Email:     "a@b.com",
		},
	}
}

func TestValidate_Accepts(t *testing.T) {
	c := sampleContent()
	c.Normalize()
	assert.NoError(t, Validate(c))
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	c := sampleContent()
	c.Title = ""
	c.PersonalInfo.LastName = ""
	c.Experience = []Experience{{Position: "Engineer", StartDate: NewDate(2020, time.January, 1)}}
	c.Languages = []Language{{Name: "French", Proficiency: "some"}}
	c.Normalize()
	c.Styling.FontFamily = "Comic Sans"

	err := Validate(c)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, map[string]string{
		"title":                    "title is required",
		"personalInfo.lastName":    "personalInfo.lastName is required",
		"experience[0].company":    "experience[0].company is required",
		"languages[0].proficiency": "languages[0].proficiency must be one of: basic, conversational, fluent, native",
		"styling.fontFamily":       "styling.fontFamily must be one of: Inter, Poppins, Roboto, Open Sans, Lato",
	}, got)
	assert.Contains(t, err.Error(), "title: title is required")
}

func TestValidate_Limits(t *testing.T) {
	c := sampleContent()
	c.Title = strings.Repeat("x", 101)
	c.Template = "neon"
	c.PersonalInfo.Email = "nope"
	c.Normalize()

	var verr *ValidationError
	require.ErrorAs(t, Validate(c), &verr)
	fields := []string{}
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "template", "personalInfo.email"}, fields)
}

func TestNormalize_FillsDefaults(t *testing.T) {
	c := sampleContent()
	c.Title = "  Draft  "
	c.Skills = []Skill{{Name: " Go "}}
	c.Languages = []Language{{Name: "Hindi"}}
	c.Projects = []Project{{Name: "CLI"}}

	c.Normalize()

	assert.Equal(t, "Draft", c.Title)
	assert.Equal(t, Skill{Name: "Go", Level: "intermediate", Category: "technical"}, c.Skills[0])
	assert.Equal(t, "conversational", c.Languages[0].Proficiency)
	assert.NotNil(t, c.Projects[0].Technologies)
	assert.NotNil(t, c.Experience)
	assert.NotNil(t, c.CustomSections)
	assert.Equal(t, Styling{
		PrimaryColor:   "#0ea5e9",
		SecondaryColor: "#d946ef",
		FontFamily:     "Inter",
		FontSize:       "medium",
		Spacing:        "normal",
	}, c.Styling)
}

func TestTemplates(t *testing.T) {
	assert.Len(t, Templates(""), 8)
	assert.Len(t, Templates("all"), 8)

	technical := Templates("technical")
	require.Len(t, technical, 1)
	assert.Equal(t, TemplateTech, technical[0].ID)

	assert.Empty(t, Templates("unknown"))
	assert.True(t, IsTemplate(TemplateExecutive))
	assert.False(t, IsTemplate("Classic"))
}

func TestTotalExperience(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := []Experience{
		{StartDate: NewDate(2019, time.January, 1), EndDate: NewDate(2021, time.January, 1)},
		{StartDate: NewDate(2022, time.January, 1), Current: true},
		{StartDate: NewDate(2010, time.January, 1)},
	}

	assert.Equal(t, 4.0, TotalExperience(entries, now))
	assert.Zero(t, TotalExperience(nil, now))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ann Lee", PersonalInfo{FirstName: "Ann", LastName: "Lee"}.FullName())
	assert.Equal(t, "Ann", PersonalInfo{FirstName: "Ann"}.FullName())
}
