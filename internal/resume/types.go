package resume

// Content is the owner-editable part of a resume. It is what Create accepts and what Update merges into.
type Content struct {
	Title          string          `json:"title" validate:"required,max=100"`
	Template       string          `json:"template" validate:"required,template"`
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Skills         []Skill         `json:"skills" validate:"dive"`
	Projects       []Project       `json:"projects" validate:"dive"`
	Certifications []Certification `json:"certifications" validate:"dive"`
	Languages      []Language      `json:"languages" validate:"dive"`
	CustomSections []CustomSection `json:"customSections" validate:"dive"`
	Styling        Styling         `json:"styling"`
}

// PersonalInfo 描述简历头部的个人信息。
type PersonalInfo struct {
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone,omitempty"`
	Location  Location `json:"location"`
	Website   string   `json:"website,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	GitHub    string   `json:"github,omitempty"`
	Summary   string   `json:"summary,omitempty" validate:"max=500"`
	Avatar    string   `json:"avatar,omitempty"`
}

type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type Experience struct {
	Company      string   `json:"company" validate:"required"`
	Position     string   `json:"position" validate:"required"`
	Location     string   `json:"location,omitempty"`
	StartDate    Date     `json:"startDate" validate:"required"`
	EndDate      Date     `json:"endDate,omitzero"`
	Current      bool     `json:"current"`
	Description  string   `json:"description,omitempty" validate:"max=1000"`
	Achievements []string `json:"achievements" validate:"dive,max=200"`
}

type Education struct {
	Institution string `json:"institution" validate:"required"`
	Degree      string `json:"degree" validate:"required"`
	Field       string `json:"field,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   Date   `json:"startDate" validate:"required"`
	EndDate     Date   `json:"endDate,omitzero"`
	Current     bool   `json:"current"`
	GPA         string `json:"gpa,omitempty"`
	Description string `json:"description,omitempty"`
}

type Skill struct {
	Name     string `json:"name" validate:"required"`
	Level    string `json:"level" validate:"oneof=beginner intermediate advanced expert"`
	Category string `json:"category" validate:"oneof=technical soft language other"`
}

type Project struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty" validate:"max=500"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
	GitHub       string   `json:"github,omitempty"`
	StartDate    Date     `json:"startDate,omitzero"`
	EndDate      Date     `json:"endDate,omitzero"`
	Current      bool     `json:"current"`
}

type Certification struct {
	Name         string `json:"name" validate:"required"`
	Issuer       string `json:"issuer" validate:"required"`
	Date         Date   `json:"date,omitzero"`
	ExpiryDate   Date   `json:"expiryDate,omitzero"`
	CredentialID string `json:"credentialId,omitempty"`
	Link         string `json:"link,omitempty"`
}

type Language struct {
	Name        string `json:"name" validate:"required"`
	Proficiency string `json:"proficiency" validate:"oneof=basic conversational fluent native"`
}

type CustomSection struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content,omitempty" validate:"max=1000"`
	Order   int    `json:"order"`
}

// Styling only affects presentation.
type Styling struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontFamily     string `json:"fontFamily" validate:"font_family"`
	FontSize       string `json:"fontSize" validate:"oneof=small medium large"`
	Spacing        string `json:"spacing" validate:"oneof=compact normal spacious"`
}

// Template identifiers.
const (
	TemplateClassic      = "classic"
	TemplateModern       = "modern"
	TemplateCreative     = "creative"
	TemplateMinimal      = "minimal"
	TemplateProfessional = "professional"
	TemplateTech         = "tech"
	TemplateDesign       = "design"
	TemplateExecutive    = "executive"
)

var fontFamilies = []string{"Inter", "Poppins", "Roboto", "Open Sans", "Lato"}

const (
	defaultSkillLevel          = "intermediate"
	defaultSkillCategory       = "technical"
	defaultLanguageProficiency = "conversational"
	defaultPrimaryColor        = "#0ea5e9"
	defaultSecondaryColor      = "#d946ef"
	defaultFontFamily          = "Inter"
	defaultFontSize            = "medium"
	defaultSpacing             = "normal"
)
