package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

// Roles and plans.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Name          string       `gorm:"size:100"`
	Email         string       `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash  string       `gorm:"size:255"`
	Role          string       `gorm:"size:16;not null"`
	Subscription  Subscription `gorm:"embedded;embeddedPrefix:subscription_"`
	ResumeCount   int          `gorm:"not null;default:0"`
	EmailVerified bool
	LastLogin     *time.Time
}

// Subscription is the billing tier of an account.
type Subscription struct {
	Plan      string `gorm:"size:16"`
	IsActive  bool
	StartDate *time.Time
}

// Lifecycle is the visibility state of a resume. Deleted is terminal.
type Lifecycle string

const (
	StatusActive  Lifecycle = "active"
	StatusDeleted Lifecycle = "deleted"
)

// Resume 表示用户创建的简历内容。
type Resume struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index:idx_resumes_owner_created,priority:2"`
	UpdatedAt time.Time
	UserID    uint `gorm:"not null;index:idx_resumes_owner_created,priority:1"`

	Title          string `gorm:"size:100;not null"`
	Template       string `gorm:"size:32;not null"`
	FirstName      string `gorm:"size:255"`
	LastName       string `gorm:"size:255"`
	PersonalInfo   datatypes.JSONType[resume.PersonalInfo]
	Experience     datatypes.JSONSlice[resume.Experience]
	Education      datatypes.JSONSlice[resume.Education]
	Skills         datatypes.JSONSlice[resume.Skill]
	Projects       datatypes.JSONSlice[resume.Project]
	Certifications datatypes.JSONSlice[resume.Certification]
	Languages      datatypes.JSONSlice[resume.Language]
	CustomSections datatypes.JSONSlice[resume.CustomSection]
	Styling        datatypes.JSONType[resume.Styling]

	Settings  ShareSettings `gorm:"embedded;embeddedPrefix:settings_"`
	Analytics Analytics     `gorm:"embedded;embeddedPrefix:analytics_"`

	ShareToken string    `gorm:"size:64;uniqueIndex;not null"`
	Version    int       `gorm:"not null"`
	Status     Lifecycle `gorm:"size:16;not null;index"`
	DeletedAt  *time.Time
}

// ShareSettings controls public access through the share token.
type ShareSettings struct {
	IsPublic      bool
	AllowDownload bool
	AllowPrint    bool
	PasswordHash  string `gorm:"size:255"`
	ExpiresAt     *time.Time
}

// Analytics holds the monotonic counters; the view history lives in ResumeView.
type Analytics struct {
	Views      int64 `gorm:"not null;default:0"`
	Downloads  int64 `gorm:"not null;default:0"`
	Shares     int64 `gorm:"not null;default:0"`
	LastViewed *time.Time
}

// ResumeView is one entry of a resume's bounded view history.
type ResumeView struct {
	ID        uint      `gorm:"primaryKey"`
	ResumeID  uint      `gorm:"not null;index"`
	ViewedAt  time.Time `gorm:"not null"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:512"`
}

// IsActive reports whether the resume is visible to owner queries.
func (r *Resume) IsActive() bool {
	return r.Status == StatusActive
}

// Content returns the owner-editable document.
func (r *Resume) Content() resume.Content {
	return resume.Content{
		Title:          r.Title,
		Template:       r.Template,
		PersonalInfo:   r.PersonalInfo.Data(),
		Experience:     []resume.Experience(r.Experience),
		Education:      []resume.Education(r.Education),
		Skills:         []resume.Skill(r.Skills),
		Projects:       []resume.Project(r.Projects),
		Certifications: []resume.Certification(r.Certifications),
		Languages:      []resume.Language(r.Languages),
		CustomSections: []resume.CustomSection(r.CustomSections),
		Styling:        r.Styling.Data(),
	}
}

// SetContent copies c into the model, keeping the search columns in sync.
func (r *Resume) SetContent(c resume.Content) {
	r.Title = c.Title
	r.Template = c.Template
	r.FirstName = c.PersonalInfo.FirstName
	r.LastName = c.PersonalInfo.LastName
	r.PersonalInfo = datatypes.NewJSONType(c.PersonalInfo)
	r.Experience = datatypes.JSONSlice[resume.Experience](c.Experience)
	r.Education = datatypes.JSONSlice[resume.Education](c.Education)
	r.Skills = datatypes.JSONSlice[resume.Skill](c.Skills)
	r.Projects = datatypes.JSONSlice[resume.Project](c.Projects)
	r.Certifications = datatypes.JSONSlice[resume.Certification](c.Certifications)
	r.Languages = datatypes.JSONSlice[resume.Language](c.Languages)
	r.CustomSections = datatypes.JSONSlice[resume.CustomSection](c.CustomSections)
	r.Styling = datatypes.NewJSONType(c.Styling)
}

// ContentColumns returns the column map used to persist c with Updates.
func ContentColumns(c resume.Content) map[string]any {
	var r Resume
	r.SetContent(c)
	return map[string]any{
		"title":           r.Title,
		"template":        r.Template,
		"first_name":      r.FirstName,
		"last_name":       r.LastName,
		"personal_info":   r.PersonalInfo,
		"experience":      r.Experience,
		"education":       r.Education,
		"skills":          r.Skills,
		"projects":        r.Projects,
		"certifications":  r.Certifications,
		"languages":       r.Languages,
		"custom_sections": r.CustomSections,
		"styling":         r.Styling,
	}
}
