package service

import (
	"time"

	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

// Summary is returned by Create and Duplicate.
type Summary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Template  string    `json:"template"`
	ShareLink string    `json:"shareLink"`
	CreatedAt time.Time `json:"createdAt"`
}

// SettingsView never exposes the password hash.
type SettingsView struct {
	IsPublic      bool       `json:"isPublic"`
	AllowDownload bool       `json:"allowDownload"`
	AllowPrint    bool       `json:"allowPrint"`
	HasPassword   bool       `json:"hasPassword"`
	ExpiresAt     *time.Time `json:"expiresAt"`
}

// Counters are the monotonic analytics counters.
type Counters struct {
	Views      int64      `json:"views"`
	Downloads  int64      `json:"downloads"`
	Shares     int64      `json:"shares"`
	LastViewed *time.Time `json:"lastViewed"`
}

// Document is the owner's view of a resume.
type Document struct {
	ID     uint `json:"id"`
	UserID uint `json:"userId"`
	resume.Content
	FullName        string       `json:"fullName"`
	TotalExperience float64      `json:"totalExperience"`
	Settings        SettingsView `json:"settings"`
	Analytics       Counters     `json:"analytics"`
	ShareLink       string       `json:"shareLink"`
	Version         int          `json:"version"`
	IsActive        bool         `json:"isActive"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ListItem is one row of the owner's listing.
type ListItem struct {
	ID           uint                `json:"id"`
	Title        string              `json:"title"`
	Template     string              `json:"template"`
	PersonalInfo resume.PersonalInfo `json:"personalInfo"`
	Analytics    Counters            `json:"analytics"`
	ShareLink    string              `json:"shareLink"`
	Settings     SettingsView        `json:"settings"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Pagination describes the page a listing returned.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalDocs   int64 `json:"totalDocs"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Page is the result of List.
type Page struct {
	Resumes    []ListItem `json:"resumes"`
	Pagination Pagination `json:"pagination"`
}

// PublicSettings is the part of the share settings anonymous readers may see.
type PublicSettings struct {
	AllowDownload bool `json:"allowDownload"`
	AllowPrint    bool `json:"allowPrint"`
}

// PublicAnalytics exposes only the view count.
type PublicAnalytics struct {
	Views int64 `json:"views"`
}

// PublicResume is the restricted projection served through a share link.
type PublicResume struct {
	resume.Content
	FullName        string          `json:"fullName"`
	TotalExperience float64         `json:"totalExperience"`
	Settings        PublicSettings  `json:"settings"`
	Analytics       PublicAnalytics `json:"analytics"`
}

// ViewEntry is one recorded public view.
type ViewEntry struct {
	ViewedAt  time.Time `json:"viewedAt"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
}

// AnalyticsView is returned by GetAnalytics. History is oldest first.
type AnalyticsView struct {
	Counters
	ViewHistory []ViewEntry `json:"viewHistory"`
}

func newSummary(r *database.Resume) *Summary {
	return &Summary{
		ID:        r.ID,
		Title:     r.Title,
		Template:  r.Template,
		ShareLink: r.ShareToken,
		CreatedAt: r.CreatedAt,
	}
}

func newSettingsView(s database.ShareSettings) SettingsView {
	return SettingsView{
		IsPublic:      s.IsPublic,
		AllowDownload: s.AllowDownload,
		AllowPrint:    s.AllowPrint,
		HasPassword:   s.PasswordHash != "",
		ExpiresAt:     s.ExpiresAt,
	}
}

func newCounters(a database.Analytics) Counters {
	return Counters{
		Views:      a.Views,
		Downloads:  a.Downloads,
		Shares:     a.Shares,
		LastViewed: a.LastViewed,
	}
}

func newDocument(r *database.Resume, now time.Time) *Document {
	content := r.Content()
	return &Document{
		ID:              r.ID,
		UserID:          r.UserID,
		Content:         content,
		FullName:        content.PersonalInfo.FullName(),
		TotalExperience: resume.TotalExperience(content.Experience, now),
		Settings:        newSettingsView(r.Settings),
		Analytics:       newCounters(r.Analytics),
		ShareLink:       r.ShareToken,
		Version:         r.Version,
		IsActive:        r.IsActive(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func newListItem(r *database.Resume) ListItem {
	return ListItem{
		ID:           r.ID,
		Title:        r.Title,
		Template:     r.Template,
		PersonalInfo: r.PersonalInfo.Data(),
		Analytics:    newCounters(r.Analytics),
		ShareLink:    r.ShareToken,
		Settings:     newSettingsView(r.Settings),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newPublicResume(r *database.Resume, views int64, now time.Time) *PublicResume {
	content := r.Content()
	return &PublicResume{
		Content:         content,
		FullName:        content.PersonalInfo.FullName(),
		TotalExperience: resume.TotalExperience(content.Experience, now),
		Settings: PublicSettings{
			AllowDownload: r.Settings.AllowDownload,
			AllowPrint:    r.Settings.AllowPrint,
		},
		Analytics: PublicAnalytics{Views: views},
	}
}
