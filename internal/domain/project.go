package domain

import "time"

// ProjectStatus modela el ciclo de vida de un proyecto enviado a concurso:
// draft -> submitted -> approved | rejected.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectSubmitted ProjectStatus = "submitted"
	ProjectApproved  ProjectStatus = "approved"
	ProjectRejected  ProjectStatus = "rejected"
)

type Project struct {
	ID            string        `json:"id"`
	CompetitionID string        `json:"competition_id"`
	CategoryID    string        `json:"category_id"`
	AuthorID      string        `json:"author_id"`
	SchoolID      string        `json:"school_id,omitempty"`
	Title         string        `json:"title"`
	Summary       string        `json:"summary,omitempty"`
	RepoURL       string        `json:"repo_url,omitempty"`
	DemoURL       string        `json:"demo_url,omitempty"`
	Status        ProjectStatus `json:"status"`
	SubmittedAt   *time.Time    `json:"submitted_at,omitempty"`
	ReviewedBy    string        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	ReviewNote    string        `json:"review_note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
