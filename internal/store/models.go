package store

import (
	"encoding/json"
	"time"
)

const (
	ProjectStatusActive   = "active"
	ProjectStatusDeleting = "deleting"
)

const (
	SourceStatusPending   = "pending"
	SourceStatusAnalyzing = "analyzing"
	SourceStatusAnalyzed  = "analyzed"
	SourceStatusFailed    = "failed"
)

const (
	SourceKindDocument = "document"
	SourceKindCSV      = "csv"
	SourceKindWeb      = "web"
)

const (
	MemberRoleOwner  = "owner"
	MemberRoleMember = "member"
)

type Project struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	BrandName       string    `json:"brand_name"`
	CompetitorNames []string  `json:"competitor_names"`
	Status          string    `json:"status"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProjectMember struct {
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type MentionSource struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	BatchID     string    `json:"batch_id"`
	Kind        string    `json:"kind"`
	Location    string    `json:"location"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AnalysisRecord struct {
	ID        int64           `json:"id"`
	ProjectID int64           `json:"project_id"`
	SourceID  *int64          `json:"source_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type InsightRun struct {
	ID         int64      `json:"id"`
	PublicID   string     `json:"public_id"`
	ProjectID  int64      `json:"project_id"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type InsightReport struct {
	ID          int64           `json:"id"`
	ProjectID   int64           `json:"project_id"`
	RunID       int64           `json:"run_id"`
	Report      json.RawMessage `json:"report"`
	Brief       string          `json:"brief,omitempty"`
	BriefTopics []string        `json:"brief_topics,omitempty"`
	RecordCount int32           `json:"record_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ReportTopic struct {
	ID         int64   `json:"id"`
	ReportID   int64   `json:"report_id"`
	ProjectID  int64   `json:"project_id"`
	Label      string  `json:"label"`
	Community  int32   `json:"community"`
	Narrative  string  `json:"narrative"`
	Sentiment  int32   `json:"sentiment"`
	Strength   int32   `json:"strength"`
	Centrality float64 `json:"centrality"`
}
