package domain

import "time"

// Timestamp and date layouts used when records leave the process.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Record fields tagged `db:"name,date"` are persisted with DateLayout; every
// other time.Time is persisted with TimestampLayout.

type Workspace struct {
	GID            string    `json:"gid" db:"gid"`
	Name           string    `json:"name" db:"name"`
	Domain         string    `json:"domain" db:"domain"`
	IsOrganization bool      `json:"is_organization" db:"is_organization"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type User struct {
	GID          string    `json:"gid" db:"gid"`
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PhotoURL     string    `json:"photo_url" db:"photo_url"`
	Status       string    `json:"status" db:"status" enum:"active,away,dnd,deactivated"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type WorkspaceMembership struct {
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	UserGID      string    `json:"user_gid" db:"user_gid"`
	IsGuest      bool      `json:"is_guest" db:"is_guest"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Team struct {
	GID          string    `json:"gid" db:"gid"`
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type TeamMembership struct {
	TeamGID      string `json:"team_gid" db:"team_gid"`
	UserGID      string `json:"user_gid" db:"user_gid"`
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	Role         string `json:"role" db:"role" enum:"admin,member,commenter"`
	IsGuest      bool   `json:"is_guest" db:"is_guest"`
}

type Portfolio struct {
	GID          string    `json:"gid" db:"gid"`
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	OwnerGID     *string   `json:"owner_gid" db:"owner_gid"`
	Name         string    `json:"name" db:"name"`
	Color        string    `json:"color" db:"color"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Goal struct {
	GID          string     `json:"gid" db:"gid"`
	WorkspaceGID string     `json:"workspace_gid" db:"workspace_gid"`
	OwnerGID     *string    `json:"owner_gid" db:"owner_gid"`
	Name         string     `json:"name" db:"name"`
	DueOn        *time.Time `json:"due_on" db:"due_on,date"`
	IsCompleted  bool       `json:"is_completed" db:"is_completed"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type Project struct {
	GID           string     `json:"gid" db:"gid"`
	WorkspaceGID  string     `json:"workspace_gid" db:"workspace_gid"`
	TeamGID       string     `json:"team_gid" db:"team_gid"`
	OwnerGID      *string    `json:"owner_gid" db:"owner_gid"`
	Name          string     `json:"name" db:"name"`
	Archetype     string     `json:"archetype" db:"archetype" enum:"sprint,kanban,launch,ongoing,bugs"`
	Layout        string     `json:"layout" db:"layout" enum:"list,board,timeline"`
	CurrentStatus string     `json:"current_status" db:"current_status" enum:"on_track,at_risk,off_track"`
	DueDate       *time.Time `json:"due_date" db:"due_date,date"`
	Archived      bool       `json:"archived" db:"archived"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type ProjectTemplate struct {
	GID           string    `json:"gid" db:"gid"`
	TeamGID       string    `json:"team_gid" db:"team_gid"`
	Name          string    `json:"name" db:"name"`
	StructureJSON string    `json:"structure_json" db:"structure_json"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type ProjectBrief struct {
	GID          string    `json:"gid" db:"gid"`
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	ProjectGID   string    `json:"project_gid" db:"project_gid"`
	Title        string    `json:"title" db:"title"`
	HTMLText     string    `json:"html_text" db:"html_text"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Section struct {
	GID          string `json:"gid" db:"gid"`
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	ProjectGID   string `json:"project_gid" db:"project_gid"`
	Name         string `json:"name" db:"name"`
	OrderIndex   int    `json:"order_index" db:"order_index"`
}

type Task struct {
	GID           string     `json:"gid" db:"gid"`
	WorkspaceGID  string     `json:"workspace_gid" db:"workspace_gid"`
	AssigneeGID   *string    `json:"assignee_gid" db:"assignee_gid"`
	ParentTaskGID *string    `json:"parent_task_gid" db:"parent_task_gid"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	StartOn       *time.Time `json:"start_on" db:"start_on,date"`
	DueOn         *time.Time `json:"due_on" db:"due_on,date"`
	CompletedAt   *time.Time `json:"completed_at" db:"completed_at"`
	Completed     bool       `json:"completed" db:"completed"`
	IsMilestone   bool       `json:"is_milestone" db:"is_milestone"`
}

type TaskProjectMembership struct {
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	TaskGID      string `json:"task_gid" db:"task_gid"`
	ProjectGID   string `json:"project_gid" db:"project_gid"`
	SectionGID   string `json:"section_gid" db:"section_gid"`
}

// Dependency types.
const (
	FinishToStart  = "finish_to_start"
	StartToStart   = "start_to_start"
	FinishToFinish = "finish_to_finish"
)

type TaskDependency struct {
	WorkspaceGID   string `json:"workspace_gid" db:"workspace_gid"`
	PredecessorGID string `json:"predecessor_gid" db:"predecessor_gid"`
	SuccessorGID   string `json:"successor_gid" db:"successor_gid"`
	Type           string `json:"type" db:"type" enum:"finish_to_start,start_to_start,finish_to_finish"`
}

type TaskFollower struct {
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	TaskGID      string `json:"task_gid" db:"task_gid"`
	UserGID      string `json:"user_gid" db:"user_gid"`
}

type Story struct {
	GID          string    `json:"gid" db:"gid"`
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	TaskGID      string    `json:"task_gid" db:"task_gid"`
	CreatedByGID *string   `json:"created_by_gid" db:"created_by_gid"`
	Text         string    `json:"text" db:"text"`
	Type         string    `json:"type" db:"type" enum:"comment,system"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Tag struct {
	GID          string `json:"gid" db:"gid"`
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	Name         string `json:"name" db:"name"`
	Color        string `json:"color" db:"color"`
}

type TaskTag struct {
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	TaskGID      string `json:"task_gid" db:"task_gid"`
	TagGID       string `json:"tag_gid" db:"tag_gid"`
}

type Attachment struct {
	GID            string    `json:"gid" db:"gid"`
	WorkspaceGID   string    `json:"workspace_gid" db:"workspace_gid"`
	ParentTaskGID  *string   `json:"parent_task_gid" db:"parent_task_gid"`
	ParentBriefGID *string   `json:"parent_brief_gid" db:"parent_brief_gid"`
	Name           string    `json:"name" db:"name"`
	ResourceURL    string    `json:"resource_url" db:"resource_url"`
	ResourceType   string    `json:"resource_type" db:"resource_type"`
	CreatedByGID   *string   `json:"created_by_gid" db:"created_by_gid"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Like struct {
	GID          string    `json:"gid" db:"gid"`
	WorkspaceGID string    `json:"workspace_gid" db:"workspace_gid"`
	UserGID      string    `json:"user_gid" db:"user_gid"`
	TaskGID      *string   `json:"task_gid" db:"task_gid"`
	StoryGID     *string   `json:"story_gid" db:"story_gid"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Custom field subtypes.
const (
	FieldEnum   = "enum"
	FieldNumber = "number"
	FieldText   = "text"
)

type CustomFieldDefinition struct {
	GID             string `json:"gid" db:"gid"`
	WorkspaceGID    string `json:"workspace_gid" db:"workspace_gid"`
	Name            string `json:"name" db:"name"`
	ResourceSubtype string `json:"resource_subtype" db:"resource_subtype" enum:"enum,number,text"`
}

type CustomFieldOption struct {
	GID          string `json:"gid" db:"gid"`
	FieldGID     string `json:"field_gid" db:"field_gid"`
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	Name         string `json:"name" db:"name"`
	Color        string `json:"color" db:"color"`
}

type ProjectCustomFieldSetting struct {
	WorkspaceGID   string `json:"workspace_gid" db:"workspace_gid"`
	ProjectGID     string `json:"project_gid" db:"project_gid"`
	CustomFieldGID string `json:"custom_field_gid" db:"custom_field_gid"`
	IsImportant    bool   `json:"is_important" db:"is_important"`
}

type PortfolioCustomFieldSetting struct {
	WorkspaceGID   string `json:"workspace_gid" db:"workspace_gid"`
	PortfolioGID   string `json:"portfolio_gid" db:"portfolio_gid"`
	CustomFieldGID string `json:"custom_field_gid" db:"custom_field_gid"`
}

// FieldValue holds exactly one populated value matching its field's subtype.
type FieldValue struct {
	TextValue     *string  `json:"text_value" db:"text_value"`
	NumberValue   *float64 `json:"number_value" db:"number_value"`
	EnumOptionGID *string  `json:"enum_option_gid" db:"enum_option_gid"`
}

type CustomFieldValue struct {
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	TaskGID      string `json:"task_gid" db:"task_gid"`
	FieldGID     string `json:"field_gid" db:"field_gid"`
	FieldValue
}

type PortfolioCustomFieldValue struct {
	WorkspaceGID string `json:"workspace_gid" db:"workspace_gid"`
	PortfolioGID string `json:"portfolio_gid" db:"portfolio_gid"`
	FieldGID     string `json:"field_gid" db:"field_gid"`
	FieldValue
}

// Status types shared by projects and status updates.
const (
	OnTrack  = "on_track"
	AtRisk   = "at_risk"
	OffTrack = "off_track"
)

type StatusUpdate struct {
	GID                string    `json:"gid" db:"gid"`
	WorkspaceGID       string    `json:"workspace_gid" db:"workspace_gid"`
	AuthorGID          *string   `json:"author_gid" db:"author_gid"`
	StatusType         string    `json:"status_type" db:"status_type" enum:"on_track,at_risk,off_track"`
	Text               string    `json:"text" db:"text"`
	ParentProjectGID   *string   `json:"parent_project_gid" db:"parent_project_gid"`
	ParentPortfolioGID *string   `json:"parent_portfolio_gid" db:"parent_portfolio_gid"`
	ParentGoalGID      *string   `json:"parent_goal_gid" db:"parent_goal_gid"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

type PortfolioItem struct {
	GID                string    `json:"gid" db:"gid"`
	PortfolioGID       string    `json:"portfolio_gid" db:"portfolio_gid"`
	WorkspaceGID       string    `json:"workspace_gid" db:"workspace_gid"`
	LinkedProjectGID   *string   `json:"linked_project_gid" db:"linked_project_gid"`
	LinkedPortfolioGID *string   `json:"linked_portfolio_gid" db:"linked_portfolio_gid"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Provenance records one generated table in one run.
type Provenance struct {
	BatchID        string    `json:"batch_id" db:"batch_id"`
	EntityType     string    `json:"entity_type" db:"entity_type"`
	SourceStrategy string    `json:"source_strategy" db:"source_strategy"`
	RowCount       int       `json:"row_count" db:"row_count"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
}

// Ref returns a pointer to s, or nil for the empty string.
func Ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
