package domain

import (
	"reflect"
	"strings"
)

// Dataset is the full output of one generation run, in append order.
type Dataset struct {
	Workspaces                   []Workspace                   `json:"workspaces"`
	Users                        []User                        `json:"users"`
	WorkspaceMemberships         []WorkspaceMembership         `json:"workspace_memberships"`
	Teams                        []Team                        `json:"teams"`
	TeamMemberships              []TeamMembership              `json:"team_memberships"`
	Portfolios                   []Portfolio                   `json:"portfolios"`
	Goals                        []Goal                        `json:"goals"`
	Projects                     []Project                     `json:"projects"`
	ProjectTemplates             []ProjectTemplate             `json:"project_templates"`
	Sections                     []Section                     `json:"sections"`
	ProjectBriefs                []ProjectBrief                `json:"project_briefs"`
	Tasks                        []Task                        `json:"tasks"`
	TaskProjectMemberships       []TaskProjectMembership       `json:"task_project_memberships"`
	TaskDependencies             []TaskDependency              `json:"task_dependencies"`
	TaskFollowers                []TaskFollower                `json:"task_followers"`
	Stories                      []Story                       `json:"stories"`
	Tags                         []Tag                         `json:"tags"`
	TaskTags                     []TaskTag                     `json:"task_tags"`
	Attachments                  []Attachment                  `json:"attachments"`
	Likes                        []Like                        `json:"likes"`
	CustomFieldDefinitions       []CustomFieldDefinition       `json:"custom_field_definitions"`
	CustomFieldOptions           []CustomFieldOption           `json:"custom_field_options"`
	ProjectCustomFieldSettings   []ProjectCustomFieldSetting   `json:"project_custom_field_settings"`
	PortfolioCustomFieldSettings []PortfolioCustomFieldSetting `json:"portfolio_custom_field_settings"`
	CustomFieldValues            []CustomFieldValue            `json:"custom_field_values"`
	PortfolioCustomFieldValues   []PortfolioCustomFieldValue   `json:"portfolio_custom_field_values"`
	StatusUpdates                []StatusUpdate                `json:"status_updates"`
	PortfolioItems               []PortfolioItem               `json:"portfolio_items"`
}

// Tables lists every generated table in dependency order. Stores append in
// this order so parents always land before children.
var Tables = []string{
	"workspaces",
	"users",
	"workspace_memberships",
	"teams",
	"team_memberships",
	"portfolios",
	"goals",
	"projects",
	"project_templates",
	"sections",
	"project_briefs",
	"tasks",
	"task_project_memberships",
	"task_dependencies",
	"task_followers",
	"stories",
	"tags",
	"task_tags",
	"attachments",
	"likes",
	"custom_field_definitions",
	"custom_field_options",
	"project_custom_field_settings",
	"portfolio_custom_field_settings",
	"custom_field_values",
	"portfolio_custom_field_values",
	"status_updates",
	"portfolio_items",
}

// ProvenanceTable holds one row per generated table per run.
const ProvenanceTable = "_meta_provenance"

// Counts returns the row count of every collection keyed by table name.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		"workspaces":                      len(d.Workspaces),
		"users":                           len(d.Users),
		"workspace_memberships":           len(d.WorkspaceMemberships),
		"teams":                           len(d.Teams),
		"team_memberships":                len(d.TeamMemberships),
		"portfolios":                      len(d.Portfolios),
		"goals":                           len(d.Goals),
		"projects":                        len(d.Projects),
		"project_templates":               len(d.ProjectTemplates),
		"sections":                        len(d.Sections),
		"project_briefs":                  len(d.ProjectBriefs),
		"tasks":                           len(d.Tasks),
		"task_project_memberships":        len(d.TaskProjectMemberships),
		"task_dependencies":               len(d.TaskDependencies),
		"task_followers":                  len(d.TaskFollowers),
		"stories":                         len(d.Stories),
		"tags":                            len(d.Tags),
		"task_tags":                       len(d.TaskTags),
		"attachments":                     len(d.Attachments),
		"likes":                           len(d.Likes),
		"custom_field_definitions":        len(d.CustomFieldDefinitions),
		"custom_field_options":            len(d.CustomFieldOptions),
		"project_custom_field_settings":   len(d.ProjectCustomFieldSettings),
		"portfolio_custom_field_settings": len(d.PortfolioCustomFieldSettings),
		"custom_field_values":             len(d.CustomFieldValues),
		"portfolio_custom_field_values":   len(d.PortfolioCustomFieldValues),
		"status_updates":                  len(d.StatusUpdates),
		"portfolio_items":                 len(d.PortfolioItems),
	}
}

// Records returns the collection stored for table as a typed slice, or false
// when the dataset has no such table.
func (d *Dataset) Records(table string) (any, bool) {
	v := reflect.ValueOf(d).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == table {
			return v.Field(i).Interface(), true
		}
	}
	return nil, false
}
