package generate

import (
	"context"

	"worksim/internal/domain"
)

// Phase produces one or more collections of the dataset from the ones already
// filled in. Tables lists what the phase writes, in append order.
type Phase struct {
	Name   string
	Tables []string
	Run    func(ctx context.Context, e *Env, d *domain.Dataset) error
}

// Phases returns the generation order. Every phase reads only collections
// produced by earlier phases.
func Phases() []Phase {
	return []Phase{
		{Name: "workspaces", Tables: []string{"workspaces"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Workspaces = Workspaces(e)
			return nil
		}},
		{Name: "users", Tables: []string{"users", "workspace_memberships"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Users, d.WorkspaceMemberships = Users(e, d.Workspaces)
			return nil
		}},
		{Name: "teams", Tables: []string{"teams", "team_memberships"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Teams = Teams(e, d.Workspaces)
			d.TeamMemberships = TeamMemberships(e, d.Teams, d.Users)
			return nil
		}},
		{Name: "strategy", Tables: []string{"portfolios", "goals"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Portfolios = Portfolios(e, d.Workspaces, d.Users)
			d.Goals = Goals(e, d.Workspaces, d.Users)
			return nil
		}},
		{Name: "projects", Tables: []string{"projects", "project_templates", "sections", "project_briefs"}, Run: func(ctx context.Context, e *Env, d *domain.Dataset) error {
			d.Projects = Projects(e, d.Workspaces, d.Teams, d.TeamMemberships, d.Users)
			templates, err := ProjectTemplates(e, d.Teams)
			if err != nil {
				return err
			}
			d.ProjectTemplates = templates
			d.Sections = Sections(e, d.Projects)
			briefs, err := ProjectBriefs(ctx, e, d.Projects, d.Teams, d.Users)
			if err != nil {
				return err
			}
			d.ProjectBriefs = briefs
			return nil
		}},
		{Name: "tasks", Tables: []string{"tasks", "task_project_memberships"}, Run: func(ctx context.Context, e *Env, d *domain.Dataset) error {
			tasks, memberships, err := Tasks(ctx, e, d.Projects, d.Sections, d.TeamMemberships, d.Users)
			if err != nil {
				return err
			}
			d.Tasks, d.TaskProjectMemberships = tasks, memberships
			return nil
		}},
		{Name: "relations", Tables: []string{"task_dependencies", "task_followers"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.TaskDependencies = Dependencies(e, d.Tasks)
			d.TaskFollowers = Followers(e, d.Tasks, d.Users)
			return nil
		}},
		{Name: "stories", Tables: []string{"stories"}, Run: func(ctx context.Context, e *Env, d *domain.Dataset) error {
			stories, err := Stories(ctx, e, d.Tasks, d.Users)
			if err != nil {
				return err
			}
			d.Stories = stories
			return nil
		}},
		{Name: "tags", Tables: []string{"tags", "task_tags"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Tags = Tags(e, d.Workspaces)
			d.TaskTags = TaskTags(e, d.Tasks, d.Tags)
			return nil
		}},
		{Name: "attachments", Tables: []string{"attachments"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Attachments = Attachments(e, d.Tasks, d.ProjectBriefs, d.Users)
			return nil
		}},
		{Name: "likes", Tables: []string{"likes"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.Likes = Likes(e, d.Tasks, d.Stories, d.Users)
			return nil
		}},
		{Name: "custom_fields", Tables: []string{
			"custom_field_definitions", "custom_field_options",
			"project_custom_field_settings", "portfolio_custom_field_settings",
			"custom_field_values", "portfolio_custom_field_values",
		}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.CustomFieldDefinitions, d.CustomFieldOptions = CustomFields(e, d.Workspaces)
			d.ProjectCustomFieldSettings = ProjectFieldSettings(e, d.Projects, d.CustomFieldDefinitions)
			d.PortfolioCustomFieldSettings = PortfolioFieldSettings(e, d.Portfolios, d.CustomFieldDefinitions)
			d.CustomFieldValues = FieldValues(e, d.Tasks, d.ProjectCustomFieldSettings, d.TaskProjectMemberships, d.CustomFieldDefinitions, d.CustomFieldOptions)
			d.PortfolioCustomFieldValues = PortfolioFieldValues(e, d.Portfolios, d.PortfolioCustomFieldSettings, d.CustomFieldDefinitions, d.CustomFieldOptions)
			return nil
		}},
		{Name: "status_updates", Tables: []string{"status_updates"}, Run: func(ctx context.Context, e *Env, d *domain.Dataset) error {
			updates, err := StatusUpdates(ctx, e, d.Projects, d.Portfolios, d.Goals, d.Users)
			if err != nil {
				return err
			}
			d.StatusUpdates = updates
			return nil
		}},
		{Name: "portfolio_items", Tables: []string{"portfolio_items"}, Run: func(_ context.Context, e *Env, d *domain.Dataset) error {
			d.PortfolioItems = PortfolioItems(e, d.Portfolios, d.Projects)
			return nil
		}},
	}
}

// Run executes every phase in order and returns the complete dataset.
func Run(ctx context.Context, e *Env) (*domain.Dataset, error) {
	d := &domain.Dataset{}
	for _, p := range Phases() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.Run(ctx, e, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}
