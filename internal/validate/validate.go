// Package validate checks a generated dataset for referential closure,
// workspace scoping and causal ordering of timestamps.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"worksim/internal/domain"
)

// ErrViolations is returned by Report.Err when any check failed.
var ErrViolations = errors.New("dataset violates consistency rules")

// Issue is one failed check.
type Issue struct {
	Check  string `json:"check"`
	Table  string `json:"table"`
	Key    string `json:"key"`
	Detail string `json:"detail"`
}

// Report collects the issues found over a dataset.
type Report struct {
	Checked int     `json:"checked"`
	Issues  []Issue `json:"issues"`
}

// Err summarizes the report as an error, or nil when it is clean.
func (r Report) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	var b strings.Builder
	for i, is := range r.Issues {
		if i == 5 {
			fmt.Fprintf(&b, "; and %d more", len(r.Issues)-5)
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s %s: %s", is.Check, is.Table, is.Key, is.Detail)
	}
	return fmt.Errorf("%w: %s", ErrViolations, b.String())
}

type checker struct {
	now    time.Time
	report Report

	workspaces map[string]bool
	users      map[string]domain.User
	teams      map[string]domain.Team
	portfolios map[string]domain.Portfolio
	goals      map[string]domain.Goal
	projects   map[string]domain.Project
	sections   map[string]domain.Section
	briefs     map[string]domain.ProjectBrief
	tasks      map[string]domain.Task
	stories    map[string]domain.Story
	tags       map[string]domain.Tag
	fields     map[string]domain.CustomFieldDefinition
	options    map[string]domain.CustomFieldOption
	members    map[[2]string]bool
}

func (c *checker) fail(check, table, key, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{Check: check, Table: table, Key: key, Detail: fmt.Sprintf(format, args...)})
}

// notFuture flags timestamps after the simulation clock.
func (c *checker) notFuture(table, key string, at time.Time) {
	c.report.Checked++
	if at.After(c.now) {
		c.fail("temporal", table, key, "created_at %s is after now", at.Format(domain.TimestampLayout))
	}
}

// notBefore flags a child dated before its parent.
func (c *checker) notBefore(table, key string, at, parent time.Time, what string) {
	c.report.Checked++
	if at.Before(parent) {
		c.fail("temporal", table, key, "created_at precedes %s", what)
	}
}

func (c *checker) sameWorkspace(table, key, ws, other, what string) {
	c.report.Checked++
	if ws != other {
		c.fail("workspace", table, key, "%s belongs to another workspace", what)
	}
}

func (c *checker) missing(table, key, what, gid string) {
	c.fail("reference", table, key, "%s %s does not exist", what, gid)
}

func unique[T any](c *checker, table string, rows []T, gid func(T) string) map[string]T {
	out := make(map[string]T, len(rows))
	for _, r := range rows {
		g := gid(r)
		c.report.Checked++
		if _, dup := out[g]; dup {
			c.fail("unique", table, g, "duplicate gid")
			continue
		}
		out[g] = r
	}
	return out
}

// Dataset runs every check against d with now as the simulation clock.
func Dataset(d *domain.Dataset, now time.Time) Report {
	c := &checker{now: now, members: make(map[[2]string]bool)}
	c.foundation(d)
	c.structure(d)
	c.tasksAndRelations(d)
	c.content(d)
	c.fieldsAndUpdates(d)
	return c.report
}

func (c *checker) foundation(d *domain.Dataset) {
	c.workspaces = make(map[string]bool, len(d.Workspaces))
	for g := range unique(c, "workspaces", d.Workspaces, func(w domain.Workspace) string { return w.GID }) {
		c.workspaces[g] = true
	}
	c.users = unique(c, "users", d.Users, func(u domain.User) string { return u.GID })
	emails := make(map[string]bool, len(d.Users))
	for _, u := range d.Users {
		if !c.workspaces[u.WorkspaceGID] {
			c.missing("users", u.GID, "workspace", u.WorkspaceGID)
		}
		if emails[u.Email] {
			c.fail("unique", "users", u.GID, "email %s already used", u.Email)
		}
		emails[u.Email] = true
		c.notFuture("users", u.GID, u.CreatedAt)
	}
	perUser := make(map[string]int, len(d.Users))
	for _, m := range d.WorkspaceMemberships {
		u, ok := c.users[m.UserGID]
		if !ok {
			c.missing("workspace_memberships", m.UserGID, "user", m.UserGID)
			continue
		}
		perUser[m.UserGID]++
		c.sameWorkspace("workspace_memberships", m.UserGID, m.WorkspaceGID, u.WorkspaceGID, "user")
	}
	for _, u := range d.Users {
		if perUser[u.GID] != 1 {
			c.fail("cardinality", "workspace_memberships", u.GID, "user has %d workspace memberships", perUser[u.GID])
		}
	}

	c.teams = unique(c, "teams", d.Teams, func(t domain.Team) string { return t.GID })
	names := make(map[[2]string]bool)
	for _, t := range d.Teams {
		key := [2]string{t.WorkspaceGID, t.Name}
		if names[key] {
			c.fail("unique", "teams", t.GID, "team name %q repeated in workspace", t.Name)
		}
		names[key] = true
	}
	for _, m := range d.TeamMemberships {
		key := m.TeamGID + "/" + m.UserGID
		t, ok := c.teams[m.TeamGID]
		if !ok {
			c.missing("team_memberships", key, "team", m.TeamGID)
			continue
		}
		u, ok := c.users[m.UserGID]
		if !ok {
			c.missing("team_memberships", key, "user", m.UserGID)
			continue
		}
		c.sameWorkspace("team_memberships", key, t.WorkspaceGID, u.WorkspaceGID, "user")
		c.members[[2]string{m.TeamGID, m.UserGID}] = true
	}
}

func (c *checker) owner(table, key, ws string, owner *string) {
	if owner == nil {
		return
	}
	u, ok := c.users[*owner]
	if !ok {
		c.missing(table, key, "owner", *owner)
		return
	}
	c.sameWorkspace(table, key, ws, u.WorkspaceGID, "owner")
}

func (c *checker) structure(d *domain.Dataset) {
	c.portfolios = unique(c, "portfolios", d.Portfolios, func(p domain.Portfolio) string { return p.GID })
	for _, p := range d.Portfolios {
		c.owner("portfolios", p.GID, p.WorkspaceGID, p.OwnerGID)
		c.notFuture("portfolios", p.GID, p.CreatedAt)
	}
	c.goals = unique(c, "goals", d.Goals, func(g domain.Goal) string { return g.GID })
	for _, g := range d.Goals {
		c.owner("goals", g.GID, g.WorkspaceGID, g.OwnerGID)
		c.notFuture("goals", g.GID, g.CreatedAt)
	}
	c.projects = unique(c, "projects", d.Projects, func(p domain.Project) string { return p.GID })
	for _, p := range d.Projects {
		t, ok := c.teams[p.TeamGID]
		if !ok {
			c.missing("projects", p.GID, "team", p.TeamGID)
			continue
		}
		c.sameWorkspace("projects", p.GID, p.WorkspaceGID, t.WorkspaceGID, "team")
		c.notFuture("projects", p.GID, p.CreatedAt)
		if p.OwnerGID != nil && !c.members[[2]string{p.TeamGID, *p.OwnerGID}] {
			c.fail("reference", "projects", p.GID, "owner %s is not a member of team %s", *p.OwnerGID, p.TeamGID)
		}
	}
	for _, t := range d.ProjectTemplates {
		if _, ok := c.teams[t.TeamGID]; !ok {
			c.missing("project_templates", t.GID, "team", t.TeamGID)
		}
		c.notFuture("project_templates", t.GID, t.CreatedAt)
	}
	c.sections = unique(c, "sections", d.Sections, func(s domain.Section) string { return s.GID })
	for _, s := range d.Sections {
		p, ok := c.projects[s.ProjectGID]
		if !ok {
			c.missing("sections", s.GID, "project", s.ProjectGID)
			continue
		}
		c.sameWorkspace("sections", s.GID, s.WorkspaceGID, p.WorkspaceGID, "project")
	}
	c.briefs = unique(c, "project_briefs", d.ProjectBriefs, func(b domain.ProjectBrief) string { return b.GID })
	for _, b := range d.ProjectBriefs {
		p, ok := c.projects[b.ProjectGID]
		if !ok {
			c.missing("project_briefs", b.GID, "project", b.ProjectGID)
			continue
		}
		c.sameWorkspace("project_briefs", b.GID, b.WorkspaceGID, p.WorkspaceGID, "project")
		c.notBefore("project_briefs", b.GID, b.CreatedAt, p.CreatedAt, "project")
	}
}

func (c *checker) tasksAndRelations(d *domain.Dataset) {
	c.tasks = unique(c, "tasks", d.Tasks, func(t domain.Task) string { return t.GID })
	for _, t := range d.Tasks {
		c.notFuture("tasks", t.GID, t.CreatedAt)
		if t.AssigneeGID != nil {
			if u, ok := c.users[*t.AssigneeGID]; !ok {
				c.missing("tasks", t.GID, "assignee", *t.AssigneeGID)
			} else {
				c.sameWorkspace("tasks", t.GID, t.WorkspaceGID, u.WorkspaceGID, "assignee")
			}
		}
		if t.ParentTaskGID != nil {
			parent, ok := c.tasks[*t.ParentTaskGID]
			switch {
			case !ok:
				c.missing("tasks", t.GID, "parent", *t.ParentTaskGID)
			case *t.ParentTaskGID == t.GID:
				c.fail("reference", "tasks", t.GID, "task is its own parent")
			default:
				c.sameWorkspace("tasks", t.GID, t.WorkspaceGID, parent.WorkspaceGID, "parent")
				c.notBefore("tasks", t.GID, t.CreatedAt, parent.CreatedAt, "parent task")
			}
		}
		c.report.Checked++
		if t.Completed != (t.CompletedAt != nil) {
			c.fail("temporal", "tasks", t.GID, "completed flag disagrees with completed_at")
		}
		if t.CompletedAt != nil && (!t.CompletedAt.After(t.CreatedAt) || t.CompletedAt.After(c.now)) {
			c.fail("temporal", "tasks", t.GID, "completed_at outside (created_at, now]")
		}
		if t.StartOn != nil && t.DueOn != nil && t.StartOn.After(*t.DueOn) {
			c.fail("temporal", "tasks", t.GID, "start_on after due_on")
		}
		if t.IsMilestone && t.StartOn != nil && (t.DueOn == nil || !t.StartOn.Equal(*t.DueOn)) {
			c.fail("temporal", "tasks", t.GID, "milestone start_on differs from due_on")
		}
	}

	perTask := make(map[string]int, len(d.Tasks))
	for _, m := range d.TaskProjectMemberships {
		t, ok := c.tasks[m.TaskGID]
		if !ok {
			c.missing("task_project_memberships", m.TaskGID, "task", m.TaskGID)
			continue
		}
		perTask[m.TaskGID]++
		p, ok := c.projects[m.ProjectGID]
		if !ok {
			c.missing("task_project_memberships", m.TaskGID, "project", m.ProjectGID)
			continue
		}
		c.sameWorkspace("task_project_memberships", m.TaskGID, t.WorkspaceGID, p.WorkspaceGID, "project")
		c.notBefore("task_project_memberships", m.TaskGID, t.CreatedAt, p.CreatedAt, "project")
		if s, ok := c.sections[m.SectionGID]; m.SectionGID != "" && (!ok || s.ProjectGID != m.ProjectGID) {
			c.fail("reference", "task_project_memberships", m.TaskGID, "section %s is not in project %s", m.SectionGID, m.ProjectGID)
		}
	}
	for _, t := range d.Tasks {
		if perTask[t.GID] != 1 {
			c.fail("cardinality", "task_project_memberships", t.GID, "task has %d project memberships", perTask[t.GID])
		}
	}

	pairs := make(map[[2]string]bool, len(d.TaskDependencies))
	for _, dep := range d.TaskDependencies {
		key := dep.PredecessorGID + "->" + dep.SuccessorGID
		pred, okP := c.tasks[dep.PredecessorGID]
		succ, okS := c.tasks[dep.SuccessorGID]
		if !okP || !okS {
			c.missing("task_dependencies", key, "task", key)
			continue
		}
		c.report.Checked++
		if pred.GID == succ.GID {
			c.fail("dependency", "task_dependencies", key, "self dependency")
			continue
		}
		a, b := pred.GID, succ.GID
		if a > b {
			a, b = b, a
		}
		if pairs[[2]string{a, b}] {
			c.fail("dependency", "task_dependencies", key, "pair already linked")
		}
		pairs[[2]string{a, b}] = true
		c.sameWorkspace("task_dependencies", key, pred.WorkspaceGID, succ.WorkspaceGID, "successor")
		if !Dependency(pred, succ, dep.Type) {
			c.fail("dependency", "task_dependencies", key, "%s rule broken", dep.Type)
		}
	}

	for _, f := range d.TaskFollowers {
		key := f.TaskGID + "/" + f.UserGID
		t, ok := c.tasks[f.TaskGID]
		if !ok {
			c.missing("task_followers", key, "task", f.TaskGID)
			continue
		}
		u, ok := c.users[f.UserGID]
		if !ok {
			c.missing("task_followers", key, "user", f.UserGID)
			continue
		}
		c.sameWorkspace("task_followers", key, t.WorkspaceGID, u.WorkspaceGID, "follower")
	}
}

// Dependency applies the date rule of a dependency type; rules with a missing
// date hold.
func Dependency(pred, succ domain.Task, kind string) bool {
	var a, b *time.Time
	switch kind {
	case domain.FinishToStart:
		a, b = pred.DueOn, succ.StartOn
	case domain.StartToStart:
		a, b = pred.StartOn, succ.StartOn
	case domain.FinishToFinish:
		a, b = pred.DueOn, succ.DueOn
	default:
		return false
	}
	return a == nil || b == nil || !a.After(*b)
}

func (c *checker) content(d *domain.Dataset) {
	c.stories = unique(c, "stories", d.Stories, func(s domain.Story) string { return s.GID })
	for _, s := range d.Stories {
		t, ok := c.tasks[s.TaskGID]
		if !ok {
			c.missing("stories", s.GID, "task", s.TaskGID)
			continue
		}
		c.sameWorkspace("stories", s.GID, s.WorkspaceGID, t.WorkspaceGID, "task")
		c.notBefore("stories", s.GID, s.CreatedAt, t.CreatedAt, "task")
		c.notFuture("stories", s.GID, s.CreatedAt)
	}
	c.tags = unique(c, "tags", d.Tags, func(t domain.Tag) string { return t.GID })
	for _, tt := range d.TaskTags {
		key := tt.TaskGID + "/" + tt.TagGID
		t, okT := c.tasks[tt.TaskGID]
		tag, okG := c.tags[tt.TagGID]
		if !okT || !okG {
			c.missing("task_tags", key, "task or tag", key)
			continue
		}
		c.sameWorkspace("task_tags", key, t.WorkspaceGID, tag.WorkspaceGID, "tag")
	}
	for _, a := range d.Attachments {
		c.report.Checked++
		switch {
		case (a.ParentTaskGID == nil) == (a.ParentBriefGID == nil):
			c.fail("cardinality", "attachments", a.GID, "attachment needs exactly one parent")
		case a.ParentTaskGID != nil:
			if t, ok := c.tasks[*a.ParentTaskGID]; !ok {
				c.missing("attachments", a.GID, "task", *a.ParentTaskGID)
			} else {
				c.sameWorkspace("attachments", a.GID, a.WorkspaceGID, t.WorkspaceGID, "task")
				c.notBefore("attachments", a.GID, a.CreatedAt, t.CreatedAt, "task")
			}
		default:
			if b, ok := c.briefs[*a.ParentBriefGID]; !ok {
				c.missing("attachments", a.GID, "brief", *a.ParentBriefGID)
			} else {
				c.sameWorkspace("attachments", a.GID, a.WorkspaceGID, b.WorkspaceGID, "brief")
				c.notBefore("attachments", a.GID, a.CreatedAt, b.CreatedAt, "brief")
			}
		}
		c.notFuture("attachments", a.GID, a.CreatedAt)
	}
	liked := make(map[[2]string]bool, len(d.Likes))
	for _, l := range d.Likes {
		c.report.Checked++
		var target string
		var created time.Time
		switch {
		case (l.TaskGID == nil) == (l.StoryGID == nil):
			c.fail("cardinality", "likes", l.GID, "like needs exactly one target")
			continue
		case l.TaskGID != nil:
			t, ok := c.tasks[*l.TaskGID]
			if !ok {
				c.missing("likes", l.GID, "task", *l.TaskGID)
				continue
			}
			target, created = t.GID, t.CreatedAt
		default:
			s, ok := c.stories[*l.StoryGID]
			if !ok {
				c.missing("likes", l.GID, "story", *l.StoryGID)
				continue
			}
			target, created = s.GID, s.CreatedAt
		}
		if liked[[2]string{l.UserGID, target}] {
			c.fail("unique", "likes", l.GID, "user %s already liked %s", l.UserGID, target)
		}
		liked[[2]string{l.UserGID, target}] = true
		if u, ok := c.users[l.UserGID]; !ok {
			c.missing("likes", l.GID, "user", l.UserGID)
		} else {
			c.sameWorkspace("likes", l.GID, l.WorkspaceGID, u.WorkspaceGID, "user")
		}
		c.notBefore("likes", l.GID, l.CreatedAt, created, "target")
		c.notFuture("likes", l.GID, l.CreatedAt)
	}
}

func (c *checker) fieldValue(table, key string, def domain.CustomFieldDefinition, v domain.FieldValue) {
	c.report.Checked++
	set := 0
	for _, present := range []bool{v.TextValue != nil, v.NumberValue != nil, v.EnumOptionGID != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		c.fail("field", table, key, "expected exactly one value, got %d", set)
		return
	}
	switch def.ResourceSubtype {
	case domain.FieldText:
		if v.TextValue == nil {
			c.fail("field", table, key, "text field holds a non-text value")
		}
	case domain.FieldNumber:
		if v.NumberValue == nil {
			c.fail("field", table, key, "number field holds a non-number value")
		}
	case domain.FieldEnum:
		if v.EnumOptionGID == nil {
			c.fail("field", table, key, "enum field holds a non-enum value")
		} else if o, ok := c.options[*v.EnumOptionGID]; !ok || o.FieldGID != def.GID {
			c.fail("field", table, key, "option %s is not an option of field %s", *v.EnumOptionGID, def.GID)
		}
	}
}

func (c *checker) fieldsAndUpdates(d *domain.Dataset) {
	c.fields = unique(c, "custom_field_definitions", d.CustomFieldDefinitions, func(f domain.CustomFieldDefinition) string { return f.GID })
	c.options = unique(c, "custom_field_options", d.CustomFieldOptions, func(o domain.CustomFieldOption) string { return o.GID })
	for _, o := range d.CustomFieldOptions {
		if f, ok := c.fields[o.FieldGID]; !ok {
			c.missing("custom_field_options", o.GID, "field", o.FieldGID)
		} else {
			c.sameWorkspace("custom_field_options", o.GID, o.WorkspaceGID, f.WorkspaceGID, "field")
		}
	}
	for _, s := range d.ProjectCustomFieldSettings {
		key := s.ProjectGID + "/" + s.CustomFieldGID
		p, okP := c.projects[s.ProjectGID]
		f, okF := c.fields[s.CustomFieldGID]
		if !okP || !okF {
			c.missing("project_custom_field_settings", key, "project or field", key)
			continue
		}
		c.sameWorkspace("project_custom_field_settings", key, p.WorkspaceGID, f.WorkspaceGID, "field")
	}
	for _, s := range d.PortfolioCustomFieldSettings {
		key := s.PortfolioGID + "/" + s.CustomFieldGID
		p, okP := c.portfolios[s.PortfolioGID]
		f, okF := c.fields[s.CustomFieldGID]
		if !okP || !okF {
			c.missing("portfolio_custom_field_settings", key, "portfolio or field", key)
			continue
		}
		c.sameWorkspace("portfolio_custom_field_settings", key, p.WorkspaceGID, f.WorkspaceGID, "field")
	}
	for _, v := range d.CustomFieldValues {
		key := v.TaskGID + "/" + v.FieldGID
		t, okT := c.tasks[v.TaskGID]
		f, okF := c.fields[v.FieldGID]
		if !okT || !okF {
			c.missing("custom_field_values", key, "task or field", key)
			continue
		}
		c.sameWorkspace("custom_field_values", key, t.WorkspaceGID, f.WorkspaceGID, "field")
		c.fieldValue("custom_field_values", key, f, v.FieldValue)
	}
	for _, v := range d.PortfolioCustomFieldValues {
		key := v.PortfolioGID + "/" + v.FieldGID
		p, okP := c.portfolios[v.PortfolioGID]
		f, okF := c.fields[v.FieldGID]
		if !okP || !okF {
			c.missing("portfolio_custom_field_values", key, "portfolio or field", key)
			continue
		}
		c.sameWorkspace("portfolio_custom_field_values", key, p.WorkspaceGID, f.WorkspaceGID, "field")
		c.fieldValue("portfolio_custom_field_values", key, f, v.FieldValue)
	}

	for _, u := range d.StatusUpdates {
		c.report.Checked++
		parents := 0
		var ws string
		var created time.Time
		if u.ParentProjectGID != nil {
			parents++
			if p, ok := c.projects[*u.ParentProjectGID]; ok {
				ws, created = p.WorkspaceGID, p.CreatedAt
			} else {
				c.missing("status_updates", u.GID, "project", *u.ParentProjectGID)
			}
		}
		if u.ParentPortfolioGID != nil {
			parents++
			if p, ok := c.portfolios[*u.ParentPortfolioGID]; ok {
				ws, created = p.WorkspaceGID, p.CreatedAt
			} else {
				c.missing("status_updates", u.GID, "portfolio", *u.ParentPortfolioGID)
			}
		}
		if u.ParentGoalGID != nil {
			parents++
			if g, ok := c.goals[*u.ParentGoalGID]; ok {
				ws, created = g.WorkspaceGID, g.CreatedAt
			} else {
				c.missing("status_updates", u.GID, "goal", *u.ParentGoalGID)
			}
		}
		if parents != 1 {
			c.fail("cardinality", "status_updates", u.GID, "status update needs exactly one parent")
			continue
		}
		if ws == "" {
			continue
		}
		c.sameWorkspace("status_updates", u.GID, u.WorkspaceGID, ws, "parent")
		c.notBefore("status_updates", u.GID, u.CreatedAt, created, "parent")
		c.notFuture("status_updates", u.GID, u.CreatedAt)
	}

	for _, it := range d.PortfolioItems {
		c.report.Checked++
		port, ok := c.portfolios[it.PortfolioGID]
		if !ok {
			c.missing("portfolio_items", it.GID, "portfolio", it.PortfolioGID)
			continue
		}
		c.sameWorkspace("portfolio_items", it.GID, it.WorkspaceGID, port.WorkspaceGID, "portfolio")
		c.notBefore("portfolio_items", it.GID, it.CreatedAt, port.CreatedAt, "portfolio")
		c.notFuture("portfolio_items", it.GID, it.CreatedAt)
		switch {
		case (it.LinkedProjectGID == nil) == (it.LinkedPortfolioGID == nil):
			c.fail("cardinality", "portfolio_items", it.GID, "item needs exactly one linked entity")
		case it.LinkedProjectGID != nil:
			if p, ok := c.projects[*it.LinkedProjectGID]; !ok {
				c.missing("portfolio_items", it.GID, "project", *it.LinkedProjectGID)
			} else {
				c.sameWorkspace("portfolio_items", it.GID, it.WorkspaceGID, p.WorkspaceGID, "project")
				c.notBefore("portfolio_items", it.GID, it.CreatedAt, p.CreatedAt, "project")
			}
		default:
			if p, ok := c.portfolios[*it.LinkedPortfolioGID]; !ok {
				c.missing("portfolio_items", it.GID, "portfolio", *it.LinkedPortfolioGID)
			} else {
				c.sameWorkspace("portfolio_items", it.GID, it.WorkspaceGID, p.WorkspaceGID, "linked portfolio")
			}
		}
	}
}
