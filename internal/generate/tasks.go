package generate

import (
	"context"
	"errors"
	"math"
	"time"

	"worksim/internal/catalog"
	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// ErrFinalized is returned when a Builder is used after Finalize.
var ErrFinalized = errors.New("task builder already finalized")

// draft is a task under construction plus the placement it inherits to its
// subtasks. Only the embedded domain.Task leaves the builder.
type draft struct {
	task       domain.Task
	projectGID string
	sectionGID string
	teamGID    string
	archetype  string
}

// Builder generates tasks in two phases: base tasks attached to projects,
// then subtasks under sampled base tasks. Finalize hands out the records.
type Builder struct {
	env       *Env
	projects  []domain.Project
	sections  map[string][]domain.Section
	members   map[string][]string
	wsUsers   map[string][]string
	base      []draft
	subs      []draft
	finalized bool
}

// NewBuilder indexes the upstream collections a task needs.
func NewBuilder(e *Env, projects []domain.Project, sections []domain.Section, memberships []domain.TeamMembership, users []domain.User) *Builder {
	b := &Builder{
		env:      e,
		projects: projects,
		sections: make(map[string][]domain.Section),
		members:  teamMembers(memberships),
		wsUsers:  make(map[string][]string),
	}
	for _, s := range sections {
		b.sections[s.ProjectGID] = append(b.sections[s.ProjectGID], s)
	}
	for _, u := range users {
		b.wsUsers[u.WorkspaceGID] = append(b.wsUsers[u.WorkspaceGID], u.GID)
	}
	return b
}

// Split divides a task total into base tasks and subtasks.
func Split(total int, subtaskRatio float64) (base, subtasks int) {
	subtasks = int(math.Round(float64(total) * subtaskRatio))
	return total - subtasks, subtasks
}

// Tasks runs both builder phases with the configured volumes.
func Tasks(ctx context.Context, e *Env, projects []domain.Project, sections []domain.Section, memberships []domain.TeamMembership, users []domain.User) ([]domain.Task, []domain.TaskProjectMembership, error) {
	b := NewBuilder(e, projects, sections, memberships, users)
	base, subtasks := Split(e.Cfg.Volumes.Tasks, e.Cfg.Volumes.SubtaskRatio)
	if err := b.BuildBase(ctx, base); err != nil {
		return nil, nil, err
	}
	if err := b.BuildSubtasks(ctx, subtasks); err != nil {
		return nil, nil, err
	}
	tasks, taskMemberships := b.Finalize()
	return tasks, taskMemberships, nil
}

// BuildBase creates count top-level tasks along an exponential wave.
func (b *Builder) BuildBase(ctx context.Context, count int) error {
	if b.finalized {
		return ErrFinalized
	}
	if count <= 0 || len(b.projects) == 0 {
		return nil
	}
	e := b.env
	cfg := e.Cfg.Tasks
	times := e.K.Wave(count, e.Start.AddDate(0, 0, 14), e.Now.AddDate(0, 0, -1), kernel.Exponential)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		project, _ := kernel.Pick(e.K, b.projects)
		created := times[i]
		if created.Before(project.CreatedAt) {
			lo, hi := project.CreatedAt.Add(time.Hour), e.clampNow(project.CreatedAt.Add(48*time.Hour))
			created = e.clampNow(e.K.Timestamp(lo, hi, kernel.Window{WeekdayWeighted: true}))
		}

		var assignee *string
		if !e.K.Chance(cfg.UnassignedRatio) {
			if g, ok := kernel.Pick(e.K, b.members[project.TeamGID]); ok {
				assignee = domain.Ref(g)
			} else if g, ok := kernel.Pick(e.K, b.wsUsers[project.WorkspaceGID]); ok {
				assignee = domain.Ref(g)
			}
		}

		category := "general"
		if project.Archetype == "sprint" || project.Archetype == "bugs" {
			category = "engineering"
		}
		name := taskName(e, project.Archetype, category)
		complexity := e.K.MustKey(cfg.DescriptionWeights, content.Short)
		description, err := e.text(ctx, content.TaskDescription,
			"name", name, "archetype", project.Archetype, "complexity", complexity)
		if err != nil {
			return err
		}

		due := b.dueDate(created, project.DueDate)
		var start *time.Time
		if due != nil && e.K.Chance(cfg.StartDateRatio) {
			s := due.AddDate(0, 0, -e.between(cfg.StartDaysBefore))
			start = &s
		}
		milestone := e.K.Chance(cfg.MilestoneRatio)
		if milestone && start != nil {
			s := *due
			start = &s
		}

		completed := e.K.Chance(b.completionProbability(project.Archetype, created))
		var completedAt *time.Time
		if completed {
			c := completionTime(e, created)
			completedAt = &c
		}

		sectionGID := b.pickSection(project.GID, completed)
		b.base = append(b.base, draft{
			task: domain.Task{
				GID:          e.gid(),
				WorkspaceGID: project.WorkspaceGID,
				AssigneeGID:  assignee,
				Name:         name,
				Description:  description,
				CreatedAt:    created,
				StartOn:      start,
				DueOn:        due,
				CompletedAt:  completedAt,
				Completed:    completed,
				IsMilestone:  milestone,
			},
			projectGID: project.GID,
			sectionGID: sectionGID,
			teamGID:    project.TeamGID,
			archetype:  project.Archetype,
		})
	}
	return nil
}

// BuildSubtasks attaches count subtasks to non-milestone base tasks. Parents
// are sampled in rounds until the count is reached.
func (b *Builder) BuildSubtasks(ctx context.Context, count int) error {
	if b.finalized {
		return ErrFinalized
	}
	var eligible []int
	for i, d := range b.base {
		if !d.task.IsMilestone {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 || count <= 0 {
		return nil
	}
	e := b.env
	cfg := e.Cfg.Subtasks
	made := 0
	for made < count {
		for _, j := range kernel.SampleOf(e.K, eligible, count-made) {
			if made >= count {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			parent := b.base[j]
			children := e.K.IntBetween(cfg.ChildrenPerParent.Min, min(cfg.ChildrenPerParent.Max, count-made))
			for c := 0; c < children && made < count; c++ {
				sub, err := b.subtask(ctx, parent)
				if err != nil {
					return err
				}
				b.subs = append(b.subs, sub)
				made++
			}
		}
	}
	return nil
}

func (b *Builder) subtask(ctx context.Context, parent draft) (draft, error) {
	e := b.env
	cfg := e.Cfg.Subtasks
	pc := parent.task.CreatedAt
	created := pc.Add(kernel.Hours(e.between(cfg.OffsetHours)) + time.Duration(e.K.IntBetween(0, 59))*time.Minute)
	if created.After(e.Now) {
		created = e.Now.Add(-kernel.Hours(e.between(cfg.RepairHours)))
		if created.Before(pc) {
			created = pc
		}
	}

	name := truncateName(taskName(e, parent.archetype, "general"), cfg.MaxNameLength)
	description := ""
	if !e.K.Chance(cfg.EmptyDescriptionRatio) {
		var err error
		description, err = e.text(ctx, content.TaskDescription,
			"name", name, "archetype", parent.archetype, "complexity", content.Short)
		if err != nil {
			return draft{}, err
		}
	}

	var due *time.Time
	if parent.task.DueOn != nil {
		d := parent.task.DueOn.AddDate(0, 0, -e.between(cfg.DueSlackDays))
		due = &d
	}

	rate := cfg.OpenParentRate
	if parent.task.Completed {
		rate = cfg.CompletedParentRate
	}
	completed := e.K.Chance(rate)
	var completedAt *time.Time
	if completed {
		c := completionTime(e, created)
		completedAt = &c
	}

	assignee := parent.task.AssigneeGID
	if team := b.members[parent.teamGID]; len(team) > 0 && e.K.Chance(cfg.FreshAssigneeRatio) {
		g, _ := kernel.Pick(e.K, team)
		assignee = domain.Ref(g)
	}

	return draft{
		task: domain.Task{
			GID:           e.gid(),
			WorkspaceGID:  parent.task.WorkspaceGID,
			AssigneeGID:   assignee,
			ParentTaskGID: domain.Ref(parent.task.GID),
			Name:          name,
			Description:   description,
			CreatedAt:     created,
			DueOn:         due,
			CompletedAt:   completedAt,
			Completed:     completed,
		},
		projectGID: parent.projectGID,
		sectionGID: parent.sectionGID,
		teamGID:    parent.teamGID,
		archetype:  parent.archetype,
	}, nil
}

// Finalize returns base tasks followed by subtasks and one project membership
// per task. The builder cannot be extended afterwards.
func (b *Builder) Finalize() ([]domain.Task, []domain.TaskProjectMembership) {
	b.finalized = true
	all := make([]draft, 0, len(b.base)+len(b.subs))
	all = append(all, b.base...)
	all = append(all, b.subs...)
	tasks := make([]domain.Task, len(all))
	memberships := make([]domain.TaskProjectMembership, len(all))
	for i, d := range all {
		tasks[i] = d.task
		memberships[i] = domain.TaskProjectMembership{
			WorkspaceGID: d.task.WorkspaceGID,
			TaskGID:      d.task.GID,
			ProjectGID:   d.projectGID,
			SectionGID:   d.sectionGID,
		}
	}
	return tasks, memberships
}

func (b *Builder) dueDate(created time.Time, projectDue *time.Time) *time.Time {
	e := b.env
	cfg := e.Cfg.Tasks
	var ahead int
	switch e.K.MustKey(cfg.DueDateWeights, "within_month") {
	case "no_due_date":
		return nil
	case "within_week":
		ahead = e.K.IntBetween(1, 7)
	case "within_month":
		ahead = e.K.IntBetween(8, 30)
	case "one_to_three_months":
		ahead = e.K.IntBetween(31, 90)
	case "overdue":
		ahead = -e.K.IntBetween(1, 14)
	default:
		ahead = e.K.IntBetween(1, 30)
	}
	due := kernel.Day(created).AddDate(0, 0, ahead)
	if projectDue != nil && due.After(*projectDue) {
		due = projectDue.AddDate(0, 0, -e.between(cfg.ProjectDueSlack))
	}
	if kernel.IsWeekend(due) && e.K.Chance(cfg.WeekendNudgeRatio) {
		due = nudgeOffWeekend(due, projectDue)
	}
	return &due
}

// nudgeOffWeekend moves Saturday to Friday and Sunday to Monday, unless Monday
// would overshoot the project due date.
func nudgeOffWeekend(due time.Time, projectDue *time.Time) time.Time {
	if due.Weekday() == time.Saturday {
		return due.AddDate(0, 0, -1)
	}
	monday := due.AddDate(0, 0, 1)
	if projectDue != nil && monday.After(*projectDue) {
		return due.AddDate(0, 0, -2)
	}
	return monday
}

func (b *Builder) completionProbability(archetype string, created time.Time) float64 {
	e := b.env
	cfg := e.Cfg.Tasks
	band, ok := cfg.CompletionRates[archetype]
	if !ok {
		band = config.FloatRange{Min: 0.5, Max: 0.7}
	}
	base := e.K.Uniform(band.Min, band.Max)
	age := float64(e.ageDays(created)) / float64(e.Cfg.HistoryDays)
	factor := min(cfg.AgeFactorCap, 1+age*0.5)
	return max(0, min(cfg.CompletionCeiling, base*factor))
}

// completionTime draws a completion instant strictly after created and no
// later than now.
func completionTime(e *Env, created time.Time) time.Time {
	c := e.Cfg.Completion
	days := e.K.LogNormalDays(c.LogNormalMean, c.LogNormalSigma, c.MinDays, c.MaxDays)
	at := created.Add(time.Duration(days * 24 * float64(time.Hour)))
	if at.After(e.Now) {
		at = e.Now.Add(-kernel.Hours(e.K.IntBetween(1, 48)))
	}
	if !at.After(created) {
		at = created.Add(kernel.Hours(e.K.IntBetween(2, 24)))
	}
	if at.After(e.Now) {
		at = created.Add(e.Now.Sub(created) / 2)
	}
	return at.Truncate(time.Second)
}

func (b *Builder) pickSection(projectGID string, completed bool) string {
	secs := b.sections[projectGID]
	switch {
	case len(secs) == 0:
		return ""
	case completed:
		return secs[len(secs)-1].GID
	case len(secs) == 1:
		return secs[0].GID
	}
	s, _ := kernel.Pick(b.env.K, secs[:len(secs)-1])
	return s.GID
}

func taskName(e *Env, archetype, category string) string {
	tpl, _ := kernel.Pick(e.K, catalog.TaskNameTemplates(archetype, category))
	return catalog.Expand(tpl, func(key string) string {
		v, ok := kernel.Pick(e.K, catalog.Vocabulary[key])
		if !ok {
			return key
		}
		return v
	})
}

func truncateName(name string, limit int) string {
	r := []rune(name)
	if limit <= 3 || len(r) <= limit {
		return name
	}
	return string(r[:limit-3]) + "..."
}
