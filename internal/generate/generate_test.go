package generate_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/generate"
	"worksim/internal/kernel"
	"worksim/internal/validate"
)

func smallConfig(mutate func(*config.Config)) *config.Config {
	cfg := config.Default()
	cfg.Seed = 42
	cfg.Volumes = config.Volumes{
		Workspaces:       1,
		Users:            10,
		Teams:            2,
		Portfolios:       2,
		Goals:            3,
		Projects:         5,
		ProjectTemplates: 2,
		Tasks:            200,
		SubtaskRatio:     0.2,
		Tags:             10,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newEnv(t *testing.T, cfg *config.Config, text content.Synthesizer) *generate.Env {
	t.Helper()
	require.NoError(t, cfg.Validate())
	return generate.NewEnv(cfg, kernel.New(cfg.Seed, cfg.Temporal), text)
}

func run(t *testing.T, cfg *config.Config) *domain.Dataset {
	t.Helper()
	d, err := generate.Run(context.Background(), newEnv(t, cfg, nil))
	require.NoError(t, err)
	return d
}

func TestScenarioSeed42(t *testing.T) {
	cfg := smallConfig(nil)
	d := run(t, cfg)

	require.Len(t, d.Workspaces, 1)
	require.Len(t, d.Users, 10)
	require.Len(t, d.Teams, 2)
	require.Len(t, d.Projects, 5)
	require.Len(t, d.Tasks, 200)
	require.Len(t, d.TaskProjectMemberships, 200)

	ws := d.Workspaces[0].GID
	base := make(map[string]bool)
	for _, task := range d.Tasks {
		assert.Equal(t, ws, task.WorkspaceGID)
		assert.Len(t, task.GID, 16)
		if task.ParentTaskGID == nil {
			base[task.GID] = true
		}
	}
	require.Len(t, base, 160)
	subtasks := 0
	for _, task := range d.Tasks {
		if task.ParentTaskGID == nil {
			continue
		}
		subtasks++
		assert.True(t, base[*task.ParentTaskGID], "subtask %s must reference a base task", task.GID)
		assert.False(t, task.IsMilestone)
		assert.Nil(t, task.StartOn)
	}
	assert.Equal(t, 40, subtasks)
	for _, dep := range d.TaskDependencies {
		assert.NotEqual(t, dep.PredecessorGID, dep.SuccessorGID)
	}

	report := validate.Dataset(d, cfg.NowTime())
	require.NoError(t, report.Err())
	assert.Greater(t, report.Checked, 0)
}

func TestRunIsDeterministic(t *testing.T) {
	first, err := json.Marshal(run(t, smallConfig(nil)))
	require.NoError(t, err)
	second, err := json.Marshal(run(t, smallConfig(nil)))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	other, err := json.Marshal(run(t, smallConfig(func(c *config.Config) { c.Seed = 7 })))
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(other))
}

func TestSplit(t *testing.T) {
	base, subtasks := generate.Split(200, 0.2)
	assert.Equal(t, 160, base)
	assert.Equal(t, 40, subtasks)

	base, subtasks = generate.Split(7, 0)
	assert.Equal(t, 7, base)
	assert.Equal(t, 0, subtasks)
}

// upstream builds everything a task builder needs.
func upstream(e *generate.Env) ([]domain.Project, []domain.Section, []domain.TeamMembership, []domain.User) {
	ws := generate.Workspaces(e)
	users, _ := generate.Users(e, ws)
	teams := generate.Teams(e, ws)
	memberships := generate.TeamMemberships(e, teams, users)
	projects := generate.Projects(e, ws, teams, memberships, users)
	return projects, generate.Sections(e, projects), memberships, users
}

func TestBuilderRejectsWorkAfterFinalize(t *testing.T) {
	e := newEnv(t, smallConfig(nil), nil)
	projects, sections, memberships, users := upstream(e)
	b := generate.NewBuilder(e, projects, sections, memberships, users)
	ctx := context.Background()
	require.NoError(t, b.BuildBase(ctx, 10))
	require.NoError(t, b.BuildSubtasks(ctx, 25))

	tasks, taskMemberships := b.Finalize()
	require.Len(t, tasks, 35)
	require.Len(t, taskMemberships, 35)
	for i, task := range tasks {
		assert.Equal(t, task.GID, taskMemberships[i].TaskGID)
	}
	assert.ErrorIs(t, b.BuildBase(ctx, 1), generate.ErrFinalized)
	assert.ErrorIs(t, b.BuildSubtasks(ctx, 1), generate.ErrFinalized)
}

func largeBuild(t *testing.T, n int) (*config.Config, []domain.Task, []domain.TaskProjectMembership, []domain.Project) {
	t.Helper()
	cfg := smallConfig(func(c *config.Config) {
		c.Volumes.Users = 60
		c.Volumes.Teams = 6
		c.Volumes.Projects = 40
	})
	e := newEnv(t, cfg, nil)
	projects, sections, memberships, users := upstream(e)
	b := generate.NewBuilder(e, projects, sections, memberships, users)
	require.NoError(t, b.BuildBase(context.Background(), n))
	tasks, taskMemberships := b.Finalize()
	return cfg, tasks, taskMemberships, projects
}

func TestDistributions(t *testing.T) {
	if testing.Short() {
		t.Skip("large sample")
	}
	cfg, tasks, memberships, projects := largeBuild(t, 10000)

	t.Run("unassigned ratio", func(t *testing.T) {
		unassigned := 0
		for _, task := range tasks {
			if task.AssigneeGID == nil {
				unassigned++
			}
		}
		assert.InDelta(t, cfg.Tasks.UnassignedRatio, float64(unassigned)/float64(len(tasks)), 0.03)
	})

	t.Run("weekday skew", func(t *testing.T) {
		perDay := make(map[time.Weekday]int)
		for _, task := range tasks {
			perDay[task.CreatedAt.Weekday()]++
		}
		weekend := max(perDay[time.Saturday], perDay[time.Sunday])
		for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday} {
			assert.Greater(t, perDay[d], weekend, "%s should be busier than the weekend", d)
		}
	})

	t.Run("completion bands", func(t *testing.T) {
		archetype := make(map[string]string, len(projects))
		for _, p := range projects {
			archetype[p.GID] = p.Archetype
		}
		total := make(map[string]int)
		done := make(map[string]int)
		for i, task := range tasks {
			a := archetype[memberships[i].ProjectGID]
			total[a]++
			if task.Completed {
				done[a]++
			}
		}
		for a, n := range total {
			if n < 500 {
				continue
			}
			band := cfg.Tasks.CompletionRates[a]
			got := float64(done[a]) / float64(n)
			assert.GreaterOrEqual(t, got, band.Min-0.04, "archetype %s", a)
			assert.LessOrEqual(t, got, min(cfg.Tasks.CompletionCeiling, band.Max*cfg.Tasks.AgeFactorCap)+0.04, "archetype %s", a)
		}
	})
}

func TestSubtaskCompletionFollowsParent(t *testing.T) {
	if testing.Short() {
		t.Skip("large sample")
	}
	cfg := smallConfig(func(c *config.Config) {
		c.Volumes.Users = 60
		c.Volumes.Teams = 6
		c.Volumes.Projects = 40
	})
	e := newEnv(t, cfg, nil)
	projects, sections, memberships, users := upstream(e)
	b := generate.NewBuilder(e, projects, sections, memberships, users)
	ctx := context.Background()
	require.NoError(t, b.BuildBase(ctx, 4000))
	require.NoError(t, b.BuildSubtasks(ctx, 4000))
	tasks, _ := b.Finalize()

	completed := make(map[string]bool)
	for _, task := range tasks {
		if task.ParentTaskGID == nil {
			completed[task.GID] = task.Completed
		}
	}
	var n, done [2]int
	for _, task := range tasks {
		if task.ParentTaskGID == nil {
			continue
		}
		parentDone, ok := completed[*task.ParentTaskGID]
		require.True(t, ok, "subtask parent must be a base task")
		i := 0
		if parentDone {
			i = 1
		}
		n[i]++
		if task.Completed {
			done[i]++
		}
	}
	require.Positive(t, n[0])
	require.Positive(t, n[1])
	assert.InDelta(t, cfg.Subtasks.OpenParentRate, float64(done[0])/float64(n[0]), 0.05)
	assert.InDelta(t, cfg.Subtasks.CompletedParentRate, float64(done[1])/float64(n[1]), 0.05)
}

func TestStatusUpdatesEndOnCurrentStatus(t *testing.T) {
	cfg := smallConfig(func(c *config.Config) {
		c.Volumes.Projects = 30
		c.Updates.ProjectRatio = 1
	})
	d := run(t, cfg)

	latest := make(map[string]domain.StatusUpdate)
	for _, u := range d.StatusUpdates {
		if u.ParentProjectGID == nil {
			continue
		}
		if cur, ok := latest[*u.ParentProjectGID]; !ok || u.CreatedAt.After(cur.CreatedAt) {
			latest[*u.ParentProjectGID] = u
		}
	}
	require.NotEmpty(t, latest)
	for _, p := range d.Projects {
		u, ok := latest[p.GID]
		if !ok {
			continue
		}
		assert.False(t, p.Archived, "archived projects get no updates")
		assert.Equal(t, p.CurrentStatus, u.StatusType, "project %s", p.GID)
	}
}

func TestCustomFieldValuesMatchSubtype(t *testing.T) {
	cfg := smallConfig(func(c *config.Config) {
		c.Fields.ProjectRatio = 1
		c.Fields.TaskFillRatio = 1
		c.Fields.PortfolioRatio = 1
		c.Fields.PortfolioFillRatio = 1
	})
	d := run(t, cfg)
	require.NotEmpty(t, d.CustomFieldValues)
	require.NotEmpty(t, d.PortfolioCustomFieldValues)

	important := make(map[string]int)
	for _, s := range d.ProjectCustomFieldSettings {
		if s.IsImportant {
			important[s.ProjectGID]++
		}
	}
	for p, n := range important {
		assert.Equal(t, 1, n, "project %s", p)
	}
	require.NoError(t, validate.Dataset(d, cfg.NowTime()).Err())
}

type failingText struct{}

func (failingText) Synthesize(context.Context, content.Request) (string, error) {
	return "", errors.New("backend down")
}

func TestRunSurfacesTextErrors(t *testing.T) {
	cfg := smallConfig(nil)
	_, err := generate.Run(context.Background(), newEnv(t, cfg, failingText{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesize")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := generate.Run(ctx, newEnv(t, smallConfig(nil), nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPhasesCoverEveryTableInOrder(t *testing.T) {
	var tables []string
	for _, p := range generate.Phases() {
		tables = append(tables, p.Tables...)
	}
	assert.Equal(t, domain.Tables, tables)
}
