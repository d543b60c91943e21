package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/domain"
	"worksim/internal/validate"
)

var now = time.Date(2026, 1, 6, 22, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

func fixture() *domain.Dataset {
	created := now.AddDate(0, -2, 0)
	return &domain.Dataset{
		Workspaces: []domain.Workspace{{GID: "w1", CreatedAt: created.AddDate(0, -1, 0)}},
		Users: []domain.User{
			{GID: "u1", WorkspaceGID: "w1", Email: "a@x.com", CreatedAt: created},
			{GID: "u2", WorkspaceGID: "w1", Email: "b@x.com", CreatedAt: created},
		},
		WorkspaceMemberships: []domain.WorkspaceMembership{
			{WorkspaceGID: "w1", UserGID: "u1"},
			{WorkspaceGID: "w1", UserGID: "u2"},
		},
		Teams:           []domain.Team{{GID: "t1", WorkspaceGID: "w1", Name: "Platform"}},
		TeamMemberships: []domain.TeamMembership{{TeamGID: "t1", UserGID: "u1", WorkspaceGID: "w1"}},
		Projects: []domain.Project{
			{GID: "p1", WorkspaceGID: "w1", TeamGID: "t1", OwnerGID: domain.Ref("u1"), CreatedAt: created},
		},
		Sections: []domain.Section{{GID: "s1", WorkspaceGID: "w1", ProjectGID: "p1"}},
		Tasks: []domain.Task{
			{GID: "k1", WorkspaceGID: "w1", CreatedAt: created.Add(time.Hour), StartOn: day(0), DueOn: day(3)},
			{GID: "k2", WorkspaceGID: "w1", CreatedAt: created.Add(2 * time.Hour), StartOn: day(4), DueOn: day(6)},
		},
		TaskProjectMemberships: []domain.TaskProjectMembership{
			{WorkspaceGID: "w1", TaskGID: "k1", ProjectGID: "p1", SectionGID: "s1"},
			{WorkspaceGID: "w1", TaskGID: "k2", ProjectGID: "p1", SectionGID: "s1"},
		},
		TaskDependencies: []domain.TaskDependency{
			{WorkspaceGID: "w1", PredecessorGID: "k1", SuccessorGID: "k2", Type: domain.FinishToStart},
		},
	}
}

func TestCleanDataset(t *testing.T) {
	r := validate.Dataset(fixture(), now)
	require.NoError(t, r.Err())
	assert.Greater(t, r.Checked, 10)
}

func TestDetectsViolations(t *testing.T) {
	cases := []struct {
		name   string
		check  string
		mutate func(*domain.Dataset)
	}{
		{"duplicate email", "unique", func(d *domain.Dataset) { d.Users[1].Email = "a@x.com" }},
		{"owner outside team", "reference", func(d *domain.Dataset) { d.Projects[0].OwnerGID = domain.Ref("u2") }},
		{"subtask before parent", "temporal", func(d *domain.Dataset) {
			d.Tasks[1].ParentTaskGID = domain.Ref("k1")
			d.Tasks[1].CreatedAt = d.Tasks[0].CreatedAt.Add(-time.Minute)
		}},
		{"completion after now", "temporal", func(d *domain.Dataset) {
			late := now.Add(time.Hour)
			d.Tasks[0].Completed = true
			d.Tasks[0].CompletedAt = &late
		}},
		{"start after due", "temporal", func(d *domain.Dataset) { d.Tasks[0].StartOn = day(5) }},
		{"milestone with a span", "temporal", func(d *domain.Dataset) { d.Tasks[0].IsMilestone = true }},
		{"missing membership", "cardinality", func(d *domain.Dataset) {
			d.TaskProjectMemberships = d.TaskProjectMemberships[:1]
		}},
		{"self dependency", "dependency", func(d *domain.Dataset) { d.TaskDependencies[0].SuccessorGID = "k1" }},
		{"reversed pair", "dependency", func(d *domain.Dataset) {
			d.TaskDependencies = append(d.TaskDependencies, domain.TaskDependency{
				WorkspaceGID: "w1", PredecessorGID: "k2", SuccessorGID: "k1", Type: domain.StartToStart,
			})
		}},
		{"finish to start broken", "dependency", func(d *domain.Dataset) { d.Tasks[1].StartOn = day(1) }},
		{"cross workspace follower", "workspace", func(d *domain.Dataset) {
			d.Workspaces = append(d.Workspaces, domain.Workspace{GID: "w2"})
			d.Users[1].WorkspaceGID = "w2"
			d.WorkspaceMemberships[1].WorkspaceGID = "w2"
			d.TaskFollowers = []domain.TaskFollower{{WorkspaceGID: "w1", TaskGID: "k1", UserGID: "u2"}}
		}},
		{"orphan story", "reference", func(d *domain.Dataset) {
			d.Stories = []domain.Story{{GID: "st", WorkspaceGID: "w1", TaskGID: "nope", CreatedAt: now}}
		}},
		{"double like", "unique", func(d *domain.Dataset) {
			like := domain.Like{WorkspaceGID: "w1", UserGID: "u1", TaskGID: domain.Ref("k1"), CreatedAt: now}
			a, b := like, like
			a.GID, b.GID = "l1", "l2"
			d.Likes = []domain.Like{a, b}
		}},
		{"attachment with two parents", "cardinality", func(d *domain.Dataset) {
			d.Attachments = []domain.Attachment{{GID: "a1", WorkspaceGID: "w1", ParentTaskGID: domain.Ref("k1"), ParentBriefGID: domain.Ref("b1"), CreatedAt: now}}
		}},
		{"update without parent", "cardinality", func(d *domain.Dataset) {
			d.StatusUpdates = []domain.StatusUpdate{{GID: "su", WorkspaceGID: "w1", StatusType: domain.OnTrack, CreatedAt: now}}
		}},
		{"number stored in enum field", "field", func(d *domain.Dataset) {
			n := 3.0
			d.CustomFieldDefinitions = []domain.CustomFieldDefinition{{GID: "f1", WorkspaceGID: "w1", ResourceSubtype: domain.FieldEnum}}
			d.CustomFieldValues = []domain.CustomFieldValue{{WorkspaceGID: "w1", TaskGID: "k1", FieldGID: "f1", FieldValue: domain.FieldValue{NumberValue: &n}}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := fixture()
			tc.mutate(d)
			r := validate.Dataset(d, now)
			require.ErrorIs(t, r.Err(), validate.ErrViolations)
			var checks []string
			for _, is := range r.Issues {
				checks = append(checks, is.Check)
			}
			assert.Contains(t, checks, tc.check)
		})
	}
}

func TestDependencyRules(t *testing.T) {
	pred := domain.Task{StartOn: day(0), DueOn: day(5)}
	succ := domain.Task{StartOn: day(5), DueOn: day(4)}
	assert.True(t, validate.Dependency(pred, succ, domain.FinishToStart))
	assert.True(t, validate.Dependency(pred, succ, domain.StartToStart))
	assert.False(t, validate.Dependency(pred, succ, domain.FinishToFinish))
	assert.True(t, validate.Dependency(domain.Task{}, succ, domain.FinishToFinish), "missing dates are accepted")
	assert.False(t, validate.Dependency(pred, succ, "start_to_finish"))
}
