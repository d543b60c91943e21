package generate

import (
	"context"
	"strconv"
	"time"

	"worksim/internal/catalog"
	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// Stories writes the comment and system-event history of each task. Story i
// of a task is never earlier than 4i hours after the task was created.
func Stories(ctx context.Context, e *Env, tasks []domain.Task, users []domain.User) ([]domain.Story, error) {
	cfg := e.Cfg.Stories
	byWorkspace := rosters(users)
	var out []domain.Story
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := max(0, min(cfg.Max, int(e.K.Gauss(cfg.Mean, cfg.StdDev))))
		if n == 0 {
			continue
		}
		ws := byWorkspace[t.WorkspaceGID]
		age := e.ageDays(t.CreatedAt)
		if age == 0 {
			age = 1
		}
		hi := e.clampNow(t.CreatedAt.Add(kernel.Days(min(cfg.WindowDays, age))))
		for i := 0; i < n; i++ {
			lo := t.CreatedAt.Add(kernel.Hours(i * cfg.SpacingHours))
			if lo.After(hi) {
				lo = hi
			}
			at := e.K.Timestamp(lo, hi, kernel.Window{WeekdayWeighted: true})
			var author *string
			authorName := "Team Member"
			if u, ok := ws.pickAt(e, at); ok {
				author = domain.Ref(u.GID)
				authorName = u.Name
			}
			s := domain.Story{
				GID:          e.gid(),
				WorkspaceGID: t.WorkspaceGID,
				TaskGID:      t.GID,
				CreatedByGID: author,
				CreatedAt:    at,
			}
			if e.K.Chance(cfg.CommentRatio) {
				mention := "team"
				if u, ok := ws.pick(e); ok {
					mention = firstName(u.Name)
				}
				text, err := e.text(ctx, content.Comment, "name", t.Name, "author", authorName, "mention", mention)
				if err != nil {
					return nil, err
				}
				s.Type, s.Text = "comment", text
			} else {
				s.Type, s.Text = "system", systemEvent(e, ws, at)
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func systemEvent(e *Env, ws roster, at time.Time) string {
	tpl, _ := kernel.Pick(e.K, catalog.SystemStories)
	return catalog.Expand(tpl, func(key string) string {
		switch key {
		case "date":
			return at.AddDate(0, 0, 7).Format("Jan 02")
		case "person":
			if u, ok := ws.pick(e); ok {
				return u.Name
			}
			return "someone"
		case "project":
			return "the project"
		case "section":
			return "In Progress"
		case "priority":
			return "P1"
		case "tag":
			return "blocked"
		}
		return key
	})
}

// Tags defines the same tag vocabulary in every workspace.
func Tags(e *Env, workspaces []domain.Workspace) []domain.Tag {
	n := min(e.Cfg.Volumes.Tags, len(catalog.Tags))
	var out []domain.Tag
	for _, ws := range workspaces {
		for _, t := range catalog.Tags[:max(0, n)] {
			out = append(out, domain.Tag{
				GID:          e.gid(),
				WorkspaceGID: ws.GID,
				Name:         t.Name,
				Color:        t.Text,
			})
		}
	}
	return out
}

// TaskTags labels a share of tasks with distinct tags of their workspace.
func TaskTags(e *Env, tasks []domain.Task, tags []domain.Tag) []domain.TaskTag {
	byWorkspace := make(map[string][]domain.Tag)
	for _, t := range tags {
		byWorkspace[t.WorkspaceGID] = append(byWorkspace[t.WorkspaceGID], t)
	}
	var out []domain.TaskTag
	for _, t := range tasks {
		if !e.K.Chance(e.Cfg.Tags.TaskRatio) {
			continue
		}
		wsTags := byWorkspace[t.WorkspaceGID]
		if len(wsTags) == 0 {
			continue
		}
		n := e.K.IntBetween(1, min(e.Cfg.Tags.MaxPerTask, len(wsTags)))
		for _, tag := range kernel.SampleOf(e.K, wsTags, n) {
			out = append(out, domain.TaskTag{WorkspaceGID: t.WorkspaceGID, TaskGID: t.GID, TagGID: tag.GID})
		}
	}
	return out
}

// Attachments files documents on tasks, within a couple of weeks of the task's
// creation, and on project briefs at the brief's own time.
func Attachments(e *Env, tasks []domain.Task, briefs []domain.ProjectBrief, users []domain.User) []domain.Attachment {
	cfg := e.Cfg.Attachments
	byWorkspace := rosters(users)
	var out []domain.Attachment
	seq := 1
	add := func(ws, kind string, taskGID, briefGID *string, at time.Time) {
		tpl, _ := kernel.Pick(e.K, catalog.AttachmentNames[kind])
		name := catalog.Expand(tpl, func(string) string { return strconv.Itoa(seq) })
		seq++
		var creator *string
		if u, ok := byWorkspace[ws].pickAt(e, at); ok {
			creator = domain.Ref(u.GID)
		}
		out = append(out, domain.Attachment{
			GID:            e.gid(),
			WorkspaceGID:   ws,
			ParentTaskGID:  taskGID,
			ParentBriefGID: briefGID,
			Name:           name,
			ResourceURL:    cfg.BaseURL + name,
			ResourceType:   kind,
			CreatedByGID:   creator,
			CreatedAt:      at,
		})
	}
	for _, t := range tasks {
		if !e.K.Chance(cfg.TaskRatio) {
			continue
		}
		hi := e.clampNow(t.CreatedAt.Add(kernel.Days(cfg.WindowDays)))
		for i, n := 0, e.K.IntBetween(1, cfg.MaxPerTask); i < n; i++ {
			kind := e.K.MustKey(cfg.TypeWeights, "image")
			at := e.K.Timestamp(t.CreatedAt, hi, kernel.Window{WeekdayWeighted: true})
			add(t.WorkspaceGID, kind, domain.Ref(t.GID), nil, at)
		}
	}
	for _, b := range briefs {
		if !e.K.Chance(cfg.BriefRatio) {
			continue
		}
		for i, n := 0, e.K.IntBetween(1, cfg.MaxPerBrief); i < n; i++ {
			kind, _ := kernel.Pick(e.K, []string{"image", "pdf"})
			add(b.WorkspaceGID, kind, nil, domain.Ref(b.GID), b.CreatedAt)
		}
	}
	return out
}

// Likes lets workspace users like tasks and comment stories, at most once per
// user and target.
func Likes(e *Env, tasks []domain.Task, stories []domain.Story, users []domain.User) []domain.Like {
	cfg := e.Cfg.Likes
	byWorkspace := rosters(users)
	var out []domain.Like
	like := func(ws string, created time.Time, limit int, taskGID, storyGID *string) {
		r := byWorkspace[ws]
		if len(r) == 0 {
			return
		}
		for _, u := range kernel.SampleOf(e.K, r, e.K.IntBetween(1, min(limit, len(r)))) {
			out = append(out, domain.Like{
				GID:          e.gid(),
				WorkspaceGID: ws,
				UserGID:      u.GID,
				TaskGID:      taskGID,
				StoryGID:     storyGID,
				CreatedAt:    e.K.Timestamp(created, e.Now, kernel.Window{WeekdayWeighted: true}),
			})
		}
	}
	for _, t := range tasks {
		if e.K.Chance(cfg.TaskRatio) {
			like(t.WorkspaceGID, t.CreatedAt, cfg.MaxPerTask, domain.Ref(t.GID), nil)
		}
	}
	for _, s := range stories {
		if s.Type != "comment" {
			continue
		}
		if e.K.Chance(cfg.StoryRatio) {
			like(s.WorkspaceGID, s.CreatedAt, cfg.MaxPerStory, nil, domain.Ref(s.GID))
		}
	}
	return out
}

// Followers subscribes workspace users to a share of tasks. The assignee is
// never listed as a follower.
func Followers(e *Env, tasks []domain.Task, users []domain.User) []domain.TaskFollower {
	cfg := e.Cfg.Followers
	byWorkspace := rosters(users)
	var out []domain.TaskFollower
	for _, t := range tasks {
		if !e.K.Chance(cfg.TaskRatio) {
			continue
		}
		r := byWorkspace[t.WorkspaceGID]
		if len(r) == 0 {
			continue
		}
		for _, u := range kernel.SampleOf(e.K, r, e.K.IntBetween(1, min(cfg.MaxPerTask, len(r)))) {
			if u.GID == domain.Deref(t.AssigneeGID) {
				continue
			}
			out = append(out, domain.TaskFollower{WorkspaceGID: t.WorkspaceGID, TaskGID: t.GID, UserGID: u.GID})
		}
	}
	return out
}
