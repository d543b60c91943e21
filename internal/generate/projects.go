package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"worksim/internal/catalog"
	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// Projects follow an s-curve inside the history window. Each belongs to a team
// of its workspace and, when the team has members, is owned by one of them.
func Projects(e *Env, workspaces []domain.Workspace, teams []domain.Team, memberships []domain.TeamMembership, users []domain.User) []domain.Project {
	n := e.Cfg.Volumes.Projects
	if len(workspaces) == 0 || n == 0 {
		return nil
	}
	cfg := e.Cfg.Projects
	times := e.K.Wave(n, e.Start.AddDate(0, 0, 7), e.Now.AddDate(0, 0, -7), kernel.SCurve)
	teamsByWorkspace := make(map[string][]domain.Team)
	for _, t := range teams {
		teamsByWorkspace[t.WorkspaceGID] = append(teamsByWorkspace[t.WorkspaceGID], t)
	}
	members := teamMembers(memberships)
	byGID := userIndex(users)
	horizon := e.Now.AddDate(0, 0, cfg.DueHorizonDays)
	sprint := 1

	out := make([]domain.Project, 0, n)
	for i := 0; i < n; i++ {
		ws := workspaces[i%len(workspaces)]
		created := times[i]
		team, ok := kernel.Pick(e.K, teamsByWorkspace[ws.GID])
		if !ok {
			continue
		}
		var owner *string
		if u, ok := memberRoster(members[team.GID], byGID).pickAt(e, created); ok {
			owner = domain.Ref(u.GID)
		}
		archetype := e.K.MustKey(cfg.ArchetypeWeights, "kanban")
		number := sprint
		if archetype == "sprint" {
			sprint++
		} else {
			number = e.K.IntBetween(1, 10)
		}
		name := projectName(e, archetype, team.Name, number, created.Format("Jan"))

		var layout string
		switch archetype {
		case "sprint", "kanban", "bugs":
			layout = "board"
		case "launch":
			layout = "timeline"
		default:
			layout = e.K.MustKey(cfg.LayoutWeights, "list")
		}
		status := e.K.MustKey(cfg.StatusWeights, domain.OnTrack)

		var dueDate *time.Time
		if e.K.Chance(cfg.HasDueDateRatio) {
			d := kernel.Day(created.AddDate(0, 0, e.between(cfg.DueDays)))
			if d.After(horizon) {
				d = kernel.Day(e.Now.AddDate(0, 0, e.between(cfg.DueReclampDays)))
			}
			dueDate = &d
		}
		archiveP := min(cfg.ArchiveCeiling, cfg.ArchivedRatio*float64(e.ageDays(created))/float64(e.Cfg.HistoryDays))

		out = append(out, domain.Project{
			GID:           e.gid(),
			WorkspaceGID:  ws.GID,
			TeamGID:       team.GID,
			OwnerGID:      owner,
			Name:          name,
			Archetype:     archetype,
			Layout:        layout,
			CurrentStatus: status,
			DueDate:       dueDate,
			Archived:      e.K.Chance(archiveP),
			CreatedAt:     created,
		})
	}
	return out
}

func memberRoster(gids []string, byGID map[string]domain.User) roster {
	r := make(roster, 0, len(gids))
	for _, g := range gids {
		if u, ok := byGID[g]; ok {
			r = append(r, u)
		}
	}
	sort.SliceStable(r, func(i, j int) bool { return r[i].CreatedAt.Before(r[j].CreatedAt) })
	return r
}

func projectName(e *Env, archetype, team string, number int, month string) string {
	templates, ok := catalog.ProjectNames[archetype]
	if !ok {
		templates = catalog.ProjectNames["kanban"]
	}
	tpl, _ := kernel.Pick(e.K, templates)
	return catalog.Expand(tpl, func(key string) string {
		switch key {
		case "team":
			return team
		case "number":
			return strconv.Itoa(number)
		case "quarter":
			return strconv.Itoa(e.quarter())
		case "year":
			return strconv.Itoa(e.Now.Year())
		case "month":
			return month
		case "product":
			v, _ := kernel.Pick(e.K, catalog.Products)
			return v
		case "feature":
			v, _ := kernel.Pick(e.K, catalog.Features)
			return v
		case "campaign":
			v, _ := kernel.Pick(e.K, catalog.Campaigns)
			return v
		case "version":
			return fmt.Sprintf("%d.%d", e.K.IntBetween(1, 5), e.K.IntBetween(0, 9))
		}
		return key
	})
}

// Sections lays out each project's workflow columns; the terminal section is last.
func Sections(e *Env, projects []domain.Project) []domain.Section {
	var out []domain.Section
	for _, p := range projects {
		for i, name := range catalog.SectionsFor(p.Archetype) {
			out = append(out, domain.Section{
				GID:          e.gid(),
				WorkspaceGID: p.WorkspaceGID,
				ProjectGID:   p.GID,
				Name:         name,
				OrderIndex:   i,
			})
		}
	}
	return out
}

type templateStructure struct {
	Sections      []string `json:"sections"`
	DefaultFields []string `json:"default_fields"`
}

// ProjectTemplates assigns the curated templates round-robin to teams, one
// every five days from the start of history.
func ProjectTemplates(e *Env, teams []domain.Team) ([]domain.ProjectTemplate, error) {
	n := min(e.Cfg.Volumes.ProjectTemplates, len(catalog.ProjectTemplates))
	if len(teams) == 0 || n <= 0 {
		return nil, nil
	}
	out := make([]domain.ProjectTemplate, 0, n)
	for i, name := range catalog.ProjectTemplates[:n] {
		archetype := "kanban"
		if strings.Contains(name, "Sprint") {
			archetype = "sprint"
		}
		structure, err := json.Marshal(templateStructure{
			Sections:      catalog.SectionsFor(archetype),
			DefaultFields: []string{"Priority", "Status"},
		})
		if err != nil {
			return nil, fmt.Errorf("template structure: %w", err)
		}
		out = append(out, domain.ProjectTemplate{
			GID:           e.gid(),
			TeamGID:       teams[i%len(teams)].GID,
			Name:          name,
			StructureJSON: string(structure),
			CreatedAt:     e.clampNow(e.Start.AddDate(0, 0, 5*i)),
		})
	}
	return out, nil
}

// ProjectBriefs gives a share of projects an HTML overview.
func ProjectBriefs(ctx context.Context, e *Env, projects []domain.Project, teams []domain.Team, users []domain.User) ([]domain.ProjectBrief, error) {
	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		teamNames[t.GID] = t.Name
	}
	byGID := userIndex(users)
	var out []domain.ProjectBrief
	for _, p := range projects {
		if !e.K.Chance(e.Cfg.Projects.BriefRatio) {
			continue
		}
		owner := "Project Owner"
		if u, ok := byGID[domain.Deref(p.OwnerGID)]; ok {
			owner = u.Name
		}
		html, err := e.text(ctx, content.ProjectBrief,
			"project", p.Name,
			"team", teamNames[p.TeamGID],
			"owner", owner,
			"start_date", p.CreatedAt.Format(domain.DateLayout),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ProjectBrief{
			GID:          e.gid(),
			WorkspaceGID: p.WorkspaceGID,
			ProjectGID:   p.GID,
			Title:        "Overview",
			HTMLText:     html,
			CreatedAt:    p.CreatedAt,
		})
	}
	return out, nil
}
