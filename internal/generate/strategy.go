package generate

import (
	"strconv"

	"worksim/internal/catalog"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// Portfolios are set up around the start of history and owned by early users.
func Portfolios(e *Env, workspaces []domain.Workspace, users []domain.User) []domain.Portfolio {
	n := e.Cfg.Volumes.Portfolios
	if len(workspaces) == 0 || n == 0 {
		return nil
	}
	cfg := e.Cfg.Portfolios
	times := e.K.Wave(n, e.Start.AddDate(0, 0, -cfg.LeadDays), e.Start.AddDate(0, 0, cfg.TrailDays), kernel.Linear)
	byWorkspace := rosters(users)
	out := make([]domain.Portfolio, 0, n)
	for i := 0; i < n; i++ {
		ws := workspaces[i%len(workspaces)]
		var owner *string
		if r := byWorkspace[ws.GID]; len(r) > 0 {
			senior := r[:max(1, int(float64(len(r))*cfg.SeniorFraction))]
			if u, ok := senior.pick(e); ok {
				owner = domain.Ref(u.GID)
			}
		}
		tpl, _ := kernel.Pick(e.K, catalog.Portfolios)
		name := catalog.Expand(tpl, func(key string) string {
			switch key {
			case "quarter":
				return strconv.Itoa(e.quarter())
			case "year":
				return strconv.Itoa(e.Now.Year())
			case "team":
				t, _ := kernel.Pick(e.K, []string{"Engineering", "Product", "Company"})
				return t
			}
			return key
		})
		color, _ := kernel.Pick(e.K, catalog.Colors)
		out = append(out, domain.Portfolio{
			GID:          e.gid(),
			WorkspaceGID: ws.GID,
			OwnerGID:     owner,
			Name:         name,
			Color:        color,
			CreatedAt:    times[i],
		})
	}
	return out
}

// Goals spread linearly over history; older goals are more often complete.
func Goals(e *Env, workspaces []domain.Workspace, users []domain.User) []domain.Goal {
	n := e.Cfg.Volumes.Goals
	if len(workspaces) == 0 || n == 0 {
		return nil
	}
	cfg := e.Cfg.Goals
	times := e.K.Wave(n, e.Start, e.Now.AddDate(0, 0, -30), kernel.Linear)
	byWorkspace := rosters(users)
	horizon := e.Now.AddDate(0, 0, cfg.DueHorizonDays)
	out := make([]domain.Goal, 0, n)
	for i := 0; i < n; i++ {
		ws := workspaces[i%len(workspaces)]
		created := times[i]
		var owner *string
		if u, ok := byWorkspace[ws.GID].pickAt(e, created); ok {
			owner = domain.Ref(u.GID)
		}
		name := goalName(e)
		due := kernel.Day(created.AddDate(0, 0, e.between(cfg.DueDays)))
		if due.After(horizon) {
			due = kernel.Day(e.Now.AddDate(0, 0, e.between(cfg.DueReclampDays)))
		}
		p := min(cfg.CompletionCap, cfg.CompletionBase+float64(e.ageDays(created))/float64(e.Cfg.HistoryDays)*cfg.CompletionSlope)
		out = append(out, domain.Goal{
			GID:          e.gid(),
			WorkspaceGID: ws.GID,
			OwnerGID:     owner,
			Name:         name,
			DueOn:        &due,
			IsCompleted:  e.K.Chance(p),
			CreatedAt:    created,
		})
	}
	return out
}

func goalName(e *Env) string {
	tpl, _ := kernel.Pick(e.K, catalog.Goals)
	return catalog.Expand(tpl, func(key string) string {
		var pool []string
		switch key {
		case "metric":
			pool = catalog.Metrics
		case "product":
			pool = catalog.Products
		case "initiative":
			pool = catalog.Initiatives
		case "platform":
			pool = catalog.GoalPlatforms
		case "capability":
			pool = catalog.Capabilities
		case "percent":
			return strconv.Itoa(e.K.IntBetween(10, 50))
		case "number":
			return strconv.Itoa(e.K.IntBetween(100, 10000))
		case "date":
			return "Q" + strconv.Itoa(e.quarter()) + " " + strconv.Itoa(e.Now.Year())
		}
		v, _ := kernel.Pick(e.K, pool)
		return v
	})
}
