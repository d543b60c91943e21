package generate

import (
	"context"
	"time"

	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// StatusUpdates posts progress reports on live projects, portfolios and goals.
// A project's latest update always carries the project's current status.
func StatusUpdates(ctx context.Context, e *Env, projects []domain.Project, portfolios []domain.Portfolio, goals []domain.Goal, users []domain.User) ([]domain.StatusUpdate, error) {
	cfg := e.Cfg.Updates
	byWorkspace := rosters(users)
	var out []domain.StatusUpdate
	post := func(ws roster, wsGID, subject, status string, at time.Time, parent func(*domain.StatusUpdate)) error {
		u, _ := ws.pickAt(e, at)
		text, err := e.text(ctx, content.StatusUpdate, "project", subject, "status", status, "author", u.Name)
		if err != nil {
			return err
		}
		su := domain.StatusUpdate{
			GID:          e.gid(),
			WorkspaceGID: wsGID,
			AuthorGID:    domain.Ref(u.GID),
			StatusType:   status,
			Text:         text,
			CreatedAt:    at,
		}
		parent(&su)
		out = append(out, su)
		return nil
	}

	for _, p := range projects {
		if p.Archived || !e.K.Chance(cfg.ProjectRatio) {
			continue
		}
		ws := byWorkspace[p.WorkspaceGID]
		if len(ws) == 0 {
			continue
		}
		n := e.K.IntBetween(1, cfg.MaxPerProject)
		if e.ageDays(p.CreatedAt) < cfg.ProjectSpacingDays {
			n = 1
		}
		times := spacedTimes(e, p.CreatedAt, n, cfg.ProjectSpacingDays, cfg.ProjectJitterDays)
		for i, at := range times {
			status := p.CurrentStatus
			if i < len(times)-1 {
				status = e.K.MustKey(cfg.StatusWeights, domain.OnTrack)
			}
			gid := p.GID
			if err := post(ws, p.WorkspaceGID, p.Name, status, at, func(su *domain.StatusUpdate) { su.ParentProjectGID = &gid }); err != nil {
				return nil, err
			}
		}
	}

	for _, p := range portfolios {
		if !e.K.Chance(cfg.PortfolioRatio) {
			continue
		}
		ws := byWorkspace[p.WorkspaceGID]
		if len(ws) == 0 {
			continue
		}
		n := e.K.IntBetween(1, cfg.MaxPerPortfolio)
		for _, at := range spacedTimes(e, p.CreatedAt, n, cfg.PortfolioSpacingDays, cfg.PortfolioJitterDays) {
			status, _ := kernel.Pick(e.K, []string{domain.OnTrack, domain.AtRisk})
			gid := p.GID
			if err := post(ws, p.WorkspaceGID, p.Name, status, at, func(su *domain.StatusUpdate) { su.ParentPortfolioGID = &gid }); err != nil {
				return nil, err
			}
		}
	}

	for _, g := range goals {
		if !e.K.Chance(cfg.GoalRatio) {
			continue
		}
		ws := byWorkspace[g.WorkspaceGID]
		if len(ws) == 0 {
			continue
		}
		at := g.CreatedAt.AddDate(0, 0, e.between(cfg.GoalDelayDays))
		if at.After(e.Now) {
			at = laterOf(g.CreatedAt, e.Now.AddDate(0, 0, -e.K.IntBetween(1, 7)))
		}
		status := domain.OnTrack
		if !g.IsCompleted {
			status = e.K.MustKey(cfg.StatusWeights, domain.OnTrack)
		}
		gid := g.GID
		if err := post(ws, g.WorkspaceGID, g.Name, status, at, func(su *domain.StatusUpdate) { su.ParentGoalGID = &gid }); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// spacedTimes returns up to n instants roughly every spacing days after
// created, stopping at the first one past now.
func spacedTimes(e *Env, created time.Time, n, spacing, jitter int) []time.Time {
	var out []time.Time
	for i := 0; i < n; i++ {
		offset := (i+1)*spacing + e.K.IntBetween(-jitter, jitter)
		at := created.AddDate(0, 0, max(offset, 0))
		if at.After(e.Now) {
			break
		}
		out = append(out, at)
	}
	return out
}

// PortfolioItems groups projects of the same workspace under each portfolio and
// occasionally nests another portfolio. Items are dated after both ends exist.
func PortfolioItems(e *Env, portfolios []domain.Portfolio, projects []domain.Project) []domain.PortfolioItem {
	cfg := e.Cfg.Items
	projectsByWorkspace := make(map[string][]domain.Project)
	for _, p := range projects {
		projectsByWorkspace[p.WorkspaceGID] = append(projectsByWorkspace[p.WorkspaceGID], p)
	}
	portfoliosByWorkspace := make(map[string][]domain.Portfolio)
	for _, p := range portfolios {
		portfoliosByWorkspace[p.WorkspaceGID] = append(portfoliosByWorkspace[p.WorkspaceGID], p)
	}
	var out []domain.PortfolioItem
	for _, port := range portfolios {
		if wsProjects := projectsByWorkspace[port.WorkspaceGID]; len(wsProjects) > 0 {
			lo := min(cfg.ProjectsPerPortfolio.Min, len(wsProjects))
			hi := min(cfg.ProjectsPerPortfolio.Max, len(wsProjects))
			for _, proj := range kernel.SampleOf(e.K, wsProjects, e.K.IntBetween(lo, hi)) {
				at := laterOf(port.CreatedAt, proj.CreatedAt).AddDate(0, 0, e.K.IntBetween(1, 7))
				out = append(out, domain.PortfolioItem{
					GID:              e.gid(),
					PortfolioGID:     port.GID,
					WorkspaceGID:     port.WorkspaceGID,
					LinkedProjectGID: domain.Ref(proj.GID),
					CreatedAt:        e.clampNow(at),
				})
			}
		}
		if !e.K.Chance(cfg.LinkRatio) {
			continue
		}
		var others []domain.Portfolio
		for _, p := range portfoliosByWorkspace[port.WorkspaceGID] {
			if p.GID != port.GID {
				others = append(others, p)
			}
		}
		if other, ok := kernel.Pick(e.K, others); ok {
			at := laterOf(port.CreatedAt, other.CreatedAt).AddDate(0, 0, e.K.IntBetween(1, 14))
			out = append(out, domain.PortfolioItem{
				GID:                e.gid(),
				PortfolioGID:       port.GID,
				WorkspaceGID:       port.WorkspaceGID,
				LinkedPortfolioGID: domain.Ref(other.GID),
				CreatedAt:          e.clampNow(at),
			})
		}
	}
	return out
}
