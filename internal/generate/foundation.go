package generate

import (
	"fmt"
	"strings"

	"worksim/internal/catalog"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// Workspaces creates the tenancy roots, all dated before the history window.
func Workspaces(e *Env) []domain.Workspace {
	n := e.Cfg.Volumes.Workspaces
	names := kernel.SampleOf(e.K, catalog.CompanyNames, n)
	created := e.Start.AddDate(0, 0, -e.Cfg.Workspaces.OffsetDays)
	out := make([]domain.Workspace, 0, n)
	for i := 0; i < n; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}
		slug := strings.ToLower(strings.ReplaceAll(name, " ", ""))
		domainName := slug + ".com"
		if i > 0 {
			domainName = fmt.Sprintf("%s%d.com", slug, i)
		}
		out = append(out, domain.Workspace{
			GID:            e.gid(),
			Name:           name,
			Domain:         domainName,
			IsOrganization: true,
			CreatedAt:      created,
		})
	}
	return out
}

// Users creates users round-robin over workspaces along an s-curve, plus one
// workspace membership per user.
func Users(e *Env, workspaces []domain.Workspace) ([]domain.User, []domain.WorkspaceMembership) {
	n := e.Cfg.Volumes.Users
	if len(workspaces) == 0 || n == 0 {
		return nil, nil
	}
	times := e.K.Wave(n, e.Start, e.Now, kernel.SCurve)
	guests := int(float64(n) * e.Cfg.Users.GuestRatio)
	emails := newEmailBook()

	users := make([]domain.User, 0, n)
	memberships := make([]domain.WorkspaceMembership, 0, n)
	for i := 0; i < n; i++ {
		ws := workspaces[i%len(workspaces)]
		first, last, email := emails.claim(e, ws.Domain)
		u := domain.User{
			GID:          e.gid(),
			WorkspaceGID: ws.GID,
			Email:        email,
			Name:         first + " " + last,
			PhotoURL:     fmt.Sprintf(e.Cfg.Users.PhotoURL, first+"+"+last),
			Status:       e.K.MustKey(e.Cfg.Users.StatusWeights, "active"),
			CreatedAt:    times[i],
		}
		users = append(users, u)
		memberships = append(memberships, domain.WorkspaceMembership{
			WorkspaceGID: ws.GID,
			UserGID:      u.GID,
			IsGuest:      i < guests,
			CreatedAt:    u.CreatedAt,
		})
	}
	return users, memberships
}

// emailBook hands out dataset-unique addresses.
type emailBook struct {
	used   map[string]bool
	prefix map[string]int
}

func newEmailBook() *emailBook {
	return &emailBook{used: map[string]bool{}, prefix: map[string]int{}}
}

func (b *emailBook) claim(e *Env, domainName string) (first, last, email string) {
	var local string
	for attempt := 0; attempt < e.Cfg.Users.EmailAttempts; attempt++ {
		first, last = randomName(e)
		local = strings.ToLower(first) + "." + strings.ToLower(last)
		email = local + "@" + domainName
		if !b.used[email] {
			break
		}
		email = fmt.Sprintf("%s%d@%s", local, b.prefix[local]+1, domainName)
		if !b.used[email] {
			break
		}
	}
	for b.used[email] {
		b.prefix[local]++
		email = fmt.Sprintf("%s%d@%s", local, b.prefix[local]+1, domainName)
	}
	b.used[email] = true
	b.prefix[local]++
	return first, last, email
}

func randomName(e *Env) (string, string) {
	pool := catalog.FirstNamesFemale
	if e.K.Chance(0.5) {
		pool = catalog.FirstNamesMale
	}
	first, _ := kernel.Pick(e.K, pool)
	last, _ := kernel.Pick(e.K, catalog.LastNames)
	return first, last
}

// Teams creates the curated teams round-robin over workspaces during the
// setup period before history starts.
func Teams(e *Env, workspaces []domain.Workspace) []domain.Team {
	n := min(e.Cfg.Volumes.Teams, len(catalog.Teams))
	if len(workspaces) == 0 || n <= 0 {
		return nil
	}
	times := e.K.Wave(n, e.Start.AddDate(0, 0, -e.Cfg.Teams.SetupDays), e.Start, kernel.Linear)
	out := make([]domain.Team, 0, n)
	for i, t := range catalog.Teams[:n] {
		out = append(out, domain.Team{
			GID:          e.gid(),
			WorkspaceGID: workspaces[i%len(workspaces)].GID,
			Name:         t.Name,
			Description:  t.Text,
			CreatedAt:    times[i],
		})
	}
	return out
}

// TeamMemberships puts every user on a few teams of their workspace. Smaller
// teams attract members, scaled by the configured size boosts.
func TeamMemberships(e *Env, teams []domain.Team, users []domain.User) []domain.TeamMembership {
	byWorkspace := make(map[string][]domain.Team)
	for _, t := range teams {
		byWorkspace[t.WorkspaceGID] = append(byWorkspace[t.WorkspaceGID], t)
	}
	size := make(map[string]int)
	var out []domain.TeamMembership
	for _, u := range users {
		wsTeams := byWorkspace[u.WorkspaceGID]
		if len(wsTeams) == 0 {
			continue
		}
		want := e.K.IntBetween(e.Cfg.Teams.MinPerUser, min(e.Cfg.Teams.MaxPerUser, len(wsTeams)))
		available := append([]domain.Team(nil), wsTeams...)
		for j := 0; j < want && len(available) > 0; j++ {
			weights := make([]float64, len(available))
			for i, t := range available {
				weights[i] = e.sizeBoost(t.Name) / float64(size[t.GID]+1)
			}
			idx, err := e.K.WeightedChoice(weights)
			if err != nil {
				break
			}
			team := available[idx]
			available = append(available[:idx], available[idx+1:]...)
			out = append(out, domain.TeamMembership{
				TeamGID:      team.GID,
				UserGID:      u.GID,
				WorkspaceGID: u.WorkspaceGID,
				Role:         e.K.MustKey(e.Cfg.Teams.RoleWeights, "member"),
				IsGuest:      e.K.Chance(e.Cfg.Teams.GuestRatio),
			})
			size[team.GID]++
		}
	}
	return out
}

func (e *Env) sizeBoost(team string) float64 {
	for _, b := range e.Cfg.Teams.SizeBoosts {
		if strings.Contains(team, b.Match) {
			return b.Factor
		}
	}
	return 1
}
