// Package generate holds the entity generators. Each generator is a function
// of upstream collections plus an Env; none of them mutates its inputs.
package generate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/ident"
	"worksim/internal/kernel"
)

// Env bundles what every generator needs: configuration, the run's kernel,
// the identity allocator and the text collaborator.
type Env struct {
	Cfg   *config.Config
	K     *kernel.Kernel
	IDs   *ident.Allocator
	Text  content.Synthesizer
	Now   time.Time
	Start time.Time
}

// NewEnv wires an Env around k. A nil text collaborator means templates only.
func NewEnv(cfg *config.Config, k *kernel.Kernel, text content.Synthesizer) *Env {
	if text == nil {
		text = content.Templates{K: k}
	}
	return &Env{
		Cfg:   cfg,
		K:     k,
		IDs:   ident.New(k),
		Text:  text,
		Now:   cfg.NowTime(),
		Start: cfg.HistoryStart(),
	}
}

func (e *Env) gid() string { return e.IDs.Next() }

// text asks the collaborator for content. kv holds context key/value pairs.
func (e *Env) text(ctx context.Context, kind content.Kind, kv ...string) (string, error) {
	req := content.Request{Kind: kind, Context: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		req.Context[kv[i]] = kv[i+1]
	}
	out, err := e.Text.Synthesize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("synthesize %s: %w", kind, err)
	}
	return out, nil
}

func (e *Env) ageDays(t time.Time) int {
	return int(e.Now.Sub(t).Hours() / 24)
}

func (e *Env) clampNow(t time.Time) time.Time {
	if t.After(e.Now) {
		return e.Now
	}
	return t
}

func (e *Env) between(r config.Range) int { return e.K.IntBetween(r.Min, r.Max) }

func (e *Env) quarter() int { return (int(e.Now.Month())-1)/3 + 1 }

// roster lists one workspace's users in creation order.
type roster []domain.User

// activeAt returns the users created no later than at, or every user when
// nobody qualifies yet.
func (r roster) activeAt(at time.Time) roster {
	n := sort.Search(len(r), func(i int) bool { return r[i].CreatedAt.After(at) })
	if n == 0 {
		return r
	}
	return r[:n]
}

func (r roster) pick(e *Env) (domain.User, bool) {
	return kernel.Pick(e.K, r)
}

// pickAt picks a user already present at the given instant.
func (r roster) pickAt(e *Env, at time.Time) (domain.User, bool) {
	return r.activeAt(at).pick(e)
}

func rosters(users []domain.User) map[string]roster {
	out := make(map[string]roster)
	for _, u := range users {
		out[u.WorkspaceGID] = append(out[u.WorkspaceGID], u)
	}
	for _, r := range out {
		sort.SliceStable(r, func(i, j int) bool { return r[i].CreatedAt.Before(r[j].CreatedAt) })
	}
	return out
}

func userIndex(users []domain.User) map[string]domain.User {
	out := make(map[string]domain.User, len(users))
	for _, u := range users {
		out[u.GID] = u
	}
	return out
}

// teamMembers maps team gid to member user gids in membership order.
func teamMembers(memberships []domain.TeamMembership) map[string][]string {
	out := make(map[string][]string)
	for _, m := range memberships {
		out[m.TeamGID] = append(out[m.TeamGID], m.UserGID)
	}
	return out
}

func firstName(full string) string {
	for i, r := range full {
		if r == ' ' {
			return full[:i]
		}
	}
	return full
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
