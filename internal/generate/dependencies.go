package generate

import (
	"worksim/internal/domain"
	"worksim/internal/kernel"
	"worksim/internal/validate"
)

// pairKey identifies a task pair regardless of direction.
type pairKey [2]string

func unordered(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Dependencies links dated tasks of the same workspace. A share of dated tasks
// become successors; each gets at most one predecessor that satisfies the
// drawn dependency type.
func Dependencies(e *Env, tasks []domain.Task) []domain.TaskDependency {
	cfg := e.Cfg.Deps
	var order []string
	dated := make(map[string][]domain.Task)
	for _, t := range tasks {
		if t.DueOn == nil && t.StartOn == nil {
			continue
		}
		if _, ok := dated[t.WorkspaceGID]; !ok {
			order = append(order, t.WorkspaceGID)
		}
		dated[t.WorkspaceGID] = append(dated[t.WorkspaceGID], t)
	}
	seen := make(map[pairKey]bool)
	var out []domain.TaskDependency
	for _, ws := range order {
		pool := dated[ws]
		if len(pool) < 2 {
			continue
		}
		for _, succ := range pool {
			if !e.K.Chance(cfg.TaskRatio) {
				continue
			}
			kind := e.K.MustKey(cfg.TypeWeights, domain.FinishToStart)
			pred, ok := findPredecessor(e.K, pool, succ, kind, cfg.MaxAttempts, seen)
			if !ok {
				continue
			}
			seen[unordered(pred.GID, succ.GID)] = true
			out = append(out, domain.TaskDependency{
				WorkspaceGID:   ws,
				PredecessorGID: pred.GID,
				SuccessorGID:   succ.GID,
				Type:           kind,
			})
		}
	}
	return out
}

// findPredecessor draws up to attempts candidates and returns the first one
// that is not succ, not already paired with succ, and valid for kind.
func findPredecessor(k *kernel.Kernel, pool []domain.Task, succ domain.Task, kind string, attempts int, seen map[pairKey]bool) (domain.Task, bool) {
	for i := 0; i < attempts; i++ {
		cand, _ := kernel.Pick(k, pool)
		if cand.GID == succ.GID || seen[unordered(cand.GID, succ.GID)] {
			continue
		}
		if validate.Dependency(cand, succ, kind) {
			return cand, true
		}
	}
	return domain.Task{}, false
}
