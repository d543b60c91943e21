package repo

import (
	"context"
	"fmt"
)

// Check is the outcome of one consistency query over stored data.
type Check struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Violations  int    `json:"violations"`
}

// Every query counts offending rows and is valid on both SQLite and PostgreSQL.
var checks = []struct {
	name, desc, query string
}{
	{"subtask_after_parent", "subtasks created before their parent",
		`SELECT COUNT(*) FROM tasks c JOIN tasks p ON p.gid = c.parent_task_gid WHERE c.created_at < p.created_at`},
	{"completion_after_creation", "tasks completed before they were created",
		`SELECT COUNT(*) FROM tasks WHERE completed_at IS NOT NULL AND completed_at < created_at`},
	{"completion_flag", "completed flag disagrees with completed_at",
		`SELECT COUNT(*) FROM tasks WHERE (completed AND completed_at IS NULL) OR (NOT completed AND completed_at IS NOT NULL)`},
	{"start_before_due", "tasks due before they start",
		`SELECT COUNT(*) FROM tasks WHERE start_on IS NOT NULL AND due_on IS NOT NULL AND due_on < start_on`},
	{"task_membership", "tasks without a project membership",
		`SELECT COUNT(*) FROM tasks t WHERE NOT EXISTS (SELECT 1 FROM task_project_memberships m WHERE m.task_gid = t.gid)`},
	{"self_dependency", "tasks depending on themselves",
		`SELECT COUNT(*) FROM task_dependencies WHERE predecessor_gid = successor_gid`},
	{"reversed_dependency", "dependency pairs stored in both directions",
		`SELECT COUNT(*) FROM task_dependencies a JOIN task_dependencies b ON a.predecessor_gid = b.successor_gid AND a.successor_gid = b.predecessor_gid`},
	{"story_after_task", "stories older than their task",
		`SELECT COUNT(*) FROM stories s JOIN tasks t ON t.gid = s.task_gid WHERE s.created_at < t.created_at`},
	{"assignee_workspace", "tasks assigned across workspaces",
		`SELECT COUNT(*) FROM tasks t JOIN users u ON u.gid = t.assignee_gid WHERE u.workspace_gid <> t.workspace_gid`},
	{"owner_in_team", "projects owned by someone outside the team",
		`SELECT COUNT(*) FROM projects p WHERE p.owner_gid IS NOT NULL AND NOT EXISTS (SELECT 1 FROM team_memberships m WHERE m.team_gid = p.team_gid AND m.user_gid = p.owner_gid)`},
	{"update_parent", "status updates without exactly one parent",
		`SELECT COUNT(*) FROM status_updates WHERE (CASE WHEN parent_project_gid IS NULL THEN 0 ELSE 1 END) + (CASE WHEN parent_portfolio_gid IS NULL THEN 0 ELSE 1 END) + (CASE WHEN parent_goal_gid IS NULL THEN 0 ELSE 1 END) <> 1`},
	{"like_unique", "users liking the same target twice",
		`SELECT COUNT(*) FROM (SELECT user_gid, task_gid, story_gid FROM likes GROUP BY user_gid, task_gid, story_gid HAVING COUNT(*) > 1) d`},
}

func runChecks(ctx context.Context, count func(context.Context, string) (int, error)) ([]Check, error) {
	res := make([]Check, 0, len(checks))
	for _, c := range checks {
		n, err := count(ctx, c.query)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", c.name, err)
		}
		res = append(res, Check{Name: c.name, Description: c.desc, Violations: n})
	}
	return res, nil
}
