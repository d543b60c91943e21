// Package content produces the free text attached to generated records:
// task descriptions, comments, status updates and project briefs.
package content

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"worksim/internal/catalog"
	"worksim/internal/kernel"
)

// Kind names the sort of text requested.
type Kind string

const (
	TaskDescription Kind = "task_description"
	Comment         Kind = "comment"
	StatusUpdate    Kind = "status_update"
	ProjectBrief    Kind = "project_brief"
)

// Complexity values for TaskDescription requests.
const (
	Empty    = "empty"
	Short    = "short"
	Detailed = "detailed"
)

var (
	ErrUnknownKind = errors.New("unknown content kind")
	ErrUnsupported = errors.New("content kind not supported by backend")
)

// Request carries the kind of text plus free-form context such as the task
// name, author or status.
type Request struct {
	Kind    Kind
	Context map[string]string
}

func (r Request) get(key, def string) string {
	if v := r.Context[key]; v != "" {
		return v
	}
	return def
}

// Synthesizer turns a Request into text.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (string, error)
}

// Templates renders text from the catalog using the run's kernel. It never
// fails for a known kind.
type Templates struct {
	K *kernel.Kernel
}

func (t Templates) Synthesize(_ context.Context, req Request) (string, error) {
	switch req.Kind {
	case TaskDescription:
		switch req.get("complexity", Short) {
		case Empty:
			return "", nil
		case Detailed:
			tpl, _ := kernel.Pick(t.K, catalog.DetailedDescriptions)
			return catalog.Expand(tpl, func(key string) string {
				v, _ := kernel.Pick(t.K, catalog.DescriptionSnippets[key])
				return v
			}), nil
		default:
			v, _ := kernel.Pick(t.K, catalog.ShortDescriptions)
			return v, nil
		}
	case Comment:
		tpl, _ := kernel.Pick(t.K, catalog.Comments)
		person := req.get("mention", "team")
		return catalog.Expand(tpl, func(string) string { return person }), nil
	case StatusUpdate:
		options, ok := catalog.StatusUpdates[req.get("status", "on_track")]
		if !ok {
			options = catalog.StatusUpdates["on_track"]
		}
		v, _ := kernel.Pick(t.K, options)
		return v, nil
	case ProjectBrief:
		tpl, _ := kernel.Pick(t.K, catalog.Briefs)
		team := req.get("team", "Team")
		vals := map[string]string{
			"project_name": req.get("project", "Project"),
			"team":         team,
			"team_lower":   strings.ToLower(team),
			"owner":        req.get("owner", "Project Owner"),
			"start_date":   req.get("start_date", "TBD"),
		}
		return catalog.Expand(tpl, func(key string) string { return vals[key] }), nil
	}
	return "", ErrUnknownKind
}

// Resilient prefers Primary and falls back to Fallback when Primary errors or
// returns blank text. The fallback is rendered on every call, before the
// primary is consulted, so the kernel stream advances identically whether or
// not a primary backend answers.
type Resilient struct {
	Primary  Synthesizer
	Fallback Synthesizer
	Log      zerolog.Logger
	// MaxFailures disables Primary after this many consecutive failures. Zero
	// means never.
	MaxFailures int

	failures int
	disabled bool
}

func (r *Resilient) Synthesize(ctx context.Context, req Request) (string, error) {
	fallback, err := r.Fallback.Synthesize(ctx, req)
	if err != nil {
		return "", err
	}
	if r.Primary == nil || r.disabled {
		return fallback, nil
	}
	if req.Kind == TaskDescription && req.get("complexity", Short) == Empty {
		return "", nil
	}
	out, err := r.Primary.Synthesize(ctx, req)
	switch {
	case errors.Is(err, ErrUnsupported):
		return fallback, nil
	case err != nil:
		r.fail(req, err)
		return fallback, nil
	case strings.TrimSpace(out) == "":
		r.fail(req, errors.New("empty response"))
		return fallback, nil
	}
	r.failures = 0
	return strings.TrimSpace(out), nil
}

// Disabled reports whether the primary backend was switched off.
func (r *Resilient) Disabled() bool { return r.disabled }

func (r *Resilient) fail(req Request, err error) {
	r.failures++
	r.Log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("text backend failed, using templates")
	if r.MaxFailures > 0 && r.failures >= r.MaxFailures {
		r.disabled = true
		r.Log.Warn().Int("failures", r.failures).Msg("text backend disabled for the rest of the run")
	}
}
