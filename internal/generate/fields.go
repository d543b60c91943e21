package generate

import (
	"math"
	"strings"

	"worksim/internal/catalog"
	"worksim/internal/domain"
	"worksim/internal/kernel"
)

// CustomFields defines the field templates and their enum options in every workspace.
func CustomFields(e *Env, workspaces []domain.Workspace) ([]domain.CustomFieldDefinition, []domain.CustomFieldOption) {
	var defs []domain.CustomFieldDefinition
	var opts []domain.CustomFieldOption
	for _, ws := range workspaces {
		for _, tpl := range catalog.CustomFields {
			def := domain.CustomFieldDefinition{
				GID:             e.gid(),
				WorkspaceGID:    ws.GID,
				Name:            tpl.Name,
				ResourceSubtype: tpl.Subtype,
			}
			defs = append(defs, def)
			if tpl.Subtype != domain.FieldEnum {
				continue
			}
			for _, o := range tpl.Options {
				opts = append(opts, domain.CustomFieldOption{
					GID:          e.gid(),
					FieldGID:     def.GID,
					WorkspaceGID: ws.GID,
					Name:         o.Name,
					Color:        o.Text,
				})
			}
		}
	}
	return defs, opts
}

func fieldsByWorkspace(defs []domain.CustomFieldDefinition) map[string][]domain.CustomFieldDefinition {
	out := make(map[string][]domain.CustomFieldDefinition)
	for _, d := range defs {
		out[d.WorkspaceGID] = append(out[d.WorkspaceGID], d)
	}
	return out
}

// ProjectFieldSettings attaches a few fields to a share of projects. The first
// attached field is marked important.
func ProjectFieldSettings(e *Env, projects []domain.Project, defs []domain.CustomFieldDefinition) []domain.ProjectCustomFieldSetting {
	cfg := e.Cfg.Fields
	byWorkspace := fieldsByWorkspace(defs)
	var out []domain.ProjectCustomFieldSetting
	for _, p := range projects {
		if !e.K.Chance(cfg.ProjectRatio) {
			continue
		}
		fields := byWorkspace[p.WorkspaceGID]
		if len(fields) == 0 {
			continue
		}
		n := e.K.IntBetween(min(cfg.ProjectFields.Min, len(fields)), min(cfg.ProjectFields.Max, len(fields)))
		for i, f := range kernel.SampleOf(e.K, fields, n) {
			out = append(out, domain.ProjectCustomFieldSetting{
				WorkspaceGID:   p.WorkspaceGID,
				ProjectGID:     p.GID,
				CustomFieldGID: f.GID,
				IsImportant:    i == 0,
			})
		}
	}
	return out
}

// PortfolioFieldSettings attaches a few fields to a share of portfolios.
func PortfolioFieldSettings(e *Env, portfolios []domain.Portfolio, defs []domain.CustomFieldDefinition) []domain.PortfolioCustomFieldSetting {
	cfg := e.Cfg.Fields
	byWorkspace := fieldsByWorkspace(defs)
	var out []domain.PortfolioCustomFieldSetting
	for _, p := range portfolios {
		if !e.K.Chance(cfg.PortfolioRatio) {
			continue
		}
		fields := byWorkspace[p.WorkspaceGID]
		if len(fields) == 0 {
			continue
		}
		n := e.K.IntBetween(min(cfg.PortfolioFields.Min, len(fields)), min(cfg.PortfolioFields.Max, len(fields)))
		for _, f := range kernel.SampleOf(e.K, fields, n) {
			out = append(out, domain.PortfolioCustomFieldSetting{
				WorkspaceGID:   p.WorkspaceGID,
				PortfolioGID:   p.GID,
				CustomFieldGID: f.GID,
			})
		}
	}
	return out
}

// fieldCatalog resolves definitions and options by field gid.
type fieldCatalog struct {
	defs    map[string]domain.CustomFieldDefinition
	options map[string][]domain.CustomFieldOption
}

func newFieldCatalog(defs []domain.CustomFieldDefinition, opts []domain.CustomFieldOption) fieldCatalog {
	fc := fieldCatalog{
		defs:    make(map[string]domain.CustomFieldDefinition, len(defs)),
		options: make(map[string][]domain.CustomFieldOption),
	}
	for _, d := range defs {
		fc.defs[d.GID] = d
	}
	for _, o := range opts {
		fc.options[o.FieldGID] = append(fc.options[o.FieldGID], o)
	}
	return fc
}

// value draws a type-correct value. ok is false for an enum without options.
func (fc fieldCatalog) value(e *Env, def domain.CustomFieldDefinition, portfolio bool) (domain.FieldValue, bool) {
	var v domain.FieldValue
	switch def.ResourceSubtype {
	case domain.FieldText:
		text := "Portfolio notes"
		if !portfolio {
			text, _ = kernel.Pick(e.K, catalog.FieldNotes)
		}
		v.TextValue = &text
	case domain.FieldNumber:
		var n float64
		switch {
		case portfolio:
			n = float64(e.K.IntBetween(1, 100))
		case strings.Contains(def.Name, "Points"):
			n, _ = kernel.Pick(e.K, catalog.StoryPoints)
		case strings.Contains(def.Name, "Hours"):
			n = math.Round(e.K.Uniform(0.5, 40)*10) / 10
		default:
			n = float64(e.K.IntBetween(1, 100))
		}
		v.NumberValue = &n
	case domain.FieldEnum:
		o, ok := kernel.Pick(e.K, fc.options[def.GID])
		if !ok {
			return v, false
		}
		v.EnumOptionGID = domain.Ref(o.GID)
	default:
		return v, false
	}
	return v, true
}

// FieldValues fills the fields attached to each task's project.
func FieldValues(e *Env, tasks []domain.Task, settings []domain.ProjectCustomFieldSetting, memberships []domain.TaskProjectMembership, defs []domain.CustomFieldDefinition, opts []domain.CustomFieldOption) []domain.CustomFieldValue {
	fc := newFieldCatalog(defs, opts)
	perProject := make(map[string][]string)
	for _, s := range settings {
		perProject[s.ProjectGID] = append(perProject[s.ProjectGID], s.CustomFieldGID)
	}
	projectOf := make(map[string]string, len(memberships))
	for _, m := range memberships {
		projectOf[m.TaskGID] = m.ProjectGID
	}
	var out []domain.CustomFieldValue
	for _, t := range tasks {
		for _, fieldGID := range perProject[projectOf[t.GID]] {
			if !e.K.Chance(e.Cfg.Fields.TaskFillRatio) {
				continue
			}
			def, ok := fc.defs[fieldGID]
			if !ok {
				continue
			}
			v, ok := fc.value(e, def, false)
			if !ok {
				continue
			}
			out = append(out, domain.CustomFieldValue{
				WorkspaceGID: t.WorkspaceGID,
				TaskGID:      t.GID,
				FieldGID:     fieldGID,
				FieldValue:   v,
			})
		}
	}
	return out
}

// PortfolioFieldValues fills the fields attached to each portfolio.
func PortfolioFieldValues(e *Env, portfolios []domain.Portfolio, settings []domain.PortfolioCustomFieldSetting, defs []domain.CustomFieldDefinition, opts []domain.CustomFieldOption) []domain.PortfolioCustomFieldValue {
	fc := newFieldCatalog(defs, opts)
	perPortfolio := make(map[string][]string)
	for _, s := range settings {
		perPortfolio[s.PortfolioGID] = append(perPortfolio[s.PortfolioGID], s.CustomFieldGID)
	}
	var out []domain.PortfolioCustomFieldValue
	for _, p := range portfolios {
		for _, fieldGID := range perPortfolio[p.GID] {
			if !e.K.Chance(e.Cfg.Fields.PortfolioFillRatio) {
				continue
			}
			def, ok := fc.defs[fieldGID]
			if !ok {
				continue
			}
			v, ok := fc.value(e, def, true)
			if !ok {
				continue
			}
			out = append(out, domain.PortfolioCustomFieldValue{
				WorkspaceGID: p.WorkspaceGID,
				PortfolioGID: p.GID,
				FieldGID:     fieldGID,
				FieldValue:   v,
			})
		}
	}
	return out
}
