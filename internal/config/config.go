package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Archetypes lists the project archetypes every archetype-keyed table must cover.
var Archetypes = []string{"sprint", "kanban", "launch", "ongoing", "bugs"}

// Config models worksim.yml.
type Config struct {
	Seed        int64        `yaml:"seed" json:"seed"`
	Now         string       `yaml:"now" json:"now"`
	HistoryDays int          `yaml:"history_days" json:"history_days"`
	Temporal    Temporal     `yaml:"temporal" json:"temporal"`
	Volumes     Volumes      `yaml:"volumes" json:"volumes"`
	Workspaces  Workspaces   `yaml:"workspaces" json:"workspaces"`
	Portfolios  Portfolios   `yaml:"portfolios" json:"portfolios"`
	Users       Users        `yaml:"users" json:"users"`
	Teams       Teams        `yaml:"teams" json:"teams"`
	Projects    Projects     `yaml:"projects" json:"projects"`
	Tasks       Tasks        `yaml:"tasks" json:"tasks"`
	Subtasks    Subtasks     `yaml:"subtasks" json:"subtasks"`
	Completion  Completion   `yaml:"completion" json:"completion"`
	Stories     Stories      `yaml:"stories" json:"stories"`
	Tags        Tags         `yaml:"tags" json:"tags"`
	Attachments Attachments  `yaml:"attachments" json:"attachments"`
	Likes       Likes        `yaml:"likes" json:"likes"`
	Deps        Dependencies `yaml:"dependencies" json:"dependencies"`
	Followers   Followers    `yaml:"followers" json:"followers"`
	Fields      CustomFields `yaml:"custom_fields" json:"custom_fields"`
	Updates     Updates      `yaml:"status_updates" json:"status_updates"`
	Items       Items        `yaml:"portfolio_items" json:"portfolio_items"`
	Goals       Goals        `yaml:"goals" json:"goals"`
	Content     Content      `yaml:"content" json:"content"`
	Storage     Storage      `yaml:"storage" json:"storage"`
	Server      Server       `yaml:"server" json:"server"`
}

type Temporal struct {
	BusinessStartHour    int                `yaml:"business_start_hour" json:"business_start_hour"`
	BusinessEndHour      int                `yaml:"business_end_hour" json:"business_end_hour"`
	WeekdayWeights       map[string]float64 `yaml:"weekday_weights" json:"weekday_weights"`
	MaxTimestampAttempts int                `yaml:"max_timestamp_attempts" json:"max_timestamp_attempts"`
	MaxDateAttempts      int                `yaml:"max_date_attempts" json:"max_date_attempts"`
	WeekendRejectRatio   float64            `yaml:"weekend_reject_ratio" json:"weekend_reject_ratio"`
	WaveJitter           float64            `yaml:"wave_jitter" json:"wave_jitter"`
	WaveWindowHours      int                `yaml:"wave_window_hours" json:"wave_window_hours"`
}

type Volumes struct {
	Workspaces       int     `yaml:"workspaces" json:"workspaces"`
	Users            int     `yaml:"users" json:"users"`
	Teams            int     `yaml:"teams" json:"teams"`
	Portfolios       int     `yaml:"portfolios" json:"portfolios"`
	Goals            int     `yaml:"goals" json:"goals"`
	Projects         int     `yaml:"projects" json:"projects"`
	ProjectTemplates int     `yaml:"project_templates" json:"project_templates"`
	Tasks            int     `yaml:"tasks" json:"tasks"`
	SubtaskRatio     float64 `yaml:"subtask_ratio" json:"subtask_ratio"`
	Tags             int     `yaml:"tags" json:"tags"`
}

type Workspaces struct {
	OffsetDays int `yaml:"offset_days" json:"offset_days"`
}

type Portfolios struct {
	LeadDays       int     `yaml:"lead_days" json:"lead_days"`
	TrailDays      int     `yaml:"trail_days" json:"trail_days"`
	SeniorFraction float64 `yaml:"senior_fraction" json:"senior_fraction"`
}

type Users struct {
	StatusWeights map[string]float64 `yaml:"status_weights" json:"status_weights"`
	GuestRatio    float64            `yaml:"guest_ratio" json:"guest_ratio"`
	EmailAttempts int                `yaml:"email_attempts" json:"email_attempts"`
	PhotoURL      string             `yaml:"photo_url" json:"photo_url"`
}

type Teams struct {
	MinPerUser  int                `yaml:"min_per_user" json:"min_per_user"`
	MaxPerUser  int                `yaml:"max_per_user" json:"max_per_user"`
	RoleWeights map[string]float64 `yaml:"role_weights" json:"role_weights"`
	GuestRatio  float64            `yaml:"guest_ratio" json:"guest_ratio"`
	SizeBoosts  []SizeBoost        `yaml:"size_boosts" json:"size_boosts"`
	SetupDays   int                `yaml:"setup_days" json:"setup_days"`
}

// SizeBoost multiplies the membership weight of teams whose name contains Match.
type SizeBoost struct {
	Match  string  `yaml:"match" json:"match"`
	Factor float64 `yaml:"factor" json:"factor"`
}

type Projects struct {
	ArchetypeWeights map[string]float64 `yaml:"archetype_weights" json:"archetype_weights"`
	LayoutWeights    map[string]float64 `yaml:"layout_weights" json:"layout_weights"`
	StatusWeights    map[string]float64 `yaml:"status_weights" json:"status_weights"`
	HasDueDateRatio  float64            `yaml:"has_due_date_ratio" json:"has_due_date_ratio"`
	DueDays          Range              `yaml:"due_days" json:"due_days"`
	DueHorizonDays   int                `yaml:"due_horizon_days" json:"due_horizon_days"`
	DueReclampDays   Range              `yaml:"due_reclamp_days" json:"due_reclamp_days"`
	ArchivedRatio    float64            `yaml:"archived_ratio" json:"archived_ratio"`
	ArchiveCeiling   float64            `yaml:"archive_ceiling" json:"archive_ceiling"`
	BriefRatio       float64            `yaml:"brief_ratio" json:"brief_ratio"`
}

// Range is an inclusive integer interval.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// FloatRange is an inclusive float interval.
type FloatRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type Tasks struct {
	UnassignedRatio    float64               `yaml:"unassigned_ratio" json:"unassigned_ratio"`
	DueDateWeights     map[string]float64    `yaml:"due_date_weights" json:"due_date_weights"`
	StartDateRatio     float64               `yaml:"start_date_ratio" json:"start_date_ratio"`
	StartDaysBefore    Range                 `yaml:"start_days_before" json:"start_days_before"`
	MilestoneRatio     float64               `yaml:"milestone_ratio" json:"milestone_ratio"`
	WeekendNudgeRatio  float64               `yaml:"weekend_nudge_ratio" json:"weekend_nudge_ratio"`
	ProjectDueSlack    Range                 `yaml:"project_due_slack_days" json:"project_due_slack_days"`
	CompletionRates    map[string]FloatRange `yaml:"completion_rates" json:"completion_rates"`
	AgeFactorCap       float64               `yaml:"age_factor_cap" json:"age_factor_cap"`
	CompletionCeiling  float64               `yaml:"completion_ceiling" json:"completion_ceiling"`
	DescriptionWeights map[string]float64    `yaml:"description_weights" json:"description_weights"`
}

type Subtasks struct {
	ChildrenPerParent     Range   `yaml:"children_per_parent" json:"children_per_parent"`
	OffsetHours           Range   `yaml:"offset_hours" json:"offset_hours"`
	RepairHours           Range   `yaml:"repair_hours" json:"repair_hours"`
	DueSlackDays          Range   `yaml:"due_slack_days" json:"due_slack_days"`
	CompletedParentRate   float64 `yaml:"completed_parent_rate" json:"completed_parent_rate"`
	OpenParentRate        float64 `yaml:"open_parent_rate" json:"open_parent_rate"`
	FreshAssigneeRatio    float64 `yaml:"fresh_assignee_ratio" json:"fresh_assignee_ratio"`
	EmptyDescriptionRatio float64 `yaml:"empty_description_ratio" json:"empty_description_ratio"`
	MaxNameLength         int     `yaml:"max_name_length" json:"max_name_length"`
}

type Completion struct {
	LogNormalMean  float64 `yaml:"log_normal_mean" json:"log_normal_mean"`
	LogNormalSigma float64 `yaml:"log_normal_sigma" json:"log_normal_sigma"`
	MinDays        float64 `yaml:"min_days" json:"min_days"`
	MaxDays        float64 `yaml:"max_days" json:"max_days"`
}

type Stories struct {
	Mean         float64 `yaml:"mean" json:"mean"`
	StdDev       float64 `yaml:"stddev" json:"stddev"`
	Max          int     `yaml:"max" json:"max"`
	CommentRatio float64 `yaml:"comment_ratio" json:"comment_ratio"`
	SpacingHours int     `yaml:"spacing_hours" json:"spacing_hours"`
	WindowDays   int     `yaml:"window_days" json:"window_days"`
}

type Tags struct {
	TaskRatio  float64 `yaml:"task_ratio" json:"task_ratio"`
	MaxPerTask int     `yaml:"max_per_task" json:"max_per_task"`
}

type Attachments struct {
	TaskRatio   float64            `yaml:"task_ratio" json:"task_ratio"`
	MaxPerTask  int                `yaml:"max_per_task" json:"max_per_task"`
	BriefRatio  float64            `yaml:"brief_ratio" json:"brief_ratio"`
	MaxPerBrief int                `yaml:"max_per_brief" json:"max_per_brief"`
	WindowDays  int                `yaml:"window_days" json:"window_days"`
	TypeWeights map[string]float64 `yaml:"type_weights" json:"type_weights"`
	BaseURL     string             `yaml:"base_url" json:"base_url"`
}

type Likes struct {
	TaskRatio   float64 `yaml:"task_ratio" json:"task_ratio"`
	MaxPerTask  int     `yaml:"max_per_task" json:"max_per_task"`
	StoryRatio  float64 `yaml:"story_ratio" json:"story_ratio"`
	MaxPerStory int     `yaml:"max_per_story" json:"max_per_story"`
}

type Dependencies struct {
	TaskRatio   float64            `yaml:"task_ratio" json:"task_ratio"`
	MaxAttempts int                `yaml:"max_attempts" json:"max_attempts"`
	TypeWeights map[string]float64 `yaml:"type_weights" json:"type_weights"`
}

type Followers struct {
	TaskRatio  float64 `yaml:"task_ratio" json:"task_ratio"`
	MaxPerTask int     `yaml:"max_per_task" json:"max_per_task"`
}

type CustomFields struct {
	ProjectRatio       float64 `yaml:"project_ratio" json:"project_ratio"`
	ProjectFields      Range   `yaml:"project_fields" json:"project_fields"`
	PortfolioRatio     float64 `yaml:"portfolio_ratio" json:"portfolio_ratio"`
	PortfolioFields    Range   `yaml:"portfolio_fields" json:"portfolio_fields"`
	TaskFillRatio      float64 `yaml:"task_fill_ratio" json:"task_fill_ratio"`
	PortfolioFillRatio float64 `yaml:"portfolio_fill_ratio" json:"portfolio_fill_ratio"`
}

type Updates struct {
	ProjectRatio         float64            `yaml:"project_ratio" json:"project_ratio"`
	MaxPerProject        int                `yaml:"max_per_project" json:"max_per_project"`
	ProjectSpacingDays   int                `yaml:"project_spacing_days" json:"project_spacing_days"`
	ProjectJitterDays    int                `yaml:"project_jitter_days" json:"project_jitter_days"`
	PortfolioRatio       float64            `yaml:"portfolio_ratio" json:"portfolio_ratio"`
	MaxPerPortfolio      int                `yaml:"max_per_portfolio" json:"max_per_portfolio"`
	PortfolioSpacingDays int                `yaml:"portfolio_spacing_days" json:"portfolio_spacing_days"`
	PortfolioJitterDays  int                `yaml:"portfolio_jitter_days" json:"portfolio_jitter_days"`
	GoalRatio            float64            `yaml:"goal_ratio" json:"goal_ratio"`
	GoalDelayDays        Range              `yaml:"goal_delay_days" json:"goal_delay_days"`
	StatusWeights        map[string]float64 `yaml:"status_weights" json:"status_weights"`
}

type Items struct {
	ProjectsPerPortfolio Range   `yaml:"projects_per_portfolio" json:"projects_per_portfolio"`
	LinkRatio            float64 `yaml:"link_ratio" json:"link_ratio"`
}

type Goals struct {
	DueDays         Range   `yaml:"due_days" json:"due_days"`
	DueHorizonDays  int     `yaml:"due_horizon_days" json:"due_horizon_days"`
	DueReclampDays  Range   `yaml:"due_reclamp_days" json:"due_reclamp_days"`
	CompletionBase  float64 `yaml:"completion_base" json:"completion_base"`
	CompletionSlope float64 `yaml:"completion_slope" json:"completion_slope"`
	CompletionCap   float64 `yaml:"completion_cap" json:"completion_cap"`
}

type Content struct {
	LLMEnabled bool          `yaml:"llm_enabled" json:"llm_enabled"`
	OllamaHost string        `yaml:"ollama_host" json:"ollama_host"`
	Model      string        `yaml:"model" json:"model"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

type Storage struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
}

// Server configures the read-only inspection API. An empty JWTSecret
// disables authentication.
type Server struct {
	Addr      string `yaml:"addr" json:"addr"`
	JWTSecret string `yaml:"jwt_secret" json:"-"`
}

// NowTime parses the pinned simulation clock.
func (c *Config) NowTime() time.Time {
	t, err := time.Parse(time.RFC3339, c.Now)
	if err != nil {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Second)
}

// HistoryStart is the opening of the simulated activity window.
func (c *Config) HistoryStart() time.Time {
	return c.NowTime().AddDate(0, 0, -c.HistoryDays)
}

// Validate ensures the config can drive a full generation run.
func (c *Config) Validate() error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if _, err := time.Parse(time.RFC3339, c.Now); err != nil {
		fail("now must be RFC3339: %v", err)
	}
	if c.HistoryDays < 30 {
		fail("history_days must be at least 30")
	}
	if c.Volumes.Workspaces < 1 {
		fail("volumes.workspaces must be at least 1")
	}
	for name, v := range map[string]int{
		"users": c.Volumes.Users, "teams": c.Volumes.Teams, "portfolios": c.Volumes.Portfolios,
		"goals": c.Volumes.Goals, "projects": c.Volumes.Projects, "project_templates": c.Volumes.ProjectTemplates,
		"tasks": c.Volumes.Tasks, "tags": c.Volumes.Tags,
	} {
		if v < 0 {
			fail("volumes.%s must not be negative", name)
		}
	}
	if c.Volumes.Tasks > 0 && c.Volumes.Projects == 0 {
		fail("volumes.projects must be positive when tasks are requested")
	}
	t := c.Temporal
	if t.BusinessStartHour < 0 || t.BusinessEndHour > 24 || t.BusinessStartHour >= t.BusinessEndHour {
		fail("temporal business hours must satisfy 0 <= start < end <= 24")
	}
	checkWeights(fail, "temporal.weekday_weights", t.WeekdayWeights)
	for day := range t.WeekdayWeights {
		if _, ok := ParseWeekday(day); !ok {
			fail("temporal.weekday_weights has unknown day %q", day)
		}
	}
	if t.MaxTimestampAttempts < 1 || t.MaxDateAttempts < 1 {
		fail("temporal attempt bounds must be positive")
	}
	if t.WaveJitter < 0 || t.WaveJitter > 0.5 {
		fail("temporal.wave_jitter must be within [0, 0.5]")
	}

	checkWeights(fail, "users.status_weights", c.Users.StatusWeights)
	checkWeights(fail, "teams.role_weights", c.Teams.RoleWeights)
	checkWeights(fail, "projects.archetype_weights", c.Projects.ArchetypeWeights)
	checkWeights(fail, "projects.layout_weights", c.Projects.LayoutWeights)
	checkWeights(fail, "projects.status_weights", c.Projects.StatusWeights)
	checkWeights(fail, "tasks.due_date_weights", c.Tasks.DueDateWeights)
	checkWeights(fail, "tasks.description_weights", c.Tasks.DescriptionWeights)
	checkWeights(fail, "attachments.type_weights", c.Attachments.TypeWeights)
	checkWeights(fail, "dependencies.type_weights", c.Deps.TypeWeights)
	checkWeights(fail, "status_updates.status_weights", c.Updates.StatusWeights)
	checkKeys(fail, "users.status_weights", c.Users.StatusWeights, "active", "away", "dnd", "deactivated")
	checkKeys(fail, "teams.role_weights", c.Teams.RoleWeights, "admin", "member", "commenter")
	checkKeys(fail, "projects.layout_weights", c.Projects.LayoutWeights, "list", "board", "timeline")
	checkKeys(fail, "projects.status_weights", c.Projects.StatusWeights, "on_track", "at_risk", "off_track")
	checkKeys(fail, "status_updates.status_weights", c.Updates.StatusWeights, "on_track", "at_risk", "off_track")
	checkKeys(fail, "dependencies.type_weights", c.Deps.TypeWeights, "finish_to_start", "start_to_start", "finish_to_finish")
	checkKeys(fail, "tasks.description_weights", c.Tasks.DescriptionWeights, "empty", "short", "detailed")
	checkKeys(fail, "tasks.due_date_weights", c.Tasks.DueDateWeights,
		"within_week", "within_month", "one_to_three_months", "no_due_date", "overdue")
	for archetype := range c.Projects.ArchetypeWeights {
		r, ok := c.Tasks.CompletionRates[archetype]
		if !ok {
			fail("tasks.completion_rates missing archetype %s", archetype)
			continue
		}
		if r.Min < 0 || r.Max > 1 || r.Min > r.Max {
			fail("tasks.completion_rates.%s must satisfy 0 <= min <= max <= 1", archetype)
		}
	}
	for archetype := range c.Projects.ArchetypeWeights {
		if !isArchetype(archetype) {
			fail("projects.archetype_weights has unknown archetype %q", archetype)
		}
	}

	ratios := map[string]float64{
		"volumes.subtask_ratio":              c.Volumes.SubtaskRatio,
		"users.guest_ratio":                  c.Users.GuestRatio,
		"teams.guest_ratio":                  c.Teams.GuestRatio,
		"projects.has_due_date_ratio":        c.Projects.HasDueDateRatio,
		"projects.archived_ratio":            c.Projects.ArchivedRatio,
		"projects.archive_ceiling":           c.Projects.ArchiveCeiling,
		"projects.brief_ratio":               c.Projects.BriefRatio,
		"tasks.unassigned_ratio":             c.Tasks.UnassignedRatio,
		"tasks.start_date_ratio":             c.Tasks.StartDateRatio,
		"tasks.milestone_ratio":              c.Tasks.MilestoneRatio,
		"tasks.weekend_nudge_ratio":          c.Tasks.WeekendNudgeRatio,
		"tasks.completion_ceiling":           c.Tasks.CompletionCeiling,
		"subtasks.completed_parent_rate":     c.Subtasks.CompletedParentRate,
		"subtasks.open_parent_rate":          c.Subtasks.OpenParentRate,
		"subtasks.fresh_assignee_ratio":      c.Subtasks.FreshAssigneeRatio,
		"subtasks.empty_description_ratio":   c.Subtasks.EmptyDescriptionRatio,
		"temporal.weekend_reject_ratio":      c.Temporal.WeekendRejectRatio,
		"stories.comment_ratio":              c.Stories.CommentRatio,
		"tags.task_ratio":                    c.Tags.TaskRatio,
		"attachments.task_ratio":             c.Attachments.TaskRatio,
		"attachments.brief_ratio":            c.Attachments.BriefRatio,
		"likes.task_ratio":                   c.Likes.TaskRatio,
		"likes.story_ratio":                  c.Likes.StoryRatio,
		"dependencies.task_ratio":            c.Deps.TaskRatio,
		"followers.task_ratio":               c.Followers.TaskRatio,
		"custom_fields.project_ratio":        c.Fields.ProjectRatio,
		"custom_fields.portfolio_ratio":      c.Fields.PortfolioRatio,
		"custom_fields.task_fill_ratio":      c.Fields.TaskFillRatio,
		"custom_fields.portfolio_fill_ratio": c.Fields.PortfolioFillRatio,
		"status_updates.project_ratio":       c.Updates.ProjectRatio,
		"status_updates.portfolio_ratio":     c.Updates.PortfolioRatio,
		"status_updates.goal_ratio":          c.Updates.GoalRatio,
		"portfolio_items.link_ratio":         c.Items.LinkRatio,
		"goals.completion_cap":               c.Goals.CompletionCap,
		"portfolios.senior_fraction":         c.Portfolios.SeniorFraction,
	}
	for name, v := range ratios {
		if v < 0 || v > 1 {
			fail("%s must be within [0, 1]", name)
		}
	}

	ranges := map[string]Range{
		"projects.due_days":                      c.Projects.DueDays,
		"projects.due_reclamp_days":              c.Projects.DueReclampDays,
		"tasks.start_days_before":                c.Tasks.StartDaysBefore,
		"tasks.project_due_slack_days":           c.Tasks.ProjectDueSlack,
		"subtasks.children_per_parent":           c.Subtasks.ChildrenPerParent,
		"subtasks.offset_hours":                  c.Subtasks.OffsetHours,
		"subtasks.repair_hours":                  c.Subtasks.RepairHours,
		"subtasks.due_slack_days":                c.Subtasks.DueSlackDays,
		"custom_fields.project_fields":           c.Fields.ProjectFields,
		"custom_fields.portfolio_fields":         c.Fields.PortfolioFields,
		"portfolio_items.projects_per_portfolio": c.Items.ProjectsPerPortfolio,
		"goals.due_days":                         c.Goals.DueDays,
		"goals.due_reclamp_days":                 c.Goals.DueReclampDays,
		"status_updates.goal_delay_days":         c.Updates.GoalDelayDays,
	}
	for name, r := range ranges {
		if r.Min < 0 || r.Min > r.Max {
			fail("%s must satisfy 0 <= min <= max", name)
		}
	}
	if c.Subtasks.ChildrenPerParent.Min < 1 {
		fail("subtasks.children_per_parent.min must be at least 1")
	}
	if c.Teams.MinPerUser < 0 || c.Teams.MinPerUser > c.Teams.MaxPerUser {
		fail("teams min_per_user/max_per_user must satisfy 0 <= min <= max")
	}
	if c.Tasks.AgeFactorCap < 1 {
		fail("tasks.age_factor_cap must be at least 1")
	}
	if c.Completion.MinDays <= 0 || c.Completion.MinDays > c.Completion.MaxDays {
		fail("completion min_days/max_days must satisfy 0 < min <= max")
	}
	if c.Deps.MaxAttempts < 1 {
		fail("dependencies.max_attempts must be at least 1")
	}
	if c.Users.EmailAttempts < 1 {
		fail("users.email_attempts must be at least 1")
	}
	for _, b := range c.Teams.SizeBoosts {
		if b.Match == "" || b.Factor <= 0 {
			fail("teams.size_boosts entries need a match and a positive factor")
		}
	}
	switch c.Storage.Driver {
	case "", "sqlite", "postgres":
	default:
		fail("storage.driver must be sqlite or postgres")
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		fail("storage.dsn is required for postgres")
	}
	if c.Server.Addr == "" {
		fail("server.addr must not be empty")
	}
	if c.Content.LLMEnabled && (c.Content.OllamaHost == "" || c.Content.Model == "") {
		fail("content.ollama_host and content.model are required when llm_enabled")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func checkWeights(fail func(string, ...any), name string, weights map[string]float64) {
	if len(weights) == 0 {
		fail("%s must not be empty", name)
		return
	}
	total := 0.0
	for k, w := range weights {
		if w < 0 {
			fail("%s.%s must not be negative", name, k)
		}
		total += w
	}
	if total <= 0 {
		fail("%s must have a positive total weight", name)
	}
}

func checkKeys(fail func(string, ...any), name string, weights map[string]float64, allowed ...string) {
	for k := range weights {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			fail("%s has unknown key %q", name, k)
		}
	}
}

func isArchetype(name string) bool {
	for _, a := range Archetypes {
		if a == name {
			return true
		}
	}
	return false
}

// ParseWeekday maps a lowercase English day name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "worksim.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with wsim config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys absent from
// data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `seed: 42
now: "2026-01-06T22:00:00Z"
history_days: 180

temporal:
  business_start_hour: 9
  business_end_hour: 18
  weekday_weights:
    monday: 1.2
    tuesday: 1.3
    wednesday: 1.2
    thursday: 1.0
    friday: 0.8
    saturday: 0.3
    sunday: 0.2
  max_timestamp_attempts: 100
  max_date_attempts: 50
  weekend_reject_ratio: 0.85
  wave_jitter: 0.05
  wave_window_hours: 12

volumes:
  workspaces: 1
  users: 5000
  teams: 120
  portfolios: 50
  goals: 200
  projects: 600
  project_templates: 25
  tasks: 50000
  subtask_ratio: 0.20
  tags: 150

workspaces:
  offset_days: 30

portfolios:
  lead_days: 20
  trail_days: 30
  senior_fraction: 0.33

users:
  status_weights:
    active: 0.90
    away: 0.05
    dnd: 0.03
    deactivated: 0.02
  guest_ratio: 0.05
  email_attempts: 10
  photo_url: "https://ui-avatars.com/api/?name=%s&background=random"

teams:
  min_per_user: 1
  max_per_user: 3
  role_weights:
    admin: 0.15
    member: 0.8075
    commenter: 0.0425
  guest_ratio: 0.05
  setup_days: 25
  size_boosts:
    - {match: Engineering, factor: 2.5}
    - {match: Product, factor: 1.8}
    - {match: Legal, factor: 0.5}
    - {match: Finance, factor: 0.5}

projects:
  archetype_weights:
    sprint: 0.35
    kanban: 0.25
    launch: 0.20
    ongoing: 0.15
    bugs: 0.05
  layout_weights:
    list: 0.50
    board: 0.35
    timeline: 0.15
  status_weights:
    on_track: 0.65
    at_risk: 0.25
    off_track: 0.10
  has_due_date_ratio: 0.75
  due_days: {min: 14, max: 84}
  due_horizon_days: 90
  due_reclamp_days: {min: 7, max: 60}
  archived_ratio: 0.12
  archive_ceiling: 0.12
  brief_ratio: 0.60

tasks:
  unassigned_ratio: 0.15
  due_date_weights:
    within_week: 0.25
    within_month: 0.40
    one_to_three_months: 0.20
    no_due_date: 0.10
    overdue: 0.05
  start_date_ratio: 0.35
  start_days_before: {min: 1, max: 14}
  milestone_ratio: 0.05
  weekend_nudge_ratio: 0.85
  project_due_slack_days: {min: 0, max: 7}
  completion_rates:
    sprint: {min: 0.70, max: 0.85}
    kanban: {min: 0.55, max: 0.70}
    launch: {min: 0.60, max: 0.75}
    ongoing: {min: 0.40, max: 0.55}
    bugs: {min: 0.65, max: 0.80}
  age_factor_cap: 1.5
  completion_ceiling: 0.95
  description_weights:
    empty: 0.20
    short: 0.50
    detailed: 0.30

subtasks:
  children_per_parent: {min: 1, max: 4}
  offset_hours: {min: 1, max: 72}
  repair_hours: {min: 1, max: 24}
  due_slack_days: {min: 0, max: 3}
  completed_parent_rate: 0.90
  open_parent_rate: 0.30
  fresh_assignee_ratio: 0.85
  empty_description_ratio: 0.60
  max_name_length: 60

completion:
  log_normal_mean: 1.5
  log_normal_sigma: 0.8
  min_days: 0.1
  max_days: 30

stories:
  mean: 2.5
  stddev: 1.5
  max: 10
  comment_ratio: 0.80
  spacing_hours: 4
  window_days: 30

tags:
  task_ratio: 0.30
  max_per_task: 3

attachments:
  task_ratio: 0.15
  max_per_task: 3
  brief_ratio: 0.30
  max_per_brief: 2
  window_days: 14
  base_url: "https://storage.example.com/files/"
  type_weights:
    image: 0.40
    pdf: 0.30
    spreadsheet: 0.20
    video: 0.10

likes:
  task_ratio: 0.25
  max_per_task: 5
  story_ratio: 0.15
  max_per_story: 3

dependencies:
  task_ratio: 0.08
  max_attempts: 10
  type_weights:
    finish_to_start: 0.80
    start_to_start: 0.12
    finish_to_finish: 0.08

followers:
  task_ratio: 0.40
  max_per_task: 4

custom_fields:
  project_ratio: 0.60
  project_fields: {min: 2, max: 5}
  portfolio_ratio: 0.40
  portfolio_fields: {min: 1, max: 3}
  task_fill_ratio: 0.70
  portfolio_fill_ratio: 0.60

status_updates:
  project_ratio: 0.70
  max_per_project: 4
  project_spacing_days: 7
  project_jitter_days: 2
  portfolio_ratio: 0.50
  max_per_portfolio: 2
  portfolio_spacing_days: 14
  portfolio_jitter_days: 3
  goal_ratio: 0.40
  goal_delay_days: {min: 14, max: 45}
  status_weights:
    on_track: 0.60
    at_risk: 0.30
    off_track: 0.10

portfolio_items:
  projects_per_portfolio: {min: 3, max: 8}
  link_ratio: 0.10

goals:
  due_days: {min: 60, max: 120}
  due_horizon_days: 90
  due_reclamp_days: {min: 30, max: 90}
  completion_base: 0.10
  completion_slope: 0.50
  completion_cap: 0.60

content:
  llm_enabled: false
  ollama_host: "http://localhost:11434"
  model: "llama3.2:1b"
  timeout: 20s

storage:
  driver: sqlite
  dsn: ""

server:
  addr: "127.0.0.1:8080"
  jwt_secret: ""
`
