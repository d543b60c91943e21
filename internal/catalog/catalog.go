// Package catalog holds the static dictionaries the generators draw names,
// templates and colors from.
package catalog

import "strings"

// Expand replaces every {key} in tpl with fn(key), scanning left to right so
// callers that draw random values inside fn stay reproducible. Unknown or
// unterminated braces are copied through.
func Expand(tpl string, fn func(key string) string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(tpl, '{')
		if open < 0 {
			b.WriteString(tpl)
			return b.String()
		}
		close := strings.IndexByte(tpl[open:], '}')
		if close < 0 {
			b.WriteString(tpl)
			return b.String()
		}
		b.WriteString(tpl[:open])
		b.WriteString(fn(tpl[open+1 : open+close]))
		tpl = tpl[open+close+1:]
	}
}

var CompanyNames = []string{
	"Nexus", "Quantum", "Vertex", "Prism", "Flux", "Nova", "Orbit", "Pulse",
	"Vector", "Helix", "Cipher", "Atlas", "Zenith", "Forge", "Spark", "Volt",
	"TechForge", "DataFlow", "CloudNine", "CodeSync", "DevStack", "NetPulse",
	"AppSphere", "ByteWave", "PixelCraft", "LogicHub", "CyberLink", "InfoBridge",
	"Synergy", "Catalyst", "Horizon", "Momentum", "Elevate", "Amplify",
	"Converge", "Streamline", "Innovex", "Dynamix", "Optima", "Kinetic",
}

var FirstNamesMale = []string{
	"James", "Michael", "Robert", "David", "William", "John", "Richard", "Joseph",
	"Thomas", "Christopher", "Charles", "Daniel", "Matthew", "Anthony", "Mark",
	"Steven", "Paul", "Andrew", "Joshua", "Kenneth", "Kevin", "Brian", "George",
	"Timothy", "Ronald", "Edward", "Jason", "Jeffrey", "Ryan", "Jacob", "Gary",
	"Nicholas", "Eric", "Jonathan", "Stephen", "Larry", "Justin", "Scott", "Brandon",
	"Benjamin", "Samuel", "Raymond", "Gregory", "Frank", "Alexander", "Patrick",
	"Jack", "Dennis", "Jerry", "Tyler", "Aaron", "Jose", "Adam", "Nathan", "Henry",
	"Zachary", "Douglas", "Peter", "Kyle", "Noah", "Ethan", "Jeremy", "Walter",
	"Christian", "Keith", "Roger", "Terry", "Austin", "Sean", "Gerald", "Carl",
	"Dylan", "Harold", "Jordan", "Jesse", "Bryan", "Lawrence", "Arthur", "Gabriel",
}

var FirstNamesFemale = []string{
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan",
	"Jessica", "Sarah", "Karen", "Lisa", "Nancy", "Betty", "Margaret", "Sandra",
	"Ashley", "Kimberly", "Emily", "Donna", "Michelle", "Dorothy", "Carol",
	"Amanda", "Melissa", "Deborah", "Stephanie", "Rebecca", "Sharon", "Laura",
	"Cynthia", "Kathleen", "Amy", "Angela", "Shirley", "Anna", "Brenda", "Pamela",
	"Emma", "Nicole", "Helen", "Samantha", "Katherine", "Christine", "Debra",
	"Rachel", "Carolyn", "Janet", "Catherine", "Maria", "Heather", "Diane",
	"Ruth", "Julie", "Olivia", "Joyce", "Virginia", "Victoria", "Kelly", "Lauren",
	"Christina", "Joan", "Evelyn", "Judith", "Megan", "Andrea", "Cheryl", "Hannah",
	"Jacqueline", "Martha", "Gloria", "Teresa", "Ann", "Sara", "Madison", "Frances",
	"Kathryn", "Janice", "Jean", "Abigail", "Alice", "Judy", "Sophia", "Grace",
}

var LastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	"Carter", "Roberts", "Gomez", "Phillips", "Evans", "Turner", "Diaz", "Parker",
	"Cruz", "Edwards", "Collins", "Reyes", "Stewart", "Morris", "Morales", "Murphy",
	"Cook", "Rogers", "Gutierrez", "Ortiz", "Morgan", "Cooper", "Peterson", "Bailey",
	"Reed", "Kelly", "Howard", "Ramos", "Kim", "Cox", "Ward", "Richardson", "Watson",
	"Brooks", "Chavez", "Wood", "James", "Bennett", "Gray", "Mendoza", "Ruiz", "Hughes",
}

// NamedText pairs a name with a description or color.
type NamedText struct {
	Name string
	Text string
}

var Teams = []NamedText{
	{"Engineering", "Core engineering team responsible for product development and technical infrastructure."},
	{"Product", "Product management team driving roadmap, prioritization, and stakeholder alignment."},
	{"Design", "User experience and visual design team creating intuitive interfaces."},
	{"Marketing", "Growth and brand team driving awareness, acquisition, and engagement."},
	{"Sales", "Revenue team managing customer relationships and closing deals."},
	{"Customer Success", "Post-sales team ensuring customer satisfaction and retention."},
	{"Operations", "Business operations team optimizing processes and efficiency."},
	{"Human Resources", "People team managing talent acquisition, development, and culture."},
	{"Finance", "Financial planning, accounting, and business intelligence team."},
	{"Legal", "Legal and compliance team managing contracts and regulatory matters."},
	{"Data Science", "Analytics and ML team extracting insights from data."},
	{"Security", "Information security team protecting systems and data."},
	{"DevOps", "Platform engineering team managing infrastructure and deployments."},
	{"QA", "Quality assurance team ensuring product reliability and standards."},
}

var Sections = map[string][]string{
	"sprint":  {"Backlog", "To Do", "In Progress", "In Review", "Done"},
	"kanban":  {"New", "Ready", "In Progress", "Blocked", "Done", "Archived"},
	"launch":  {"Planning", "Design", "Development", "Testing", "Launch Prep", "Launched"},
	"ongoing": {"Not Started", "Active", "On Hold", "Completed"},
	"bugs":    {"New", "Triaged", "In Progress", "Fixed", "Verified", "Closed"},
}

// SectionsFor returns the section template of archetype, defaulting to kanban.
func SectionsFor(archetype string) []string {
	if s, ok := Sections[archetype]; ok {
		return s
	}
	return Sections["kanban"]
}

var ProjectNames = map[string][]string{
	"sprint": {
		"{team} Sprint {number}",
		"Q{quarter} {year} Sprint {number}",
		"{team} - Sprint {number} ({month})",
		"Development Sprint {number}",
		"{team} Iteration {number}",
	},
	"kanban": {
		"{team} Backlog",
		"{team} Tasks",
		"{team} Work Board",
		"Ongoing {team} Work",
		"{team} Kanban",
	},
	"launch": {
		"{product} v{version} Launch",
		"{product} Release {version}",
		"New Feature: {feature}",
		"{product} Q{quarter} Release",
		"{campaign} Campaign Launch",
		"{product} GA Launch",
		"{feature} Rollout",
	},
	"ongoing": {
		"{team} Maintenance",
		"Weekly {team} Tasks",
		"{team} Operations",
		"Recurring {team} Work",
		"{team} Support Tickets",
	},
	"bugs": {
		"{product} Bug Tracker",
		"{team} Issue Triage",
		"{product} Defects",
		"Bug Fixes - {month} {year}",
		"{product} Hotfixes",
	},
}

var Products = []string{
	"Dashboard", "Analytics", "Platform", "API", "Mobile App", "Web App",
	"Integration Hub", "Data Pipeline", "Auth System", "Messaging", "Payments",
	"Search", "Recommendations", "Notifications", "Reports", "Admin Panel",
}

var Features = []string{
	"Dark Mode", "SSO Integration", "Advanced Search", "Real-time Sync",
	"Export to PDF", "Custom Dashboards", "API v2", "Mobile Push",
	"Batch Operations", "Audit Logs", "Role-based Access", "Webhooks",
	"Custom Reports", "Data Visualization", "Workflow Automation",
}

var Campaigns = []string{
	"Summer Sale", "Product Launch", "Brand Refresh", "Holiday Special",
	"Back to School", "Year End", "New Year", "Black Friday", "Spring Promo",
}

// TaskNames is keyed by archetype then category.
var TaskNames = map[string]map[string][]string{
	"sprint": {
		"engineering": {
			"[{component}] Implement {action}",
			"[{component}] Fix {issue}",
			"[{component}] Add {feature}",
			"[{component}] Refactor {target}",
			"[{component}] Update {target} to {action}",
			"[API] Add endpoint for {feature}",
			"[DB] Optimize {target} queries",
			"[UI] Create {component} component",
			"[Tests] Add unit tests for {component}",
			"[Docs] Update {component} documentation",
			"Spike: Research {topic}",
			"Tech debt: {issue}",
		},
		"design": {
			"Design {component} mockups",
			"Create {component} wireframes",
			"Update {component} styles",
			"Design {feature} flow",
			"Create icons for {component}",
			"Review {component} UX",
		},
		"product": {
			"Write PRD for {feature}",
			"Define requirements for {component}",
			"User research: {topic}",
			"Prioritize {component} backlog",
			"Create user stories for {feature}",
		},
	},
	"kanban": {
		"general": {
			"Review {item}",
			"Update {item}",
			"Complete {action} for {target}",
			"Follow up on {item}",
			"Schedule {meeting}",
			"Prepare {deliverable}",
			"Send {deliverable} to {stakeholder}",
		},
	},
	"launch": {
		"general": {
			"Create launch checklist",
			"Prepare press release",
			"Update marketing website",
			"Create demo video",
			"Write release notes",
			"Coordinate with {team}",
			"Final QA pass",
			"Update documentation",
			"Prepare support FAQs",
			"Schedule announcement",
			"Create social media posts",
			"Update changelog",
		},
	},
	"ongoing": {
		"general": {
			"Weekly sync with {stakeholder}",
			"Monthly {report} report",
			"Review {metric} metrics",
			"Update {document}",
			"Process {item} requests",
			"Respond to {channel} inquiries",
		},
	},
	"bugs": {
		"general": {
			"[BUG] {component} - {symptom}",
			"[CRITICAL] {issue} in {component}",
			"[REGRESSION] {feature} broken after {change}",
			"Fix {issue} on {platform}",
			"Investigate {symptom} reports",
			"[P{priority}] {issue}",
		},
	},
}

// TaskNameTemplates returns the templates for archetype and category, falling
// back to the archetype's general list and then to kanban.
func TaskNameTemplates(archetype, category string) []string {
	byCategory, ok := TaskNames[archetype]
	if !ok {
		byCategory = TaskNames["kanban"]
	}
	if t := byCategory[category]; len(t) > 0 {
		return t
	}
	if t := byCategory["general"]; len(t) > 0 {
		return t
	}
	return TaskNames["kanban"]["general"]
}

// Vocabulary feeds the task name placeholders.
var Vocabulary = map[string][]string{
	"component": {
		"Auth", "Dashboard", "API", "Database", "Frontend", "Backend", "Mobile",
		"Search", "Notifications", "Settings", "Profile", "Admin", "Reports",
		"Payments", "Analytics", "Integration", "Cache", "Queue", "Logger",
	},
	"action": {
		"add validation", "improve performance", "handle edge cases",
		"add error handling", "implement caching", "add logging",
		"update dependencies", "fix memory leak", "improve security",
		"add rate limiting", "implement retry logic", "add monitoring",
	},
	"issue": {
		"null pointer exception", "memory leak", "race condition",
		"timeout errors", "validation bypass", "incorrect calculation",
		"missing error handling", "slow query", "broken layout",
		"incorrect data", "session expiry", "permission denied",
	},
	"symptom": {
		"crashes on load", "returns incorrect data", "times out",
		"shows blank screen", "fails silently", "throws error",
		"performs slowly", "loses data", "displays wrong values",
	},
	"target": {
		"user model", "payment flow", "search index", "cache layer",
		"API response", "database schema", "authentication flow",
		"notification system", "file upload", "export function",
	},
	"topic": {
		"new authentication methods", "caching strategies", "database scaling",
		"API versioning", "frontend frameworks", "deployment options",
		"monitoring solutions", "testing strategies", "security best practices",
	},
	"meeting": {
		"sprint planning", "retrospective", "stakeholder review",
		"design review", "architecture discussion", "1:1 meeting",
	},
	"deliverable": {
		"project update", "status report", "analysis document",
		"proposal", "presentation", "summary", "recommendations",
	},
	"stakeholder": {"leadership", "clients", "partners", "the team", "sales", "support"},
	"report":      {"performance", "metrics", "KPI", "status", "progress", "quality"},
	"document":    {"wiki", "runbook", "SOP", "guidelines", "playbook"},
	"channel":     {"email", "Slack", "support ticket", "customer"},
	"item":        {"the proposal", "pending items", "the request", "feedback"},
	"platform":    {"iOS", "Android", "Web", "Desktop"},
	"priority":    {"0", "1", "2", "3"},
	"change":      {"recent update"},
	"team":        {"Engineering", "Product", "Design", "Marketing", "Sales"},
	"feature":     Features,
	"metric":      Metrics,
}

var ShortDescriptions = []string{
	"Quick fix needed for this issue.",
	"Follow up on the previous discussion.",
	"Standard task - check requirements doc for details.",
	"See related items for context.",
	"Coordinate with the team before starting.",
	"Low priority but needs to be done.",
	"Part of the larger initiative.",
	"Customer requested this feature.",
}

var DetailedDescriptions = []string{
	"## Overview\n{overview}\n\n## Requirements\n- {requirement}\n- {requirement}\n- {requirement}\n\n## Acceptance Criteria\n- [ ] {criteria}\n- [ ] {criteria}\n- [ ] {criteria}",
	"### Context\n{overview}\n\n### What needs to be done\n1. Review requirements and dependencies\n2. Implement the changes\n3. Test and document\n\n### Notes\nPlease reach out if you have any questions.",
	"**Background:** {overview}\n\n**Task:** Complete the implementation as specified.\n\n**Dependencies:**\n- Dependent on API changes\n- Needs design review\n\n**Timeline:** Target completion within this sprint",
}

var DescriptionSnippets = map[string][]string{
	"overview": {
		"This task addresses a recurring customer pain point.",
		"Part of our Q1 initiative to improve system reliability.",
		"Following up on feedback from the recent user research.",
		"Technical debt that's been accumulating for several sprints.",
		"Required for the upcoming product launch.",
	},
	"requirement": {
		"Must be backwards compatible",
		"Should handle edge cases gracefully",
		"Performance should not degrade",
		"Must pass all existing tests",
		"Should follow current design patterns",
		"Documentation must be updated",
		"Needs code review before merge",
		"Must support mobile and desktop",
		"Should be feature flagged initially",
	},
	"criteria": {
		"Unit tests added and passing",
		"Integration tests updated",
		"Documentation updated",
		"Code reviewed and approved",
		"Deployed to staging",
		"QA verified",
		"Performance benchmarks met",
		"Accessibility requirements met",
	},
}

var Comments = []string{
	"Looking into this now.",
	"Made some progress. Will update soon.",
	"Blocked on pending review. Need input from {person}.",
	"Done! Ready for review.",
	"Found the issue. Working on a fix.",
	"This is more complex than expected. Might need another sprint.",
	"Tested the fix locally. Looks good.",
	"@{person} can you take a look at this?",
	"Pushed the changes. PR is up for review.",
	"Good catch! Fixed in the latest commit.",
	"Let's discuss this in the next standup.",
	"Moving this to the next sprint due to priority changes.",
	"Updated the approach based on feedback.",
	"This is now unblocked. Resuming work.",
	"Completed the investigation. Findings attached.",
}

var SystemStories = []string{
	"marked this task complete",
	"changed the due date to {date}",
	"assigned this task to {person}",
	"added this task to {project}",
	"moved this task to {section}",
	"changed the priority to {priority}",
	"added {tag} tag",
	"removed from {project}",
	"created a subtask",
	"added an attachment",
}

var StatusUpdates = map[string][]string{
	"on_track": {
		"🟢 **On Track**\n\nGood progress this week. Made good progress on core features.\n\n**Completed:**\n- Finished API integration\n- Updated documentation\n\n**Next week:**\n- Begin testing phase\n- Stakeholder review",
		"✅ Everything is progressing as planned.\n\nThe project is progressing well with no major blockers.\n\nNo blockers at this time.",
	},
	"at_risk": {
		"🟡 **At Risk**\n\nSome scope creep has impacted the timeline.\n\n**Mitigation plan:**\nPrioritizing critical path items.\n\n**Need:** Additional resources for testing.",
		"⚠️ Some delays this week.\n\nThe project is progressing with minor blockers.\n\n**Blockers:**\n- Waiting on design assets\n\n**Action items:**\n- Follow up with design team",
	},
	"off_track": {
		"🔴 **Off Track**\n\nSome scope creep has impacted the timeline.\n\n**Impact:** May delay launch by 1 week.\n\n**Recovery plan:**\nFocusing on critical features first.\n\n**Escalation needed:** Need executive decision on scope.",
		"❌ Significant delays encountered.\n\nThe project has slipped against its plan.\n\n**Root cause:** Unexpected technical complexity.\n\n**Revised timeline:** Revised ETA: end of next week",
	},
}

// Tags pairs each tag name with its color.
var Tags = []NamedText{
	{"P0", "red"}, {"P1", "orange"}, {"P2", "yellow"}, {"P3", "blue"},
	{"Blocked", "red"}, {"In Review", "purple"}, {"Needs Design", "pink"},
	{"Needs PM Input", "teal"}, {"Quick Win", "green"}, {"Tech Debt", "gray"},
	{"Customer Request", "light-blue"}, {"Bug", "red"}, {"Feature", "green"},
	{"Enhancement", "blue"}, {"Documentation", "light-purple"}, {"Security", "dark-red"},
	{"Performance", "orange"}, {"UX", "pink"}, {"Backend", "dark-blue"},
	{"Frontend", "light-green"}, {"Mobile", "teal"}, {"API", "dark-purple"},
	{"Infrastructure", "dark-gray"}, {"Testing", "light-orange"}, {"Research", "light-teal"},
}

var Portfolios = []string{
	"Q{quarter} {year} Initiatives",
	"{year} Strategic Projects",
	"{team} Portfolio",
	"Product Roadmap {year}",
	"Engineering Programs",
}

var Goals = []string{
	"Increase {metric} by {percent}%",
	"Launch {product} by {date}",
	"Reduce {metric} to under {number}",
	"Achieve {number} {metric}",
	"Improve {metric} score to {number}",
	"Complete {initiative} rollout",
	"Migrate to {platform}",
	"Establish {capability}",
}

var Metrics = []string{
	"user retention", "customer satisfaction", "NPS", "response time",
	"conversion rate", "page load time", "uptime", "active users",
	"revenue", "bug count", "test coverage", "deployment frequency",
}

var Initiatives = []string{"SSO", "Data Platform", "Design System", "Self-Serve Billing", "Observability"}

var GoalPlatforms = []string{"Kubernetes", "the new billing stack", "GraphQL", "a monorepo", "cloud-native CI"}

var Capabilities = []string{"an on-call rotation", "a design review cadence", "quarterly planning", "an incident review process"}

var Colors = []string{
	"dark-pink", "dark-green", "dark-blue", "dark-red", "dark-teal",
	"dark-brown", "dark-orange", "dark-purple", "dark-warm-gray",
	"light-pink", "light-green", "light-blue", "light-red", "light-teal",
	"light-brown", "light-orange", "light-purple", "light-warm-gray",
}

// AttachmentNames is keyed by resource type.
var AttachmentNames = map[string][]string{
	"image":       {"screenshot_{id}.png", "mockup_{id}.png", "diagram_{id}.png", "design_{id}.jpg", "photo_{id}.jpg"},
	"pdf":         {"document_{id}.pdf", "report_{id}.pdf", "spec_{id}.pdf", "proposal_{id}.pdf"},
	"spreadsheet": {"data_{id}.xlsx", "analysis_{id}.xlsx", "tracker_{id}.xlsx", "budget_{id}.xlsx"},
	"video":       {"recording_{id}.mp4", "demo_{id}.mp4", "walkthrough_{id}.mp4"},
}

var Briefs = []string{
	"<h1>{project_name}</h1>\n<h2>Overview</h2>\n<p>This project aims to deliver key improvements for the {team} team.</p>\n\n<h2>Goals</h2>\n<ul>\n<li>Improve efficiency by 20%</li>\n<li>Reduce manual work</li>\n<li>Enhance user experience</li>\n</ul>\n\n<h2>Timeline</h2>\n<p>Start: {start_date}<br>Target Completion: TBD</p>\n\n<h2>Team</h2>\n<p>Owner: {owner}<br>Contributors: {team} team members</p>\n",
	"<h1>Project Brief: {project_name}</h1>\n<h2>Problem Statement</h2>\n<p>Current processes need optimization for better {team_lower} outcomes.</p>\n\n<h2>Proposed Solution</h2>\n<p>Implementing new workflows and tools to streamline {team_lower} operations.</p>\n\n<h2>Success Metrics</h2>\n<ul>\n<li>Time to completion reduced by 30%</li>\n<li>Team satisfaction score above 8/10</li>\n</ul>\n\n<h2>Stakeholders</h2>\n<p>{owner}, {team} leads</p>\n",
}

var ProjectTemplates = []string{
	"Sprint Template",
	"Bug Tracking Template",
	"Product Launch Template",
	"Marketing Campaign Template",
	"Onboarding Template",
	"Weekly Standup Template",
	"Quarterly Planning Template",
	"Customer Feedback Template",
}

// FieldTemplate describes one custom field definition and its enum options.
type FieldTemplate struct {
	Name    string
	Subtype string
	Options []NamedText
}

var CustomFields = []FieldTemplate{
	{Name: "Priority", Subtype: "enum", Options: []NamedText{
		{"P0 - Critical", "red"}, {"P1 - High", "orange"}, {"P2 - Medium", "yellow"}, {"P3 - Low", "blue"},
	}},
	{Name: "Story Points", Subtype: "number"},
	{Name: "Sprint", Subtype: "enum", Options: []NamedText{
		{"Sprint 1", "blue"}, {"Sprint 2", "green"}, {"Sprint 3", "purple"}, {"Sprint 4", "teal"},
	}},
	{Name: "Status", Subtype: "enum", Options: []NamedText{
		{"Not Started", "gray"}, {"In Progress", "blue"}, {"Blocked", "red"}, {"Complete", "green"},
	}},
	{Name: "Estimated Hours", Subtype: "number"},
	{Name: "Actual Hours", Subtype: "number"},
	{Name: "Notes", Subtype: "text"},
	{Name: "Review Status", Subtype: "enum", Options: []NamedText{
		{"Pending Review", "yellow"}, {"Approved", "green"}, {"Needs Revision", "red"},
	}},
}

var FieldNotes = []string{
	"See attached spec",
	"Discussed in standup",
	"Pending stakeholder input",
	"Blocked on upstream work",
	"Ready for handoff",
}

var StoryPoints = []float64{1, 2, 3, 5, 8, 13}

// Strategies documents how each table is produced; it feeds the provenance log.
var Strategies = map[string]string{
	"workspaces":                      "Startup-style company names, synthetic timestamps",
	"users":                           "Census-weighted name lists, weighted status",
	"workspace_memberships":           "Derived from user-workspace relationships",
	"teams":                           "Standard organizational structure names",
	"team_memberships":                "Cross-functional distribution, size-balanced",
	"portfolios":                      "OKR naming patterns, senior user ownership",
	"goals":                           "OKR framework templates, age-based completion",
	"projects":                        "Archetype-based templates (sprint/kanban/launch)",
	"project_templates":               "Standard workflow templates",
	"project_briefs":                  "Text synthesis + HTML templates",
	"sections":                        "Archetype-specific section templates",
	"tasks":                           "Issue-tracker name patterns, log-normal completion",
	"task_project_memberships":        "Derived from task-project associations",
	"task_dependencies":               "Temporal constraint validation",
	"task_followers":                  "Random workspace member selection",
	"stories":                         "Synthesized comments + system events",
	"attachments":                     "Realistic file type distribution",
	"tags":                            "Productivity tool patterns (P0-P3, status)",
	"task_tags":                       "Random tag assignment",
	"likes":                           "Random user engagement",
	"custom_field_definitions":        "Standard field types",
	"custom_field_options":            "Enum options for fields",
	"project_custom_field_settings":   "Field-project associations",
	"portfolio_custom_field_settings": "Field-portfolio associations",
	"custom_field_values":             "Type-safe value generation",
	"portfolio_custom_field_values":   "Type-safe portfolio values",
	"status_updates":                  "Synthesized status summaries",
	"portfolio_items":                 "Project grouping relationships",
}
