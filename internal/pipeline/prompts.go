/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"fmt"
	"strings"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
)

// Prompt budgets. These keep prompt cost and latency bounded regardless of
// ticket volume.
const (
	maxDescriptionChars   = 1500
	maxComments           = 5
	maxCommentChars       = 300
	maxCommentBudgetChars = 800
	maxGroupMemberChars   = 800
	maxFixDescChars       = 1000
	maxGroupRender        = 8
	maxMeetingNotesChars  = 3000
)

func truncate(s string, max int) string {
	if len(s) <= max { return s }
	return s[:max]
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" { return def }
	return s
}

func ticketComments(t domain.Ticket) string {
	if len(t.Comments) == 0 { return "" }
	var lines []string
	total := 0
	for i, c := range t.Comments {
		if i >= maxComments { break }
		body := truncate(c.Body, maxCommentChars)
		if body == "" { continue }
		if total+len(body) > maxCommentBudgetChars { break }
		lines = append(lines, fmt.Sprintf("  - %s: %s", c.Author, body))
		total += len(body)
	}
	if len(lines) == 0 { return "" }
	return "Comments:\n" + strings.Join(lines, "\n")
}

func classifyTicketBlock(t domain.Ticket) string {
	inits := strings.Join(t.InitiativeNames(), ", ")
	if inits == "" { inits = "None" }
	assignee := t.AssigneeLabel()
	if t.Assignee != nil && t.Assignee.Email != "" {
		assignee = fmt.Sprintf("%s (%s)", t.Assignee.Name, t.Assignee.Email)
	}
	block := fmt.Sprintf(
		"ID: %s\nTitle: %s\nAssignee: %s\nInitiative: %s\nProject: %s\nLabels: %s\nDescription: %s",
		t.ID, t.Title, assignee, inits, t.ProjectName(),
		strings.Join(t.Labels, ", "),
		truncate(orDefault(t.Description, "No description"), maxDescriptionChars),
	)
	if c := ticketComments(t); c != "" {
		block += "\n" + c
	}
	return block
}

const classifyPromptTemplate = `You are helping a B2B SaaS company decide which completed tickets belong in customer-facing release notes.

Your objective is to help the team create release notes that get sent to customers. These need to be a customer-facing summary of the key things that have shipped since the last update.

Your main data source is the issue tracker, where the team tracks tickets that engineers work on. There are lots of things in the tracker that are not customer-facing, and you need to help the team filter out the stuff that is not worth mentioning in the release notes.

PRODUCT CONTEXT:
%s

TRACKER CONTEXT:
%s

GENERAL POSITIVE SIGNALS (more likely to include):
- New integrations or capabilities
- Major UI/UX changes that alter workflows
- Performance improvements users will clearly notice
- Bug fixes that affected many customers
- New user-facing features

EXCLUDE - look for these signals:
- Testing/QA: "Test X", "QA findings", "Validate", "Run evaluations"
- Planning: "PRD", "Requirements", "Spec"
- Design-only tickets: Just creating designs, not implementing features
- Investigation: "Investigate", "Debug", "Answer X question", "Follow up on"
- Backend details: "schema", "endpoint", "route", "API", "backend", "migration" (unless user-facing)
- Internal infrastructure: Secret management, provisioning scripts, DNS config, CI/CD
- Parent tickets: Vague titles like "Improve X", "Enhance Y" without concrete deliverables

CATEGORIZATION:
For EACH ticket, decide: feature, fix, or exclude.
- "feature" = NEW capability that didn't exist before. Something you'd promote to customers.
- "fix" = Bug fixes, quality-of-life improvements, polish. Still worth mentioning but not headline news.
- "exclude" = Internal work, not customer-facing

WHAT GOES IN "fix" (NOT "feature"):
- Copy/text changes (e.g., "renamed X to Y", "updated error message")
- Performance/speed improvements (e.g., "faster loading", "pagination")
- Renaming or clarifying existing things
- Bug fixes
- Minor UI polish

WHAT GOES IN "feature":
- Any major NEW capability customers would care about
- New integrations or tools
- Significant UI changes that enable new workflows
- Features you'd announce on your website or in marketing

DECISION FRAMEWORK:
- For features: "Is this a NEW capability that didn't exist before? Would we promote this to customers?"
- For fixes: "Is this an improvement to something that already existed? Copy change? Performance boost? Bug fix?"
- If neither, exclude entirely.

Return a JSON array where each item has:
- "id": the ticket ID
- "title": the ticket title
- "decision": "feature", "fix", or "exclude"
- "reason": 5-10 word explanation

Example:
[
  {"id": "abc", "title": "GitHub integration", "decision": "feature", "reason": "New integration with GitHub"},
  {"id": "def", "title": "Test login flow", "decision": "exclude", "reason": "Internal testing ticket"}
]

Return ONLY the JSON array.

TICKETS:
%s`

func (s *Service) buildClassifyPrompt(tickets []domain.Ticket) string {
	blocks := make([]string, 0, len(tickets))
	for _, t := range tickets {
		blocks = append(blocks, classifyTicketBlock(t))
	}
	return fmt.Sprintf(classifyPromptTemplate,
		s.cfg.ProductContext,
		orDefault(s.cfg.TrackerContext, "None provided."),
		strings.Join(blocks, "\n\n"))
}

const groupPromptTemplate = `You are grouping related tickets into customer-facing features for release notes.

THE KEY QUESTION: "Would a customer think of these as ONE feature or MULTIPLE features?"

GROUP TOGETHER when:
- Same underlying CAPABILITY even if different implementations
  - Example: "Export to PDF" + "Export to CSV" + "Export to Excel" = ONE feature called "Data export"
  - Example: "Pagination" + "Server-side filtering" = ONE feature called "Performance improvements"
- Related frontend + backend work for the same user-facing feature
- Different engineers working on different parts of the same capability
- Tickets that would be described to a customer as ONE improvement
- Multiple tickets that together deliver a single cohesive feature

KEEP SEPARATE when:
- Different capabilities, even if related
  - Example: "GitHub integration" vs "Jira integration" = SEPARATE (different integrations)
  - Example: "Dark mode" vs "Keyboard shortcuts" = SEPARATE (different features)
- Unrelated capabilities even if same project or same engineer
- Features that target different use cases or user workflows

For each group, provide:
- "name": A customer-friendly name that describes the overall capability
- "tickets": Array of ticket IDs that belong to this group
- "summary": 1 sentence describing the customer benefit

Standalone fixes go in "ungrouped_fixes".

Return JSON:
{
  "groups": [
    {"name": "Feature Name", "tickets": ["id1", "id2"], "summary": "Customer benefit"}
  ],
  "ungrouped_fixes": ["id3", "id4"]
}

TICKETS TO GROUP:
%s`

func groupTicketBlock(t domain.Ticket, origin string) string {
	completed := "Unknown"
	if !t.UpdatedAt.IsZero() { completed = t.UpdatedAt.Format("2006-01-02") }
	return fmt.Sprintf(
		"ID: %s\nTitle: %s\nAssignee: %s\nProject: %s\nCompleted: %s\nWas: %s",
		t.ID, t.Title, t.AssigneeLabel(), t.ProjectName(), completed, origin)
}

const draftPromptTemplate = `You are writing customer-facing release notes in a casual, friendly tone.

PRODUCT CONTEXT:
%s

BRAND VOICE:
%s

WRITING GUIDELINES:

1. Each GROUP below represents ONE feature - write a single bullet point for each group.

2. Be CASUAL and FRIENDLY - like you're telling a colleague about improvements:
   - BAD: "The system now automatically syncs with external databases"
   - GOOD: "Database sync - automatically pull data from external databases"

3. MOST IMPORTANT - Explain the "SO WHAT" for customers. Don't just describe what it does, explain WHY it matters and what it ENABLES:
   - BAD: "GitHub integration - now connects to GitHub"
   - GOOD: "GitHub integration - pull in PR history and code changes automatically, so you can see the full context of what shipped without leaving the app"
   - BAD: "Faster loading times"
   - GOOD: "Faster loading - dashboards now load 3x faster, so you can get to your data without waiting"

4. Think about the CUSTOMER WORKFLOW - how does this feature fit into their workflow? What can they do now that they couldn't before?

5. Give SPECIFIC examples when helpful:
   - "Export to PDF, CSV, or Excel"
   - "Reduced load times from 5s to under 1s"

6. Optionally include WHERE to find new features.

7. Keep bullets short but informative - 1-2 sentences for the main point, sub-bullets for extra context.

FORMAT - use Slack markdown (mrkdwn):
- Use *asterisks* for bold (not **double**)
- Use bullet points with proper indentation for sub-bullets

*New features*
• *Feature name* - what it does and why it matters
    ◦ Sub-bullet with helpful context (if it adds value)
• *Another feature* - brief description

*Bug fixes / quality of life*
• *Fix name* - brief context if helpful

KEY RULES:
- Make feature/fix names bold with *asterisks*
- Use • for main bullets and ◦ for sub-bullets (with 4-space indent)
- Sub-bullets are OPTIONAL - use them when they add real value (helpful context, examples, "where to find it")
- Use "Previously X, now Y" framing when it helps explain WHY a change matters
- Focus on what's most impactful for customers to know

---

FEATURE GROUPS (each group = ONE bullet point):
%s

BUG FIX / QOL TICKETS:
%s

Write the release notes. Output the two sections with headers.`

const meetingSummaryPromptTemplate = `Analyze these meeting notes from calls with %s and extract:

1. **Pain points**: What problems or frustrations did they mention?
2. **Feature requests**: What did they ask for or wish existed?
3. **Interests**: What capabilities seemed most interesting/useful to them?
4. **Context**: What's their environment like? (tools they use, team structure, workflows)

Be specific and quote or paraphrase their actual words where possible.

MEETING NOTES:
%s

Provide a structured summary that can be used to tailor release notes for this customer.`

const tailorPromptTemplate = `You are writing customer-specific release notes for %s.

CUSTOMER CONTEXT (from recent calls):
%s

RECENT MEETING NOTES SUMMARY:
%s

FEATURES THAT SHIPPED:
%s

BUG FIXES / QOL:
%s

Write release notes that:

1. **Lead with what matters to them** - If a shipped feature addresses their pain points or requests, highlight it prominently and connect it to their specific use case.

2. **Use their language** - Reference specific things they mentioned (e.g., if they talked about specific features, tools, or workflows, use those terms).

3. **Skip irrelevant items** - Don't mention features that have nothing to do with their needs. It's okay to have a shorter list.

4. **Add "You asked, we built" moments** - If something directly addresses feedback from the meetings, call it out and credit the person who raised it: "Based on [Name]'s feedback about X, we've added Y"

5. **Be conversational** - This is going to a specific customer, so it can feel more personal than generic release notes.

IMPORTANT:
- Address the note to the TEAM (e.g., "Hey [Company] team!" or "Hi team!"), NOT to an individual person
- These notes go to the whole customer team, not just one person you spoke with
- DO reference individuals BY NAME when citing their specific feedback (e.g., "[Name] mentioned wanting X" or "Based on [Name]'s request for Y")

FORMAT:
- Use Slack mrkdwn (*bold*, bullet points)
- Keep it concise but personalized
- Include a brief intro acknowledging the relationship`
