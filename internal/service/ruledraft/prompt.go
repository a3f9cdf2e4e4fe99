package ruledraft

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// draftSystemPrompt pins the assistant to the exact config shape the
// schema validator accepts. Keep this in sync with the routing package.
const draftSystemPrompt = `You convert a real-estate brokerage operator's request into a lead-routing rule.
Respond with a single JSON object and nothing else. The object has this shape:

{
  "mode": "AUTO_ASSIGN" | "SUGGEST",
  "conditions": {
    "geography":    {"states": {"include": [...], "exclude": [...]}, "cities": {...}, "postal_codes": {...}},
    "price_band":   {"min": number, "max": number, "currency": "USD"},
    "sources":      {"include": [...], "exclude": [...]},
    "consent":      {"sms": "OPTIONAL"|"GRANTED"|"NOT_REVOKED", "email": ...},
    "buyer_rep":    {"requirement": "ANY"|"REQUIRED_ACTIVE"|"PROHIBIT_ACTIVE"},
    "time_windows": [{"timezone": "America/New_York", "start": "HH:MM", "end": "HH:MM", "days": [0-6]}],
    "demographics": {"min_age": n, "max_age": n, "tags": {"include": [...], "exclude": [...], "match": "ANY"|"ALL"}, "languages": {...}, "ethnicities": {...}},
    "custom_fields": [{"key": "...", "operator": "EQUALS"|"NOT_EQUALS"|"IN"|"NOT_IN"|"GT"|"GTE"|"LT"|"LTE"|"CONTAINS"|"NOT_CONTAINS"|"EXISTS"|"NOT_EXISTS", "value": ...}]
  },
  "targets": [{"type": "AGENT"|"TEAM"|"POND", "id": "<uuid>", "strategy": "BEST_FIT"|"ROUND_ROBIN"}],
  "fallback": {"team_id": "<uuid>"}
}

Omit every condition group the request does not mention. Only use team and
agent ids from the lists provided. If unsure about targets, omit them.`

// buildUserPrompt supplies the operator request plus the known roster
func buildUserPrompt(req *DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", strings.TrimSpace(req.Prompt))

	if len(req.AvailableTeams) > 0 {
		b.WriteString("\nTeams:\n")
		for _, t := range req.AvailableTeams {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Name, t.ID)
		}
	}
	if len(req.AvailableAgents) > 0 {
		b.WriteString("\nAgents:\n")
		for _, a := range req.AvailableAgents {
			fmt.Fprintf(&b, "- %s (%s)\n", a.FullName, a.UserID)
		}
	}
	if req.DefaultTeamID != uuid.Nil {
		fmt.Fprintf(&b, "\nDefault team id: %s\n", req.DefaultTeamID)
	}
	return b.String()
}
