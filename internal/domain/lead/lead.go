package lead

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective client record as supplied by the surrounding CRM.
// The routing engine treats it as read-only input.
type Lead struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	FullName    string    `json:"full_name"`
	Source      string    `json:"source,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Languages   []string  `json:"languages,omitempty"`
	Ethnicities []string  `json:"ethnicities,omitempty"`

	// BuyerRepStatus is free text from intake forms; use BuyerRepBucket
	// for decisions.
	BuyerRepStatus string `json:"buyer_rep_status,omitempty"`

	Consent      map[Channel]ConsentState `json:"consent,omitempty"`
	CustomFields map[string]interface{}   `json:"custom_fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Channel identifies an outreach channel subject to consent
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// ConsentState is the per-channel opt-in status of a lead
type ConsentState string

const (
	ConsentGranted ConsentState = "GRANTED"
	ConsentRevoked ConsentState = "REVOKED"
	ConsentUnknown ConsentState = "UNKNOWN"
)

// ConsentFor returns the lead's consent state for a channel, defaulting
// to UNKNOWN when the channel was never recorded.
func (l *Lead) ConsentFor(ch Channel) ConsentState {
	if l.Consent == nil {
		return ConsentUnknown
	}
	if state, ok := l.Consent[ch]; ok && state != "" {
		return state
	}
	return ConsentUnknown
}

// BuyerRepBucket is the canonical buyer-representation status derived
// from the free-text field
type BuyerRepBucket string

const (
	BuyerRepActive  BuyerRepBucket = "ACTIVE"
	BuyerRepNone    BuyerRepBucket = "NONE"
	BuyerRepUnknown BuyerRepBucket = "UNKNOWN"
)

// buyerRepLookup maps every accepted literal to its canonical bucket.
// Built once; never mutated after init.
var buyerRepLookup = map[string]BuyerRepBucket{
	"active":     BuyerRepActive,
	"signed":     BuyerRepActive,
	"executed":   BuyerRepActive,
	"exclusive":  BuyerRepActive,
	"under_rep":  BuyerRepActive,
	"none":       BuyerRepNone,
	"no":         BuyerRepNone,
	"unsigned":   BuyerRepNone,
	"inactive":   BuyerRepNone,
	"expired":    BuyerRepNone,
	"terminated": BuyerRepNone,
	"released":   BuyerRepNone,
}

// NormalizeBuyerRep buckets a free-text buyer-representation status.
// Unrecognized or empty values fall into UNKNOWN.
func NormalizeBuyerRep(status string) BuyerRepBucket {
	key := strings.ToLower(strings.TrimSpace(status))
	if key == "" {
		return BuyerRepUnknown
	}
	if bucket, ok := buyerRepLookup[key]; ok {
		return bucket
	}
	return BuyerRepUnknown
}

// BuyerRepBucket returns the canonical bucket for the lead's status
func (l *Lead) BuyerRepBucket() BuyerRepBucket {
	return NormalizeBuyerRep(l.BuyerRepStatus)
}

// Haystack returns the union of the given values with the lead's tags,
// lower-cased and de-duplicated. Tags double as cross-cutting labels so
// language and ethnicity filters also match against them.
func (l *Lead) Haystack(values []string) []string {
	seen := make(map[string]struct{}, len(values)+len(l.Tags))
	out := make([]string, 0, len(values)+len(l.Tags))
	for _, group := range [][]string{values, l.Tags} {
		for _, v := range group {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}
