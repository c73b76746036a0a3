package event

// Queue consumed by the notification service.
const QuoteEventsQueue string = "quote_underwriting_events"

type QuoteEventType string

const (
	EventCaseCreated          QuoteEventType = "underwriting_case_created"
	EventInformationRequested QuoteEventType = "information_requested"
	EventCustomerResponded    QuoteEventType = "customer_responded"
	EventDecisionRecorded     QuoteEventType = "decision_recorded"
	EventPolicyBound          QuoteEventType = "policy_bound"
	EventPolicyCancelled      QuoteEventType = "policy_cancelled"
)

// QuoteEventModel is the payload pushed to the notification service whenever
// the underwriting workflow advances.
type QuoteEventModel struct {
	Type       QuoteEventType `json:"type"`
	QuoteID    string         `json:"quote_id"`
	CaseID     string         `json:"case_id,omitempty"`
	CustomerID string         `json:"customer_id,omitempty"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data,omitempty"`
}
