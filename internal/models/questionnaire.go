package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type QuestionID string

// Base security questions, always applicable.
const (
	QHasMFA              QuestionID = "has_mfa"
	QHasBackups          QuestionID = "has_backups"
	QPatchingCurrent     QuestionID = "patching_current"
	QEndpointProtection  QuestionID = "endpoint_protection"
	QSecurityTraining    QuestionID = "security_training"
	QAccessOffboarding   QuestionID = "access_offboarding"
	QHadIncidents        QuestionID = "had_incidents"
	QIncidentRemediated  QuestionID = "incident_fully_remediated"
	QIncidentLosses      QuestionID = "incident_caused_losses"
	QUsesRemovableMedia  QuestionID = "uses_removable_media"
	QHasEOLSystems       QuestionID = "has_eol_systems"
	QBusinessContinuity  QuestionID = "business_continuity"
	QPersonalDataVolume  QuestionID = "personal_data_volume"
	QUsesOT              QuestionID = "uses_ot"
	QOTNetworkSegmented  QuestionID = "ot_network_segmented"
	QOTRemoteAccess      QuestionID = "ot_remote_access_controlled"
	QOTSystemsPatched    QuestionID = "ot_systems_patched"
)

// Tier-2 questions, applicable only above 5M annual revenue.
const (
	QHasSIEMMonitoring    QuestionID = "has_siem_monitoring"
	QRegularVulnScans     QuestionID = "regular_vuln_scans"
	QVendorRiskManagement QuestionID = "vendor_risk_management"
	QAccessReviews        QuestionID = "periodic_access_reviews"
	QIncidentResponsePlan QuestionID = "has_incident_response_plan"
)

// Tier-3 questions, applicable only above 10M annual revenue.
const (
	QAnnualPentest     QuestionID = "annual_penetration_test"
	QHasSOC            QuestionID = "has_soc"
	QDRExercises       QuestionID = "dr_exercises_conducted"
	QSecurityStaff     QuestionID = "dedicated_security_staff"
)

// QuestionnaireAnswers maps question IDs to their submitted answer values.
// Stored as JSONB on the quote; immutable once a scoring pass has consumed it.
type QuestionnaireAnswers map[QuestionID]AnswerValue

func (a QuestionnaireAnswers) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *QuestionnaireAnswers) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("QuestionnaireAnswers: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, a)
}

// Question describes one catalog entry: how it is answered, which answer
// reduces risk, which revenue tier it belongs to, and an optional parent gate
// for conditional sub-questions.
type Question struct {
	ID       QuestionID
	Kind     QuestionKind
	Polarity Polarity
	Tier     RevenueTier

	// ParentID/ParentAnswer gate conditional sub-questions: the question only
	// applies when the parent was answered with ParentAnswer.
	ParentID     QuestionID
	ParentAnswer AnswerValue
}

// QuestionCatalog is the immutable scoring configuration. Built once at
// startup and passed explicitly into the scoring engine.
type QuestionCatalog struct {
	Questions []Question
	byID      map[QuestionID]Question
}

func NewQuestionCatalog(questions []Question) *QuestionCatalog {
	byID := make(map[QuestionID]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &QuestionCatalog{Questions: questions, byID: byID}
}

// DefaultQuestionCatalog returns the production cybersecurity questionnaire.
func DefaultQuestionCatalog() *QuestionCatalog {
	return NewQuestionCatalog([]Question{
		// Base tier
		{ID: QHasMFA, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase},
		{ID: QHasBackups, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase},
		{ID: QPatchingCurrent, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase},
		{ID: QEndpointProtection, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase},
		{ID: QSecurityTraining, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase},
		{ID: QAccessOffboarding, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase},
		{ID: QHadIncidents, Kind: QuestionBinary, Polarity: PolarityNegative, Tier: TierBase},
		{ID: QIncidentRemediated, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase, ParentID: QHadIncidents, ParentAnswer: AnswerYes},
		{ID: QIncidentLosses, Kind: QuestionBinary, Polarity: PolarityNegative, Tier: TierBase, ParentID: QHadIncidents, ParentAnswer: AnswerYes},
		{ID: QUsesRemovableMedia, Kind: QuestionBinary, Polarity: PolarityNegative, Tier: TierBase},
		{ID: QHasEOLSystems, Kind: QuestionBinary, Polarity: PolarityNegative, Tier: TierBase},
		{ID: QBusinessContinuity, Kind: QuestionContinuity, Tier: TierBase},
		{ID: QPersonalDataVolume, Kind: QuestionCardinality, Tier: TierBase},
		{ID: QUsesOT, Kind: QuestionBinary, Polarity: PolarityNegative, Tier: TierBase},
		{ID: QOTNetworkSegmented, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase, ParentID: QUsesOT, ParentAnswer: AnswerYes},
		{ID: QOTRemoteAccess, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase, ParentID: QUsesOT, ParentAnswer: AnswerYes},
		{ID: QOTSystemsPatched, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierBase, ParentID: QUsesOT, ParentAnswer: AnswerYes},

		// Over 5M revenue
		{ID: QHasSIEMMonitoring, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver5M},
		{ID: QRegularVulnScans, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver5M},
		{ID: QVendorRiskManagement, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver5M},
		{ID: QAccessReviews, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver5M},
		{ID: QIncidentResponsePlan, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver5M},

		// Over 10M revenue
		{ID: QAnnualPentest, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver10M},
		{ID: QHasSOC, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver10M},
		{ID: QDRExercises, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver10M},
		{ID: QSecurityStaff, Kind: QuestionBinary, Polarity: PolarityPositive, Tier: TierOver10M},
	})
}

// Get returns the catalog entry for a question ID.
func (c *QuestionCatalog) Get(id QuestionID) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// TierApplies reports whether a revenue tier is active for the declared
// annual revenue. Tier bounds are strict: exactly 5M stays on the base tier.
func TierApplies(tier RevenueTier, annualRevenue float64) bool {
	switch tier {
	case TierBase:
		return true
	case TierOver5M:
		return annualRevenue > 5_000_000
	case TierOver10M:
		return annualRevenue > 10_000_000
	default:
		return false
	}
}

// Applies reports whether a question counts for the given answers and revenue:
// its revenue tier must be active and, for conditional sub-questions, the
// parent must carry the gating answer.
func (c *QuestionCatalog) Applies(q Question, answers QuestionnaireAnswers, annualRevenue float64) bool {
	if !TierApplies(q.Tier, annualRevenue) {
		return false
	}
	if q.ParentID != "" {
		return answers[q.ParentID] == q.ParentAnswer
	}
	return true
}

// AllowedAnswers returns the closed answer vocabulary for a question kind.
func AllowedAnswers(kind QuestionKind) []AnswerValue {
	switch kind {
	case QuestionBinary:
		return []AnswerValue{AnswerYes, AnswerNo, AnswerPartial}
	case QuestionContinuity:
		return []AnswerValue{ContinuityFull, ContinuityMostForWeek, ContinuityMostForDay, ContinuityFailsImmediately}
	case QuestionCardinality:
		return []AnswerValue{RecordsUnder10K, Records10KTo100K, RecordsOver100K}
	default:
		return nil
	}
}

// ValidateAnswers rejects unknown questions and answers outside the closed
// vocabulary of the question's kind. Missing answers are allowed here: an
// omission penalizes the score but is not a validation error.
func (c *QuestionCatalog) ValidateAnswers(answers QuestionnaireAnswers) error {
	for id, value := range answers {
		q, ok := c.byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown question %q", ErrInvalidAnswer, id)
		}
		valid := false
		for _, allowed := range AllowedAnswers(q.Kind) {
			if value == allowed {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: question %q does not accept %q", ErrInvalidAnswer, id, value)
		}
	}
	return nil
}
