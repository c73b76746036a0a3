package models

type QuoteStatus string

const (
	QuoteDraft               QuoteStatus = "draft"
	QuoteCalculated          QuoteStatus = "calculated"
	QuotePendingUnderwriting QuoteStatus = "pending_underwriting"
	QuoteApproved            QuoteStatus = "approved"
	QuoteRejected            QuoteStatus = "rejected"
	QuotePolicied            QuoteStatus = "policied"
)

func IsValidQuoteStatus(status QuoteStatus) bool {
	switch status {
	case QuoteDraft, QuoteCalculated, QuotePendingUnderwriting, QuoteApproved, QuoteRejected, QuotePolicied:
		return true
	default:
		return false
	}
}

type CaseStatus string

const (
	CasePending   CaseStatus = "pending"
	CaseInReview  CaseStatus = "in_review"
	CaseNeedsInfo CaseStatus = "needs_info"
	CaseApproved  CaseStatus = "approved"
	CaseRejected  CaseStatus = "rejected"
)

type CaseDecision string

const (
	DecisionApprove   CaseDecision = "approve"
	DecisionReject    CaseDecision = "reject"
	DecisionNeedsInfo CaseDecision = "needs_info"
)

type RiskGrade string

const (
	GradeA RiskGrade = "A"
	GradeB RiskGrade = "B"
	GradeC RiskGrade = "C"
	GradeD RiskGrade = "D"
	GradeE RiskGrade = "E"
)

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyCancelled PolicyStatus = "cancelled"
	PolicyExpired   PolicyStatus = "expired"
)

type CoverageTier string

const (
	CoverageBasic    CoverageTier = "basic"
	CoverageStandard CoverageTier = "standard"
	CoveragePremium  CoverageTier = "premium"
)

type NoteAuthorRole string

const (
	NoteAuthorUnderwriter NoteAuthorRole = "underwriter"
	NoteAuthorCustomer    NoteAuthorRole = "customer"
	NoteAuthorSystem      NoteAuthorRole = "system"
)

type QuestionKind string

const (
	QuestionBinary      QuestionKind = "binary"
	QuestionContinuity  QuestionKind = "continuity"
	QuestionCardinality QuestionKind = "cardinality"
)

type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

type RevenueTier int

const (
	TierBase RevenueTier = iota
	TierOver5M
	TierOver10M
)

type AnswerValue string

const (
	AnswerYes     AnswerValue = "yes"
	AnswerNo      AnswerValue = "no"
	AnswerPartial AnswerValue = "partial"

	// Business continuity ordinal, best to worst
	ContinuityFull             AnswerValue = "full_continuity"
	ContinuityMostForWeek      AnswerValue = "most_for_a_week"
	ContinuityMostForDay       AnswerValue = "most_for_a_day"
	ContinuityFailsImmediately AnswerValue = "fails_immediately"

	// Bucketed data volume, smallest to largest
	RecordsUnder10K  AnswerValue = "records_lt_10k"
	Records10KTo100K AnswerValue = "records_10k_100k"
	RecordsOver100K  AnswerValue = "records_gt_100k"
)
