package models

// Allowed state transitions for quotes. Every mutating operation validates the
// move against this table before writing, and the write itself is conditional
// on the expected current status.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft:               {QuoteDraft, QuoteCalculated},
	QuoteCalculated:          {QuoteDraft, QuoteCalculated, QuotePendingUnderwriting, QuotePolicied},
	QuotePendingUnderwriting: {QuoteApproved, QuoteRejected},
	QuoteApproved:            {QuotePolicied},
	QuoteRejected:            {},
	QuotePolicied:            {},
}

var caseTransitions = map[CaseStatus][]CaseStatus{
	CasePending:   {CaseInReview, CaseNeedsInfo, CaseApproved, CaseRejected},
	CaseInReview:  {CaseNeedsInfo, CaseApproved, CaseRejected},
	CaseNeedsInfo: {CaseInReview},
	CaseApproved:  {},
	CaseRejected:  {},
}

func CanTransitionQuote(from, to QuoteStatus) bool {
	for _, allowed := range quoteTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func CanTransitionCase(from, to CaseStatus) bool {
	for _, allowed := range caseTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalQuoteStatus reports whether no further transition exists.
func IsTerminalQuoteStatus(s QuoteStatus) bool {
	return len(quoteTransitions[s]) == 0
}

func IsTerminalCaseStatus(s CaseStatus) bool {
	return len(caseTransitions[s]) == 0
}
