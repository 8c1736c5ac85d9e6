package domain

// TransitionAllowed encodes the forward-only lifecycle. Submission is
// handled separately because of its preconditions; staff transitions
// walk the screening, interview and decision stages in order. Terminal
// statuses permit nothing.
func TransitionAllowed(current, target Status) bool {
	switch current {
	case StatusDraft:
		return target == StatusSubmitted
	case StatusSubmitted:
		return target == StatusDocumentScreening
	case StatusDocumentScreening:
		return target == StatusDocumentPassed || target == StatusDocumentFailed
	case StatusDocumentPassed:
		return target == StatusInterviewScheduled
	case StatusInterviewScheduled:
		return target == StatusInterviewCompleted
	case StatusInterviewCompleted:
		return target == StatusFinalPassed || target == StatusFinalFailed
	default:
		return false
	}
}
