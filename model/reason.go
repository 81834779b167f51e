package model

// RejectReason is a fixed rejection reason code chosen by a moderator.
type RejectReason string

const (
	ReasonSpam      RejectReason = "spam"
	ReasonOffline   RejectReason = "offline"
	ReasonDesc      RejectReason = "desc"
	ReasonDuplicate RejectReason = "duplicate"
	ReasonOther     RejectReason = "other"
)

var reasonText = map[RejectReason]string{
	ReasonSpam:      "Identified as spam or malicious.",
	ReasonOffline:   "Bot appears to be offline or unresponsive.",
	ReasonDesc:      "Description or features provided are insufficient.",
	ReasonDuplicate: "This bot is already in our library.",
	ReasonOther:     "Does not meet our quality standards.",
}

// RejectReasons lists every reason code in menu order.
func RejectReasons() []RejectReason {
	return []RejectReason{ReasonSpam, ReasonOffline, ReasonDesc, ReasonDuplicate, ReasonOther}
}

// Text returns the canned explanation stored on the submission and sent to
// the submitter. Unknown codes fall back to the generic explanation.
func (r RejectReason) Text() string {
	if t, ok := reasonText[r]; ok {
		return t
	}
	return reasonText[ReasonOther]
}

// ValidReason reports whether s names a known reason code.
func ValidReason(s string) bool {
	_, ok := reasonText[RejectReason(s)]
	return ok
}

// ReasonLabels maps reason codes to button labels for the rejection menu.
func ReasonLabel(r RejectReason) string {
	switch r {
	case ReasonSpam:
		return "Spam"
	case ReasonOffline:
		return "Offline"
	case ReasonDesc:
		return "Insufficient Description"
	case ReasonDuplicate:
		return "Duplicate"
	default:
		return "Other"
	}
}
