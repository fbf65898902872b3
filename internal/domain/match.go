package domain

// Default accept threshold; overridable via configuration, must stay in (0,1).
const DefaultMatchThreshold = 0.65

// HighConfidenceSimilarity is the fixed banding boundary between High and
// Medium confidence. Independent of the configurable accept threshold.
const HighConfidenceSimilarity = 0.8

// Confidence is the coarse tier attached to an accepted match.
type Confidence string

// Confidence tiers.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// Outcome of a verification.
type Outcome string

// Verification outcomes.
const (
	OutcomeMatch   Outcome = "match"
	OutcomeNoMatch Outcome = "no_match"
)

// No-match reasons. "No enrolled identities" must stay distinguishable from a
// rejected candidate.
const (
	ReasonNoEnrolled     = "no enrolled identities"
	ReasonBelowThreshold = "below threshold"
)

// Candidate is the transient result of a single nearest-neighbor query.
type Candidate struct {
	ID         string
	Distance   float64
	Similarity float64
	Metadata   map[string]string
}

// Verdict is the accept/reject decision for one similarity value.
type Verdict struct {
	Outcome    Outcome
	Confidence Confidence // set only on match
}

// Decide applies the accept threshold and the fixed confidence banding.
// Pure and side-effect free.
func Decide(similarity, threshold float64) Verdict {
	if similarity < threshold {
		return Verdict{Outcome: OutcomeNoMatch}
	}
	conf := ConfidenceMedium
	if similarity >= HighConfidenceSimilarity {
		conf = ConfidenceHigh
	}
	return Verdict{Outcome: OutcomeMatch, Confidence: conf}
}

// Decision is the full result of a verification call.
type Decision struct {
	Outcome    Outcome
	Reason     string     // set on no-match
	Similarity float64    // closest candidate's similarity; 0 when the index is empty
	HasScore   bool       // false when no candidate existed
	Confidence Confidence // set on match
	Identity   *Identity  // resolved record, set on match
}
