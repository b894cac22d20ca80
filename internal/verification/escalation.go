package verification

// Action is what happens after a failed evaluate challenge.
type Action string

const (
	// ActionRevealFlaw explains the planted flaw and lets the learner retry.
	ActionRevealFlaw Action = "reveal_flaw"
	// ActionLowerDifficulty drops the challenge one rung.
	ActionLowerDifficulty Action = "lower_difficulty"
	// ActionExitToStandard abandons the challenge for a standard review.
	ActionExitToStandard Action = "exit_to_standard"
)

const (
	MinRung = 1
	MaxRung = 4
)

// Escalation is the decision for a run of consecutive failures.
type Escalation struct {
	Action  Action `json:"action"`
	NewRung int    `json:"new_rung"`
}

// NormalizeRung clamps a stored rung into 1..4.
func NormalizeRung(rung int) int {
	return clampInt(rung, MinRung, MaxRung)
}

// Escalate applies the three-strike policy. The first strike reveals the
// flaw, the second lowers the rung when there is room, and anything beyond
// that exits to standard review with the rung reset.
func Escalate(consecutiveFailures, currentRung int) Escalation {
	rung := NormalizeRung(currentRung)
	switch {
	case consecutiveFailures <= 1:
		return Escalation{Action: ActionRevealFlaw, NewRung: rung}
	case consecutiveFailures == 2 && rung > MinRung:
		return Escalation{Action: ActionLowerDifficulty, NewRung: rung - 1}
	default:
		return Escalation{Action: ActionExitToStandard, NewRung: MinRung}
	}
}

// AdvanceRung returns the rung after a passed challenge, capped at MaxRung.
// A nil rung is treated as MinRung.
func AdvanceRung(rung *int) int {
	current := MinRung
	if rung != nil {
		current = NormalizeRung(*rung)
	}
	return min(MaxRung, current+1)
}
