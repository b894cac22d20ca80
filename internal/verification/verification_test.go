package verification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/verification"
)

func intPtr(v int) *int { return &v }

func TestEligibility(t *testing.T) {
	tests := []struct {
		name          string
		ease          float64
		reps          int
		wantEvaluate  bool
		wantTeachBack bool
	}{
		{name: "never reviewed", ease: 2.8, reps: 0},
		{name: "strong", ease: 2.5, reps: 3, wantEvaluate: true, wantTeachBack: true},
		{name: "teach-back only", ease: 2.3, reps: 1, wantTeachBack: true},
		{name: "weak", ease: 2.29, reps: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := models.RetentionCard{EaseFactor: tt.ease, Repetitions: tt.reps}
			assert.Equal(t, tt.wantEvaluate, verification.CanEvaluate(card))
			assert.Equal(t, tt.wantTeachBack, verification.CanTeachBack(card))
		})
	}
}

func TestCheck(t *testing.T) {
	e := verification.Check("t1", nil)
	assert.False(t, e.CanEvaluate)
	assert.False(t, e.CanTeachBack)
	assert.Equal(t, 1, e.DifficultyRung)

	e = verification.Check("t1", &models.RetentionCard{EaseFactor: 2.7, Repetitions: 2, EvaluateDifficultyRung: intPtr(9)})
	assert.True(t, e.CanEvaluate)
	assert.Equal(t, 4, e.DifficultyRung)
}

func TestEvaluateQuality(t *testing.T) {
	tests := []struct {
		passed bool
		raw    int
		want   int
	}{
		{passed: true, raw: 0, want: 3},
		{passed: true, raw: 4, want: 4},
		{passed: true, raw: 9, want: 5},
		{passed: false, raw: 0, want: 2},
		{passed: false, raw: 1, want: 2},
		{passed: false, raw: 2, want: 3},
		{passed: false, raw: 5, want: 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, verification.EvaluateQuality(tt.passed, tt.raw), "passed=%v raw=%d", tt.passed, tt.raw)
	}
}

func TestTeachBackQuality(t *testing.T) {
	// 4*0.5 + 3*0.3 + 2*0.2 = 3.3
	assert.Equal(t, 3, verification.TeachBackQuality(verification.TeachBackAssessment{Accuracy: 4, Completeness: 3, Clarity: 2}))
	// 5*0.5 + 4*0.3 + 4*0.2 = 4.5 rounds up
	assert.Equal(t, 5, verification.TeachBackQuality(verification.TeachBackAssessment{Accuracy: 5, Completeness: 4, Clarity: 4}))
	assert.Equal(t, 0, verification.TeachBackQuality(verification.TeachBackAssessment{}))
}

func TestParseEvaluateAssessment(t *testing.T) {
	text := "Nice work spotting that.\n```json\n{\"challengePassed\": true, \"flawIdentified\": \"off-by-one\", \"quality\": 4}\n```"

	a := verification.ParseEvaluateAssessment(text)
	require.NotNil(t, a)
	assert.True(t, a.ChallengePassed)
	assert.Equal(t, "off-by-one", a.FlawIdentified)
	assert.Equal(t, 4, a.Quality)
}

func TestParseEvaluateAssessment_ClampsQuality(t *testing.T) {
	a := verification.ParseEvaluateAssessment(`{"challengePassed": false, "quality": 11}`)
	require.NotNil(t, a)
	assert.Equal(t, 5, a.Quality)

	// Beyond the int64 range.
	a = verification.ParseEvaluateAssessment(`{"challengePassed": true, "quality": 1e20}`)
	require.NotNil(t, a)
	assert.Equal(t, 5, a.Quality)
	assert.Equal(t, 5, verification.EvaluateQuality(a.ChallengePassed, a.Quality))

	a = verification.ParseEvaluateAssessment(`{"challengePassed": true, "quality": -1e20}`)
	require.NotNil(t, a)
	assert.Equal(t, 0, a.Quality)
}

func TestParseEvaluateAssessment_Malformed(t *testing.T) {
	for _, text := range []string{
		"",
		"no json here",
		`{"challengePassed": true, "quality": 4`,
		`{"quality": 4}`,
		`{"challengePassed": "yes", "quality": 4}`,
		`{"challengePassed": null}`,
	} {
		assert.Nil(t, verification.ParseEvaluateAssessment(text), "text %q", text)
	}
}

func TestParseEvaluateAssessment_IgnoresMistypedFlaw(t *testing.T) {
	a := verification.ParseEvaluateAssessment(`{"challengePassed": true, "quality": 4, "flawIdentified": ["loop", "bound"]}`)
	require.NotNil(t, a)
	assert.Empty(t, a.FlawIdentified)
	assert.Equal(t, 4, a.Quality)
}

func TestParseEvaluateAssessment_SkipsUnrelatedObjects(t *testing.T) {
	text := `Context {"hint": "look at the loop"} and verdict {"challengePassed": false, "quality": 1, "note": "a } in a string"}`

	a := verification.ParseEvaluateAssessment(text)
	require.NotNil(t, a)
	assert.False(t, a.ChallengePassed)
	assert.Equal(t, 1, a.Quality)
}

func TestParseTeachBackAssessment(t *testing.T) {
	text := `Here is my assessment: {"completeness": 4, "accuracy": 2, "clarity": 5, "overallQuality": 3, "weakestArea": "accuracy", "gapIdentified": "confuses mitosis with meiosis"}`

	a := verification.ParseTeachBackAssessment(text)
	require.NotNil(t, a)
	assert.Equal(t, 4.0, a.Completeness)
	assert.Equal(t, 2.0, a.Accuracy)
	assert.Equal(t, verification.AreaAccuracy, a.WeakestArea)
	require.NotNil(t, a.GapIdentified)
	assert.Equal(t, "confuses mitosis with meiosis", *a.GapIdentified)
}

func TestParseTeachBackAssessment_DefaultsAndClamps(t *testing.T) {
	a := verification.ParseTeachBackAssessment(`{"completeness": 9, "accuracy": -2, "gapIdentified": null}`)
	require.NotNil(t, a)
	assert.Equal(t, 5.0, a.Completeness)
	assert.Equal(t, 0.0, a.Accuracy)
	assert.Equal(t, 3.0, a.Clarity)
	assert.Equal(t, 3.0, a.OverallQuality)
	assert.Nil(t, a.GapIdentified)
	assert.Equal(t, verification.AreaAccuracy, a.WeakestArea)
}

func TestParseTeachBackAssessment_InfersWeakestArea(t *testing.T) {
	tests := []struct {
		name string
		text string
		want verification.Area
	}{
		{
			name: "invalid enum falls back to lowest",
			text: `{"completeness": 2, "accuracy": 4, "clarity": 3, "weakestArea": "style"}`,
			want: verification.AreaCompleteness,
		},
		{
			name: "clarity lowest",
			text: `{"completeness": 4, "accuracy": 4, "clarity": 1}`,
			want: verification.AreaClarity,
		},
		{
			name: "three-way tie prefers accuracy",
			text: `{"completeness": 3, "accuracy": 3, "clarity": 3}`,
			want: verification.AreaAccuracy,
		},
		{
			name: "completeness and clarity tie prefers completeness",
			text: `{"completeness": 1, "accuracy": 4, "clarity": 1}`,
			want: verification.AreaCompleteness,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := verification.ParseTeachBackAssessment(tt.text)
			require.NotNil(t, a)
			assert.Equal(t, tt.want, a.WeakestArea)
		})
	}
}

func TestParseTeachBackAssessment_Malformed(t *testing.T) {
	assert.Nil(t, verification.ParseTeachBackAssessment(`{"accuracy": 4}`))
	assert.Nil(t, verification.ParseTeachBackAssessment(`{"completeness": 4,`))
	assert.Nil(t, verification.ParseTeachBackAssessment("I could not grade this."))
}

func TestLatestAssessment_ScansNewestFirst(t *testing.T) {
	events := []models.Event{
		{Content: "Let me think about that."},
		{Content: `{"challengePassed": true, "quality": 5}`},
		{Content: `{"challengePassed": false, "quality": 0}`},
	}

	a := verification.LatestEvaluateAssessment(events)
	require.NotNil(t, a)
	assert.True(t, a.ChallengePassed)

	assert.Nil(t, verification.LatestTeachBackAssessment(events))
	assert.Nil(t, verification.LatestEvaluateAssessment(nil))
}

func TestEscalate(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		rung     int
		want     verification.Escalation
	}{
		{name: "first strike", failures: 1, rung: 3, want: verification.Escalation{Action: verification.ActionRevealFlaw, NewRung: 3}},
		{name: "second strike lowers", failures: 2, rung: 3, want: verification.Escalation{Action: verification.ActionLowerDifficulty, NewRung: 2}},
		{name: "second strike at floor exits", failures: 2, rung: 1, want: verification.Escalation{Action: verification.ActionExitToStandard, NewRung: 1}},
		{name: "third strike exits", failures: 3, rung: 4, want: verification.Escalation{Action: verification.ActionExitToStandard, NewRung: 1}},
		{name: "many strikes exit", failures: 5, rung: 2, want: verification.Escalation{Action: verification.ActionExitToStandard, NewRung: 1}},
		{name: "out of range rung clamped", failures: 2, rung: 7, want: verification.Escalation{Action: verification.ActionLowerDifficulty, NewRung: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verification.Escalate(tt.failures, tt.rung))
		})
	}
}

func TestAdvanceRung(t *testing.T) {
	assert.Equal(t, 2, verification.AdvanceRung(nil))
	assert.Equal(t, 3, verification.AdvanceRung(intPtr(2)))
	assert.Equal(t, 4, verification.AdvanceRung(intPtr(4)))
	assert.Equal(t, 4, verification.AdvanceRung(intPtr(12)))
}
