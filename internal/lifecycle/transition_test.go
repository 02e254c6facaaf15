package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	testCases := []struct {
		input string
		want  State
		ok    bool
	}{
		{input: "new", want: StateNew, ok: true},
		{input: "in_progress", want: StateInProgress, ok: true},
		{input: "repaired", want: StateRepaired, ok: true},
		{input: "scrap", want: StateScrap, ok: true},
		{input: "", ok: false},
		{input: "done", ok: false},
		{input: "New", ok: false},
		{input: "SCRAP", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParseState(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestStateIsTerminal(t *testing.T) {
	assert.False(t, StateNew.IsTerminal())
	assert.False(t, StateInProgress.IsTerminal())
	assert.True(t, StateRepaired.IsTerminal())
	assert.True(t, StateScrap.IsTerminal())
	assert.False(t, State("garbage").IsTerminal())
}

// TestValidate_FullMatrix прогоняет все пары известных состояний: это вся
// таблица переходов машины целиком.
func TestValidate_FullMatrix(t *testing.T) {
	allowed := map[State]map[State]bool{
		StateNew:        {StateNew: true, StateInProgress: true, StateScrap: true},
		StateInProgress: {StateInProgress: true, StateRepaired: true, StateScrap: true},
		StateRepaired:   {},
		StateScrap:      {},
	}

	states := []State{StateNew, StateInProgress, StateRepaired, StateScrap}
	for _, current := range states {
		for _, requested := range states {
			t.Run(string(current)+"->"+string(requested), func(t *testing.T) {
				err := Validate(current, requested)
				if allowed[current][requested] {
					assert.NoError(t, err)
				} else {
					var trErr *TransitionError
					require.ErrorAs(t, err, &trErr)
					assert.NotEmpty(t, trErr.Reason)
				}
			})
		}
	}
}

func TestValidate_Reasons(t *testing.T) {
	testCases := []struct {
		name       string
		current    State
		requested  State
		wantReason string
	}{
		{
			name:       "неизвестное текущее состояние",
			current:    State("draft"),
			requested:  StateInProgress,
			wantReason: `unknown current state "draft"`,
		},
		{
			name:       "неизвестное запрошенное состояние",
			current:    StateNew,
			requested:  State("done"),
			wantReason: `unknown requested state "done"`,
		},
		{
			name:       "терминальное состояние заморожено",
			current:    StateScrap,
			requested:  StateNew,
			wantReason: `request is in terminal state "scrap" and cannot change state`,
		},
		{
			name:       "повтор терминального состояния тоже отклоняется",
			current:    StateRepaired,
			requested:  StateRepaired,
			wantReason: `request is in terminal state "repaired" and cannot change state`,
		},
		{
			name:       "new -> repaired минует in_progress",
			current:    StateNew,
			requested:  StateRepaired,
			wantReason: "request must pass through in_progress before it can be marked repaired",
		},
		{
			name:       "откат из in_progress в new",
			current:    StateInProgress,
			requested:  StateNew,
			wantReason: `transition from "in_progress" to "new" is not allowed`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.current, tc.requested)
			var trErr *TransitionError
			require.ErrorAs(t, err, &trErr)
			assert.Equal(t, tc.wantReason, trErr.Reason)
		})
	}
}

func TestValidate_SelfTransitionIsNoop(t *testing.T) {
	assert.NoError(t, Validate(StateNew, StateNew))
	assert.NoError(t, Validate(StateInProgress, StateInProgress))
}
