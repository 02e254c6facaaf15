// Пакет lifecycle — чистая машина состояний заявки на обслуживание.
// Никакого I/O: вызывающая сторона сохраняет новое состояние только после
// успешной валидации.
package lifecycle

import "fmt"

type State string

const (
	StateNew        State = "new"
	StateInProgress State = "in_progress"
	StateRepaired   State = "repaired"
	StateScrap      State = "scrap"
)

// transitions — единственный источник правды о допустимых переходах.
// Отсутствие ключа в карте означает неизвестное состояние, пустой список —
// терминальное.
var transitions = map[State][]State{
	StateNew:        {StateInProgress, StateScrap},
	StateInProgress: {StateRepaired, StateScrap},
	StateRepaired:   {},
	StateScrap:      {},
}

func ParseState(s string) (State, bool) {
	state := State(s)
	_, ok := transitions[state]
	return state, ok
}

func (s State) IsKnown() bool {
	_, ok := transitions[s]
	return ok
}

func (s State) IsTerminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// TransitionError несёт причину отказа; текст причины — стабильный контракт
// для клиентов.
type TransitionError struct {
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

// Validate проверяет допустимость перехода current -> requested.
// Повторная подача текущего нетерминального состояния разрешена как
// идемпотентный no-op; для терминального — отклоняется.
func Validate(current, requested State) error {
	if !current.IsKnown() {
		return &TransitionError{Reason: fmt.Sprintf("unknown current state %q", string(current))}
	}
	if !requested.IsKnown() {
		return &TransitionError{Reason: fmt.Sprintf("unknown requested state %q", string(requested))}
	}

	if current.IsTerminal() {
		return &TransitionError{Reason: fmt.Sprintf("request is in terminal state %q and cannot change state", string(current))}
	}

	if current == requested {
		return nil
	}

	// Самая частая ошибка оператора выделена отдельной причиной.
	if current == StateNew && requested == StateRepaired {
		return &TransitionError{Reason: "request must pass through in_progress before it can be marked repaired"}
	}

	for _, target := range transitions[current] {
		if target == requested {
			return nil
		}
	}

	return &TransitionError{Reason: fmt.Sprintf("transition from %q to %q is not allowed", string(current), string(requested))}
}
