package models

import (
	"fmt"
	"strings"
)

// State — шестизначный фильтр выборки бронирований. Разбирается на
// границе API; внутрь сервиса неизвестные значения не проходят.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

func (s State) IsValid() bool {
	switch s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}

// ParseState разбирает значение фильтра. Пустая строка означает ALL.
func ParseState(raw string) (State, error) {
	if raw == "" {
		return StateAll, nil
	}
	s := State(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown state: %s", raw)
	}
	return s, nil
}
