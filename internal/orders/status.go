package orders

import (
	"strings"

	"github.com/sheon-shop/storefront/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

var Statuses = []Status{StatusPending, StatusCompleted, StatusCanceled}

// Every status may move to every other one so operators can correct
// mistakes. Only entering completed has a side effect.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusCanceled: true},
	StatusCompleted: {StatusPending: true, StatusCanceled: true},
	StatusCanceled:  {StatusPending: true, StatusCompleted: true},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// OrDefault maps the empty status to pending.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

func CanTransition(from, to Status) bool {
	return validNext[from.OrDefault()][to]
}

// ReconcilesStock reports whether moving from -> to must decrement stock.
func ReconcilesStock(from, to Status) bool {
	return to == StatusCompleted && from.OrDefault() != StatusCompleted
}

// ParseStatus reads an operator-supplied status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", apperr.Validation("unknown status %q", s)
	}
	return st, nil
}
