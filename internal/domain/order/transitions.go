package order

import (
	"fmt"
	"strings"
)

// Policy decides whether an order may move between two statuses.
type Policy interface {
	Allow(from, to Status) error
}

// PermissivePolicy accepts any move between known statuses.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("unknown target %q: %w", to, ErrInvalidTransition)
	}
	return nil
}

type transitionKey struct {
	From Status
	To   Status
}

var strictTransitions = []transitionKey{
	{StatusPending, StatusAssigned},
	{StatusPending, StatusCancelled},
	{StatusAssigned, StatusInTransit},
	{StatusAssigned, StatusCancelled},
	{StatusInTransit, StatusDelivered},
	{StatusInTransit, StatusCancelled},
}

var strictTransitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool, len(strictTransitions))
	for _, t := range strictTransitions {
		m[t] = true
	}
	return m
}()

// StrictPolicy walks pending -> assigned -> in_transit -> delivered, with
// cancellation from any non-terminal status.
type StrictPolicy struct{}

func (StrictPolicy) Allow(from, to Status) error {
	if strictTransitionMap[transitionKey{from, to}] {
		return nil
	}
	return fmt.Errorf("%s -> %s (allowed: %s): %w", from, to, describeNext(from), ErrInvalidTransition)
}

// NextStatuses lists the statuses reachable from s under the strict policy.
func NextStatuses(s Status) []Status {
	var out []Status
	for _, t := range strictTransitions {
		if t.From == s {
			out = append(out, t.To)
		}
	}
	return out
}

func describeNext(s Status) string {
	next := NextStatuses(s)
	if len(next) == 0 {
		return "none, terminal"
	}
	parts := make([]string, len(next))
	for i, n := range next {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

// PolicyByName maps the ORDER_TRANSITIONS setting to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown order transition policy %q", name)
	}
}
