package statemachine

import (
	"fmt"
	"strings"

	"food-ordering-api/models"
)

// Actor is the party requesting a transition
type Actor string

const (
	ActorRestaurant Actor = "restaurant"
	ActorCustomer   Actor = "customer"
	ActorAdmin      Actor = "admin"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// lifecycle is the forward path; cancelled is reachable from any non-terminal state
var lifecycle = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusDelivering,
	models.StatusDelivered,
}

var allStatuses = append(append([]models.OrderStatus{}, lifecycle...), models.StatusCancelled)

// validTransitions is the authoritative state machine definition
var validTransitions = buildTransitions()

func buildTransitions() []Transition {
	var ts []Transition
	for i := 0; i < len(lifecycle)-1; i++ {
		from := lifecycle[i]
		// Restaurant advances one step at a time, or cancels
		ts = append(ts,
			Transition{From: from, To: lifecycle[i+1], Actor: ActorRestaurant},
			Transition{From: from, To: models.StatusCancelled, Actor: ActorRestaurant},
		)
		// Admin may force any non-terminal order into any other state
		for _, to := range allStatuses {
			if to != from {
				ts = append(ts, Transition{From: from, To: to, Actor: ActorAdmin})
			}
		}
	}
	// Customer can cancel only before the kitchen starts
	ts = append(ts,
		Transition{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
		Transition{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorCustomer},
	)
	return ts
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsKnown reports whether s is a recognized order status
func IsKnown(s models.OrderStatus) bool {
	for _, k := range allStatuses {
		if k == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// ValidTransitionsFrom returns all valid next states from a given state for an actor
func ValidTransitionsFrom(status models.OrderStatus, actor Actor) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status && t.Actor == actor {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if !IsKnown(to) {
		return fmt.Errorf("unknown status %q", to)
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from, actor))
}

func describeValidFrom(status models.OrderStatus, actor Actor) string {
	nexts := ValidTransitionsFrom(status, actor)
	if len(nexts) == 0 {
		return "none"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the non-admin state machine for documentation
func GetAllTransitions() []Transition {
	var out []Transition
	for _, t := range validTransitions {
		if t.Actor != ActorAdmin {
			out = append(out, t)
		}
	}
	return out
}

// TerminalStates lists states with no outgoing transitions
func TerminalStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, st := range allStatuses {
		if IsTerminal(st) {
			out = append(out, st)
		}
	}
	return out
}
