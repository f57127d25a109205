package statemachine

import (
	"fmt"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// Actor identifies who is requesting a status change
type Actor string

const (
	ActorPatient  Actor = "patient"
	ActorClinic   Actor = "clinic"
	ActorPharmacy Actor = "pharmacy"
)

// Transition defines a valid status change and who can perform it
type Transition struct {
	From  string
	To    string
	Actor Actor
}

// appointmentTransitions is the authoritative appointment state machine.
// Status moves forward only; clinics drive every transition.
var appointmentTransitions = []Transition{
	{From: string(entities.AppointmentStatusPending), To: string(entities.AppointmentStatusConfirmed), Actor: ActorClinic},
	{From: string(entities.AppointmentStatusPending), To: string(entities.AppointmentStatusCancelled), Actor: ActorClinic},
	{From: string(entities.AppointmentStatusConfirmed), To: string(entities.AppointmentStatusCompleted), Actor: ActorClinic},
	{From: string(entities.AppointmentStatusConfirmed), To: string(entities.AppointmentStatusCancelled), Actor: ActorClinic},
}

// orderTransitions is the authoritative order state machine. The delivery
// sequence is monotonic; cancellation is only reachable early.
var orderTransitions = []Transition{
	{From: string(entities.OrderStatusPending), To: string(entities.OrderStatusConfirmed), Actor: ActorPharmacy},
	{From: string(entities.OrderStatusPending), To: string(entities.OrderStatusCancelled), Actor: ActorPharmacy},
	{From: string(entities.OrderStatusPending), To: string(entities.OrderStatusCancelled), Actor: ActorPatient},
	{From: string(entities.OrderStatusConfirmed), To: string(entities.OrderStatusPreparing), Actor: ActorPharmacy},
	{From: string(entities.OrderStatusConfirmed), To: string(entities.OrderStatusCancelled), Actor: ActorPharmacy},
	{From: string(entities.OrderStatusPreparing), To: string(entities.OrderStatusOutForDelivery), Actor: ActorPharmacy},
	{From: string(entities.OrderStatusOutForDelivery), To: string(entities.OrderStatusDelivered), Actor: ActorPharmacy},
}

// Machine validates status transitions against a fixed transition table
type Machine struct {
	name        string
	transitions []Transition
	lookup      map[Transition]bool
}

func newMachine(name string, transitions []Transition) *Machine {
	lookup := make(map[Transition]bool, len(transitions))
	for _, t := range transitions {
		lookup[t] = true
	}
	return &Machine{name: name, transitions: transitions, lookup: lookup}
}

// Appointments returns the appointment status machine
func Appointments() *Machine {
	return newMachine("appointment", appointmentTransitions)
}

// Orders returns the medicine-order status machine
func Orders() *Machine {
	return newMachine("order", orderTransitions)
}

// CanTransition checks whether the actor may move from one status to
// another. A disallowed change returns an error naming the valid next
// statuses.
func (m *Machine) CanTransition(from, to string, actor Actor) error {
	if m.lookup[Transition{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf(
		"invalid %s transition: %s -> %s is not allowed for actor %q (valid from %s: %s)",
		m.name, from, to, actor, from, m.describeValidFrom(from),
	)
}

// ValidTransitionsFrom returns all valid next statuses from a given status
func (m *Machine) ValidTransitionsFrom(status string) []string {
	var nexts []string
	seen := map[string]bool{}
	for _, t := range m.transitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

func (m *Machine) describeValidFrom(status string) string {
	nexts := m.ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += s
	}
	return result
}
