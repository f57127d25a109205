package statemachine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kllinic/marketplace/internal/domain/statemachine"
)

func TestAppointments_ForwardOnly(t *testing.T) {
	m := statemachine.Appointments()

	t.Run("clinic drives the happy path", func(t *testing.T) {
		assert.NoError(t, m.CanTransition("pending", "confirmed", statemachine.ActorClinic))
		assert.NoError(t, m.CanTransition("confirmed", "completed", statemachine.ActorClinic))
	})

	t.Run("completed appointments cannot be reopened", func(t *testing.T) {
		err := m.CanTransition("completed", "pending", statemachine.ActorClinic)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "terminal state")
	})

	t.Run("patients cannot confirm", func(t *testing.T) {
		assert.Error(t, m.CanTransition("pending", "confirmed", statemachine.ActorPatient))
	})

	t.Run("cancel reachable from pending and confirmed only", func(t *testing.T) {
		assert.NoError(t, m.CanTransition("pending", "cancelled", statemachine.ActorClinic))
		assert.NoError(t, m.CanTransition("confirmed", "cancelled", statemachine.ActorClinic))
		assert.Error(t, m.CanTransition("completed", "cancelled", statemachine.ActorClinic))
	})
}

func TestOrders_MonotonicSequence(t *testing.T) {
	m := statemachine.Orders()

	steps := []struct{ from, to string }{
		{"pending", "confirmed"},
		{"confirmed", "preparing"},
		{"preparing", "out_for_delivery"},
		{"out_for_delivery", "delivered"},
	}
	for _, s := range steps {
		assert.NoError(t, m.CanTransition(s.from, s.to, statemachine.ActorPharmacy), "%s -> %s", s.from, s.to)
	}

	t.Run("no skipping ahead", func(t *testing.T) {
		assert.Error(t, m.CanTransition("pending", "delivered", statemachine.ActorPharmacy))
	})

	t.Run("no moving backwards", func(t *testing.T) {
		assert.Error(t, m.CanTransition("preparing", "confirmed", statemachine.ActorPharmacy))
		assert.Error(t, m.CanTransition("delivered", "pending", statemachine.ActorPharmacy))
	})

	t.Run("patient may cancel only while pending", func(t *testing.T) {
		assert.NoError(t, m.CanTransition("pending", "cancelled", statemachine.ActorPatient))
		assert.Error(t, m.CanTransition("confirmed", "cancelled", statemachine.ActorPatient))
	})

	t.Run("pharmacy may cancel until preparing starts", func(t *testing.T) {
		assert.NoError(t, m.CanTransition("confirmed", "cancelled", statemachine.ActorPharmacy))
		assert.Error(t, m.CanTransition("preparing", "cancelled", statemachine.ActorPharmacy))
	})
}

func TestValidTransitionsFrom(t *testing.T) {
	m := statemachine.Orders()
	assert.ElementsMatch(t, []string{"confirmed", "cancelled"}, m.ValidTransitionsFrom("pending"))
	assert.Empty(t, m.ValidTransitionsFrom("delivered"))
}
