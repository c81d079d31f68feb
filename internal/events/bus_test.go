package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitCallsHandlersInOrder(t *testing.T) {
	var b Bus
	var order []int
	b.Subscribe(func() { order = append(order, 1) })
	b.Subscribe(func() { order = append(order, 2) })
	b.Subscribe(func() { order = append(order, 3) })

	b.Emit()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_EmitWithoutSubscribersIsNoop(t *testing.T) {
	var b Bus
	assert.NotPanics(t, b.Emit)
	assert.Zero(t, b.Len())
}

func TestBus_UnsubscribeRemovesOnlyThatRegistration(t *testing.T) {
	var b Bus
	calls := 0
	h := func() { calls++ }

	first := b.Subscribe(h)
	b.Subscribe(h)
	require.Equal(t, 2, b.Len())

	first()
	first()
	require.Equal(t, 1, b.Len())

	b.Emit()
	assert.Equal(t, 1, calls)
}

func TestBus_SubscribeDuringEmitWaitsForNextPass(t *testing.T) {
	var b Bus
	late := 0
	b.Subscribe(func() {
		b.Subscribe(func() { late++ })
	})

	b.Emit()
	assert.Zero(t, late, "handler added mid-emit must not run in the same pass")

	b.Emit()
	assert.Equal(t, 1, late)
}

func TestBus_UnsubscribeDuringEmitDoesNotSkipOthers(t *testing.T) {
	var b Bus
	var order []string
	var unsubSecond func()

	b.Subscribe(func() {
		order = append(order, "first")
		unsubSecond()
	})
	unsubSecond = b.Subscribe(func() { order = append(order, "second") })
	b.Subscribe(func() { order = append(order, "third") })

	b.Emit()
	assert.Equal(t, []string{"first", "second", "third"}, order)

	order = nil
	b.Emit()
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestBus_SelfUnsubscribeRunsOnce(t *testing.T) {
	var b Bus
	calls := 0
	var unsub func()
	unsub = b.Subscribe(func() {
		calls++
		unsub()
	})

	b.Emit()
	b.Emit()
	assert.Equal(t, 1, calls)
}

func TestBus_NilHandlerIgnored(t *testing.T) {
	var b Bus
	unsub := b.Subscribe(nil)
	assert.Zero(t, b.Len())
	assert.NotPanics(t, unsub)
}
