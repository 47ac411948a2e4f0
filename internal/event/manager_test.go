package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchReachesSubscribersOfType(t *testing.T) {
	m := NewManager()
	var got []Event

	m.Subscribe(TypeBlocksMutated, func(e Event) bool {
		got = append(got, e)
		return false
	})
	m.Subscribe(TypeKeyPressed, func(e Event) bool {
		t.Fatalf("unexpected key event")
		return false
	})

	m.Dispatch(TypeBlocksMutated, BlocksMutatedData{Op: "insert", Index: 2})

	if assert.Len(t, got, 1) {
		assert.Equal(t, TypeBlocksMutated, got[0].Type)
		assert.Equal(t, BlocksMutatedData{Op: "insert", Index: 2}, got[0].Data)
	}
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager()
	calls := 0
	id := m.Subscribe(TypeHostDestroyed, func(Event) bool { calls++; return false })
	m.Subscribe(TypeHostDestroyed, func(Event) bool { calls += 10; return false })

	m.Dispatch(TypeHostDestroyed, HostDestroyedData{})
	m.Unsubscribe(id)
	m.Unsubscribe(id)
	m.Dispatch(TypeHostDestroyed, HostDestroyedData{})

	assert.Equal(t, 21, calls)
	assert.Equal(t, 1, m.HandlerCount(TypeHostDestroyed))
}

func TestHandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	m := NewManager()
	var id SubscriptionID
	calls := 0
	id = m.Subscribe(TypeReadOnlyChanged, func(Event) bool {
		calls++
		m.Unsubscribe(id)
		return true
	})

	m.Dispatch(TypeReadOnlyChanged, ReadOnlyChangedData{Enabled: true})
	m.Dispatch(TypeReadOnlyChanged, ReadOnlyChangedData{Enabled: false})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, m.HandlerCount(TypeReadOnlyChanged))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "history-updated", TypeHistoryUpdated.String())
	assert.Equal(t, "unknown", Type(99).String())
}
