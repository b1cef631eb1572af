package state

import (
	"sync"
	"testing"
)

func TestObservable_SetNotifiesInOrder(t *testing.T) {
	obs := NewObservable(1)
	var got []int
	obs.AddListener(func(v int) { got = append(got, v) })
	obs.AddListener(func(v int) { got = append(got, v*10) })

	obs.Set(2)

	if len(got) != 2 || got[0] != 2 || got[1] != 20 {
		t.Fatalf("unexpected notifications: %v", got)
	}
	if obs.Value() != 2 {
		t.Errorf("Value() = %d, want 2", obs.Value())
	}
}

func TestObservable_Update(t *testing.T) {
	obs := NewObservable([]string{"a"})
	calls := 0
	obs.Subscribe(func() { calls++ })

	obs.Update(func(v []string) []string { return append(v, "b") })

	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}
	if len(obs.Value()) != 2 {
		t.Errorf("expected 2 elements, got %v", obs.Value())
	}
}

func TestObservable_CancelIsIdempotent(t *testing.T) {
	obs := NewObservable(0)
	calls := 0
	cancel := obs.Subscribe(func() { calls++ })
	other := obs.Subscribe(func() {})

	cancel()
	cancel()

	if obs.ListenerCount() != 1 {
		t.Fatalf("expected 1 listener, got %d", obs.ListenerCount())
	}
	obs.Set(5)
	if calls != 0 {
		t.Errorf("cancelled listener was called %d times", calls)
	}
	other()
	if obs.ListenerCount() != 0 {
		t.Errorf("expected 0 listeners, got %d", obs.ListenerCount())
	}
}

func TestObservable_NilHandlers(t *testing.T) {
	obs := NewObservable(0)
	obs.Subscribe(nil)()
	obs.AddListener(nil)()
	if obs.ListenerCount() != 0 {
		t.Errorf("nil handlers should not register, got %d", obs.ListenerCount())
	}
}

func TestObservable_ListenerMayCancelDuringNotify(t *testing.T) {
	obs := NewObservable(0)
	var cancel func()
	calls := 0
	cancel = obs.Subscribe(func() {
		calls++
		cancel()
	})

	obs.Set(1)
	obs.Set(2)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestObservable_ListenerRemovedMidDispatchIsSkipped(t *testing.T) {
	obs := NewObservable(0)
	second := 0
	var cancelSecond func()
	obs.Subscribe(func() { cancelSecond() })
	cancelSecond = obs.Subscribe(func() { second++ })

	obs.Set(1)

	if second != 0 {
		t.Errorf("removed listener ran %d times", second)
	}
}

func TestSubscription_ReplaceKeepsOneRegistration(t *testing.T) {
	obs := NewObservable(0)
	var sub Subscription

	for i := 0; i < 3; i++ {
		sub.Replace(obs.Subscribe(func() {}))
	}

	if obs.ListenerCount() != 1 {
		t.Errorf("expected 1 live listener, got %d", obs.ListenerCount())
	}
	if !sub.Active() {
		t.Error("subscription should be active")
	}

	sub.Cancel()
	if obs.ListenerCount() != 0 {
		t.Errorf("expected 0 listeners after cancel, got %d", obs.ListenerCount())
	}
	if sub.Active() {
		t.Error("subscription should be inactive after cancel")
	}
}

func TestSubscribeAll(t *testing.T) {
	a := NewObservable(1)
	b := NewObservable("x")
	calls := 0

	var sub Subscription
	sub.Replace(SubscribeAll(func() { calls++ }, a, b, nil)...)

	a.Set(2)
	b.Set("y")
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}

	sub.Cancel()
	a.Set(3)
	if calls != 2 {
		t.Errorf("expected no calls after cancel, got %d", calls)
	}
}

func TestObservable_ConcurrentUpdatesAreNotLost(t *testing.T) {
	obs := NewObservable(0)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				obs.Update(func(v int) int { return v + 1 })
			}
		}()
	}
	wg.Wait()

	if got := obs.Value(); got != 4000 {
		t.Errorf("Value() = %d after 4000 increments", got)
	}
}
