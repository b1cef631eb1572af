package state

// Subscription owns the cancel funcs of one logical registration.
// Replacing it releases the previous registrations first, so at most one
// set is live at any time. The zero value is ready to use.
//
// Subscription is NOT thread-safe. It must only be used from the UI thread.
type Subscription struct {
	cancels []func()
}

// Replace cancels the current registrations and takes ownership of cancels.
func (s *Subscription) Replace(cancels ...func()) {
	s.Cancel()
	for _, c := range cancels {
		if c != nil {
			s.cancels = append(s.cancels, c)
		}
	}
}

// Cancel releases all owned registrations.
func (s *Subscription) Cancel() {
	cancels := s.cancels
	s.cancels = nil
	for _, c := range cancels {
		c()
	}
}

// Active reports whether any registration is live.
func (s *Subscription) Active() bool {
	return len(s.cancels) > 0
}

// SubscribeAll subscribes handler to every source and returns their cancel funcs.
func SubscribeAll(handler func(), sources ...Subscribable) []func() {
	cancels := make([]func(), 0, len(sources))
	for _, src := range sources {
		if src == nil {
			continue
		}
		cancels = append(cancels, src.Subscribe(handler))
	}
	return cancels
}
