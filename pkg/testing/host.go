package testing

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/uikit/pkg/scene"
)

// DefaultNavigationDuration is how long animated push, pop, present, and
// dismiss take on a Host.
const DefaultNavigationDuration = 350 * time.Millisecond

// HostCall records one call a Host received.
type HostCall struct {
	Op         string
	Controller scene.Controller
	Animation  scene.Animation
	Duration   time.Duration
	Animated   bool
}

func (c HostCall) String() string {
	if c.Controller == nil {
		return c.Op
	}
	return fmt.Sprintf("%s(%v)", c.Op, c.Controller)
}

// Host is an in-memory scene.Host. Completions are scheduled on its clock:
// animated work finishes once Advance passes its duration, and unanimated
// work finishes on the next Advance, including Advance(0).
type Host struct {
	clock *FakeClock

	mu        sync.Mutex
	root      scene.Controller
	stack     []scene.Controller
	presented []scene.Controller
	calls     []HostCall
}

var _ scene.Host = (*Host)(nil)

// NewHost creates a Host driven by clock. A nil clock gets a fresh one.
func NewHost(clock *FakeClock) *Host {
	if clock == nil {
		clock = NewFakeClock()
	}
	return &Host{clock: clock}
}

// Clock returns the clock driving completions.
func (h *Host) Clock() *FakeClock {
	return h.clock
}

// Install implements scene.Host.
func (h *Host) Install(c scene.Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "install", Controller: c})
	h.setRootLocked(c)
}

// Transition implements scene.Host. The new root is shown immediately;
// done runs once the clock passes duration.
func (h *Host) Transition(from, to scene.Controller, animation scene.Animation, duration time.Duration, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "transition", Controller: to, Animation: animation, Duration: duration, Animated: true})
	h.setRootLocked(to)
	h.scheduleLocked(duration, done)
}

func (h *Host) setRootLocked(c scene.Controller) {
	h.root = c
	h.stack = nil
	h.presented = nil
}

// Push implements scene.Host.
func (h *Host) Push(c scene.Controller, animated bool, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "push", Controller: c, Animated: animated})
	h.stack = append(h.stack, c)
	h.scheduleLocked(navDuration(animated), done)
}

// Pop implements scene.Host.
func (h *Host) Pop(animated bool, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "pop", Animated: animated})
	if len(h.stack) > 0 {
		h.stack = h.stack[:len(h.stack)-1]
	}
	h.scheduleLocked(navDuration(animated), done)
}

// PopToRoot implements scene.Host.
func (h *Host) PopToRoot(animated bool, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "popToRoot", Animated: animated})
	h.stack = nil
	h.scheduleLocked(navDuration(animated), done)
}

// Present implements scene.Host.
func (h *Host) Present(c scene.Controller, animated bool, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "present", Controller: c, Animated: animated})
	h.presented = append(h.presented, c)
	h.scheduleLocked(navDuration(animated), done)
}

// Dismiss implements scene.Host.
func (h *Host) Dismiss(animated bool, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "dismiss", Animated: animated})
	if len(h.presented) > 0 {
		h.presented = h.presented[:len(h.presented)-1]
	}
	h.scheduleLocked(navDuration(animated), done)
}

// DismissRoot implements scene.Host.
func (h *Host) DismissRoot(animated bool, done func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: "dismissRoot", Animated: animated})
	h.presented = nil
	h.scheduleLocked(navDuration(animated), done)
}

func navDuration(animated bool) time.Duration {
	if animated {
		return DefaultNavigationDuration
	}
	return 0
}

func (h *Host) scheduleLocked(d time.Duration, done func()) {
	h.clock.AfterFunc(d, done)
}

// Advance moves the clock forward by d and runs the completions that come
// due. It returns how many ran.
func (h *Host) Advance(d time.Duration) int {
	return h.clock.Advance(d)
}

// Pending reports how many completions have not run yet.
func (h *Host) Pending() int {
	return h.clock.Pending()
}

// Root returns the installed root controller.
func (h *Host) Root() scene.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.root
}

// Stack returns the controllers pushed over the root, bottom first.
func (h *Host) Stack() []scene.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]scene.Controller(nil), h.stack...)
}

// Presented returns the presented controllers, bottom first.
func (h *Host) Presented() []scene.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]scene.Controller(nil), h.presented...)
}

// Calls returns every call received so far.
func (h *Host) Calls() []HostCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostCall(nil), h.calls...)
}

// CallOps returns the Op of every call received so far.
func (h *Host) CallOps() []string {
	calls := h.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}
