package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-drift/uikit/pkg/scene"
)

// hostDoneMsg finishes the animated host operation with the same id.
type hostDoneMsg struct{ id int }

// transition is the fade in progress, if any.
type transition struct {
	from, to  scene.Controller
	animation scene.Animation
}

// terminalHost is a scene.Host for one terminal screen. Animated
// operations complete through a tea.Tick, so the model keeps rendering
// while they run.
type terminalHost struct {
	root      scene.Controller
	stack     []scene.Controller
	presented []scene.Controller
	active    *transition

	nextID  int
	waiting map[int]func()
	cmds    []tea.Cmd
}

func newTerminalHost() *terminalHost {
	return &terminalHost{waiting: make(map[int]func())}
}

func (h *terminalHost) Install(c scene.Controller) {
	h.root = c
	h.stack = nil
	h.presented = nil
	h.active = nil
}

func (h *terminalHost) Transition(from, to scene.Controller, animation scene.Animation, duration time.Duration, done func()) {
	h.Install(to)
	h.active = &transition{from: from, to: to, animation: animation}
	h.after(true, duration, func() {
		h.active = nil
		if done != nil {
			done()
		}
	})
}

func (h *terminalHost) Push(c scene.Controller, animated bool, done func()) {
	h.stack = append(h.stack, c)
	h.after(animated, navigationDuration, done)
}

func (h *terminalHost) Pop(animated bool, done func()) {
	if n := len(h.stack); n > 0 {
		h.stack = h.stack[:n-1]
	}
	h.after(animated, navigationDuration, done)
}

func (h *terminalHost) PopToRoot(animated bool, done func()) {
	h.stack = nil
	h.after(animated, navigationDuration, done)
}

func (h *terminalHost) Present(c scene.Controller, animated bool, done func()) {
	h.presented = append(h.presented, c)
	h.after(animated, navigationDuration, done)
}

func (h *terminalHost) Dismiss(animated bool, done func()) {
	if n := len(h.presented); n > 0 {
		h.presented = h.presented[:n-1]
	}
	h.after(animated, navigationDuration, done)
}

func (h *terminalHost) DismissRoot(animated bool, done func()) {
	h.presented = nil
	h.after(animated, navigationDuration, done)
}

// top returns the controller on screen.
func (h *terminalHost) top() scene.Controller {
	if n := len(h.presented); n > 0 {
		return h.presented[n-1]
	}
	if n := len(h.stack); n > 0 {
		return h.stack[n-1]
	}
	return h.root
}

// after runs done now, or after d through a tick when animated.
func (h *terminalHost) after(animated bool, d time.Duration, done func()) {
	if !animated || d <= 0 {
		if done != nil {
			done()
		}
		return
	}
	h.nextID++
	id := h.nextID
	h.waiting[id] = done
	h.cmds = append(h.cmds, tea.Tick(d, func(time.Time) tea.Msg { return hostDoneMsg{id: id} }))
}

func (h *terminalHost) complete(id int) {
	done, ok := h.waiting[id]
	if !ok {
		return
	}
	delete(h.waiting, id)
	if done != nil {
		done()
	}
}

// drain returns the ticks scheduled since the last call.
func (h *terminalHost) drain() tea.Cmd {
	cmds := h.cmds
	h.cmds = nil
	return tea.Batch(cmds...)
}

var _ scene.Host = (*terminalHost)(nil)
