package scene

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-drift/uikit/pkg/errors"
	"github.com/go-drift/uikit/pkg/state"
)

// Option configures a MainScene.
type Option func(*MainScene)

// WithLogger routes scene diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *MainScene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTransitionDuration sets the duration of animated root replacements.
func WithTransitionDuration(d time.Duration) Option {
	return func(s *MainScene) {
		if d > 0 {
			s.duration = d
		}
	}
}

// MainScene shows one registered screen at a time as the window root.
//
// MainScene is NOT thread-safe. Call it from the UI thread only.
type MainScene struct {
	host        Host
	screens     map[ScreenType]func() Controller
	current     Controller
	screen      *state.Observable[ScreenType]
	initialized bool
	logger      *slog.Logger
	duration    time.Duration
}

// New creates a scene that will show initial once initialized.
func New(host Host, initial ScreenType, opts ...Option) *MainScene {
	if host == nil {
		panic("scene: New with nil host")
	}
	s := &MainScene{
		host:     host,
		screens:  make(map[ScreenType]func() Controller),
		screen:   state.NewObservable(initial),
		logger:   slog.Default(),
		duration: DefaultTransitionDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWithController creates a scene around a single controller, shown as
// the [Custom] screen.
func NewWithController(host Host, c Controller, opts ...Option) *MainScene {
	s := New(host, Custom, opts...)
	s.screens[Custom] = func() Controller { return c }
	return s
}

// Register sets the factory for screen type t.
func (s *MainScene) Register(t ScreenType, factory func() Controller) *MainScene {
	if factory == nil {
		delete(s.screens, t)
		return s
	}
	s.screens[t] = factory
	return s
}

// Splash sets the factory for the [Splash] screen.
func (s *MainScene) Splash(factory func() Controller) *MainScene { return s.Register(Splash, factory) }

// Login sets the factory for the [Login] screen.
func (s *MainScene) Login(factory func() Controller) *MainScene { return s.Register(Login, factory) }

// Main sets the factory for the [Main] screen.
func (s *MainScene) Main(factory func() Controller) *MainScene { return s.Register(Main, factory) }

// Onboarding sets the factory for the [Onboarding] screen.
func (s *MainScene) Onboarding(factory func() Controller) *MainScene {
	return s.Register(Onboarding, factory)
}

// Initialize builds the initial screen and installs it in the host.
// Calling it again does nothing.
func (s *MainScene) Initialize() {
	if s.initialized {
		return
	}
	s.initialized = true
	s.current = s.controller(s.screen.Value())
	s.host.Install(s.current)
}

// Current returns the root controller.
func (s *MainScene) Current() Controller {
	return s.current
}

// CurrentScreen returns the observable screen type of the root.
func (s *MainScene) CurrentScreen() *state.Observable[ScreenType] {
	return s.screen
}

func (s *MainScene) controller(t ScreenType) Controller {
	if factory, ok := s.screens[t]; ok {
		return factory()
	}
	s.logger.Warn("scene screen not registered", "screen", string(t))
	return NotImplemented{Screen: t}
}

// Switch replaces the root with a fresh controller for screen type to.
// before runs with the new controller ahead of the replacement; completion
// runs after it. Switching to the screen already shown is ignored and
// completion does not run.
func (s *MainScene) Switch(to ScreenType, animation Animation, before func(Controller), completion func()) {
	if s.screen.Value() == to {
		s.logger.Warn("scene already showing screen", "screen", string(to))
		return
	}
	s.replace(s.controller(to), to, animation, before, completion)
}

// SwitchTo replaces the root with c, recorded as screen type as. Unlike
// Switch it always runs, even when as is already shown.
func (s *MainScene) SwitchTo(c Controller, as ScreenType, animation Animation, before func(Controller), completion func()) {
	s.replace(c, as, animation, before, completion)
}

func (s *MainScene) replace(next Controller, as ScreenType, animation Animation, before func(Controller), completion func()) {
	s.screen.Set(as)
	if before != nil {
		before(next)
	}
	done := func() {
		if completion != nil {
			completion()
		}
	}

	if !s.initialized {
		errors.Report(&errors.UIError{
			Op:   "scene.Switch",
			Kind: errors.KindLifecycle,
			Err:  fmt.Errorf("switch to %s before Initialize", as),
		})
		s.current = next
		done()
		return
	}

	s.logger.Debug("scene switch", "screen", string(as), "animation", animation.String())
	if animation == AnimationNone {
		s.host.Install(next)
		s.current = next
		done()
		return
	}
	prev := s.current
	s.host.Transition(prev, next, animation, s.duration, func() {
		s.current = next
		done()
	})
}

// Perform runs transitions one at a time, each after the previous one
// completes, then calls completion. animated applies to every step except
// SetRoot, which carries its own animation.
func (s *MainScene) Perform(transitions []Transition, animated bool, completion func()) {
	if len(transitions) == 0 {
		if completion != nil {
			completion()
		}
		return
	}
	rest := transitions[1:]
	s.perform(transitions[0], animated, func() {
		s.Perform(rest, animated, completion)
	})
}

func (s *MainScene) perform(t Transition, animated bool, done func()) {
	switch t := t.(type) {
	case SetRoot:
		s.SwitchTo(t.Controller, t.Screen, t.Animation, nil, done)
	case SetTab:
		tabs, ok := s.current.(TabController)
		if !ok {
			errors.Report(&errors.UIError{
				Op:   "scene.SetTab",
				Kind: errors.KindTransition,
				Err:  fmt.Errorf("cannot select tab %d: root %T has no tabs", t.Index, s.current),
			})
			done()
			return
		}
		if err := tabs.SelectTab(t.Index); err != nil {
			errors.Report(errors.New("scene.SetTab", errors.KindTransition, err))
		}
		done()
	case Push:
		s.host.Push(t.Controller, animated, done)
	case Pop:
		s.host.Pop(animated, done)
	case PopToRoot:
		s.host.PopToRoot(animated, done)
	case Present:
		s.host.Present(t.Controller, animated, done)
	case Dismiss:
		s.host.Dismiss(animated, done)
	case DismissRoot:
		s.host.DismissRoot(animated, done)
	default:
		errors.Report(&errors.UIError{
			Op:   "scene.Perform",
			Kind: errors.KindTransition,
			Err:  fmt.Errorf("unknown transition %T", t),
		})
		done()
	}
}
