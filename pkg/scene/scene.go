// Package scene manages the root screen of an application window and the
// transitions between screens.
//
// A [MainScene] owns a registry of screen factories keyed by [ScreenType]
// and shows exactly one of them as the window root. Switching screens goes
// through a [Host], the window-level container of the host toolkit, which
// performs the actual view replacement and animation:
//
//	main := scene.New(host, scene.Splash).
//	    Register(scene.Splash, newSplash).
//	    Register(scene.Main, newFeed)
//	main.Initialize()
//
//	// Later, once loading finishes:
//	main.Switch(scene.Main, scene.AnimationFade, nil, nil)
//
// # Chained Transitions
//
// [MainScene.Perform] runs a list of [Transition] values strictly one after
// another: each starts only after the previous one reports completion.
//
//	main.Perform([]scene.Transition{
//	    scene.SetRoot{Controller: tabs, Screen: scene.Main, Animation: scene.AnimationFade},
//	    scene.SetTab{Index: 2},
//	    scene.Push{Controller: details},
//	}, true, nil)
//
// Observe the shown screen through [MainScene.CurrentScreen].
package scene

import (
	"fmt"
	"time"
)

// ScreenType names a root screen.
type ScreenType string

const (
	Splash     ScreenType = "splash"
	Login      ScreenType = "login"
	Main       ScreenType = "main"
	Onboarding ScreenType = "onboarding"
	// Custom is the screen type of a scene built around one controller.
	Custom ScreenType = "custom"
)

// Controller is an opaque host view controller.
type Controller = any

// NotImplemented is shown for screen types without a registered factory.
type NotImplemented struct {
	Screen ScreenType
}

func (n NotImplemented) String() string {
	return fmt.Sprintf("not implemented: %s", n.Screen)
}

// TabController is a root controller with selectable tabs.
type TabController interface {
	SelectTab(index int) error
}

// Animation is how a root replacement is animated.
type Animation int

const (
	// AnimationNone replaces the root immediately.
	AnimationNone Animation = iota
	// AnimationFade cross-dissolves to the new root.
	AnimationFade
	// AnimationDismiss slides the new root in from the leading edge.
	AnimationDismiss
)

// DefaultTransitionDuration is the duration of animated root replacements.
const DefaultTransitionDuration = 300 * time.Millisecond

func (a Animation) String() string {
	switch a {
	case AnimationFade:
		return "fade"
	case AnimationDismiss:
		return "dismiss"
	default:
		return "none"
	}
}

// Host is the window-level container a MainScene drives.
//
// Every method taking done must call it exactly once, after the change is
// visible. done may run on a later turn of the event loop.
type Host interface {
	// Install shows c as the root without animation, replacing any root.
	Install(c Controller)
	// Transition animates from the current root to to over duration.
	Transition(from, to Controller, animation Animation, duration time.Duration, done func())
	Push(c Controller, animated bool, done func())
	Pop(animated bool, done func())
	PopToRoot(animated bool, done func())
	Present(c Controller, animated bool, done func())
	// Dismiss dismisses the topmost presented controller.
	Dismiss(animated bool, done func())
	// DismissRoot dismisses everything presented over the root.
	DismissRoot(animated bool, done func())
}

// Transition is one step of a chained navigation: [SetRoot], [SetTab],
// [Push], [Pop], [PopToRoot], [Present], [Dismiss], or [DismissRoot].
type Transition interface {
	transition()
}

// SetRoot replaces the root with Controller, recorded as Screen.
type SetRoot struct {
	Controller Controller
	Screen     ScreenType
	Animation  Animation
}

// SetTab selects a tab of the current root, which must be a TabController.
type SetTab struct {
	Index int
}

// Push pushes Controller onto the topmost navigation stack.
type Push struct {
	Controller Controller
}

// Pop pops the topmost navigation stack.
type Pop struct{}

// PopToRoot pops the topmost navigation stack to its first controller.
type PopToRoot struct{}

// Present presents Controller modally over the topmost controller.
type Present struct {
	Controller Controller
}

// Dismiss dismisses the topmost presented controller.
type Dismiss struct{}

// DismissRoot dismisses everything presented over the root.
type DismissRoot struct{}

func (SetRoot) transition()     {}
func (SetTab) transition()      {}
func (Push) transition()        {}
func (Pop) transition()         {}
func (PopToRoot) transition()   {}
func (Present) transition()     {}
func (Dismiss) transition()     {}
func (DismissRoot) transition() {}
