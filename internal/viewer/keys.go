package viewer

// Action is what a key press asks the viewer to do.
type Action int

const (
	ActionNone Action = iota
	ActionExitFullscreen
	ActionClose
	ActionPrev
	ActionNext
	ActionToggleInfo
)

func (a Action) String() string {
	switch a {
	case ActionExitFullscreen:
		return "exit-fullscreen"
	case ActionClose:
		return "close"
	case ActionPrev:
		return "prev"
	case ActionNext:
		return "next"
	case ActionToggleInfo:
		return "toggle-info"
	default:
		return "none"
	}
}

// KeyContext is the focus state a key press arrives in.
type KeyContext struct {
	Open            bool
	Fullscreen      bool
	CarouselFocused bool
}

// KeyRouter maps key presses to actions. It only routes while attached,
// which the viewer ties to being open.
type KeyRouter struct {
	attached bool
}

func (r *KeyRouter) Attach()        { r.attached = true }
func (r *KeyRouter) Detach()        { r.attached = false }
func (r *KeyRouter) Attached() bool { return r.attached }

// Route returns the action for key. Escape dismisses one level at a time;
// arrows only navigate in fullscreen or with focus inside the carousel so
// they never hijack page scrolling.
func (r *KeyRouter) Route(key string, kc KeyContext) Action {
	if !r.attached || !kc.Open {
		return ActionNone
	}
	switch key {
	case "Escape", "Esc":
		if kc.Fullscreen {
			return ActionExitFullscreen
		}
		return ActionClose
	case "ArrowLeft", "Left":
		if kc.Fullscreen || kc.CarouselFocused {
			return ActionPrev
		}
	case "ArrowRight", "Right":
		if kc.Fullscreen || kc.CarouselFocused {
			return ActionNext
		}
	case "i", "I":
		if kc.Fullscreen {
			return ActionToggleInfo
		}
	}
	return ActionNone
}
