package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical control, independent of the physical key.
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionBoost
	ActionBreakBlock
	ActionPlaceBlock
	ActionToggleWireframe
	ActionToggleStats
	ActionQuit
	ActionCount
)

// Manager maps keys and mouse buttons to actions and tracks press edges
// between frames. Event handlers may run from GLFW callbacks while the frame
// loop reads state, so access is locked.
type Manager struct {
	mu sync.RWMutex

	keys    map[glfw.Key][]Action
	buttons map[glfw.MouseButton][]Action

	down         [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager returns a manager with the default fly-camera bindings.
func NewManager() *Manager {
	m := &Manager{
		keys:    make(map[glfw.Key][]Action),
		buttons: make(map[glfw.MouseButton][]Action),
	}
	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeySpace, ActionMoveUp)
	m.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	m.BindKey(glfw.KeyLeftControl, ActionBoost)
	m.BindKey(glfw.KeyF, ActionToggleWireframe)
	m.BindKey(glfw.KeyV, ActionToggleStats)
	m.BindKey(glfw.KeyEscape, ActionQuit)
	m.BindMouseButton(glfw.MouseButtonLeft, ActionBreakBlock)
	m.BindMouseButton(glfw.MouseButtonRight, ActionPlaceBlock)
	return m
}

// BindKey adds a binding; one key may drive several actions.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	m.keys[key] = append(m.keys[key], action)
	m.mu.Unlock()
}

func (m *Manager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	m.buttons[button] = append(m.buttons[button], action)
	m.mu.Unlock()
}

// HandleKeyEvent records a GLFW key event.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(m.keys[key], action == glfw.Press || action == glfw.Repeat)
}

// HandleMouseButtonEvent records a GLFW mouse button event.
func (m *Manager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(m.buttons[button], action == glfw.Press)
}

func (m *Manager) apply(actions []Action, pressed bool) {
	for _, a := range actions {
		if pressed && !m.down[a] {
			m.justPressed[a] = true
		}
		if !pressed && m.down[a] {
			m.justReleased[a] = true
		}
		m.down[a] = pressed
	}
}

// Attach installs key and mouse button callbacks on window.
func (m *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleMouseButtonEvent(button, action)
	})
}

// PostUpdate clears the press edges. Call it once at the end of each frame.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	clear(m.justPressed[:])
	clear(m.justReleased[:])
	m.mu.Unlock()
}

func (m *Manager) IsActive(a Action) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.down[a]
}

func (m *Manager) JustPressed(a Action) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[a]
}

func (m *Manager) JustReleased(a Action) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[a]
}
