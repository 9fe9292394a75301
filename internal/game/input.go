package game

// Key is a physical key the game listens to. Frontends translate their own
// key codes into these.
type Key uint8

const (
	KeyW Key = iota
	KeyS
	KeyA
	KeyD
	KeyZ
	KeyJ
	KeyK
	KeyL
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	Key0
	Key1
	Key2
	Key3
	KeyEscape
	KeyCount
)

// KeyState is the "held this frame" snapshot of every key.
type KeyState [KeyCount]bool

func (k KeyState) Held(key Key) bool {
	return key < KeyCount && k[key]
}

// Press marks keys as held and returns the updated snapshot.
func (k KeyState) Press(keys ...Key) KeyState {
	for _, key := range keys {
		if key < KeyCount {
			k[key] = true
		}
	}
	return k
}

// Bindings is one team's key set.
type Bindings struct {
	Up, Down, Left, Right Key
	Switch, Steal, Kick   Key
	Skill                 Key
}

// DefaultBindings are the two non-overlapping team layouts.
var DefaultBindings = [2]Bindings{
	{Up: KeyW, Down: KeyS, Left: KeyA, Right: KeyD, Switch: KeyZ, Steal: KeyJ, Kick: KeyK, Skill: KeyL},
	{Up: KeyUp, Down: KeyDown, Left: KeyLeft, Right: KeyRight, Switch: Key0, Steal: Key1, Kick: Key2, Skill: Key3},
}

// Intents are one team's actions for a single tick.
type Intents struct {
	Up, Down, Left, Right bool
	Switch                bool
	Steal                 bool
	Kick                  bool
	Skill                 bool
}

// Moving reports whether any direction is requested.
func (in Intents) Moving() bool {
	return in.Up || in.Down || in.Left || in.Right
}

// Mapper turns key snapshots into per-team intents.
//
// By default switch, steal and kick fire on every frame their key is held,
// so a held switch key flips control each tick. EdgeTriggered makes those
// three fire only on the frame the key goes down.
type Mapper struct {
	Bindings      [2]Bindings
	EdgeTriggered bool

	prev KeyState
}

func NewMapper(edgeTriggered bool) *Mapper {
	return &Mapper{Bindings: DefaultBindings, EdgeTriggered: edgeTriggered}
}

// Map returns the intents of both teams for this frame.
func (m *Mapper) Map(keys KeyState) [2]Intents {
	var out [2]Intents
	for i, b := range m.Bindings {
		out[i] = Intents{
			Up:     keys.Held(b.Up),
			Down:   keys.Held(b.Down),
			Left:   keys.Held(b.Left),
			Right:  keys.Held(b.Right),
			Switch: m.fired(keys, b.Switch),
			Steal:  m.fired(keys, b.Steal),
			Kick:   m.fired(keys, b.Kick),
			Skill:  keys.Held(b.Skill),
		}
	}
	m.prev = keys
	return out
}

func (m *Mapper) fired(keys KeyState, key Key) bool {
	if !keys.Held(key) {
		return false
	}
	return !m.EdgeTriggered || !m.prev.Held(key)
}
