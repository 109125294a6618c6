package rig

// Blueprint contributes a canned system configuration: a name plus the
// ordered component set. Concrete blueprints live with the concrete parts.
type Blueprint interface {
	Name() string
	// Components constructs a fresh component set in beam-path order. Each
	// call must return new instances, since the system takes exclusive
	// ownership of them.
	Components() []Component
}

// FromBlueprint assembles a new system from a blueprint.
func FromBlueprint(b Blueprint) *System {
	system := NewSystem(b.Name())
	for _, c := range b.Components() {
		system.Add(c)
	}
	return system
}
