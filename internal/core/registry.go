package core

import (
	"sync"

	"ctcore/internal/parts"
	"ctcore/pkg/model"
	"ctcore/pkg/rig"
)

var registerOnce sync.Once

// EnsureBuiltins runs the explicit startup registration pass exactly once
// per process: data models, generic placeholders and the concrete part
// catalog. Every service entry point calls it before touching the registry.
func EnsureBuiltins() {
	registerOnce.Do(func() {
		model.RegisterBuiltins()
		rig.RegisterBuiltins()
		parts.RegisterBuiltins()
	})
}
