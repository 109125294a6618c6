package rig

import (
	"testing"

	"ctcore/testutil"
)

func TestStaysFreeOfInternalImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"component model must stay importable without the service wiring")
}
