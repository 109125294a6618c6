package beam

import (
	"testing"

	"ctcore/testutil"
)

func TestStaysFreeOfInternalImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"beam pipeline must stay importable without the service wiring")
}
