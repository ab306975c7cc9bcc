package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stewardhq/steward/svc/tenant"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := [][2]tenant.State{
		{tenant.StateProvisioning, tenant.StateActive},
		{tenant.StateActive, tenant.StateDegraded},
		{tenant.StateActive, tenant.StateDeactivated},
		{tenant.StateDegraded, tenant.StateActive},
		{tenant.StateDegraded, tenant.StateDeactivated},
	}
	for _, pair := range allowed {
		assert.True(t, tenant.CanTransition(pair[0], pair[1]),
			"%s -> %s should be allowed", pair[0], pair[1])
	}

	denied := [][2]tenant.State{
		{tenant.StateProvisioning, tenant.StateDegraded},
		{tenant.StateProvisioning, tenant.StateDeactivated},
		{tenant.StateDeactivated, tenant.StateActive},
		{tenant.StateDeactivated, tenant.StateProvisioning},
		{tenant.StateActive, tenant.StateProvisioning},
	}
	for _, pair := range denied {
		assert.False(t, tenant.CanTransition(pair[0], pair[1]),
			"%s -> %s should be denied", pair[0], pair[1])
	}
}

func TestStateTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.StateDeactivated.Terminal())
	assert.False(t, tenant.StateActive.Terminal())
	assert.False(t, tenant.StateDegraded.Terminal())
	assert.False(t, tenant.StateProvisioning.Terminal())
	assert.False(t, tenant.State("unknown").Terminal())
}
