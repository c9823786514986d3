package nft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

func TestGrantRoleEnablesMinting(t *testing.T) {
	host := newTestRegistry(t)

	_, err := host.Call(adminID, registryID, "grant_role",
		[]byte(`{"role":"MINTER_ROLE","account":"bob.test"}`), 0)
	require.NoError(t, err)

	_, err = host.Call(bobID, registryID, "airdrop",
		[]byte(`{"receiver_id":"bob.test","count":1}`), 50_000)
	require.NoError(t, err)

	var granted bool
	for _, line := range host.Logs() {
		if strings.Contains(line, `"event":"role_granted"`) &&
			strings.Contains(line, `"account":"bob.test"`) {
			granted = true
		}
	}
	require.True(t, granted)
}

func TestRevokeRoleDisablesMinting(t *testing.T) {
	host := newTestRegistry(t)
	_, err := host.Call(adminID, registryID, "revoke_role",
		[]byte(`{"role":"MINTER_ROLE","account":"admin.test"}`), 0)
	require.NoError(t, err)

	_, err = host.Call(adminID, registryID, "airdrop",
		[]byte(`{"receiver_id":"admin.test","count":1}`), 50_000)
	require.Error(t, err)
	require.Equal(t, runtime.KindUnauthorized, runtime.KindOf(err))
}

func TestGrantRoleRequiresAdmin(t *testing.T) {
	host := newTestRegistry(t)
	_, err := host.Call(bobID, registryID, "grant_role",
		[]byte(`{"role":"MINTER_ROLE","account":"bob.test"}`), 0)
	require.Error(t, err)
	require.Equal(t, runtime.KindUnauthorized, runtime.KindOf(err))
}

func TestRenounceRoleSelfOnly(t *testing.T) {
	host := newTestRegistry(t)

	_, err := host.Call(bobID, registryID, "renounce_role",
		[]byte(`{"role":"MINTER_ROLE","account":"admin.test"}`), 0)
	require.Error(t, err)
	require.Equal(t, runtime.KindUnauthorized, runtime.KindOf(err))

	_, err = host.Call(adminID, registryID, "renounce_role",
		[]byte(`{"role":"MINTER_ROLE","account":"admin.test"}`), 0)
	require.NoError(t, err)

	_, err = host.Call(adminID, registryID, "airdrop",
		[]byte(`{"receiver_id":"admin.test","count":1}`), 50_000)
	require.Error(t, err)
}

func TestSetRoleAdminRebindsAdministration(t *testing.T) {
	host := newTestRegistry(t)

	// Create an OPERATOR_ROLE administered by MINTER_ROLE holders.
	_, err := host.Call(adminID, registryID, "set_role_admin",
		[]byte(`{"role":"OPERATOR_ROLE","admin_role":"MINTER_ROLE"}`), 0)
	require.NoError(t, err)

	_, err = host.Call(adminID, registryID, "grant_role",
		[]byte(`{"role":"MINTER_ROLE","account":"bob.test"}`), 0)
	require.NoError(t, err)

	// Bob holds MINTER_ROLE, so bob can now administer OPERATOR_ROLE.
	_, err = host.Call(bobID, registryID, "grant_role",
		[]byte(`{"role":"OPERATOR_ROLE","account":"carol.test"}`), 0)
	require.NoError(t, err)

	var changed bool
	for _, line := range host.Logs() {
		if strings.Contains(line, `"event":"role_admin_changed"`) &&
			strings.Contains(line, `"adminRole":"MINTER_ROLE"`) {
			changed = true
		}
	}
	require.True(t, changed)
}

func TestPauseLifecycleAndEvents(t *testing.T) {
	host := newTestRegistry(t)

	_, err := host.Call(bobID, registryID, "pause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.Error(t, err, "pausing requires the admin role")

	_, err = host.Call(adminID, registryID, "pause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.NoError(t, err)

	_, err = host.Call(adminID, registryID, "pause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.Error(t, err, "double pause must fail")

	_, err = host.Call(adminID, registryID, "unpause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.NoError(t, err)

	_, err = host.Call(adminID, registryID, "unpause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.Error(t, err, "double unpause must fail")

	var paused, unpaused bool
	for _, line := range host.Logs() {
		if strings.Contains(line, `"event":"pause"`) {
			paused = true
		}
		if strings.Contains(line, `"event":"unpause"`) {
			unpaused = true
		}
	}
	require.True(t, paused)
	require.True(t, unpaused)
}
