package nft

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

func TestTransferMovesOwnershipAndClearsApprovals(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")
	tokenID := ids[0]

	require.NoError(t, approve(host, aliceID, carolID, tokenID))
	require.NoError(t, transfer(host, aliceID, bobID, tokenID))

	v := viewToken(t, host, tokenID)
	require.Equal(t, bobID, v.OwnerID)
	require.Empty(t, v.ApprovedAccountIDs)
	require.Empty(t, ownedTokenIDs(t, host, aliceID))
	require.Equal(t, []string{tokenID}, ownedTokenIDs(t, host, bobID))
	requireOwnerIndexConsistent(t, host, aliceID, bobID)
}

func TestTransferReportsSuccess(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")

	args := fmt.Sprintf(`{"receiver_id":%q,"token_id":%q}`, bobID, ids[0])
	raw, err := host.Call(aliceID, registryID, "nft_transfer", []byte(args), 1)
	require.NoError(t, err)
	require.JSONEq(t, `true`, string(raw))
}

func TestTransferRequiresMarkerDeposit(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")
	args := fmt.Sprintf(`{"receiver_id":%q,"token_id":%q}`, bobID, ids[0])

	for _, deposit := range []uint64{0, 2} {
		_, err := host.Call(aliceID, registryID, "nft_transfer", []byte(args), deposit)
		require.Error(t, err)
		require.Equal(t, runtime.KindDepositRequired, runtime.KindOf(err))
	}
	require.Equal(t, aliceID, viewToken(t, host, ids[0]).OwnerID)
}

func TestTransferByApprovedAccount(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")
	tokenID := ids[0]
	require.NoError(t, approve(host, aliceID, bobID, tokenID))

	// Approval ids start at one on a fresh token.
	args := fmt.Sprintf(`{"receiver_id":%q,"token_id":%q,"approval_id":1}`, carolID, tokenID)
	_, err := host.Call(bobID, registryID, "nft_transfer", []byte(args), 1)
	require.NoError(t, err)
	require.Equal(t, carolID, viewToken(t, host, tokenID).OwnerID)
}

func TestTransferApprovalIDMismatch(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")
	tokenID := ids[0]
	require.NoError(t, approve(host, aliceID, bobID, tokenID))

	args := fmt.Sprintf(`{"receiver_id":%q,"token_id":%q,"approval_id":5}`, carolID, tokenID)
	_, err := host.Call(bobID, registryID, "nft_transfer", []byte(args), 1)
	require.Error(t, err)
	require.Equal(t, runtime.KindApprovalMismatch, runtime.KindOf(err))
	require.Equal(t, aliceID, viewToken(t, host, tokenID).OwnerID)
}

func TestTransferUnauthorizedSender(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")

	err := transfer(host, bobID, carolID, ids[0])
	require.Error(t, err)
	require.Equal(t, runtime.KindUnauthorized, runtime.KindOf(err))
}

func TestTransferMissingToken(t *testing.T) {
	host := newTestRegistry(t)
	err := transfer(host, aliceID, bobID, "42")
	require.Error(t, err)
	require.Equal(t, runtime.KindNotFound, runtime.KindOf(err))
}

func TestSelfTransferClearsApprovals(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")
	tokenID := ids[0]
	require.NoError(t, approve(host, aliceID, bobID, tokenID))

	require.NoError(t, transfer(host, aliceID, aliceID, tokenID))

	v := viewToken(t, host, tokenID)
	require.Equal(t, aliceID, v.OwnerID)
	require.Empty(t, v.ApprovedAccountIDs)
	require.Equal(t, []string{tokenID}, ownedTokenIDs(t, host, aliceID))
}

func TestPauseBlocksTransfers(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")

	_, err := host.Call(adminID, registryID, "pause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.NoError(t, err)

	err = transfer(host, aliceID, bobID, ids[0])
	require.Error(t, err)
	require.Equal(t, runtime.KindPaused, runtime.KindOf(err))

	_, err = host.Call(adminID, registryID, "unpause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.NoError(t, err)
	require.NoError(t, transfer(host, aliceID, bobID, ids[0]))
}
