package nft

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state/kvstore"
)

const (
	registryID = "nft.test"
	adminID    = "admin.test"
	aliceID    = "alice.test"
	bobID      = "bob.test"
	carolID    = "carol.test"
)

const testFloat uint64 = 1_000_000

func newTestRegistry(t *testing.T) *runtime.Host {
	t.Helper()
	host := runtime.NewHost(runtime.DefaultConfig(), zap.NewNop())
	store, err := kvstore.Open("memory", "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	host.Register(registryID, New(DefaultMetadata()), store)

	for _, account := range []string{registryID, adminID, aliceID, bobID, carolID} {
		host.SetBalance(account, testFloat)
	}
	_, err = host.Call(adminID, registryID, "init", []byte(`{"admin":"admin.test"}`), 0)
	require.NoError(t, err)
	return host
}

// mintTokens airdrops count tokens to receiver and returns the new ids.
// extra is appended raw into the argument object.
func mintTokens(t *testing.T, host *runtime.Host, receiver string, count int, extra string) []string {
	t.Helper()
	args := fmt.Sprintf(`{"receiver_id":%q,"count":%d%s}`, receiver, count, extra)
	raw, err := host.Call(adminID, registryID, "airdrop", []byte(args), 50_000)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal(raw, &ids))
	return ids
}

func viewToken(t *testing.T, host *runtime.Host, tokenID string) *TokenView {
	t.Helper()
	raw, err := host.View(registryID, "nft_token", []byte(fmt.Sprintf(`{"token_id":%q}`, tokenID)))
	require.NoError(t, err)
	if string(raw) == "null" {
		return nil
	}
	var v TokenView
	require.NoError(t, json.Unmarshal(raw, &v))
	return &v
}

func ownedTokenIDs(t *testing.T, host *runtime.Host, account string) []string {
	t.Helper()
	raw, err := host.View(registryID, "nft_tokens_for_owner",
		[]byte(fmt.Sprintf(`{"account_id":%q,"limit":1000}`, account)))
	require.NoError(t, err)
	var views []TokenView
	require.NoError(t, json.Unmarshal(raw, &views))
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.TokenID)
	}
	return ids
}

// requireOwnerIndexConsistent cross-checks every token's owner field
// against the per-owner index.
func requireOwnerIndexConsistent(t *testing.T, host *runtime.Host, accounts ...string) {
	t.Helper()
	for _, account := range accounts {
		for _, id := range ownedTokenIDs(t, host, account) {
			v := viewToken(t, host, id)
			require.NotNil(t, v)
			require.Equal(t, account, v.OwnerID, "token %s indexed under %s", id, account)
		}
	}
}

func transfer(host *runtime.Host, sender, receiver, tokenID string) error {
	args := fmt.Sprintf(`{"receiver_id":%q,"token_id":%q}`, receiver, tokenID)
	_, err := host.Call(sender, registryID, "nft_transfer", []byte(args), 1)
	return err
}

func approve(host *runtime.Host, owner, account, tokenID string) error {
	args := fmt.Sprintf(`{"token_id":%q,"account_id":%q}`, tokenID, account)
	_, err := host.Call(owner, registryID, "nft_approve", []byte(args), 1000)
	return err
}
