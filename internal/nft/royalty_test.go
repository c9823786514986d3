package nft

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

func TestComputePayout(t *testing.T) {
	testcases := []struct {
		name     string
		royalty  map[string]uint32
		owner    string
		balance  uint64
		maxLen   int
		expected map[string]string
	}{
		{
			name:     "no royalties",
			royalty:  nil,
			owner:    "owner.test",
			balance:  1000,
			maxLen:   10,
			expected: map[string]string{"owner.test": "1000"},
		},
		{
			name:    "split with truncation complement",
			royalty: map[string]uint32{"a.test": 2000, "b.test": 1000},
			owner:   "owner.test",
			balance: 1000,
			maxLen:  10,
			expected: map[string]string{
				"a.test":     "200",
				"b.test":     "100",
				"owner.test": "700",
			},
		},
		{
			name:    "shares truncate toward zero",
			royalty: map[string]uint32{"a.test": 3333},
			owner:   "owner.test",
			balance: 100,
			maxLen:  10,
			expected: map[string]string{
				"a.test":     "33",
				"owner.test": "66",
			},
		},
		{
			name:    "owner entry in royalty table is folded into complement",
			royalty: map[string]uint32{"owner.test": 5000, "a.test": 1000},
			owner:   "owner.test",
			balance: 1000,
			maxLen:  10,
			expected: map[string]string{
				"a.test":     "100",
				"owner.test": "900",
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			payout, err := computePayout(tc.royalty, tc.owner, tc.balance, tc.maxLen)
			require.NoError(t, err)
			require.Equal(t, tc.expected, payout.Payout)
		})
	}
}

func TestComputePayoutTooManyReceivers(t *testing.T) {
	royalty := map[string]uint32{"a.test": 100, "b.test": 100, "c.test": 100}
	_, err := computePayout(royalty, "owner.test", 1000, 2)
	require.Error(t, err)
	require.Equal(t, runtime.KindInvalidInput, runtime.KindOf(err))
}

func TestComputePayoutCapCountsRoyaltyTableOnly(t *testing.T) {
	// The owner's complement entry does not count against the cap: a table
	// filled to the limit still pays out.
	royalty := make(map[string]uint32, maxRoyaltyEntries)
	for i := 0; i < maxRoyaltyEntries; i++ {
		royalty[fmt.Sprintf("r%d.test", i)] = 100
	}
	payout, err := computePayout(royalty, "owner.test", 10000, maxRoyaltyEntries)
	require.NoError(t, err)
	require.Len(t, payout.Payout, maxRoyaltyEntries+1)
	require.Equal(t, "9400", payout.Payout["owner.test"])
}

func TestRoyaltyShareUsesWideIntermediate(t *testing.T) {
	// balance * bps overflows 64 bits; the quotient must still be exact.
	const balance = uint64(10_000_000_000_000_000_000)
	require.Equal(t, balance/10, royaltyShare(1000, balance))
}

func TestNftPayoutView(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, `,"perpetual_royalties":{"creator.test":1000}`)

	args := fmt.Sprintf(`{"token_id":%q,"balance":"500","max_len_payout":10}`, ids[0])
	raw, err := host.View(registryID, "nft_payout", []byte(args))
	require.NoError(t, err)

	var payout Payout
	require.NoError(t, json.Unmarshal(raw, &payout))
	require.Equal(t, map[string]string{
		"creator.test": "50",
		aliceID:        "450",
	}, payout.Payout)
}

func TestNftTransferPayoutMovesTokenAndReturnsSplit(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, `,"perpetual_royalties":{"creator.test":2500}`)

	args := fmt.Sprintf(
		`{"receiver_id":%q,"token_id":%q,"balance":"1000","max_len_payout":10}`, bobID, ids[0])
	raw, err := host.Call(aliceID, registryID, "nft_transfer_payout", []byte(args), 1)
	require.NoError(t, err)

	var payout Payout
	require.NoError(t, json.Unmarshal(raw, &payout))
	require.Equal(t, map[string]string{
		"creator.test": "250",
		aliceID:        "750",
	}, payout.Payout)
	require.Equal(t, bobID, viewToken(t, host, ids[0]).OwnerID)
}

func TestNftPayoutMalformedBalance(t *testing.T) {
	host := newTestRegistry(t)
	ids := mintTokens(t, host, aliceID, 1, "")

	args := fmt.Sprintf(`{"token_id":%q,"balance":"-5","max_len_payout":10}`, ids[0])
	_, err := host.View(registryID, "nft_payout", []byte(args))
	require.Error(t, err)
	require.Equal(t, runtime.KindInvalidInput, runtime.KindOf(err))
}
