package journal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

func TestJournalRoundTrip(t *testing.T) {
	db, err := Open("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	rec := runtime.InvocationRecord{
		Program:     "nft.test",
		Method:      "airdrop",
		Predecessor: "admin.test",
		Signer:      "admin.test",
		Deposit:     5000,
		Success:     true,
		Logs:        []string{"EVENT_JSON:{}"},
	}
	require.NoError(t, db.RecordInvocation(rec))

	failed := rec
	failed.Method = "nft_transfer"
	failed.Success = false
	failed.Error = "NotFound: token 9 not found"
	failed.Logs = nil
	require.NoError(t, db.RecordInvocation(failed))

	records, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byMethod := make(map[string]runtime.InvocationRecord, len(records))
	for _, r := range records {
		byMethod[r.Method] = r
	}
	require.Equal(t, rec, byMethod["airdrop"])
	require.False(t, byMethod["nft_transfer"].Success)
	require.Equal(t, "NotFound: token 9 not found", byMethod["nft_transfer"].Error)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", nil)
	require.Error(t, err)
}
