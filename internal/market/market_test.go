package market

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Natashkinsasha/near-nft-template/internal/nft"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state/kvstore"
)

const (
	registryID = "nft.test"
	marketID   = "market.test"
	adminID    = "admin.test"
	sellerID   = "seller.test"
	buyerID    = "buyer.test"
	creatorID  = "creator.test"
)

const testFloat uint64 = 1_000_000

// newTestMarket deploys a registry and a market on one host and seeds
// balances.
func newTestMarket(t *testing.T) *runtime.Host {
	t.Helper()
	host := runtime.NewHost(runtime.DefaultConfig(), zap.NewNop())
	for _, program := range []struct {
		id      string
		program runtime.Program
	}{
		{registryID, nft.New(nft.DefaultMetadata())},
		{marketID, New()},
	} {
		store, err := kvstore.Open("memory", "")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		host.Register(program.id, program.program, store)
	}

	for _, account := range []string{registryID, marketID, adminID, sellerID, buyerID} {
		host.SetBalance(account, testFloat)
	}
	_, err := host.Call(adminID, registryID, "init", []byte(`{"admin":"admin.test"}`), 0)
	require.NoError(t, err)
	return host
}

// mintToSeller mints one token to the seller and returns its id.
func mintToSeller(t *testing.T, host *runtime.Host, royalties string) string {
	t.Helper()
	args := fmt.Sprintf(`{"receiver_id":%q,"count":1%s}`, sellerID, royalties)
	raw, err := host.Call(adminID, registryID, "airdrop", []byte(args), 50_000)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal(raw, &ids))
	require.Len(t, ids, 1)
	return ids[0]
}

// listToken deposits listing storage and approves the market with a price
// message, creating the sale through nft_on_approve.
func listToken(t *testing.T, host *runtime.Host, tokenID, price string) {
	t.Helper()
	_, err := host.Call(sellerID, marketID, "storage_deposit", nil, 1000)
	require.NoError(t, err)

	msg := fmt.Sprintf(`{\"sale_conditions\":\"%s\"}`, price)
	args := fmt.Sprintf(`{"token_id":%q,"account_id":%q,"msg":"%s"}`, tokenID, marketID, msg)
	_, err = host.Call(sellerID, registryID, "nft_approve", []byte(args), 1000)
	require.NoError(t, err)
}

func viewSale(t *testing.T, host *runtime.Host, tokenID string) *Sale {
	t.Helper()
	args := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q}`, registryID, tokenID)
	raw, err := host.View(marketID, "get_sale", []byte(args))
	require.NoError(t, err)
	if string(raw) == "null" {
		return nil
	}
	var sale Sale
	require.NoError(t, json.Unmarshal(raw, &sale))
	return &sale
}

func tokenOwner(t *testing.T, host *runtime.Host, tokenID string) string {
	t.Helper()
	raw, err := host.View(registryID, "nft_token",
		[]byte(fmt.Sprintf(`{"token_id":%q}`, tokenID)))
	require.NoError(t, err)
	var v struct {
		OwnerID string `json:"owner_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	return v.OwnerID
}

func TestListingRoundTrip(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")
	listToken(t, host, tokenID, "500")

	sale := viewSale(t, host, tokenID)
	require.NotNil(t, sale)
	require.Equal(t, sellerID, sale.OwnerID)
	require.Equal(t, registryID, sale.NFTContractID)
	require.Equal(t, tokenID, sale.TokenID)
	require.Equal(t, "500", sale.SaleConditions)
	require.Equal(t, uint64(1), sale.ApprovalID)

	raw, err := host.View(marketID, "get_supply_sales", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"1"`, string(raw))

	raw, err = host.View(marketID, "get_supply_by_owner_id",
		[]byte(fmt.Sprintf(`{"account_id":%q}`, sellerID)))
	require.NoError(t, err)
	require.JSONEq(t, `"1"`, string(raw))

	raw, err = host.View(marketID, "get_sales_by_nft_contract_id",
		[]byte(fmt.Sprintf(`{"nft_contract_id":%q}`, registryID)))
	require.NoError(t, err)
	var sales []Sale
	require.NoError(t, json.Unmarshal(raw, &sales))
	require.Len(t, sales, 1)
}

func TestOnApproveRejectsDirectCalls(t *testing.T) {
	host := newTestMarket(t)
	args := []byte(`{"token_id":"1","owner_id":"seller.test","approval_id":0,"msg":"{\"sale_conditions\":\"5\"}"}`)
	_, err := host.Call(sellerID, marketID, "nft_on_approve", args, 0)
	require.Error(t, err)
	require.Equal(t, runtime.KindMustBeCrossCall, runtime.KindOf(err))
}

func TestOnApproveRequiresStorageDeposit(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")

	// No storage_deposit first: the approval hook must reject the listing.
	msg := `{\"sale_conditions\":\"500\"}`
	args := fmt.Sprintf(`{"token_id":%q,"account_id":%q,"msg":"%s"}`, tokenID, marketID, msg)
	_, err := host.Call(sellerID, registryID, "nft_approve", []byte(args), 1000)
	require.NoError(t, err, "the approval itself succeeds; the hook receipt fails")
	require.Nil(t, viewSale(t, host, tokenID))
}

func TestListingMsgValidation(t *testing.T) {
	testcases := []struct {
		name string
		msg  string
	}{
		{name: "not json", msg: "five hundred"},
		{name: "extra field", msg: `{"sale_conditions":"5","x":1}`},
		{name: "missing field", msg: `{"price":"5"}`},
		{name: "non numeric price", msg: `{"sale_conditions":"cheap"}`},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseListingMsg(tc.msg)
			require.Error(t, err)
			require.Equal(t, runtime.KindInvalidInput, runtime.KindOf(err))
		})
	}

	price, err := parseListingMsg(`{"sale_conditions":"500"}`)
	require.NoError(t, err)
	require.Equal(t, "500", price)
}

func TestOfferSettlesPurchaseWithRoyalties(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, `,"perpetual_royalties":{"creator.test":1000}`)
	listToken(t, host, tokenID, "500")

	buyerBefore := host.Balance(buyerID)
	args := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q}`, registryID, tokenID)
	_, err := host.Call(buyerID, marketID, "offer", []byte(args), 500)
	require.NoError(t, err)

	require.Equal(t, buyerID, tokenOwner(t, host, tokenID))
	require.Nil(t, viewSale(t, host, tokenID))
	require.Equal(t, buyerBefore-500, host.Balance(buyerID))
	require.Equal(t, uint64(50), host.Balance(creatorID), "creator gets the 10%% royalty")

	raw, err := host.View(marketID, "get_supply_sales", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"0"`, string(raw))
}

func TestOfferValidation(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")
	listToken(t, host, tokenID, "500")
	args := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q}`, registryID, tokenID)

	testcases := []struct {
		name    string
		signer  string
		deposit uint64
		kind    runtime.ErrorKind
	}{
		{name: "zero deposit", signer: buyerID, deposit: 0, kind: runtime.KindDepositRequired},
		{name: "below asking price", signer: buyerID, deposit: 499, kind: runtime.KindInsufficientFunds},
		{name: "own sale", signer: sellerID, deposit: 500, kind: runtime.KindInvalidInput},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := host.Call(tc.signer, marketID, "offer", []byte(args), tc.deposit)
			require.Error(t, err)
			require.Equal(t, tc.kind, runtime.KindOf(err))
		})
	}

	// The listing survives every rejected offer.
	require.NotNil(t, viewSale(t, host, tokenID))
}

func TestFailedTransferRefundsBuyer(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")
	listToken(t, host, tokenID, "500")

	// Pausing transfers makes the registry reject nft_transfer_payout.
	_, err := host.Call(adminID, registryID, "pause",
		[]byte(`{"pause_id":"TRANSFER_TOKEN_PAUSE"}`), 0)
	require.NoError(t, err)

	buyerBefore := host.Balance(buyerID)
	args := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q}`, registryID, tokenID)
	_, err = host.Call(buyerID, marketID, "offer", []byte(args), 500)
	require.NoError(t, err, "the offer itself commits; settlement fails in the receipt")

	require.Equal(t, buyerBefore, host.Balance(buyerID), "buyer gets the full refund")
	require.Equal(t, sellerID, tokenOwner(t, host, tokenID))
	// The listing is consumed and not restored.
	require.Nil(t, viewSale(t, host, tokenID))
}

func TestRemoveSale(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")
	listToken(t, host, tokenID, "500")
	args := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q}`, registryID, tokenID)

	_, err := host.Call(buyerID, marketID, "remove_sale", []byte(args), 1)
	require.Error(t, err)
	require.Equal(t, runtime.KindNotOwner, runtime.KindOf(err))

	_, err = host.Call(sellerID, marketID, "remove_sale", []byte(args), 1)
	require.NoError(t, err)
	require.Nil(t, viewSale(t, host, tokenID))

	raw, err := host.View(marketID, "get_supply_sales", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"0"`, string(raw))
}

func TestUpdatePrice(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")
	listToken(t, host, tokenID, "500")

	args := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q,"price":"900"}`, registryID, tokenID)
	_, err := host.Call(sellerID, marketID, "update_price", []byte(args), 1)
	require.NoError(t, err)
	require.Equal(t, "900", viewSale(t, host, tokenID).SaleConditions)

	bad := fmt.Sprintf(`{"nft_contract_id":%q,"token_id":%q,"price":"cheap"}`, registryID, tokenID)
	_, err = host.Call(sellerID, marketID, "update_price", []byte(bad), 1)
	require.Error(t, err)
	require.Equal(t, runtime.KindInvalidInput, runtime.KindOf(err))
}

func TestStorageWithdrawReleasesUnlockedBalance(t *testing.T) {
	host := newTestMarket(t)
	tokenID := mintToSeller(t, host, "")

	_, err := host.Call(sellerID, marketID, "storage_deposit", nil, 3000)
	require.NoError(t, err)

	msg := `{\"sale_conditions\":\"500\"}`
	approveArgs := fmt.Sprintf(`{"token_id":%q,"account_id":%q,"msg":"%s"}`, tokenID, marketID, msg)
	_, err = host.Call(sellerID, registryID, "nft_approve", []byte(approveArgs), 1000)
	require.NoError(t, err)

	before := host.Balance(sellerID)
	_, err = host.Call(sellerID, marketID, "storage_withdraw", nil, 1)
	require.NoError(t, err)

	// One live listing locks 1000; 2000 of the 3000 come back, minus the
	// one-unit marker.
	require.Equal(t, before+2000-1, host.Balance(sellerID))
}

func TestStorageDepositMinimum(t *testing.T) {
	host := newTestMarket(t)
	_, err := host.Call(sellerID, marketID, "storage_deposit", nil, 999)
	require.Error(t, err)
	require.Equal(t, runtime.KindInsufficientStorageDeposit, runtime.KindOf(err))

	raw, err := host.View(marketID, "get_supply_sales", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"0"`, string(raw))

	raw, err = host.View(marketID, "storage_minimum_balance", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"1000"`, string(raw))
}
