// Package market implements the secondary-market program: approval-based
// listings against any token registry, escrow-less purchases settled
// through the registry's transfer-with-payout entry point, and prepaid
// listing storage accounting.
package market

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

// storagePerSale is the state bytes one listing is billed for, covering
// the sale record and its two index entries.
const storagePerSale uint64 = 1000

// maxPayoutLen caps how many royalty receivers a purchase will disburse.
const maxPayoutLen = 10

type handler func(env *runtime.Env, args json.RawMessage) (any, error)

// Contract is the marketplace program.
type Contract struct {
	methods map[string]handler
}

// New creates the marketplace program with its entry-point table.
func New() *Contract {
	c := &Contract{}
	c.methods = map[string]handler{
		// Listing lifecycle.
		"nft_on_approve":   c.nftOnApprove,
		"remove_sale":      c.removeSale,
		"update_price":     c.updatePrice,
		"offer":            c.offer,
		"resolve_purchase": c.resolvePurchase,

		// Storage accounting.
		"storage_deposit":         c.storageDeposit,
		"storage_withdraw":        c.storageWithdraw,
		"storage_minimum_balance": c.storageMinimumBalance,

		// Views.
		"get_supply_sales":              c.getSupplySales,
		"get_sale":                      c.getSale,
		"get_sales_by_owner_id":         c.getSalesByOwnerID,
		"get_supply_by_owner_id":        c.getSupplyByOwnerID,
		"get_sales_by_nft_contract_id":  c.getSalesByNFTContractID,
		"get_supply_by_nft_contract_id": c.getSupplyByNFTContractID,
	}
	return c
}

// Call dispatches an entry point by name.
func (c *Contract) Call(env *runtime.Env, method string, args json.RawMessage) (json.RawMessage, error) {
	h, ok := c.methods[method]
	if !ok {
		return nil, runtime.Errorf(runtime.KindNotFound, "unknown method %s", method)
	}
	out, err := h(env, args)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, runtime.Errorf(runtime.KindInternal, "marshal %s result: %v", method, err)
	}
	return raw, nil
}

func unmarshalArgs(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return runtime.Errorf(runtime.KindInvalidInput, "malformed arguments: %v", err)
	}
	return nil
}
