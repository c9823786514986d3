package market

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

// offer buys a listing. The attached deposit is the bid and must reach the
// asking price; the listing is removed up front, and the token registry is
// asked to transfer the token and report the royalty split over the full
// deposit. Settlement happens in resolve_purchase.
func (c *Contract) offer(env *runtime.Env, args json.RawMessage) (any, error) {
	if env.Deposit() == 0 {
		return nil, runtime.Errorf(runtime.KindDepositRequired,
			"attached deposit must be greater than 0")
	}
	var in saleIDArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	id := saleID(in.NFTContractID, in.TokenID)
	sale, err := getSale(st, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, runtime.Errorf(runtime.KindNotFound, "no sale for %s", id)
	}
	buyer := env.PredecessorID()
	if buyer == sale.OwnerID {
		return nil, runtime.Errorf(runtime.KindInvalidInput,
			"cannot bid on your own sale")
	}
	price, err := parsePrice(sale.SaleConditions)
	if err != nil {
		return nil, err
	}
	if env.Deposit() < price {
		return nil, runtime.Errorf(runtime.KindInsufficientFunds,
			"attached deposit %d below asking price %d", env.Deposit(), price)
	}

	if _, err := internalRemoveSale(st, in.NFTContractID, in.TokenID); err != nil {
		return nil, err
	}
	approvalID := sale.ApprovalID
	return nil, env.Call(in.NFTContractID, "nft_transfer_payout", map[string]any{
		"receiver_id":    buyer,
		"token_id":       in.TokenID,
		"approval_id":    approvalID,
		"memo":           "payout from market",
		"balance":        strconv.FormatUint(env.Deposit(), 10),
		"max_len_payout": maxPayoutLen,
	}, 1, &runtime.Callback{
		Method: "resolve_purchase",
		Args: resolvePurchaseArgs{
			BuyerID: buyer,
			Price:   strconv.FormatUint(env.Deposit(), 10),
		},
	})
}

type resolvePurchaseArgs struct {
	BuyerID string `json:"buyer_id"`
	Price   string `json:"price"`
}

type payoutResult struct {
	Payout map[string]string `json:"payout"`
}

// resolvePurchase settles a purchase from the registry's payout verdict.
// A failed or malformed payout refunds the buyer in full; the listing is
// not restored either way, since the registry may already have moved the
// token. Truncation dust stays with the market.
func (c *Contract) resolvePurchase(env *runtime.Env, args json.RawMessage) (any, error) {
	if env.PredecessorID() != env.CurrentID() {
		return nil, runtime.Errorf(runtime.KindUnauthorized,
			"resolve_purchase is only callable by the contract itself")
	}
	var in resolvePurchaseArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	value, success, ok := env.PromiseResult()
	if !ok {
		return nil, runtime.Errorf(runtime.KindMustBeCrossCall,
			"resolve_purchase requires a promise result")
	}
	if !success {
		env.Transfer(in.BuyerID, price)
		return nil, nil
	}

	payout, perr := validatePayout(value, price)
	if perr != nil {
		env.Log("refunding buyer: " + perr.Error())
		env.Transfer(in.BuyerID, price)
		return nil, nil
	}
	for account, amount := range payout {
		env.Transfer(account, amount)
	}
	return in.Price, nil
}

// validatePayout decodes the registry's payout and checks it can be paid
// out of the escrowed price.
func validatePayout(value json.RawMessage, price uint64) (map[string]uint64, error) {
	var result payoutResult
	if err := json.Unmarshal(value, &result); err != nil {
		return nil, runtime.Errorf(runtime.KindInvalidInput, "malformed payout: %v", err)
	}
	if len(result.Payout) == 0 || len(result.Payout) > maxPayoutLen {
		return nil, runtime.Errorf(runtime.KindInvalidInput,
			"payout must name between 1 and %d receivers", maxPayoutLen)
	}
	out := make(map[string]uint64, len(result.Payout))
	var total uint64
	for account, amountStr := range result.Payout {
		amount, err := strconv.ParseUint(amountStr, 10, 64)
		if err != nil {
			return nil, runtime.Errorf(runtime.KindInvalidInput,
				"malformed payout amount %q for %s", amountStr, account)
		}
		total += amount
		out[account] = amount
	}
	if total > price {
		return nil, runtime.Errorf(runtime.KindInvalidInput,
			"payout total %d exceeds price %d", total, price)
	}
	return out, nil
}
