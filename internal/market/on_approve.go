package market

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

type onApproveArgs struct {
	TokenID    string `json:"token_id"`
	OwnerID    string `json:"owner_id"`
	ApprovalID uint64 `json:"approval_id"`
	Msg        string `json:"msg"`
}

// nftOnApprove creates or replaces a listing. It is the approval hook a
// token registry invokes on nft_approve, so the predecessor is the
// registry and the signer must be the token owner who initiated the
// approval. The owner prepays listing storage via storage_deposit.
func (c *Contract) nftOnApprove(env *runtime.Env, args json.RawMessage) (any, error) {
	var in onApproveArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	nftContractID := env.PredecessorID()
	signer := env.SignerID()
	if nftContractID == signer {
		return nil, runtime.Errorf(runtime.KindMustBeCrossCall,
			"nft_on_approve must come from a cross-program call")
	}
	if in.OwnerID != signer {
		return nil, runtime.Errorf(runtime.KindOwnerMismatch,
			"owner_id must be the signer")
	}
	price, err := parseListingMsg(in.Msg)
	if err != nil {
		return nil, err
	}

	st := env.State()
	owned, err := getStringSet(st, byOwnerKey(in.OwnerID))
	if err != nil {
		return nil, err
	}
	deposit, err := getStorageBalance(st, in.OwnerID)
	if err != nil {
		return nil, err
	}
	perSale := storagePerSale * env.StorageByteCost()
	if need := uint64(len(owned)+1) * perSale; deposit < need {
		return nil, runtime.Errorf(runtime.KindInsufficientStorageDeposit,
			"storage balance %d below required %d", deposit, need)
	}

	id := saleID(nftContractID, in.TokenID)
	existed, err := st.Has(saleKey(id))
	if err != nil {
		return nil, err
	}
	sale := &Sale{
		OwnerID:        in.OwnerID,
		ApprovalID:     in.ApprovalID,
		NFTContractID:  nftContractID,
		TokenID:        in.TokenID,
		SaleConditions: price,
	}
	if err := st.PutMsg(saleKey(id), sale); err != nil {
		return nil, err
	}
	if _, err := addToSet(st, byOwnerKey(in.OwnerID), id); err != nil {
		return nil, err
	}
	if _, err := addToSet(st, byContractKey(nftContractID), in.TokenID); err != nil {
		return nil, err
	}
	if !existed {
		count, err := getSalesCount(st)
		if err != nil {
			return nil, err
		}
		if err := st.PutMsg(keySalesCount, count+1); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// parseListingMsg decodes the approval msg, which must be a JSON object
// with exactly the sale_conditions field holding a decimal price string.
func parseListingMsg(msg string) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(msg), &fields); err != nil {
		return "", runtime.Errorf(runtime.KindInvalidInput, "malformed listing msg: %v", err)
	}
	raw, ok := fields["sale_conditions"]
	if !ok || len(fields) != 1 {
		return "", runtime.Errorf(runtime.KindInvalidInput,
			"listing msg must contain exactly the sale_conditions field")
	}
	var price string
	if err := json.Unmarshal(raw, &price); err != nil {
		return "", runtime.Errorf(runtime.KindInvalidInput, "malformed sale_conditions: %v", err)
	}
	if _, err := parsePrice(price); err != nil {
		return "", err
	}
	return price, nil
}
