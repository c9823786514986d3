package market

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

// State layout.
var keySalesCount = []byte("salesCount")

const (
	prefixSale       = "sales/"
	prefixByOwner    = "byOwner/"
	prefixByContract = "byContract/"
	prefixStorage    = "storage/"
)

// saleDelimiter joins a registry account id and a token id into a sale id.
const saleDelimiter = "."

// Sale is one listing.
type Sale struct {
	OwnerID        string `json:"owner_id" codec:"owner_id"`
	ApprovalID     uint64 `json:"approval_id" codec:"approval_id"`
	NFTContractID  string `json:"nft_contract_id" codec:"nft_contract_id"`
	TokenID        string `json:"token_id" codec:"token_id"`
	SaleConditions string `json:"sale_conditions" codec:"sale_conditions"`
}

func saleID(nftContractID, tokenID string) string {
	return nftContractID + saleDelimiter + tokenID
}

func saleKey(id string) []byte         { return []byte(prefixSale + id) }
func byOwnerKey(account string) []byte { return []byte(prefixByOwner + account) }
func byContractKey(nft string) []byte  { return []byte(prefixByContract + nft) }
func storageKey(account string) []byte { return []byte(prefixStorage + account) }

func getSale(st *state.Table, id string) (*Sale, error) {
	var s Sale
	found, err := st.GetMsg(saleKey(id), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func getSalesCount(st *state.Table) (uint64, error) {
	var n uint64
	_, err := st.GetMsg(keySalesCount, &n)
	return n, err
}

func getStringSet(st *state.Table, key []byte) ([]string, error) {
	var ids []string
	_, err := st.GetMsg(key, &ids)
	return ids, err
}

// addToSet appends a member, reporting whether it was new.
func addToSet(st *state.Table, key []byte, member string) (bool, error) {
	ids, err := getStringSet(st, key)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == member {
			return false, nil
		}
	}
	return true, st.PutMsg(key, append(ids, member))
}

// removeFromSet drops a member and deletes the set once empty.
func removeFromSet(st *state.Table, key []byte, member string) error {
	ids, err := getStringSet(st, key)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if id != member {
			continue
		}
		ids = append(ids[:i], ids[i+1:]...)
		if len(ids) == 0 {
			return st.Delete(key)
		}
		return st.PutMsg(key, ids)
	}
	return runtime.Errorf(runtime.KindInvariantViolation,
		"%s missing from index %s", member, string(key))
}

// internalRemoveSale deletes a listing and both index entries, returning
// the removed record. The three structures must agree.
func internalRemoveSale(st *state.Table, nftContractID, tokenID string) (*Sale, error) {
	id := saleID(nftContractID, tokenID)
	sale, err := getSale(st, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, runtime.Errorf(runtime.KindNotFound, "no sale for %s", id)
	}
	if err := st.Delete(saleKey(id)); err != nil {
		return nil, err
	}
	if err := removeFromSet(st, byOwnerKey(sale.OwnerID), id); err != nil {
		return nil, err
	}
	if err := removeFromSet(st, byContractKey(nftContractID), tokenID); err != nil {
		return nil, err
	}
	count, err := getSalesCount(st)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, runtime.Errorf(runtime.KindInvariantViolation,
			"sale count underflow removing %s", id)
	}
	if err := st.PutMsg(keySalesCount, count-1); err != nil {
		return nil, err
	}
	return sale, nil
}

func parsePrice(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, runtime.Errorf(runtime.KindInvalidInput, "malformed price %q", s)
	}
	return n, nil
}

type saleIDArgs struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
}

// removeSale delists a token. Owner only, marker deposit required.
func (c *Contract) removeSale(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	var in saleIDArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	sale, err := getSale(st, saleID(in.NFTContractID, in.TokenID))
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, runtime.Errorf(runtime.KindNotFound,
			"no sale for %s", saleID(in.NFTContractID, in.TokenID))
	}
	if env.PredecessorID() != sale.OwnerID {
		return nil, runtime.Errorf(runtime.KindNotOwner, "must be sale owner")
	}
	_, err = internalRemoveSale(st, in.NFTContractID, in.TokenID)
	return nil, err
}

type updatePriceArgs struct {
	saleIDArgs
	Price string `json:"price"`
}

// updatePrice rewrites a listing's asking price. Owner only, marker
// deposit required.
func (c *Contract) updatePrice(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	var in updatePriceArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	if _, err := parsePrice(in.Price); err != nil {
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
	if env.PredecessorID() != sale.OwnerID {
		return nil, runtime.Errorf(runtime.KindNotOwner, "must be sale owner")
	}
	sale.SaleConditions = in.Price
	return nil, st.PutMsg(saleKey(id), sale)
}
