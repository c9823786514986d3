package market

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

type pageArgs struct {
	FromIndex *string `json:"from_index,omitempty"`
	Limit     *uint64 `json:"limit,omitempty"`
}

func (p pageArgs) page() (start, limit uint64, err error) {
	if p.FromIndex != nil {
		start, err = strconv.ParseUint(*p.FromIndex, 10, 64)
		if err != nil {
			return 0, 0, runtime.Errorf(runtime.KindInvalidInput,
				"malformed from_index %q", *p.FromIndex)
		}
	}
	limit = 50
	if p.Limit != nil {
		limit = *p.Limit
	}
	return start, limit, nil
}

// getSupplySales returns the live listing count as a decimal string.
func (c *Contract) getSupplySales(env *runtime.Env, args json.RawMessage) (any, error) {
	count, err := getSalesCount(env.State())
	if err != nil {
		return nil, err
	}
	return strconv.FormatUint(count, 10), nil
}

// getSale returns one listing, or null when it does not exist.
func (c *Contract) getSale(env *runtime.Env, args json.RawMessage) (any, error) {
	var in saleIDArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	sale, err := getSale(env.State(), saleID(in.NFTContractID, in.TokenID))
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return json.RawMessage("null"), nil
	}
	return sale, nil
}

type ownerViewArgs struct {
	AccountID string `json:"account_id"`
	pageArgs
}

// getSalesByOwnerID pages through one owner's listings in listing order.
func (c *Contract) getSalesByOwnerID(env *runtime.Env, args json.RawMessage) (any, error) {
	var in ownerViewArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	start, limit, err := in.page()
	if err != nil {
		return nil, err
	}
	st := env.State()
	ids, err := getStringSet(st, byOwnerKey(in.AccountID))
	if err != nil {
		return nil, err
	}
	out := make([]*Sale, 0, limit)
	for i := start; i < uint64(len(ids)) && uint64(len(out)) < limit; i++ {
		sale, err := getSale(st, ids[i])
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, runtime.Errorf(runtime.KindInvariantViolation,
				"sale %s indexed under %s but not stored", ids[i], in.AccountID)
		}
		out = append(out, sale)
	}
	return out, nil
}

// getSupplyByOwnerID returns one owner's listing count as a decimal string.
func (c *Contract) getSupplyByOwnerID(env *runtime.Env, args json.RawMessage) (any, error) {
	var in ownerViewArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	ids, err := getStringSet(env.State(), byOwnerKey(in.AccountID))
	if err != nil {
		return nil, err
	}
	return strconv.Itoa(len(ids)), nil
}

type contractViewArgs struct {
	NFTContractID string `json:"nft_contract_id"`
	pageArgs
}

// getSalesByNFTContractID pages through one registry's listings.
func (c *Contract) getSalesByNFTContractID(env *runtime.Env, args json.RawMessage) (any, error) {
	var in contractViewArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	start, limit, err := in.page()
	if err != nil {
		return nil, err
	}
	st := env.State()
	tokenIDs, err := getStringSet(st, byContractKey(in.NFTContractID))
	if err != nil {
		return nil, err
	}
	out := make([]*Sale, 0, limit)
	for i := start; i < uint64(len(tokenIDs)) && uint64(len(out)) < limit; i++ {
		id := saleID(in.NFTContractID, tokenIDs[i])
		sale, err := getSale(st, id)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, runtime.Errorf(runtime.KindInvariantViolation,
				"sale %s indexed under %s but not stored", id, in.NFTContractID)
		}
		out = append(out, sale)
	}
	return out, nil
}

// getSupplyByNFTContractID returns one registry's listing count as a
// decimal string.
func (c *Contract) getSupplyByNFTContractID(env *runtime.Env, args json.RawMessage) (any, error) {
	var in contractViewArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	tokenIDs, err := getStringSet(env.State(), byContractKey(in.NFTContractID))
	if err != nil {
		return nil, err
	}
	return strconv.Itoa(len(tokenIDs)), nil
}
