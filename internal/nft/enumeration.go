package nft

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

const defaultPageLimit = 50

type pageArgs struct {
	FromIndex *string `json:"from_index,omitempty"`
	Limit     *uint64 `json:"limit,omitempty"`
}

// page resolves a pagination window. from_index rides as a decimal string
// to survive JSON number precision; absent means 0, absent limit means 50.
func (p pageArgs) page() (start, limit uint64, err error) {
	if p.FromIndex != nil {
		start, err = strconv.ParseUint(*p.FromIndex, 10, 64)
		if err != nil {
			return 0, 0, runtime.Errorf(runtime.KindInvalidInput,
				"malformed from_index %q", *p.FromIndex)
		}
	}
	limit = defaultPageLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	return start, limit, nil
}

// nftTotalSupply returns the number of tokens ever minted, as a decimal
// string.
func (c *Contract) nftTotalSupply(env *runtime.Env, args json.RawMessage) (any, error) {
	counter, err := getCounter(env.State())
	if err != nil {
		return nil, err
	}
	return strconv.FormatUint(counter, 10), nil
}

// nftTokens pages through all tokens in mint order. Token ids are the
// dense range 1..counter and tokens are never deleted, so the window is
// derived straight from the counter.
func (c *Contract) nftTokens(env *runtime.Env, args json.RawMessage) (any, error) {
	var in pageArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	start, limit, err := in.page()
	if err != nil {
		return nil, err
	}
	st := env.State()
	counter, err := getCounter(st)
	if err != nil {
		return nil, err
	}
	out := make([]*TokenView, 0, limit)
	for i := start; i < counter && uint64(len(out)) < limit; i++ {
		v, err := tokenView(st, formatTokenID(i+1))
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, runtime.Errorf(runtime.KindInvariantViolation,
				"token %s missing from dense id range", formatTokenID(i+1))
		}
		out = append(out, v)
	}
	return out, nil
}

type ownerPageArgs struct {
	AccountID string `json:"account_id"`
	pageArgs
}

// nftTokensForOwner pages through one account's holdings in acquisition
// order.
func (c *Contract) nftTokensForOwner(env *runtime.Env, args json.RawMessage) (any, error) {
	var in ownerPageArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	start, limit, err := in.page()
	if err != nil {
		return nil, err
	}
	st := env.State()
	ids, err := tokensForOwner(st, in.AccountID)
	if err != nil {
		return nil, err
	}
	out := make([]*TokenView, 0, limit)
	for i := start; i < uint64(len(ids)) && uint64(len(out)) < limit; i++ {
		v, err := tokenView(st, ids[i])
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, runtime.Errorf(runtime.KindInvariantViolation,
				"token %s indexed under %s but not stored", ids[i], in.AccountID)
		}
		out = append(out, v)
	}
	return out, nil
}

type supplyForOwnerArgs struct {
	AccountID string `json:"account_id"`
}

// nftSupplyForOwner returns the account's holding count as a decimal
// string.
func (c *Contract) nftSupplyForOwner(env *runtime.Env, args json.RawMessage) (any, error) {
	var in supplyForOwnerArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	ids, err := tokensForOwner(env.State(), in.AccountID)
	if err != nil {
		return nil, err
	}
	return strconv.Itoa(len(ids)), nil
}
