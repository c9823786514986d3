package market

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

// Listing storage is prepaid: owners deposit balance here and every live
// listing locks one sale's worth until it is removed or sold.

func getStorageBalance(st *state.Table, account string) (uint64, error) {
	var n uint64
	_, err := st.GetMsg(storageKey(account), &n)
	return n, err
}

type storageDepositArgs struct {
	AccountID string `json:"account_id,omitempty"`
}

// storageDeposit credits the attached deposit to an account's storage
// balance, the caller's own by default. The deposit must cover at least
// one listing.
func (c *Contract) storageDeposit(env *runtime.Env, args json.RawMessage) (any, error) {
	var in storageDepositArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	account := in.AccountID
	if account == "" {
		account = env.PredecessorID()
	}
	perSale := storagePerSale * env.StorageByteCost()
	if env.Deposit() < perSale {
		return nil, runtime.Errorf(runtime.KindInsufficientStorageDeposit,
			"deposit %d below minimum storage balance %d", env.Deposit(), perSale)
	}
	st := env.State()
	balance, err := getStorageBalance(st, account)
	if err != nil {
		return nil, err
	}
	return nil, st.PutMsg(storageKey(account), balance+env.Deposit())
}

// storageWithdraw returns the caller's storage balance not locked by live
// listings. Marker deposit required.
func (c *Contract) storageWithdraw(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	account := env.PredecessorID()
	st := env.State()
	balance, err := getStorageBalance(st, account)
	if err != nil {
		return nil, err
	}
	owned, err := getStringSet(st, byOwnerKey(account))
	if err != nil {
		return nil, err
	}
	locked := uint64(len(owned)) * storagePerSale * env.StorageByteCost()
	if balance <= locked {
		return nil, nil
	}
	free := balance - locked
	if locked == 0 {
		if err := st.Delete(storageKey(account)); err != nil {
			return nil, err
		}
	} else if err := st.PutMsg(storageKey(account), locked); err != nil {
		return nil, err
	}
	env.Transfer(account, free)
	return nil, nil
}

// storageMinimumBalance returns the per-listing storage price as a decimal
// string.
func (c *Contract) storageMinimumBalance(env *runtime.Env, args json.RawMessage) (any, error) {
	return strconv.FormatUint(storagePerSale*env.StorageByteCost(), 10), nil
}
