package nft

import (
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

// The per-owner index maps an account to the ordered list of token ids it
// holds. It is a pure projection of the token records; the two must agree
// after every committed invocation.

func ownerKey(accountID string) []byte { return []byte(prefixOwner + accountID) }

func tokensForOwner(st *state.Table, accountID string) ([]string, error) {
	var ids []string
	_, err := st.GetMsg(ownerKey(accountID), &ids)
	return ids, err
}

// addTokenToOwner appends a token id to the owner's set, creating it on
// first use.
func addTokenToOwner(st *state.Table, accountID, tokenID string) error {
	ids, err := tokensForOwner(st, accountID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == tokenID {
			return runtime.Errorf(runtime.KindInvariantViolation,
				"token %s already indexed under %s", tokenID, accountID)
		}
	}
	return st.PutMsg(ownerKey(accountID), append(ids, tokenID))
}

// removeTokenFromOwner removes a token id from the owner's set and deletes
// the set once empty. A missing set or member means the caller's
// owner-to-token mapping disagrees with the index.
func removeTokenFromOwner(st *state.Table, accountID, tokenID string) error {
	key := ownerKey(accountID)
	var ids []string
	found, err := st.GetMsg(key, &ids)
	if err != nil {
		return err
	}
	if !found {
		return runtime.Errorf(runtime.KindInvariantViolation,
			"account %s holds no tokens", accountID)
	}
	for i, id := range ids {
		if id != tokenID {
			continue
		}
		ids = append(ids[:i], ids[i+1:]...)
		if len(ids) == 0 {
			return st.Delete(key)
		}
		return st.PutMsg(key, ids)
	}
	return runtime.Errorf(runtime.KindInvariantViolation,
		"token %s not indexed under %s", tokenID, accountID)
}
