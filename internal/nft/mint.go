package nft

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/event"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

type airdropArgs struct {
	ReceiverID         string            `json:"receiver_id,omitempty"`
	Count              uint64            `json:"count"`
	Metadata           TokenMetadata     `json:"metadata,omitempty"`
	PerpetualRoyalties map[string]uint32 `json:"perpetual_royalties,omitempty"`
}

// airdrop mints count tokens to the receiver. Token ids come from the
// monotonic counter and are never reused. Minter role required; the
// attached deposit must cover the storage growth and the excess is
// refunded.
func (c *Contract) airdrop(env *runtime.Env, args json.RawMessage) (any, error) {
	var in airdropArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	if err := assertRole(env, MinterRole, env.PredecessorID()); err != nil {
		return nil, err
	}
	if in.Count == 0 {
		return nil, runtime.Errorf(runtime.KindInvalidInput, "count must be positive")
	}
	if err := validateRoyalties(in.PerpetualRoyalties); err != nil {
		return nil, err
	}
	receiver := in.ReceiverID
	if receiver == "" {
		receiver = env.PredecessorID()
	}

	st := env.State()
	counter, err := getCounter(st)
	if err != nil {
		return nil, err
	}
	minted := make([]string, 0, in.Count)
	for i := uint64(0); i < in.Count; i++ {
		counter++
		tokenID := formatTokenID(counter)
		exists, err := st.Has(tokenKey(tokenID))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, runtime.Errorf(runtime.KindInvariantViolation,
				"token %s already exists", tokenID)
		}
		token := &Token{
			OwnerID:            receiver,
			ApprovedAccountIDs: make(map[string]uint64),
			NextApprovalID:     1,
			Royalty:            in.PerpetualRoyalties,
		}
		if err := putToken(st, tokenID, token); err != nil {
			return nil, err
		}
		if err := st.PutMsg(metadataKey(tokenID), in.Metadata); err != nil {
			return nil, err
		}
		if err := addTokenToOwner(st, receiver, tokenID); err != nil {
			return nil, err
		}
		minted = append(minted, tokenID)
	}
	if err := putCounter(st, counter); err != nil {
		return nil, err
	}
	env.Emit(event.NewMint(receiver, minted))
	if err := env.RefundExcessDeposit(); err != nil {
		return nil, err
	}
	return minted, nil
}

// validateRoyalties enforces the size cap and that perpetual shares leave
// something for the owner.
func validateRoyalties(royalty map[string]uint32) error {
	if len(royalty) >= maxRoyaltyEntries+1 {
		return runtime.Errorf(runtime.KindInvalidInput,
			"cannot add more than %d perpetual royalty amounts", maxRoyaltyEntries)
	}
	var total uint64
	for account, bps := range royalty {
		if account == "" {
			return runtime.Errorf(runtime.KindInvalidInput, "royalty account must not be empty")
		}
		total += uint64(bps)
	}
	if total >= royaltyDenominator {
		return runtime.Errorf(runtime.KindInvalidInput,
			"perpetual royalties cannot be 100%% or more")
	}
	return nil
}
