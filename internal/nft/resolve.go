package nft

import (
	"bytes"
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/event"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

type resolveTransferArgs struct {
	AuthorizedID       string            `json:"authorized_id,omitempty"`
	OwnerID            string            `json:"owner_id"`
	ReceiverID         string            `json:"receiver_id"`
	TokenID            string            `json:"token_id"`
	ApprovedAccountIDs map[string]uint64 `json:"approved_account_ids"`
	Memo               string            `json:"memo,omitempty"`
}

// nftResolveTransfer is the private callback closing a transfer-and-call.
// The receiver keeps the token unless its nft_on_transfer returned the
// literal true verdict or failed outright. A revert is best effort: when
// the receiver already moved or burned the token the transfer stands.
// Returns whether the token ended up with the receiver.
func (c *Contract) nftResolveTransfer(env *runtime.Env, args json.RawMessage) (any, error) {
	if env.PredecessorID() != env.CurrentID() {
		return nil, runtime.Errorf(runtime.KindUnauthorized,
			"nft_resolve_transfer is only callable by the contract itself")
	}
	var in resolveTransferArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	value, success, ok := env.PromiseResult()
	if !ok {
		return nil, runtime.Errorf(runtime.KindMustBeCrossCall,
			"nft_resolve_transfer requires a promise result")
	}

	// Verdict false: the receiver keeps the token.
	if success && bytes.Equal(bytes.TrimSpace(value), []byte("false")) {
		refundApprovals(env, in.OwnerID, in.ApprovedAccountIDs)
		return true, nil
	}

	st := env.State()
	token, err := getToken(st, in.TokenID)
	if err != nil {
		return nil, err
	}
	if token == nil || token.OwnerID != in.ReceiverID {
		// Burned or already moved on; nothing to revert.
		refundApprovals(env, in.OwnerID, in.ApprovedAccountIDs)
		return true, nil
	}

	if err := removeTokenFromOwner(st, in.ReceiverID, in.TokenID); err != nil {
		return nil, err
	}
	if err := addTokenToOwner(st, in.OwnerID, in.TokenID); err != nil {
		return nil, err
	}
	// Approvals the receiver granted in the meantime are cleared and
	// refunded; the original owner's set is restored.
	refundApprovals(env, in.ReceiverID, token.ApprovedAccountIDs)
	token.OwnerID = in.OwnerID
	token.ApprovedAccountIDs = in.ApprovedAccountIDs
	if err := putToken(st, in.TokenID, token); err != nil {
		return nil, err
	}

	env.Emit(event.NewTransfer(event.TransferData{
		AuthorizedID: in.AuthorizedID,
		OldOwnerID:   in.ReceiverID,
		NewOwnerID:   in.OwnerID,
		TokenIDs:     []string{in.TokenID},
		Memo:         in.Memo,
	}))
	return false, nil
}
