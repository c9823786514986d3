package nft

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/event"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

type transferArgs struct {
	ReceiverID string  `json:"receiver_id"`
	TokenID    string  `json:"token_id"`
	ApprovalID *uint64 `json:"approval_id,omitempty"`
	Memo       string  `json:"memo,omitempty"`
}

// internalTransfer moves a token to receiver on behalf of sender, which
// must be the owner or hold a live approval matching approvalID when one
// is given. Approvals are cleared; the approval id counter is not reset.
// Returns the pre-transfer record so callers can refund or snapshot it.
func internalTransfer(env *runtime.Env, sender, receiver, tokenID string, approvalID *uint64, memo string) (*Token, error) {
	st := env.State()
	token, err := mustToken(st, tokenID)
	if err != nil {
		return nil, err
	}
	if sender != token.OwnerID {
		granted, ok := token.ApprovedAccountIDs[sender]
		if !ok {
			return nil, runtime.Errorf(runtime.KindUnauthorized,
				"%s is neither owner nor approved for token %s", sender, tokenID)
		}
		if approvalID != nil && granted != *approvalID {
			return nil, runtime.Errorf(runtime.KindApprovalMismatch,
				"approval id %d does not match expected %d", granted, *approvalID)
		}
	}

	if err := removeTokenFromOwner(st, token.OwnerID, tokenID); err != nil {
		return nil, err
	}
	if err := addTokenToOwner(st, receiver, tokenID); err != nil {
		return nil, err
	}
	next := &Token{
		OwnerID:            receiver,
		ApprovedAccountIDs: make(map[string]uint64),
		NextApprovalID:     token.NextApprovalID,
		Royalty:            token.Royalty,
	}
	if err := putToken(st, tokenID, next); err != nil {
		return nil, err
	}

	authorizedID := ""
	if sender != token.OwnerID {
		authorizedID = sender
	}
	env.Emit(event.NewTransfer(event.TransferData{
		AuthorizedID: authorizedID,
		OldOwnerID:   token.OwnerID,
		NewOwnerID:   receiver,
		TokenIDs:     []string{tokenID},
		Memo:         memo,
	}))
	return token, nil
}

// nftTransfer moves a token and refunds the cleared approvals' storage to
// the previous owner.
func (c *Contract) nftTransfer(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	if err := assertNotPaused(env, TransferTokenPause); err != nil {
		return nil, err
	}
	var in transferArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	prev, err := internalTransfer(env, env.PredecessorID(), in.ReceiverID, in.TokenID, in.ApprovalID, in.Memo)
	if err != nil {
		return nil, err
	}
	refundApprovals(env, prev.OwnerID, prev.ApprovedAccountIDs)
	return true, nil
}

type onTransferArgs struct {
	SenderID        string `json:"sender_id"`
	PreviousOwnerID string `json:"previous_owner_id"`
	TokenID         string `json:"token_id"`
	Msg             string `json:"msg"`
}

type transferCallArgs struct {
	transferArgs
	Msg string `json:"msg"`
}

// nftTransferCall moves the token, then notifies the receiving program via
// nft_on_transfer. The registry's nft_resolve_transfer callback later reads
// the receiver's verdict and either finalizes or reverts.
func (c *Contract) nftTransferCall(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	if err := assertNotPaused(env, TransferTokenPause); err != nil {
		return nil, err
	}
	var in transferCallArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	sender := env.PredecessorID()
	prev, err := internalTransfer(env, sender, in.ReceiverID, in.TokenID, in.ApprovalID, in.Memo)
	if err != nil {
		return nil, err
	}

	authorizedID := ""
	if sender != prev.OwnerID {
		authorizedID = sender
	}
	err = env.Call(in.ReceiverID, "nft_on_transfer", onTransferArgs{
		SenderID:        sender,
		PreviousOwnerID: prev.OwnerID,
		TokenID:         in.TokenID,
		Msg:             in.Msg,
	}, 0, &runtime.Callback{
		Method: "nft_resolve_transfer",
		Args: resolveTransferArgs{
			AuthorizedID:       authorizedID,
			OwnerID:            prev.OwnerID,
			ReceiverID:         in.ReceiverID,
			TokenID:            in.TokenID,
			ApprovedAccountIDs: prev.ApprovedAccountIDs,
			Memo:               in.Memo,
		},
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// refundApprovals pays back the storage previously held by an approval set.
func refundApprovals(env *runtime.Env, to string, approvals map[string]uint64) {
	if len(approvals) == 0 {
		return
	}
	env.RefundStorage(to, bytesForApprovals(approvals))
}

// bytesForApprovals estimates the state bytes an approval set occupies:
// the account id plus the fixed encoding of its approval id.
func bytesForApprovals(approvals map[string]uint64) uint64 {
	var n uint64
	for account := range approvals {
		n += uint64(len(account)) + 16
	}
	return n
}
