package nft

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

type approveArgs struct {
	TokenID   string `json:"token_id"`
	AccountID string `json:"account_id"`
	Msg       string `json:"msg,omitempty"`
}

type onApproveArgs struct {
	TokenID    string `json:"token_id"`
	OwnerID    string `json:"owner_id"`
	ApprovalID uint64 `json:"approval_id"`
	Msg        string `json:"msg"`
}

// nftApprove grants account_id a fresh approval id for the token. Only the
// owner may approve; the deposit must cover the added storage. Re-approving
// the same account replaces its id with a new, strictly larger one. When
// msg is given the approved program is notified via nft_on_approve.
func (c *Contract) nftApprove(env *runtime.Env, args json.RawMessage) (any, error) {
	if env.Deposit() == 0 {
		return nil, runtime.Errorf(runtime.KindDepositRequired,
			"nft_approve requires an attached deposit covering approval storage")
	}
	if err := assertNotPaused(env, TransferTokenPause); err != nil {
		return nil, err
	}
	var in approveArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	token, err := mustToken(st, in.TokenID)
	if err != nil {
		return nil, err
	}
	if env.PredecessorID() != token.OwnerID {
		return nil, runtime.Errorf(runtime.KindNotOwner,
			"only the token owner can approve accounts")
	}

	approvalID := token.NextApprovalID
	token.ApprovedAccountIDs[in.AccountID] = approvalID
	token.NextApprovalID++
	if err := putToken(st, in.TokenID, token); err != nil {
		return nil, err
	}
	if err := env.RefundExcessDeposit(); err != nil {
		return nil, err
	}

	if in.Msg != "" {
		err := env.Call(in.AccountID, "nft_on_approve", onApproveArgs{
			TokenID:    in.TokenID,
			OwnerID:    token.OwnerID,
			ApprovalID: approvalID,
			Msg:        in.Msg,
		}, 0, nil)
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

type isApprovedArgs struct {
	TokenID           string  `json:"token_id"`
	ApprovedAccountID string  `json:"approved_account_id"`
	ApprovalID        *uint64 `json:"approval_id,omitempty"`
}

// nftIsApproved reports whether the account holds a live approval, and when
// approval_id is given, that exact one.
func (c *Contract) nftIsApproved(env *runtime.Env, args json.RawMessage) (any, error) {
	var in isApprovedArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	token, err := mustToken(env.State(), in.TokenID)
	if err != nil {
		return nil, err
	}
	granted, ok := token.ApprovedAccountIDs[in.ApprovedAccountID]
	if !ok {
		return false, nil
	}
	if in.ApprovalID != nil {
		return granted == *in.ApprovalID, nil
	}
	return true, nil
}

type revokeArgs struct {
	TokenID   string `json:"token_id"`
	AccountID string `json:"account_id"`
}

// nftRevoke removes one account's approval and refunds its storage.
func (c *Contract) nftRevoke(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	var in revokeArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	token, err := mustToken(st, in.TokenID)
	if err != nil {
		return nil, err
	}
	if env.PredecessorID() != token.OwnerID {
		return nil, runtime.Errorf(runtime.KindNotOwner,
			"only the token owner can revoke approvals")
	}
	if _, ok := token.ApprovedAccountIDs[in.AccountID]; !ok {
		return nil, nil
	}
	delete(token.ApprovedAccountIDs, in.AccountID)
	if err := putToken(st, in.TokenID, token); err != nil {
		return nil, err
	}
	refundApprovals(env, token.OwnerID, map[string]uint64{in.AccountID: 0})
	return nil, nil
}

// nftRevokeAll clears every approval on the token.
func (c *Contract) nftRevokeAll(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	var in tokenArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	token, err := mustToken(st, in.TokenID)
	if err != nil {
		return nil, err
	}
	if env.PredecessorID() != token.OwnerID {
		return nil, runtime.Errorf(runtime.KindNotOwner,
			"only the token owner can revoke approvals")
	}
	if len(token.ApprovedAccountIDs) == 0 {
		return nil, nil
	}
	cleared := token.ApprovedAccountIDs
	token.ApprovedAccountIDs = make(map[string]uint64)
	if err := putToken(st, in.TokenID, token); err != nil {
		return nil, err
	}
	refundApprovals(env, token.OwnerID, cleared)
	return nil, nil
}
