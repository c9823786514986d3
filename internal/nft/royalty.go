package nft

import (
	"encoding/json"
	"math/bits"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

// Payout maps receiving accounts to the balance share each is owed,
// rendered as decimal strings on the wire.
type Payout struct {
	Payout map[string]string `json:"payout"`
}

// royaltyShare is floor(balance * bps / denominator). The full 128-bit
// intermediate keeps large balances exact.
func royaltyShare(bps uint32, balance uint64) uint64 {
	hi, lo := bits.Mul64(balance, uint64(bps))
	q, _ := bits.Div64(hi, lo, royaltyDenominator)
	return q
}

// computePayout splits balance across the royalty table, with the owner
// receiving the complement of all perpetual shares. Rounding always
// truncates per share, so the sum never exceeds balance.
func computePayout(royalty map[string]uint32, ownerID string, balance uint64, maxLen int) (Payout, error) {
	if len(royalty) > maxLen {
		return Payout{}, runtime.Errorf(runtime.KindInvalidInput,
			"cannot pay out to more than %d receivers", maxLen)
	}
	out := Payout{Payout: make(map[string]string, len(royalty)+1)}
	var totalBps uint32
	for account, bps := range royalty {
		if account == ownerID {
			continue
		}
		totalBps += bps
		out.Payout[account] = strconv.FormatUint(royaltyShare(bps, balance), 10)
	}
	out.Payout[ownerID] = strconv.FormatUint(royaltyShare(royaltyDenominator-totalBps, balance), 10)
	return out, nil
}

type payoutArgs struct {
	TokenID      string `json:"token_id"`
	Balance      string `json:"balance"`
	MaxLenPayout int    `json:"max_len_payout"`
}

func parseBalance(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, runtime.Errorf(runtime.KindInvalidInput, "malformed balance %q", s)
	}
	return n, nil
}

// nftPayout previews the royalty split of the given balance.
func (c *Contract) nftPayout(env *runtime.Env, args json.RawMessage) (any, error) {
	var in payoutArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	balance, err := parseBalance(in.Balance)
	if err != nil {
		return nil, err
	}
	token, err := mustToken(env.State(), in.TokenID)
	if err != nil {
		return nil, err
	}
	return computePayout(token.Royalty, token.OwnerID, balance, in.MaxLenPayout)
}

type transferPayoutArgs struct {
	ReceiverID   string  `json:"receiver_id"`
	TokenID      string  `json:"token_id"`
	ApprovalID   *uint64 `json:"approval_id,omitempty"`
	Memo         string  `json:"memo,omitempty"`
	Balance      string  `json:"balance"`
	MaxLenPayout int     `json:"max_len_payout"`
}

// nftTransferPayout transfers the token and returns the payout the caller
// must disburse, computed against the pre-transfer owner. Marketplaces call
// this while settling a purchase.
func (c *Contract) nftTransferPayout(env *runtime.Env, args json.RawMessage) (any, error) {
	if err := env.AssertMarkerDeposit(); err != nil {
		return nil, err
	}
	if err := assertNotPaused(env, TransferTokenPause); err != nil {
		return nil, err
	}
	var in transferPayoutArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	balance, err := parseBalance(in.Balance)
	if err != nil {
		return nil, err
	}
	prev, err := internalTransfer(env, env.PredecessorID(), in.ReceiverID, in.TokenID, in.ApprovalID, in.Memo)
	if err != nil {
		return nil, err
	}
	refundApprovals(env, prev.OwnerID, prev.ApprovedAccountIDs)
	return computePayout(prev.Royalty, prev.OwnerID, balance, in.MaxLenPayout)
}
