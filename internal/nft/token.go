package nft

import (
	"encoding/json"
	"strconv"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

// State layout. Keys are flat byte strings; values are canonical msgpack.
var (
	keyCounter     = []byte("counter")
	keyInitialized = []byte("initialized")
)

const (
	prefixToken    = "tokens/"
	prefixMetadata = "meta/"
	prefixOwner    = "owners/"
	prefixRole     = "roles/"
	prefixPause    = "pauses/"
)

func tokenKey(tokenID string) []byte    { return []byte(prefixToken + tokenID) }
func metadataKey(tokenID string) []byte { return []byte(prefixMetadata + tokenID) }

// Royalty shares are expressed in basis points of this denominator.
const (
	royaltyDenominator = 10_000
	maxRoyaltyEntries  = 6
)

// Token is the ledger record of one token.
type Token struct {
	OwnerID            string            `codec:"owner_id"`
	ApprovedAccountIDs map[string]uint64 `codec:"approved_account_ids"`
	NextApprovalID     uint64            `codec:"next_approval_id"`
	Royalty            map[string]uint32 `codec:"royalty"`
}

// TokenMetadata is the per-token descriptive record.
type TokenMetadata struct {
	Title         string `json:"title,omitempty" codec:"title"`
	Description   string `json:"description,omitempty" codec:"description"`
	Media         string `json:"media,omitempty" codec:"media"`
	MediaHash     string `json:"media_hash,omitempty" codec:"media_hash"`
	Copies        uint64 `json:"copies,omitempty" codec:"copies"`
	IssuedAt      uint64 `json:"issued_at,omitempty" codec:"issued_at"`
	ExpiresAt     uint64 `json:"expires_at,omitempty" codec:"expires_at"`
	Extra         string `json:"extra,omitempty" codec:"extra"`
	Reference     string `json:"reference,omitempty" codec:"reference"`
	ReferenceHash string `json:"reference_hash,omitempty" codec:"reference_hash"`
}

// TokenView is the external representation returned by views.
type TokenView struct {
	TokenID            string            `json:"token_id"`
	OwnerID            string            `json:"owner_id"`
	Metadata           TokenMetadata     `json:"metadata"`
	ApprovedAccountIDs map[string]uint64 `json:"approved_account_ids"`
	Royalty            map[string]uint32 `json:"royalty"`
}

// getToken loads a token record, nil when absent.
func getToken(st *state.Table, tokenID string) (*Token, error) {
	var t Token
	found, err := st.GetMsg(tokenKey(tokenID), &t)
	if err != nil || !found {
		return nil, err
	}
	if t.ApprovedAccountIDs == nil {
		t.ApprovedAccountIDs = make(map[string]uint64)
	}
	return &t, nil
}

// mustToken loads a token record, failing with NotFound when absent.
func mustToken(st *state.Table, tokenID string) (*Token, error) {
	t, err := getToken(st, tokenID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, runtime.Errorf(runtime.KindNotFound, "token %s not found", tokenID)
	}
	return t, nil
}

func putToken(st *state.Table, tokenID string, t *Token) error {
	return st.PutMsg(tokenKey(tokenID), t)
}

func getMetadata(st *state.Table, tokenID string) (TokenMetadata, error) {
	var md TokenMetadata
	_, err := st.GetMsg(metadataKey(tokenID), &md)
	return md, err
}

// tokenView assembles the external view of a token, nil when absent.
func tokenView(st *state.Table, tokenID string) (*TokenView, error) {
	t, err := getToken(st, tokenID)
	if err != nil || t == nil {
		return nil, err
	}
	md, err := getMetadata(st, tokenID)
	if err != nil {
		return nil, err
	}
	return &TokenView{
		TokenID:            tokenID,
		OwnerID:            t.OwnerID,
		Metadata:           md,
		ApprovedAccountIDs: t.ApprovedAccountIDs,
		Royalty:            t.Royalty,
	}, nil
}

func getCounter(st *state.Table) (uint64, error) {
	var n uint64
	_, err := st.GetMsg(keyCounter, &n)
	return n, err
}

func putCounter(st *state.Table, n uint64) error {
	return st.PutMsg(keyCounter, n)
}

type tokenArgs struct {
	TokenID string `json:"token_id"`
}

// nftToken returns the view of one token, or null when it does not exist.
func (c *Contract) nftToken(env *runtime.Env, args json.RawMessage) (any, error) {
	var in tokenArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	v, err := tokenView(env.State(), in.TokenID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return json.RawMessage("null"), nil
	}
	return v, nil
}

func formatTokenID(n uint64) string { return strconv.FormatUint(n, 10) }
