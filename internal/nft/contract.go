// Package nft implements the non-fungible-token registry program: the
// authoritative token ledger with approval-based transfer authorization,
// the two-phase transfer-and-call protocol, royalty payouts, enumeration,
// and the role/pause collaborators that gate it.
package nft

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

// Roles and pause switches used by the registry.
const (
	DefaultAdminRole   = "DEFAULT_ADMIN_ROLE"
	MinterRole         = "MINTER_ROLE"
	TransferTokenPause = "TRANSFER_TOKEN_PAUSE"
)

// MetadataSpec doubles as the event standard version.
const MetadataSpec = "nft-1.0.0"

// ContractMetadata describes the registry itself.
type ContractMetadata struct {
	Spec          string `json:"spec" codec:"spec"`
	Name          string `json:"name" codec:"name"`
	Symbol        string `json:"symbol" codec:"symbol"`
	Icon          string `json:"icon,omitempty" codec:"icon"`
	BaseURI       string `json:"base_uri,omitempty" codec:"base_uri"`
	Reference     string `json:"reference,omitempty" codec:"reference"`
	ReferenceHash string `json:"reference_hash,omitempty" codec:"reference_hash"`
}

// DefaultMetadata returns the metadata the standalone node deploys with.
func DefaultMetadata() ContractMetadata {
	return ContractMetadata{
		Spec:   MetadataSpec,
		Name:   "NFT Registry",
		Symbol: "GOTEAM",
	}
}

type handler func(env *runtime.Env, args json.RawMessage) (any, error)

// Contract is the registry program. One instance serves every invocation;
// all mutable state lives in the invocation's state table.
type Contract struct {
	metadata ContractMetadata
	methods  map[string]handler
}

// New creates the registry program with its entry-point table.
func New(metadata ContractMetadata) *Contract {
	c := &Contract{metadata: metadata}
	c.methods = map[string]handler{
		"init": c.initialize,

		// Core token ledger.
		"airdrop":              c.airdrop,
		"nft_token":            c.nftToken,
		"nft_transfer":         c.nftTransfer,
		"nft_transfer_call":    c.nftTransferCall,
		"nft_resolve_transfer": c.nftResolveTransfer,

		// Approvals.
		"nft_approve":     c.nftApprove,
		"nft_is_approved": c.nftIsApproved,
		"nft_revoke":      c.nftRevoke,
		"nft_revoke_all":  c.nftRevokeAll,

		// Royalties.
		"nft_payout":          c.nftPayout,
		"nft_transfer_payout": c.nftTransferPayout,

		// Enumeration.
		"nft_total_supply":     c.nftTotalSupply,
		"nft_tokens":           c.nftTokens,
		"nft_tokens_for_owner": c.nftTokensForOwner,
		"nft_supply_for_owner": c.nftSupplyForOwner,
		"nft_metadata":         c.nftMetadata,

		// Access control and pauses.
		"grant_role":     c.grantRole,
		"revoke_role":    c.revokeRole,
		"renounce_role":  c.renounceRole,
		"set_role_admin": c.setRoleAdmin,
		"pause":          c.pause,
		"unpause":        c.unpause,
	}
	return c
}

// Call dispatches an entry point by name.
func (c *Contract) Call(env *runtime.Env, method string, args json.RawMessage) (json.RawMessage, error) {
	h, ok := c.methods[method]
	if !ok {
		return nil, runtime.Errorf(runtime.KindNotFound, "unknown method %s", method)
	}
	out, err := h(env, args)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, runtime.Errorf(runtime.KindInternal, "marshal %s result: %v", method, err)
	}
	return raw, nil
}

type initArgs struct {
	Admin string `json:"admin,omitempty"`
}

// initialize bootstraps the role table. Callable once.
func (c *Contract) initialize(env *runtime.Env, args json.RawMessage) (any, error) {
	var in initArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	done, err := st.Has(keyInitialized)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, runtime.Errorf(runtime.KindInvalidInput, "contract is already initialized")
	}
	admin := in.Admin
	if admin == "" {
		admin = env.PredecessorID()
	}
	if err := setRole(env, DefaultAdminRole, admin); err != nil {
		return nil, err
	}
	if err := setRole(env, MinterRole, admin); err != nil {
		return nil, err
	}
	if err := st.Put(keyInitialized, []byte{1}); err != nil {
		return nil, err
	}
	return nil, nil
}

// nftMetadata returns the registry's own metadata.
func (c *Contract) nftMetadata(*runtime.Env, json.RawMessage) (any, error) {
	return c.metadata, nil
}

func unmarshalArgs(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return runtime.Errorf(runtime.KindInvalidInput, "malformed arguments: %v", err)
	}
	return nil
}
