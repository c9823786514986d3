package event

import "encoding/json"

// Every state-changing operation emits a structured record into the host
// log, serialized as "EVENT_JSON:" followed by the JSON body. The field
// layout is a compatibility contract and must not change.
const Prefix = "EVENT_JSON:"

// NFT ledger events carry the standard name and version; role and pause
// events omit both.
const (
	StandardNFT = "nep171"
	VersionNFT  = "nft-1.0.0"
)

// Event names.
const (
	NameMint             = "nft_mint"
	NameTransfer         = "nft_transfer"
	NameRoleGranted      = "role_granted"
	NameRoleRevoked      = "role_revoked"
	NameRoleAdminChanged = "role_admin_changed"
	NamePause            = "pause"
	NameUnpause          = "unpause"
)

// Log is one emitted event record.
type Log struct {
	Standard string `json:"standard,omitempty"`
	Version  string `json:"version,omitempty"`
	Event    string `json:"event"`
	Data     any    `json:"data,omitempty"`
}

// Serialize renders the record in the host log format.
func (l Log) Serialize() string {
	body, err := json.Marshal(l)
	if err != nil {
		// Event payloads are plain structs; marshalling cannot fail for
		// well-formed data. Surface the problem rather than hide it.
		return Prefix + `{"event":"` + l.Event + `"}`
	}
	return Prefix + string(body)
}

// MintData is the payload of an nft_mint event.
type MintData struct {
	OwnerID  string   `json:"owner_id"`
	TokenIDs []string `json:"token_ids"`
}

// TransferData is the payload of an nft_transfer event.
type TransferData struct {
	AuthorizedID string   `json:"authorized_id,omitempty"`
	OldOwnerID   string   `json:"old_owner_id"`
	NewOwnerID   string   `json:"new_owner_id"`
	TokenIDs     []string `json:"token_ids"`
	Memo         string   `json:"memo,omitempty"`
}

// RoleGrantedData is the payload of a role_granted event.
type RoleGrantedData struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Sender  string `json:"sender"`
}

// RoleRevokedData is the payload of a role_revoked event.
type RoleRevokedData struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Sender  string `json:"sender"`
}

// RoleAdminChangedData is the payload of a role_admin_changed event.
type RoleAdminChangedData struct {
	Role              string `json:"role"`
	PreviousAdminRole string `json:"previousAdminRole"`
	AdminRole         string `json:"adminRole"`
}

// PauseData is the payload of a pause event.
type PauseData struct {
	PauseID string `json:"pauseId"`
	Pauser  string `json:"pauser"`
}

// UnpauseData is the payload of an unpause event.
type UnpauseData struct {
	PauseID  string `json:"pauseId"`
	Unpauser string `json:"unpauser"`
}

// NewMint builds a complete nft_mint record.
func NewMint(ownerID string, tokenIDs []string) Log {
	return Log{
		Standard: StandardNFT,
		Version:  VersionNFT,
		Event:    NameMint,
		Data:     []MintData{{OwnerID: ownerID, TokenIDs: tokenIDs}},
	}
}

// NewTransfer builds a complete nft_transfer record.
func NewTransfer(data TransferData) Log {
	return Log{
		Standard: StandardNFT,
		Version:  VersionNFT,
		Event:    NameTransfer,
		Data:     []TransferData{data},
	}
}
