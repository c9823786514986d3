package nft

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/event"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

// roleData is the stored record of one role: its admin role and members.
type roleData struct {
	AdminRole string          `codec:"admin_role"`
	Members   map[string]bool `codec:"members"`
}

func roleKey(role string) []byte { return []byte(prefixRole + role) }

func getRoleData(st *state.Table, role string) (roleData, error) {
	rd := roleData{AdminRole: DefaultAdminRole}
	_, err := st.GetMsg(roleKey(role), &rd)
	if err != nil {
		return rd, err
	}
	if rd.Members == nil {
		rd.Members = make(map[string]bool)
	}
	if rd.AdminRole == "" {
		rd.AdminRole = DefaultAdminRole
	}
	return rd, err
}

func hasRole(st *state.Table, role, account string) (bool, error) {
	rd, err := getRoleData(st, role)
	if err != nil {
		return false, err
	}
	return rd.Members[account], nil
}

// assertRole fails with Unauthorized unless the account holds the role.
func assertRole(env *runtime.Env, role, account string) error {
	ok, err := hasRole(env.State(), role, account)
	if err != nil {
		return err
	}
	if !ok {
		return runtime.Errorf(runtime.KindUnauthorized,
			"account %s is missing role %s", account, role)
	}
	return nil
}

// setRole adds a member and emits role_granted when that changed anything.
func setRole(env *runtime.Env, role, account string) error {
	st := env.State()
	rd, err := getRoleData(st, role)
	if err != nil {
		return err
	}
	if rd.Members[account] {
		return nil
	}
	rd.Members[account] = true
	if err := st.PutMsg(roleKey(role), rd); err != nil {
		return err
	}
	env.Emit(event.Log{Event: event.NameRoleGranted, Data: event.RoleGrantedData{
		Role:    role,
		Account: account,
		Sender:  env.PredecessorID(),
	}})
	return nil
}

type roleArgs struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

// grantRole adds account to role. Callable by holders of the role's admin
// role.
func (c *Contract) grantRole(env *runtime.Env, args json.RawMessage) (any, error) {
	var in roleArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	rd, err := getRoleData(env.State(), in.Role)
	if err != nil {
		return nil, err
	}
	if err := assertRole(env, rd.AdminRole, env.PredecessorID()); err != nil {
		return nil, err
	}
	return nil, setRole(env, in.Role, in.Account)
}

// revokeRole removes account from role. Callable by holders of the role's
// admin role.
func (c *Contract) revokeRole(env *runtime.Env, args json.RawMessage) (any, error) {
	var in roleArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	rd, err := getRoleData(st, in.Role)
	if err != nil {
		return nil, err
	}
	if err := assertRole(env, rd.AdminRole, env.PredecessorID()); err != nil {
		return nil, err
	}
	return nil, removeRole(env, in.Role, in.Account)
}

// renounceRole removes the caller's own role membership.
func (c *Contract) renounceRole(env *runtime.Env, args json.RawMessage) (any, error) {
	var in roleArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Account != env.PredecessorID() {
		return nil, runtime.Errorf(runtime.KindUnauthorized,
			"can only renounce roles for self")
	}
	return nil, removeRole(env, in.Role, in.Account)
}

func removeRole(env *runtime.Env, role, account string) error {
	st := env.State()
	rd, err := getRoleData(st, role)
	if err != nil {
		return err
	}
	if !rd.Members[account] {
		return nil
	}
	delete(rd.Members, account)
	if err := st.PutMsg(roleKey(role), rd); err != nil {
		return err
	}
	env.Emit(event.Log{Event: event.NameRoleRevoked, Data: event.RoleRevokedData{
		Role:    role,
		Account: account,
		Sender:  env.PredecessorID(),
	}})
	return nil
}

type setRoleAdminArgs struct {
	Role      string `json:"role"`
	AdminRole string `json:"admin_role"`
}

// setRoleAdmin rebinds which role administers another. Callable by the
// current admin role's holders.
func (c *Contract) setRoleAdmin(env *runtime.Env, args json.RawMessage) (any, error) {
	var in setRoleAdminArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	st := env.State()
	rd, err := getRoleData(st, in.Role)
	if err != nil {
		return nil, err
	}
	if err := assertRole(env, rd.AdminRole, env.PredecessorID()); err != nil {
		return nil, err
	}
	previous := rd.AdminRole
	rd.AdminRole = in.AdminRole
	if err := st.PutMsg(roleKey(in.Role), rd); err != nil {
		return nil, err
	}
	env.Emit(event.Log{Event: event.NameRoleAdminChanged, Data: event.RoleAdminChangedData{
		Role:              in.Role,
		PreviousAdminRole: previous,
		AdminRole:         in.AdminRole,
	}})
	return nil, nil
}
