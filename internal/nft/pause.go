package nft

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/event"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

func pauseKey(pauseID string) []byte { return []byte(prefixPause + pauseID) }

func isPaused(st *state.Table, pauseID string) (bool, error) {
	return st.Has(pauseKey(pauseID))
}

// assertNotPaused gates an entry point on a named pause switch.
func assertNotPaused(env *runtime.Env, pauseID string) error {
	paused, err := isPaused(env.State(), pauseID)
	if err != nil {
		return err
	}
	if paused {
		return runtime.Errorf(runtime.KindPaused, "function paused by %s", pauseID)
	}
	return nil
}

type pauseIDArgs struct {
	PauseID string `json:"pause_id"`
}

// pause engages a pause switch. Admin only; fails if already engaged.
func (c *Contract) pause(env *runtime.Env, args json.RawMessage) (any, error) {
	var in pauseIDArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	if err := assertRole(env, DefaultAdminRole, env.PredecessorID()); err != nil {
		return nil, err
	}
	st := env.State()
	paused, err := isPaused(st, in.PauseID)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, runtime.Errorf(runtime.KindInvalidInput,
			"pause %s is already engaged", in.PauseID)
	}
	if err := st.Put(pauseKey(in.PauseID), []byte{1}); err != nil {
		return nil, err
	}
	env.Emit(event.Log{Event: event.NamePause, Data: event.PauseData{
		PauseID: in.PauseID,
		Pauser:  env.PredecessorID(),
	}})
	return nil, nil
}

// unpause releases a pause switch. Admin only; fails if not engaged.
func (c *Contract) unpause(env *runtime.Env, args json.RawMessage) (any, error) {
	var in pauseIDArgs
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, err
	}
	if err := assertRole(env, DefaultAdminRole, env.PredecessorID()); err != nil {
		return nil, err
	}
	st := env.State()
	paused, err := isPaused(st, in.PauseID)
	if err != nil {
		return nil, err
	}
	if !paused {
		return nil, runtime.Errorf(runtime.KindInvalidInput,
			"pause %s is not engaged", in.PauseID)
	}
	if err := st.Delete(pauseKey(in.PauseID)); err != nil {
		return nil, err
	}
	env.Emit(event.Log{Event: event.NameUnpause, Data: event.UnpauseData{
		PauseID:  in.PauseID,
		Unpauser: env.PredecessorID(),
	}})
	return nil, nil
}
