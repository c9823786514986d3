package runtime

import (
	"encoding/json"

	"github.com/Natashkinsasha/near-nft-template/internal/event"
	"github.com/Natashkinsasha/near-nft-template/internal/state"
)

// Env is the view a program gets of one invocation: caller identity,
// attached deposit, its own change-tracked state, and the primitives for
// logging, balance transfers, and cross-program calls. Everything an Env
// buffers (state writes, transfers, receipts, logs) takes effect only if
// the handler returns without error.
type Env struct {
	host    *Host
	receipt *Receipt
	table   *state.Table
	view    bool

	logs      []string
	transfers []transfer
	spawned   []*Receipt
}

type transfer struct {
	to     string
	amount uint64
}

// Callback names the self-method that receives the result of a
// cross-program call issued in the same invocation.
type Callback struct {
	Method string
	Args   any
}

// CurrentID returns the account id of the executing program.
func (e *Env) CurrentID() string { return e.receipt.Receiver }

// PredecessorID returns the account that directly invoked this entry point
// (a user at the root of a call chain, a program for receipts).
func (e *Env) PredecessorID() string { return e.receipt.Predecessor }

// SignerID returns the account that signed the original transaction.
func (e *Env) SignerID() string { return e.receipt.Signer }

// Deposit returns the balance attached to this invocation.
func (e *Env) Deposit() uint64 { return e.receipt.Deposit }

// State returns the invocation's change-tracked state view.
func (e *Env) State() *state.Table { return e.table }

// Log appends a line to the host log.
func (e *Env) Log(msg string) {
	e.logs = append(e.logs, msg)
}

// Emit serializes an event record into the host log.
func (e *Env) Emit(l event.Log) {
	e.Log(l.Serialize())
}

// Transfer queues a balance transfer from the executing program to the
// given account, applied on successful commit.
func (e *Env) Transfer(to string, amount uint64) {
	if amount == 0 {
		return
	}
	e.transfers = append(e.transfers, transfer{to: to, amount: amount})
}

// Call queues a cross-program call. The receipt executes after the current
// invocation commits; if cb is non-nil, the named method runs on the
// current program afterwards, carrying the receipt's promise result.
// The attached deposit is taken from the current program's balance.
func (e *Env) Call(receiver, method string, args any, deposit uint64, cb *Callback) error {
	if e.view {
		return Errorf(KindInternal, "view call cannot issue cross-program calls")
	}
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return Errorf(KindInternal, "marshal call args for %s.%s: %v", receiver, method, err)
	}
	r := &Receipt{
		Receiver:    receiver,
		Predecessor: e.receipt.Receiver,
		Signer:      e.receipt.Signer,
		Method:      method,
		Args:        rawArgs,
		Deposit:     deposit,
	}
	if cb != nil {
		rawCbArgs, err := json.Marshal(cb.Args)
		if err != nil {
			return Errorf(KindInternal, "marshal callback args for %s: %v", cb.Method, err)
		}
		r.Callback = &callback{
			receiver: e.receipt.Receiver,
			method:   cb.Method,
			args:     rawCbArgs,
		}
	}
	e.spawned = append(e.spawned, r)
	return nil
}

// PromiseResult returns the result of the cross-program call this callback
// resolves, and whether that call succeeded. ok is false when the current
// invocation is not a callback at all.
func (e *Env) PromiseResult() (value json.RawMessage, success, ok bool) {
	if e.receipt.result == nil {
		return nil, false, false
	}
	return e.receipt.result.Value, e.receipt.result.Success, true
}

// StorageDelta returns the invocation's net state growth so far, in bytes.
func (e *Env) StorageDelta() int64 {
	return e.table.StorageDelta()
}

// StorageByteCost returns the host's per-byte storage price.
func (e *Env) StorageByteCost() uint64 {
	return e.host.cfg.StorageByteCost
}

// AssertMarkerDeposit fails unless the caller attached exactly the
// one-unit marker deposit required by ownership-sensitive entry points.
func (e *Env) AssertMarkerDeposit() error {
	if e.receipt.Deposit != markerDeposit {
		return Errorf(KindDepositRequired, "requires attached deposit of exactly %d", markerDeposit)
	}
	return nil
}

// RefundExcessDeposit verifies the attached deposit covers the storage the
// invocation grew so far and queues a refund of the remainder to the
// predecessor. Call it after the handler's last state mutation.
func (e *Env) RefundExcessDeposit() error {
	var required uint64
	if delta := e.table.StorageDelta(); delta > 0 {
		required = uint64(delta) * e.host.cfg.StorageByteCost
	}
	if e.receipt.Deposit < required {
		return Errorf(KindInsufficientStorageDeposit,
			"attached deposit %d does not cover storage cost %d", e.receipt.Deposit, required)
	}
	e.Transfer(e.receipt.Predecessor, e.receipt.Deposit-required)
	return nil
}

// RefundStorage credits an account for released storage bytes.
func (e *Env) RefundStorage(to string, bytes uint64) {
	e.Transfer(to, bytes*e.host.cfg.StorageByteCost)
}
