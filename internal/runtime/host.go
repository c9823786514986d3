package runtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Natashkinsasha/near-nft-template/internal/state"
	"github.com/Natashkinsasha/near-nft-template/internal/state/kvstore"
)

// markerDeposit is the exact deposit ownership-sensitive entry points
// demand. Its only purpose is forcing an explicit, signed approval of the
// call; it is kept by the receiving program.
const markerDeposit uint64 = 1

// Program is one deterministic ledger program: a dispatcher from entry
// point names to handlers running against the invocation's Env.
type Program interface {
	Call(env *Env, method string, args json.RawMessage) (json.RawMessage, error)
}

// Journal records completed invocations; nil disables journaling.
type Journal interface {
	RecordInvocation(rec InvocationRecord) error
}

// InvocationRecord is what the journal stores per invocation.
type InvocationRecord struct {
	Program     string
	Method      string
	Predecessor string
	Signer      string
	Deposit     uint64
	Success     bool
	Error       string
	Logs        []string
}

// Config holds host-wide pricing parameters.
type Config struct {
	// StorageByteCost is the price, in balance units, of one byte of
	// committed state growth.
	StorageByteCost uint64
}

// DefaultConfig returns the standalone-mode pricing.
func DefaultConfig() Config {
	return Config{StorageByteCost: 1}
}

// Receipt is one queued invocation: either a root call from an external
// signer, a cross-program call, or a callback carrying a promise result.
type Receipt struct {
	Receiver    string
	Predecessor string
	Signer      string
	Method      string
	Args        json.RawMessage
	Deposit     uint64

	Callback *callback
	result   *PromiseResult
}

type callback struct {
	receiver string
	method   string
	args     json.RawMessage
}

// PromiseResult is the outcome of a completed receipt, delivered to its
// callback.
type PromiseResult struct {
	Success bool
	Value   json.RawMessage
}

type registered struct {
	program Program
	store   kvstore.Store
}

// Host schedules program invocations under a single global order. Every
// entry point runs to completion in isolation; cross-program calls are
// queued receipts executed afterwards, which is the only place the
// one-logical-operation-two-phases behavior can come from.
type Host struct {
	mu       sync.Mutex
	log      *zap.Logger
	cfg      Config
	programs map[string]*registered
	balances map[string]uint64
	queue    []*Receipt
	logs     []string
	journal  Journal
}

// NewHost creates a host with no programs registered.
func NewHost(cfg Config, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		log:      log,
		cfg:      cfg,
		programs: make(map[string]*registered),
		balances: make(map[string]uint64),
	}
}

// Register deploys a program at the given account id with its own state
// store.
func (h *Host) Register(accountID string, p Program, store kvstore.Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.programs[accountID] = &registered{program: p, store: store}
}

// SetJournal attaches an invocation journal.
func (h *Host) SetJournal(j Journal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.journal = j
}

// SetBalance sets an account balance (genesis / test setup).
func (h *Host) SetBalance(accountID string, amount uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.balances[accountID] = amount
}

// Balance returns an account's balance.
func (h *Host) Balance(accountID string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.balances[accountID]
}

// Logs returns a copy of the accumulated host log.
func (h *Host) Logs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.logs))
	copy(out, h.logs)
	return out
}

// Call runs a state-changing entry point as the given signer and drains
// every receipt it spawns before returning. The returned value and error
// are those of the root invocation; receipt outcomes surface through
// state, events, and callbacks, exactly as the asynchronous model demands.
func (h *Host) Call(signer, programID, method string, args json.RawMessage, deposit uint64) (json.RawMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.balances[signer] < deposit {
		return nil, Errorf(KindInsufficientFunds,
			"account %s cannot attach %d", signer, deposit)
	}
	h.balances[signer] -= deposit

	root := &Receipt{
		Receiver:    programID,
		Predecessor: signer,
		Signer:      signer,
		Method:      method,
		Args:        args,
		Deposit:     deposit,
	}
	result, err := h.execute(root)
	h.drain()
	return result, err
}

// View runs a read-only entry point. State mutations, transfers, and
// receipts it attempts are discarded.
func (h *Host) View(programID, method string, args json.RawMessage) (json.RawMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	reg, ok := h.programs[programID]
	if !ok {
		return nil, Errorf(KindNotFound, "no program deployed at %s", programID)
	}
	receipt := &Receipt{Receiver: programID, Method: method, Args: args}
	env := &Env{host: h, receipt: receipt, table: state.NewTable(reg.store), view: true}
	result, err := reg.program.Call(env, method, args)
	env.table.Discard()
	return result, err
}

// drain executes queued receipts in FIFO order until none remain.
func (h *Host) drain() {
	for len(h.queue) > 0 {
		next := h.queue[0]
		h.queue = h.queue[1:]
		h.execute(next) //nolint:errcheck // receipt failures surface via callbacks and the log
	}
}

// execute runs one invocation atomically: on error every buffered effect
// is dropped and the attached deposit returns to the predecessor; on
// success state commits, transfers apply, and spawned receipts join the
// queue. The callback, if any, is enqueued either way.
func (h *Host) execute(r *Receipt) (json.RawMessage, error) {
	reg, ok := h.programs[r.Receiver]
	if !ok {
		err := Errorf(KindNotFound, "no program deployed at %s", r.Receiver)
		h.finish(r, nil, err, nil)
		h.balances[r.Predecessor] += r.Deposit
		return nil, err
	}

	h.balances[r.Receiver] += r.Deposit
	env := &Env{host: h, receipt: r, table: state.NewTable(reg.store)}

	result, err := reg.program.Call(env, r.Method, r.Args)
	if err == nil {
		err = h.settle(r, env)
	}
	if err != nil {
		env.table.Discard()
		h.balances[r.Receiver] -= r.Deposit
		h.balances[r.Predecessor] += r.Deposit
		h.finish(r, env, err, nil)
		return nil, err
	}

	h.finish(r, env, nil, result)
	return result, nil
}

// settle applies an invocation's buffered transfers and commits its state.
func (h *Host) settle(r *Receipt, env *Env) error {
	var outgoing uint64
	for _, t := range env.transfers {
		outgoing += t.amount
	}
	for _, spawn := range env.spawned {
		outgoing += spawn.Deposit
	}
	if h.balances[r.Receiver] < outgoing {
		return Errorf(KindInsufficientFunds,
			"program %s balance %d cannot cover outgoing %d", r.Receiver, h.balances[r.Receiver], outgoing)
	}

	if _, err := env.table.Commit(); err != nil {
		return Errorf(KindInternal, "state commit failed: %v", err)
	}
	for _, t := range env.transfers {
		h.balances[r.Receiver] -= t.amount
		h.balances[t.to] += t.amount
	}
	for _, spawn := range env.spawned {
		h.balances[r.Receiver] -= spawn.Deposit
		h.queue = append(h.queue, spawn)
	}
	return nil
}

// finish records logs and the journal entry, and schedules the callback.
func (h *Host) finish(r *Receipt, env *Env, err error, result json.RawMessage) {
	var logs []string
	if env != nil && err == nil {
		logs = env.logs
		h.logs = append(h.logs, logs...)
	}

	if err != nil {
		h.log.Debug("invocation failed",
			zap.String("program", r.Receiver),
			zap.String("method", r.Method),
			zap.String("predecessor", r.Predecessor),
			zap.Error(err))
	} else {
		h.log.Debug("invocation applied",
			zap.String("program", r.Receiver),
			zap.String("method", r.Method),
			zap.String("predecessor", r.Predecessor))
	}

	if h.journal != nil {
		rec := InvocationRecord{
			Program:     r.Receiver,
			Method:      r.Method,
			Predecessor: r.Predecessor,
			Signer:      r.Signer,
			Deposit:     r.Deposit,
			Success:     err == nil,
			Logs:        logs,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if jerr := h.journal.RecordInvocation(rec); jerr != nil {
			h.log.Warn("journal write failed", zap.Error(jerr))
		}
	}

	if r.Callback != nil {
		h.queue = append(h.queue, &Receipt{
			Receiver:    r.Callback.receiver,
			Predecessor: r.Callback.receiver,
			Signer:      r.Signer,
			Method:      r.Callback.method,
			Args:        r.Callback.args,
			result:      &PromiseResult{Success: err == nil, Value: result},
		})
	}
}
