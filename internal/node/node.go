// Package node assembles a standalone host from configuration: state
// stores, the registry and market programs, genesis balances, and the
// optional journal.
package node

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Natashkinsasha/near-nft-template/internal/config"
	"github.com/Natashkinsasha/near-nft-template/internal/journal"
	"github.com/Natashkinsasha/near-nft-template/internal/market"
	"github.com/Natashkinsasha/near-nft-template/internal/nft"
	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
	"github.com/Natashkinsasha/near-nft-template/internal/state/kvstore"
)

// Node is an assembled standalone host.
type Node struct {
	Host    *runtime.Host
	Journal *journal.DB

	log    *zap.Logger
	stores []kvstore.Store
}

// New builds a node from configuration. The registry program is
// initialized with the genesis admin and both programs receive the
// operational float.
func New(cfg *config.Config, log *zap.Logger) (*Node, error) {
	if log == nil {
		log = zap.NewNop()
	}
	n := &Node{log: log}

	host := runtime.NewHost(runtime.Config{StorageByteCost: cfg.Node.StorageByteCost}, log)
	n.Host = host

	registryStore, err := n.openStore(cfg, "registry")
	if err != nil {
		n.Close()
		return nil, err
	}
	marketStore, err := n.openStore(cfg, "market")
	if err != nil {
		n.Close()
		return nil, err
	}

	host.Register(cfg.Genesis.RegistryAccount, nft.New(nft.DefaultMetadata()), registryStore)
	host.Register(cfg.Genesis.MarketAccount, market.New(), marketStore)

	if cfg.Journal.Driver != "" {
		db, err := journal.Open(cfg.Journal.Driver, cfg.Journal.DSN, log)
		if err != nil {
			n.Close()
			return nil, err
		}
		n.Journal = db
		host.SetJournal(db)
	}

	host.SetBalance(cfg.Genesis.RegistryAccount, cfg.Genesis.ProgramFloat)
	host.SetBalance(cfg.Genesis.MarketAccount, cfg.Genesis.ProgramFloat)
	host.SetBalance(cfg.Genesis.Admin, cfg.Genesis.ProgramFloat)
	for _, acct := range cfg.Genesis.Accounts {
		host.SetBalance(acct.AccountID, acct.Balance)
	}

	if err := n.initRegistry(cfg); err != nil {
		n.Close()
		return nil, err
	}

	log.Info("node assembled",
		zap.String("backend", cfg.Node.StoreBackend),
		zap.String("registry", cfg.Genesis.RegistryAccount),
		zap.String("market", cfg.Genesis.MarketAccount))
	return n, nil
}

// openStore opens one program's backing store, wrapped in a read cache
// when configured.
func (n *Node) openStore(cfg *config.Config, name string) (kvstore.Store, error) {
	path := ""
	if cfg.Node.StorePath != "" {
		path = filepath.Join(cfg.Node.StorePath, name)
	}
	store, err := kvstore.Open(cfg.Node.StoreBackend, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", name, err)
	}
	if cfg.Node.CacheSize > 0 {
		cached, err := kvstore.NewCached(store, cfg.Node.CacheSize)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to wrap %s store cache: %w", name, err)
		}
		store = cached
	}
	n.stores = append(n.stores, store)
	return store, nil
}

// initRegistry bootstraps the registry roles, tolerating an already
// initialized persistent store.
func (n *Node) initRegistry(cfg *config.Config) error {
	args := []byte(fmt.Sprintf(`{"admin":%q}`, cfg.Genesis.Admin))
	_, err := n.Host.Call(cfg.Genesis.Admin, cfg.Genesis.RegistryAccount, "init", args, 0)
	if err == nil {
		return nil
	}
	if runtime.KindOf(err) == runtime.KindInvalidInput {
		n.log.Debug("registry already initialized")
		return nil
	}
	return fmt.Errorf("failed to initialize registry: %w", err)
}

// Close releases every resource the node opened.
func (n *Node) Close() {
	if n.Journal != nil {
		if err := n.Journal.Close(); err != nil {
			n.log.Warn("journal close failed", zap.Error(err))
		}
	}
	for _, store := range n.stores {
		if err := store.Close(); err != nil {
			n.log.Warn("store close failed", zap.Error(err))
		}
	}
}
