package framework

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

var errChainID = errors.New("failed to resolve chain id")

// Backend is what a deployment needs from a node: sending the creation
// transaction and waiting for it to be mined.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

type Framework struct {
	config  *Config
	backend Backend
	key     *PrivKey
	log     *logrus.Entry
	closer  func()
}

// New dials the configured node.
func New(cfg *Config, log *logrus.Entry) (*Framework, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCURL, err)
	}
	fr, err := NewWithBackend(cfg, client, log)
	if err != nil {
		client.Close()
		return nil, err
	}
	fr.closer = client.Close
	return fr, nil
}

func NewWithBackend(cfg *Config, backend Backend, log *logrus.Entry) (*Framework, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := NewPrivKeyFromHex(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Framework{
		config:  cfg,
		backend: backend,
		key:     key,
		log:     log,
	}, nil
}

func (f *Framework) Close() {
	if f.closer != nil {
		f.closer()
	}
}

func (f *Framework) Sender() common.Address {
	return f.key.Address()
}

func (f *Framework) chainID(ctx context.Context) (*big.Int, error) {
	if f.config.ChainID != 0 {
		return new(big.Int).SetUint64(f.config.ChainID), nil
	}
	reader, ok := f.backend.(chainIDReader)
	if !ok {
		return nil, fmt.Errorf("%w: backend cannot report it, set chain_id", errChainID)
	}
	id, err := reader.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errChainID, err)
	}
	return id, nil
}

func (f *Framework) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	chainID, err := f.chainID(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(f.key.Priv, chainID)
	if err != nil {
		return nil, err
	}
	value, err := f.config.ValueWei()
	if err != nil {
		return nil, err
	}
	auth.Context = ctx
	auth.Value = value
	auth.GasLimit = f.config.GasLimit
	return auth, nil
}

// DeployContract deploys the named artifact with the given constructor
// arguments and blocks until code is present at the new address.
func (f *Framework) DeployContract(ctx context.Context, name string, args []string) (*Contract, error) {
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	artifact, err := ReadArtifact(f.config.ArtifactsDir, name)
	if err != nil {
		return nil, err
	}
	f.log.WithField("artifact", artifact.Path).Debug("artifact loaded")

	params, err := ConstructorArgs(artifact.Abi, args)
	if err != nil {
		return nil, err
	}

	auth, err := f.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	addr, tx, _, err := bind.DeployContract(auth, *artifact.Abi, artifact.Code, f.backend, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}
	f.log.WithFields(logrus.Fields{
		"contract": name,
		"address":  addr.Hex(),
		"tx":       tx.Hash().Hex(),
		"nonce":    tx.Nonce(),
	}).Info("deployment transaction sent")

	if _, err := bind.WaitDeployed(ctx, f.backend, tx); err != nil {
		return nil, fmt.Errorf("deployment transaction %s failed: %w", tx.Hash().Hex(), err)
	}

	return &Contract{addr: addr, abi: artifact.Abi, tx: tx}, nil
}

type Contract struct {
	addr common.Address
	abi  *abi.ABI
	tx   *types.Transaction
}

func (c *Contract) Address() common.Address {
	return c.addr
}

func (c *Contract) Abi() *abi.ABI {
	return c.abi
}

func (c *Contract) DeployTx() *types.Transaction {
	return c.tx
}
