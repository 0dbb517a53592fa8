// Package deploy provides Octopus contracts deployment routines.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"

	ipcmrpc "github.com/octopus-dev/cidmapper-contract/rpc/ipcm"
	nftrpc "github.com/octopus-dev/cidmapper-contract/rpc/nft"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for Octopus contracts deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to
	// the blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown
	// contract' substring if the requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of a smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// IPCMPrm groups deployment parameters of the Octopus IPCM contract.
type IPCMPrm struct {
	Common CommonDeployPrm

	// Account to become the contract owner.
	Owner util.Uint160
}

// NFTPrm groups deployment parameters of the Octopus NFT contract.
type NFTPrm struct {
	Common CommonDeployPrm

	// Account to become the contract admin.
	Admin util.Uint160
}

// Prm groups all parameters of the Octopus contracts deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	LocalAccount *wallet.Account

	IPCM IPCMPrm
	NFT  NFTPrm
}

// Contracts groups addresses of the deployed Octopus contracts.
type Contracts struct {
	IPCM util.Uint160
	NFT  util.Uint160
}

// Deploy initializes Octopus contracts on the given blockchain: it deploys
// the IPCM and the NFT contracts and invokes initialize on both, wiring the
// IPCM address into the NFT contract. Deploy is idempotent: contracts that
// are already on the chain are left as they are, an already initialized
// contract is not initialized again. Deploy aborts on context cancellation
// between steps.
func Deploy(ctx context.Context, prm Prm) (Contracts, error) {
	var res Contracts

	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return res, fmt.Errorf("init transaction sender: %w", err)
	}

	mgmt := management.New(act)

	res.IPCM, err = deployContract(ctx, prm, act, mgmt, "ipcm", prm.IPCM.Common)
	if err != nil {
		return res, fmt.Errorf("deploy ipcm contract: %w", err)
	}

	res.NFT, err = deployContract(ctx, prm, act, mgmt, "nft", prm.NFT.Common)
	if err != nil {
		return res, fmt.Errorf("deploy nft contract: %w", err)
	}

	err = initIPCM(ctx, prm, act, res.IPCM)
	if err != nil {
		return res, fmt.Errorf("initialize ipcm contract: %w", err)
	}

	err = initNFT(ctx, prm, act, res.NFT, res.IPCM)
	if err != nil {
		return res, fmt.Errorf("initialize nft contract: %w", err)
	}

	return res, nil
}

func deployContract(ctx context.Context, prm Prm, act *actor.Actor, mgmt *management.Contract, name string, c CommonDeployPrm) (util.Uint160, error) {
	if err := ctx.Err(); err != nil {
		return util.Uint160{}, err
	}

	l := prm.Logger.With(zap.String("contract", name))

	h := state.CreateContractHash(act.Sender(), c.NEF.Checksum, c.Manifest.Name)

	_, err := prm.Blockchain.GetContractStateByHash(h)
	if err == nil {
		l.Info("contract is already deployed, skip", zap.Stringer("address", h))
		return h, nil
	}
	if !strings.Contains(err.Error(), "Unknown contract") {
		return h, fmt.Errorf("read contract state: %w", err)
	}

	l.Info("deploying contract...", zap.Stringer("address", h))

	txHash, vub, err := mgmt.Deploy(&c.NEF, &c.Manifest, nil)
	aer, err := act.Wait(txHash, vub, err)
	if err != nil {
		return h, fmt.Errorf("deploy transaction: %w", err)
	}
	if aer.VMState != vmstate.Halt {
		return h, fmt.Errorf("deploy transaction faulted: %s", aer.FaultException)
	}

	l.Info("contract deployed", zap.Stringer("tx", txHash))

	return h, nil
}

func initIPCM(ctx context.Context, prm Prm, act *actor.Actor, h util.Uint160) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := ipcmrpc.New(act, h)

	owner, err := c.Owner()
	if err == nil {
		prm.Logger.Info("ipcm contract is already initialized, skip",
			zap.Stringer("owner", owner))
		return nil
	}
	if !isNotInitialized(err) {
		return fmt.Errorf("read contract owner: %w", err)
	}

	txHash, vub, err := c.Initialize(prm.IPCM.Owner)
	if err := waitHalt(act, txHash, vub, err); err != nil {
		return err
	}

	prm.Logger.Info("ipcm contract initialized",
		zap.Stringer("owner", prm.IPCM.Owner), zap.Stringer("tx", txHash))

	return nil
}

func initNFT(ctx context.Context, prm Prm, act *actor.Actor, h, ipcmHash util.Uint160) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := nftrpc.New(act, h)

	admin, err := c.Admin()
	if err == nil {
		prm.Logger.Info("nft contract is already initialized, skip",
			zap.Stringer("admin", admin))
		return nil
	}
	if !isNotInitialized(err) {
		return fmt.Errorf("read contract admin: %w", err)
	}

	txHash, vub, err := c.Initialize(prm.NFT.Admin, ipcmHash)
	if err := waitHalt(act, txHash, vub, err); err != nil {
		return err
	}

	prm.Logger.Info("nft contract initialized",
		zap.Stringer("admin", prm.NFT.Admin),
		zap.Stringer("ipcm", ipcmHash), zap.Stringer("tx", txHash))

	return nil
}

func waitHalt(act *actor.Actor, txHash util.Uint256, vub uint32, err error) error {
	aer, err := act.Wait(txHash, vub, err)
	if err != nil {
		return fmt.Errorf("initialize transaction: %w", err)
	}
	if aer.VMState != vmstate.Halt {
		return fmt.Errorf("initialize transaction faulted: %s", aer.FaultException)
	}
	return nil
}

// isNotInitialized checks whether test invocation failed because the
// contract has not been initialized yet.
func isNotInitialized(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not initialized")
}
