// octopus-deploy compiles the Octopus contracts from source and deploys them
// to a Neo blockchain via its RPC node. The tool is idempotent and can be
// re-run over a partially deployed network.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"

	"github.com/octopus-dev/cidmapper-contract/deploy"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	walletPath := flag.String("wallet", "", "Path to the deployer wallet")
	walletPassword := flag.String("password", "", "Password of the deployer wallet account")
	ownerAddr := flag.String("owner", "", "Address of the IPCM contract owner (defaults to the deployer account)")
	adminAddr := flag.String("admin", "", "Address of the NFT contract admin (defaults to the deployer account)")
	ipcmPath := flag.String("ipcm", "contracts/ipcm", "Path to the IPCM contract source")
	nftPath := flag.String("nft", "contracts/nft", "Path to the NFT contract source")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *walletPath == "":
		log.Fatal("missing deployer wallet")
	}

	err := run(*neoRPCEndpoint, *walletPath, *walletPassword, *ownerAddr, *adminAddr, *ipcmPath, *nftPath)
	if err != nil {
		log.Fatal(err)
	}
}

func run(endpoint, walletPath, walletPassword, ownerAddr, adminAddr, ipcmPath, nftPath string) error {
	ctx := context.Background()

	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return fmt.Errorf("open wallet: %w", err)
	}

	acc := w.GetAccount(w.GetChangeAddress())
	if acc == nil {
		return fmt.Errorf("deployer account is missing from wallet '%s'", walletPath)
	}

	err = acc.Decrypt(walletPassword, w.Scrypt)
	if err != nil {
		return fmt.Errorf("unlock deployer account: %w", err)
	}

	owner, err := accountOrDefault(ownerAddr, acc)
	if err != nil {
		return fmt.Errorf("owner address: %w", err)
	}

	admin, err := accountOrDefault(adminAddr, acc)
	if err != nil {
		return fmt.Errorf("admin address: %w", err)
	}

	ipcmPrm, err := compileContract(ipcmPath)
	if err != nil {
		return fmt.Errorf("ipcm contract: %w", err)
	}

	nftPrm, err := compileContract(nftPath)
	if err != nil {
		return fmt.Errorf("nft contract: %w", err)
	}

	c, err := rpcclient.New(ctx, endpoint, rpcclient.Options{})
	if err != nil {
		return fmt.Errorf("create RPC client: %w", err)
	}

	err = c.Init()
	if err != nil {
		return fmt.Errorf("init RPC client: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	res, err := deploy.Deploy(ctx, deploy.Prm{
		Logger:       logger,
		Blockchain:   c,
		LocalAccount: acc,
		IPCM: deploy.IPCMPrm{
			Common: ipcmPrm,
			Owner:  owner,
		},
		NFT: deploy.NFTPrm{
			Common: nftPrm,
			Admin:  admin,
		},
	})
	if err != nil {
		return err
	}

	log.Printf("Octopus contracts are deployed: ipcm=%s nft=%s\n", res.IPCM.StringLE(), res.NFT.StringLE())

	return nil
}

func accountOrDefault(addr string, acc *wallet.Account) (util.Uint160, error) {
	if addr == "" {
		return acc.ScriptHash(), nil
	}
	return address.StringToUint160(addr)
}
