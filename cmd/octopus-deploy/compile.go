package main

import (
	"fmt"
	"path"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"

	"github.com/octopus-dev/cidmapper-contract/deploy"
)

// compileContract compiles contract source from the given directory and
// returns its NEF and manifest built from the config.yml next to the source.
func compileContract(ctrPath string) (deploy.CommonDeployPrm, error) {
	var prm deploy.CommonDeployPrm

	// nef.NewFile() cares about version a lot.
	if config.Version == "" {
		config.Version = "0.102.0"
	}

	f, di, err := compiler.CompileWithOptions(ctrPath, nil, nil)
	if err != nil {
		return prm, fmt.Errorf("compile: %w", err)
	}
	avm := f.Script

	ne, err := nef.NewFile(avm)
	if err != nil {
		return prm, fmt.Errorf("build NEF: %w", err)
	}

	conf, err := smartcontract.ParseContractConfig(path.Join(ctrPath, "config.yml"))
	if err != nil {
		return prm, fmt.Errorf("parse contract config: %w", err)
	}

	o := &compiler.Options{}
	o.Name = conf.Name
	o.ContractEvents = conf.Events
	o.ContractSupportedStandards = conf.SupportedStandards
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}
	o.SafeMethods = conf.SafeMethods

	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return prm, fmt.Errorf("build manifest: %w", err)
	}

	prm.NEF = *ne
	prm.Manifest = *m

	return prm, nil
}
