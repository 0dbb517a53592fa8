package ipcm

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/octopus-dev/cidmapper-contract/common"
)

const (
	// ownerKey is the storage key of the contract owner account. Its
	// presence also marks the contract as initialized.
	ownerKey = "contractOwner"

	// mappingKeyPrefix is the storage prefix of per-token CID entries.
	mappingKeyPrefix = 'm'
)

const (
	// ErrAlreadyInitialized is thrown by Initialize on repeated call.
	ErrAlreadyInitialized = "already initialized"
	// ErrNotInitialized is thrown by any mutation invoked before Initialize.
	ErrNotInitialized = "not initialized"
	// ErrNotOwner is thrown when the caller account differs from the
	// stored contract owner.
	ErrNotOwner = "caller is not the contract owner"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("ipcm contract deployed")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(script []byte, manifest []byte, data any) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(getOwner(ctx))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("ipcm contract updated")
}

// Initialize sets the contract owner. It can be called exactly once, any
// repeated call fails. All mutating methods are rejected until Initialize
// is done.
func Initialize(owner interop.Hash160) {
	ctx := storage.GetContext()
	if storage.Get(ctx, ownerKey) != nil {
		panic(ErrAlreadyInitialized)
	}
	if len(owner) != interop.Hash160Len {
		panic("invalid owner")
	}

	storage.Put(ctx, ownerKey, owner)
	runtime.Log("ipcm contract initialized")
}

// UpdateMapping sets the CID the given token resolves to. It can be invoked
// only by the contract owner carrying its witness. The previous CID (empty
// string if the token was never mapped) is read back and published in the
// UpdateMapping notification together with the new one, so the full value
// history of a token can be reconstructed from the notification log.
func UpdateMapping(caller interop.Hash160, tokenID string, cid string) {
	ctx := storage.GetContext()
	requireOwner(ctx, caller)

	key := mappingKey(tokenID)
	oldCID := ""
	data := storage.Get(ctx, key)
	if data != nil {
		oldCID = data.(string)
	}

	storage.Put(ctx, key, cid)

	runtime.Notify("UpdateMapping", tokenID, oldCID, cid, caller)
}

// GetMapping returns the CID currently associated with the given token, or
// an empty string if the token was never mapped. It never fails on absence.
func GetMapping(tokenID string) string {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, mappingKey(tokenID))
	if data == nil {
		return ""
	}
	return data.(string)
}

// TransferOwnership replaces the contract owner. It can be invoked only by
// the current owner carrying its witness. It produces TransferOwnership
// notification.
func TransferOwnership(caller interop.Hash160, newOwner interop.Hash160) {
	ctx := storage.GetContext()
	requireOwner(ctx, caller)

	if len(newOwner) != interop.Hash160Len {
		panic("invalid new owner")
	}

	storage.Put(ctx, ownerKey, newOwner)

	runtime.Notify("TransferOwnership", caller, newOwner)
}

// Owner returns the current contract owner account.
func Owner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getOwner(ctx)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// requireOwner is the single authorization predicate of the contract: the
// caller must name the stored owner account and the transaction must carry
// that account's witness. Both checks are required, naming the owner alone
// is not a capability.
func requireOwner(ctx storage.Context, caller interop.Hash160) {
	owner := getOwner(ctx)
	if !common.BytesEqual(caller, owner) {
		panic(ErrNotOwner)
	}
	common.CheckOwnerWitness(caller)
}

func getOwner(ctx storage.Context) interop.Hash160 {
	data := storage.Get(ctx, ownerKey)
	if data == nil {
		panic(ErrNotInitialized)
	}
	return data.(interop.Hash160)
}

func mappingKey(tokenID string) []byte {
	return append([]byte{mappingKeyPrefix}, tokenID...)
}
