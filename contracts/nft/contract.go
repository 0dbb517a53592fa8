package nft

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/octopus-dev/cidmapper-contract/common"
)

const (
	// adminKey is the storage key of the contract admin account. Its
	// presence also marks the contract as initialized.
	adminKey = "contractAdmin"
	// ipcmContractKey is the storage key of the associated IPCM contract
	// address. Singleton keys must not begin with any of the index
	// prefixes below, otherwise a crafted token ID could alias them.
	ipcmContractKey = "contractIPCM"

	// tokenKeyPrefix is the storage prefix of token -> holder entries.
	// A key present under this prefix denotes an existing, live token.
	tokenKeyPrefix = 't'
	// holderKeyPrefix is the storage prefix of per-holder token lists.
	holderKeyPrefix = 'o'
	// ipcmRefPrefix is the storage prefix of token -> IPCM key entries.
	ipcmRefPrefix = 'i'
)

const (
	// ErrAlreadyInitialized is thrown by Initialize on repeated call.
	ErrAlreadyInitialized = "already initialized"
	// ErrNotInitialized is thrown by any mutation invoked before Initialize.
	ErrNotInitialized = "not initialized"
	// ErrNotAdmin is thrown when the caller account differs from the
	// stored contract admin.
	ErrNotAdmin = "caller is not the contract admin"
	// ErrTokenExists is thrown by Mint when the token ID is taken.
	ErrTokenExists = "token already exists"
	// ErrTokenNotFound is thrown by any method addressing a token absent
	// from the contract storage.
	ErrTokenNotFound = "token not found"
	// ErrNotTokenOwner is thrown by Transfer and Burn when the caller does
	// not hold the token.
	ErrNotTokenOwner = "caller does not own this token"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("nft contract deployed")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract admin.
func Update(script []byte, manifest []byte, data any) {
	ctx := storage.GetContext()
	common.CheckAdminWitness(getAdmin(ctx))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("nft contract updated")
}

// Initialize sets the contract admin and the address of the associated IPCM
// contract. It can be called exactly once, any repeated call fails. All
// mutating methods are rejected until Initialize is done.
//
// The IPCM address is stored for reference only, the contract does not
// invoke it.
func Initialize(admin interop.Hash160, ipcmContract interop.Hash160) {
	ctx := storage.GetContext()
	if storage.Get(ctx, adminKey) != nil {
		panic(ErrAlreadyInitialized)
	}
	if len(admin) != interop.Hash160Len {
		panic("invalid admin")
	}
	if len(ipcmContract) != interop.Hash160Len {
		panic("invalid ipcm contract address")
	}

	storage.Put(ctx, adminKey, admin)
	storage.Put(ctx, ipcmContractKey, ipcmContract)
	runtime.Log("nft contract initialized")
}

// Mint creates a new token assigned to the given owner and remembers the key
// locating the token's entry in the IPCM contract. It can be invoked only by
// the contract admin carrying its witness. Minting an existing token ID
// fails; re-minting an ID whose token was burnt is allowed. It produces Mint
// notification.
func Mint(caller interop.Hash160, tokenID string, owner interop.Hash160, ipcmKey string) {
	ctx := storage.GetContext()
	requireAdmin(ctx, caller)

	if len(owner) != interop.Hash160Len {
		panic("invalid token owner")
	}

	tKey := tokenKey(tokenID)
	if storage.Get(ctx, tKey) != nil {
		panic(ErrTokenExists)
	}

	storage.Put(ctx, tKey, owner)
	appendHolderToken(ctx, owner, tokenID)
	storage.Put(ctx, ipcmRefKey(tokenID), ipcmKey)

	runtime.Notify("Mint", tokenID, owner, ipcmKey)
}

// Transfer moves the token to a new holder. It can be invoked only by the
// current holder carrying its witness. The token keeps its IPCM key. It
// produces Transfer notification.
func Transfer(caller interop.Hash160, tokenID string, to interop.Hash160) {
	ctx := storage.GetContext()
	from := requireTokenOwner(ctx, tokenID, caller)

	if len(to) != interop.Hash160Len {
		panic("invalid receiver")
	}

	removeHolderToken(ctx, from, tokenID)
	appendHolderToken(ctx, to, tokenID)
	storage.Put(ctx, tokenKey(tokenID), to)

	runtime.Notify("Transfer", tokenID, from, to)
}

// Burn destroys the token: holder assignment, per-holder list entry and the
// IPCM key reference are all removed. It can be invoked only by the current
// holder carrying its witness. It produces Burn notification.
func Burn(caller interop.Hash160, tokenID string) {
	ctx := storage.GetContext()
	holder := requireTokenOwner(ctx, tokenID, caller)

	removeHolderToken(ctx, holder, tokenID)
	storage.Delete(ctx, tokenKey(tokenID))
	storage.Delete(ctx, ipcmRefKey(tokenID))

	runtime.Notify("Burn", tokenID, holder)
}

// OwnerOf returns the account currently holding the token. It fails if the
// token does not exist.
func OwnerOf(tokenID string) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, tokenKey(tokenID))
	if data == nil {
		panic(ErrTokenNotFound)
	}
	return data.(interop.Hash160)
}

// GetIpcmKey returns the key locating the token's entry in the associated
// IPCM contract. It fails if the token does not exist.
func GetIpcmKey(tokenID string) string {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, ipcmRefKey(tokenID))
	if data == nil {
		panic(ErrTokenNotFound)
	}
	return data.(string)
}

// TokensOf returns the list of tokens currently held by the given account in
// the order they were acquired. An account that never held a token yields an
// empty list.
func TokensOf(owner interop.Hash160) []string {
	ctx := storage.GetReadOnlyContext()
	return common.GetStringList(ctx, holderKey(owner))
}

// Tokens returns an iterator over all live token IDs.
func Tokens() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{tokenKeyPrefix}, storage.KeysOnly|storage.RemovePrefix)
}

// TotalSupply returns the number of live tokens.
func TotalSupply() int {
	count := 0
	ctx := storage.GetReadOnlyContext()
	it := storage.Find(ctx, []byte{tokenKeyPrefix}, storage.KeysOnly)
	for iterator.Next(it) {
		count++
	}
	return count
}

// Admin returns the contract admin account.
func Admin() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getAdmin(ctx)
}

// IpcmContract returns the address of the associated IPCM contract.
func IpcmContract() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, ipcmContractKey)
	if data == nil {
		panic(ErrNotInitialized)
	}
	return data.(interop.Hash160)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// requireAdmin checks that the caller names the stored admin account and the
// transaction carries that account's witness. Both checks are required.
func requireAdmin(ctx storage.Context, caller interop.Hash160) {
	admin := getAdmin(ctx)
	if !common.BytesEqual(caller, admin) {
		panic(ErrNotAdmin)
	}
	common.CheckAdminWitness(caller)
}

// requireTokenOwner checks that the contract is initialized, that the token
// exists, that the caller is its current holder and that the transaction
// carries the holder's witness, in that order. It returns the holder account.
func requireTokenOwner(ctx storage.Context, tokenID string, caller interop.Hash160) interop.Hash160 {
	getAdmin(ctx)

	data := storage.Get(ctx, tokenKey(tokenID))
	if data == nil {
		panic(ErrTokenNotFound)
	}

	holder := data.(interop.Hash160)
	if !common.BytesEqual(caller, holder) {
		panic(ErrNotTokenOwner)
	}
	common.CheckOwnerWitness(caller)

	return holder
}

func getAdmin(ctx storage.Context) interop.Hash160 {
	data := storage.Get(ctx, adminKey)
	if data == nil {
		panic(ErrNotInitialized)
	}
	return data.(interop.Hash160)
}

func appendHolderToken(ctx storage.Context, holder interop.Hash160, tokenID string) {
	key := holderKey(holder)
	list := common.GetStringList(ctx, key)
	list = append(list, tokenID)
	common.SetSerialized(ctx, key, list)
}

// removeHolderToken rebuilds the holder's token list without the target ID,
// preserving relative order of the remaining entries.
func removeHolderToken(ctx storage.Context, holder interop.Hash160, tokenID string) {
	key := holderKey(holder)
	list := common.GetStringList(ctx, key)

	left := []string{}
	for i := range list {
		if list[i] != tokenID {
			left = append(left, list[i])
		}
	}

	if len(left) == 0 {
		storage.Delete(ctx, key)
		return
	}

	common.SetSerialized(ctx, key, left)
}

func tokenKey(tokenID string) []byte {
	return append([]byte{tokenKeyPrefix}, tokenID...)
}

func holderKey(holder interop.Hash160) []byte {
	return append([]byte{holderKeyPrefix}, holder...)
}

func ipcmRefKey(tokenID string) []byte {
	return append([]byte{ipcmRefPrefix}, tokenID...)
}
