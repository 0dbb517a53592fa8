package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/octopus-dev/cidmapper-contract/common"
	"github.com/octopus-dev/cidmapper-contract/contracts/nft"
	"github.com/stretchr/testify/require"
)

const nftPath = "../contracts/nft"

func deployNFTContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, nftPath,
		path.Join(nftPath, "config.yml"))

	e.DeployContract(t, c, nil)
	return c.Hash
}

func newNFTInvoker(t *testing.T) (*neotest.ContractInvoker, util.Uint160) {
	e := newExecutor(t)
	ipcmHash := deployIPCMContract(t, e)
	h := deployNFTContract(t, e)
	return e.CommitteeInvoker(h), ipcmHash
}

func initNFT(t *testing.T) (*neotest.ContractInvoker, neotest.Signer) {
	c, ipcmHash := newNFTInvoker(t)
	admin := c.NewAccount(t)
	c.Invoke(t, stackitem.Null{}, "initialize", admin.ScriptHash(), ipcmHash)
	return c, admin
}

func mintToken(t *testing.T, c *neotest.ContractInvoker, admin neotest.Signer,
	tokenID string, owner util.Uint160, ipcmKey string) {
	c.WithSigners(admin).Invoke(t, stackitem.Null{}, "mint",
		admin.ScriptHash(), tokenID, owner, ipcmKey)
}

func requireTokensOf(t *testing.T, c *neotest.ContractInvoker, owner util.Uint160, tokens ...string) {
	s, err := c.TestInvoke(t, "tokensOf", owner)
	require.NoError(t, err)

	got := stackStrings(t, s)
	require.Equal(t, len(tokens), len(got))
	for i := range tokens {
		require.Equal(t, tokens[i], got[i])
	}
}

func TestNFTInitialize(t *testing.T) {
	c, ipcmHash := newNFTInvoker(t)
	admin := c.NewAccount(t)

	t.Run("methods fail before initialize", func(t *testing.T) {
		c.InvokeFail(t, nft.ErrNotInitialized, "admin")
		c.InvokeFail(t, nft.ErrNotInitialized, "ipcmContract")
		c.InvokeFail(t, nft.ErrNotInitialized, "mint",
			admin.ScriptHash(), "token-1", admin.ScriptHash(), "key-1")
		c.InvokeFail(t, nft.ErrNotInitialized, "transfer",
			admin.ScriptHash(), "token-1", admin.ScriptHash())
		c.InvokeFail(t, nft.ErrNotInitialized, "burn",
			admin.ScriptHash(), "token-1")
	})

	c.InvokeFail(t, "invalid admin", "initialize", []byte{1, 2, 3}, ipcmHash)
	c.InvokeFail(t, "invalid ipcm contract address", "initialize",
		admin.ScriptHash(), []byte{1, 2, 3})

	c.Invoke(t, stackitem.Null{}, "initialize", admin.ScriptHash(), ipcmHash)
	c.Invoke(t, stackitem.NewByteArray(admin.ScriptHash().BytesBE()), "admin")
	c.Invoke(t, stackitem.NewByteArray(ipcmHash.BytesBE()), "ipcmContract")

	c.InvokeFail(t, nft.ErrAlreadyInitialized, "initialize",
		admin.ScriptHash(), ipcmHash)
}

func TestNFTMint(t *testing.T) {
	c, admin := initNFT(t)
	cAdmin := c.WithSigners(admin)
	user := c.NewAccount(t)

	t.Run("authorization", func(t *testing.T) {
		c.InvokeFail(t, nft.ErrNotAdmin, "mint",
			c.CommitteeHash, "token-1", user.ScriptHash(), "key-1")
		c.InvokeFail(t, common.ErrAdminWitnessFailed, "mint",
			admin.ScriptHash(), "token-1", user.ScriptHash(), "key-1")
	})

	cAdmin.InvokeFail(t, "invalid token owner", "mint",
		admin.ScriptHash(), "token-1", []byte{1, 2, 3}, "key-1")

	h := cAdmin.Invoke(t, stackitem.Null{}, "mint",
		admin.ScriptHash(), "token-1", user.ScriptHash(), "key-1")
	requireSingleEvent(t, cAdmin.CheckHalt(t, h), "Mint",
		[]byte("token-1"), user.ScriptHash().BytesBE(), []byte("key-1"))

	c.Invoke(t, stackitem.NewByteArray(user.ScriptHash().BytesBE()),
		"ownerOf", "token-1")
	c.Invoke(t, stackitem.NewByteArray([]byte("key-1")),
		"getIpcmKey", "token-1")
	requireTokensOf(t, c, user.ScriptHash(), "token-1")
	c.Invoke(t, stackitem.Make(1), "totalSupply")

	// Token IDs are unique, the second mint fails even for another owner.
	cAdmin.InvokeFail(t, nft.ErrTokenExists, "mint",
		admin.ScriptHash(), "token-1", admin.ScriptHash(), "key-2")
}

func TestNFTTransfer(t *testing.T) {
	c, admin := initNFT(t)
	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)
	cUser1 := c.WithSigners(user1)
	cUser2 := c.WithSigners(user2)

	mintToken(t, c, admin, "token-1", user1.ScriptHash(), "key-1")
	mintToken(t, c, admin, "token-2", user1.ScriptHash(), "key-2")
	mintToken(t, c, admin, "token-3", user2.ScriptHash(), "key-3")

	cUser1.InvokeFail(t, nft.ErrTokenNotFound, "transfer",
		user1.ScriptHash(), "missing", user2.ScriptHash())

	t.Run("authorization", func(t *testing.T) {
		cUser2.InvokeFail(t, nft.ErrNotTokenOwner, "transfer",
			user2.ScriptHash(), "token-1", user2.ScriptHash())
		c.InvokeFail(t, common.ErrOwnerWitnessFailed, "transfer",
			user1.ScriptHash(), "token-1", user2.ScriptHash())

		// The failed attempts left both indexes untouched.
		c.Invoke(t, stackitem.NewByteArray(user1.ScriptHash().BytesBE()),
			"ownerOf", "token-1")
		requireTokensOf(t, c, user1.ScriptHash(), "token-1", "token-2")
		requireTokensOf(t, c, user2.ScriptHash(), "token-3")
	})

	cUser1.InvokeFail(t, "invalid receiver", "transfer",
		user1.ScriptHash(), "token-1", []byte{1, 2, 3})

	h := cUser1.Invoke(t, stackitem.Null{}, "transfer",
		user1.ScriptHash(), "token-1", user2.ScriptHash())
	requireSingleEvent(t, cUser1.CheckHalt(t, h), "Transfer",
		[]byte("token-1"), user1.ScriptHash().BytesBE(), user2.ScriptHash().BytesBE())

	c.Invoke(t, stackitem.NewByteArray(user2.ScriptHash().BytesBE()),
		"ownerOf", "token-1")
	// Holder lists keep insertion order, the received token goes last.
	requireTokensOf(t, c, user1.ScriptHash(), "token-2")
	requireTokensOf(t, c, user2.ScriptHash(), "token-3", "token-1")
	c.Invoke(t, stackitem.Make(3), "totalSupply")

	// The previous holder cannot move the token anymore.
	cUser1.InvokeFail(t, nft.ErrNotTokenOwner, "transfer",
		user1.ScriptHash(), "token-1", user1.ScriptHash())
}

func TestNFTBurn(t *testing.T) {
	c, admin := initNFT(t)
	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)
	cUser1 := c.WithSigners(user1)

	mintToken(t, c, admin, "token-1", user1.ScriptHash(), "key-1")
	mintToken(t, c, admin, "token-2", user1.ScriptHash(), "key-2")

	cUser1.InvokeFail(t, nft.ErrTokenNotFound, "burn",
		user1.ScriptHash(), "missing")
	c.WithSigners(user2).InvokeFail(t, nft.ErrNotTokenOwner, "burn",
		user2.ScriptHash(), "token-1")
	c.InvokeFail(t, common.ErrOwnerWitnessFailed, "burn",
		user1.ScriptHash(), "token-1")

	h := cUser1.Invoke(t, stackitem.Null{}, "burn",
		user1.ScriptHash(), "token-1")
	requireSingleEvent(t, cUser1.CheckHalt(t, h), "Burn",
		[]byte("token-1"), user1.ScriptHash().BytesBE())

	// Every trace of the token is gone.
	c.InvokeFail(t, nft.ErrTokenNotFound, "ownerOf", "token-1")
	c.InvokeFail(t, nft.ErrTokenNotFound, "getIpcmKey", "token-1")
	requireTokensOf(t, c, user1.ScriptHash(), "token-2")
	c.Invoke(t, stackitem.Make(1), "totalSupply")

	cUser1.InvokeFail(t, nft.ErrTokenNotFound, "transfer",
		user1.ScriptHash(), "token-1", user2.ScriptHash())

	t.Run("identifier can be minted again", func(t *testing.T) {
		mintToken(t, c, admin, "token-1", user2.ScriptHash(), "key-1a")
		c.Invoke(t, stackitem.NewByteArray(user2.ScriptHash().BytesBE()),
			"ownerOf", "token-1")
		c.Invoke(t, stackitem.NewByteArray([]byte("key-1a")),
			"getIpcmKey", "token-1")
		requireTokensOf(t, c, user2.ScriptHash(), "token-1")
	})
}

func TestNFTTokenIDAliasingStorageKeys(t *testing.T) {
	c, admin := initNFT(t)
	user := c.NewAccount(t)

	s, err := c.TestInvoke(t, "ipcmContract")
	require.NoError(t, err)
	ipcmBytes, err := s.Pop().Item().TryBytes()
	require.NoError(t, err)

	// Token IDs spelling out a tail of a singleton storage key must land
	// under the index prefixes, not on the singleton entries.
	for _, tokenID := range []string{"pcmScriptHash", "ontractIPCM", "ontractAdmin"} {
		c.InvokeFail(t, nft.ErrTokenNotFound, "getIpcmKey", tokenID)
		c.InvokeFail(t, nft.ErrTokenNotFound, "ownerOf", tokenID)

		mintToken(t, c, admin, tokenID, user.ScriptHash(), "key-"+tokenID)

		c.Invoke(t, stackitem.NewByteArray(user.ScriptHash().BytesBE()),
			"ownerOf", tokenID)
		c.Invoke(t, stackitem.NewByteArray([]byte("key-"+tokenID)),
			"getIpcmKey", tokenID)
		// The singleton entries are intact after the mint.
		c.Invoke(t, stackitem.NewByteArray(ipcmBytes), "ipcmContract")
		c.Invoke(t, stackitem.NewByteArray(admin.ScriptHash().BytesBE()), "admin")

		c.WithSigners(user).Invoke(t, stackitem.Null{}, "burn",
			user.ScriptHash(), tokenID)

		// And after the burn.
		c.Invoke(t, stackitem.NewByteArray(ipcmBytes), "ipcmContract")
		c.Invoke(t, stackitem.NewByteArray(admin.ScriptHash().BytesBE()), "admin")
		c.InvokeFail(t, nft.ErrTokenNotFound, "getIpcmKey", tokenID)
	}
}

func TestNFTTokensOfUnknownAccount(t *testing.T) {
	c, _ := initNFT(t)
	stranger := c.NewAccount(t)

	requireTokensOf(t, c, stranger.ScriptHash())
}

func TestNFTTokens(t *testing.T) {
	c, admin := initNFT(t)
	user := c.NewAccount(t)

	s, err := c.TestInvoke(t, "tokens")
	require.NoError(t, err)
	iter, ok := s.Pop().Value().(*storage.Iterator)
	require.True(t, ok)
	require.Empty(t, iteratorToArray(iter))

	mintToken(t, c, admin, "gamma", user.ScriptHash(), "key-g")
	mintToken(t, c, admin, "alpha", user.ScriptHash(), "key-a")
	mintToken(t, c, admin, "beta", user.ScriptHash(), "key-b")

	s, err = c.TestInvoke(t, "tokens")
	require.NoError(t, err)
	iter, ok = s.Pop().Value().(*storage.Iterator)
	require.True(t, ok)

	items := iteratorToArray(iter)
	ids := make([]string, 0, len(items))
	for i := range items {
		bs, err := items[i].TryBytes()
		require.NoError(t, err)
		ids = append(ids, string(bs))
	}
	// Storage iteration is ordered by key.
	require.Equal(t, []string{"alpha", "beta", "gamma"}, ids)

	c.Invoke(t, stackitem.Make(3), "totalSupply")
}

func TestNFTExistenceConsistency(t *testing.T) {
	c, admin := initNFT(t)
	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)

	mintToken(t, c, admin, "token-1", user1.ScriptHash(), "key-1")
	mintToken(t, c, admin, "token-2", user2.ScriptHash(), "key-2")
	c.WithSigners(user1).Invoke(t, stackitem.Null{}, "transfer",
		user1.ScriptHash(), "token-1", user2.ScriptHash())
	c.WithSigners(user2).Invoke(t, stackitem.Null{}, "burn",
		user2.ScriptHash(), "token-2")

	// A live token is visible through every lookup, a burnt one through none.
	c.Invoke(t, stackitem.NewByteArray(user2.ScriptHash().BytesBE()),
		"ownerOf", "token-1")
	c.Invoke(t, stackitem.NewByteArray([]byte("key-1")),
		"getIpcmKey", "token-1")
	requireTokensOf(t, c, user2.ScriptHash(), "token-1")

	c.InvokeFail(t, nft.ErrTokenNotFound, "ownerOf", "token-2")
	c.InvokeFail(t, nft.ErrTokenNotFound, "getIpcmKey", "token-2")
	requireTokensOf(t, c, user1.ScriptHash())
	c.Invoke(t, stackitem.Make(1), "totalSupply")
}

func TestNFTVersion(t *testing.T) {
	c, _ := initNFT(t)
	c.Invoke(t, stackitem.Make(common.Version), "version")
}
