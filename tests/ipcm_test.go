package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/octopus-dev/cidmapper-contract/common"
	"github.com/octopus-dev/cidmapper-contract/contracts/ipcm"
	"github.com/stretchr/testify/require"
)

const ipcmPath = "../contracts/ipcm"

func deployIPCMContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, ipcmPath,
		path.Join(ipcmPath, "config.yml"))

	e.DeployContract(t, c, nil)
	return c.Hash
}

func newIPCMInvoker(t *testing.T) *neotest.ContractInvoker {
	e := newExecutor(t)
	h := deployIPCMContract(t, e)
	return e.CommitteeInvoker(h)
}

func initIPCM(t *testing.T) (*neotest.ContractInvoker, neotest.Signer) {
	c := newIPCMInvoker(t)
	owner := c.NewAccount(t)
	c.Invoke(t, stackitem.Null{}, "initialize", owner.ScriptHash())
	return c, owner
}

func getMapping(t *testing.T, c *neotest.ContractInvoker, tokenID string) string {
	s, err := c.TestInvoke(t, "getMapping", tokenID)
	require.NoError(t, err)

	bs, err := s.Pop().Item().TryBytes()
	require.NoError(t, err)
	return string(bs)
}

func TestIPCMInitialize(t *testing.T) {
	c := newIPCMInvoker(t)
	owner := c.NewAccount(t)

	t.Run("methods fail before initialize", func(t *testing.T) {
		c.InvokeFail(t, ipcm.ErrNotInitialized, "owner")
		c.InvokeFail(t, ipcm.ErrNotInitialized, "updateMapping",
			owner.ScriptHash(), "token-1", "bafy-1")
		c.InvokeFail(t, ipcm.ErrNotInitialized, "transferOwnership",
			owner.ScriptHash(), owner.ScriptHash())
	})

	c.InvokeFail(t, "invalid owner", "initialize", []byte{1, 2, 3})

	c.Invoke(t, stackitem.Null{}, "initialize", owner.ScriptHash())
	c.Invoke(t, stackitem.NewByteArray(owner.ScriptHash().BytesBE()), "owner")

	t.Run("repeated initialize", func(t *testing.T) {
		c.InvokeFail(t, ipcm.ErrAlreadyInitialized, "initialize", owner.ScriptHash())
		c.WithSigners(owner).InvokeFail(t, ipcm.ErrAlreadyInitialized,
			"initialize", c.CommitteeHash)
	})
}

func TestIPCMUpdateMapping(t *testing.T) {
	c, owner := initIPCM(t)
	cOwner := c.WithSigners(owner)

	require.Equal(t, "", getMapping(t, c, "unknown"))

	t.Run("authorization", func(t *testing.T) {
		// Committee is not the owner.
		c.InvokeFail(t, ipcm.ErrNotOwner, "updateMapping",
			c.CommitteeHash, "token-1", "bafy-1")
		// Naming the owner without its witness is not enough.
		c.InvokeFail(t, common.ErrOwnerWitnessFailed, "updateMapping",
			owner.ScriptHash(), "token-1", "bafy-1")
	})

	cOwner.Invoke(t, stackitem.Null{}, "updateMapping",
		owner.ScriptHash(), "token-1", "bafy-1")
	require.Equal(t, "bafy-1", getMapping(t, c, "token-1"))

	// Overwrite is a plain update, not an error.
	cOwner.Invoke(t, stackitem.Null{}, "updateMapping",
		owner.ScriptHash(), "token-1", "bafy-2")
	require.Equal(t, "bafy-2", getMapping(t, c, "token-1"))

	require.Equal(t, "", getMapping(t, c, "token-2"))
}

func TestIPCMUpdateMappingEvents(t *testing.T) {
	c, owner := initIPCM(t)
	cOwner := c.WithSigners(owner)

	const tokenID = "doc"
	cids := []string{"bafy-v1", "bafy-v2", "bafy-v3"}

	history := make([][][]byte, 0, len(cids))
	for _, cid := range cids {
		h := cOwner.Invoke(t, stackitem.Null{}, "updateMapping",
			owner.ScriptHash(), tokenID, cid)
		aer := cOwner.CheckHalt(t, h)

		require.Equal(t, 1, len(aer.Events))
		require.Equal(t, "UpdateMapping", aer.Events[0].Name)
		history = append(history, eventArgs(t, aer.Events[0]))
	}

	// Every notification carries the full transition, so the value history
	// of the token can be replayed from the notification log alone.
	prev := ""
	for i, args := range history {
		require.Equal(t, 4, len(args))
		require.Equal(t, tokenID, string(args[0]))
		require.Equal(t, prev, string(args[1]))
		require.Equal(t, cids[i], string(args[2]))
		require.Equal(t, owner.ScriptHash().BytesBE(), args[3])
		prev = string(args[2])
	}
	require.Equal(t, prev, getMapping(t, c, tokenID))
}

func TestIPCMTransferOwnership(t *testing.T) {
	c, owner := initIPCM(t)
	cOwner := c.WithSigners(owner)

	newOwner := c.NewAccount(t)

	t.Run("authorization", func(t *testing.T) {
		c.InvokeFail(t, ipcm.ErrNotOwner, "transferOwnership",
			c.CommitteeHash, newOwner.ScriptHash())
		c.InvokeFail(t, common.ErrOwnerWitnessFailed, "transferOwnership",
			owner.ScriptHash(), newOwner.ScriptHash())
	})

	cOwner.InvokeFail(t, "invalid new owner", "transferOwnership",
		owner.ScriptHash(), []byte{1, 2, 3})

	h := cOwner.Invoke(t, stackitem.Null{}, "transferOwnership",
		owner.ScriptHash(), newOwner.ScriptHash())
	requireSingleEvent(t, cOwner.CheckHalt(t, h), "TransferOwnership",
		owner.ScriptHash().BytesBE(), newOwner.ScriptHash().BytesBE())

	c.Invoke(t, stackitem.NewByteArray(newOwner.ScriptHash().BytesBE()), "owner")

	// The previous owner has no rights left.
	cOwner.InvokeFail(t, ipcm.ErrNotOwner, "updateMapping",
		owner.ScriptHash(), "token-1", "bafy-1")

	c.WithSigners(newOwner).Invoke(t, stackitem.Null{}, "updateMapping",
		newOwner.ScriptHash(), "token-1", "bafy-1")
	require.Equal(t, "bafy-1", getMapping(t, c, "token-1"))
}

func TestIPCMUpdateAuth(t *testing.T) {
	c, _ := initIPCM(t)

	c.InvokeFail(t, common.ErrOwnerWitnessFailed, "update",
		[]byte{}, []byte{}, nil)
}

func TestIPCMVersion(t *testing.T) {
	c, _ := initIPCM(t)
	c.Invoke(t, stackitem.Make(common.Version), "version")
}
