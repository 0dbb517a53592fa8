package tests

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/vm"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

// requireSingleEvent checks that the execution produced exactly one
// notification with the given name and byte-convertible arguments.
func requireSingleEvent(t *testing.T, aer *state.AppExecResult, name string, args ...[]byte) {
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, name, aer.Events[0].Name)

	actual := eventArgs(t, aer.Events[0])
	require.Equal(t, len(args), len(actual))
	for i := range args {
		require.Equal(t, args[i], actual[i], "event argument %d", i)
	}
}

func eventArgs(t *testing.T, ev state.NotificationEvent) [][]byte {
	items, ok := ev.Item.Value().([]stackitem.Item)
	require.True(t, ok)

	args := make([][]byte, 0, len(items))
	for i := range items {
		bs, err := items[i].TryBytes()
		require.NoError(t, err)
		if bs == nil {
			bs = []byte{}
		}
		args = append(args, bs)
	}
	return args
}

// stackStrings pops an array from the invocation result stack and converts
// its elements to strings.
func stackStrings(t *testing.T, s *vm.Stack) []string {
	items := s.Pop().Array()

	res := make([]string, 0, len(items))
	for i := range items {
		bs, err := items[i].TryBytes()
		require.NoError(t, err)
		res = append(res, string(bs))
	}
	return res
}
