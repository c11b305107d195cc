package efi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTable_LastValueFirstPosition(t *testing.T) {
	table := NewLoadTable()
	table.Put(LoadRecord{BaseAddress: "0x1000", Module: "A.efi"})
	table.Put(LoadRecord{BaseAddress: "0x2000", Module: "B.efi"})
	table.Put(LoadRecord{BaseAddress: "0x3000", Module: "A.efi"})

	require.Equal(t, 2, table.Len())
	require.Equal(t, []LoadRecord{
		{BaseAddress: "0x3000", Module: "A.efi"},
		{BaseAddress: "0x2000", Module: "B.efi"},
	}, table.Records())
}

func TestResolvedTable_DeleteAndReinsert(t *testing.T) {
	var table resolvedTable
	table.put(ResolvedModule{DebugPath: "a.debug"})
	table.put(ResolvedModule{DebugPath: "b.debug"})
	table.delete("a.debug")
	table.delete("missing.debug")
	table.put(ResolvedModule{DebugPath: "c.debug"})
	table.put(ResolvedModule{DebugPath: "b.debug", Text: 1})

	got := table.modules()
	require.Len(t, got, 2)
	require.Equal(t, "c.debug", got[0].DebugPath)
	require.Equal(t, "b.debug", got[1].DebugPath)
	require.Equal(t, uint64(1), got[1].Text)
}
