package efi

// LoadTable keeps the base address of every driver, keyed by driver name.
// A driver that was loaded more than once keeps its first position but the
// address of its last load.
type LoadTable struct {
	order []string
	base  map[string]string
}

// NewLoadTable creates an empty LoadTable.
func NewLoadTable() *LoadTable {
	return &LoadTable{base: make(map[string]string)}
}

// Put records a load, overwriting any earlier address of the same driver.
func (t *LoadTable) Put(rec LoadRecord) {
	if _, ok := t.base[rec.Module]; !ok {
		t.order = append(t.order, rec.Module)
	}
	t.base[rec.Module] = rec.BaseAddress
}

// Len returns the number of distinct drivers.
func (t *LoadTable) Len() int {
	return len(t.order)
}

// Records returns the table contents in first-seen order.
func (t *LoadTable) Records() []LoadRecord {
	out := make([]LoadRecord, 0, len(t.order))
	for _, m := range t.order {
		out = append(out, LoadRecord{BaseAddress: t.base[m], Module: m})
	}
	return out
}

// ResolvedModule is a driver whose symbols can be registered.
type ResolvedModule struct {
	Module      string
	BinaryPath  string
	DebugPath   string
	BaseAddress string
	Text        uint64
	Data        uint64
}

// resolvedTable is an insertion-ordered set of ResolvedModules keyed by
// debug file path.
type resolvedTable struct {
	entries []ResolvedModule
}

func (t *resolvedTable) put(m ResolvedModule) {
	t.delete(m.DebugPath)
	t.entries = append(t.entries, m)
}

func (t *resolvedTable) delete(debugPath string) {
	for i, e := range t.entries {
		if e.DebugPath == debugPath {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

func (t *resolvedTable) modules() []ResolvedModule {
	out := make([]ResolvedModule, len(t.entries))
	copy(out, t.entries)
	return out
}
