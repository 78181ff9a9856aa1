package ast

import "sort"

// Reserved symbol-table keys (spec §3).
const (
	KeyReturn   = "_return"
	KeyRetAddr  = "_ret_addr"
	KeyParent   = ".."
	KeyInherits = "_inherits"
)

// SymbolData is one symbol-table entry (spec §3).
type SymbolData struct {
	Size       int
	Offset     int
	Label      *string
	Nested     *SymbolTable
	VarType    VarType
	Visibility string // "public", "private", or "" when not applicable
}

// NewSymbolData builds a leaf entry with no nested table.
func NewSymbolData(size, offset int, vt VarType) *SymbolData {
	return &SymbolData{Size: size, Offset: offset, VarType: vt}
}

// NewSymbolDataWithTable builds an entry that owns a nested table (classes,
// functions).
func NewSymbolDataWithTable(size, offset int, vt VarType, nested *SymbolTable) *SymbolData {
	return &SymbolData{Size: size, Offset: offset, VarType: vt, Nested: nested}
}

// SymbolTable maps names unique within the table to their SymbolData. Keys
// keep insertion order (spec §3: "insertion-order irrelevant [for logic] but
// display sorted by offset then key" — insertion order is still preserved
// for the offset-monotonicity testable property in spec §8).
type SymbolTable struct {
	keys []string
	data map[string]*SymbolData
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{data: make(map[string]*SymbolData)}
}

// Insert adds key -> value. Returns false if key already existed (the table
// is left unchanged in that case so callers can report a duplicate-symbol
// error per spec §7).
func (t *SymbolTable) Insert(key string, value *SymbolData) bool {
	if _, exists := t.data[key]; exists {
		return false
	}
	t.keys = append(t.keys, key)
	t.data[key] = value
	return true
}

// Set inserts or overwrites — used only for structural keys (_return, ..)
// that earlier passes pre-seed and code generation never duplicates.
func (t *SymbolTable) Set(key string, value *SymbolData) {
	if _, exists := t.data[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.data[key] = value
}

// Get looks up a key.
func (t *SymbolTable) Get(key string) (*SymbolData, bool) {
	v, ok := t.data[key]
	return v, ok
}

// Contains reports whether key exists in this table only (no parent walk).
func (t *SymbolTable) Contains(key string) bool {
	_, ok := t.data[key]
	return ok
}

// Keys returns keys in insertion order.
func (t *SymbolTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Extend merges another table's entries into this one in the other table's
// insertion order, skipping keys already present (first writer wins, mirrors
// the teacher-adjacent Rust source's `table.extend`).
func (t *SymbolTable) Extend(other *SymbolTable) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		if !t.Contains(k) {
			t.Insert(k, other.data[k])
		}
	}
}

// Len is the number of entries.
func (t *SymbolTable) Len() int { return len(t.keys) }

// TotalSize sums every entry's Size — used to validate the "total
// local-and-parameter size equals the function's declared frame size"
// invariant (spec §3) and by codegen's stack-frame arithmetic.
func (t *SymbolTable) TotalSize() int {
	total := 0
	for _, k := range t.keys {
		total += t.data[k].Size
	}
	return total
}

// SortedKeys orders keys by offset ascending then key, for pretty-printing
// (spec §3: "display sorted by offset then key").
func (t *SymbolTable) SortedKeys() []string {
	out := t.Keys()
	sort.Slice(out, func(i, j int) bool {
		a, b := t.data[out[i]], t.data[out[j]]
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return out[i] < out[j]
	})
	return out
}
