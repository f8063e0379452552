// Package symtab builds the per-image Symbol Index: it demangles every
// language symbol once, classifies the result into one of a fixed set of
// semantic buckets, and exposes multi-key lookups over the classified set.
// Nothing here depends on a particular Mach-O reader; callers feed already
//-collected symbol triples through BuildInput so this package stays testable
// without an image on disk.
package symtab

import (
	"fmt"
	"sync"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
)

// manglingPrefix identifies a language symbol. It matches the prefix
// DemangleSymbol itself requires.
const manglingPrefix = "$S"

// IsLanguageSymbol reports whether name carries the mangling prefix this
// index understands.
func IsLanguageSymbol(name string) bool {
	return len(name) >= len(manglingPrefix) && name[:len(manglingPrefix)] == manglingPrefix
}

// NListInfo carries the subset of symbol-table flags the index branches on.
type NListInfo struct {
	External  bool
	Undefined bool
}

// Symbol is the raw triple the index ingests: a file offset, a mangled name,
// and optional nlist flags (absent for exported-only symbols).
type Symbol struct {
	Offset uint64
	Name   string
	NList  *NListInfo
}

func (s Symbol) key() string {
	return fmt.Sprintf("%d:%s", s.Offset, s.Name)
}

func (s Symbol) isExternal() bool {
	return s.NList != nil && s.NList.External
}

// IndexedSymbol pairs a Symbol with its demangled tree and an observational
// consumed latch, set the first time any accessor surfaces this value.
type IndexedSymbol struct {
	Symbol Symbol
	Node   *swiftdemangle.Node

	mu       sync.Mutex
	consumed bool
}

func newIndexedSymbol(sym Symbol, node *swiftdemangle.Node) *IndexedSymbol {
	return &IndexedSymbol{Symbol: sym, Node: node}
}

// MarkConsumed latches the consumed flag. Safe for concurrent use.
func (is *IndexedSymbol) MarkConsumed() {
	is.mu.Lock()
	is.consumed = true
	is.mu.Unlock()
}

// Consumed reports whether this symbol has ever been surfaced by an accessor.
func (is *IndexedSymbol) Consumed() bool {
	is.mu.Lock()
	defer is.mu.Unlock()
	return is.consumed
}

func touch(list []*IndexedSymbol) []*IndexedSymbol {
	for _, s := range list {
		s.MarkConsumed()
	}
	return list
}
