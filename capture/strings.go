package capture

import (
	"hash/fnv"
	"sync"

	"github.com/atharwa-24/orbit/container"
	"github.com/atharwa-24/orbit/trace"
)

// Key returns the interning key for s. Producers and consumers of a capture
// have to agree on it, so it is fixed to 64-bit FNV-1a.
func Key(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// StringTable maps interned-string keys to their strings. It implements
// track.StringSource.
type StringTable struct {
	mu      sync.RWMutex
	strings map[uint64]string
}

func NewStringTable() *StringTable {
	return &StringTable{strings: map[uint64]string{}}
}

// Add registers s under key. Keys normally come from Key, but captures may
// carry foreign keys, so Add accepts any.
func (st *StringTable) Add(key uint64, s string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.strings[key] = s
}

// Intern registers s under its canonical key and returns the key.
func (st *StringTable) Intern(s string) uint64 {
	key := Key(s)
	st.Add(key, s)
	return key
}

func (st *StringTable) Get(key uint64) container.Option[string] {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.strings[key]
	if !ok {
		return container.None[string]()
	}
	return container.Some(s)
}

// Len returns the number of interned strings.
func (st *StringTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.strings)
}

func (st *StringTable) do(fn func(key uint64, s string)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for key, s := range st.strings {
		fn(key, s)
	}
}

// FunctionTable maps instrumented function addresses to their resolved
// functions. It implements track.FunctionSource.
type FunctionTable struct {
	mu        sync.RWMutex
	functions map[uint64]trace.Function
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{functions: map[uint64]trace.Function{}}
}

func (ft *FunctionTable) Add(fn trace.Function) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.functions[fn.Address] = fn
}

func (ft *FunctionTable) Lookup(address uint64) container.Option[trace.Function] {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	fn, ok := ft.functions[address]
	if !ok {
		return container.None[trace.Function]()
	}
	return container.Some(fn)
}

func (ft *FunctionTable) Len() int {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return len(ft.functions)
}

func (ft *FunctionTable) do(fn func(f trace.Function)) {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	for _, f := range ft.functions {
		fn(f)
	}
}
