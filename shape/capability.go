package shape

import (
	"fmt"
	"log/slog"
	"sync"
)

// CapKind enumerates the closed set of capability protocols a shape may
// implement. Extending the set means extending this enumeration; that is a
// deliberate stability trade-off over open-ended dispatch.
type CapKind uint8

const (
	CapAggregate CapKind = iota
	CapCallable
	CapAccessible
	CapEnumerable
	CapMapping
	CapIndexable
	CapStreamable
	CapPointer

	numCapKinds
)

var capKindNames = [numCapKinds]string{
	CapAggregate:  "aggregate",
	CapCallable:   "callable",
	CapAccessible: "accessible",
	CapEnumerable: "enumerable",
	CapMapping:    "mapping",
	CapIndexable:  "indexable",
	CapStreamable: "streamable",
	CapPointer:    "pointer",
}

func (c CapKind) String() string {
	if c < numCapKinds {
		return capKindNames[c]
	}
	return "unknown"
}

// CapabilityTable maps capability kinds to their implementations for one
// descriptor. Absent entries are nil; lookup never fails.
type CapabilityTable struct {
	slots [numCapKinds]any
}

// NewCapabilityTable creates an empty capability table.
func NewCapabilityTable() *CapabilityTable {
	return &CapabilityTable{}
}

// Set stores an implementation for kind and returns the table for chaining.
// Entries are write-once; overwriting panics.
func (t *CapabilityTable) Set(kind CapKind, impl any) *CapabilityTable {
	if t.slots[kind] != nil {
		panic(fmt.Sprintf("shape: capability %q already present in table", kind))
	}
	t.slots[kind] = impl
	return t
}

// Get returns the implementation for kind, or nil when absent.
func (t *CapabilityTable) Get(kind CapKind) any {
	return t.slots[kind]
}

// Provider lazily supplies a capability implementation for a descriptor.
// Returning nil means the provider has nothing to offer for that shape.
type Provider func(d *Descriptor) any

var (
	providerMu sync.RWMutex
	providers  [numCapKinds][]Provider
)

// RegisterProvider installs a lazy capability provider for kind. Providers
// let adapter packages serve whole shape families (for example every slice
// descriptor) without eagerly attaching a table to each one. Register during
// package initialization: a descriptor caches its first lookup per
// capability kind, so providers registered afterwards are not observed by
// descriptors that already resolved that kind.
func RegisterProvider(kind CapKind, p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providers[kind] = append(providers[kind], p)
	slog.Debug("Registered capability provider.", "capability", kind.String())
}

func resolveProvider(d *Descriptor, kind CapKind) any {
	providerMu.RLock()
	defer providerMu.RUnlock()
	for _, p := range providers[kind] {
		if impl := p(d); impl != nil {
			return impl
		}
	}
	return nil
}
