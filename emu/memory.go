package emu

import (
	"github.com/sarchlab/n64sim/cache"
	"github.com/sarchlab/n64sim/mmu"
)

// Bus is the physical memory system the CPU is attached to. The
// interconnect satisfies it.
type Bus interface {
	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr, value uint32) error
}

// Memory is one CPU-side view of the address space. It translates virtual
// addresses and sends cacheable accesses through its cache, if one is
// attached. Everything else goes straight to the bus.
type Memory struct {
	translator *mmu.Translator
	bus        Bus
	cache      *cache.Cache
}

// NewMemory creates a Memory over bus. cache may be nil.
func NewMemory(translator *mmu.Translator, bus Bus, c *cache.Cache) *Memory {
	return &Memory{
		translator: translator,
		bus:        bus,
		cache:      c,
	}
}

// ReadWord returns the big-endian word at vaddr.
func (m *Memory) ReadWord(vaddr uint64) (uint32, error) {
	mapping, err := m.translator.Lookup(vaddr)
	if err != nil {
		return 0, err
	}

	if mapping.Cacheable && m.cache != nil {
		return m.cache.ReadWord(mapping.Physical)
	}

	return m.bus.ReadWord(mapping.Physical)
}

// WriteWord stores value big-endian at vaddr.
func (m *Memory) WriteWord(vaddr uint64, value uint32) error {
	mapping, err := m.translator.Lookup(vaddr)
	if err != nil {
		return err
	}

	if mapping.Cacheable && m.cache != nil {
		return m.cache.WriteWord(mapping.Physical, value)
	}

	return m.bus.WriteWord(mapping.Physical, value)
}
