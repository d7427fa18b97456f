// Package cache models the VR4300 primary caches using Akita cache components.
//
// The caches hold big-endian words fetched from a BackingStore, normally the
// interconnect. Only cacheable translations go through them; kseg1 accesses
// bypass the caches entirely.
package cache

import (
	"encoding/binary"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache geometry.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
}

// ICacheConfig returns the VR4300 instruction cache geometry:
// 16 KiB, direct mapped, 32-byte lines.
func ICacheConfig() Config {
	return Config{
		Size:          16 * 1024,
		Associativity: 1,
		BlockSize:     32,
	}
}

// DCacheConfig returns the VR4300 data cache geometry:
// 8 KiB, direct mapped, 16-byte lines, write-back.
func DCacheConfig() Config {
	return Config{
		Size:          8 * 1024,
		Associativity: 1,
		BlockSize:     16,
	}
}

// Statistics holds cache access statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// BackingStore is the next level in the memory hierarchy.
type BackingStore interface {
	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr, value uint32) error
}

// Cache is a write-back, write-allocate cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats   Statistics
	backing BackingStore
}

// New creates a cache with the given geometry in front of backing.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache geometry.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	size := uint64(c.config.BlockSize)
	return (uint64(addr) / size) * size
}

func (c *Cache) blockOffset(addr uint32) int {
	return int(addr) % c.config.BlockSize
}

// ReadWord returns the big-endian word at addr, filling the line on a miss.
func (c *Cache) ReadWord(addr uint32) (uint32, error) {
	c.stats.Reads++

	block, err := c.lookupOrFill(addr)
	if err != nil {
		return 0, err
	}

	data := c.dataStore[c.blockIndex(block)]
	return binary.BigEndian.Uint32(data[c.blockOffset(addr):]), nil
}

// WriteWord stores value at addr. On a miss the line is fetched first.
func (c *Cache) WriteWord(addr, value uint32) error {
	c.stats.Writes++

	block, err := c.lookupOrFill(addr)
	if err != nil {
		return err
	}

	data := c.dataStore[c.blockIndex(block)]
	binary.BigEndian.PutUint32(data[c.blockOffset(addr):], value)
	block.IsDirty = true

	return nil
}

func (c *Cache) lookupOrFill(addr uint32) (*akitacache.Block, error) {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return block, nil
	}

	c.stats.Misses++
	return c.fill(blockAddr)
}

// fill evicts a victim (writing it back if dirty) and loads the line at
// blockAddr from the backing store.
func (c *Cache) fill(blockAddr uint64) (*akitacache.Block, error) {
	victim := c.directory.FindVictim(blockAddr)
	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty {
			if err := c.writeBack(victim.Tag, victimData); err != nil {
				return nil, err
			}
		}
	}

	for off := 0; off < c.config.BlockSize; off += 4 {
		word, err := c.backing.ReadWord(uint32(blockAddr) + uint32(off))
		if err != nil {
			victim.IsValid = false
			return nil, err
		}
		binary.BigEndian.PutUint32(victimData[off:], word)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return victim, nil
}

func (c *Cache) writeBack(blockAddr uint64, data []byte) error {
	c.stats.Writebacks++
	for off := 0; off < len(data); off += 4 {
		word := binary.BigEndian.Uint32(data[off:])
		if err := c.backing.WriteWord(uint32(blockAddr)+uint32(off), word); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate marks the line holding addr invalid without writeback.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty lines and invalidates every line.
func (c *Cache) Flush() error {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				if err := c.writeBack(block.Tag, c.dataStore[c.blockIndex(block)]); err != nil {
					return err
				}
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
	return nil
}

// Reset invalidates all lines without writeback and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
