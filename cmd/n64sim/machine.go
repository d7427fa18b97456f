package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/n64sim/cache"
	"github.com/sarchlab/n64sim/config"
	"github.com/sarchlab/n64sim/emu"
	"github.com/sarchlab/n64sim/interconnect"
	"github.com/sarchlab/n64sim/loader"
)

// machine is an assembled N64: interconnect, caches and CPU.
type machine struct {
	ic     *interconnect.Interconnect
	cpu    *emu.CPU
	icache *cache.Cache
	dcache *cache.Cache
	cart   *loader.Cartridge
}

// newMachine loads the images named by cfg and wires up a machine ready to
// execute from the reset vector.
func newMachine(cfg *config.MachineConfig, logger logrus.FieldLogger) (*machine, error) {
	pifROM, err := loader.LoadPIF(cfg.PIFROMPath)
	if err != nil {
		return nil, err
	}

	ic, err := interconnect.New(pifROM)
	if err != nil {
		return nil, err
	}

	m := &machine{ic: ic}

	if cfg.CartROMPath != "" {
		m.cart, err = loader.LoadCartridge(cfg.CartROMPath)
		if err != nil {
			return nil, err
		}

		logger.WithFields(logrus.Fields{
			"title":  m.cart.Header.Title,
			"code":   m.cart.Header.GameCode,
			"format": m.cart.Order.String(),
			"entry":  m.cart.Header.EntryPoint,
			"size":   len(m.cart.ROM),
		}).Info("Cartridge loaded")
	}

	opts := []emu.CPUOption{
		emu.WithLogger(logger),
		emu.WithMaxInstructions(cfg.MaxInstructions),
	}
	if cfg.ICache.Enabled {
		m.icache = cache.New(cfg.ICache.Geometry(), ic)
		opts = append(opts, emu.WithICache(m.icache))
	}
	if cfg.DCache.Enabled {
		m.dcache = cache.New(cfg.DCache.Geometry(), ic)
		opts = append(opts, emu.WithDCache(m.dcache))
	}

	m.cpu = emu.NewCPU(ic, opts...)
	m.cpu.PowerOnReset()

	return m, nil
}

// run executes until a fault, the instruction budget or cancellation.
// Reaching the budget is not an error.
func (m *machine) run(ctx context.Context) error {
	err := m.cpu.Run(ctx)
	if errors.Is(err, emu.ErrMaxInstructions) {
		return nil
	}
	return err
}

// report logs the final machine state.
func (m *machine) report(logger logrus.FieldLogger) {
	stats := m.ic.Stats()

	logger.WithFields(logrus.Fields{
		"instructions": m.cpu.InstructionCount(),
		"pc":           m.cpu.RegFile().PC,
		"pif_rom":      stats.PIFROM.Reads,
		"pif_ram":      stats.PIFRAM.Reads + stats.PIFRAM.Writes,
		"rdram":        stats.RDRAM.Reads + stats.RDRAM.Writes,
		"sp_status":    stats.RSPStatus.Reads + stats.RSPStatus.Writes,
	}).Info("Simulation finished")

	if m.icache != nil {
		s := m.icache.Stats()
		logger.WithFields(logrus.Fields{"hits": s.Hits, "misses": s.Misses}).Info("ICache")
	}
	if m.dcache != nil {
		s := m.dcache.Stats()
		logger.WithFields(logrus.Fields{
			"hits":       s.Hits,
			"misses":     s.Misses,
			"writebacks": s.Writebacks,
		}).Info("DCache")
	}
}
