// Package cpu implements the RV32IM interpreter that runs a bot's
// firmware: 32 integer registers, a flat 128 KiB RAM window, and a
// single-instruction-at-a-time tick contract. Addresses outside RAM are
// handed to an injected core.Mmio so the interpreter itself never knows
// about peripherals.
package cpu

import (
	"fmt"

	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

// CrashError is returned by Tick when the executing instruction violates
// the sandbox contract. Ebreak is the one kind the scheduler treats as
// non-fatal.
type CrashError struct {
	Kind string // "null pointer access", "invalid access", "unknown instruction", "ebreak"
	Addr uint32
}

func (e *CrashError) Error() string {
	if e.Kind == "ebreak" {
		return "ebreak"
	}
	return fmt.Sprintf("%s at 0x%08x", e.Kind, e.Addr)
}

func crash(kind string, addr uint32) *CrashError { return &CrashError{Kind: kind, Addr: addr} }

// IsEbreak reports whether err is the non-fatal Ebreak signal.
func IsEbreak(err error) bool {
	ce, ok := err.(*CrashError)
	return ok && ce.Kind == "ebreak"
}

// CPU is one bot's virtual machine: program counter, 32 general-purpose
// registers (x0 is hardwired to zero), and its RAM window.
type CPU struct {
	PC   uint32
	Regs [32]uint32
	RAM  []byte
}

// New allocates a zeroed CPU with RAM sized to engine.RAMSize.
func New() *CPU {
	return &CPU{RAM: make([]byte, engine.RAMSize)}
}

func (c *CPU) reg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return c.Regs[i]
}

func (c *CPU) setReg(i uint32, v uint32) {
	if i == 0 {
		return
	}
	c.Regs[i] = v
}

// inRAM reports whether [addr, addr+size) lies entirely within RAM.
func inRAM(addr uint32, size uint32) bool {
	if addr < engine.RAMBase {
		return false
	}
	end := addr + size
	return end >= addr && end <= engine.RAMEnd
}

// nullGuardLimit is the top of the null-pointer guard region: any access
// below it, or of zero size, is treated as a firmware null
// dereference rather than a generic invalid access.
const nullGuardLimit = 0x1000

func (c *CPU) loadMem(addr uint32, size uint32, mmio core.Mmio) (uint32, error) {
	if size == 0 || addr < nullGuardLimit {
		return 0, crash("null pointer access", addr)
	}
	if inRAM(addr, size) {
		off := addr - engine.RAMBase
		var v uint32
		for i := uint32(0); i < size; i++ {
			v |= uint32(c.RAM[off+i]) << (8 * i)
		}
		return v, nil
	}
	if addr >= engine.MMIOBase && mmio != nil {
		v, err := mmio.MmioLoad(addr)
		if err != nil {
			return 0, crash("invalid access", addr)
		}
		return v, nil
	}
	return 0, crash("invalid access", addr)
}

func (c *CPU) storeMem(addr uint32, size uint32, val uint32, mmio core.Mmio) error {
	if size == 0 || addr < nullGuardLimit {
		return crash("null pointer access", addr)
	}
	if inRAM(addr, size) {
		off := addr - engine.RAMBase
		for i := uint32(0); i < size; i++ {
			c.RAM[off+i] = byte(val >> (8 * i))
		}
		return nil
	}
	if addr >= engine.MMIOBase && mmio != nil {
		if err := mmio.MmioStore(addr, val); err != nil {
			return crash("invalid access", addr)
		}
		return nil
	}
	return crash("invalid access", addr)
}

// Tick executes exactly one instruction against mmio for addresses
// outside RAM, per the engine's tick contract.
func (c *CPU) Tick(mmio core.Mmio) error {
	raw, err := c.loadMem(c.PC, 4, mmio)
	if err != nil {
		return err
	}
	return c.execute(raw, mmio)
}
