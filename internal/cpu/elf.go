package cpu

import (
	"bytes"
	"debug/elf"
	"fmt"

	"github.com/kartoffels/kartoffels/internal/engine"
)

// LoadFirmware parses a 32-bit little-endian ELF image, validates every
// PT_LOAD segment falls within RAM, and returns a CPU with that RAM
// populated and PC set to the entry point.
func LoadFirmware(data []byte) (*CPU, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("malformed elf: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("mismatched architecture: not a 32-bit image")
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("mismatched endianess: not little-endian")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("mismatched architecture: not risc-v")
	}

	c := New()

	loaded := 0
	for i, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}

		start := uint32(prog.Vaddr)
		size := uint32(prog.Memsz)
		if size == 0 {
			continue
		}
		loaded++
		if start < engine.RAMBase {
			return nil, fmt.Errorf("segment %d underflows ram: addr=0x%08x limit=0x%08x", i, start, engine.RAMBase)
		}
		end := start + size
		if end < start || end > engine.RAMEnd {
			return nil, fmt.Errorf("segment %d overflows ram: addr=0x%08x limit=0x%08x", i, end, engine.RAMEnd)
		}

		buf := make([]byte, prog.Filesz)
		r := prog.Open()
		if _, err := r.Read(buf); err != nil && prog.Filesz > 0 {
			return nil, fmt.Errorf("reading segment %d: %w", i, err)
		}
		copy(c.RAM[start-engine.RAMBase:], buf)
	}

	if loaded == 0 {
		return nil, fmt.Errorf("no loadable segments")
	}

	c.PC = uint32(f.Entry)
	return c, nil
}
