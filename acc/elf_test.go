package acc

import "encoding/binary"

// buildELF assembles the smallest valid 32-bit little-endian RISC-V ELF
// with a single PT_LOAD segment carrying code, the same shape
// internal/cpu's own test fixtures use — there being no RISC-V toolchain
// available to produce real ones here either.
func buildELF(code []byte, vaddr, entry uint32) []byte {
	const ehsize = 52
	const phsize = 32

	buf := make([]byte, ehsize+phsize+len(code))
	le := binary.LittleEndian

	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EV_CURRENT

	le.PutUint16(buf[16:], 2)      // e_type = ET_EXEC
	le.PutUint16(buf[18:], 243)    // e_machine = EM_RISCV
	le.PutUint32(buf[20:], 1)      // e_version
	le.PutUint32(buf[24:], entry)  // e_entry
	le.PutUint32(buf[28:], ehsize) // e_phoff
	le.PutUint32(buf[32:], 0)      // e_shoff
	le.PutUint32(buf[36:], 0)      // e_flags
	le.PutUint16(buf[40:], ehsize) // e_ehsize
	le.PutUint16(buf[42:], phsize) // e_phentsize
	le.PutUint16(buf[44:], 1)      // e_phnum
	le.PutUint16(buf[46:], 0)      // e_shentsize
	le.PutUint16(buf[48:], 0)      // e_shnum
	le.PutUint16(buf[50:], 0)      // e_shstrndx

	ph := buf[ehsize:]
	le.PutUint32(ph[0:], 1)                  // p_type = PT_LOAD
	le.PutUint32(ph[4:], ehsize+phsize)       // p_offset
	le.PutUint32(ph[8:], vaddr)               // p_vaddr
	le.PutUint32(ph[12:], vaddr)              // p_paddr
	le.PutUint32(ph[16:], uint32(len(code)))  // p_filesz
	le.PutUint32(ph[20:], uint32(len(code)))  // p_memsz
	le.PutUint32(ph[24:], 5)                  // p_flags = R+X
	le.PutUint32(ph[28:], 4096)               // p_align

	copy(buf[ehsize+phsize:], code)
	return buf
}
