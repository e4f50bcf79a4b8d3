package cpu

import "github.com/kartoffels/kartoffels/internal/core"

const (
	opLoad   = 0b0000011
	opImm    = 0b0010011
	opAUIPC  = 0b0010111
	opStore  = 0b0100011
	opOp     = 0b0110011
	opLUI    = 0b0110111
	opBranch = 0b1100011
	opJALR   = 0b1100111
	opJAL    = 0b1101111
	opSystem = 0b1110011
)

func signExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}

// execute decodes and runs one RV32IM instruction, advancing PC unless
// the instruction itself redirects it (branch/jump).
func (c *CPU) execute(raw uint32, mmio core.Mmio) error {
	if raw&0b11 != 0b11 {
		return crash("unknown instruction", c.PC)
	}

	opcode := raw & 0x7f
	rd := (raw >> 7) & 0x1f
	funct3 := (raw >> 12) & 0x7
	rs1 := (raw >> 15) & 0x1f
	rs2 := (raw >> 20) & 0x1f
	funct7 := (raw >> 25) & 0x7f

	nextPC := c.PC + 4

	switch opcode {
	case opLUI:
		c.setReg(rd, raw&0xfffff000)

	case opAUIPC:
		c.setReg(rd, c.PC+(raw&0xfffff000))

	case opJAL:
		imm := ((raw >> 31) & 1 << 20) | ((raw >> 21 & 0x3ff) << 1) | ((raw >> 20 & 1) << 11) | ((raw >> 12 & 0xff) << 12)
		imm = signExtend(imm, 21)
		c.setReg(rd, nextPC)
		nextPC = c.PC + imm

	case opJALR:
		imm := signExtend(raw>>20, 12)
		target := (c.reg(rs1) + imm) &^ 1
		c.setReg(rd, nextPC)
		nextPC = target

	case opBranch:
		imm := ((raw >> 31 & 1) << 12) | ((raw >> 7 & 1) << 11) | ((raw >> 25 & 0x3f) << 5) | ((raw >> 8 & 0xf) << 1)
		imm = signExtend(imm, 13)
		a, b := c.reg(rs1), c.reg(rs2)
		taken := false
		switch funct3 {
		case 0b000:
			taken = a == b // beq
		case 0b001:
			taken = a != b // bne
		case 0b100:
			taken = int32(a) < int32(b) // blt
		case 0b101:
			taken = int32(a) >= int32(b) // bge
		case 0b110:
			taken = a < b // bltu
		case 0b111:
			taken = a >= b // bgeu
		default:
			return crash("unknown instruction", c.PC)
		}
		if taken {
			nextPC = c.PC + imm
		}

	case opLoad:
		imm := signExtend(raw>>20, 12)
		addr := c.reg(rs1) + imm
		var v uint32
		var err error
		switch funct3 {
		case 0b000: // lb
			v, err = c.loadMem(addr, 1, mmio)
			v = signExtend(v, 8)
		case 0b001: // lh
			v, err = c.loadMem(addr, 2, mmio)
			v = signExtend(v, 16)
		case 0b010: // lw
			v, err = c.loadMem(addr, 4, mmio)
		case 0b100: // lbu
			v, err = c.loadMem(addr, 1, mmio)
		case 0b101: // lhu
			v, err = c.loadMem(addr, 2, mmio)
		default:
			return crash("unknown instruction", c.PC)
		}
		if err != nil {
			return err
		}
		c.setReg(rd, v)

	case opStore:
		imm := signExtend(((raw>>25)&0x7f)<<5|((raw>>7)&0x1f), 12)
		addr := c.reg(rs1) + imm
		val := c.reg(rs2)
		var err error
		switch funct3 {
		case 0b000:
			err = c.storeMem(addr, 1, val, mmio)
		case 0b001:
			err = c.storeMem(addr, 2, val, mmio)
		case 0b010:
			err = c.storeMem(addr, 4, val, mmio)
		default:
			return crash("unknown instruction", c.PC)
		}
		if err != nil {
			return err
		}

	case opImm:
		imm := signExtend(raw>>20, 12)
		a := c.reg(rs1)
		var v uint32
		switch funct3 {
		case 0b000:
			v = a + imm // addi
		case 0b010:
			v = b2u(int32(a) < int32(imm)) // slti
		case 0b011:
			v = b2u(a < imm) // sltiu
		case 0b100:
			v = a ^ imm // xori
		case 0b110:
			v = a | imm // ori
		case 0b111:
			v = a & imm // andi
		case 0b001:
			v = a << (imm & 0x1f) // slli
		case 0b101:
			shamt := imm & 0x1f
			if imm&0x400 != 0 {
				v = uint32(int32(a) >> shamt) // srai
			} else {
				v = a >> shamt // srli
			}
		default:
			return crash("unknown instruction", c.PC)
		}
		c.setReg(rd, v)

	case opOp:
		a, b := c.reg(rs1), c.reg(rs2)
		if funct7 == 0b0000001 {
			v, err := mulDivOp(funct3, a, b)
			if err != nil {
				return err
			}
			c.setReg(rd, v)
			break
		}
		var v uint32
		switch {
		case funct3 == 0b000 && funct7 == 0:
			v = a + b // add
		case funct3 == 0b000 && funct7 == 0b0100000:
			v = a - b // sub
		case funct3 == 0b001:
			v = a << (b & 0x1f) // sll
		case funct3 == 0b010:
			v = b2u(int32(a) < int32(b)) // slt
		case funct3 == 0b011:
			v = b2u(a < b) // sltu
		case funct3 == 0b100:
			v = a ^ b // xor
		case funct3 == 0b101 && funct7 == 0:
			v = a >> (b & 0x1f) // srl
		case funct3 == 0b101 && funct7 == 0b0100000:
			v = uint32(int32(a) >> (b & 0x1f)) // sra
		case funct3 == 0b110:
			v = a | b // or
		case funct3 == 0b111:
			v = a & b // and
		default:
			return crash("unknown instruction", c.PC)
		}
		c.setReg(rd, v)

	case opSystem:
		imm := raw >> 20
		switch {
		case funct3 == 0 && imm == 1:
			return crash("ebreak", c.PC) // ebreak
		case funct3 == 0 && imm == 0:
			// ecall: no syscalls are defined; treated as unknown instruction
			return crash("unknown instruction", c.PC)
		default:
			return crash("unknown instruction", c.PC)
		}

	default:
		return crash("unknown instruction", c.PC)
	}

	c.PC = nextPC
	return nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// mulDivOp implements the RV32M extension. Atomics (lr.w/sc.w/amo*) are
// never decoded here — the opcode space they occupy (0101111) is not
// matched by any case above and falls through to "unknown instruction",
// keeping the interpreter fully serial per the sandbox contract.
func mulDivOp(funct3 uint32, a, b uint32) (uint32, error) {
	sa, sb := int32(a), int32(b)
	switch funct3 {
	case 0b000:
		return uint32(sa * sb), nil // mul
	case 0b001:
		return uint32(int32((int64(sa) * int64(sb)) >> 32)), nil // mulh
	case 0b010:
		return uint32((int64(sa) * int64(uint64(b))) >> 32), nil // mulhsu
	case 0b011:
		return uint32((uint64(a) * uint64(b)) >> 32), nil // mulhu
	case 0b100: // div
		if sb == 0 {
			return 0xffffffff, nil
		}
		if sa == -2147483648 && sb == -1 {
			return uint32(sa), nil
		}
		return uint32(sa / sb), nil
	case 0b101: // divu
		if b == 0 {
			return 0xffffffff, nil
		}
		return a / b, nil
	case 0b110: // rem
		if sb == 0 {
			return uint32(sa), nil
		}
		if sa == -2147483648 && sb == -1 {
			return 0, nil
		}
		return uint32(sa % sb), nil
	case 0b111: // remu
		if b == 0 {
			return a, nil
		}
		return a % b, nil
	}
	return 0, crash("unknown instruction", 0)
}
