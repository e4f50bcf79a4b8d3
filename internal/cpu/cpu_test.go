package cpu

import (
	"encoding/binary"
	"testing"

	"github.com/kartoffels/kartoffels/internal/engine"
)

// encodeI encodes an I-type instruction (opcode, rd, funct3, rs1, imm).
func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encodeR encodes an R-type instruction.
func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>12)&1)<<31 | ((u>>5)&0x3f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | ((u>>1)&0xf)<<8 | ((u>>11)&1)<<7 | opcode
}

func newTestCPU() *CPU {
	return New()
}

func storeWord(c *CPU, addr uint32, v uint32) {
	off := addr - engine.RAMBase
	binary.LittleEndian.PutUint32(c.RAM[off:], v)
}

func TestAddi(t *testing.T) {
	c := newTestCPU()
	c.PC = engine.RAMBase + nullGuardLimit
	storeWord(c, c.PC, encodeI(opImm, 1, 0b000, 0, 41)) // addi x1, x0, 41

	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Regs[1] != 41 {
		t.Errorf("expected x1=41, got %d", c.Regs[1])
	}
	if c.PC != engine.RAMBase+nullGuardLimit+4 {
		t.Errorf("expected PC advanced by 4, got 0x%x", c.PC)
	}
}

func TestAddRegisters(t *testing.T) {
	c := newTestCPU()
	c.PC = engine.RAMBase + nullGuardLimit
	c.Regs[1] = 10
	c.Regs[2] = 32
	storeWord(c, c.PC, encodeR(opOp, 3, 0b000, 1, 2, 0)) // add x3, x1, x2

	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Regs[3] != 42 {
		t.Errorf("expected x3=42, got %d", c.Regs[3])
	}
}

func TestMulDiv(t *testing.T) {
	c := newTestCPU()
	c.PC = engine.RAMBase + nullGuardLimit
	c.Regs[1] = 6
	c.Regs[2] = 7
	storeWord(c, c.PC, encodeR(opOp, 3, 0b000, 1, 2, 0b0000001)) // mul x3, x1, x2

	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Regs[3] != 42 {
		t.Errorf("expected x3=42, got %d", c.Regs[3])
	}

	c.PC += 4
	c.Regs[1] = 7
	c.Regs[2] = 0
	storeWord(c, c.PC, encodeR(opOp, 4, 0b100, 1, 2, 0b0000001)) // div x4, x1, x2 (div by zero)
	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Regs[4] != 0xffffffff {
		t.Errorf("expected div-by-zero to yield all-ones, got 0x%x", c.Regs[4])
	}
}

func TestBranchTaken(t *testing.T) {
	c := newTestCPU()
	base := engine.RAMBase + nullGuardLimit
	c.PC = base
	c.Regs[1] = 5
	c.Regs[2] = 5
	storeWord(c, c.PC, encodeB(opBranch, 0b000, 1, 2, 8)) // beq x1, x2, +8

	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PC != base+8 {
		t.Errorf("expected branch taken to base+8, got 0x%x", c.PC)
	}
}

func TestLoadStoreRoundTrip(t *testing.T) {
	c := newTestCPU()
	base := engine.RAMBase + nullGuardLimit
	c.PC = base
	dataAddr := base + 64
	c.Regs[1] = dataAddr
	c.Regs[2] = 0xdeadbeef

	// sw x2, 0(x1): S-type, encode manually
	imm := int32(0)
	raw := (uint32(imm)>>5)<<25 | 2<<20 | 1<<15 | 0b010<<12 | (uint32(imm)&0x1f)<<7 | opStore
	storeWord(c, c.PC, raw)

	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected store error: %v", err)
	}

	c.Regs[3] = dataAddr
	storeWord(c, c.PC, encodeI(opLoad, 4, 0b010, 3, 0)) // lw x4, 0(x3)
	if err := c.Tick(nil); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if c.Regs[4] != 0xdeadbeef {
		t.Errorf("expected x4=0xdeadbeef, got 0x%x", c.Regs[4])
	}
}

func TestEbreakIsNonFatal(t *testing.T) {
	c := newTestCPU()
	c.PC = engine.RAMBase + nullGuardLimit
	storeWord(c, c.PC, 0x00100073) // ebreak

	err := c.Tick(nil)
	if err == nil {
		t.Fatal("expected an error from ebreak")
	}
	if !IsEbreak(err) {
		t.Errorf("expected IsEbreak to be true, got %v", err)
	}
}

func TestUnknownInstruction(t *testing.T) {
	c := newTestCPU()
	c.PC = engine.RAMBase + nullGuardLimit
	storeWord(c, c.PC, 0x00000000) // all-zero word: opcode bits != 0b11

	err := c.Tick(nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	ce, ok := err.(*CrashError)
	if !ok || ce.Kind != "unknown instruction" {
		t.Errorf("expected unknown instruction crash, got %v", err)
	}
}

func TestNullPointerAccess(t *testing.T) {
	c := newTestCPU()
	c.PC = engine.RAMBase + nullGuardLimit
	c.Regs[1] = 0 // dereferencing address 0
	storeWord(c, c.PC, encodeI(opLoad, 2, 0b010, 1, 0))

	err := c.Tick(nil)
	ce, ok := err.(*CrashError)
	if !ok || ce.Kind != "null pointer access" {
		t.Errorf("expected null pointer access crash, got %v", err)
	}
}

func TestLoadFirmwareRejectsNoSegments(t *testing.T) {
	data := buildMinimalELF32(nil, engine.RAMBase, engine.RAMBase)
	_, err := LoadFirmware(data)
	if err == nil {
		t.Fatal("expected an error for an empty PT_LOAD segment")
	}
}

func TestLoadFirmwareRejectsSegmentUnderflow(t *testing.T) {
	code := []byte{0x13, 0x00, 0x00, 0x00} // nop (addi x0,x0,0)
	data := buildMinimalELF32(code, engine.RAMBase-0x1000, engine.RAMBase-0x1000)
	_, err := LoadFirmware(data)
	if err == nil {
		t.Fatal("expected a segment underflow error")
	}
}

func TestLoadFirmwareAcceptsValidImage(t *testing.T) {
	code := []byte{0x13, 0x00, 0x00, 0x00}
	data := buildMinimalELF32(code, engine.RAMBase, engine.RAMBase)
	c, err := LoadFirmware(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PC != engine.RAMBase {
		t.Errorf("expected PC=RAMBase, got 0x%x", c.PC)
	}
	if c.RAM[0] != 0x13 {
		t.Errorf("expected first RAM byte to be the loaded code, got 0x%x", c.RAM[0])
	}
}
