// Package elf32 holds the fixed 32-bit little-endian ELF subset shared by the
// assembler's output stage and the simulator's loader. Records are packed and
// unpacked with struc using an explicit byte order, so the toolchain produces
// and consumes identical files on big-endian hosts.
package elf32

import (
	"bytes"
	"io"
)

var Magic = []byte{0x7f, 'E', 'L', 'F'}

// MatchMagic reports whether the file starts with the ELF magic. A file too
// short to carry a magic matches nothing.
func MatchMagic(r io.ReaderAt) bool {
	buf := make([]byte, 4)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return false
	}
	return bytes.Equal(buf, Magic)
}

// e_ident indices
const (
	EI_MAG0    = 0
	EI_MAG1    = 1
	EI_MAG2    = 2
	EI_MAG3    = 3
	EI_CLASS   = 4
	EI_DATA    = 5
	EI_VERSION = 6
	EI_PAD     = 7
	EI_NIDENT  = 16
)

const (
	ELFCLASS32  = 1
	ELFDATA2LSB = 1

	ET_EXEC  = 2
	EM_RISCV = 0xf3
)

// segment types and permission flags
const (
	PT_NULL = 0
	PT_LOAD = 1
	PT_NOTE = 4

	PF_X = 0x1
	PF_W = 0x2
	PF_R = 0x4
)

// section types and flags
const (
	SHN_UNDEF = 0

	SHT_NULL     = 0
	SHT_PROGBITS = 1
	SHT_STRTAB   = 3

	SHF_WRITE     = 1 << 0
	SHF_ALLOC     = 1 << 1
	SHF_EXECINSTR = 1 << 2
	SHF_STRINGS   = 1 << 5
)

type Ehdr struct {
	Ident     []byte `struc:"[16]byte"`
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type Phdr struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

type Shdr struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Off       uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

// On-disk record sizes. The structs above have no implicit padding, but the
// file format is authoritative, not the Go layout.
const (
	EhdrSize = 52
	PhdrSize = 32
	ShdrSize = 40

	// The emitted head block: file header, then the two program headers
	// (text, data), then four section headers (null, text, data, strtab).
	NumPhdrs = 2
	NumShdrs = 4
	HeadSize = EhdrSize + NumPhdrs*PhdrSize + NumShdrs*ShdrSize
)

// Fixed section table order in emitted files.
const (
	SecNull = iota
	SecText
	SecData
	SecStrtab
)
