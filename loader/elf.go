// Package loader maps executable files into the simulated address space and
// restarts the core at their entry point. It accepts exactly the 32-bit
// little-endian RISC-V executables the output package emits, plus raw memory
// images; malformed input is rejected before it can touch simulated memory.
package loader

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/rv32im/rvsim/elf32"
	"github.com/rv32im/rvsim/models/cpu"
)

// LoadFile sniffs the file kind and dispatches to the matching loader. base
// and entry are only used on the raw-binary path; ELF files carry their own.
func LoadFile(path string, base, entry uint32, mem cpu.Memory, c cpu.Cpu) error {
	kind, err := DetectType(path)
	if err != nil {
		return err
	}
	if kind == FileTypeELF {
		return LoadELF(path, mem, c)
	}
	return LoadBinary(path, base, entry, mem, c)
}

// LoadELF maps every loadable segment of an executable into the simulated
// address space, then resets the core at the header's entry point.
func LoadELF(path string, mem cpu.Memory, c cpu.Cpu) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrFile, "open %s: %v", path, err)
	}
	defer f.Close()

	var hdr elf32.Ehdr
	if err := struc.UnpackWithOrder(f, &hdr, binary.LittleEndian); err != nil {
		return errors.Wrapf(ErrFile, "read file header: %v", err)
	}
	if err := checkHeader(&hdr); err != nil {
		return err
	}

	for i := 0; i < int(hdr.Phnum); i++ {
		// headers are visited via the declared table geometry, not assumed
		// contiguous with the read cursor
		off := int64(hdr.Phoff) + int64(i)*int64(hdr.Phentsize)
		if _, err := f.Seek(off, io.SeekStart); err != nil {
			return errors.Wrapf(ErrFile, "seek program header %d: %v", i, err)
		}
		var ph elf32.Phdr
		if err := struc.UnpackWithOrder(f, &ph, binary.LittleEndian); err != nil {
			return errors.Wrapf(ErrFile, "read program header %d: %v", i, err)
		}
		if err := loadSegment(f, &ph, mem); err != nil {
			return errors.WithMessagef(err, "segment %d", i)
		}
	}

	c.Reset(hdr.Entry)
	return nil
}

func checkHeader(hdr *elf32.Ehdr) error {
	ident := hdr.Ident
	if len(ident) < elf32.EI_NIDENT || !bytes.Equal(ident[:4], elf32.Magic) {
		return errors.Wrap(ErrFormat, "bad magic")
	}
	if ident[elf32.EI_CLASS] != elf32.ELFCLASS32 {
		return errors.Wrapf(ErrFormat, "class %d is not 32-bit", ident[elf32.EI_CLASS])
	}
	if ident[elf32.EI_DATA] != elf32.ELFDATA2LSB {
		return errors.Wrapf(ErrFormat, "encoding %d is not little-endian", ident[elf32.EI_DATA])
	}
	if ident[elf32.EI_VERSION] != 1 {
		return errors.Wrapf(ErrFormat, "ident version %d", ident[elf32.EI_VERSION])
	}
	if hdr.Type != elf32.ET_EXEC {
		return errors.Wrapf(ErrFormat, "type %d is not an executable", hdr.Type)
	}
	if hdr.Version != 1 {
		return errors.Wrapf(ErrFormat, "version %d", hdr.Version)
	}
	if hdr.Machine != elf32.EM_RISCV {
		return errors.Wrapf(ErrArch, "machine %#x is not RISC-V", hdr.Machine)
	}
	return nil
}

func loadSegment(f *os.File, ph *elf32.Phdr, mem cpu.Memory) error {
	switch ph.Type {
	case elf32.PT_NULL, elf32.PT_NOTE:
		return nil
	case elf32.PT_LOAD:
	default:
		return errors.Wrapf(ErrFormat, "unsupported segment type %#x", ph.Type)
	}
	// zero-size loadable segments reserve no content and are legal
	if ph.Memsz == 0 {
		return nil
	}
	buf, err := mem.Map(ph.Vaddr, ph.Memsz, segmentProt(ph.Flags))
	if err != nil {
		return errors.Wrapf(ErrMemory, "map %#x(%d): %v", ph.Vaddr, ph.Memsz, err)
	}
	if ph.Filesz > 0 {
		if _, err := f.Seek(int64(ph.Off), io.SeekStart); err != nil {
			return errors.Wrapf(ErrFile, "seek content: %v", err)
		}
		// the on-disk footprint may be smaller than the in-memory one; the
		// rest of the mapping stays zero
		n := ph.Filesz
		if ph.Memsz < n {
			n = ph.Memsz
		}
		if _, err := io.ReadFull(f, buf[:n]); err != nil {
			return errors.Wrapf(ErrFile, "read content: %v", err)
		}
	}
	return nil
}

func segmentProt(flags uint32) int {
	prot := cpu.PROT_NONE
	if flags&elf32.PF_R != 0 {
		prot |= cpu.PROT_READ
	}
	if flags&elf32.PF_W != 0 {
		prot |= cpu.PROT_WRITE
	}
	if flags&elf32.PF_X != 0 {
		prot |= cpu.PROT_EXEC
	}
	return prot
}
