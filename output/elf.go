// Package output turns an assembled program into an executable file. The
// whole head block (file header, program headers, section headers) is built
// in memory from a precomputed layout, then content is streamed to its
// predetermined offsets with positioned writes.
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/rv32im/rvsim/elf32"
	"github.com/rv32im/rvsim/models"
)

// ErrFile is the cause of every I/O failure reported by WriteELF.
var ErrFile = errors.New("file I/O error")

// Warnf reports advisory diagnostics. The front end may replace it.
var Warnf = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// nop is the instruction word used for aligned padding (addi x0, x0, 0).
const nop = 0x00000013

// WriteELF emits text and data as a fixed-shape executable: one file header,
// two loadable segments and a text/data/strtab section table. The entry point
// is the _start symbol, falling back to the start of the text section.
func WriteELF(path string, text, data models.Section, syms models.SymbolTable) error {
	entry, ok := syms.Find("_start")
	if !ok {
		Warnf("_start symbol not found, entry will be start of .text section")
		entry = text.Start()
	}

	lay := NewLayout(text.Size(), data.Size())

	strtab := NewStringTable()
	textName := strtab.Add(".text")
	dataName := strtab.Add(".data")
	strtabName := strtab.Add(".strtab")

	ident := make([]byte, elf32.EI_NIDENT)
	copy(ident, elf32.Magic)
	ident[elf32.EI_CLASS] = elf32.ELFCLASS32
	ident[elf32.EI_DATA] = elf32.ELFDATA2LSB
	ident[elf32.EI_VERSION] = 1

	ehdr := elf32.Ehdr{
		Ident:     ident,
		Type:      elf32.ET_EXEC,
		Machine:   elf32.EM_RISCV,
		Version:   1,
		Entry:     entry,
		Phoff:     elf32.EhdrSize,
		Shoff:     elf32.EhdrSize + elf32.NumPhdrs*elf32.PhdrSize,
		Ehsize:    elf32.EhdrSize,
		Phentsize: elf32.PhdrSize,
		Phnum:     elf32.NumPhdrs,
		Shentsize: elf32.ShdrSize,
		Shnum:     elf32.NumShdrs,
		Shstrndx:  elf32.SecStrtab,
	}

	phdrs := []elf32.Phdr{
		segment(text, lay.Text, elf32.PF_R|elf32.PF_X),
		segment(data, lay.Data, elf32.PF_R|elf32.PF_W),
	}
	// index 0 stays the reserved null entry
	shdrs := make([]elf32.Shdr, elf32.NumShdrs)
	shdrs[elf32.SecText] = section(text, lay.Text, textName, elf32.SHF_ALLOC|elf32.SHF_EXECINSTR)
	shdrs[elf32.SecData] = section(data, lay.Data, dataName, elf32.SHF_ALLOC|elf32.SHF_WRITE)
	shdrs[elf32.SecStrtab] = elf32.Shdr{
		Name:  strtabName,
		Type:  elf32.SHT_STRTAB,
		Flags: elf32.SHF_STRINGS,
		Off:   lay.Strtab,
		Size:  strtab.Len(),
		Link:  elf32.SHN_UNDEF,
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrFile, "create %s: %v", path, err)
	}
	// a failed write can leave a partial file behind; the front end decides
	// whether to keep it
	defer f.Close()

	if err := struc.PackWithOrder(f, &ehdr, binary.LittleEndian); err != nil {
		return errors.Wrapf(ErrFile, "write file header: %v", err)
	}
	for i := range phdrs {
		if err := struc.PackWithOrder(f, &phdrs[i], binary.LittleEndian); err != nil {
			return errors.Wrapf(ErrFile, "write program header %d: %v", i, err)
		}
	}
	for i := range shdrs {
		if err := struc.PackWithOrder(f, &shdrs[i], binary.LittleEndian); err != nil {
			return errors.Wrapf(ErrFile, "write section header %d: %v", i, err)
		}
	}

	if err := writeSection(f, lay.Text, text); err != nil {
		return err
	}
	if err := writeSection(f, lay.Data, data); err != nil {
		return err
	}
	if _, err := f.Seek(int64(lay.Strtab), io.SeekStart); err != nil {
		return errors.Wrapf(ErrFile, "seek string table: %v", err)
	}
	if _, err := f.Write(strtab.Bytes()); err != nil {
		return errors.Wrapf(ErrFile, "write string table: %v", err)
	}
	return nil
}

func segment(sec models.Section, off uint32, flags uint32) elf32.Phdr {
	return elf32.Phdr{
		Type:   elf32.PT_LOAD,
		Off:    off,
		Vaddr:  sec.Start(),
		Paddr:  sec.Start(),
		Filesz: sec.Size(),
		Memsz:  sec.Size(),
		Flags:  flags,
	}
}

func section(sec models.Section, off, name uint32, flags uint32) elf32.Shdr {
	return elf32.Shdr{
		Name:  name,
		Type:  elf32.SHT_PROGBITS,
		Flags: flags,
		Addr:  sec.Start(),
		Off:   off,
		Size:  sec.Size(),
		Link:  elf32.SHN_UNDEF,
	}
}

// writeSection streams a section's items to its file offset. The emitted
// bytes of the item list always total Section.Size().
func writeSection(f *os.File, off uint32, sec models.Section) error {
	if _, err := f.Seek(int64(off), io.SeekStart); err != nil {
		return errors.Wrapf(ErrFile, "seek section content: %v", err)
	}
	for _, it := range sec.Items() {
		var buf []byte
		switch it := it.(type) {
		case models.Empty:
			continue
		case models.Data:
			buf = it.Bytes
		case models.Uninit:
			buf = make([]byte, it.Size)
		case models.Align:
			if it.NopFill {
				if it.Size%4 != 0 {
					return errors.Errorf("nop-fill padding of %d bytes is not word aligned", it.Size)
				}
				buf = make([]byte, it.Size)
				for i := uint32(0); i < it.Size; i += 4 {
					binary.LittleEndian.PutUint32(buf[i:], nop)
				}
			} else {
				buf = make([]byte, it.Size)
				for i := range buf {
					buf[i] = it.Fill
				}
			}
		default:
			return errors.Errorf("unknown section item %T", it)
		}
		if _, err := f.Write(buf); err != nil {
			return errors.Wrapf(ErrFile, "write section content: %v", err)
		}
	}
	return nil
}
