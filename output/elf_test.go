package output

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/rv32im/rvsim/elf32"
	"github.com/rv32im/rvsim/models"
)

func testProgram() (text, data *models.SectionData, syms models.SymbolMap) {
	text = &models.SectionData{Addr: 0x1000, Contents: []models.Item{
		models.Data{Bytes: []byte{0x93, 0x08, 0x50, 0x00, 0x73, 0x00, 0x00, 0x00}},
		models.Align{Size: 8, NopFill: true},
	}}
	data = &models.SectionData{Addr: 0x2000, Contents: []models.Item{
		models.Data{Bytes: []byte("hello")},
		models.Uninit{Size: 3},
		models.Empty{},
		models.Align{Size: 4, Fill: 0xaa},
	}}
	syms = models.SymbolMap{"_start": 0x1000}
	return text, data, syms
}

var wantText = []byte{
	0x93, 0x08, 0x50, 0x00, 0x73, 0x00, 0x00, 0x00,
	0x13, 0x00, 0x00, 0x00, 0x13, 0x00, 0x00, 0x00,
}

var wantData = []byte{
	'h', 'e', 'l', 'l', 'o', 0, 0, 0, 0xaa, 0xaa, 0xaa, 0xaa,
}

func writeTest(t *testing.T, name string) (string, []byte) {
	t.Helper()
	text, data, syms := testProgram()
	path := filepath.Join(t.TempDir(), name)
	if err := WriteELF(path, text, data, syms); err != nil {
		t.Fatal(err)
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return path, raw
}

func TestWriteELFLayout(t *testing.T) {
	_, raw := writeTest(t, "out.elf")

	lay := NewLayout(16, 12)
	wantLen := int(lay.Strtab) + len("\x00.text\x00.data\x00.strtab\x00")
	if len(raw) != wantLen {
		t.Fatalf("file is %d bytes, want %d", len(raw), wantLen)
	}
	if !bytes.Equal(raw[lay.Text:lay.Text+16], wantText) {
		t.Errorf("text content = % x", raw[lay.Text:lay.Text+16])
	}
	if !bytes.Equal(raw[lay.Data:lay.Data+12], wantData) {
		t.Errorf("data content = % x", raw[lay.Data:lay.Data+12])
	}
	if !bytes.Equal(raw[lay.Strtab:], []byte("\x00.text\x00.data\x00.strtab\x00")) {
		t.Errorf("strtab content = %q", raw[lay.Strtab:])
	}
}

// The multi-byte header fields are decoded with an independent reader so the
// output is pinned to the wire format, not to whatever the writer happened to
// produce on this host.
func TestWriteELFHeader(t *testing.T) {
	_, raw := writeTest(t, "out.elf")

	le16 := func(off int) uint16 { return binary.LittleEndian.Uint16(raw[off:]) }
	le32 := func(off int) uint32 { return binary.LittleEndian.Uint32(raw[off:]) }

	if !bytes.Equal(raw[:4], []byte{0x7f, 'E', 'L', 'F'}) {
		t.Fatalf("magic = % x", raw[:4])
	}
	ident := []struct {
		off  int
		want byte
	}{
		{elf32.EI_CLASS, elf32.ELFCLASS32},
		{elf32.EI_DATA, elf32.ELFDATA2LSB},
		{elf32.EI_VERSION, 1},
	}
	for _, c := range ident {
		if raw[c.off] != c.want {
			t.Errorf("ident[%d] = %d, want %d", c.off, raw[c.off], c.want)
		}
	}

	halves := []struct {
		name string
		off  int
		want uint16
	}{
		{"e_type", 16, elf32.ET_EXEC},
		{"e_machine", 18, elf32.EM_RISCV},
		{"e_ehsize", 40, elf32.EhdrSize},
		{"e_phentsize", 42, elf32.PhdrSize},
		{"e_phnum", 44, elf32.NumPhdrs},
		{"e_shentsize", 46, elf32.ShdrSize},
		{"e_shnum", 48, elf32.NumShdrs},
		{"e_shstrndx", 50, elf32.SecStrtab},
	}
	for _, c := range halves {
		if got := le16(c.off); got != c.want {
			t.Errorf("%s = %#x, want %#x", c.name, got, c.want)
		}
	}

	words := []struct {
		name string
		off  int
		want uint32
	}{
		{"e_version", 20, 1},
		{"e_entry", 24, 0x1000},
		{"e_phoff", 28, elf32.EhdrSize},
		{"e_shoff", 32, elf32.EhdrSize + elf32.NumPhdrs*elf32.PhdrSize},
	}
	for _, c := range words {
		if got := le32(c.off); got != c.want {
			t.Errorf("%s = %#x, want %#x", c.name, got, c.want)
		}
	}

	// program header 0: text segment
	ph := int(le32(28))
	if got := le32(ph); got != elf32.PT_LOAD {
		t.Errorf("p_type = %d", got)
	}
	if got := le32(ph + 4); got != elf32.HeadSize {
		t.Errorf("p_offset = %#x, want %#x", got, elf32.HeadSize)
	}
	if got := le32(ph + 8); got != 0x1000 {
		t.Errorf("p_vaddr = %#x", got)
	}
	if got := le32(ph + 16); got != 16 {
		t.Errorf("p_filesz = %d", got)
	}
	if got := le32(ph + 20); got != 16 {
		t.Errorf("p_memsz = %d", got)
	}
	if got := le32(ph + 24); got != elf32.PF_R|elf32.PF_X {
		t.Errorf("p_flags = %#x", got)
	}

	// program header 1: data segment is writable, not executable
	if got := le32(ph + elf32.PhdrSize + 24); got != elf32.PF_R|elf32.PF_W {
		t.Errorf("data p_flags = %#x", got)
	}

	// strtab section header: index 3, name offset 13, not loaded
	sh := int(le32(32)) + elf32.SecStrtab*elf32.ShdrSize
	if got := le32(sh); got != 13 {
		t.Errorf("strtab sh_name = %d, want 13", got)
	}
	if got := le32(sh + 4); got != elf32.SHT_STRTAB {
		t.Errorf("strtab sh_type = %d", got)
	}
	if got := le32(sh + 12); got != 0 {
		t.Errorf("strtab sh_addr = %#x, want 0", got)
	}
}

func TestWriteELFDeterministic(t *testing.T) {
	_, a := writeTest(t, "a.elf")
	_, b := writeTest(t, "b.elf")
	if !bytes.Equal(a, b) {
		t.Error("identical inputs produced different files")
	}
}

func TestWriteELFEntryFallback(t *testing.T) {
	var warned bool
	old := Warnf
	Warnf = func(format string, args ...interface{}) { warned = true }
	defer func() { Warnf = old }()

	text, data, _ := testProgram()
	path := filepath.Join(t.TempDir(), "out.elf")
	if err := WriteELF(path, text, data, models.SymbolMap{}); err != nil {
		t.Fatal(err)
	}
	if !warned {
		t.Error("missing _start did not produce a warning")
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(raw[24:]); got != text.Start() {
		t.Errorf("entry = %#x, want text start %#x", got, text.Start())
	}
}

func TestWriteELFMisalignedNopFill(t *testing.T) {
	text := &models.SectionData{Addr: 0x1000, Contents: []models.Item{
		models.Align{Size: 6, NopFill: true},
	}}
	data := &models.SectionData{Addr: 0x2000}
	path := filepath.Join(t.TempDir(), "out.elf")
	if err := WriteELF(path, text, data, models.SymbolMap{}); err == nil {
		t.Error("misaligned nop fill was not rejected")
	}
}

func TestWriteELFBadPath(t *testing.T) {
	text, data, syms := testProgram()
	err := WriteELF(filepath.Join(t.TempDir(), "missing", "out.elf"), text, data, syms)
	if errors.Cause(err) != ErrFile {
		t.Errorf("err = %v, want %v", err, ErrFile)
	}
}
