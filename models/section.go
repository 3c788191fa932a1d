package models

// Item is one unit of a section's payload. It is a closed set: emission code
// switches exhaustively over the concrete types below and treats anything
// else as a bug.
type Item interface {
	// Len is the number of bytes the item contributes to the emitted section.
	Len() uint32

	sealed()
}

// Empty is a structural placeholder contributing no bytes.
type Empty struct{}

// Data is a literal byte buffer, emitted verbatim.
type Data struct {
	Bytes []byte
}

// Uninit is a span whose value is irrelevant; it still occupies space and is
// emitted as zero bytes.
type Uninit struct {
	Size uint32
}

// Align is padding inserted to satisfy alignment. With NopFill set it is
// emitted as repeated no-op instruction words and its size must be a multiple
// of 4; otherwise it is emitted as repeated Fill bytes.
type Align struct {
	Size    uint32
	NopFill bool
	Fill    byte
}

func (Empty) Len() uint32    { return 0 }
func (d Data) Len() uint32   { return uint32(len(d.Bytes)) }
func (u Uninit) Len() uint32 { return u.Size }
func (a Align) Len() uint32  { return a.Size }

func (Empty) sealed()  {}
func (Data) sealed()   {}
func (Uninit) sealed() {}
func (Align) sealed()  {}

// Section is the view of one assembled program section this layer consumes:
// a fixed start address and an ordered item list whose emitted bytes total
// exactly Size().
type Section interface {
	Start() uint32
	Size() uint32
	Items() []Item
}

// SectionData is a plain Section backed by a slice of items.
type SectionData struct {
	Addr     uint32
	Contents []Item
}

func (s *SectionData) Start() uint32 { return s.Addr }
func (s *SectionData) Items() []Item { return s.Contents }

func (s *SectionData) Size() uint32 {
	var n uint32
	for _, it := range s.Contents {
		n += it.Len()
	}
	return n
}

// SymbolTable resolves a label name to its address.
type SymbolTable interface {
	Find(name string) (uint32, bool)
}

// SymbolMap is a map-backed SymbolTable.
type SymbolMap map[string]uint32

func (m SymbolMap) Find(name string) (uint32, bool) {
	addr, ok := m[name]
	return addr, ok
}
