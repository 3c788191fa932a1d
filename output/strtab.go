package output

// StringTable is an append-only buffer of NUL-terminated names. Offset 0 is
// always the empty string. Offsets are stable for the table's lifetime.
//
// Growth is left to append; running out of memory here is a process-level
// failure like everywhere else in the toolchain, not a reported error.
type StringTable struct {
	buf []byte
}

func NewStringTable() *StringTable {
	return &StringTable{buf: []byte{0}}
}

// Add appends name plus its terminating NUL and returns the offset at which
// the name begins.
func (t *StringTable) Add(name string) uint32 {
	off := uint32(len(t.buf))
	t.buf = append(t.buf, name...)
	t.buf = append(t.buf, 0)
	return off
}

func (t *StringTable) Bytes() []byte {
	return t.buf
}

func (t *StringTable) Len() uint32 {
	return uint32(len(t.buf))
}
