package cpu

import (
	"fmt"
	"sort"
)

const (
	MEM_MAP_INVALID = iota
	MEM_MAP_OVERLAP
	MEM_READ_UNMAPPED
	MEM_WRITE_UNMAPPED
)

type MemError struct {
	Addr uint32
	Size uint32
	Enum int
}

func (m *MemError) Error() string {
	reason := "memory error"
	switch m.Enum {
	case MEM_MAP_INVALID:
		reason = "invalid map range"
	case MEM_MAP_OVERLAP:
		reason = "map overlaps existing region"
	case MEM_READ_UNMAPPED:
		reason = "unmapped read"
	case MEM_WRITE_UNMAPPED:
		reason = "unmapped write"
	}
	return fmt.Sprintf("%s at %#x(%d)", reason, m.Addr, m.Size)
}

// MemSim is a sparse simulated address space: a sorted list of disjoint
// mapped regions. Unlike a host MMU it refuses overlapping maps outright, so
// a malformed input file can never clobber an already-loaded image.
type MemSim struct {
	Mem Pages
}

// Map registers a zero-initialized region and returns its backing buffer.
func (m *MemSim) Map(addr, size uint32, prot int) ([]byte, error) {
	if size == 0 || uint64(addr)+uint64(size) > 1<<32 {
		return nil, &MemError{Addr: addr, Size: size, Enum: MEM_MAP_INVALID}
	}
	for _, mm := range m.Mem {
		if mm.Overlaps(addr, size) {
			return nil, &MemError{Addr: addr, Size: size, Enum: MEM_MAP_OVERLAP}
		}
	}
	page := &Page{Addr: addr, Size: size, Prot: prot, Data: make([]byte, size)}
	m.Mem = append(m.Mem, page)
	sort.Sort(m.Mem)
	return page.Data, nil
}

// Checks whether the address range exists in the currently-mapped memory.
func (m *MemSim) RangeValid(addr, size uint32) bool {
	i := m.Mem.bsearch(addr)
	if i == -1 {
		return size == 0
	}
	end := uint64(addr) + uint64(size)
	pos := uint64(addr)
	for _, mm := range m.Mem[i:] {
		if !mm.Contains(uint32(pos)) {
			break
		}
		pos = uint64(mm.Addr) + uint64(mm.Size)
		if pos >= end {
			break
		}
	}
	return pos >= end
}

func (m *MemSim) Read(addr uint32, p []byte) error {
	if !m.RangeValid(addr, uint32(len(p))) {
		return &MemError{Addr: addr, Size: uint32(len(p)), Enum: MEM_READ_UNMAPPED}
	}
	i := m.Mem.bsearch(addr)
	if i >= 0 {
		for _, mm := range m.Mem[i:] {
			if !mm.Contains(addr) {
				break
			}
			o := addr - mm.Addr
			n := copy(p, mm.Data[o:])
			addr, p = addr+uint32(n), p[n:]
			if len(p) == 0 {
				break
			}
		}
	}
	return nil
}

func (m *MemSim) Write(addr uint32, p []byte) error {
	if !m.RangeValid(addr, uint32(len(p))) {
		return &MemError{Addr: addr, Size: uint32(len(p)), Enum: MEM_WRITE_UNMAPPED}
	}
	i := m.Mem.bsearch(addr)
	if i >= 0 {
		for _, mm := range m.Mem[i:] {
			if !mm.Contains(addr) {
				break
			}
			o := addr - mm.Addr
			n := copy(mm.Data[o:], p)
			addr, p = addr+uint32(n), p[n:]
			if len(p) == 0 {
				break
			}
		}
	}
	return nil
}
