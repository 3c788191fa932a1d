package cpu

import (
	"fmt"
	"strings"
)

type Page struct {
	Addr uint32
	Size uint32
	Prot int
	Data []byte
}

func (p *Page) String() string {
	prots := []int{PROT_READ, PROT_WRITE, PROT_EXEC}
	chars := []string{"r", "w", "x"}
	prot := ""
	for i := range prots {
		if p.Prot&prots[i] != 0 {
			prot += chars[i]
		} else {
			prot += "-"
		}
	}
	return fmt.Sprintf("0x%x-0x%x %s", p.Addr, uint64(p.Addr)+uint64(p.Size), prot)
}

func (p *Page) Contains(addr uint32) bool {
	return addr >= p.Addr && uint64(addr) < uint64(p.Addr)+uint64(p.Size)
}

func (p *Page) Overlaps(addr, size uint32) bool {
	start := uint64(p.Addr)
	end := start + uint64(p.Size)
	s2 := uint64(addr)
	e2 := s2 + uint64(size)
	return s2 < end && start < e2
}

type Pages []*Page

func (p Pages) Len() int           { return len(p) }
func (p Pages) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p Pages) Less(i, j int) bool { return p[i].Addr < p[j].Addr }

func (p Pages) String() string {
	s := make([]string, len(p))
	for i, v := range p {
		s[i] = v.String()
	}
	return strings.Join(s, "\n")
}

// binary search to find index of first region containing addr, if any, else -1
func (p Pages) bsearch(addr uint32) int {
	l := 0
	r := len(p) - 1
	for l <= r {
		mid := (l + r) / 2
		e := p[mid]
		if addr >= e.Addr {
			if e.Contains(addr) {
				return mid
			}
			l = mid + 1
		} else {
			r = mid - 1
		}
	}
	return -1
}

func (p Pages) Find(addr uint32) *Page {
	i := p.bsearch(addr)
	if i >= 0 {
		return p[i]
	}
	return nil
}
