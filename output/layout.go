package output

import (
	"github.com/rv32im/rvsim/elf32"
)

// Layout gives the file offset of each block of an emitted executable. The
// format is loaded 1:1, so file offsets double as virtual addresses. The
// caller is responsible for having validated that the total program size fits
// the 32-bit address space.
type Layout struct {
	Text   uint32
	Data   uint32
	Strtab uint32
}

func NewLayout(textSize, dataSize uint32) Layout {
	text := uint32(elf32.HeadSize)
	data := text + textSize
	return Layout{
		Text:   text,
		Data:   data,
		Strtab: data + dataSize,
	}
}
