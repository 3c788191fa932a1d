package loader

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/rv32im/rvsim/elf32"
)

type FileType int

const (
	FileTypeBinary FileType = iota
	FileTypeELF
)

func (t FileType) String() string {
	switch t {
	case FileTypeELF:
		return "elf"
	case FileTypeBinary:
		return "binary"
	}
	return "unknown"
}

// DetectType sniffs the first four bytes of a file to pick a loader path. It
// performs no further validation: a file that merely starts with the ELF
// magic is still classified as ELF and left for LoadELF to reject.
func DetectType(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(ErrDetect, "open %s: %v", path, err)
	}
	defer f.Close()

	// a file too short for a magic is a detection error, not "raw binary"
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return 0, errors.Wrapf(ErrDetect, "read magic of %s: %v", path, err)
	}
	if elf32.MatchMagic(f) {
		return FileTypeELF, nil
	}
	return FileTypeBinary, nil
}
