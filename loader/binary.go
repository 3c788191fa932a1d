package loader

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/rv32im/rvsim/models/cpu"
)

// MaxBinarySize bounds raw memory images. This is a sanity cap on input
// files, not a format limit.
const MaxBinarySize = 0x8000000 // 128 MiB

// LoadBinary maps an entire file into the simulated address space at base and
// restarts the core at entry. The core is never reset if any step fails.
func LoadBinary(path string, base, entry uint32, mem cpu.Memory, c cpu.Cpu) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrFile, "open %s: %v", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return errors.Wrapf(ErrFile, "stat %s: %v", path, err)
	}
	size := st.Size()
	if size == 0 || size > MaxBinarySize {
		return errors.Wrapf(ErrFile, "%s: size %d not loadable", path, size)
	}

	buf, err := mem.Map(base, uint32(size), cpu.PROT_ALL)
	if err != nil {
		return errors.Wrapf(ErrMemory, "map %#x(%d): %v", base, size, err)
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return errors.Wrapf(ErrFile, "read %s: %v", path, err)
	}

	c.Reset(entry)
	return nil
}
