package cpu

// memory protections for mapped pages
const (
	PROT_NONE  = 0
	PROT_READ  = 1
	PROT_WRITE = 2
	PROT_EXEC  = 4
	PROT_ALL   = 7
)

// Memory is the slice of the simulated address space the loader needs: it
// registers a zero-initialized region and hands back the backing buffer.
type Memory interface {
	Map(addr, size uint32, prot int) ([]byte, error)
}

// Cpu abstracts the simulator core. The loader only ever restarts it at a new
// entry point.
type Cpu interface {
	Reset(entry uint32)
}
