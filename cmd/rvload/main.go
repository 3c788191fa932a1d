package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mgutz/ansi"
	"github.com/xyproto/env/v2"

	"github.com/rv32im/rvsim/loader"
	"github.com/rv32im/rvsim/models/cpu"
)

// core is just enough CPU to observe the loader's reset.
type core struct {
	pc uint32
}

func (c *core) Reset(entry uint32) { c.pc = entry }

func addrFlag(s, what string) uint32 {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		die(fmt.Errorf("bad %s address %q: %v", what, s, err))
	}
	return uint32(v)
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", ansi.Color("error:", "red"), err)
	os.Exit(1)
}

func main() {
	base := flag.String("base", env.Str("RVSIM_BASE", "0x10000"), "load address for raw binary images")
	entry := flag.String("entry", env.Str("RVSIM_ENTRY", ""), "entry point for raw binary images (default: load address)")
	flag.Usage = func() {
		fmt.Printf("Usage: %s [options] <exe>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	baseAddr := addrFlag(*base, "base")
	entryAddr := baseAddr
	if *entry != "" {
		entryAddr = addrFlag(*entry, "entry")
	}

	kind, err := loader.DetectType(path)
	if err != nil {
		die(err)
	}

	mem := &cpu.MemSim{}
	c := &core{}
	switch kind {
	case loader.FileTypeELF:
		err = loader.LoadELF(path, mem, c)
	default:
		err = loader.LoadBinary(path, baseAddr, entryAddr, mem, c)
	}
	if err != nil {
		die(err)
	}

	fmt.Printf("%s %s\n", path, kind)
	fmt.Println(mem.Mem.String())
	fmt.Printf("entry %s\n", ansi.Color(fmt.Sprintf("%#x", c.pc), "green"))
}
