// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// pf-topping-plus preprocesses a map into a partial-cell CPD (-generate) or
// answers scenario instances by CPD-guided path extraction.
//
// The oracle is stored next to the map as <map>.top+, prefixed with a magic
// number.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pathfind/grid"
	"github.com/grailbio/pathfind/movingai"
	"github.com/grailbio/pathfind/oracle"
)

var generate = flag.Bool("generate", false, "preprocess the map instead of solving a scenario")

// cpdMagic prefixes oracle files written by this binary. The library format
// itself carries no magic.
const cpdMagic = 0xA53BE83F

func oraclePath(mapPath string) string { return mapPath + ".top+" }

func writeOracle(path string, o *oracle.PartialCellCpd) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], cpdMagic)
	if _, err := w.Write(magic[:]); err != nil {
		f.Close()
		return err
	}
	if err := o.Save(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readOracle(path string, m *grid.BitGrid) (*oracle.PartialCellCpd, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(magic[:]) != cpdMagic {
		return nil, fmt.Errorf("%s: not a partial-cell cpd file", path)
	}
	return oracle.LoadPartialCellCpd(m, r)
}

func progress(done, total int, elapsed time.Duration) {
	if done&0x3F != 0 && done != total {
		return
	}
	frac := float64(done) / float64(total)
	eta := time.Duration(elapsed.Seconds()/frac-elapsed.Seconds()) * time.Second
	fmt.Fprintf(os.Stderr, "\r%5.1f%% ETA %v    ", frac*100, eta)
	if done == total {
		fmt.Fprintln(os.Stderr)
	}
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: pf-topping-plus [-generate] <map-or-scenario>")
	}

	if *generate {
		mapPath := flag.Arg(0)
		m, err := movingai.ReadBitGrid(mapPath)
		if err != nil {
			log.Fatalf("reading map: %v", err)
		}
		o := oracle.ComputePartialCellCpd(m, progress)
		if err := writeOracle(oraclePath(mapPath), o); err != nil {
			log.Fatalf("writing oracle: %v", err)
		}
		log.Printf("wrote %s (%d jump points)", oraclePath(mapPath), o.NumJumpPoints())
		return
	}

	scen, err := movingai.ReadScenario(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading scenario: %v", err)
	}
	m, err := movingai.ReadBitGrid(scen.MapPath)
	if err != nil {
		log.Fatalf("reading map: %v", err)
	}
	o, err := readOracle(oraclePath(scen.MapPath), m)
	if err != nil {
		log.Fatalf("reading oracle (run with -generate first?): %v", err)
	}

	tops := oracle.NewToppingPlus(m, o.JumpDB(), o)
	for _, problem := range scen.Instances {
		path, cost, err := tops.GetPath(problem.Start, problem.Target)
		if err != nil {
			fmt.Println("failed to find path")
			continue
		}
		fmt.Printf("%.2f %s\n", cost, movingai.FormatPath(path))
	}
}
