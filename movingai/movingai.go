// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package movingai parses the MovingAI benchmark formats: octile .map files
// and .scen scenario files. Files ending in .gz are decompressed
// transparently.
package movingai

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/pathfind/grid"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Problem is one scenario instance.
type Problem struct {
	Bucket  int
	Start   grid.Point
	Target  grid.Point
	Optimal float64
}

// Scenario is a parsed .scen file: the map it refers to and its instances.
type Scenario struct {
	MapPath   string
	Instances []Problem
}

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "%s: opening gzip stream", path)
	}
	return &gzipReadCloser{zr: zr, f: f}, nil
}

type gzipReadCloser struct {
	zr *gzip.Reader
	f  *os.File
}

func (r *gzipReadCloser) Read(p []byte) (int, error) { return r.zr.Read(p) }

func (r *gzipReadCloser) Close() error {
	if err := r.zr.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// field splits a header line into its expected two tokens.
func field(line string) (string, string, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return "", "", errors.Errorf("expected two fields, got %q", line)
	}
	return tokens[0], tokens[1], nil
}

// ReadBitGrid parses an octile .map file into a bit grid. Cells '.', 'G',
// and 'S' are traversable; everything else is blocked.
func ReadBitGrid(path string) (*grid.BitGrid, error) {
	f, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := parseBitGrid(bufio.NewScanner(f))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

func parseBitGrid(lines *bufio.Scanner) (*grid.BitGrid, error) {
	header := func() (string, string, error) {
		if !lines.Scan() {
			return "", "", errors.New("unexpected end of file")
		}
		return field(lines.Text())
	}

	key, value, err := header()
	if err != nil {
		return nil, err
	}
	if key != "type" {
		return nil, errors.Errorf("expected first line to be type, got %q", key)
	}
	if value != "octile" {
		return nil, errors.Errorf("expected type octile, got %q", value)
	}

	key, value, err = header()
	if err != nil {
		return nil, err
	}
	if key != "height" {
		return nil, errors.Errorf("expected second line to be height, got %q", key)
	}
	height, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrap(err, "parsing height")
	}

	key, value, err = header()
	if err != nil {
		return nil, err
	}
	if key != "width" {
		return nil, errors.Errorf("expected third line to be width, got %q", key)
	}
	width, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrap(err, "parsing width")
	}

	if !lines.Scan() || strings.TrimSpace(lines.Text()) != "map" {
		return nil, errors.New("expected map token")
	}

	m := grid.NewBitGrid(width, height)
	y := 0
	for lines.Scan() {
		row := lines.Text()
		if y >= height {
			return nil, errors.New("too many lines of map")
		}
		for x, cell := range row {
			if x >= width {
				return nil, errors.New("too many columns of map")
			}
			m.Set(x, y, cell == '.' || cell == 'G' || cell == 'S')
		}
		y++
	}
	return m, lines.Err()
}

// ReadScenario parses a .scen file. The referenced map path is resolved
// relative to the scenario file when such a file exists.
func ReadScenario(path string) (*Scenario, error) {
	f, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scen, err := parseScenario(bufio.NewScanner(f))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	scen.MapPath = locateMap(scen.MapPath, path)
	return scen, nil
}

func parseScenario(lines *bufio.Scanner) (*Scenario, error) {
	if !lines.Scan() {
		return nil, errors.New("unexpected end of file")
	}
	key, value, err := field(lines.Text())
	if err != nil {
		return nil, err
	}
	if key != "version" {
		return nil, errors.Errorf("expected version, got %q", key)
	}
	if value != "1" && value != "1.0" {
		return nil, errors.Errorf("unsupported version number %q", value)
	}

	scen := &Scenario{}
	var mapSize [2]int
	for lines.Scan() {
		tokens := strings.Fields(lines.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 9 {
			return nil, errors.Errorf("problem instance has %d fields, want 9", len(tokens))
		}

		bucket, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, errors.Wrap(err, "parsing bucket")
		}
		var ints [6]int
		for i := range ints {
			if ints[i], err = strconv.Atoi(tokens[2+i]); err != nil {
				return nil, errors.Wrapf(err, "parsing instance field %d", 2+i)
			}
		}
		optimal, err := strconv.ParseFloat(tokens[8], 64)
		if err != nil {
			return nil, errors.Wrap(err, "parsing optimal length")
		}

		if scen.MapPath == "" {
			scen.MapPath = tokens[1]
			mapSize = [2]int{ints[0], ints[1]}
		} else {
			if tokens[1] != scen.MapPath {
				return nil, errors.New("problem instance specifies different map")
			}
			if mapSize != [2]int{ints[0], ints[1]} {
				return nil, errors.New("problem instance specifies incorrect map size")
			}
		}

		scen.Instances = append(scen.Instances, Problem{
			Bucket:  bucket,
			Start:   grid.Point{X: ints[2], Y: ints[3]},
			Target:  grid.Point{X: ints[4], Y: ints[5]},
			Optimal: optimal,
		})
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	if scen.MapPath == "" {
		return nil, errors.New("scenario contains no instances")
	}
	return scen, nil
}

func locateMap(mapPath, scenPath string) string {
	relative := filepath.Join(filepath.Dir(scenPath), mapPath)
	if _, err := os.Stat(relative); err == nil {
		return relative
	}
	return mapPath
}

// FormatPath renders a path the way the CLI binaries print it.
func FormatPath(path []grid.Point) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range path {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "(%d, %d)", p.X, p.Y)
	}
	sb.WriteByte(']')
	return sb.String()
}
