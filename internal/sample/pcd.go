package sample

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// pcdField describes one per-point field from a PCD header.
type pcdField struct {
	name   string
	size   int
	typ    byte // 'F', 'I' or 'U'
	offset int
}

// pcdFile is a parsed binary PCD file. Only the subset of the format the
// dataset uses is supported: single-count fields and DATA binary.
type pcdFile struct {
	fields map[string]pcdField
	stride int
	points int
	data   []byte
}

func parsePCD(r io.Reader) (*pcdFile, error) {
	br := bufio.NewReader(r)
	p := &pcdFile{fields: make(map[string]pcdField)}
	var names []string
	var sizes, counts []int
	var types []byte
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("unterminated PCD header: %w", err)
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}
		switch tokens[0] {
		case "FIELDS":
			names = tokens[1:]
		case "SIZE":
			if sizes, err = atoiAll(tokens[1:]); err != nil {
				return nil, err
			}
		case "TYPE":
			for _, t := range tokens[1:] {
				types = append(types, t[0])
			}
		case "COUNT":
			if counts, err = atoiAll(tokens[1:]); err != nil {
				return nil, err
			}
		case "POINTS":
			if p.points, err = strconv.Atoi(tokens[1]); err != nil {
				return nil, err
			}
		case "DATA":
			if tokens[1] != "binary" {
				return nil, fmt.Errorf("unsupported PCD data encoding %q", tokens[1])
			}
			return p.finish(names, sizes, types, counts, br)
		}
	}
}

func (p *pcdFile) finish(names []string, sizes []int, types []byte, counts []int, r io.Reader) (*pcdFile, error) {
	if len(names) != len(sizes) || len(names) != len(types) {
		return nil, fmt.Errorf("inconsistent PCD header: %d fields, %d sizes, %d types",
			len(names), len(sizes), len(types))
	}
	offset := 0
	for i, name := range names {
		if len(counts) > i && counts[i] != 1 {
			return nil, fmt.Errorf("unsupported PCD field count %d for %q", counts[i], name)
		}
		p.fields[name] = pcdField{name: name, size: sizes[i], typ: types[i], offset: offset}
		offset += sizes[i]
	}
	p.stride = offset
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < p.points*p.stride {
		return nil, fmt.Errorf("truncated PCD payload: %d bytes for %d points", len(data), p.points)
	}
	p.data = data[:p.points*p.stride]
	return p, nil
}

func atoiAll(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for i, t := range tokens {
		n, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("bad PCD header value %q: %w", t, err)
		}
		out[i] = n
	}
	return out, nil
}

// float32At reads a float field; absent fields read as zero.
func (p *pcdFile) float32At(point int, name string) float32 {
	f, ok := p.fields[name]
	if !ok || f.typ != 'F' || f.size != 4 {
		return 0
	}
	bits := binary.LittleEndian.Uint32(p.data[point*p.stride+f.offset:])
	return math.Float32frombits(bits)
}

// uint8At reads a one-byte integer field; absent fields read as zero.
func (p *pcdFile) uint8At(point int, name string) uint8 {
	f, ok := p.fields[name]
	if !ok || f.size != 1 {
		return 0
	}
	return p.data[point*p.stride+f.offset]
}
