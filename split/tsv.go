package split

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
)

// ErrFormat is returned when a splits file cannot be parsed.
var ErrFormat = errors.New("split: malformed splits file")

// maxLine bounds the length of a line of a splits file.
const maxLine = 64 << 20

// Record is one line of a splits file: a weight and the genomes on one side of
// the split.
type Record struct {
	Weight  float64
	Genomes []string
}

// ReadTSV parses a splits file. Every non-empty line holds a weight followed
// by genome names, separated by tabs.
func ReadTSV(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		weight, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: weight %q", ErrFormat, line, fields[0])
		}
		out = append(out, Record{Weight: weight, Genomes: fields[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return out, nil
}

// WriteTSV writes list heaviest first, naming genome i by name(i).
func WriteTSV[C bitvec.Vector[C]](w io.Writer, list *TopList[C], name func(int) string) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for e := range list.All() {
		buf = strconv.AppendFloat(buf[:0], e.Weight, 'g', -1, 64)
		for _, g := range color.Indices(e.Color) {
			buf = append(buf, '\t')
			buf = append(buf, name(g)...)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
