// Package mitab reads PSI-MITAB tab-separated interaction files.
package mitab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const readerBufferSize = 1 << 20 // 1 MB

// ErrEmptyInput is returned by NewReader when there is no header line.
var ErrEmptyInput = errors.New("mitab: empty input")

// Reader reads rows of a tab-separated file whose first line is the header.
// Columns are addressed by their literal header names, compared case-insensitively.
type Reader struct {
	r       *bufio.Reader
	columns []string
	index   map[string]int
	line    int
}

// NewReader reads the header line from r.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{r: bufio.NewReaderSize(r, readerBufferSize), index: make(map[string]int)}
	header, err := rd.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, err
	}
	rd.columns = strings.Split(header, "\t")
	for i, c := range rd.columns {
		key := columnKey(c)
		if _, ok := rd.index[key]; !ok {
			rd.index[key] = i
		}
	}
	return rd, nil
}

func columnKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Columns returns the header names in file order.
func (r *Reader) Columns() []string {
	return r.columns
}

// Require returns an error naming every column missing from the header.
func (r *Reader) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := r.index[columnKey(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("mitab: missing columns %q", missing)
	}
	return nil
}

// Line returns the number of lines read so far, header included.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next non-empty row, or io.EOF.
func (r *Reader) Next() (Row, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return Row{}, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return Row{fields: strings.Split(line, "\t"), index: r.index}, nil
	}
}

func (r *Reader) readLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	r.line++
	return strings.TrimRight(line, "\r\n"), nil
}

// Row is one record of the file.
type Row struct {
	fields []string
	index  map[string]int
}

// Get returns the value of column, or "" when the column or the field is absent.
func (r Row) Get(column string) string {
	i, ok := r.index[columnKey(column)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// At returns the field at position i, or "".
func (r Row) At(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}
