package rle

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// Header is the first line of a competition mask file.
const Header = "ImageId,EncodedPixels"

// Record is one line of a mask file.
type Record struct {
	Name string
	Runs []Run
}

// FormatRuns renders runs as space-delimited "index len" pairs.
func FormatRuns(runs []Run) string {
	var sb strings.Builder
	for i, r := range runs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(r.Index))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(r.Len))
	}
	return sb.String()
}

// ParseRuns parses space-delimited "index len" pairs for a raster of the
// given height. The returned runs are sorted. A stride below 1 returns
// raster.ErrInvalidSize.
func ParseRuns(s string, stride int) ([]Run, error) {
	if stride < 1 {
		return nil, fmt.Errorf("%w: stride %d", raster.ErrInvalidSize, stride)
	}
	toks := strings.Fields(s)
	if len(toks)%2 != 0 {
		return nil, fmt.Errorf("%w: %d tokens", ErrOddTokens, len(toks))
	}
	runs := make([]Run, 0, len(toks)/2)
	for i := 0; i < len(toks); i += 2 {
		index, err := strconv.Atoi(toks[i])
		if err != nil || index < 1 {
			return nil, fmt.Errorf("%w: index %q", ErrBadToken, toks[i])
		}
		n, err := strconv.Atoi(toks[i+1])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: length %q", ErrBadToken, toks[i+1])
		}
		runs = append(runs, NewRun(stride, index, n))
	}
	SortRuns(runs)
	return runs, nil
}

// ParseOptions controls ParseMasks.
type ParseOptions struct {
	// Name keeps only records with this name. Empty keeps every record.
	Name string
	// Logger receives a warning for every skipped record. Nil is silent.
	Logger *log.Logger
}

// ParseMasks reads mask records for rasters of height stride.
//
// A first line that does not parse as a record is treated as the header.
// Records with an odd token count or invalid numbers are skipped; each one
// adds a warning to the returned slice and continues. Records with no runs
// ("name,") are skipped silently. The error return is reserved for read
// failures and a stride below 1.
func ParseMasks(r io.Reader, stride int, opts ParseOptions) ([]Record, []error, error) {
	if stride < 1 {
		return nil, nil, fmt.Errorf("%w: stride %d", raster.ErrInvalidSize, stride)
	}
	var records []Record
	var warnings []error

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		name, pairs, ok := strings.Cut(text, ",")
		if !ok {
			if line > 1 {
				warnings = append(warnings, warn(opts.Logger, line, fmt.Errorf("%w: missing comma", ErrBadToken)))
			}
			continue
		}
		name = strings.TrimSpace(name)
		if opts.Name != "" && name != opts.Name {
			continue
		}
		if strings.TrimSpace(pairs) == "" {
			continue
		}

		runs, err := ParseRuns(pairs, stride)
		if err != nil {
			if line == 1 {
				continue // header
			}
			warnings = append(warnings, warn(opts.Logger, line, fmt.Errorf("record %q: %w", name, err)))
			continue
		}
		records = append(records, Record{Name: name, Runs: runs})
	}
	if err := sc.Err(); err != nil {
		return records, warnings, fmt.Errorf("failed to read masks: %w", err)
	}
	return records, warnings, nil
}

func warn(l *log.Logger, line int, err error) error {
	err = fmt.Errorf("line %d: %w", line, err)
	if l != nil {
		l.Printf("Warning: skipping mask record: %v", err)
	}
	return err
}

// Masks returns the run lists of the records.
func Masks(records []Record) [][]Run {
	out := make([][]Run, len(records))
	for i, r := range records {
		out[i] = r.Runs
	}
	return out
}

// WriteHeader writes the mask file header line.
func WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintln(w, Header)
	return err
}

// WriteMasks writes one "name,runs" record per mask whose total length is
// greater than minSize, and returns the number of records written. When no
// mask qualifies a single empty record "name," is written so that every
// image appears in the file.
func WriteMasks(w io.Writer, name string, masks [][]Run, minSize int) (int, error) {
	n := 0
	for _, m := range masks {
		if TotalLen(m) <= minSize {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s,%s\n", name, FormatRuns(m)); err != nil {
			return n, err
		}
		n++
	}
	if n == 0 {
		if _, err := fmt.Fprintf(w, "%s,\n", name); err != nil {
			return 0, err
		}
	}
	return n, nil
}
