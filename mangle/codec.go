// Public domain.

package mangle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedMaskFile is matched by all errors from decoding bad input.
var ErrMalformedMaskFile = errors.New("mangle: malformed mask file")

// MalformedError describes where a mask file failed to parse.
type MalformedError struct {
	Line int    // 1-based line number, 0 if the problem is end of input
	Text string // the offending line
	Msg  string
}

func (e *MalformedError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", ErrMalformedMaskFile, e.Msg)
	}
	return fmt.Sprintf("%v: line %d: %s (%q)",
		ErrMalformedMaskFile, e.Line, e.Msg, e.Text)
}

// Is makes MalformedError match ErrMalformedMaskFile.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedMaskFile
}

// Format holds output options for writing mask files.
type Format struct {
	// Precision is the number of decimal digits written for each cap
	// component.  It must be in the range 6 to 17.
	Precision int
}

// DefaultFormat writes cap components with 9 decimal digits.
var DefaultFormat = Format{Precision: 9}

// Encode writes m to w in the mangle polygon format.
func (f Format) Encode(w io.Writer, m *Mask) error {
	if f.Precision < 6 || f.Precision > 17 {
		return fmt.Errorf("mangle: precision %d not in range 6 to 17",
			f.Precision)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d polygons\n", len(m.Polygons))
	width := f.Precision + 3
	for i, g := range m.Polygons {
		fmt.Fprintf(bw, "polygon %d ( %d caps, 1 weight, 0 pixel, %s str):\n",
			i+1, len(g.Caps), strconv.FormatFloat(g.Area, 'g', -1, 64))
		for _, c := range g.Caps {
			for _, x := range c.Vector() {
				fmt.Fprintf(bw, " %*.*f", width, f.Precision, x)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes m to the file fn.
//
// The mask is written to a temporary file in the same directory which then
// replaces fn.  If anything fails, fn is left as it was.
func (f Format) WriteFile(fn string, m *Mask) (err error) {
	dir, base := filepath.Split(fn)
	if dir == "" {
		dir = "."
	}
	t, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "creating mask file %s", fn)
	}
	tn := t.Name()
	defer func() {
		if err != nil {
			t.Close() // may be closed already, error doesn't matter.
			os.Remove(tn)
		}
	}()
	if err = f.Encode(t, m); err != nil {
		return errors.Wrapf(err, "writing mask file %s", fn)
	}
	if err = t.Chmod(0644); err != nil {
		return errors.Wrapf(err, "writing mask file %s", fn)
	}
	if err = t.Sync(); err != nil {
		return errors.Wrapf(err, "writing mask file %s", fn)
	}
	if err = t.Close(); err != nil {
		return errors.Wrapf(err, "writing mask file %s", fn)
	}
	if err = os.Rename(tn, fn); err != nil {
		return errors.Wrapf(err, "replacing mask file %s", fn)
	}
	return nil
}

// Encode writes m to w with DefaultFormat.
func Encode(w io.Writer, m *Mask) error {
	return DefaultFormat.Encode(w, m)
}

// WriteFile writes m to the file fn with DefaultFormat.
func WriteFile(fn string, m *Mask) error {
	return DefaultFormat.WriteFile(fn, m)
}

// ReadFile reads a mask from the file fn.
func ReadFile(fn string) (*Mask, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "reading mask file %s", fn)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading mask file %s", fn)
	}
	return m, nil
}

var (
	rxCount   = regexp.MustCompile(`^\s*(\d+)\s+polygons?\s*$`)
	rxPolygon = regexp.MustCompile(`^\s*polygon\s+(\d+)\s*\(\s*(\d+)\s+caps?\s*,` +
		`\s*(\S+)\s+weight\s*,\s*(\S+)\s+pixel\s*,\s*(\S+)\s+str\s*\)\s*:?\s*$`)
)

// header lines that mangle tools may write between the polygon count and
// the first polygon.  they carry nothing this package uses.
var skipKeywords = []string{"pixelization", "snapped", "balkanized", "real"}

// lineReader hands out lines, tracking line numbers and rejecting an
// unterminated last line.
type lineReader struct {
	r *bufio.Reader
	n int
}

// next returns the next non-blank line.  ok is false at end of input.
func (lr *lineReader) next() (line string, ok bool, err error) {
	for {
		s, err := lr.r.ReadString('\n')
		switch {
		case err == io.EOF && s == "":
			return "", false, nil
		case err == io.EOF:
			lr.n++
			return "", false, &MalformedError{lr.n, s,
				"unterminated last line, file may be truncated"}
		case err != nil:
			return "", false, err
		}
		lr.n++
		if s = strings.TrimRight(s, "\r\n"); strings.TrimSpace(s) != "" {
			return s, true, nil
		}
	}
}

// Decode reads a mask in mangle polygon format from r.
//
// The numbers of each polygon's caps may be spread over any number of lines.
// Counts must agree with the data present, and input must end with a
// newline.  Errors are *MalformedError unless the reader itself fails.
func Decode(r io.Reader) (*Mask, error) {
	lr := &lineReader{r: bufio.NewReader(r)}
	line, ok, err := lr.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &MalformedError{Msg: "empty input"}
	}
	sm := rxCount.FindStringSubmatch(line)
	if sm == nil {
		return nil, &MalformedError{lr.n, line, "expected polygon count"}
	}
	np, err := strconv.Atoi(sm[1])
	if err != nil {
		return nil, &MalformedError{lr.n, line, err.Error()}
	}
	// counts come from the file, so nothing is allocated from them.
	m := &Mask{}
	for i := 0; i < np; i++ {
		g, err := decodePolygon(lr, i == 0)
		if err != nil {
			return nil, err
		}
		m.Polygons = append(m.Polygons, g)
	}
	switch line, ok, err = lr.next(); {
	case err != nil:
		return nil, err
	case ok:
		return nil, &MalformedError{lr.n, line,
			fmt.Sprintf("data past the %d polygons declared", np)}
	}
	return m, nil
}

func decodePolygon(lr *lineReader, first bool) (g Polygon, err error) {
	var line string
	var ok bool
	for {
		if line, ok, err = lr.next(); err != nil {
			return
		}
		if !ok {
			return g, &MalformedError{Msg: "missing polygon, file may be truncated"}
		}
		if !first || !isSkipped(line) {
			break
		}
	}
	sm := rxPolygon.FindStringSubmatch(line)
	if sm == nil {
		return g, &MalformedError{lr.n, line, "expected polygon header"}
	}
	nc, err := strconv.Atoi(sm[2])
	if err != nil {
		return g, &MalformedError{lr.n, line, err.Error()}
	}
	switch {
	case nc == 0:
		return g, &MalformedError{lr.n, line, "polygon with no caps"}
	case nc > math.MaxInt/4:
		return g, &MalformedError{lr.n, line, "cap count too large"}
	}
	for _, f := range sm[3:5] {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return g, &MalformedError{lr.n, line, "non-numeric weight or pixel"}
		}
	}
	if g.Area, err = strconv.ParseFloat(sm[5], 64); err != nil {
		return g, &MalformedError{lr.n, line, "non-numeric area"}
	}
	var v []float64
	for len(v) < 4*nc {
		if line, ok, err = lr.next(); err != nil {
			return
		}
		if !ok {
			return g, &MalformedError{Msg: fmt.Sprintf(
				"polygon %s: %d of %d cap values, file may be truncated",
				sm[1], len(v), 4*nc)}
		}
		if rxPolygon.MatchString(line) {
			return g, &MalformedError{lr.n, line, fmt.Sprintf(
				"polygon %s: %d caps declared, %d values found",
				sm[1], nc, len(v))}
		}
		for _, f := range strings.Fields(line) {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return g, &MalformedError{lr.n, line, "non-numeric cap value " + f}
			}
			v = append(v, x)
		}
		if len(v) > 4*nc {
			return g, &MalformedError{lr.n, line, fmt.Sprintf(
				"polygon %s: %d caps declared, %d values found",
				sm[1], nc, len(v))}
		}
	}
	g.Caps = make([]Cap, nc) // nc now matches the values read
	for i := range g.Caps {
		c, err := CapFromVector(v[4*i], v[4*i+1], v[4*i+2], v[4*i+3])
		if err != nil {
			return g, &MalformedError{lr.n, line,
				fmt.Sprintf("polygon %s cap %d: %v", sm[1], i+1, err)}
		}
		g.Caps[i] = c
	}
	return g, nil
}

func isSkipped(line string) bool {
	f := strings.Fields(line)
	for _, k := range skipKeywords {
		if f[0] == k {
			return true
		}
	}
	return false
}
