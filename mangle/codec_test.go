// Public domain.

package mangle_test

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/skymask/box"
	"github.com/soniakeys/skymask/mangle"
)

func ExampleEncode() {
	c1, _ := mangle.NewCapDeg(76, 36, 5)
	c2, _ := mangle.NewCapDeg(75, 35, 5)
	inter, _ := mangle.NewPolygon(0, c1, c2)
	mangle.Encode(os.Stdout, mangle.NewMask(inter))
	// Output:
	// 1 polygons
	// polygon 1 ( 2 caps, 1 weight, 0 pixel, 0 str):
	//   0.195718925  0.784985732  0.587785252  0.003805302  0.212012150  0.791240115  0.573576436  0.003805302
}

func ExampleFormat_Encode() {
	c1, _ := mangle.NewCapDeg(0, 90, 90)
	g1, _ := mangle.NewPolygon(2*math.Pi, c1)
	g2, _ := mangle.NewPolygon(0, c1.Flip())
	mangle.Format{Precision: 6}.Encode(os.Stdout, mangle.NewMask(g1, g2))
	// Output:
	// 2 polygons
	// polygon 1 ( 1 caps, 1 weight, 0 pixel, 6.283185307179586 str):
	//   0.000000  0.000000  1.000000  1.000000
	// polygon 2 ( 1 caps, 1 weight, 0 pixel, 0 str):
	//   0.000000  0.000000  1.000000 -1.000000
}

// a mask with some variety: intersections, unions, complements, areas.
func variedMask(t *testing.T) *mangle.Mask {
	c1, c2 := lensCaps(t)
	rect, err := mangle.NewRectBox(box.Box{RAMin: 165, RAMax: 180, DecMin: 60, DecMax: 70})
	if err != nil {
		t.Fatal(err)
	}
	south, _ := mangle.NewCapDeg(123, -67, 30)
	return mangle.NewMask(
		polygon(t, c1, c2),
		polygon(t, c1.Flip(), c2),
		rect,
		polygon(t, south.Flip(), south.Flip().Flip()),
		polygon(t, south))
}

func sameMembership(t *testing.T, a, b *mangle.Mask) {
	pts := testPoints()
	ca, cb := a.Classify(pts), b.Classify(pts)
	for i := range pts {
		if ca[i] != cb[i] {
			t.Fatalf("masks differ at point %d %v", i, pts[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	m := variedMask(t)
	var buf bytes.Buffer
	if err := mangle.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	d, err := mangle.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Polygons) != len(m.Polygons) {
		t.Fatal("polygons:", len(d.Polygons))
	}
	for i, g := range m.Polygons {
		dg := d.Polygons[i]
		if len(dg.Caps) != len(g.Caps) || dg.Area != g.Area {
			t.Fatalf("polygon %d: %d caps, area %g", i+1, len(dg.Caps), dg.Area)
		}
		for j, c := range g.Caps {
			cv, dv := c.Vector(), dg.Caps[j].Vector()
			for k := range cv {
				if math.Abs(cv[k]-dv[k]) > 5e-10 {
					t.Fatalf("polygon %d cap %d: %v != %v", i+1, j+1, dv, cv)
				}
			}
		}
	}
	sameMembership(t, m, d)
}

// the end-to-end example: intersection of two caps through a file
func TestWriteReadFile(t *testing.T) {
	c1, c2 := lensCaps(t)
	fn := filepath.Join(t.TempDir(), "intersection.ply")
	if err := mangle.WriteFile(fn, mangle.NewMask(polygon(t, c1, c2))); err != nil {
		t.Fatal(err)
	}
	m, err := mangle.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	in := mangle.Cart(unit.RAFromDeg(75.5), unit.AngleFromDeg(35.5))
	out := mangle.Cart(unit.RAFromDeg(76), unit.AngleFromDeg(45))
	if !m.Contains(&in) {
		t.Fatal("75.5, 35.5 not in intersection")
	}
	if m.Contains(&out) {
		t.Fatal("76, 45 in intersection")
	}
}

func TestWriteFileFailureKeepsTarget(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "mask.ply")
	good := variedMask(t)
	if err := mangle.WriteFile(fn, good); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	bad := &mangle.Mask{Polygons: []mangle.Polygon{{}}}
	if err := mangle.WriteFile(fn, bad); !errors.Is(err, mangle.ErrEmptyPolygon) {
		t.Fatal("empty polygon written:", err)
	}
	after, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("failed write changed target")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 {
		t.Fatal("temporary file left behind:", len(ents), "files")
	}
}

func TestWriteFileNoDir(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "missing", "mask.ply")
	if err := mangle.WriteFile(fn, variedMask(t)); !errors.Is(err, fs.ErrNotExist) {
		t.Fatal(err)
	}
}

func TestReadFileMissing(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "none.ply")
	_, err := mangle.ReadFile(fn)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal(err)
	}
	if !strings.HasPrefix(err.Error(), "reading mask file "+fn+":") {
		t.Fatal(err)
	}
}

func TestReadFileMalformed(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "bad.ply")
	if err := os.WriteFile(fn, []byte("99999999999999 polygons\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := mangle.ReadFile(fn)
	if !errors.Is(err, mangle.ErrMalformedMaskFile) {
		t.Fatal(err)
	}
	if !strings.HasPrefix(err.Error(), "reading mask file "+fn+":") {
		t.Fatal(err)
	}
}

func TestPrecision(t *testing.T) {
	m := variedMask(t)
	for _, p := range []int{5, 18} {
		if err := (mangle.Format{Precision: p}).Encode(&bytes.Buffer{}, m); err == nil {
			t.Fatal("precision accepted:", p)
		}
	}
	var buf bytes.Buffer
	if err := (mangle.Format{Precision: 6}).Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	if _, err := mangle.Decode(&buf); err != nil {
		t.Fatal("precision 6 mask unreadable:", err)
	}
}

func TestDecodeWrapped(t *testing.T) {
	d, err := mangle.Decode(strings.NewReader(`2 polygons
pixelization 0s
polygon 1 ( 2 caps, 1 weight, 0 pixel, 0.0123 str):
 0 0 1 0.5
 1 0 0
   1
polygon 7 ( 1 cap, 0.5 weight, 3 pixel, 0 str):
 0 1 0 -0.25

`))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Polygons) != 2 || len(d.Polygons[0].Caps) != 2 ||
		len(d.Polygons[1].Caps) != 1 {
		t.Fatal("wrong shape", d)
	}
	if d.Polygons[0].Area != .0123 {
		t.Fatal("area", d.Polygons[0].Area)
	}
	if d.Polygons[1].Caps[0].Depth != -.25 {
		t.Fatal("depth", d.Polygons[1].Caps[0].Depth)
	}
}

func TestDecodeMalformed(t *testing.T) {
	const h1 = "polygon 1 ( 1 caps, 1 weight, 0 pixel, 0 str):\n"
	for _, tc := range []struct {
		name, in string
		line     int
	}{
		{"empty", "", 0},
		{"no count", "polygons\n", 1},
		{"bad count", "x polygons\n", 1},
		{"missing polygon", "2 polygons\n" + h1 + " 0 0 1 0.5\n", 0},
		{"bad header", "1 polygons\npolygon 1 ( 1 caps ):\n 0 0 1 0.5\n", 2},
		{"bad area", "1 polygons\npolygon 1 ( 1 caps, 1 weight, 0 pixel, x str):\n", 2},
		{"no caps", "1 polygons\npolygon 1 ( 0 caps, 1 weight, 0 pixel, 0 str):\n", 2},
		{"short caps", "1 polygons\npolygon 1 ( 2 caps, 1 weight, 0 pixel, 0 str):\n 0 0 1 0.5\n", 0},
		{"caps into next", "2 polygons\npolygon 1 ( 2 caps, 1 weight, 0 pixel, 0 str):\n 0 0 1 0.5\n" + h1 + " 0 0 1 0.5\n", 4},
		{"extra values", "1 polygons\n" + h1 + " 0 0 1 0.5 1 0 0 0.5\n", 3},
		{"non-numeric", "1 polygons\n" + h1 + " 0 0 1 abc\n", 3},
		{"not unit", "1 polygons\n" + h1 + " 0 0 2 0.5\n", 3},
		{"deep", "1 polygons\n" + h1 + " 0 0 1 2.5\n", 3},
		{"trailing", "1 polygons\n" + h1 + " 0 0 1 0.5\n" + h1 + " 0 0 1 0.5\n", 4},
		{"truncated", "1 polygons\n" + h1 + " 0 0 1 0.5", 3},
		{"huge count", "99999999999999 polygons\n", 0},
		{"count overflow", "99999999999999999999 polygons\n", 1},
		{"huge caps", "1 polygons\npolygon 1 ( 99999999999999 caps, 1 weight, 0 pixel, 0 str):\n 0 0 1 0.5\n", 0},
		{"caps overflow", "1 polygons\npolygon 1 ( 4611686018427387904 caps, 1 weight, 0 pixel, 0 str):\n 0 0 1 0.5\n", 2},
		{"caps not int", "1 polygons\npolygon 1 ( 99999999999999999999 caps, 1 weight, 0 pixel, 0 str):\n 0 0 1 0.5\n", 2},
	} {
		_, err := mangle.Decode(strings.NewReader(tc.in))
		if !errors.Is(err, mangle.ErrMalformedMaskFile) {
			t.Fatalf("%s: got %v", tc.name, err)
		}
		var me *mangle.MalformedError
		if !errors.As(err, &me) {
			t.Fatalf("%s: %T", tc.name, err)
		}
		if me.Line != tc.line {
			t.Fatalf("%s: line %d, want %d (%v)", tc.name, me.Line, tc.line, err)
		}
	}
}

// a file cut short at any byte must not read as some other mask.
func TestDecodeTruncations(t *testing.T) {
	var buf bytes.Buffer
	if err := mangle.Encode(&buf, variedMask(t)); err != nil {
		t.Fatal(err)
	}
	full := buf.String()
	for n := 0; n < len(full); n++ {
		if _, err := mangle.Decode(strings.NewReader(full[:n])); err == nil {
			t.Fatalf("file truncated to %d of %d bytes accepted", n, len(full))
		}
	}
}
