// Public domain.

// Package mprog implements the skymask command.
package mprog

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/exit"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/skymask/box"
	"github.com/soniakeys/skymask/mangle"
	"github.com/soniakeys/skymask/xmatch"
	"github.com/soniakeys/unit"
)

const versionString = "skymask version 0.3 Go source."
const copyrightString = "Public domain."
const configFile = "skymask.config"

func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	opt := readConfig(cl)
	if cl.n >= 0 {
		opt.npoints = cl.n
	}
	m := loadMask(cl, opt)

	var pts []coord.Equa
	if cl.fnPoints != "" {
		pts = readPointsFile(cl.fnPoints)
	}
	switch {
	case cl.sweeps != "":
		listSweeps(cl.sweeps, pts)
	case cl.fnMatch != "":
		crossMatch(pts, readPointsFile(cl.fnMatch), opt)
	case cl.fnPoints != "":
		if m == nil {
			exit.Log("A region or mask file is needed to classify points.")
		}
		printHeadings(opt, "Inside")
		for i, in := range m.ClassifyEqua(pts) {
			fmt.Println(formatPoint(&pts[i], opt), in)
		}
	case opt.npoints > 0 && m != nil:
		sample(m, cl, opt)
	}
}

type commandLine struct {
	dc       string // config file
	fnRegion string // region description
	fnMask   string // mask to write, or read if no region
	fnPoints string // points to classify
	fnMatch  string // points to cross match with fnPoints
	sweeps   string // glob of sweep files
	box      string // sampling box
	sweepBox string // sweep file name giving sampling box
	n        int
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.dc, "c", "", "")
	flag.StringVar(&cl.fnMask, "m", "", "")
	flag.StringVar(&cl.fnPoints, "k", "", "")
	flag.StringVar(&cl.fnMatch, "x", "", "")
	flag.StringVar(&cl.sweeps, "w", "", "")
	flag.StringVar(&cl.box, "b", "", "")
	flag.StringVar(&cl.sweepBox, "s", "", "")
	flag.IntVar(&cl.n, "n", -1, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: skymask [options] <region.yaml>   write mask, then sample or classify
       skymask [options] -m <mask-file>  sample or classify with existing mask
       skymask -k <points> -w <glob>     list sweep files holding points
       skymask -k <points> -x <points>   cross match two point files
       skymask -h                        display help
       skymask -v                        display version and copyright

Options:
       -c <config-file>
       -m <mask-file>           (default <region>.ply)
       -n <npoints>             random points to generate
       -b ramin,ramax,decmin,decmax
       -s <sweep-file-name>     sampling box from a sweep file name
       -k <points-file>         points to classify, - for stdin
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() > 1,
		flag.NArg() == 0 && cl.fnMask == "" && cl.fnPoints == "":
		flag.Usage()
		os.Exit(1)
	}
	cl.fnRegion = flag.Arg(0)
	if cl.fnRegion != "" && cl.fnMask == "" {
		cl.fnMask = strings.TrimSuffix(cl.fnRegion,
			filepath.Ext(cl.fnRegion)) + ".ply"
	}
	return &cl
}

// loadMask builds the mask from a region file and writes it, or reads
// an existing mask file.  It returns nil if neither is specified.
func loadMask(cl *commandLine, opt *options) *mangle.Mask {
	if cl.fnRegion == "" {
		if cl.fnMask == "" {
			return nil
		}
		m, err := mangle.ReadFile(cl.fnMask)
		if err != nil {
			exit.Log(err)
		}
		return m
	}
	f, err := os.Open(cl.fnRegion)
	if err != nil {
		exit.Log(err)
	}
	defer f.Close()
	m, err := ReadRegion(f)
	if err != nil {
		log.Println("Region file:", cl.fnRegion)
		exit.Log(err)
	}
	format := mangle.Format{Precision: opt.precision}
	if err = format.WriteFile(cl.fnMask, m); err != nil {
		exit.Log(err)
	}
	return m
}

func sample(m *mangle.Mask, cl *commandLine, opt *options) {
	seed := opt.seed
	if !opt.repeatable {
		seed = uint64(time.Now().UnixNano())
	}
	s := mangle.NewSampler(seed)
	s.MaxAttempts = opt.maxAttempts
	s.Timeout = opt.timeout

	var pts []coord.Equa
	var err error
	if b, ok := samplingBox(cl); ok {
		pts, err = s.SampleBox(m, opt.npoints, b)
	} else {
		pts, err = s.Sample(m, opt.npoints)
	}
	if err != nil {
		exit.Log(err)
	}
	printHeadings(opt, "")
	for i := range pts {
		fmt.Println(formatPoint(&pts[i], opt))
	}
}

func samplingBox(cl *commandLine) (b box.Box, ok bool) {
	switch {
	case cl.box != "":
		f := strings.Split(cl.box, ",")
		if len(f) != 4 {
			exit.Log("Box must be four numbers: ramin,ramax,decmin,decmax")
		}
		v := make([]float64, 4)
		for i, s := range f {
			x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				exit.Log(fmt.Sprintf("Invalid box: %v", err))
			}
			v[i] = x
		}
		return box.Box{RAMin: v[0], RAMax: v[1], DecMin: v[2], DecMax: v[3]},
			true
	case cl.sweepBox != "":
		b, err := box.DecodeSweepName(cl.sweepBox)
		if err != nil {
			exit.Log(err)
		}
		return b, true
	}
	return
}

// listSweeps prints the sweep files matching glob that contain any of pts.
func listSweeps(glob string, pts []coord.Equa) {
	fns, err := filepath.Glob(glob)
	if err != nil {
		exit.Log(err)
	}
	ra := make([]float64, len(pts))
	dec := make([]float64, len(pts))
	for i := range pts {
		ra[i] = pts[i].RA.Deg()
		dec[i] = pts[i].Dec.Deg()
	}
	for _, fn := range fns {
		b, err := box.DecodeSweepName(fn)
		if err != nil {
			log.Println("skipping", err)
			continue
		}
		found, err := box.Any(ra, dec, b)
		if err != nil {
			log.Println("skipping", fn, err)
			continue
		}
		if found {
			fmt.Println(fn)
		}
	}
}

func crossMatch(set1, set2 []coord.Equa, opt *options) {
	printHeadings(opt, "Match         Sep\"")
	for _, p := range xmatch.Pairs(set1, set2, opt.matchSep) {
		a, b := &set1[p[0]], &set2[p[1]]
		fmt.Printf("%s  %s %6.2f\n", formatPoint(a, opt), formatPoint(b, opt),
			xmatch.Sep(a, b).Deg()*3600)
	}
}

func formatPoint(e *coord.Equa, opt *options) string {
	if opt.sexa {
		return fmt.Sprintf("%.2s %.1s", sexa.FmtRA(e.RA), sexa.FmtAngle(e.Dec))
	}
	return fmt.Sprintf("%11.6f %10.6f", e.RA.Deg(), e.Dec.Deg())
}

func printHeadings(opt *options, extra string) {
	if !opt.headings {
		return
	}
	fmt.Println(versionString)
	if opt.sexa {
		fmt.Println("RA            Dec          ", extra)
	} else {
		fmt.Println("         RA        Dec ", extra)
	}
}

func readPointsFile(fn string) []coord.Equa {
	var r io.Reader = os.Stdin
	if fn != "-" {
		f, err := os.Open(fn)
		if err != nil {
			exit.Log(err)
		}
		defer f.Close()
		r = f
	}
	pts, err := ReadPoints(r)
	if err != nil {
		log.Println("Points file:", fn)
		exit.Log(err)
	}
	return pts
}

// ReadPoints reads lines of RA and Dec in degrees.  Empty lines and lines
// beginning with # are ignored.  Additional columns are ignored.
func ReadPoints(r io.Reader) (pts []coord.Equa, err error) {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		l := strings.TrimSpace(sc.Text())
		if l == "" || l[0] == '#' {
			continue
		}
		f := strings.Fields(strings.Replace(l, ",", " ", -1))
		if len(f) < 2 {
			return nil, fmt.Errorf("line %d: need RA and Dec: %q", n, l)
		}
		ra, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", n, err)
		}
		dec, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", n, err)
		}
		if dec < -90 || dec > 90 {
			return nil, fmt.Errorf("line %d: %w", n, mangle.ErrInvalidDeclination)
		}
		pts = append(pts, coord.Equa{
			RA:  unit.RAFromDeg(ra),
			Dec: unit.AngleFromDeg(dec),
		})
	}
	return pts, sc.Err()
}

func printHelp() {
	fmt.Println(`
Skymask builds mangle polygon masks from a region description, writes
them in mangle polygon format, and generates random points inside them or
classifies given points as inside or outside.

Config file keywords:
   headings
   noheadings
   repeatable
   random
   sexagesimal
   degrees
   precision=<digits>
   maxattempts=<n>
   timeout=<duration>
   seed=<n>
   npoints=<n>
   matchsep=<arc minutes>

Region file (YAML):
   polygons:
     - caps:
         - {ra: 76, dec: 36, radius: 5}
         - {rah: 5, dec: 35, radius: 5, flip: true}
     - rect: [75, 90, 30, 40]
     - sweep: sweep-350m005-360p005.fits

For full documentation:
   go doc github.com/soniakeys/skymask`)
}
