// Public domain.

package mprog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/soniakeys/exit"
	"github.com/soniakeys/skymask/mangle"
	"github.com/soniakeys/unit"
)

type options struct {
	headings    bool
	sexa        bool
	repeatable  bool
	seed        uint64
	precision   int
	maxAttempts int
	timeout     time.Duration
	npoints     int
	matchSep    unit.Angle
}

func defaultOptions() *options {
	return &options{
		headings:  true,
		seed:      3,
		precision: mangle.DefaultFormat.Precision,
		npoints:   10000,
		matchSep:  unit.AngleFromDeg(10. / 60),
	}
}

// readConfig returns default options modified by the config file.  A
// missing default config file is not an error, a missing file specified
// with -c is.
func readConfig(cl *commandLine) *options {
	opt := defaultOptions()
	fn := cl.dc
	if fn == "" {
		fn = configFile
	}
	f, err := os.Open(fn)
	if err != nil {
		if cl.dc == "" {
			return opt
		}
		exit.Log(err)
	}
	defer f.Close()
	if err := parseConfig(f, opt); err != nil {
		exit.Log(err)
	}
	return opt
}

var rxSetting = regexp.MustCompile(`^[ \t]*(\w+)[ \t]*=[ \t]*(.+?)[ \t]*$`)

func parseConfig(r io.Reader, opt *options) error {
	for lr := bufio.NewReader(r); ; {
		l, isPre, err := lr.ReadLine()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		case isPre:
			return errors.New("Unexpected long line in config file.")
		case len(l) == 0:
			continue
		case l[0] == '#':
			continue
		}
		ls := string(l)
		switch ls {
		case "headings":
			opt.headings = true
			continue
		case "noheadings":
			opt.headings = false
			continue
		case "repeatable":
			opt.repeatable = true
			continue
		case "random":
			opt.repeatable = false
			continue
		case "sexagesimal":
			opt.sexa = true
			continue
		case "degrees":
			opt.sexa = false
			continue
		}
		ss := rxSetting.FindStringSubmatch(ls)
		if ss == nil {
			return errors.New("Unrecognized line in config file: " + ls)
		}
		if errStr := setOption(opt, ss[1], ss[2]); errStr > "" {
			return fmt.Errorf("%s\nConfig file line: %s", errStr, ls)
		}
	}
}

func setOption(opt *options, key, val string) (errStr string) {
	atoi := func(least int) (int, string) {
		n, err := strconv.Atoi(val)
		switch {
		case err != nil:
			return 0, err.Error()
		case n < least:
			return 0, fmt.Sprintf("%s must be at least %d.", key, least)
		}
		return n, ""
	}
	switch key {
	case "precision":
		opt.precision, errStr = atoi(6)
		if errStr == "" && opt.precision > 17 {
			errStr = "precision must be at most 17."
		}
	case "maxattempts":
		opt.maxAttempts, errStr = atoi(1)
	case "npoints":
		opt.npoints, errStr = atoi(0)
	case "seed":
		s, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return err.Error()
		}
		opt.seed = s
		opt.repeatable = true
	case "timeout":
		d, err := time.ParseDuration(val)
		if err != nil {
			return err.Error()
		}
		opt.timeout = d
	case "matchsep":
		m, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err.Error()
		}
		if m <= 0 {
			return "matchsep must be positive."
		}
		opt.matchSep = unit.AngleFromDeg(m / 60)
	default:
		return "Unrecognized keyword " + key + "."
	}
	return
}
