// Public domain.

// Package xmatch finds points of two sets that lie close together on the sky.
package xmatch

import (
	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/angle"
	"github.com/soniakeys/unit"
)

// Sep returns the angular separation of a and b.
func Sep(a, b *coord.Equa) unit.Angle {
	return angle.Sep(unit.Angle(a.RA), a.Dec, unit.Angle(b.RA), b.Dec)
}

// Match marks points of set1 within sep of some point of set2, and points
// of set2 within sep of some point of set1.
//
// Separations of exactly sep do not match.  This is a simple all-pairs
// comparison intended for small sets.
func Match(set1, set2 []coord.Equa, sep unit.Angle) (m1, m2 []bool) {
	m1 = make([]bool, len(set1))
	m2 = make([]bool, len(set2))
	for i := range set1 {
		for j := range set2 {
			if Sep(&set1[i], &set2[j]) < sep {
				m1[i] = true
				m2[j] = true
			}
		}
	}
	return
}

// Pairs returns index pairs i, j where set1[i] and set2[j] are within sep.
func Pairs(set1, set2 []coord.Equa, sep unit.Angle) (p [][2]int) {
	for i := range set1 {
		for j := range set2 {
			if Sep(&set1[i], &set2[j]) < sep {
				p = append(p, [2]int{i, j})
			}
		}
	}
	return
}
