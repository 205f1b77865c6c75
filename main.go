// Public domain.

package main

import "github.com/soniakeys/skymask/internal/mprog"

func main() {
	mprog.Main()
}
