package split

import (
	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
)

// Clusters refines the set of all genomes by every split in turn. Each split
// cuts every cluster it partially covers into the covered part, appended as a
// new cluster, and the rest, which keeps its place.
func Clusters[C bitvec.Vector[C]](space color.Space[C], splits []C) [][]int {
	clusters := []C{space.Mask()}
	for _, s := range splits {
		s = s.And(space.Mask())
		for _, g := range color.Indices(s) {
			for i, c := range clusters {
				if !c.Test(uint(g)) {
					continue
				}
				if in := c.And(s); in != c {
					clusters[i] = c.AndNot(s)
					clusters = append(clusters, in)
				}
				break
			}
		}
	}
	out := make([][]int, len(clusters))
	for i, c := range clusters {
		out[i] = color.Indices(c)
	}
	return out
}
