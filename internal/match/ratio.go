// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

// Ratio returns the similarity of a and b in [0,1] as 2*M/T, where T is
// the combined rune length and M the total size of the matching blocks.
// Blocks are found by taking the longest common substring, then recursing
// into the unmatched text on either side of it. Among equally long
// candidates the one starting earliest in a, then earliest in b, wins.
// Two empty strings are identical and score 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchedRunes(ra, rb)) / float64(total)
}

// matchedRunes sums the sizes of all matching blocks between a and b.
func matchedRunes(a, b []rune) int {
	positions := make(map[rune][]int)
	for j, r := range b {
		positions[r] = append(positions[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, positions, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside
// a[alo:ahi] and b[blo:bhi]. positions maps each rune of b to its indexes
// in ascending order.
func longestMatch(a []rune, positions map[rune][]int, alo, ahi, blo, bhi int) (int, int, int) {
	bestI, bestJ, bestK := alo, blo, 0

	// runLen[j] is the length of the match ending at a[i-1], b[j].
	runLen := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range positions[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > bestK {
				bestI, bestJ, bestK = i-k+1, j-k+1, k
			}
		}
		runLen = next
	}
	return bestI, bestJ, bestK
}
