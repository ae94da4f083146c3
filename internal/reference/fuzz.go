package reference

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TokenSetRatio scores the similarity of two strings from 0 to 100 by
// comparing their distinct word sets, ignoring case, punctuation, word order
// and repetition. Scores match fuzzywuzzy's token_set_ratio with the
// pure-Python (difflib) backend, so thresholds tuned against that library
// carry over unchanged.
func TokenSetRatio(s1, s2 string) int {
	p1 := processString(s1)
	p2 := processString(s2)
	if p1 == "" || p2 == "" {
		return 0
	}

	tokens1 := tokenSet(p1)
	tokens2 := tokenSet(p2)

	var sect, diff1to2, diff2to1 []string
	for tok := range tokens1 {
		if _, ok := tokens2[tok]; ok {
			sect = append(sect, tok)
		} else {
			diff1to2 = append(diff1to2, tok)
		}
	}
	for tok := range tokens2 {
		if _, ok := tokens1[tok]; !ok {
			diff2to1 = append(diff2to1, tok)
		}
	}
	sort.Strings(sect)
	sort.Strings(diff1to2)
	sort.Strings(diff2to1)

	sortedSect := strings.Join(sect, " ")
	combined1to2 := strings.TrimSpace(sortedSect + " " + strings.Join(diff1to2, " "))
	combined2to1 := strings.TrimSpace(sortedSect + " " + strings.Join(diff2to1, " "))

	best := ratio(sortedSect, combined1to2)
	if r := ratio(sortedSect, combined2to1); r > best {
		best = r
	}
	if r := ratio(combined1to2, combined2to1); r > best {
		best = r
	}
	return best
}

// ratio is fuzzywuzzy's simple ratio: identical strings score 100, an empty
// side scores 0, otherwise the difflib similarity rounded half-to-even.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return int(math.RoundToEven(100 * sequenceRatio([]rune(a), []rune(b))))
}

// processString drops code points 128-255, replaces every non-word rune
// with a space, lowercases and trims.
func processString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 128 && r <= 255 {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}

// sequenceRatio is difflib.SequenceMatcher(None, a, b).ratio():
// 2*M/T where M is the total size of the Ratcliff/Obershelp matching blocks.
func sequenceRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	m := newMatcher(a, b)
	return 2 * float64(m.matchedRunes()) / float64(total)
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	// difflib's autojunk heuristic: in long sequences, runes that make up
	// more than 1% of b are dropped from the index.
	if n := len(b); n >= 200 {
		ntest := n/100 + 1
		for r, idxs := range m.b2j {
			if len(idxs) > ntest {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

func (m *matcher) matchedRunes() int {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	matched := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
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

// longestMatch mirrors difflib.SequenceMatcher.find_longest_match with no
// junk function: the earliest longest block wins ties.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	// Extend across runes the autojunk pass removed from the index.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}

// substringMatches counts the whitespace-separated query tokens that occur
// verbatim (case-sensitive) inside target. Repeated tokens count each time.
func substringMatches(target, query string) int {
	n := 0
	for _, tok := range strings.Fields(query) {
		if strings.Contains(target, tok) {
			n++
		}
	}
	return n
}
