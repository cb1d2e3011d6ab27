// util/text.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"iter"
	"strings"
)

// SplitCommaKey splits a key of the form "foo, bar,bat" into its
// comma-separated parts, with surrounding whitespace removed. Empty parts
// are returned as empty strings so that the caller can report them.
func SplitCommaKey(k string) []string {
	var s []string
	for part := range strings.SplitSeq(k, ",") {
		s = append(s, strings.TrimSpace(part))
	}
	return s
}

// Given a string iterator and a base string, return two arrays of strings
// from the iterator that are respectively within one or two edits of the
// base string. // https://en.wikipedia.org/wiki/Levenshtein_distance
func SelectInTwoEdits(str string, seq iter.Seq[string], dist1, dist2 []string) ([]string, []string) {
	var cur, prev []int
	n := len(str)

candidates:
	for str2 := range seq {
		if str == str2 {
			continue
		}

		n2 := len(str2)
		if n2 > n+2 || n > n2+2 {
			continue
		}
		if n2 >= len(cur) {
			cur = make([]int, n2+1)
			prev = make([]int, n2+1)
		}

		for i := range n2 + 1 {
			prev[i] = i
		}

		for y := 1; y <= n; y++ {
			cur[0] = y
			rowBest := y

			for x := 1; x <= n2; x++ {
				cost := 0
				if str[y-1] != str2[x-1] {
					cost = 1
				}
				cur[x] = min(prev[x-1]+cost, cur[x-1]+1, prev[x]+1)
				rowBest = min(rowBest, cur[x])
			}

			if rowBest > 2 {
				// The distance can only grow from here.
				continue candidates
			}
			cur, prev = prev, cur
		}

		if prev[n2] == 1 {
			dist1 = append(dist1, str2)
		} else if prev[n2] == 2 {
			dist2 = append(dist2, str2)
		}
	}
	return dist1, dist2
}
