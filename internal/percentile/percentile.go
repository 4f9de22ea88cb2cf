// Package percentile maps ranks onto percentiles and the fixed 20-band color
// scale leaderboards render with.
package percentile

import (
	"fmt"
	"math"
	"sort"
)

const (
	// TextDark is used on light backgrounds.
	TextDark = "#000000"
	// TextLight is used on dark backgrounds.
	TextLight = "#ffffff"

	// darkTextFloor is the lowest band threshold still rendered with dark text.
	darkTextFloor = 56
)

// Bucket is one band of the percentile color scale.
type Bucket struct {
	Index      int     `json:"index"`
	Threshold  float64 `json:"threshold"`
	Background string  `json:"background"`
	Text       string  `json:"text"`
}

var thresholds = [...]float64{96, 91, 86, 81, 76, 71, 66, 61, 56, 51, 46, 41, 36, 31, 26, 21, 16, 11, 6, 0}

var colors = [...]string{
	"#58c36c", "#6aca7c", "#7cd08b", "#8dd69b", "#9fddaa",
	"#b0e3ba", "#c2e9c9", "#d4f0d9", "#e5f6e8", "#f7fcf8",
	"#fdf5f4", "#fbe1df", "#f9cdc9", "#f7b9b4", "#f5a59f",
	"#f2928a", "#f07e74", "#ee6a5f", "#ec564a", "#ea4335",
}

var bands = buildBands()

func buildBands() []Bucket {
	out := make([]Bucket, len(thresholds))
	for i, th := range thresholds {
		text := TextLight
		if th >= darkTextFloor {
			text = TextDark
		}
		out[i] = Bucket{Index: i, Threshold: th, Background: colors[i], Text: text}
	}
	return out
}

// Bands returns a copy of the 20-band table, best band first. The last band is
// the catch-all and has threshold 0.
func Bands() []Bucket {
	out := make([]Bucket, len(bands))
	copy(out, bands)
	return out
}

// Percentile converts a 1-based rank among n peers into a percentile.
// It panics when n <= 0 or rank is outside [1, n].
func Percentile(rank, n int, higherIsBetter bool) float64 {
	if n <= 0 {
		panic(fmt.Sprintf("percentile: peer count must be positive, got %d", n))
	}
	if rank < 1 || rank > n {
		panic(fmt.Sprintf("percentile: rank %d outside [1, %d]", rank, n))
	}
	if higherIsBetter {
		return float64(n-rank+1) / float64(n) * 100
	}
	return float64(rank) / float64(n) * 100
}

// BucketFor returns the band containing p. It panics for NaN or values
// outside [0, 100], which no Percentile result can produce.
func BucketFor(p float64) Bucket {
	if math.IsNaN(p) || p < 0 || p > 100 {
		panic(fmt.Sprintf("percentile: %v outside [0, 100]", p))
	}
	for _, b := range bands {
		if p >= b.Threshold {
			return b
		}
	}
	panic(fmt.Sprintf("percentile: no band covers %v", p))
}

// Colorize combines Percentile and BucketFor.
func Colorize(rank, n int, higherIsBetter bool) (float64, Bucket) {
	p := Percentile(rank, n, higherIsBetter)
	return p, BucketFor(p)
}

// Rank assigns 1-based ranks to values. Ties keep input order: the earlier
// element gets the better rank. NaN values rank last.
func Rank(values []float64, higherIsBetter bool) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := values[order[a]], values[order[b]]
		switch {
		case math.IsNaN(va):
			return false
		case math.IsNaN(vb):
			return true
		case higherIsBetter:
			return va > vb
		default:
			return va < vb
		}
	})
	ranks := make([]int, len(values))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// RankBy ranks items by the value key extracts, writing ranks through assign.
func RankBy[T any](items []T, key func(T) float64, higherIsBetter bool, assign func(*T, int)) {
	values := make([]float64, len(items))
	for i := range items {
		values[i] = key(items[i])
	}
	for i, r := range Rank(values, higherIsBetter) {
		assign(&items[i], r)
	}
}
