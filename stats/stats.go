// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats provides the pure numeric primitives behind the factor
// engine: standardization, outlier clipping, trailing returns,
// industry-relative standardization, and the domain ratio calculators.
// Nothing in this package knows about tickers or time; everything
// operates on ordered or keyed sequences of optional floats.
package stats

import (
	"math"
	"sort"
)

// Quantile computes the q-th quantile of xs using linear interpolation
// between order statistics (the same scheme pandas uses by default).
// xs must be non-empty; q is clamped to [0,1].
func Quantile(xs []float64, q float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Winsorize clips the defined entries of col to the [lower, upper]
// percentiles of the defined distribution. Undefined entries pass
// through unchanged.
func Winsorize(col []Value, lower, upper float64) []Value {
	defined := make([]float64, 0, len(col))
	for _, v := range col {
		if v.Valid {
			defined = append(defined, v.Float64)
		}
	}

	out := make([]Value, len(col))
	copy(out, col)
	if len(defined) == 0 {
		return out
	}

	lo := Quantile(defined, lower)
	hi := Quantile(defined, upper)
	for i, v := range out {
		if !v.Valid {
			continue
		}
		if v.Float64 < lo {
			out[i] = F(lo)
		} else if v.Float64 > hi {
			out[i] = F(hi)
		}
	}
	return out
}

// ZScore standardizes the column against its own mean and population
// standard deviation, skipping undefined entries. A zero or undefined
// standard deviation maps the entire column to zero rather than
// producing infinities.
func ZScore(col []Value) []Value {
	sum := 0.0
	n := 0
	for _, v := range col {
		if v.Valid {
			sum += v.Float64
			n++
		}
	}

	out := make([]Value, len(col))
	if n == 0 {
		for i := range out {
			out[i] = F(0)
		}
		return out
	}

	mean := sum / float64(n)
	variance := 0.0
	for _, v := range col {
		if v.Valid {
			d := v.Float64 - mean
			variance += d * d
		}
	}
	std := math.Sqrt(variance / float64(n))

	if std == 0 {
		for i := range out {
			out[i] = F(0)
		}
		return out
	}

	for i, v := range col {
		if v.Valid {
			out[i] = F((v.Float64 - mean) / std)
		} else {
			out[i] = Undefined
		}
	}
	return out
}

// Standardize winsorizes at the 1st/99th percentile and then z-scores.
// Every cross-sectional standardization pass in the engine goes through
// here.
func Standardize(col []Value) []Value {
	return ZScore(Winsorize(col, 0.01, 0.99))
}

// PctChangeN returns prices[last]/prices[last-n] - 1. It is undefined
// when fewer than n+1 observations exist or the base price is zero.
func PctChangeN(prices []float64, n int) Value {
	if len(prices) < n+1 {
		return Undefined
	}
	base := prices[len(prices)-n-1]
	if base == 0 {
		return Undefined
	}
	return F(prices[len(prices)-1]/base - 1.0)
}

// IndustryZScores standardizes values within each industry group using
// the group's own distribution (winsorize then z-score). Undefined
// entries are imputed with the group mean before scoring, so a
// singleton group standardizes to exactly zero.
func IndustryZScores(values []Value, industries []string) []Value {
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, ind := range industries {
		if _, ok := groups[ind]; !ok {
			order = append(order, ind)
		}
		groups[ind] = append(groups[ind], i)
	}
	sort.Strings(order)

	out := make([]Value, len(values))
	for _, ind := range order {
		idx := groups[ind]

		sum := 0.0
		n := 0
		for _, i := range idx {
			if values[i].Valid {
				sum += values[i].Float64
				n++
			}
		}

		groupCol := make([]Value, len(idx))
		if n > 0 {
			mean := sum / float64(n)
			for j, i := range idx {
				if values[i].Valid {
					groupCol[j] = values[i]
				} else {
					groupCol[j] = F(mean)
				}
			}
		}
		// a group with no defined members stays all-undefined here;
		// the z-score pass then maps it to zeros

		scored := Standardize(groupCol)
		for j, i := range idx {
			out[i] = scored[j]
		}
	}
	return out
}
