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
package stats_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-factors/stats"
)

var _ = Describe("Quantile", func() {
	It("interpolates linearly between order statistics", func() {
		xs := []float64{1, 2, 3, 100}
		Expect(stats.Quantile(xs, 0.75)).To(BeNumerically("~", 27.25, 1e-9))
		Expect(stats.Quantile(xs, 0)).To(Equal(1.0))
		Expect(stats.Quantile(xs, 1)).To(Equal(100.0))
		Expect(stats.Quantile(xs, 0.5)).To(BeNumerically("~", 2.5, 1e-9))
	})

	It("returns the single element for a singleton", func() {
		Expect(stats.Quantile([]float64{42}, 0.3)).To(Equal(42.0))
	})
})

var _ = Describe("Winsorize", func() {
	It("clips the maximum to the 75th percentile", func() {
		col := []stats.Value{stats.F(1), stats.F(2), stats.F(3), stats.F(100)}
		out := stats.Winsorize(col, 0.0, 0.75)
		Expect(out[3].Float64).To(BeNumerically("~", 27.25, 1e-9))
		Expect(out[0].Float64).To(Equal(1.0))
		Expect(out[1].Float64).To(Equal(2.0))
		Expect(out[2].Float64).To(Equal(3.0))
	})

	It("passes undefined entries through unchanged", func() {
		col := []stats.Value{stats.F(1), stats.Undefined, stats.F(100)}
		out := stats.Winsorize(col, 0.0, 0.5)
		Expect(out[1].Valid).To(BeFalse())
	})

	It("does not modify the input column", func() {
		col := []stats.Value{stats.F(1), stats.F(100)}
		stats.Winsorize(col, 0.25, 0.75)
		Expect(col[1].Float64).To(Equal(100.0))
	})
})

var _ = Describe("ZScore", func() {
	It("standardizes against the population standard deviation", func() {
		col := []stats.Value{stats.F(1), stats.F(2), stats.F(3)}
		out := stats.ZScore(col)
		Expect(out[0].Float64).To(BeNumerically("~", -1.224745, 1e-5))
		Expect(out[1].Float64).To(BeNumerically("~", 0, 1e-9))
		Expect(out[2].Float64).To(BeNumerically("~", 1.224745, 1e-5))
	})

	It("maps a zero-variance column to all zeros", func() {
		col := []stats.Value{stats.F(5), stats.F(5), stats.Undefined}
		out := stats.ZScore(col)
		for _, v := range out {
			Expect(v.Valid).To(BeTrue())
			Expect(v.Float64).To(Equal(0.0))
		}
	})

	It("maps an all-undefined column to all zeros", func() {
		col := []stats.Value{stats.Undefined, stats.Undefined}
		out := stats.ZScore(col)
		for _, v := range out {
			Expect(v.Valid).To(BeTrue())
			Expect(v.Float64).To(Equal(0.0))
		}
	})

	It("keeps undefined entries undefined when the column has variance", func() {
		col := []stats.Value{stats.F(1), stats.F(3), stats.Undefined}
		out := stats.ZScore(col)
		Expect(out[2].Valid).To(BeFalse())
	})
})

var _ = Describe("PctChangeN", func() {
	It("requires n+1 observations", func() {
		prices := make([]float64, 126)
		for i := range prices {
			prices[i] = 100
		}
		Expect(stats.PctChangeN(prices, 126).Valid).To(BeFalse())

		prices = append(prices, 110)
		v := stats.PctChangeN(prices, 126)
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 0.1, 1e-9))
	})

	It("is undefined when the base price is zero", func() {
		Expect(stats.PctChangeN([]float64{0, 50, 100}, 2).Valid).To(BeFalse())
	})
})

var _ = Describe("IndustryZScores", func() {
	It("standardizes within each industry group", func() {
		values := []stats.Value{stats.F(1), stats.F(2), stats.F(3)}
		industries := []string{"Tech", "Tech", "Utilities"}

		out := stats.IndustryZScores(values, industries)
		Expect(out[0].Float64).To(BeNumerically("~", -1.0, 1e-9))
		Expect(out[1].Float64).To(BeNumerically("~", 1.0, 1e-9))

		// singleton group standardizes to exactly zero
		Expect(out[2].Valid).To(BeTrue())
		Expect(out[2].Float64).To(Equal(0.0))
	})

	It("imputes the group mean for undefined entries", func() {
		values := []stats.Value{stats.F(1), stats.Undefined, stats.F(3)}
		industries := []string{"Tech", "Tech", "Tech"}

		out := stats.IndustryZScores(values, industries)
		// the undefined entry lands at the group mean, so its score is 0
		Expect(out[1].Valid).To(BeTrue())
		Expect(out[1].Float64).To(BeNumerically("~", 0, 1e-9))
		Expect(out[0].Float64).To(BeNumerically("<", 0))
		Expect(out[2].Float64).To(BeNumerically(">", 0))
	})

	It("maps an all-undefined group to zeros", func() {
		values := []stats.Value{stats.Undefined, stats.Undefined}
		industries := []string{"Tech", "Tech"}

		out := stats.IndustryZScores(values, industries)
		for _, v := range out {
			Expect(v.Valid).To(BeTrue())
			Expect(v.Float64).To(Equal(0.0))
		}
	})
})

var _ = Describe("Value", func() {
	It("guards division by zero and undefined denominators", func() {
		Expect(stats.F(1).Div(stats.F(0)).Valid).To(BeFalse())
		Expect(stats.F(1).Div(stats.Undefined).Valid).To(BeFalse())
		Expect(stats.Undefined.Div(stats.F(2)).Valid).To(BeFalse())
		Expect(stats.F(6).Div(stats.F(2)).Float64).To(Equal(3.0))
	})

	It("defines log only for positive values", func() {
		Expect(stats.F(-1).Log().Valid).To(BeFalse())
		Expect(stats.F(0).Log().Valid).To(BeFalse())
		Expect(stats.F(1).Log().Float64).To(Equal(0.0))
	})

	It("treats comparisons with undefined as false", func() {
		Expect(stats.Undefined.Gt(stats.F(0))).To(BeFalse())
		Expect(stats.F(1).Gt(stats.Undefined)).To(BeFalse())
		Expect(stats.F(1).Lte(stats.Undefined)).To(BeFalse())
	})

	It("averages only the defined inputs", func() {
		v := stats.Mean(stats.F(1), stats.Undefined, stats.F(3))
		Expect(v.Float64).To(Equal(2.0))
		Expect(stats.Mean(stats.Undefined, stats.Undefined).Valid).To(BeFalse())
	})

	It("converts NaN pointers to undefined", func() {
		nan := 0.0
		nan /= nan
		Expect(stats.FromPtr(&nan).Valid).To(BeFalse())
		Expect(stats.FromPtr(nil).Valid).To(BeFalse())
	})
})
