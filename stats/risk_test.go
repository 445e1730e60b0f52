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
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-factors/stats"
)

// alternating +1%/-1% returns with zero mean and 1% population std
func alternatingReturns(n int) []float64 {
	returns := make([]float64, n)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}
	return returns
}

var _ = Describe("DailyReturns", func() {
	It("computes simple returns from a price series", func() {
		returns := stats.DailyReturns([]float64{100, 110, 99})
		Expect(returns).To(HaveLen(2))
		Expect(returns[0]).To(BeNumerically("~", 0.1, 1e-9))
		Expect(returns[1]).To(BeNumerically("~", -0.1, 1e-9))
	})

	It("skips observations after a zero price", func() {
		returns := stats.DailyReturns([]float64{100, 0, 50})
		Expect(returns).To(HaveLen(1))
	})

	It("returns nil for fewer than two prices", func() {
		Expect(stats.DailyReturns([]float64{100})).To(BeNil())
	})
})

var _ = Describe("AnnualizedVolatility", func() {
	It("requires the minimum observation count", func() {
		Expect(stats.AnnualizedVolatility(alternatingReturns(19), 30, 20).Valid).To(BeFalse())
		Expect(stats.AnnualizedVolatility(alternatingReturns(20), 30, 20).Valid).To(BeTrue())
	})

	It("annualizes the population standard deviation", func() {
		v := stats.AnnualizedVolatility(alternatingReturns(30), 30, 20)
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 0.01*math.Sqrt(252), 1e-6))
	})

	It("only uses the most recent window", func() {
		// large swings outside the 30-day window must not affect the result
		returns := append([]float64{0.5, -0.5, 0.5, -0.5}, alternatingReturns(30)...)
		v := stats.AnnualizedVolatility(returns, 30, 20)
		Expect(v.Float64).To(BeNumerically("~", 0.01*math.Sqrt(252), 1e-6))
	})
})

var _ = Describe("SharpeRatio", func() {
	It("requires the minimum observation count", func() {
		Expect(stats.SharpeRatio(alternatingReturns(199), 252, 200).Valid).To(BeFalse())
		Expect(stats.SharpeRatio(alternatingReturns(200), 252, 200).Valid).To(BeTrue())
	})

	It("is zero for a zero-mean series", func() {
		v := stats.SharpeRatio(alternatingReturns(252), 252, 200)
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 0, 1e-9))
	})

	It("is undefined when the standard deviation is zero", func() {
		flat := make([]float64, 252)
		for i := range flat {
			flat[i] = 0.01
		}
		Expect(stats.SharpeRatio(flat, 252, 200).Valid).To(BeFalse())
	})
})
