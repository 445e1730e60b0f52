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

var _ = Describe("FCFYield", func() {
	It("divides trailing free cash flow by market cap", func() {
		v := stats.FCFYield(stats.F(400), stats.F(100), stats.F(50))
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 0.08, 1e-3))
	})

	It("is undefined without a price", func() {
		Expect(stats.FCFYield(stats.F(400), stats.Undefined, stats.F(50)).Valid).To(BeFalse())
	})

	It("is undefined when market cap is zero", func() {
		Expect(stats.FCFYield(stats.F(400), stats.F(0), stats.F(50)).Valid).To(BeFalse())
	})
})

var _ = Describe("EVtoEBITDA", func() {
	It("computes enterprise value over trailing EBITDA", func() {
		v := stats.EVtoEBITDA(stats.F(100), stats.F(50), stats.F(1000), stats.F(500), stats.F(1100))
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 5.0, 1e-3))
	})

	It("defaults missing debt and cash to zero", func() {
		v := stats.EVtoEBITDA(stats.F(100), stats.F(50), stats.Undefined, stats.Undefined, stats.F(1000))
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 5.0, 1e-3))
	})

	It("is undefined for zero or missing EBITDA", func() {
		Expect(stats.EVtoEBITDA(stats.F(100), stats.F(50), stats.F(0), stats.F(0), stats.F(0)).Valid).To(BeFalse())
		Expect(stats.EVtoEBITDA(stats.F(100), stats.F(50), stats.F(0), stats.F(0), stats.Undefined).Valid).To(BeFalse())
	})

	It("is undefined without a price", func() {
		Expect(stats.EVtoEBITDA(stats.Undefined, stats.F(50), stats.F(0), stats.F(0), stats.F(1000)).Valid).To(BeFalse())
	})
})

var _ = Describe("ROIC", func() {
	It("divides NOPAT by invested capital", func() {
		v := stats.ROIC(stats.F(300), stats.F(50), stats.F(4000), stats.F(800), stats.F(500), stats.F(1000))
		Expect(v.Valid).To(BeTrue())
		// (300+50) / (4000-800-500+1000)
		Expect(v.Float64).To(BeNumerically("~", 350.0/3700.0, 1e-3))
	})

	It("defaults missing components to zero", func() {
		v := stats.ROIC(stats.F(300), stats.Undefined, stats.F(4000), stats.Undefined, stats.Undefined, stats.Undefined)
		Expect(v.Valid).To(BeTrue())
		Expect(v.Float64).To(BeNumerically("~", 300.0/4000.0, 1e-3))
	})

	It("is undefined when invested capital nets to zero", func() {
		v := stats.ROIC(stats.F(300), stats.F(0), stats.F(1000), stats.F(500), stats.F(500), stats.F(0))
		Expect(v.Valid).To(BeFalse())
	})
})
