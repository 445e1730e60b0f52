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
package factor_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-factors/data"
	"github.com/penny-vault/pv-factors/factor"
)

func ptr(v float64) *float64 {
	return &v
}

func quarter(ticker string, year int, q int) *data.FundamentalRecord {
	months := []time.Month{time.March, time.June, time.September, time.December}
	fiscalEnd := time.Date(year, months[q-1], 30, 0, 0, 0, 0, time.UTC)
	return &data.FundamentalRecord{
		Ticker:    ticker,
		FiscalEnd: fiscalEnd,
		Filed:     fiscalEnd.Add(45 * 24 * time.Hour),
	}
}

var _ = Describe("BuildRollups", func() {
	It("sums flow quantities over the trailing four quarters", func() {
		records := make([]*data.FundamentalRecord, 0, 5)
		for i := 0; i < 5; i++ {
			rec := quarter("TEST", 2023+i/4, i%4+1)
			rec.Revenue = ptr(float64(100 + i))
			rec.NetIncome = ptr(float64(10 + i))
			rec.SharesDiluted = ptr(float64(50 - i))
			records = append(records, rec)
		}

		rollups := factor.BuildRollups(records)
		Expect(rollups).To(HaveLen(5))

		last := rollups[4]
		// quarters 1-4 (zero indexed), skipping the first
		Expect(last.RevenueTTM.Float64).To(Equal(101.0 + 102 + 103 + 104))
		Expect(last.NetIncomeTTM.Float64).To(Equal(11.0 + 12 + 13 + 14))
		Expect(last.SharesDilutedTTM.Float64).To(Equal((49.0 + 48 + 47 + 46) / 4))
	})

	It("uses a partial window for the earliest periods", func() {
		records := []*data.FundamentalRecord{
			quarter("TEST", 2024, 1),
			quarter("TEST", 2024, 2),
		}
		records[0].Revenue = ptr(100)
		records[1].Revenue = ptr(110)

		rollups := factor.BuildRollups(records)
		Expect(rollups[0].RevenueTTM.Float64).To(Equal(100.0))
		Expect(rollups[1].RevenueTTM.Float64).To(Equal(210.0))
	})

	It("sorts records by fiscal period before rolling", func() {
		first := quarter("TEST", 2024, 1)
		second := quarter("TEST", 2024, 2)
		first.Revenue = ptr(100)
		second.Revenue = ptr(110)

		rollups := factor.BuildRollups([]*data.FundamentalRecord{second, first})
		Expect(rollups[0].FiscalEnd).To(Equal(first.FiscalEnd))
		Expect(rollups[1].RevenueTTM.Float64).To(Equal(210.0))
	})

	It("clamps missing capex to zero in free cash flow", func() {
		rec := quarter("TEST", 2024, 1)
		rec.OperatingCF = ptr(80)

		rollups := factor.BuildRollups([]*data.FundamentalRecord{rec})
		Expect(rollups[0].FCFTTM.Valid).To(BeTrue())
		Expect(rollups[0].FCFTTM.Float64).To(Equal(80.0))
	})

	It("subtracts capex from operating cash flow", func() {
		rec := quarter("TEST", 2024, 1)
		rec.OperatingCF = ptr(80)
		rec.CapitalExpenditures = ptr(30)

		rollups := factor.BuildRollups([]*data.FundamentalRecord{rec})
		Expect(rollups[0].FCFTTM.Float64).To(Equal(50.0))
	})

	It("leaves free cash flow undefined without operating cash flow", func() {
		rec := quarter("TEST", 2024, 1)
		rec.CapitalExpenditures = ptr(30)

		rollups := factor.BuildRollups([]*data.FundamentalRecord{rec})
		Expect(rollups[0].FCFTTM.Valid).To(BeFalse())
	})

	It("passes balance-sheet values through point-in-time", func() {
		records := []*data.FundamentalRecord{
			quarter("TEST", 2024, 1),
			quarter("TEST", 2024, 2),
		}
		records[0].TotalAssets = ptr(1000)
		records[1].TotalAssets = ptr(1100)

		rollups := factor.BuildRollups(records)
		Expect(rollups[0].TotalAssets.Float64).To(Equal(1000.0))
		Expect(rollups[1].TotalAssets.Float64).To(Equal(1100.0))
	})

	It("skips null quarters inside the trailing sum", func() {
		records := []*data.FundamentalRecord{
			quarter("TEST", 2024, 1),
			quarter("TEST", 2024, 2),
			quarter("TEST", 2024, 3),
		}
		records[0].Revenue = ptr(100)
		records[2].Revenue = ptr(120)

		rollups := factor.BuildRollups(records)
		Expect(rollups[2].RevenueTTM.Float64).To(Equal(220.0))
	})
})

var _ = Describe("IndustryLabel", func() {
	It("matches the exact SIC code first", func() {
		Expect(factor.IndustryLabel(7372)).To(Equal("Software"))
	})

	It("falls back to the 3-digit prefix", func() {
		Expect(factor.IndustryLabel(7379)).To(Equal("Software & IT Services"))
	})

	It("falls back to the 2-digit prefix", func() {
		Expect(factor.IndustryLabel(4911)).To(Equal("Utilities"))
	})

	It("buckets unknown codes as unclassified", func() {
		Expect(factor.IndustryLabel(9999)).To(Equal(factor.UnclassifiedIndustry))
		Expect(factor.IndustryLabel(0)).To(Equal(factor.UnclassifiedIndustry))
		Expect(factor.IndustryLabel(-1)).To(Equal(factor.UnclassifiedIndustry))
	})
})

var _ = Describe("Weights", func() {
	It("renormalizes to sum to one", func() {
		w := factor.Weights{Value: 2, Quality: 1, Momentum: 1}.Normalize()
		Expect(w.Value).To(BeNumerically("~", 0.5, 1e-9))
		Expect(w.Quality).To(BeNumerically("~", 0.25, 1e-9))
		Expect(w.Momentum).To(BeNumerically("~", 0.25, 1e-9))
	})

	It("falls back to the default blend for a non-positive sum", func() {
		Expect(factor.Weights{}.Normalize()).To(Equal(factor.DefaultWeights))
		Expect(factor.Weights{Value: -1, Quality: 0.5, Momentum: 0.5}.Normalize()).To(Equal(factor.DefaultWeights))
	})
})
