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
	"reflect"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-factors/data"
	"github.com/penny-vault/pv-factors/factor"
)

// fullHistory builds four quarters with every required column present,
// scaled by base so tickers differentiate in the cross-section.
func fullHistory(ticker string, base float64, sic int32) []*data.FundamentalRecord {
	records := make([]*data.FundamentalRecord, 0, 4)
	for q := 1; q <= 4; q++ {
		rec := quarter(ticker, 2024, q)
		growth := 1 + 0.02*float64(q)
		rec.Revenue = ptr(100 * base * growth)
		rec.NetIncome = ptr(10 * base * growth)
		rec.SharesDiluted = ptr(50)
		rec.OperatingCF = ptr(12 * base * growth)
		rec.CapitalExpenditures = ptr(3 * base * growth)
		rec.TotalAssets = ptr(400 * base)
		rec.TotalLiabilities = ptr(200 * base)
		rec.CashAndEquivalents = ptr(40 * base)
		rec.Debt = ptr(80 * base)
		rec.GrossProfit = ptr(40 * base * growth)
		rec.CurrentAssets = ptr(120 * base)
		rec.CurrentLiabilities = ptr(60 * base)
		rec.EBITDA = ptr(20 * base * growth)
		rec.InterestExpense = ptr(2 * base)
		rec.SIC = sic
		rec.CIK = "0000000000"
		rec.EntityName = ticker + " Corp"
		records = append(records, rec)
	}
	return records
}

// priceHistory builds n daily bars with a steady upward drift.
func priceHistory(ticker string, n int, startPrice float64) []*data.PriceBar {
	bars := make([]*data.PriceBar, 0, n)
	date := time.Date(2024, time.January, 2, 16, 0, 0, 0, time.UTC)
	price := startPrice
	for i := 0; i < n; i++ {
		bars = append(bars, &data.PriceBar{
			Ticker:   ticker,
			Date:     date,
			Open:     price,
			High:     price * 1.01,
			Low:      price * 0.99,
			Close:    price,
			AdjClose: price,
			Volume:   1000,
		})
		price *= 1.001
		date = date.Add(24 * time.Hour)
	}
	return bars
}

var _ = Describe("Compute", func() {
	var (
		prices       []*data.PriceBar
		fundamentals []*data.FundamentalRecord
	)

	BeforeEach(func() {
		fundamentals = append(fullHistory("AAA", 1, 7372),
			append(fullHistory("BBB", 2, 7372), fullHistory("CCC", 3, 4911)...)...)

		prices = append(priceHistory("AAA", 300, 100),
			priceHistory("BBB", 300, 40)...)
		// CCC has no price history at all
	})

	It("emits exactly one row per ticker with fundamentals", func() {
		scored, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())
		Expect(scored).To(HaveLen(3))

		seen := make(map[string]bool)
		for _, row := range scored {
			seen[row.Ticker] = true
		}
		Expect(seen).To(HaveKey("AAA"))
		Expect(seen).To(HaveKey("BBB"))
		Expect(seen).To(HaveKey("CCC"))
	})

	It("leaves price-derived fields undefined for tickers without prices", func() {
		scored, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		var ccc *data.ScoredTicker
		for _, row := range scored {
			if row.Ticker == "CCC" {
				ccc = row
			}
		}
		Expect(ccc).ToNot(BeNil())

		Expect(ccc.Price).To(BeNil())
		Expect(ccc.PETTM).To(BeNil())
		Expect(ccc.FCFYieldTTM).To(BeNil())
		Expect(ccc.EVtoEBITDA).To(BeNil())
		Expect(ccc.Mom6m).To(BeNil())
		Expect(ccc.Mom12m).To(BeNil())
		Expect(ccc.Volatility30d).To(BeNil())
		Expect(ccc.Sharpe1y).To(BeNil())

		// fundamentals-only fields still compute
		Expect(ccc.ROIC).ToNot(BeNil())
		Expect(ccc.QualROA).ToNot(BeNil())
		Expect(ccc.PiotroskiF).To(BeNumerically(">=", 0))
		Expect(ccc.Industry).To(Equal("Utilities"))
	})

	It("fills prices and derived ratios for covered tickers", func() {
		scored, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		var aaa *data.ScoredTicker
		for _, row := range scored {
			if row.Ticker == "AAA" {
				aaa = row
			}
		}
		Expect(aaa.Price).ToNot(BeNil())
		Expect(aaa.PETTM).ToNot(BeNil())
		Expect(aaa.Mom6m).ToNot(BeNil())
		Expect(aaa.Mom12m).ToNot(BeNil())
		Expect(aaa.Volatility30d).ToNot(BeNil())
		Expect(aaa.Sharpe1y).ToNot(BeNil())
	})

	It("leaves momentum undefined for short price histories", func() {
		shortPrices := append(priceHistory("AAA", 100, 100), priceHistory("BBB", 100, 40)...)

		scored, err := factor.Compute(shortPrices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		for _, row := range scored {
			Expect(row.Mom6m).To(BeNil())
			Expect(row.Mom12m).To(BeNil())
		}
	})

	It("sorts by composite descending with undefined last", func() {
		scored, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		seenNil := false
		var prev float64
		first := true
		for _, row := range scored {
			if row.Composite == nil {
				seenNil = true
				continue
			}
			Expect(seenNil).To(BeFalse())
			if !first {
				Expect(*row.Composite).To(BeNumerically("<=", prev))
			}
			prev = *row.Composite
			first = false
		}
	})

	It("attaches a percentile in (0, 1] with the top row at 1", func() {
		scored, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		Expect(scored[0].Composite).ToNot(BeNil())
		Expect(scored[0].CompositePercentile).ToNot(BeNil())
		Expect(*scored[0].CompositePercentile).To(Equal(1.0))

		for _, row := range scored {
			if row.CompositePercentile == nil {
				continue
			}
			Expect(*row.CompositePercentile).To(BeNumerically(">", 0))
			Expect(*row.CompositePercentile).To(BeNumerically("<=", 1))
		}
	})

	It("is deterministic across runs", func() {
		first, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		second, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())

		Expect(reflect.DeepEqual(first, second)).To(BeTrue())
	})

	It("returns an empty table for empty input", func() {
		scored, err := factor.Compute(nil, nil, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())
		Expect(scored).To(BeEmpty())

		scored, err = factor.Compute(prices, nil, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())
		Expect(scored).To(BeEmpty())

		scored, err = factor.Compute(nil, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())
		Expect(scored).To(BeEmpty())
	})

	It("fails fast when a required column has no data", func() {
		for _, rec := range fundamentals {
			rec.Revenue = nil
		}

		_, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).To(MatchError(factor.ErrMissingColumn))
	})

	It("tolerates a column that is only partially null", func() {
		fundamentals[0].Revenue = nil

		_, err := factor.Compute(prices, fundamentals, factor.DefaultWeights)
		Expect(err).ToNot(HaveOccurred())
	})
})
