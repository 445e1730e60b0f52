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

// improvingHistory is a 3-period sequence that improves on every
// comparative criterion with positive ROA and CFO throughout.
func improvingHistory() []stats.PiotroskiInput {
	netIncome := []float64{40, 45, 52}
	opCF := []float64{42, 48, 55}
	assets := []float64{200, 205, 210}
	debt := []float64{80, 78, 75}
	currentAssets := []float64{60, 65, 72}
	currentLiabilities := []float64{40, 39, 38}
	grossProfit := []float64{120, 126, 135}
	revenue := []float64{300, 310, 325}
	shares := []float64{50, 49, 48}

	rows := make([]stats.PiotroskiInput, 3)
	for i := range rows {
		rows[i] = stats.PiotroskiInput{
			NetIncomeTTM:       stats.F(netIncome[i]),
			OpCFTTM:            stats.F(opCF[i]),
			TotalAssets:        stats.F(assets[i]),
			Debt:               stats.F(debt[i]),
			CurrentAssets:      stats.F(currentAssets[i]),
			CurrentLiabilities: stats.F(currentLiabilities[i]),
			GrossProfitTTM:     stats.F(grossProfit[i]),
			RevenueTTM:         stats.F(revenue[i]),
			SharesDilutedTTM:   stats.F(shares[i]),
		}
	}
	return rows
}

var _ = Describe("PiotroskiScores", func() {
	It("scores a strictly improving history 3 then 9", func() {
		scores := stats.PiotroskiScores(improvingHistory())
		Expect(scores).To(HaveLen(3))

		// first period has no prior period; only the current-period
		// sign tests can score
		Expect(scores[0]).To(Equal(3))
		Expect(scores[2]).To(Equal(9))
	})

	It("always stays within [0, 9]", func() {
		scores := stats.PiotroskiScores(improvingHistory())
		for _, s := range scores {
			Expect(s).To(BeNumerically(">=", 0))
			Expect(s).To(BeNumerically("<=", 9))
		}
	})

	It("treats undefined ratios as failed criteria", func() {
		rows := improvingHistory()
		// zero assets make ROA, leverage, and asset turnover undefined
		rows[1].TotalAssets = stats.F(0)

		scores := stats.PiotroskiScores(rows)
		// period 1: loses ROA>0, ROA improved, leverage decreased, and
		// asset turnover improved; keeps CFO>0, accrual, current ratio,
		// gross margin, and shares
		Expect(scores[1]).To(Equal(5))

		// period 2 cannot show improvement against an undefined prior
		// ROA or turnover either
		Expect(scores[2]).To(Equal(6))
	})

	It("handles missing fields without raising", func() {
		rows := []stats.PiotroskiInput{
			{OpCFTTM: stats.F(10)},
			{OpCFTTM: stats.F(12)},
		}
		scores := stats.PiotroskiScores(rows)
		// CFO>0 is the only criterion that can pass; the accrual test
		// needs net income and every ratio needs assets
		Expect(scores[0]).To(Equal(1))
		Expect(scores[1]).To(Equal(1))
	})

	It("returns an empty slice for an empty history", func() {
		Expect(stats.PiotroskiScores(nil)).To(BeEmpty())
	})
})
