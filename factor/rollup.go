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
package factor

import (
	"sort"
	"time"

	"github.com/penny-vault/pv-factors/data"
	"github.com/penny-vault/pv-factors/stats"
)

// Rollup is one trailing-twelve-month view of a ticker at a fiscal
// period end. Flow quantities are trailing sums over up to 4 quarters,
// diluted shares a trailing mean; balance-sheet quantities and filing
// metadata are the period's own point-in-time values.
type Rollup struct {
	Ticker    string
	FiscalEnd time.Time

	RevenueTTM         stats.Value
	NetIncomeTTM       stats.Value
	OpCFTTM            stats.Value
	CapexTTM           stats.Value
	GrossProfitTTM     stats.Value
	EBITDATTM          stats.Value
	InterestExpenseTTM stats.Value
	FCFTTM             stats.Value
	SharesDilutedTTM   stats.Value

	TotalAssets        stats.Value
	TotalLiabilities   stats.Value
	CashAndEquivalents stats.Value
	Debt               stats.Value
	CurrentAssets      stats.Value
	CurrentLiabilities stats.Value

	FScore int

	Filed      time.Time
	CIK        string
	SIC        int32
	EntityName string
}

// trailingSum adds the defined values in the trailing window ending at
// idx (window size 4, shorter at the start of the history). It is
// undefined only when every value in the window is undefined.
func trailingSum(vals []stats.Value, idx int) stats.Value {
	start := idx - 3
	if start < 0 {
		start = 0
	}
	sum := 0.0
	n := 0
	for i := start; i <= idx; i++ {
		if vals[i].Valid {
			sum += vals[i].Float64
			n++
		}
	}
	if n == 0 {
		return stats.Undefined
	}
	return stats.F(sum)
}

// trailingMean averages the defined values in the trailing window
// ending at idx, with the same partial-window policy as trailingSum.
func trailingMean(vals []stats.Value, idx int) stats.Value {
	start := idx - 3
	if start < 0 {
		start = 0
	}
	sum := 0.0
	n := 0
	for i := start; i <= idx; i++ {
		if vals[i].Valid {
			sum += vals[i].Float64
			n++
		}
	}
	if n == 0 {
		return stats.Undefined
	}
	return stats.F(sum / float64(n))
}

// BuildRollups converts one ticker's quarterly history into TTM rollup
// rows, one per input period, in fiscal period order. The earliest 1-3
// rows use a partial window; that bias is accepted, not corrected.
func BuildRollups(records []*data.FundamentalRecord) []*Rollup {
	sorted := make([]*data.FundamentalRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FiscalEnd.Before(sorted[j].FiscalEnd)
	})

	n := len(sorted)
	revenue := make([]stats.Value, n)
	netIncome := make([]stats.Value, n)
	opCF := make([]stats.Value, n)
	capex := make([]stats.Value, n)
	grossProfit := make([]stats.Value, n)
	ebitda := make([]stats.Value, n)
	interest := make([]stats.Value, n)
	shares := make([]stats.Value, n)

	for i, rec := range sorted {
		revenue[i] = stats.FromPtr(rec.Revenue)
		netIncome[i] = stats.FromPtr(rec.NetIncome)
		opCF[i] = stats.FromPtr(rec.OperatingCF)
		capex[i] = stats.FromPtr(rec.CapitalExpenditures)
		grossProfit[i] = stats.FromPtr(rec.GrossProfit)
		ebitda[i] = stats.FromPtr(rec.EBITDA)
		interest[i] = stats.FromPtr(rec.InterestExpense)
		shares[i] = stats.FromPtr(rec.SharesDiluted)
	}

	rollups := make([]*Rollup, n)
	for i, rec := range sorted {
		r := &Rollup{
			Ticker:    rec.Ticker,
			FiscalEnd: rec.FiscalEnd,

			RevenueTTM:         trailingSum(revenue, i),
			NetIncomeTTM:       trailingSum(netIncome, i),
			OpCFTTM:            trailingSum(opCF, i),
			CapexTTM:           trailingSum(capex, i),
			GrossProfitTTM:     trailingSum(grossProfit, i),
			EBITDATTM:          trailingSum(ebitda, i),
			InterestExpenseTTM: trailingSum(interest, i),
			SharesDilutedTTM:   trailingMean(shares, i),

			TotalAssets:        stats.FromPtr(rec.TotalAssets),
			TotalLiabilities:   stats.FromPtr(rec.TotalLiabilities),
			CashAndEquivalents: stats.FromPtr(rec.CashAndEquivalents),
			Debt:               stats.FromPtr(rec.Debt),
			CurrentAssets:      stats.FromPtr(rec.CurrentAssets),
			CurrentLiabilities: stats.FromPtr(rec.CurrentLiabilities),

			Filed:      rec.Filed,
			CIK:        rec.CIK,
			SIC:        rec.SIC,
			EntityName: rec.EntityName,
		}

		// capex reduces free cash flow; missing capex clamps to zero
		// rather than propagating as undefined
		if r.OpCFTTM.Valid {
			r.FCFTTM = stats.F(r.OpCFTTM.Float64 - r.CapexTTM.Or(0))
		}

		rollups[i] = r
	}

	return rollups
}

// piotroskiInputs adapts a rollup sequence for the F-score scorer.
func piotroskiInputs(rollups []*Rollup) []stats.PiotroskiInput {
	inputs := make([]stats.PiotroskiInput, len(rollups))
	for i, r := range rollups {
		inputs[i] = stats.PiotroskiInput{
			NetIncomeTTM:       r.NetIncomeTTM,
			OpCFTTM:            r.OpCFTTM,
			TotalAssets:        r.TotalAssets,
			Debt:               r.Debt,
			CurrentAssets:      r.CurrentAssets,
			CurrentLiabilities: r.CurrentLiabilities,
			GrossProfitTTM:     r.GrossProfitTTM,
			RevenueTTM:         r.RevenueTTM,
			SharesDilutedTTM:   r.SharesDilutedTTM,
		}
	}
	return inputs
}
