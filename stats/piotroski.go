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
package stats

// PiotroskiInput carries the trailing-twelve-month quantities one
// fiscal period contributes to the F-score. Rows must be supplied in
// chronological order.
type PiotroskiInput struct {
	NetIncomeTTM       Value
	OpCFTTM            Value
	TotalAssets        Value
	Debt               Value
	CurrentAssets      Value
	CurrentLiabilities Value
	GrossProfitTTM     Value
	RevenueTTM         Value
	SharesDilutedTTM   Value
}

// PiotroskiScores computes the 9-criterion F-score for each period of a
// chronologically ordered history. Each criterion contributes 1 when it
// holds and 0 otherwise; a comparison against a missing prior period or
// an undefined ratio counts as 0 and never raises. Scores are always in
// [0, 9].
func PiotroskiScores(rows []PiotroskiInput) []int {
	n := len(rows)
	scores := make([]int, n)

	roa := make([]Value, n)
	leverage := make([]Value, n)
	currentRatio := make([]Value, n)
	grossMargin := make([]Value, n)
	assetTurnover := make([]Value, n)

	for i, row := range rows {
		roa[i] = row.NetIncomeTTM.Div(row.TotalAssets)
		leverage[i] = row.Debt.Div(row.TotalAssets)
		currentRatio[i] = row.CurrentAssets.Div(row.CurrentLiabilities)
		grossMargin[i] = row.GrossProfitTTM.Div(row.RevenueTTM)
		assetTurnover[i] = row.RevenueTTM.Div(row.TotalAssets)
	}

	for i, row := range rows {
		score := 0

		// profitability sign tests on the current period
		if roa[i].Gt(F(0)) {
			score++
		}
		if row.OpCFTTM.Gt(F(0)) {
			score++
		}
		// quality of earnings: cash flow exceeds accrual income
		if row.OpCFTTM.Sub(row.NetIncomeTTM).Gt(F(0)) {
			score++
		}

		// period-over-period comparisons; the first row has no prior
		// period and scores 0 on all of these
		if i > 0 {
			if roa[i].Gt(roa[i-1]) {
				score++
			}
			if leverage[i].Lt(leverage[i-1]) {
				score++
			}
			if currentRatio[i].Gt(currentRatio[i-1]) {
				score++
			}
			if grossMargin[i].Gt(grossMargin[i-1]) {
				score++
			}
			if assetTurnover[i].Gt(assetTurnover[i-1]) {
				score++
			}
			if rows[i].SharesDilutedTTM.Lte(rows[i-1].SharesDilutedTTM) {
				score++
			}
		}

		scores[i] = score
	}

	return scores
}
