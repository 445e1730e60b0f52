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

// FCFYield returns trailing free cash flow divided by market
// capitalization (price x diluted shares). Undefined when the market
// cap is zero or either factor is undefined.
func FCFYield(fcfTTM, price, shares Value) Value {
	return fcfTTM.Div(price.Mul(shares))
}

// EVtoEBITDA returns enterprise value over trailing EBITDA. Debt and
// cash default to zero when missing; a zero or missing EBITDA leaves
// the ratio undefined.
func EVtoEBITDA(price, shares, debt, cash, ebitdaTTM Value) Value {
	marketCap := price.Mul(shares)
	if !marketCap.Valid {
		return Undefined
	}
	ev := marketCap.Float64 + debt.Or(0) - cash.Or(0)
	return F(ev).Div(ebitdaTTM)
}

// ROIC approximates return on invested capital as
// (net income + interest expense) / (assets - current liabilities -
// cash + debt). Missing components default to zero; a zero invested
// capital leaves the ratio undefined.
func ROIC(netIncomeTTM, interestExpenseTTM, totalAssets, currentLiabilities, cash, debt Value) Value {
	investedCapital := totalAssets.Or(0) - currentLiabilities.Or(0) - cash.Or(0) + debt.Or(0)
	nopat := netIncomeTTM.Or(0) + interestExpenseTTM.Or(0)
	return F(nopat).Div(F(investedCapital))
}
