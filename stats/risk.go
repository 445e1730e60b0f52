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

import "math"

// tradingDaysPerYear is the annualization constant for daily series.
const tradingDaysPerYear = 252

// DailyReturns converts a price series into simple daily returns.
// Observations following a zero price are skipped.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1.0)
	}
	return returns
}

// AnnualizedVolatility computes the population standard deviation of the
// most recent window returns, annualized by sqrt(252). Undefined when
// fewer than minObs returns are available.
func AnnualizedVolatility(returns []float64, window, minObs int) Value {
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	if len(returns) < minObs {
		return Undefined
	}
	_, std := meanStd(returns)
	return F(std * math.Sqrt(tradingDaysPerYear))
}

// SharpeRatio computes the annualized mean/std ratio of the most recent
// window returns. Undefined when fewer than minObs returns are
// available or the standard deviation is zero.
func SharpeRatio(returns []float64, window, minObs int) Value {
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	if len(returns) < minObs {
		return Undefined
	}
	mean, std := meanStd(returns)
	if std == 0 {
		return Undefined
	}
	return F(mean / std * math.Sqrt(tradingDaysPerYear))
}

func meanStd(xs []float64) (float64, float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(xs)))
}
