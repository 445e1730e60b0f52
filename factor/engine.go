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

// Package factor turns raw price and fundamentals tables into a ranked
// cross-sectional score table. The pipeline is a sequence of whole-
// table transforms: per-ticker TTM rollups and F-scores, a latest-price
// join, guarded ratio and momentum derivations, global and industry-
// relative standardization, and a weighted composite. A run is a pure
// function of its inputs; identical inputs produce identical output.
package factor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/penny-vault/pv-factors/data"
	"github.com/penny-vault/pv-factors/stats"
	"github.com/rs/zerolog/log"
)

// ErrMissingColumn indicates a required fundamentals column carried no
// data at all. A malformed schema aborts the whole run; partial
// computation over it is worse than stopping.
var ErrMissingColumn = errors.New("required fundamentals column has no data")

const (
	mom6mDays  = 126
	mom12mDays = 252

	volWindow  = 30
	volMinObs  = 20
	sharpeWin  = 252
	sharpeMin  = 200
)

// tickerMetrics holds one ticker's derived values before the cross-
// sectional passes.
type tickerMetrics struct {
	rollup *Rollup

	price    stats.Value
	pe       stats.Value
	fcfYield stats.Value
	evEbitda stats.Value
	roic     stats.Value
	leverage stats.Value
	qualROA  stats.Value

	mom6m  stats.Value
	mom12m stats.Value
	vol30d stats.Value
	sharpe stats.Value

	industry string
}

// Compute scores every ticker with a fundamentals history and returns
// the rows sorted by composite score descending, undefined composites
// last. Tickers absent from the price table are still emitted with
// undefined price-derived fields. Empty inputs produce an empty table.
func Compute(prices []*data.PriceBar, fundamentals []*data.FundamentalRecord, weights Weights) ([]*data.ScoredTicker, error) {
	if len(prices) == 0 || len(fundamentals) == 0 {
		log.Warn().Int("NumPriceBars", len(prices)).Int("NumFundamentals", len(fundamentals)).
			Msg("empty input table; returning empty score table")
		return []*data.ScoredTicker{}, nil
	}

	if err := validateColumns(fundamentals); err != nil {
		return nil, err
	}

	weights = weights.Normalize()

	byTicker := make(map[string][]*data.FundamentalRecord)
	for _, rec := range fundamentals {
		byTicker[rec.Ticker] = append(byTicker[rec.Ticker], rec)
	}

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	adjCloses := adjCloseSeries(prices)

	metrics := make([]*tickerMetrics, 0, len(tickers))
	for _, ticker := range tickers {
		rollups := BuildRollups(byTicker[ticker])
		scores := stats.PiotroskiScores(piotroskiInputs(rollups))
		for i, r := range rollups {
			r.FScore = scores[i]
		}
		latest := rollups[len(rollups)-1]

		metrics = append(metrics, deriveMetrics(latest, adjCloses[ticker]))
	}

	n := len(metrics)
	negLogPE := make([]stats.Value, n)
	fcfYield := make([]stats.Value, n)
	negLogEV := make([]stats.Value, n)
	roic := make([]stats.Value, n)
	fscore := make([]stats.Value, n)
	mom6m := make([]stats.Value, n)
	mom12m := make([]stats.Value, n)
	industries := make([]string, n)

	for i, m := range metrics {
		negLogPE[i] = m.pe.Log().Neg()
		fcfYield[i] = m.fcfYield
		negLogEV[i] = m.evEbitda.Log().Neg()
		roic[i] = m.roic
		fscore[i] = stats.F(float64(m.rollup.FScore))
		mom6m[i] = m.mom6m
		mom12m[i] = m.mom12m
		industries[i] = m.industry
	}

	negLogPE = stats.Standardize(negLogPE)
	fcfYield = stats.Standardize(fcfYield)
	negLogEV = stats.Standardize(negLogEV)
	roic = stats.Standardize(roic)
	fscore = stats.Standardize(fscore)
	mom6m = stats.Standardize(mom6m)
	mom12m = stats.Standardize(mom12m)

	valueScore := make([]stats.Value, n)
	qualityScore := make([]stats.Value, n)
	momScore := make([]stats.Value, n)
	for i := range metrics {
		valueScore[i] = stats.Mean(negLogPE[i], fcfYield[i], negLogEV[i])
		qualityScore[i] = stats.Mean(roic[i], fscore[i])
		momScore[i] = stats.Mean(mom6m[i], mom12m[i])
	}

	valueZ := stats.IndustryZScores(valueScore, industries)
	qualityZ := stats.IndustryZScores(qualityScore, industries)

	scored := make([]*data.ScoredTicker, n)
	for i, m := range metrics {
		composite := stats.F(weights.Value).Mul(valueZ[i]).
			Add(stats.F(weights.Quality).Mul(qualityZ[i])).
			Add(stats.F(weights.Momentum).Mul(momScore[i]))

		r := m.rollup
		scored[i] = &data.ScoredTicker{
			Ticker:        r.Ticker,
			Price:         m.price.Ptr(),
			PETTM:         m.pe.Ptr(),
			FCFYieldTTM:   m.fcfYield.Ptr(),
			EVtoEBITDA:    m.evEbitda.Ptr(),
			ROIC:          m.roic.Ptr(),
			Leverage:      m.leverage.Ptr(),
			QualROA:       m.qualROA.Ptr(),
			PiotroskiF:    int32(r.FScore),
			Mom6m:         m.mom6m.Ptr(),
			Mom12m:        m.mom12m.Ptr(),
			Volatility30d: m.vol30d.Ptr(),
			Sharpe1y:      m.sharpe.Ptr(),
			ValueScore:    valueScore[i].Ptr(),
			QualityScore:  qualityScore[i].Ptr(),
			MomScore:      momScore[i].Ptr(),
			ValueZ:        valueZ[i].Ptr(),
			QualityZ:      qualityZ[i].Ptr(),
			Composite:     composite.Ptr(),
			Industry:      m.industry,
			FiscalEnd:     r.FiscalEnd,
			FiscalEndStr:  r.FiscalEnd.Format("2006-01-02"),
			Filed:         r.Filed,
			FiledStr:      r.Filed.Format("2006-01-02"),
			CIK:           r.CIK,
			SIC:           r.SIC,
			EntityName:    r.EntityName,
		}
	}

	rankScores(scored)

	log.Info().Int("NumTickers", n).Msg("factor computation finished")
	return scored, nil
}

// deriveMetrics computes every per-ticker field that does not depend on
// the cross-section. adjClose may be nil when the ticker has no price
// history; price-derived fields then stay undefined.
func deriveMetrics(latest *Rollup, adjClose []float64) *tickerMetrics {
	m := &tickerMetrics{
		rollup:   latest,
		industry: IndustryLabel(latest.SIC),
	}

	if len(adjClose) > 0 {
		m.price = stats.F(adjClose[len(adjClose)-1])
	}

	eps := latest.NetIncomeTTM.Div(latest.SharesDilutedTTM)
	m.pe = m.price.Div(eps)
	m.fcfYield = stats.FCFYield(latest.FCFTTM, m.price, latest.SharesDilutedTTM)
	m.evEbitda = stats.EVtoEBITDA(m.price, latest.SharesDilutedTTM,
		latest.Debt, latest.CashAndEquivalents, latest.EBITDATTM)
	m.roic = stats.ROIC(latest.NetIncomeTTM, latest.InterestExpenseTTM,
		latest.TotalAssets, latest.CurrentLiabilities,
		latest.CashAndEquivalents, latest.Debt)
	m.leverage = stats.F(latest.Debt.Or(0) - latest.CashAndEquivalents.Or(0)).Div(latest.TotalAssets)
	m.qualROA = latest.NetIncomeTTM.Div(latest.TotalAssets)

	m.mom6m = stats.PctChangeN(adjClose, mom6mDays)
	m.mom12m = stats.PctChangeN(adjClose, mom12mDays)

	returns := stats.DailyReturns(adjClose)
	m.vol30d = stats.AnnualizedVolatility(returns, volWindow, volMinObs)
	m.sharpe = stats.SharpeRatio(returns, sharpeWin, sharpeMin)

	return m
}

// adjCloseSeries groups the price table by ticker and returns each
// ticker's adjusted closes in date order.
func adjCloseSeries(prices []*data.PriceBar) map[string][]float64 {
	sorted := make([]*data.PriceBar, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	series := make(map[string][]float64)
	for _, bar := range sorted {
		series[bar.Ticker] = append(series[bar.Ticker], bar.AdjClose)
	}
	return series
}

// rankScores sorts by composite descending with undefined composites
// last, preserving the upstream order for ties, and attaches the
// composite percentile (fraction of defined composites at or below).
func rankScores(scored []*data.ScoredTicker) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i].Composite, scored[j].Composite
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	defined := make([]float64, 0, len(scored))
	for _, row := range scored {
		if row.Composite != nil {
			defined = append(defined, *row.Composite)
		}
	}

	for _, row := range scored {
		if row.Composite == nil {
			continue
		}
		atOrBelow := 0
		for _, c := range defined {
			if c <= *row.Composite {
				atOrBelow++
			}
		}
		pct := float64(atOrBelow) / float64(len(defined))
		row.CompositePercentile = &pct
	}
}

// requiredColumn pairs a column name with an accessor used by the
// schema check.
type requiredColumn struct {
	name string
	get  func(*data.FundamentalRecord) *float64
}

var requiredColumns = []requiredColumn{
	{"revenue", func(r *data.FundamentalRecord) *float64 { return r.Revenue }},
	{"net_income", func(r *data.FundamentalRecord) *float64 { return r.NetIncome }},
	{"shares_diluted", func(r *data.FundamentalRecord) *float64 { return r.SharesDiluted }},
	{"operating_cf", func(r *data.FundamentalRecord) *float64 { return r.OperatingCF }},
	{"total_assets", func(r *data.FundamentalRecord) *float64 { return r.TotalAssets }},
	{"cash_and_equivalents", func(r *data.FundamentalRecord) *float64 { return r.CashAndEquivalents }},
	{"debt", func(r *data.FundamentalRecord) *float64 { return r.Debt }},
	{"gross_profit", func(r *data.FundamentalRecord) *float64 { return r.GrossProfit }},
	{"current_assets", func(r *data.FundamentalRecord) *float64 { return r.CurrentAssets }},
	{"current_liabilities", func(r *data.FundamentalRecord) *float64 { return r.CurrentLiabilities }},
	{"ebitda", func(r *data.FundamentalRecord) *float64 { return r.EBITDA }},
	{"interest_expense", func(r *data.FundamentalRecord) *float64 { return r.InterestExpense }},
}

// validateColumns fails fast when a required column is null in every
// row of the fundamentals table. Capex and total liabilities are
// deliberately exempt: capex clamps to zero in the FCF rollup and
// total liabilities is carried as metadata only.
func validateColumns(fundamentals []*data.FundamentalRecord) error {
	for _, col := range requiredColumns {
		present := false
		for _, rec := range fundamentals {
			if col.get(rec) != nil {
				present = true
				break
			}
		}
		if !present {
			log.Error().Str("Column", col.name).Msg("required fundamentals column has no data")
			return fmt.Errorf("%w: %s", ErrMissingColumn, col.name)
		}
	}
	return nil
}
