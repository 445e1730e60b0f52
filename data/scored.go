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
package data

import (
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// ScoredTicker is one output row of the factor engine. Nil fields are
// undefined: the metric could not be computed for this ticker (zero
// denominator, missing price, short history) and is persisted as NULL
// rather than zero.
type ScoredTicker struct {
	Ticker string `db:"ticker" csv:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`

	Price       *float64 `db:"price" csv:"price" parquet:"name=price, type=DOUBLE, repetitiontype=OPTIONAL"`
	PETTM       *float64 `db:"pe_ttm" csv:"pe_ttm" parquet:"name=pe_ttm, type=DOUBLE, repetitiontype=OPTIONAL"`
	FCFYieldTTM *float64 `db:"fcf_yield_ttm" csv:"fcf_yield_ttm" parquet:"name=fcf_yield_ttm, type=DOUBLE, repetitiontype=OPTIONAL"`
	EVtoEBITDA  *float64 `db:"ev_to_ebitda" csv:"ev_to_ebitda" parquet:"name=ev_to_ebitda, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROIC        *float64 `db:"roic" csv:"roic" parquet:"name=roic, type=DOUBLE, repetitiontype=OPTIONAL"`
	Leverage    *float64 `db:"leverage" csv:"leverage" parquet:"name=leverage, type=DOUBLE, repetitiontype=OPTIONAL"`
	QualROA     *float64 `db:"qual_roa" csv:"qual_roa" parquet:"name=qual_roa, type=DOUBLE, repetitiontype=OPTIONAL"`
	PiotroskiF  int32    `db:"piotroski_f" csv:"piotroski_f" parquet:"name=piotroski_f, type=INT32"`

	Mom6m         *float64 `db:"mom_6m" csv:"mom_6m" parquet:"name=mom_6m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Mom12m        *float64 `db:"mom_12m" csv:"mom_12m" parquet:"name=mom_12m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Volatility30d *float64 `db:"volatility_30d" csv:"volatility_30d" parquet:"name=volatility_30d, type=DOUBLE, repetitiontype=OPTIONAL"`
	Sharpe1y      *float64 `db:"sharpe_1y" csv:"sharpe_1y" parquet:"name=sharpe_1y, type=DOUBLE, repetitiontype=OPTIONAL"`

	ValueScore   *float64 `db:"value_score" csv:"value_score" parquet:"name=value_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	QualityScore *float64 `db:"quality_score" csv:"quality_score" parquet:"name=quality_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	MomScore     *float64 `db:"mom_score" csv:"mom_score" parquet:"name=mom_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValueZ       *float64 `db:"value_z" csv:"value_z" parquet:"name=value_z, type=DOUBLE, repetitiontype=OPTIONAL"`
	QualityZ     *float64 `db:"quality_z" csv:"quality_z" parquet:"name=quality_z, type=DOUBLE, repetitiontype=OPTIONAL"`

	Composite           *float64 `db:"composite" csv:"composite" parquet:"name=composite, type=DOUBLE, repetitiontype=OPTIONAL"`
	CompositePercentile *float64 `db:"composite_percentile" csv:"composite_percentile" parquet:"name=composite_percentile, type=DOUBLE, repetitiontype=OPTIONAL"`

	Industry string `db:"industry" csv:"industry" parquet:"name=industry, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`

	FiscalEnd    time.Time `db:"fiscal_end" csv:"-"`
	FiscalEndStr string    `db:"-" csv:"fiscal_end" parquet:"name=fiscal_end, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Filed        time.Time `db:"filed" csv:"-"`
	FiledStr     string    `db:"-" csv:"filed" parquet:"name=filed, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CIK          string    `db:"cik" csv:"cik" parquet:"name=cik, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SIC          int32     `db:"sic" csv:"sic" parquet:"name=sic, type=INT32"`
	EntityName   string    `db:"entity_name" csv:"entity_name" parquet:"name=entity_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// SaveScoresCSV writes the scored table as a CSV artifact next to the
// parquet snapshot.
func SaveScoresCSV(scores []*ScoredTicker, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create csv file")
		return err
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&scores, fh); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("csv write failed")
		return err
	}

	log.Info().Int("NumRecords", len(scores)).Str("FileName", fn).Msg("csv write finished")
	return nil
}
