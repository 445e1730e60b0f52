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
package library

import (
	"context"
	"sync"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pv-factors/data"
	"github.com/rs/zerolog/log"
)

// Table names managed by the library. Prices and fundamentals are
// upserted in place; scores are fully replaced each run.
const (
	PriceTable       = "prices_daily"
	FundamentalTable = "fundamentals_quarterly"
	ScoreTable       = "scores_daily"
)

type Library struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(context.Background(), myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// LoadPriceBars reads the full daily price table, date ascending.
func (myLibrary *Library) LoadPriceBars(ctx context.Context) ([]*data.PriceBar, error) {
	var bars []*data.PriceBar
	err := pgxscan.Select(ctx, myLibrary.Pool, &bars,
		`SELECT ticker, date, open, high, low, close, adj_close, volume
FROM `+PriceTable+` ORDER BY ticker, date`)
	return bars, err
}

// LoadFundamentals reads the full quarterly fundamentals table, fiscal
// period ascending.
func (myLibrary *Library) LoadFundamentals(ctx context.Context) ([]*data.FundamentalRecord, error) {
	var records []*data.FundamentalRecord
	err := pgxscan.Select(ctx, myLibrary.Pool, &records,
		`SELECT ticker, fiscal_end, revenue, net_income, shares_diluted, operating_cf,
capital_expenditures, total_assets, total_liabilities, cash_and_equivalents, debt,
gross_profit, current_assets, current_liabilities, ebitda, interest_expense,
filed, cik, sic, entity_name
FROM `+FundamentalTable+` ORDER BY ticker, fiscal_end`)
	return records, err
}

// ReplaceScores atomically swaps the score table for a fresh ranking.
// The previous contents are deleted and the new rows inserted in a
// single transaction so readers never observe a partial table.
func (myLibrary *Library) ReplaceScores(ctx context.Context, scores []*data.ScoredTicker) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+ScoreTable); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("error rolling back score transaction")
		}
		return err
	}

	for _, row := range scores {
		_, err := tx.Exec(ctx, `INSERT INTO `+ScoreTable+` (
			"ticker", "price", "pe_ttm", "fcf_yield_ttm", "ev_to_ebitda", "roic",
			"leverage", "qual_roa", "piotroski_f", "mom_6m", "mom_12m",
			"volatility_30d", "sharpe_1y", "value_score", "quality_score",
			"mom_score", "value_z", "quality_z", "composite",
			"composite_percentile", "industry", "fiscal_end", "filed", "cik",
			"sic", "entity_name"
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)`,
			row.Ticker, row.Price, row.PETTM, row.FCFYieldTTM, row.EVtoEBITDA,
			row.ROIC, row.Leverage, row.QualROA, row.PiotroskiF, row.Mom6m,
			row.Mom12m, row.Volatility30d, row.Sharpe1y, row.ValueScore,
			row.QualityScore, row.MomScore, row.ValueZ, row.QualityZ,
			row.Composite, row.CompositePercentile, row.Industry,
			row.FiscalEnd, row.Filed, row.CIK, row.SIC, row.EntityName)
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("error rolling back score transaction")
			}
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("error committing score transaction to database")
		return err
	}

	log.Info().Int("NumRecords", len(scores)).Str("Table", ScoreTable).Msg("score table replaced")
	return nil
}

// LoadScores reads the current score table, composite descending.
func (myLibrary *Library) LoadScores(ctx context.Context) ([]*data.ScoredTicker, error) {
	var scores []*data.ScoredTicker
	err := pgxscan.Select(ctx, myLibrary.Pool, &scores,
		`SELECT ticker, price, pe_ttm, fcf_yield_ttm, ev_to_ebitda, roic, leverage,
qual_roa, piotroski_f, mom_6m, mom_12m, volatility_30d, sharpe_1y, value_score,
quality_score, mom_score, value_z, quality_z, composite, composite_percentile,
industry, fiscal_end, filed, cik, sic, entity_name
FROM `+ScoreTable+` ORDER BY composite DESC NULLS LAST, ticker`)
	return scores, err
}

// SavePriceBars continuously reads price bars from the input queue and
// upserts them until the queue closes.
func (myLibrary *Library) SavePriceBars(queue <-chan *data.PriceBar, wg *sync.WaitGroup) {
	ctx := context.Background()
	defer wg.Done()

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		log.Panic().Err(err).Msg("cannot acquire database connection")
		return
	}
	defer conn.Release()

	for bar := range queue {
		if err := bar.SaveDB(ctx, PriceTable, conn); err != nil {
			log.Error().Err(err).Str("Ticker", bar.Ticker).Msg("cannot save price bar to database")
		}
	}
}

// SaveFundamentals continuously reads fundamental records from the
// input queue and upserts them until the queue closes.
func (myLibrary *Library) SaveFundamentals(queue <-chan *data.FundamentalRecord, wg *sync.WaitGroup) {
	ctx := context.Background()
	defer wg.Done()

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		log.Panic().Err(err).Msg("cannot acquire database connection")
		return
	}
	defer conn.Release()

	for record := range queue {
		if err := record.SaveDB(ctx, FundamentalTable, conn); err != nil {
			log.Error().Err(err).Str("Ticker", record.Ticker).Msg("cannot save fundamental to database")
		}
	}
}

// NumTickers returns the count of tickers with a fundamentals history.
func (myLibrary *Library) NumTickers(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(DISTINCT ticker) FROM "+FundamentalTable).Scan(&count)
	return count, err
}

// TotalPriceBars returns the total number of daily price rows.
func (myLibrary *Library) TotalPriceBars(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM "+PriceTable).Scan(&count)
	return count, err
}

// TotalFundamentals returns the total number of quarterly rows.
func (myLibrary *Library) TotalFundamentals(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM "+FundamentalTable).Scan(&count)
	return count, err
}

// LastPriceDate returns the most recent date in the price table.
func (myLibrary *Library) LastPriceDate(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastDate time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(date), '0001-01-01'::timestamp) FROM "+PriceTable).Scan(&lastDate)
	if err != nil {
		return time.Time{}, err
	}

	return lastDate, nil
}

// LastFiscalEnd returns the most recent fiscal period end in the
// fundamentals table.
func (myLibrary *Library) LastFiscalEnd(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastDate time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(fiscal_end), '0001-01-01'::timestamp) FROM "+FundamentalTable).Scan(&lastDate)
	if err != nil {
		return time.Time{}, err
	}

	return lastDate, nil
}
