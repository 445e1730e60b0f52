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
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PriceBar is one daily observation for a ticker. AdjClose is the
// canonical price used for every derived ratio and return.
type PriceBar struct {
	Ticker   string    `db:"ticker" json:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Date     time.Time `db:"date" json:"date"`
	DateStr  string    `db:"-" json:"-" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Open     float64   `db:"open" json:"open" parquet:"name=open, type=DOUBLE"`
	High     float64   `db:"high" json:"high" parquet:"name=high, type=DOUBLE"`
	Low      float64   `db:"low" json:"low" parquet:"name=low, type=DOUBLE"`
	Close    float64   `db:"close" json:"close" parquet:"name=close, type=DOUBLE"`
	AdjClose float64   `db:"adj_close" json:"adjClose" parquet:"name=adj_close, type=DOUBLE"`
	Volume   int64     `db:"volume" json:"volume" parquet:"name=volume, type=INT64"`
}

func (bar *PriceBar) SaveDB(ctx context.Context, tbl string, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing price bar transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"ticker",
		"date",
		"open",
		"high",
		"low",
		"close",
		"adj_close",
		"volume"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	) ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		adj_close = EXCLUDED.adj_close,
		volume = EXCLUDED.volume;`, tbl)

	_, err = tx.Exec(ctx, sql, bar.Ticker, bar.Date, bar.Open, bar.High,
		bar.Low, bar.Close, bar.AdjClose, bar.Volume)
	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Msg("error saving price bar to database")
	}

	return nil
}
