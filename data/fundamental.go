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

// FundamentalRecord is one quarterly statement for a ticker, keyed by
// the fiscal period end date. Numeric quantities are nullable: a nil
// value means the company did not report the item for that period and
// degrades to an undefined ratio downstream, never to zero.
type FundamentalRecord struct {
	Ticker    string    `db:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FiscalEnd time.Time `db:"fiscal_end"`

	FiscalEndStr string `db:"-" parquet:"name=fiscal_end, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`

	Revenue             *float64 `db:"revenue" parquet:"name=revenue, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetIncome           *float64 `db:"net_income" parquet:"name=net_income, type=DOUBLE, repetitiontype=OPTIONAL"`
	SharesDiluted       *float64 `db:"shares_diluted" parquet:"name=shares_diluted, type=DOUBLE, repetitiontype=OPTIONAL"`
	OperatingCF         *float64 `db:"operating_cf" parquet:"name=operating_cf, type=DOUBLE, repetitiontype=OPTIONAL"`
	CapitalExpenditures *float64 `db:"capital_expenditures" parquet:"name=capital_expenditures, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalAssets         *float64 `db:"total_assets" parquet:"name=total_assets, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalLiabilities    *float64 `db:"total_liabilities" parquet:"name=total_liabilities, type=DOUBLE, repetitiontype=OPTIONAL"`
	CashAndEquivalents  *float64 `db:"cash_and_equivalents" parquet:"name=cash_and_equivalents, type=DOUBLE, repetitiontype=OPTIONAL"`
	Debt                *float64 `db:"debt" parquet:"name=debt, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrossProfit         *float64 `db:"gross_profit" parquet:"name=gross_profit, type=DOUBLE, repetitiontype=OPTIONAL"`
	CurrentAssets       *float64 `db:"current_assets" parquet:"name=current_assets, type=DOUBLE, repetitiontype=OPTIONAL"`
	CurrentLiabilities  *float64 `db:"current_liabilities" parquet:"name=current_liabilities, type=DOUBLE, repetitiontype=OPTIONAL"`
	EBITDA              *float64 `db:"ebitda" parquet:"name=ebitda, type=DOUBLE, repetitiontype=OPTIONAL"`
	InterestExpense     *float64 `db:"interest_expense" parquet:"name=interest_expense, type=DOUBLE, repetitiontype=OPTIONAL"`

	Filed      time.Time `db:"filed"`
	FiledStr   string    `db:"-" parquet:"name=filed, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CIK        string    `db:"cik" parquet:"name=cik, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SIC        int32     `db:"sic" parquet:"name=sic, type=INT32"`
	EntityName string    `db:"entity_name" parquet:"name=entity_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

func (fundamental *FundamentalRecord) SaveDB(ctx context.Context, tbl string, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing fundamental transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"ticker",
		"fiscal_end",
		"revenue",
		"net_income",
		"shares_diluted",
		"operating_cf",
		"capital_expenditures",
		"total_assets",
		"total_liabilities",
		"cash_and_equivalents",
		"debt",
		"gross_profit",
		"current_assets",
		"current_liabilities",
		"ebitda",
		"interest_expense",
		"filed",
		"cik",
		"sic",
		"entity_name"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
	) ON CONFLICT ON CONSTRAINT %[1]s_pkey DO UPDATE SET
		revenue = EXCLUDED.revenue,
		net_income = EXCLUDED.net_income,
		shares_diluted = EXCLUDED.shares_diluted,
		operating_cf = EXCLUDED.operating_cf,
		capital_expenditures = EXCLUDED.capital_expenditures,
		total_assets = EXCLUDED.total_assets,
		total_liabilities = EXCLUDED.total_liabilities,
		cash_and_equivalents = EXCLUDED.cash_and_equivalents,
		debt = EXCLUDED.debt,
		gross_profit = EXCLUDED.gross_profit,
		current_assets = EXCLUDED.current_assets,
		current_liabilities = EXCLUDED.current_liabilities,
		ebitda = EXCLUDED.ebitda,
		interest_expense = EXCLUDED.interest_expense,
		filed = EXCLUDED.filed,
		cik = EXCLUDED.cik,
		sic = EXCLUDED.sic,
		entity_name = EXCLUDED.entity_name`, tbl)

	_, err = tx.Exec(ctx, sql,
		fundamental.Ticker,
		fundamental.FiscalEnd,
		fundamental.Revenue,
		fundamental.NetIncome,
		fundamental.SharesDiluted,
		fundamental.OperatingCF,
		fundamental.CapitalExpenditures,
		fundamental.TotalAssets,
		fundamental.TotalLiabilities,
		fundamental.CashAndEquivalents,
		fundamental.Debt,
		fundamental.GrossProfit,
		fundamental.CurrentAssets,
		fundamental.CurrentLiabilities,
		fundamental.EBITDA,
		fundamental.InterestExpense,
		fundamental.Filed,
		fundamental.CIK,
		fundamental.SIC,
		fundamental.EntityName,
	)

	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Msg("save fundamental to DB failed")
		return err
	}

	return nil
}
