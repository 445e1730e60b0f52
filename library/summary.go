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
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", myLibrary.DBUrl)); err != nil {
		return "", err
	}

	// Number of tickers tracked
	numTickers, err := myLibrary.NumTickers(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Tickers Tracked: %d\n", numTickers)); err != nil {
		return "", err
	}

	// Total price bar count
	totalBars, err := myLibrary.TotalPriceBars(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Daily Price Bars: %d\n", totalBars)); err != nil {
		return "", err
	}

	// Total fundamentals count
	totalFundamentals, err := myLibrary.TotalFundamentals(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Quarterly Statements: %d\n\n", totalFundamentals)); err != nil {
		return "", err
	}

	// Last price date
	lastPrice, err := myLibrary.LastPriceDate(ctx)
	if err != nil {
		return "", err
	}

	if lastPrice.Equal(time.Time{}) {
		if _, err := builder.WriteString("Prices Updated: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(lastPrice)
		if _, err := builder.WriteString(fmt.Sprintf("Prices Updated: %s (%s)\n\n", age, lastPrice.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	// Last fiscal period
	lastFiscal, err := myLibrary.LastFiscalEnd(ctx)
	if err != nil {
		return "", err
	}

	if lastFiscal.Equal(time.Time{}) {
		if _, err := builder.WriteString("Latest Fiscal Period: None\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(lastFiscal)
		if _, err := builder.WriteString(fmt.Sprintf("Latest Fiscal Period: %s (%s)\n\n", age, lastFiscal.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	// Top ranked tickers
	if _, err := builder.WriteString("## Top Ranked\n\n"); err != nil {
		return "", err
	}

	scores, err := myLibrary.LoadScores(ctx)
	if err != nil {
		return "", err
	}

	for idx, score := range scores {
		if idx >= 10 || score.Composite == nil {
			break
		}

		if _, err := builder.WriteString(p.Sprintf("  * %s (%s) composite %.3f\n", score.Ticker,
			score.Industry, *score.Composite)); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
