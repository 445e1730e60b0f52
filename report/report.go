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

// Package report renders the current score table as a static HTML page
// with a weighted watchlist and data staleness warnings.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/penny-vault/pv-factors/data"
	"github.com/rs/zerolog/log"
)

//go:embed template.html
var templateFS embed.FS

const watchlistSize = 10

// staleness thresholds for the warning banners: a few days for prices,
// two fiscal quarters for fundamentals
const (
	stalePriceAge       = 3 * 24 * time.Hour
	staleFundamentalAge = 2 * 91 * 24 * time.Hour
)

type watchlistEntry struct {
	Ticker     string
	EntityName string
	Industry   string
	Composite  float64
	WeightPct  float64
}

type reportContext struct {
	Date      string
	Warnings  []string
	Watchlist []watchlistEntry
	Rows      []*data.ScoredTicker
}

// Write renders the score table to an HTML file under outDir and
// returns the generated file path. Scores must already be sorted by
// composite descending.
func Write(scores []*data.ScoredTicker, lastPriceDate, lastFiscalEnd time.Time, outDir string) (string, error) {
	asOf := time.Now()

	ctx := reportContext{
		Date:      asOf.Format("2006-01-02"),
		Warnings:  staleness(asOf, lastPriceDate, lastFiscalEnd),
		Watchlist: buildWatchlist(scores),
		Rows:      scores,
	}

	tmpl, err := template.New("template.html").Funcs(template.FuncMap{
		"fmtPtr": fmtPtr,
		"fmtPct": fmtPct,
	}).ParseFS(templateFS, "template.html")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	fn := filepath.Join(outDir, fmt.Sprintf("factor-report-%s.html", ctx.Date))
	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create report file")
		return "", err
	}
	defer fh.Close()

	if err := tmpl.Execute(fh, ctx); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("report render failed")
		return "", err
	}

	log.Info().Str("FileName", fn).Int("NumRows", len(scores)).Msg("report written")
	return fn, nil
}

// staleness flags input tables that have not been refreshed recently
// enough for the ranking to be trusted.
func staleness(asOf, lastPriceDate, lastFiscalEnd time.Time) []string {
	warnings := make([]string, 0, 2)

	if lastPriceDate.IsZero() {
		warnings = append(warnings, "No price data loaded.")
	} else if asOf.Sub(lastPriceDate) > stalePriceAge {
		warnings = append(warnings, fmt.Sprintf("Prices are stale: most recent bar is %s.",
			lastPriceDate.Format("2006-01-02")))
	}

	if lastFiscalEnd.IsZero() {
		warnings = append(warnings, "No fundamentals data loaded.")
	} else if asOf.Sub(lastFiscalEnd) > staleFundamentalAge {
		warnings = append(warnings, fmt.Sprintf("Fundamentals are stale: most recent fiscal period ended %s.",
			lastFiscalEnd.Format("2006-01-02")))
	}

	return warnings
}

// buildWatchlist takes the top ranked tickers and assigns portfolio
// weights proportional to their composite scores. When the positive
// mass is zero the weights fall back to equal.
func buildWatchlist(scores []*data.ScoredTicker) []watchlistEntry {
	entries := make([]watchlistEntry, 0, watchlistSize)
	total := 0.0
	for _, row := range scores {
		if len(entries) >= watchlistSize || row.Composite == nil {
			break
		}
		entries = append(entries, watchlistEntry{
			Ticker:     row.Ticker,
			EntityName: row.EntityName,
			Industry:   row.Industry,
			Composite:  *row.Composite,
		})
		if *row.Composite > 0 {
			total += *row.Composite
		}
	}

	for i := range entries {
		if total > 0 {
			weight := entries[i].Composite
			if weight < 0 {
				weight = 0
			}
			entries[i].WeightPct = weight / total * 100
		} else if len(entries) > 0 {
			entries[i].WeightPct = 100 / float64(len(entries))
		}
	}

	return entries
}

func fmtPtr(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}
