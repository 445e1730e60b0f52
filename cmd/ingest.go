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
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/penny-vault/pv-factors/data"
	"github.com/penny-vault/pv-factors/library"
	"github.com/penny-vault/pv-factors/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ingestStartDate string

// snapshotFN builds a dated parquet snapshot path under the configured
// snapshot directory.
func snapshotFN(prefix string) string {
	dir := viper.GetString("snapshot.dir")
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.parquet", prefix, time.Now().Format("2006-01-02")))
}

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download market data into the factor library",
}

var ingestPricesCmd = &cobra.Command{
	Use:   "prices [tickers...]",
	Short: "Download end-of-day prices from tiingo",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load library")
		}
		defer myLibrary.Close()

		tiingo := provider.NewTiingo(viper.GetString("tiingo.api_key"),
			viper.GetInt("tiingo.rate_limit"))

		tickers := args
		if len(tickers) == 0 {
			tickers, err = tiingo.ListTickers(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("could not list tiingo tickers")
			}
		}

		startDate, err := time.Parse("2006-01-02", ingestStartDate)
		if err != nil {
			log.Fatal().Err(err).Str("StartDate", ingestStartDate).Msg("could not parse start date")
		}

		queue := make(chan *data.PriceBar, 100)
		var wg sync.WaitGroup
		wg.Add(1)
		go myLibrary.SavePriceBars(queue, &wg)

		// tee downloaded bars into the dated snapshot
		bars := make([]*data.PriceBar, 0, len(tickers)*252)
		tee := make(chan *data.PriceBar, 100)
		go func() {
			for bar := range tee {
				bars = append(bars, bar)
				queue <- bar
			}
			close(queue)
		}()

		if err := tiingo.FetchEOD(ctx, tickers, startDate, tee); err != nil {
			log.Error().Err(err).Msg("price download finished with errors")
		}

		close(tee)
		wg.Wait()

		fn := snapshotFN("prices")
		if err := data.SavePricesParquet(bars, fn); err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("could not write prices snapshot")
		}
	},
}

var ingestFundamentalsCmd = &cobra.Command{
	Use:   "fundamentals [tickers...]",
	Short: "Download quarterly fundamentals from SEC EDGAR",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load library")
		}
		defer myLibrary.Close()

		sec := provider.NewSEC(viper.GetString("sec.user_agent"))

		tickers := args
		if len(tickers) == 0 {
			tiingo := provider.NewTiingo(viper.GetString("tiingo.api_key"),
				viper.GetInt("tiingo.rate_limit"))
			tickers, err = tiingo.ListTickers(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("could not list tiingo tickers")
			}
		}

		queue := make(chan *data.FundamentalRecord, 100)
		var wg sync.WaitGroup
		wg.Add(1)
		go myLibrary.SaveFundamentals(queue, &wg)

		// tee downloaded statements into the dated snapshot
		records := make([]*data.FundamentalRecord, 0, len(tickers)*8)
		tee := make(chan *data.FundamentalRecord, 100)
		go func() {
			for record := range tee {
				records = append(records, record)
				queue <- record
			}
			close(queue)
		}()

		if err := sec.FetchFundamentals(ctx, tickers, tee); err != nil {
			log.Error().Err(err).Msg("fundamentals download finished with errors")
		}

		close(tee)
		wg.Wait()

		fn := snapshotFN("fundamentals")
		if err := data.SaveFundamentalsParquet(records, fn); err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("could not write fundamentals snapshot")
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestPricesCmd)
	ingestCmd.AddCommand(ingestFundamentalsCmd)

	defaultStart := time.Now().Add(-2 * 365 * 24 * time.Hour).Format("2006-01-02")
	ingestPricesCmd.Flags().StringVar(&ingestStartDate, "start-date", defaultStart,
		"first date to download prices for (YYYY-MM-DD)")
}
