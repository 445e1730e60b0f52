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
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pv-factors/backblaze"
	"github.com/penny-vault/pv-factors/data"
	"github.com/penny-vault/pv-factors/factor"
	"github.com/penny-vault/pv-factors/healthcheck"
	"github.com/penny-vault/pv-factors/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fullSnapshot bool

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute factor scores and replace the score table",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		runID := uuid.New()
		startTime := time.Now()

		log.Info().Str("RunID", runID.String()).Msg("starting factor computation run")

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load library")
		}
		defer myLibrary.Close()

		prices, err := myLibrary.LoadPriceBars(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load price table")
		}

		fundamentals, err := myLibrary.LoadFundamentals(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load fundamentals table")
		}

		log.Info().Int("NumPriceBars", len(prices)).Int("NumFundamentals", len(fundamentals)).Msg("tables loaded")

		scores, err := factor.Compute(prices, fundamentals, factor.WeightsFromConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("factor computation failed")
		}

		if err := myLibrary.ReplaceScores(ctx, scores); err != nil {
			log.Fatal().Err(err).Msg("could not replace score table")
		}

		// dated snapshot artifacts
		snapshotDir := viper.GetString("snapshot.dir")
		if snapshotDir == "" {
			snapshotDir = "."
		}

		dateStr := time.Now().Format("2006-01-02")
		parquetFN := filepath.Join(snapshotDir, fmt.Sprintf("scores-%s.parquet", dateStr))
		csvFN := filepath.Join(snapshotDir, fmt.Sprintf("scores-%s.csv", dateStr))

		if err := data.SaveScoresParquet(scores, parquetFN); err != nil {
			log.Fatal().Err(err).Msg("could not write parquet snapshot")
		}

		if err := data.SaveScoresCSV(scores, csvFN); err != nil {
			log.Fatal().Err(err).Msg("could not write csv snapshot")
		}

		if fullSnapshot {
			pricesFN := filepath.Join(snapshotDir, fmt.Sprintf("prices-%s.parquet", dateStr))
			fundamentalsFN := filepath.Join(snapshotDir, fmt.Sprintf("fundamentals-%s.parquet", dateStr))

			if err := data.SavePricesParquet(prices, pricesFN); err != nil {
				log.Error().Err(err).Msg("could not write prices snapshot")
			}
			if err := data.SaveFundamentalsParquet(fundamentals, fundamentalsFN); err != nil {
				log.Error().Err(err).Msg("could not write fundamentals snapshot")
			}
		}

		// offsite copy
		if bucket := viper.GetString("backblaze.bucket"); bucket != "" {
			if err := backblaze.Upload(parquetFN, bucket, dateStr); err != nil {
				log.Error().Err(err).Msg("could not upload parquet snapshot to backblaze")
			}
		}

		// signal run completion
		if checkID := viper.GetString("healthchecks.compute_id"); checkID != "" {
			if err := healthcheck.Ping(checkID); err != nil {
				log.Error().Err(err).Msg("could not ping health check")
			}
		}

		log.Info().
			Str("RunID", runID.String()).
			Int("NumScored", len(scores)).
			Dur("Elapsed", time.Since(startTime)).
			Msg("factor computation run finished")
	},
}

func init() {
	rootCmd.AddCommand(computeCmd)
	computeCmd.Flags().BoolVar(&fullSnapshot, "full-snapshot", false,
		"also snapshot the raw price and fundamentals tables to parquet")
}
