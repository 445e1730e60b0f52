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

	"github.com/penny-vault/pv-factors/library"
	"github.com/penny-vault/pv-factors/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the current score table as an HTML report",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load library")
		}
		defer myLibrary.Close()

		scores, err := myLibrary.LoadScores(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load score table")
		}

		lastPriceDate, err := myLibrary.LastPriceDate(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not query last price date")
		}

		lastFiscalEnd, err := myLibrary.LastFiscalEnd(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not query last fiscal period")
		}

		outDir := viper.GetString("report.dir")
		if outDir == "" {
			outDir = "reports"
		}

		fn, err := report.Write(scores, lastPriceDate, lastFiscalEnd, outDir)
		if err != nil {
			log.Fatal().Err(err).Msg("could not write report")
		}

		log.Info().Str("FileName", fn).Msg("report ready")
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
