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
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// SaveScoresParquet writes the scored table as a dated parquet
// snapshot. String date mirrors must be populated before calling.
func SaveScoresParquet(scores []*ScoredTicker, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create parquet file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(ScoredTicker), 4)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create parquet writer")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, record := range scores {
		if err = pw.Write(record); err != nil {
			log.Error().Err(err).Str("Ticker", record.Ticker).Msg("error writing score record to parquet")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(scores)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}

// SavePricesParquet writes daily price bars as a parquet snapshot.
func SavePricesParquet(bars []*PriceBar, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create parquet file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(PriceBar), 4)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create parquet writer")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, record := range bars {
		record.DateStr = record.Date.Format("2006-01-02")
		if err = pw.Write(record); err != nil {
			log.Error().Err(err).Str("Ticker", record.Ticker).Msg("error writing price bar to parquet")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(bars)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}

// SaveFundamentalsParquet writes quarterly fundamentals as a parquet
// snapshot.
func SaveFundamentalsParquet(records []*FundamentalRecord, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create parquet file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(FundamentalRecord), 4)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create parquet writer")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, record := range records {
		record.FiscalEndStr = record.FiscalEnd.Format("2006-01-02")
		record.FiledStr = record.Filed.Format("2006-01-02")
		if err = pw.Write(record); err != nil {
			log.Error().Err(err).Str("Ticker", record.Ticker).Msg("error writing fundamental record to parquet")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(records)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}
