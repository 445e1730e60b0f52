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
package provider

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pv-factors/data"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Tiingo struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewTiingo creates a Tiingo client. rateLimit is the maximum number of
// requests per minute.
func NewTiingo(apiKey string, rateLimit int) *Tiingo {
	if rateLimit <= 0 {
		rateLimit = 5000
	}

	return &Tiingo{
		client:  resty.New().SetQueryParam("token", apiKey),
		limiter: rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1),
	}
}

func (tiingo *Tiingo) Name() string {
	return "tiingo"
}

func (tiingo *Tiingo) Description() string {
	return `Tiingo provides REST endpoints with end-of-day stock prices, split and dividend adjusted, for all US stock exchanges.`
}

// Private interface

type tiingoEod struct {
	Date        string  `json:"date"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	AdjClose    float64 `json:"adjClose"`
	Volume      float64 `json:"volume"`
	Dividend    float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

type tiingoAsset struct {
	Ticker        string `json:"ticker" csv:"ticker"`
	Exchange      string `json:"exchange" csv:"exchange"`
	AssetType     string `json:"assetType" csv:"assetType"`
	PriceCurrency string `json:"priceCurrency" csv:"priceCurrency"`
	StartDate     string `json:"startDate" csv:"startDate"`
	EndDate       string `json:"endDate" csv:"endDate"`
}

// FetchEOD downloads daily price bars for each ticker from startDate
// forward and streams them to out. A failed ticker is logged and
// skipped; the remaining tickers still download.
func (tiingo *Tiingo) FetchEOD(ctx context.Context, tickers []string, startDate time.Time, out chan<- *data.PriceBar) error {
	nyc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Panic().Err(err).Msg("could not load timezone")
		return err
	}

	startDateStr := startDate.Format("2006-01-02")

	for _, requestTicker := range tickers {
		// reformat ticker for tiingo, e.g. BRK/A -> BRK-A
		ticker := strings.ReplaceAll(requestTicker, "/", "-")
		url := fmt.Sprintf("https://api.tiingo.com/tiingo/daily/%s/prices", ticker)

		respContent := make([]*tiingoEod, 0)
		req := tiingo.client.R().
			SetQueryParam("startDate", startDateStr).
			SetResult(&respContent)

		resp, err := getWithRetry(ctx, req, tiingo.limiter, url)
		if err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Msg("resty returned an error when querying eod prices")
			continue
		}

		if resp.StatusCode() >= 300 {
			log.Error().Int("StatusCode", resp.StatusCode()).Str("Ticker", ticker).Str("URL", resp.Request.URL).Msg("tiingo returned an invalid HTTP response")
			continue
		}

		for _, quote := range respContent {
			quoteDate, err := time.Parse(time.RFC3339Nano, quote.Date)
			if err != nil {
				log.Error().Err(err).Str("tiingoDate", quote.Date).Msg("could not parse date from tiingo eod object")
				continue
			}

			// set tiingo date to correct time zone and market close
			quoteDate = time.Date(quoteDate.Year(), quoteDate.Month(), quoteDate.Day(), 16, 0, 0, 0, nyc)

			out <- &data.PriceBar{
				Ticker:   requestTicker,
				Date:     quoteDate,
				Open:     quote.Open,
				High:     quote.High,
				Low:      quote.Low,
				Close:    quote.Close,
				AdjClose: quote.AdjClose,
				Volume:   int64(quote.Volume),
			}
		}
	}

	return nil
}

// ListTickers downloads tiingo's supported-tickers archive and returns
// the active common stock tickers on the major US exchanges.
func (tiingo *Tiingo) ListTickers(ctx context.Context) ([]string, error) {
	tickerURL := "https://apimedia.tiingo.com/docs/tiingo/daily/supported_tickers.zip"
	assets := []*tiingoAsset{}

	resp, err := getWithRetry(ctx, tiingo.client.R(), tiingo.limiter, tickerURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to download tickers")
		return nil, err
	}

	if resp.StatusCode() >= 400 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("Url", tickerURL).Bytes("Body", resp.Body()).Msg("error when requesting tiingo supported_tickers.zip")
		return nil, fmt.Errorf("tiingo status %d for supported_tickers.zip", resp.StatusCode())
	}

	body := resp.Body()
	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		log.Error().Err(err).Msg("failed to read tiingo supported tickers zip file")
		return nil, err
	}

	if len(zipReader.File) == 0 {
		log.Error().Msg("no files contained in tiingo supported tickers zip file")
		return nil, fmt.Errorf("empty supported_tickers.zip")
	}

	tickerCsvBytes, err := readZipFile(zipReader.File[0])
	if err != nil {
		log.Error().Err(err).Msg("failed to read ticker csv from tiingo supported tickers zip file")
		return nil, err
	}

	if err := gocsv.UnmarshalBytes(tickerCsvBytes, &assets); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal tiingo supported tickers csv")
		return nil, err
	}

	validExchanges := []string{"AMEX", "BATS", "NASDAQ", "NMFQS", "NYSE", "NYSE ARCA", "NYSE MKT"}
	tickers := make([]string, 0, 25000)
	for _, asset := range assets {
		keep := false
		for _, exchange := range validExchanges {
			if asset.Exchange == exchange {
				keep = true
			}
		}
		if !keep {
			continue
		}

		if asset.AssetType != "Stock" {
			continue
		}

		// If both the start date and end date are not set skip it
		if asset.StartDate == "" && asset.EndDate == "" {
			continue
		}

		if asset.EndDate != "" {
			continue
		}

		// filter out tickers we should ignore
		if tiingoIgnoreTicker(asset.Ticker) {
			continue
		}

		tickers = append(tickers, strings.ReplaceAll(asset.Ticker, "-", "/"))
	}

	return tickers, nil
}

// tiingoIgnoreTicker interprets the structure of the ticker to identify
// the share type (Warrant, Unit, Preferred Share, etc.) and filters
// out unsupported stock types
func tiingoIgnoreTicker(ticker string) bool {
	ignore := strings.HasPrefix(ticker, "ATEST")
	ignore = ignore || strings.HasPrefix(ticker, "NTEST")
	ignore = ignore || strings.HasPrefix(ticker, "PTEST")
	ignore = ignore || strings.Contains(ticker, " ")
	matcher := regexp.MustCompile(`^[A-Za-z0-9]+-[WPU]{1}.*$`)
	ignore = ignore || matcher.Match([]byte(ticker))
	matcher = regexp.MustCompile(`^[A-Za-z0-9]{4}[WPU]{1}.*$`)
	ignore = ignore || matcher.Match([]byte(ticker))

	return ignore
}

func readZipFile(zf *zip.File) ([]byte, error) {
	f, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
