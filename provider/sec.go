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
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/penny-vault/pv-factors/data"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// SEC fetches quarterly fundamentals from the EDGAR companyfacts API.
// The SEC requires a descriptive User-Agent and caps clients at 10
// requests per second.
type SEC struct {
	client  *resty.Client
	limiter *rate.Limiter

	// ticker -> zero-padded CIK, loaded lazily from company_tickers.json
	cikCache *haxmap.Map[string, string]
}

func NewSEC(userAgent string) *SEC {
	return &SEC{
		client:   resty.New().SetHeader("User-Agent", userAgent),
		limiter:  rate.NewLimiter(rate.Limit(10), 1),
		cikCache: haxmap.New[string, string](),
	}
}

func (sec *SEC) Name() string {
	return "sec"
}

func (sec *SEC) Description() string {
	return `The SEC EDGAR companyfacts API provides every XBRL fact a registrant has filed, organized by GAAP tag, for free.`
}

// Private interface

// gaapTags maps each fundamentals column to its candidate GAAP tags in
// preference order; companies tag the same concept inconsistently.
var gaapTags = map[string][]string{
	"Revenue": {
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"SalesRevenueNet",
	},
	"NetIncome": {
		"NetIncomeLoss",
	},
	"SharesDiluted": {
		"WeightedAverageNumberOfDilutedSharesOutstanding",
		"WeightedAverageNumberOfSharesOutstandingBasic",
	},
	"OperatingCF": {
		"NetCashProvidedByUsedInOperatingActivities",
		"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	},
	"CapitalExpenditures": {
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"PaymentsToAcquireProductiveAssets",
	},
	"TotalAssets": {
		"Assets",
	},
	"TotalLiabilities": {
		"Liabilities",
	},
	"CashAndEquivalents": {
		"CashAndCashEquivalentsAtCarryingValue",
		"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	},
	"Debt": {
		"LongTermDebt",
		"LongTermDebtNoncurrent",
		"DebtLongtermAndShorttermCombinedAmount",
	},
	"GrossProfit": {
		"GrossProfit",
	},
	"CurrentAssets": {
		"AssetsCurrent",
	},
	"CurrentLiabilities": {
		"LiabilitiesCurrent",
	},
	"EBITDA": {
		"OperatingIncomeLoss",
	},
	"InterestExpense": {
		"InterestExpense",
		"InterestExpenseDebt",
	},
}

// flow metrics are reported over a start/end duration; everything else
// is a point-in-time balance
var flowMetrics = map[string]bool{
	"Revenue":             true,
	"NetIncome":           true,
	"SharesDiluted":       true,
	"OperatingCF":         true,
	"CapitalExpenditures": true,
	"GrossProfit":         true,
	"EBITDA":              true,
	"InterestExpense":     true,
}

type secCompanyTicker struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// LookupCIK resolves a ticker to its zero-padded CIK, loading the SEC
// ticker directory on first use.
func (sec *SEC) LookupCIK(ctx context.Context, ticker string) (string, error) {
	if sec.cikCache.Len() == 0 {
		if err := sec.loadCompanyTickers(ctx); err != nil {
			return "", err
		}
	}

	normalized := strings.ReplaceAll(strings.ToUpper(ticker), "/", "-")
	cik, ok := sec.cikCache.Get(normalized)
	if !ok {
		return "", fmt.Errorf("no CIK found for ticker %s", ticker)
	}
	return cik, nil
}

func (sec *SEC) loadCompanyTickers(ctx context.Context) error {
	url := "https://www.sec.gov/files/company_tickers.json"
	resp, err := getWithRetry(ctx, sec.client.R(), sec.limiter, url)
	if err != nil {
		log.Error().Err(err).Msg("failed to download company ticker directory")
		return err
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("URL", url).Msg("sec returned an invalid HTTP response")
		return fmt.Errorf("sec status %d for company_tickers.json", resp.StatusCode())
	}

	directory := make(map[string]secCompanyTicker)
	if err := json.Unmarshal(resp.Body(), &directory); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal company ticker directory")
		return err
	}

	for _, entry := range directory {
		sec.cikCache.Set(strings.ToUpper(entry.Ticker), fmt.Sprintf("%010d", entry.CIK))
	}

	log.Debug().Int64("NumTickers", int64(sec.cikCache.Len())).Msg("loaded sec company ticker directory")
	return nil
}

// FetchFundamentals downloads quarterly statements for each ticker and
// streams them to out. A ticker without a CIK or with a failed download
// is logged and skipped.
func (sec *SEC) FetchFundamentals(ctx context.Context, tickers []string, out chan<- *data.FundamentalRecord) error {
	for _, ticker := range tickers {
		cik, err := sec.LookupCIK(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("Ticker", ticker).Msg("skipping ticker with no CIK")
			continue
		}

		sic, entityName := sec.companyProfile(ctx, cik)

		records, err := sec.companyFacts(ctx, ticker, cik)
		if err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Str("CIK", cik).Msg("could not fetch company facts")
			continue
		}

		for _, record := range records {
			record.SIC = sic
			record.EntityName = entityName
			out <- record
		}
	}

	return nil
}

// companyProfile fetches the SIC code and entity name from the EDGAR
// submissions API. Failures degrade to an unclassified profile.
func (sec *SEC) companyProfile(ctx context.Context, cik string) (int32, string) {
	url := fmt.Sprintf("https://data.sec.gov/submissions/CIK%s.json", cik)
	resp, err := getWithRetry(ctx, sec.client.R(), sec.limiter, url)
	if err != nil || resp.StatusCode() >= 300 {
		log.Warn().Err(err).Str("CIK", cik).Msg("could not fetch company submissions profile")
		return 0, ""
	}

	body := string(resp.Body())
	return int32(gjson.Get(body, "sic").Int()), gjson.Get(body, "name").String()
}

// companyFacts parses the companyfacts payload into quarterly records
// keyed by fiscal period end.
func (sec *SEC) companyFacts(ctx context.Context, ticker, cik string) ([]*data.FundamentalRecord, error) {
	url := fmt.Sprintf("https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json", cik)
	resp, err := getWithRetry(ctx, sec.client.R(), sec.limiter, url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("sec status %d for companyfacts CIK%s", resp.StatusCode(), cik)
	}

	body := string(resp.Body())
	records := make(map[string]*data.FundamentalRecord)

	for metric, tags := range gaapTags {
		for _, tag := range tags {
			facts := gjson.Get(body, fmt.Sprintf("facts.us-gaap.%s.units", gjsonEscape(tag)))
			if !facts.Exists() {
				continue
			}

			matched := false
			facts.ForEach(func(unit, entries gjson.Result) bool {
				if unit.String() != "USD" && unit.String() != "shares" {
					return true
				}

				entries.ForEach(func(_, entry gjson.Result) bool {
					if applyFact(records, ticker, cik, metric, entry) {
						matched = true
					}
					return true
				})
				return true
			})

			// candidate tags are in preference order; stop at the
			// first tag that produced data
			if matched {
				break
			}
		}
	}

	result := make([]*data.FundamentalRecord, 0, len(records))
	for _, record := range records {
		result = append(result, record)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FiscalEnd.Before(result[j].FiscalEnd)
	})

	return result, nil
}

// applyFact folds one XBRL fact entry into the per-period record map.
// Flow metrics only accept quarterly durations; balance metrics accept
// any instant observation from a 10-Q or 10-K.
func applyFact(records map[string]*data.FundamentalRecord, ticker, cik, metric string, entry gjson.Result) bool {
	form := entry.Get("form").String()
	if form != "10-Q" && form != "10-K" && form != "10-K/A" && form != "10-Q/A" {
		return false
	}

	end := entry.Get("end").String()
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return false
	}

	if flowMetrics[metric] {
		start := entry.Get("start").String()
		startDate, err := time.Parse("2006-01-02", start)
		if err != nil {
			return false
		}

		// quarterly durations only; annual 10-K aggregates would
		// double-count under the rolling TTM sum
		duration := endDate.Sub(startDate)
		if duration < 75*24*time.Hour || duration > 100*24*time.Hour {
			return false
		}
	}

	record, ok := records[end]
	if !ok {
		record = &data.FundamentalRecord{
			Ticker:    ticker,
			FiscalEnd: endDate,
			CIK:       cik,
		}
		records[end] = record
	}

	if filed, err := time.Parse("2006-01-02", entry.Get("filed").String()); err == nil {
		if filed.After(record.Filed) {
			record.Filed = filed
		}
	}

	val := entry.Get("val").Float()
	setMetric(record, metric, val)
	return true
}

func setMetric(record *data.FundamentalRecord, metric string, val float64) {
	v := &val
	switch metric {
	case "Revenue":
		record.Revenue = v
	case "NetIncome":
		record.NetIncome = v
	case "SharesDiluted":
		record.SharesDiluted = v
	case "OperatingCF":
		record.OperatingCF = v
	case "CapitalExpenditures":
		record.CapitalExpenditures = v
	case "TotalAssets":
		record.TotalAssets = v
	case "TotalLiabilities":
		record.TotalLiabilities = v
	case "CashAndEquivalents":
		record.CashAndEquivalents = v
	case "Debt":
		record.Debt = v
	case "GrossProfit":
		record.GrossProfit = v
	case "CurrentAssets":
		record.CurrentAssets = v
	case "CurrentLiabilities":
		record.CurrentLiabilities = v
	case "EBITDA":
		record.EBITDA = v
	case "InterestExpense":
		record.InterestExpense = v
	}
}

// gjsonEscape protects GAAP tags containing gjson path syntax.
func gjsonEscape(tag string) string {
	tag = strings.ReplaceAll(tag, ".", `\.`)
	return strings.ReplaceAll(tag, "*", `\*`)
}
