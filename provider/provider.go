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

// Package provider fetches market data from external APIs: daily price
// bars from Tiingo and quarterly fundamentals from the SEC companyfacts
// endpoint. Providers stream records over channels; persistence belongs
// to the library package.
package provider

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const fetchRetries = 3

// Provider describes a data source for display purposes.
type Provider interface {
	Name() string
	Description() string
}

// getWithRetry performs a rate-limited GET, retrying transient
// failures and 5xx responses.
func getWithRetry(ctx context.Context, req *resty.Request, limiter *rate.Limiter, url string) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for attempt := 0; attempt < fetchRetries; attempt++ {
		if err = limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err = req.Get(url)
		if err == nil && resp.StatusCode() < 500 {
			return resp, nil
		}

		log.Warn().Err(err).Str("URL", url).Int("Attempt", attempt+1).Msg("request failed; retrying")
		time.Sleep(time.Duration(attempt+1) * time.Second)
	}

	return resp, err
}
