// Copyright 2021-2023
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
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tiingoAPI = "https://api.tiingo.com"

// Tiingo fetches end-of-day prices from the tiingo.com REST API
type Tiingo struct {
	BaseURL string
	apikey  string
	client  *http.Client
}

type tiingoJSONResponse struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	Volume      int64   `json:"volume"`
	AdjClose    float64 `json:"adjClose"`
	AdjOpen     float64 `json:"adjOpen"`
	DivCash     float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

// NewTiingo Create a new Tiingo data provider
func NewTiingo(key string) *Tiingo {
	return &Tiingo{
		BaseURL: tiingoAPI,
		apikey:  key,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *Tiingo) Name() string {
	return ProviderTiingo
}

// Fetch downloads the daily opening prices of ticker between begin and end (inclusive)
func (t *Tiingo) Fetch(ctx context.Context, ticker string, begin, end time.Time) ([]*Quote, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.Fetch")
	defer span.End()

	ticker = strings.ToUpper(ticker)
	subLog := log.With().Str("Ticker", ticker).Time("Begin", begin).Time("End", end).Logger()

	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s", t.BaseURL, url.PathEscape(ticker),
		begin.Format(common.DateFormat), end.Format(common.DateFormat))

	span.SetAttributes(
		attribute.String("Url", endpoint),
		attribute.String("Ticker", ticker),
	)

	cacheKey := common.CacheKey(ProviderTiingo, endpoint)
	body, cached := common.CacheGet(ctx, cacheKey)
	subLog.Debug().Bool("Cached", cached).Msg("load prices from tiingo")

	if !cached {
		var err error
		body, err = t.get(ctx, endpoint+"&token="+url.QueryEscape(t.apikey))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "tiingo request failed")
			subLog.Error().Err(err).Str("Url", endpoint).Msg("tiingo request failed")
			return nil, err
		}

		if err := common.CacheSet(ctx, cacheKey, body); err != nil {
			subLog.Warn().Err(err).Msg("could not cache tiingo response")
		}
	}

	quotes, err := parseTiingo(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not parse tiingo response")
		subLog.Error().Err(err).Bytes("Body", body).Msg("could not parse tiingo response")
		return nil, err
	}

	span.SetAttributes(attribute.Int("NumQuotes", len(quotes)))
	subLog.Debug().Int("NumQuotes", len(quotes)).Msg("tiingo prices loaded")
	return quotes, nil
}

func (t *Tiingo) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP request returned invalid status code: %d", resp.StatusCode)
	}

	return body, nil
}

func parseTiingo(body []byte) ([]*Quote, error) {
	jsonResp := []tiingoJSONResponse{}
	if err := json.Unmarshal(body, &jsonResp); err != nil {
		return nil, err
	}

	tz := common.GetTimezone()
	quotes := make([]*Quote, 0, len(jsonResp))
	for _, row := range jsonResp {
		dtParts := strings.Split(row.Date, "T")
		dt, err := time.ParseInLocation(common.DateFormat, dtParts[0], tz)
		if err != nil {
			return nil, err
		}

		if row.Open <= 0 || math.IsNaN(row.Open) {
			return nil, fmt.Errorf("%w: open %f on %s", ErrInvalidPrice, row.Open, dtParts[0])
		}

		if len(quotes) > 0 && !quotes[len(quotes)-1].Date.Before(dt) {
			return nil, errors.New("tiingo returned prices out of order")
		}

		quotes = append(quotes, &Quote{
			Date: dt,
			Open: row.Open,
		})
	}

	return quotes, nil
}
