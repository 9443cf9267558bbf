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
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/dataframe"
	"github.com/penny-vault/pv-dca/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PricePrecision is the number of decimal places prices are rounded to after retrieval
const PricePrecision = 2

// Loader fetches the price history of a set of tickers and aligns it into one table
type Loader struct {
	provider Provider
}

// NewLoader creates a loader backed by provider
func NewLoader(provider Provider) *Loader {
	return &Loader{
		provider: provider,
	}
}

// LoadPrices returns one column of opening prices per ticker indexed by trading date. The
// per-ticker series are outer joined (dates missing for a ticker are NaN) and rounded to
// PricePrecision decimal places. Tickers are fetched one at a time and the first failure
// aborts the load: provider failures are returned as *ProviderError and a ticker whose
// history starts after begin is returned as *DataAvailabilityError. begin and end are
// compared as calendar dates regardless of their location.
func (loader *Loader) LoadPrices(ctx context.Context, tickers []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Loader.LoadPrices")
	defer span.End()

	begin = common.CalendarDay(begin)
	end = common.CalendarDay(end)
	interval := &Interval{Begin: begin, End: end}
	subLog := log.With().Strs("Tickers", tickers).Object("Interval", interval).Str("Provider", loader.provider.Name()).Logger()

	if err := interval.Valid(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		subLog.Error().Err(err).Msg("invalid price interval")
		return nil, err
	}

	if len(tickers) == 0 {
		span.SetStatus(codes.Error, ErrNoTickers.Error())
		subLog.Error().Msg("no tickers requested")
		return nil, ErrNoTickers
	}

	dfMap := make(dataframe.Map, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(ticker)
		if _, ok := dfMap[ticker]; ok {
			continue
		}

		quotes, err := loader.provider.Fetch(ctx, ticker, begin, end)
		if err != nil {
			err = &ProviderError{Ticker: ticker, Provider: loader.provider.Name(), Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, "provider failed")
			subLog.Error().Err(err).Str("Ticker", ticker).Msg("could not fetch prices")
			return nil, err
		}

		if len(quotes) == 0 {
			err = &ProviderError{Ticker: ticker, Provider: loader.provider.Name(), Err: ErrNoData}
			span.SetStatus(codes.Error, "provider returned no data")
			subLog.Error().Str("Ticker", ticker).Msg("provider returned no prices")
			return nil, err
		}

		if earliest := quotes[0].Date; earliest.After(begin) {
			err = &DataAvailabilityError{Ticker: ticker, Earliest: earliest, Requested: begin}
			span.SetStatus(codes.Error, "data not available")
			subLog.Error().Str("Ticker", ticker).Time("Earliest", earliest).Msg("price history does not cover start date")
			return nil, err
		}

		df, err := quotesToDataFrame(ticker, quotes)
		if err != nil {
			err = &ProviderError{Ticker: ticker, Provider: loader.provider.Name(), Err: err}
			span.RecordError(err)
			subLog.Error().Err(err).Str("Ticker", ticker).Msg("provider quotes are not in date order")
			return nil, err
		}

		dfMap[ticker] = df
	}

	prices := dfMap.Trim(begin, end).Merge().Round(PricePrecision)

	span.SetAttributes(attribute.Int("NumRows", prices.Len()))
	subLog.Info().Int("NumRows", prices.Len()).Str("Start", prices.Start().Format(common.DateFormat)).
		Str("End", prices.End().Format(common.DateFormat)).Msg("prices loaded")

	return prices, nil
}

func quotesToDataFrame(ticker string, quotes []*Quote) (*dataframe.DataFrame, error) {
	df := dataframe.New(ticker)
	for _, quote := range quotes {
		if err := df.InsertRow(quote.Date, quote.Open); err != nil {
			return nil, fmt.Errorf("%s: %w", ticker, err)
		}
	}
	return df, nil
}
