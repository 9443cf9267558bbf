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

package ledger

import (
	"fmt"
	"math"

	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/dataframe"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

func validAmount(amount float64) bool {
	return amount >= 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}

// Simulate runs the dollar-cost averaging fold over a contiguous daily price series.
//
// On the first day `initial` is split across the tickers by weight and converted to
// shares at that day's price. On every day whose day-of-month is 1, including the
// first day, `monthly` is split and bought the same way. Shares are never sold. The
// portfolio is revalued every day and one Record is emitted per row of prices.
func Simulate(spec PortfolioSpec, prices *dataframe.DataFrame, initial, monthly float64) ([]*Record, error) {
	if err := spec.Validate(); err != nil {
		log.Error().Err(err).Object("Spec", spec).Msg("invalid portfolio spec")
		return nil, err
	}

	if !validAmount(initial) || !validAmount(monthly) {
		log.Error().Float64("Initial", initial).Float64("Monthly", monthly).Msg("invalid investment amount")
		return nil, fmt.Errorf("%w: initial=%g monthly=%g", ErrNegativeAmount, initial, monthly)
	}

	if prices == nil || prices.Len() == 0 {
		log.Error().Msg("cannot simulate over an empty price series")
		return nil, ErrEmptySeries
	}

	if !prices.IsContiguous() {
		log.Error().Time("Start", prices.Start()).Time("End", prices.End()).Msg("price series has gaps; resample it to daily first")
		return nil, ErrNotContiguous
	}

	tickers := spec.Tickers()
	weights := spec.weights()
	cols := make([][]float64, len(tickers))
	for idx, ticker := range tickers {
		colIdx := prices.ColIndex(ticker)
		if colIdx < 0 {
			log.Error().Str("Ticker", ticker).Strs("Columns", prices.ColNames).Msg("no prices for ticker")
			return nil, fmt.Errorf("%w: %s", ErrMissingTicker, ticker)
		}

		col := prices.Vals[colIdx]
		for rowIdx, price := range col {
			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
				dt := prices.Dates[rowIdx].Format(common.DateFormat)
				log.Error().Str("Ticker", ticker).Str("Date", dt).Float64("Price", price).Msg("invalid price")
				return nil, fmt.Errorf("%w: %s on %s is %g", ErrInvalidPrice, ticker, dt, price)
			}
		}
		cols[idx] = col
	}

	shares := make([]float64, len(tickers))
	today := make([]float64, len(tickers))
	invested := 0.0

	buy := func(amount float64) {
		for idx := range shares {
			shares[idx] += amount * weights[idx] / today[idx]
		}
	}

	records := make([]*Record, 0, prices.Len())
	for rowIdx, dt := range prices.Dates {
		for idx := range cols {
			today[idx] = cols[idx][rowIdx]
		}

		if rowIdx == 0 {
			buy(initial)
			invested = initial
		}

		if isContributionDay(dt) {
			buy(monthly)
			invested += monthly
		}

		value := floats.Dot(shares, today)
		records = append(records, snapshot(dt, tickers, today, shares, invested, value))
	}

	return records, nil
}
