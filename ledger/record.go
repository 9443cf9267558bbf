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

import "time"

// Record is the state of the portfolio at the end of one calendar day
type Record struct {
	Date           time.Time          `json:"date"`
	Prices         map[string]float64 `json:"prices"`
	Shares         map[string]float64 `json:"shares"`
	AmountInvested float64            `json:"amountInvested"`
	PortfolioValue float64            `json:"portfolioValue"`
}

// IsContributionDay reports whether the monthly contribution is made on this record's date
func (rec *Record) IsContributionDay() bool {
	return isContributionDay(rec.Date)
}

func isContributionDay(dt time.Time) bool {
	return dt.Day() == 1
}

func snapshot(dt time.Time, tickers []string, prices, shares []float64, invested, value float64) *Record {
	rec := &Record{
		Date:           dt,
		Prices:         make(map[string]float64, len(tickers)),
		Shares:         make(map[string]float64, len(tickers)),
		AmountInvested: invested,
		PortfolioValue: value,
	}
	for idx, ticker := range tickers {
		rec.Prices[ticker] = prices[idx]
		rec.Shares[ticker] = shares[idx]
	}
	return rec
}
