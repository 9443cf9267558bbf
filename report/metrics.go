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

package report

import (
	"math"
	"sort"
	"time"

	"github.com/penny-vault/pv-dca/ledger"
	"gonum.org/v1/gonum/stat"
)

const ulcerIndexPeriod = 14

// DrawDown is a period in which the portfolio's growth index fell from its previous
// peak. Recovery is the zero time when the portfolio has not yet recovered.
type DrawDown struct {
	Begin       time.Time
	End         time.Time
	Recovery    time.Time
	LossPercent float64
}

// GrowthIndex removes contributions from the ledger's value series: each day's value
// minus that day's contribution is compared against the previous day's value and the
// ratios are chained starting at 1.0
func GrowthIndex(records []*ledger.Record) []float64 {
	if len(records) == 0 {
		return []float64{}
	}

	growth := make([]float64, len(records))
	growth[0] = 1.0
	for idx := 1; idx < len(records); idx++ {
		growth[idx] = growth[idx-1] * periodReturn(records[idx-1], records[idx])
	}
	return growth
}

func periodReturn(s, e *ledger.Record) float64 {
	if s.PortfolioValue == 0 {
		return 1.0
	}
	deposit := e.AmountInvested - s.AmountInvested
	return (e.PortfolioValue - deposit) / s.PortfolioValue
}

// TWRR computes the time-weighted rate of return over the ledger. Periods longer than
// a year are annualized.
func TWRR(records []*ledger.Record) float64 {
	if len(records) < 2 {
		return math.NaN()
	}

	growth := GrowthIndex(records)
	rate := growth[len(growth)-1]

	years := toYears(records[len(records)-1].Date.Sub(records[0].Date))
	if years > 1 {
		return math.Pow(rate, 1.0/years) - 1
	}

	return rate - 1
}

// AllDrawDowns computes every draw down of the growth index, including one still in
// progress on the last day
func AllDrawDowns(records []*ledger.Record) []*DrawDown {
	allDrawDowns := []*DrawDown{}
	if len(records) < 2 {
		return allDrawDowns
	}

	growth := GrowthIndex(records)
	peak := growth[0]

	var drawDown *DrawDown
	var prev time.Time
	for idx, value := range growth {
		dt := records[idx].Date
		peak = math.Max(peak, value)
		if value < peak {
			loss := value/peak - 1.0
			if drawDown == nil {
				drawDown = &DrawDown{
					Begin:       prev,
					End:         dt,
					LossPercent: loss,
				}
			}

			if loss < drawDown.LossPercent {
				drawDown.End = dt
				drawDown.LossPercent = loss
			}
		} else if drawDown != nil {
			drawDown.Recovery = dt
			allDrawDowns = append(allDrawDowns, drawDown)
			drawDown = nil
		}
		prev = dt
	}

	if drawDown != nil {
		allDrawDowns = append(allDrawDowns, drawDown)
	}

	return allDrawDowns
}

// MaxDrawDown returns the deepest draw down or nil if the portfolio never fell
func MaxDrawDown(records []*ledger.Record) *DrawDown {
	allDrawDowns := AllDrawDowns(records)
	if len(allDrawDowns) == 0 {
		return nil
	}

	sort.SliceStable(allDrawDowns, func(i, j int) bool {
		return allDrawDowns[i].LossPercent < allDrawDowns[j].LossPercent
	})
	return allDrawDowns[0]
}

// StdDev is the annualized standard deviation of month-over-month growth
func StdDev(records []*ledger.Record) float64 {
	rets := monthlyReturns(records)
	if len(rets) < 2 {
		return math.NaN()
	}
	return stat.StdDev(rets, nil) * math.Sqrt(12.0)
}

// UlcerIndex measures the depth and duration of declines from the 14 day high of the
// growth index, ending on the last record
func UlcerIndex(records []*ledger.Record) float64 {
	if len(records) < ulcerIndexPeriod {
		return math.NaN()
	}

	growth := GrowthIndex(records)
	lookback := growth[len(growth)-ulcerIndexPeriod:]

	maxClose := lookback[0]
	var sqSum float64
	for _, yy := range lookback {
		if yy > maxClose {
			maxClose = yy
		}
		percentDrawDown := ((yy - maxClose) / maxClose) * 100
		sqSum += percentDrawDown * percentDrawDown
	}
	return math.Sqrt(sqSum / ulcerIndexPeriod)
}

// monthlyReturns samples the growth index on the first record and on every record that
// falls on the last calendar day of its month
func monthlyReturns(records []*ledger.Record) []float64 {
	growth := GrowthIndex(records)
	samples := make([]float64, 0, len(records)/28+2)
	for idx, rec := range records {
		if idx == 0 || isMonthEnd(rec.Date) {
			samples = append(samples, growth[idx])
		}
	}

	rets := make([]float64, 0, len(samples))
	for idx := 1; idx < len(samples); idx++ {
		rets = append(rets, samples[idx]/samples[idx-1]-1)
	}
	return rets
}

func isMonthEnd(dt time.Time) bool {
	return dt.AddDate(0, 0, 1).Month() != dt.Month()
}

func toYears(d time.Duration) float64 {
	return d.Hours() / (24 * 365.25)
}
