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
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/ledger"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

var (
	ErrNoRecords = errors.New("no ledger records")
)

// Summary holds the headline numbers of a simulation
type Summary struct {
	Start         time.Time
	End           time.Time
	Days          int
	TotalInvested float64
	FinalValue    float64
	Gain          float64
	Return        float64
	High          float64
	HighDate      time.Time
	Low           float64
	LowDate       time.Time
	TWRR          float64
	MaxDrawDown   *DrawDown
	StdDev        float64
	UlcerIndex    float64
	Currency      string
}

// NewSummary computes the totals of a ledger. Totals come from the last record; Return
// is Gain/TotalInvested and 0 when nothing was invested.
func NewSummary(records []*ledger.Record) (*Summary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	first := records[0]
	last := records[len(records)-1]
	summary := &Summary{
		Start:         first.Date,
		End:           last.Date,
		Days:          len(records),
		TotalInvested: last.AmountInvested,
		FinalValue:    last.PortfolioValue,
		Gain:          last.PortfolioValue - last.AmountInvested,
		High:          first.PortfolioValue,
		HighDate:      first.Date,
		Low:           first.PortfolioValue,
		LowDate:       first.Date,
		Currency:      DefaultCurrency,
	}

	if summary.TotalInvested != 0 {
		summary.Return = summary.Gain / summary.TotalInvested
	}

	summary.TWRR = TWRR(records)
	summary.MaxDrawDown = MaxDrawDown(records)
	summary.StdDev = StdDev(records)
	summary.UlcerIndex = UlcerIndex(records)

	for _, rec := range records[1:] {
		if rec.PortfolioValue > summary.High {
			summary.High = rec.PortfolioValue
			summary.HighDate = rec.Date
		}
		if rec.PortfolioValue < summary.Low {
			summary.Low = rec.PortfolioValue
			summary.LowDate = rec.Date
		}
	}

	return summary, nil
}

// FormatCurrency renders amount in the given ISO 4217 currency, e.g. $1,400.00. Unknown
// currencies fall back to USD.
func FormatCurrency(amount float64, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func (summary *Summary) String() string {
	currency := summary.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Period:          %s to %s (%d days)\n", summary.Start.Format(common.DateFormat),
		summary.End.Format(common.DateFormat), summary.Days)
	fmt.Fprintf(sb, "Amount invested: %s\n", FormatCurrency(summary.TotalInvested, currency))
	fmt.Fprintf(sb, "Final value:     %s\n", FormatCurrency(summary.FinalValue, currency))
	fmt.Fprintf(sb, "Gain:            %s (%.2f%%)\n", FormatCurrency(summary.Gain, currency), summary.Return*100)
	fmt.Fprintf(sb, "High:            %s on %s\n", FormatCurrency(summary.High, currency), summary.HighDate.Format(common.DateFormat))
	fmt.Fprintf(sb, "Low:             %s on %s\n", FormatCurrency(summary.Low, currency), summary.LowDate.Format(common.DateFormat))
	if !math.IsNaN(summary.TWRR) {
		fmt.Fprintf(sb, "TWRR:            %.2f%%\n", summary.TWRR*100)
	}
	if summary.MaxDrawDown != nil {
		fmt.Fprintf(sb, "Max draw down:   %.2f%% from %s to %s\n", summary.MaxDrawDown.LossPercent*100,
			summary.MaxDrawDown.Begin.Format(common.DateFormat), summary.MaxDrawDown.End.Format(common.DateFormat))
	}
	if !math.IsNaN(summary.StdDev) {
		fmt.Fprintf(sb, "Std. deviation:  %.2f%%\n", summary.StdDev*100)
	}
	return sb.String()
}
