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

package ledger_test

import (
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/dataframe"
	"github.com/penny-vault/pv-dca/ledger"
)

// dailyPrices builds a contiguous daily frame starting at start where price(col, day) gives each value
func dailyPrices(start time.Time, days int, cols []string, price func(col, day int) float64) *dataframe.DataFrame {
	df := dataframe.New(cols...)
	for day := 0; day < days; day++ {
		vals := make([]float64, len(cols))
		for col := range cols {
			vals[col] = price(col, day)
		}
		Expect(df.InsertRow(start.AddDate(0, 0, day), vals...)).To(Succeed())
	}
	return df
}

func flat(val float64) func(int, int) float64 {
	return func(int, int) float64 { return val }
}

var _ = Describe("Simulate", func() {
	var tz *time.Location

	BeforeEach(func() {
		tz = common.GetTimezone()
	})

	Context("with a single flat-priced ticker", func() {
		var records []*ledger.Record

		BeforeEach(func() {
			// day 0 is the last day of December so the contributions land on Jan 1 and Feb 1
			prices := dailyPrices(time.Date(2020, 12, 31, 0, 0, 0, 0, tz), 60, []string{"X"}, flat(10))
			var err error
			records, err = ledger.Simulate(ledger.PortfolioSpec{"X": 1.0}, prices, 1000, 200)
			Expect(err).NotTo(HaveOccurred())
		})

		It("emits one record per day", func() {
			Expect(records).To(HaveLen(60))
			Expect(records[0].Date).To(Equal(time.Date(2020, 12, 31, 0, 0, 0, 0, tz)))
			Expect(records[59].Date).To(Equal(time.Date(2021, 2, 28, 0, 0, 0, 0, tz)))
		})

		It("buys the initial amount on day 0", func() {
			Expect(records[0].Shares["X"]).To(Equal(100.0))
			Expect(records[0].AmountInvested).To(Equal(1000.0))
			Expect(records[0].PortfolioValue).To(Equal(1000.0))
		})

		It("buys the monthly amount on the first of each month", func() {
			Expect(records[1].Date.Day()).To(Equal(1))
			Expect(records[1].Shares["X"]).To(Equal(120.0))
			Expect(records[32].Date.Day()).To(Equal(1))
			Expect(records[32].Shares["X"]).To(Equal(140.0))
		})

		It("ends with every contribution invested", func() {
			last := records[len(records)-1]
			Expect(last.Shares["X"]).To(Equal(140.0))
			Expect(last.PortfolioValue).To(Equal(1400.0))
			Expect(last.AmountInvested).To(Equal(1400.0))
		})

		It("only changes the invested amount on contribution days", func() {
			for idx := 1; idx < len(records); idx++ {
				delta := records[idx].AmountInvested - records[idx-1].AmountInvested
				if records[idx].Date.Day() == 1 {
					Expect(delta).To(Equal(200.0))
					Expect(records[idx].IsContributionDay()).To(BeTrue())
				} else {
					Expect(delta).To(Equal(0.0))
					Expect(records[idx].IsContributionDay()).To(BeFalse())
				}
			}
		})
	})

	It("splits purchases by weight", func() {
		prices := dailyPrices(time.Date(2021, 6, 10, 0, 0, 0, 0, tz), 5, []string{"A", "B"}, flat(1))
		records, err := ledger.Simulate(ledger.PortfolioSpec{"A": 0.8, "B": 0.2}, prices, 100, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(records[0].Shares).To(Equal(map[string]float64{"A": 80, "B": 20}))
		Expect(records[0].Prices).To(Equal(map[string]float64{"A": 1, "B": 1}))
		Expect(records[0].PortfolioValue).To(Equal(100.0))
	})

	It("funds day 0 twice when it falls on the first of the month", func() {
		prices := dailyPrices(time.Date(2021, 1, 1, 0, 0, 0, 0, tz), 10, []string{"X"}, flat(10))
		records, err := ledger.Simulate(ledger.PortfolioSpec{"X": 1.0}, prices, 1000, 200)
		Expect(err).NotTo(HaveOccurred())

		Expect(records[0].Shares["X"]).To(Equal(120.0))
		Expect(records[0].AmountInvested).To(Equal(1200.0))
		Expect(records[0].PortfolioValue).To(Equal(1200.0))
		Expect(records[9].AmountInvested).To(Equal(1200.0))
	})

	Context("with moving prices", func() {
		var (
			records []*ledger.Record
			prices  *dataframe.DataFrame
		)

		BeforeEach(func() {
			prices = dailyPrices(time.Date(2021, 1, 15, 0, 0, 0, 0, tz), 120, []string{"A", "B"}, func(col, day int) float64 {
				if col == 0 {
					return 50 + 10*math.Sin(float64(day)/7)
				}
				return 20 + float64(day)*0.25
			})
			var err error
			records, err = ledger.Simulate(ledger.PortfolioSpec{"A": 0.7, "B": 0.3}, prices, 5000, 250)
			Expect(err).NotTo(HaveOccurred())
		})

		It("values day 0 at the initial amount", func() {
			Expect(records[0].PortfolioValue).To(BeNumerically("~", 5000, 1e-9))
		})

		It("never decreases share counts", func() {
			for idx := 1; idx < len(records); idx++ {
				for _, ticker := range []string{"A", "B"} {
					Expect(records[idx].Shares[ticker]).To(BeNumerically(">=", records[idx-1].Shares[ticker]))
				}
			}
		})

		It("revalues the portfolio every day at that day's prices", func() {
			for idx, rec := range records {
				expected := rec.Shares["A"]*prices.Vals[0][idx] + rec.Shares["B"]*prices.Vals[1][idx]
				Expect(rec.PortfolioValue).To(BeNumerically("~", expected, 1e-9))
			}
		})

		It("emits independent snapshots", func() {
			records[0].Shares["A"] = -1
			records[0].Prices["A"] = -1
			Expect(records[1].Shares["A"]).To(BeNumerically(">", 0))
			Expect(records[1].Prices["A"]).To(BeNumerically(">", 0))
		})
	})

	Context("with invalid input", func() {
		var prices *dataframe.DataFrame

		BeforeEach(func() {
			prices = dailyPrices(time.Date(2021, 1, 15, 0, 0, 0, 0, tz), 5, []string{"A"}, flat(10))
		})

		It("rejects weights that do not sum to one", func() {
			_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 0.95}, prices, 100, 10)
			var weightErr *ledger.InvalidWeightsError
			Expect(errors.As(err, &weightErr)).To(BeTrue())
		})

		It("rejects negative amounts", func() {
			_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 1}, prices, -1, 10)
			Expect(errors.Is(err, ledger.ErrNegativeAmount)).To(BeTrue())
			_, err = ledger.Simulate(ledger.PortfolioSpec{"A": 1}, prices, 1, -10)
			Expect(errors.Is(err, ledger.ErrNegativeAmount)).To(BeTrue())
		})

		DescribeTable("rejects amounts that are not finite",
			func(initial, monthly float64) {
				_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 1}, prices, initial, monthly)
				Expect(errors.Is(err, ledger.ErrNegativeAmount)).To(BeTrue())
			},
			Entry("infinite initial", math.Inf(1), 10.0),
			Entry("infinite monthly", 100.0, math.Inf(1)),
			Entry("negative infinite monthly", 100.0, math.Inf(-1)),
			Entry("NaN initial", math.NaN(), 10.0),
		)

		It("rejects an empty series", func() {
			_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 1}, dataframe.New("A"), 100, 10)
			Expect(errors.Is(err, ledger.ErrEmptySeries)).To(BeTrue())
		})

		It("rejects a series with gaps", func() {
			gappy := dataframe.New("A")
			Expect(gappy.InsertRow(time.Date(2021, 1, 15, 0, 0, 0, 0, tz), 10)).To(Succeed())
			Expect(gappy.InsertRow(time.Date(2021, 1, 18, 0, 0, 0, 0, tz), 10)).To(Succeed())
			_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 1}, gappy, 100, 10)
			Expect(errors.Is(err, ledger.ErrNotContiguous)).To(BeTrue())
		})

		It("rejects tickers without prices", func() {
			_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 0.5, "B": 0.5}, prices, 100, 10)
			Expect(errors.Is(err, ledger.ErrMissingTicker)).To(BeTrue())
		})

		It("rejects missing and non-positive prices", func() {
			prices.Vals[0][2] = math.NaN()
			_, err := ledger.Simulate(ledger.PortfolioSpec{"A": 1}, prices, 100, 10)
			Expect(errors.Is(err, ledger.ErrInvalidPrice)).To(BeTrue())

			prices.Vals[0][2] = 0
			_, err = ledger.Simulate(ledger.PortfolioSpec{"A": 1}, prices, 100, 10)
			Expect(errors.Is(err, ledger.ErrInvalidPrice)).To(BeTrue())
		})
	})
})
