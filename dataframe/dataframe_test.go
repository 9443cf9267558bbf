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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-dca/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var (
			df *dataframe.DataFrame
		)

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("has zero start and end", func() {
			Expect(df.Start().IsZero()).To(BeTrue())
			Expect(df.End().IsZero()).To(BeTrue())
		})

		It("does not error on breakout", func() {
			dfMap := df.Breakout()
			Expect(len(dfMap)).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})

		It("renders a placeholder table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})
	})

	Context("with 2 years of values and a single column", func() {
		var (
			df *dataframe.DataFrame
		)

		BeforeEach(func() {
			dates := make([]time.Time, 730)
			vals := make([]float64, 730)
			dt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			for idx := range dates {
				dates[idx] = dt
				dt = dt.AddDate(0, 0, 1)
				vals[idx] = float64(idx)
			}
			df = &dataframe.DataFrame{
				ColNames: []string{"Col1"},
				Dates:    dates,
				Vals:     [][]float64{vals},
			}
		})

		It("has length", func() {
			Expect(df.Len()).To(Equal(730))
		})

		It("has 1 column", func() {
			Expect(df.ColCount()).To(Equal(1))
			Expect(df.ColIndex("Col1")).To(Equal(0))
			Expect(df.ColIndex("Missing")).To(Equal(-1))
		})

		It("is contiguous", func() {
			Expect(df.IsContiguous()).To(BeTrue())
		})

		It("does not error on breakout", func() {
			dfMap := df.Breakout()
			_, ok := dfMap["Col1"]
			Expect(ok).To(BeTrue())
		})

		It("copies without sharing values", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 100
			Expect(df.Vals[0][0]).To(Equal(0.0))
		})

		It("returns the last row", func() {
			last := df.Last()
			Expect(last.Len()).To(Equal(1))
			Expect(last.Vals[0][0]).To(Equal(729.0))
			Expect(last.Start()).To(Equal(time.Date(2021, 12, 30, 0, 0, 0, 0, time.UTC)))
		})

		DescribeTable("trims values by date range", func(a, b time.Time, expectedLen int, expectedA, expectedB time.Time) {
			df = df.Trim(a, b)
			Expect(df.Len()).To(Equal(expectedLen))
			if expectedLen > 1 {
				Expect(df.Dates[0]).To(Equal(expectedA), "expected begin date")
				Expect(df.Dates[len(df.Dates)-1]).To(Equal(expectedB), "expected end date")
			}
		},
			Entry("whole range", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 12, 30, 0, 0, 0, 0, time.UTC), 730, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 12, 30, 0, 0, 0, 0, time.UTC)),
			Entry("range that does not exist in dataframe (left)", time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2019, 12, 30, 0, 0, 0, 0, time.UTC), 0, time.Time{}, time.Time{}),
			Entry("range that does not exist in dataframe (right)", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC), 0, time.Time{}, time.Time{}),
			Entry("range that touches start but not end", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), 5, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)),
			Entry("range that starts before begin", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), 5, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)),
			Entry("range that extends beyond the end", time.Date(2021, 12, 27, 0, 0, 0, 0, time.UTC), time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), 4, time.Date(2021, 12, 27, 0, 0, 0, 0, time.UTC), time.Date(2021, 12, 30, 0, 0, 0, 0, time.UTC)),
			Entry("single date", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 1, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
			Entry("inverted range", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 0, time.Time{}, time.Time{}),
		)
	})

	Context("with rows inserted one at a time", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = dataframe.New("A", "B")
			Expect(df.InsertRow(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), 1.005, 4.0)).To(Succeed())
			Expect(df.InsertRow(time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), 2.499, math.NaN())).To(Succeed())
			Expect(df.InsertRow(time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC), -3.555, 6.0)).To(Succeed())
		})

		It("refuses rows that are not after the last date", func() {
			err := df.InsertRow(time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC), 1, 2)
			Expect(err).To(MatchError(dataframe.ErrDatesOutOfOrder))
		})

		It("refuses rows with the wrong number of values", func() {
			err := df.InsertRow(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), 1)
			Expect(err).To(MatchError(dataframe.ErrColumnCount))
		})

		It("rounds half away from zero and keeps NaN", func() {
			rounded := df.Round(2)
			Expect(rounded.Vals[0]).To(Equal([]float64{1.01, 2.5, -3.56}))
			Expect(math.IsNaN(rounded.Vals[1][1])).To(BeTrue())
			// the source is not modified
			Expect(df.Vals[0][0]).To(Equal(1.005))
		})

		It("returns rows keyed by column", func() {
			row := df.Row(2)
			Expect(row).To(HaveKeyWithValue("A", -3.555))
			Expect(row).To(HaveKeyWithValue("B", 6.0))
		})

		It("computes row max and min", func() {
			Expect(df.Max().Vals[0][0]).To(Equal(4.0))
			Expect(df.Min().Vals[0][2]).To(Equal(-3.555))
		})

		It("renders a table with every date", func() {
			table := df.Table()
			Expect(table).To(ContainSubstring("2021-03-01"))
			Expect(table).To(ContainSubstring("2021-03-03"))
		})
	})
})
