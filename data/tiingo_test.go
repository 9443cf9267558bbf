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

package data_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/data"
)

const vtiPrices = `[
	{"date":"2020-01-02T00:00:00.000Z","close":165.0,"high":165.5,"low":163.1,"open":163.88,"volume":3811000,"adjClose":155.2,"adjOpen":154.1,"divCash":0.0,"splitFactor":1.0},
	{"date":"2020-01-03T00:00:00.000Z","close":163.9,"high":164.2,"low":162.8,"open":163.43,"volume":3215000,"adjClose":154.1,"adjOpen":153.7,"divCash":0.0,"splitFactor":1.0},
	{"date":"2020-01-06T00:00:00.000Z","close":164.4,"high":164.5,"low":162.4,"open":162.61,"volume":3040000,"adjClose":154.6,"adjOpen":152.9,"divCash":0.0,"splitFactor":1.0}
]`

var _ = Describe("Tiingo", func() {
	var (
		tiingo *data.Tiingo
		tz     *time.Location
		begin  time.Time
		end    time.Time
	)

	BeforeEach(func() {
		httpmock.Activate()
		tiingo = data.NewTiingo("TEST")
		tz = common.GetTimezone()
		begin = time.Date(2020, 1, 2, 0, 0, 0, 0, tz)
		end = time.Date(2020, 1, 6, 0, 0, 0, 0, tz)
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
		common.DisableCache()
	})

	Context("with a valid response", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/VTI/prices?startDate=2020-01-02&endDate=2020-01-06&token=TEST",
				httpmock.NewStringResponder(200, vtiPrices))
		})

		It("returns the opening price of each trading day", func() {
			quotes, err := tiingo.Fetch(context.Background(), "vti", begin, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(quotes).To(HaveLen(3))

			Expect(quotes[0].Date).To(Equal(time.Date(2020, 1, 2, 0, 0, 0, 0, tz)))
			Expect(quotes[0].Open).To(Equal(163.88))
			Expect(quotes[1].Date).To(Equal(time.Date(2020, 1, 3, 0, 0, 0, 0, tz)))
			Expect(quotes[1].Open).To(Equal(163.43))
			Expect(quotes[2].Date).To(Equal(time.Date(2020, 1, 6, 0, 0, 0, 0, tz)))
			Expect(quotes[2].Open).To(Equal(162.61))
		})

		It("does not cache when the cache is not set up", func() {
			_, err := tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(err).NotTo(HaveOccurred())
			_, err = tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(httpmock.GetTotalCallCount()).To(Equal(2))
		})

		It("serves repeated requests from the cache", func() {
			viper.Set("cache.local_size", 16)
			Expect(common.SetupCache()).To(Succeed())

			first, err := tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(err).NotTo(HaveOccurred())
			second, err := tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(err).NotTo(HaveOccurred())

			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
			Expect(second).To(Equal(first))
		})
	})

	Context("with a custom base url", func() {
		It("sends requests to the configured host", func() {
			tiingo.BaseURL = "http://localhost:9000"
			httpmock.RegisterResponder("GET", `=~^http://localhost:9000/tiingo/daily/BND/prices`,
				httpmock.NewStringResponder(200, `[{"date":"2020-01-02T00:00:00.000Z","open":84.5}]`))

			quotes, err := tiingo.Fetch(context.Background(), "BND", begin, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(quotes).To(HaveLen(1))
			Expect(quotes[0].Open).To(Equal(84.5))
		})
	})

	Context("with an unknown ticker", func() {
		It("returns ErrNotFound", func() {
			httpmock.RegisterResponder("GET", `=~^https://api.tiingo.com/tiingo/daily/NOPE/prices`,
				httpmock.NewStringResponder(http.StatusNotFound, `{"detail":"Error: Ticker 'NOPE' not found"}`))

			_, err := tiingo.Fetch(context.Background(), "NOPE", begin, end)
			Expect(errors.Is(err, data.ErrNotFound)).To(BeTrue())
		})
	})

	Context("with a server error", func() {
		It("returns an error", func() {
			httpmock.RegisterResponder("GET", `=~^https://api.tiingo.com/tiingo/daily/VTI/prices`,
				httpmock.NewStringResponder(http.StatusInternalServerError, "oops"))

			_, err := tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, data.ErrNotFound)).To(BeFalse())
		})
	})

	Context("with a malformed response", func() {
		It("returns an error for invalid JSON", func() {
			httpmock.RegisterResponder("GET", `=~^https://api.tiingo.com/tiingo/daily/VTI/prices`,
				httpmock.NewStringResponder(200, `[{"date":`))

			_, err := tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(err).To(HaveOccurred())
		})

		It("rejects non-positive prices", func() {
			httpmock.RegisterResponder("GET", `=~^https://api.tiingo.com/tiingo/daily/VTI/prices`,
				httpmock.NewStringResponder(200, `[{"date":"2020-01-02T00:00:00.000Z","open":0}]`))

			_, err := tiingo.Fetch(context.Background(), "VTI", begin, end)
			Expect(errors.Is(err, data.ErrInvalidPrice)).To(BeTrue())
		})
	})
})
