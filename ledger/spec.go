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
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// WeightTolerance is the maximum distance from 1.0 the weight sum may have
const WeightTolerance = 1e-6

// PortfolioSpec maps a ticker to the fraction of every purchase allocated to it
type PortfolioSpec map[string]float64

type specFile struct {
	Weights map[string]float64 `toml:"weights"`
}

// ParseSpec builds a spec from TICKER=weight pairs as given on the command line
func ParseSpec(pairs map[string]string) (PortfolioSpec, error) {
	spec := make(PortfolioSpec, len(pairs))
	for ticker, weightStr := range pairs {
		weight, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Str("Weight", weightStr).Msg("could not parse weight")
			return nil, fmt.Errorf("%w: %s=%s", ErrInvalidWeight, ticker, weightStr)
		}
		spec[strings.ToUpper(strings.TrimSpace(ticker))] = weight
	}
	return spec, nil
}

// LoadSpecFile reads a TOML file with a [weights] table, e.g.
//
//	[weights]
//	VTI = 0.6
//	BND = 0.4
func LoadSpecFile(fn string) (PortfolioSpec, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not read portfolio file")
		return nil, err
	}

	var sf specFile
	if err := toml.Unmarshal(raw, &sf); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not parse portfolio file")
		return nil, err
	}

	return PortfolioSpec(sf.Weights).Normalize(), nil
}

// Normalize returns a copy with upper-cased tickers; weights of tickers that differ only by case are added
func (spec PortfolioSpec) Normalize() PortfolioSpec {
	res := make(PortfolioSpec, len(spec))
	for ticker, weight := range spec {
		res[strings.ToUpper(ticker)] += weight
	}
	return res
}

// Tickers returns the upper-cased tickers in sorted order
func (spec PortfolioSpec) Tickers() []string {
	normalized := spec.Normalize()
	tickers := make([]string, 0, len(normalized))
	for ticker := range normalized {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// weights returns the weights ordered the same as Tickers
func (spec PortfolioSpec) weights() []float64 {
	normalized := spec.Normalize()
	tickers := normalized.Tickers()
	weights := make([]float64, len(tickers))
	for idx, ticker := range tickers {
		weights[idx] = normalized[ticker]
	}
	return weights
}

// Sum returns the total of all weights
func (spec PortfolioSpec) Sum() float64 {
	return floats.Sum(spec.weights())
}

// Validate checks that the portfolio allocates exactly 100% across at least one ticker
func (spec PortfolioSpec) Validate() error {
	sum := spec.Sum()

	if len(spec) == 0 {
		return &InvalidWeightsError{Sum: sum, Reason: "no tickers"}
	}

	for ticker, weight := range spec {
		if math.IsNaN(weight) || weight < 0 || weight > 1 {
			return &InvalidWeightsError{Sum: sum, Reason: fmt.Sprintf("%s weight %g is outside [0,1]", ticker, weight)}
		}
	}

	if math.IsNaN(sum) || math.Abs(sum-1.0) > WeightTolerance {
		return &InvalidWeightsError{Sum: sum}
	}

	return nil
}

// MarshalZerologObject implement the log marshaller interface for zerolog
func (spec PortfolioSpec) MarshalZerologObject(e *zerolog.Event) {
	normalized := spec.Normalize()
	for _, ticker := range normalized.Tickers() {
		e.Float64(ticker, normalized[ticker])
	}
}
