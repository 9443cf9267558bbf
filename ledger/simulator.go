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
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pv-dca/dataframe"
	"github.com/penny-vault/pv-dca/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PriceLoader returns opening prices for tickers over [begin, end], one column per ticker
type PriceLoader interface {
	LoadPrices(ctx context.Context, tickers []string, begin, end time.Time) (*dataframe.DataFrame, error)
}

// Simulator loads prices, resamples them to calendar days and runs the ledger
type Simulator struct {
	loader PriceLoader
}

func NewSimulator(loader PriceLoader) *Simulator {
	return &Simulator{
		loader: loader,
	}
}

// Simulate validates the request, loads prices for every ticker in spec, fills
// non-trading days forward and returns one Record per calendar day
func (sim *Simulator) Simulate(ctx context.Context, spec PortfolioSpec, begin, end time.Time, initial, monthly float64) ([]*Record, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Simulator.Simulate")
	defer span.End()

	runID := uuid.New()
	spec = spec.Normalize()
	subLog := log.With().Str("RunID", runID.String()).Object("Spec", spec).Time("Begin", begin).Time("End", end).
		Float64("Initial", initial).Float64("Monthly", monthly).Logger()

	span.SetAttributes(
		attribute.String("RunID", runID.String()),
		attribute.StringSlice("Tickers", spec.Tickers()),
		attribute.Float64("Initial", initial),
		attribute.Float64("Monthly", monthly),
	)

	if err := spec.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		subLog.Error().Err(err).Msg("invalid portfolio spec")
		return nil, err
	}

	if !validAmount(initial) || !validAmount(monthly) {
		err := fmt.Errorf("%w: initial=%g monthly=%g", ErrNegativeAmount, initial, monthly)
		span.SetStatus(codes.Error, err.Error())
		subLog.Error().Err(err).Msg("invalid investment amount")
		return nil, err
	}

	subLog.Info().Msg("starting simulation")

	prices, err := sim.loader.LoadPrices(ctx, spec.Tickers(), begin, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load prices")
		subLog.Error().Err(err).Msg("could not load prices")
		return nil, err
	}

	daily, err := prices.Daily()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not resample prices")
		subLog.Error().Err(err).Msg("could not resample prices to daily")
		return nil, err
	}

	records, err := Simulate(spec, daily, initial, monthly)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "simulation failed")
		return nil, err
	}

	last := records[len(records)-1]
	span.SetAttributes(attribute.Int("NumRecords", len(records)))
	subLog.Info().Int("NumRecords", len(records)).Float64("AmountInvested", last.AmountInvested).
		Float64("PortfolioValue", last.PortfolioValue).Msg("simulation complete")

	return records, nil
}
