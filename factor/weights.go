// Copyright 2024
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
package factor

import "github.com/spf13/viper"

// Weights blends the three factor sub-scores into the composite.
type Weights struct {
	Value    float64
	Quality  float64
	Momentum float64
}

// DefaultWeights is the fallback blend when configuration is absent or
// sums to a non-positive total.
var DefaultWeights = Weights{Value: 0.4, Quality: 0.4, Momentum: 0.2}

// Normalize rescales the weights to sum to exactly 1. Weight triples
// with a non-positive sum are discarded in favor of the default blend.
func (w Weights) Normalize() Weights {
	sum := w.Value + w.Quality + w.Momentum
	if sum <= 0 {
		return DefaultWeights
	}
	return Weights{
		Value:    w.Value / sum,
		Quality:  w.Quality / sum,
		Momentum: w.Momentum / sum,
	}
}

// WeightsFromConfig reads the factor weight triple from viper, falling
// back to the default blend when no weights are configured.
func WeightsFromConfig() Weights {
	if !viper.IsSet("factor.weight_value") &&
		!viper.IsSet("factor.weight_quality") &&
		!viper.IsSet("factor.weight_momentum") {
		return DefaultWeights
	}
	w := Weights{
		Value:    viper.GetFloat64("factor.weight_value"),
		Quality:  viper.GetFloat64("factor.weight_quality"),
		Momentum: viper.GetFloat64("factor.weight_momentum"),
	}
	return w.Normalize()
}
