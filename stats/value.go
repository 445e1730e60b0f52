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
package stats

import "math"

// Value is a float64 that may be undefined. Undefined is a first-class
// state used wherever a denominator is zero, a log argument is
// non-positive, or a price history is too short; it is distinct from
// zero and never produced by NaN propagation.
type Value struct {
	Float64 float64
	Valid   bool
}

// Undefined is the zero Value.
var Undefined = Value{}

// F wraps a defined float64.
func F(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// FromPtr converts a nullable column value. NaN pointers are treated as
// undefined so that no NaN ever enters the arithmetic.
func FromPtr(p *float64) Value {
	if p == nil || math.IsNaN(*p) {
		return Undefined
	}
	return F(*p)
}

// Ptr returns a nullable representation suitable for database and
// parquet columns.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Or returns the value, or def when undefined.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float64
}

// Add returns a+b, undefined if either side is undefined.
func (v Value) Add(o Value) Value {
	if !v.Valid || !o.Valid {
		return Undefined
	}
	return F(v.Float64 + o.Float64)
}

// Sub returns a-b, undefined if either side is undefined.
func (v Value) Sub(o Value) Value {
	if !v.Valid || !o.Valid {
		return Undefined
	}
	return F(v.Float64 - o.Float64)
}

// Mul returns a*b, undefined if either side is undefined.
func (v Value) Mul(o Value) Value {
	if !v.Valid || !o.Valid {
		return Undefined
	}
	return F(v.Float64 * o.Float64)
}

// Div returns a/b with a guarded denominator: undefined when either
// side is undefined or the denominator is zero.
func (v Value) Div(o Value) Value {
	if !v.Valid || !o.Valid || o.Float64 == 0 {
		return Undefined
	}
	return F(v.Float64 / o.Float64)
}

// Neg returns -a, undefined when a is undefined.
func (v Value) Neg() Value {
	if !v.Valid {
		return Undefined
	}
	return F(-v.Float64)
}

// Log returns the natural log, defined only for positive values.
func (v Value) Log() Value {
	if !v.Valid || v.Float64 <= 0 {
		return Undefined
	}
	return F(math.Log(v.Float64))
}

// Gt reports a > b; comparisons involving an undefined side are false.
func (v Value) Gt(o Value) bool {
	return v.Valid && o.Valid && v.Float64 > o.Float64
}

// Lt reports a < b; comparisons involving an undefined side are false.
func (v Value) Lt(o Value) bool {
	return v.Valid && o.Valid && v.Float64 < o.Float64
}

// Lte reports a <= b; comparisons involving an undefined side are false.
func (v Value) Lte(o Value) bool {
	return v.Valid && o.Valid && v.Float64 <= o.Float64
}

// Mean averages the defined inputs and ignores undefined ones; it is
// undefined only when every input is undefined.
func Mean(vals ...Value) Value {
	sum := 0.0
	n := 0
	for _, v := range vals {
		if v.Valid {
			sum += v.Float64
			n++
		}
	}
	if n == 0 {
		return Undefined
	}
	return F(sum / float64(n))
}
