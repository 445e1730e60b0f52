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
package backblaze

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("remoteName", func() {
	It("places the artifact under the dated directory", func() {
		Expect(remoteName("/tmp/scores-2024-06-28.parquet", "2024-06-28")).
			To(Equal("2024-06-28/scores-2024-06-28.parquet"))
	})

	It("slugifies stems that are not URL-safe", func() {
		Expect(remoteName("My Factor Scores.csv", "2024-06-28")).
			To(Equal("2024-06-28/my-factor-scores.csv"))
	})
})
