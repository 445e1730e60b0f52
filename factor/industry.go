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

import "fmt"

// UnclassifiedIndustry is the bucket for SIC codes with no mapping.
const UnclassifiedIndustry = "Unclassified"

// sicIndustries maps SIC codes to coarse industry labels. Keys may be
// full 4-digit codes or 3- or 2-digit prefixes; lookup tries the most
// specific form first.
var sicIndustries = map[string]string{
	// full codes
	"2834": "Pharmaceuticals",
	"3674": "Semiconductors",
	"6022": "Banking",
	"6798": "Real Estate",
	"7372": "Software",

	// 3-digit prefixes
	"283": "Pharmaceuticals",
	"357": "Computer Hardware",
	"367": "Semiconductors",
	"481": "Telecommunications",
	"602": "Banking",
	"631": "Insurance",
	"679": "Real Estate",
	"737": "Software & IT Services",

	// 2-digit prefixes (SIC major groups)
	"01": "Agriculture",
	"10": "Metals & Mining",
	"13": "Oil & Gas",
	"15": "Construction",
	"20": "Food & Beverage",
	"21": "Tobacco",
	"22": "Textiles",
	"26": "Paper & Forest Products",
	"28": "Chemicals",
	"29": "Petroleum Refining",
	"30": "Rubber & Plastics",
	"33": "Primary Metals",
	"34": "Fabricated Metals",
	"35": "Industrial Machinery",
	"36": "Electronics",
	"37": "Transportation Equipment",
	"38": "Instruments",
	"40": "Railroads",
	"42": "Trucking",
	"44": "Shipping",
	"45": "Airlines",
	"48": "Communications",
	"49": "Utilities",
	"50": "Wholesale",
	"51": "Wholesale",
	"52": "Retail",
	"53": "Retail",
	"54": "Retail",
	"56": "Retail",
	"58": "Restaurants",
	"59": "Retail",
	"60": "Banking",
	"61": "Credit Services",
	"62": "Capital Markets",
	"63": "Insurance",
	"64": "Insurance",
	"65": "Real Estate",
	"67": "Investment Vehicles",
	"70": "Hotels",
	"73": "Business Services",
	"78": "Media & Entertainment",
	"79": "Media & Entertainment",
	"80": "Health Services",
	"82": "Education",
	"87": "Engineering Services",
}

// IndustryLabel classifies a SIC code into a coarse industry label.
// Matching falls through exact code, 3-digit prefix, and 2-digit
// prefix before landing in the unclassified bucket.
func IndustryLabel(sic int32) string {
	if sic <= 0 {
		return UnclassifiedIndustry
	}

	code := fmt.Sprintf("%04d", sic)
	if label, ok := sicIndustries[code]; ok {
		return label
	}
	if label, ok := sicIndustries[code[:3]]; ok {
		return label
	}
	if label, ok := sicIndustries[code[:2]]; ok {
		return label
	}
	return UnclassifiedIndustry
}
