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
package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pv-factors/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers <name>",
	Short: "List all providers available or get details about a specific provider",
	Run: func(cmd *cobra.Command, args []string) {
		providerMap := map[string]provider.Provider{}
		for _, p := range []provider.Provider{
			provider.NewTiingo(viper.GetString("tiingo.api_key"), viper.GetInt("tiingo.rate_limit")),
			provider.NewSEC(viper.GetString("sec.user_agent")),
		} {
			providerMap[p.Name()] = p
		}

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}

		if len(args) > 0 {
			if p, ok := providerMap[args[0]]; ok {
				builder.WriteString(fmt.Sprintf("# %s\n", p.Name()))
				builder.WriteString(p.Description())
			}
		} else {
			builder.WriteString("# Available Providers\n")
			for _, name := range []string{"tiingo", "sec"} {
				p := providerMap[name]
				builder.WriteString(fmt.Sprintf("\n## %s\n", p.Name()))
				builder.WriteString(p.Description())
			}
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render provider document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
