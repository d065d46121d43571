package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"weblynx/internal/analysis"
	"weblynx/internal/config"
	"weblynx/internal/locale"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"
)

var errMissingValue = errors.New("missing value to decompose")

func userAgentCommand() *cli.Command {
	return decomposeCommand("ua", "Classify a User-Agent string", func(a *analysis.Analyzer, value string) (map[string]any, error) {
		result, err := a.UserAgent(value)
		if err != nil {
			return nil, err
		}
		return result.FlatComponents(), nil
	})
}

func urlCommand() *cli.Command {
	return decomposeCommand("url", "Decompose a URL", func(a *analysis.Analyzer, value string) (map[string]any, error) {
		result, err := a.URL(value)
		if err != nil {
			return nil, err
		}
		if result.IsEmpty() {
			pterm.Warning.Println("Text does not look like a URL")
		}
		return result.FlatComponents(), nil
	})
}

func decomposeCommand(name, usage string, decompose func(*analysis.Analyzer, string) (map[string]any, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<value>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the flattened projection as JSON",
			},
		},
		Action: func(ctx *cli.Context) error {
			// unquoted values arrive split on spaces
			value := strings.Join(ctx.Args().Slice(), " ")
			if strings.TrimSpace(value) == "" {
				return errMissingValue
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			analyzer, err := analysis.NewAnalyzer(locale.Default(), 0, cfg.Logger())
			if err != nil {
				return err
			}
			defer analyzer.Close()

			flat, err := decompose(analyzer, value)
			if err != nil {
				return err
			}

			if ctx.Bool("json") {
				data, err := json.MarshalIndent(flat, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			return printFlat(flat)
		},
	}
}

// printFlat renders a flattened projection as a two column table sorted by key
func printFlat(flat map[string]any) error {
	data := pterm.TableData{{"Key", "Value"}}
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		data = append(data, []string{key, fmt.Sprint(flat[key])})
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}
