package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"github.com/xrash/smetrics"
)

type suggestion struct {
	name  string
	score float64
}

func levenshteinRatio(s, t string) float64 {
	lensum := float64(len(s) + len(t))
	if lensum == 0 {
		return 1.0
	}

	dist := float64(smetrics.WagnerFischer(s, t, 1, 1, 2))
	return (lensum - dist) / lensum
}

// Words people tend to use for the commands we have:
var staticSuggestions = map[string]string{
	"flash":    "download",
	"upload":   "download",
	"image":    "download",
	"restart":  "reboot",
	"ip":       "netconfig",
	"net":      "netconfig",
	"network":  "netconfig",
	"dhcp":     "netconfig",
	"update":   "upgrade",
	"info":     "version",
	"settings": "config",
}

func hasSuggestion(similars []suggestion, name string) bool {
	for _, similar := range similars {
		if similar.name == name {
			return true
		}
	}

	return false
}

func findSimilarCommands(cmdName string, cmds []cli.Command) []suggestion {
	similars := []suggestion{}

	for _, cmd := range cmds {
		candidates := []string{cmd.Name}
		candidates = append(candidates, cmd.Aliases...)

		for _, candidate := range candidates {
			if score := levenshteinRatio(cmdName, candidate); score >= 0.6 {
				similars = append(similars, suggestion{
					name:  cmd.Name,
					score: score,
				})
				break
			}
		}
	}

	if name, ok := staticSuggestions[cmdName]; ok && !hasSuggestion(similars, name) {
		similars = append(similars, suggestion{
			name:  name,
			score: 1.0,
		})
	}

	// Best match first:
	sort.SliceStable(similars, func(i, j int) bool {
		return similars[i].score > similars[j].score
	})

	return similars
}

func commandNotFound(ctx *cli.Context, cmdName string) {
	w := ctx.App.Writer
	fmt.Fprintf(w, "`%s` is not a valid command. ", color.RedString(cmdName))

	similars := findSimilarCommands(cmdName, ctx.App.Commands)

	switch len(similars) {
	case 0:
		fmt.Fprintf(w, "\n")
	case 1:
		suggestion := color.GreenString(similars[0].name)
		fmt.Fprintf(w, "Did you maybe mean `%s`?\n", suggestion)
	default:
		fmt.Fprintln(w, "\n\nDid you maybe mean one of those?")
		for _, similar := range similars {
			fmt.Fprintf(w, "  * %s\n", color.GreenString(similar.name))
		}
	}
}
