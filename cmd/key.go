package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/formatter"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/urfave/cli/v3"
)

type keyJSON struct {
	Input      string `json:"input"`
	Camelot    string `json:"camelot"`
	Name       string `json:"name"`
	PitchClass int    `json:"pitch_class"`
	Mode       string `json:"mode"`
	Weight     int    `json:"weight"`
}

// Key converts each argument between Camelot and key-name notation.
//
// Every argument is reported. Unparseable ones are collected and returned together.
func (r *Runner) Key(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one Camelot code or key name", shared.ErrMissingArgument)
	}

	var (
		results []keyJSON
		errs    []error
	)
	for _, arg := range args {
		k, err := camelot.Parse(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		code, _ := k.Code()
		results = append(results, keyJSON{
			Input:      arg,
			Camelot:    code.String(),
			Name:       k.String(),
			PitchClass: k.PitchClass,
			Mode:       k.Mode.String(),
			Weight:     k.Weight(),
		})
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(results, true); err != nil {
			return err
		}
		return errors.Join(errs...)
	}

	if len(results) > 0 {
		rows := make([][]string, 0, len(results))
		for _, k := range results {
			rows = append(rows, []string{k.Input, k.Camelot, k.Name, strconv.Itoa(k.PitchClass), strconv.Itoa(k.Weight)})
		}
		r.writePlain("%s\n", formatter.RenderTable(
			[]string{"Input", "Camelot", "Key", "Pitch Class", "Weight"},
			rows,
			[]formatter.Alignment{formatter.AlignLeft, formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight},
		))
	}
	return errors.Join(errs...)
}
