package main

import (
	"context"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/widget"
)

const (
	choiceReset = "reset"
	choiceQuit  = "quit"
)

// interactive keeps rendering the widget and asking for the next action
// until the user quits or interrupts.
func interactive(ctx context.Context, w *widget.Widget, api registry, mode string, out io.Writer) error {
	_ = w.Load(ctx)

	for {
		if err := w.Render(out); err != nil {
			return err
		}

		input, err := next(ctx, w, api, mode)
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch input {
		case choiceQuit:
			return nil
		case choiceReset:
			_ = w.Reset(ctx)
		default:
			_ = w.Submit(ctx, input)
		}

		fmt.Fprintln(out)
	}
}

type registry interface {
	Denominations(ctx context.Context) ([]string, error)
}

// menu offers the denominations of the last reading. Before a reading has
// succeeded it asks the server for its registered denominations and falls
// back to the default set when that fails too.
func menu(ctx context.Context, w *widget.Widget, api registry) []string {
	labels := widget.Labels(w.State().Reading.Counts)
	if len(labels) == 0 {
		registered, err := api.Denominations(ctx)
		if err == nil && len(registered) > 0 {
			labels = registered
		} else {
			labels = coins.DefaultDenominations.Strings()
		}
	}

	return append(labels, choiceReset, choiceQuit)
}

func next(ctx context.Context, w *widget.Widget, api registry, mode string) (string, error) {
	if mode == modeCoins {
		items := menu(ctx, w, api)

		selector := promptui.Select{Label: "Insert a coin", Items: items, Size: len(items)}
		_, choice, err := selector.Run()
		return choice, err
	}

	selector := promptui.Select{Label: "Action", Items: []string{"add", choiceReset, choiceQuit}}
	_, choice, err := selector.Run()
	if err != nil || choice != "add" {
		return choice, err
	}

	prompt := promptui.Prompt{
		Label: "Amount",
		Validate: func(input string) error {
			_, err := widget.ParseAmount(input)
			return err
		},
	}

	return prompt.Run()
}
