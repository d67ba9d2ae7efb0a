package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/weegigs/coin-counter-go/widget"
)

type action func(cmd *cobra.Command, w *widget.Widget, args []string) error

// run loads the counter, applies the action and renders the result. The
// widget is rendered even when the action fails so its message is shown.
func run(opts *options, out io.Writer, do action) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		w, err := opts.widget(cmd.ErrOrStderr(), opts.client())
		if err != nil {
			return err
		}

		if err := w.Load(cmd.Context()); err != nil {
			_ = w.Render(out)
			return err
		}

		if do != nil {
			err = do(cmd, w, args)
		}

		if rerr := w.Render(out); rerr != nil && err == nil {
			err = rerr
		}

		return err
	}
}

func getCmd(opts *options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current counter",
		Args:  cobra.NoArgs,
		RunE:  run(opts, out, nil),
	}
}

func insertCmd(opts *options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <denomination>",
		Short: "Insert one coin",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			opts.mode = modeCoins
			return nil
		},
		RunE: run(opts, out, func(cmd *cobra.Command, w *widget.Widget, args []string) error {
			return w.Submit(cmd.Context(), args[0])
		}),
	}
}

func addCmd(opts *options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "add <amount>",
		Short: "Add an amount to the running total",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			opts.mode = modeData
			return nil
		},
		RunE: run(opts, out, func(cmd *cobra.Command, w *widget.Widget, args []string) error {
			return w.Submit(cmd.Context(), args[0])
		}),
	}
}

func resetCmd(opts *options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the selected counter",
		Args:  cobra.NoArgs,
		RunE: run(opts, out, func(cmd *cobra.Command, w *widget.Widget, _ []string) error {
			return w.Reset(cmd.Context())
		}),
	}
}
