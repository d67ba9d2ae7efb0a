package main

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/weegigs/coin-counter-go/client"
	"github.com/weegigs/coin-counter-go/widget"
)

const (
	modeCoins = "coins"
	modeData  = "data"
)

type options struct {
	server  string
	mode    string
	timeout time.Duration
	debug   bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "coins",
		Short:         "Coin counter client",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := opts.client()
			w, err := opts.widget(cmd.ErrOrStderr(), api)
			if err != nil {
				return err
			}
			return interactive(cmd.Context(), w, api, opts.mode, out)
		},
	}

	root.PersistentFlags().StringVar(&opts.server, "server", client.DefaultServer, "coin counter server address")
	root.PersistentFlags().StringVar(&opts.mode, "mode", modeCoins, "counter to drive: coins or data")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "per request timeout, zero waits indefinitely")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log requests to stderr")

	root.AddCommand(
		getCmd(opts, out),
		insertCmd(opts, out),
		addCmd(opts, out),
		resetCmd(opts, out),
	)

	return root
}

func (o *options) client() *client.Client {
	return client.New(o.server, client.WithTimeout(o.timeout))
}

func (o *options) widget(logs io.Writer, api *client.Client) (*widget.Widget, error) {
	logger := zerolog.Nop()
	if o.debug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: logs}).With().Timestamp().Logger()
	}

	switch o.mode {
	case modeCoins:
		return widget.New(widget.CoinSource{API: api}, widget.WithLogger(logger)), nil
	case modeData:
		return widget.New(widget.DataSource{API: api}, widget.WithLogger(logger)), nil
	default:
		return nil, errors.Errorf("unknown mode %q, expected coins or data", o.mode)
	}
}
