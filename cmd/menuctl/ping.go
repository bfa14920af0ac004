package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Lixing-Zhang/qr-menu/internal/pinger"
	"github.com/spf13/cobra"
)

func newPingCmd(a *app) *cobra.Command {
	var (
		zone      string
		stateFile string
		trackURL  string
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Report a menu visit, at most once per threshold per state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			endpoint := trackURL
			if endpoint == "" {
				endpoint = a.cfg.TrackingURL()
			}
			if endpoint == "" {
				return errors.New("tracking is disabled: set TRACK_URL or --track-url")
			}

			tracker, err := pinger.NewHTTPTracker(endpoint, &http.Client{Timeout: a.cfg.Tracking.Timeout})
			if err != nil {
				return err
			}

			store, err := pinger.OpenSQLiteStore(ctx, stateFile)
			if err != nil {
				return err
			}
			defer store.Close()

			p := pinger.New(tracker,
				pinger.WithThreshold(a.cfg.Tracking.Threshold),
				pinger.WithLogger(a.log),
			)

			res, err := p.Visit(ctx, store, zone)
			if err != nil {
				return err
			}

			if res.Sent {
				fmt.Fprintf(cmd.OutOrStdout(), "ping sent for zone %q at %s\n", zone, pinger.FormatTimestamp(res.At))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "ping skipped: last one was less than %s ago\n", a.cfg.Tracking.Threshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "zone identifier encoded in the scanned QR code")
	cmd.Flags().StringVar(&stateFile, "state", "menuctl-state.db", "SQLite file holding the last ping time")
	cmd.Flags().StringVar(&trackURL, "track-url", "", "tracking endpoint (defaults to TRACK_URL)")

	return cmd
}
