package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/ledger-es/internal/adapter/http/dto"
)

func ledgerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var idempotencyKey string
	cmd.PersistentFlags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for write commands")

	cmd.AddCommand(
		ledgerOpenCmd(opts, &idempotencyKey),
		ledgerJournalCmd(opts, &idempotencyKey, "receipt", "receipts"),
		ledgerJournalCmd(opts, &idempotencyKey, "payment", "payments"),
		ledgerCloseCmd(opts, &idempotencyKey),
		ledgerGetCmd(opts),
		ledgerReplayCmd(opts),
		ledgerListCmd(opts),
	)
	return cmd
}

func ledgerOpenCmd(opts *globalOptions, idempotencyKey *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "open <name>",
		Short: "Open a new ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}
			req := dto.OpenLedgerRequest{LedgerID: id, LedgerName: args[0]}

			var out json.RawMessage
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/ledgers", req, *idempotencyKey, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Ledger id (generated when empty)")
	return cmd
}

func ledgerJournalCmd(opts *globalOptions, idempotencyKey *string, name, resource string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   name + " <ledger-id> <amount>",
		Short: "Record a " + name,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			req := dto.JournalRequest{Description: description, Amount: amount}

			var out json.RawMessage
			path := "/api/v1/ledgers/" + url.PathEscape(args[0]) + "/" + resource
			if err := opts.client().do(cmd.Context(), http.MethodPost, path, req, *idempotencyKey, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Journal description")
	return cmd
}

func ledgerCloseCmd(opts *globalOptions, idempotencyKey *string) *cobra.Command {
	return &cobra.Command{
		Use:   "close <ledger-id>",
		Short: "Close a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			path := "/api/v1/ledgers/" + url.PathEscape(args[0]) + "/close"
			if err := opts.client().do(cmd.Context(), http.MethodPost, path, nil, *idempotencyKey, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func ledgerGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <ledger-id>",
		Short: "Show a ledger with its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.LedgerResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledgers/"+url.PathEscape(args[0]), nil, "", &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func ledgerReplayCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <ledger-id>",
		Short: "Rebuild a ledger from its event stream without touching projections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			path := "/api/v1/ledgers/" + url.PathEscape(args[0]) + "/replay"
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, "", &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func ledgerListCmd(opts *globalOptions) *cobra.Command {
	var (
		page     int
		pageSize int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledgers in the order they were opened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			if pageSize > 0 {
				q.Set("pageSize", strconv.Itoa(pageSize))
			}

			var out dto.LedgerListResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledgers?"+q.Encode(), nil, "", &out); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tOPEN\tBALANCE\tVERSION")
			for _, l := range out.Results {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%d\n", l.LedgerID, truncate(l.LedgerName, 32), l.IsOpen, l.Balance.String(), l.Version)
			}
			fmt.Fprintf(tw, "page %d, %d of %d ledgers\n", out.Page, out.Count, out.Total)
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Zero based page")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size (server default when 0)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}
