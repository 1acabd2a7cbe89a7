package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/blockfrost"
	"github.com/hexcore/hexcore-cli/internal/format"
	"github.com/hexcore/hexcore-cli/internal/tui"
	"github.com/hexcore/hexcore-cli/internal/wallet"
)

func (a *app) startCmd() *cobra.Command {
	var (
		blockfrostKey   string
		refreshInterval time.Duration
		pollInterval    time.Duration
		logFile         string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logOut := io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			logger := a.logger(logOut)

			if a.flags.username != "" {
				fmt.Fprintln(a.stdout, "Authenticating...")
			}
			client, err := a.client(cmd.Context(), logger)
			if err != nil {
				return err
			}

			opts := tui.Options{
				RefreshInterval: refreshInterval,
				PollInterval:    pollInterval,
				Logger:          logger,
			}
			if blockfrostKey != "" {
				bf := blockfrost.NewClient(blockfrostKey)
				opts.UTxO = bf
				logger.Info("blockfrost enabled", "url", bf.BaseURL)
			}

			if err := tui.Run(cmd.Context(), client, opts); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "✓ CLI exited (processes continue)")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&blockfrostKey, "blockfrost-api-key", "b", "", "Blockfrost API key for Cardano network access")
	f.DurationVar(&refreshInterval, "refresh-interval", tui.DefaultRefreshInterval, "Full menu refresh interval")
	f.DurationVar(&pollInterval, "poll-interval", tui.DefaultPollInterval, "Status poll interval")
	f.StringVar(&logFile, "log-file", "", "Write dashboard logs to this file")
	return cmd
}

func (a *app) headCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "head",
		Short: "Manage Hydra heads",
	}

	var accounts string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a new Hydra head",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []string
			for _, id := range strings.Split(accounts, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("--accounts must list at least one account id")
			}

			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			head, err := client.CreateHead(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(head); ok {
				return err
			}
			fmt.Fprintf(a.stdout, "✓ Head created: %s\n", head.ID)
			return nil
		},
	}
	create.Flags().StringVar(&accounts, "accounts", "", "Comma-separated account IDs")
	_ = create.MarkFlagRequired("accounts")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all Hydra heads",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			heads, err := client.GetHeads(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(heads); ok {
				return err
			}

			rows := make([][]string, 0, len(heads))
			for _, h := range heads {
				rows = append(rows, []string{
					h.ID.String(),
					format.Truncate(h.DescriptionText(), 28),
					strconv.Itoa(h.Nodes),
					h.Status,
					format.FormatTime(h.CreatedAt),
				})
			}
			fmt.Fprintln(a.stdout, "\n📋 Hydra Heads:")
			fmt.Fprintln(a.stdout)
			printTable(a.stdout, []string{"HeadID", "Description", "Nodes", "Status", "Created"}, rows)
			fmt.Fprintln(a.stdout)
			return nil
		},
	}

	var force bool
	stop := &cobra.Command{
		Use:   "stop <head-id>",
		Short: "Stop a Hydra head",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headID := args[0]
			if !force {
				ok, err := a.confirm(fmt.Sprintf("Stop head '%s'?", headID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.stdout, "Aborted")
					return nil
				}
			}

			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			if err := client.StopHead(cmd.Context(), headID); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "✓ Head '%s' stopped\n", headID)
			return nil
		},
	}
	stop.Flags().BoolVar(&force, "force", false, "Skip confirmation")

	info := &cobra.Command{
		Use:   "info <head-id>",
		Short: "Show Hydra head details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			head, err := client.GetHeadInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(head); ok {
				return err
			}
			a.printHead(head)
			return nil
		},
	}

	cmd.AddCommand(create, list, stop, info)
	return cmd
}

func (a *app) printHead(head *api.Head) {
	fmt.Fprintf(a.stdout, "\n📋 Head: %s\n", head.ID)
	if d := head.DescriptionText(); d != "" {
		fmt.Fprintf(a.stdout, "Description: %s\n", d)
	}
	fmt.Fprintf(a.stdout, "Status: %s\n", head.Status)
	fmt.Fprintf(a.stdout, "Created: %s\n", format.FormatTime(head.CreatedAt))
	if len(head.HydraNodes) == 0 {
		return
	}

	rows := make([][]string, 0, len(head.HydraNodes))
	for _, n := range head.HydraNodes {
		account, vkeyHash := "-", "-"
		if n.CardanoAccount != nil && n.CardanoAccount.BaseAddress != "" {
			account = format.FormatID(n.CardanoAccount.BaseAddress, 16, 8)
		}
		if hash, err := wallet.VKeyHash(n.VKey); err == nil {
			vkeyHash = hash
		}
		rows = append(rows, []string{n.ID.String(), strconv.Itoa(n.Port), n.Status, account, vkeyHash})
	}
	fmt.Fprintln(a.stdout)
	printTable(a.stdout, []string{"Node ID", "Port", "Status", "Account", "VKey hash"}, rows)
}

func (a *app) accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage wallet accounts",
	}

	var mnemonic string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a new wallet account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wallet.ValidateMnemonic(mnemonic); err != nil {
				return err
			}
			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			account, err := client.AddAccount(cmd.Context(), wallet.NormalizeMnemonic(mnemonic))
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(account); ok {
				return err
			}
			fmt.Fprintf(a.stdout, "✓ Account added: %s\n", account.ID)
			return nil
		},
	}
	add.Flags().StringVar(&mnemonic, "mnemonic", "", "BIP39 mnemonic phrase")
	_ = add.MarkFlagRequired("mnemonic")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			accounts, err := client.GetAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(accounts); ok {
				return err
			}

			rows := make([][]string, 0, len(accounts))
			for _, acc := range accounts {
				rows = append(rows, []string{acc.ID.String(), acc.BaseAddress, format.FormatTime(acc.CreatedAt)})
			}
			fmt.Fprintln(a.stdout, "\n💰 Wallet Accounts:")
			fmt.Fprintln(a.stdout)
			printTable(a.stdout, []string{"ID", "Base Address", "Created"}, rows)
			fmt.Fprintln(a.stdout)
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) nodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "View node information",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			nodes, err := client.GetNodes(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(nodes); ok {
				return err
			}

			rows := make([][]string, 0, len(nodes))
			for _, n := range nodes {
				account := "-"
				if n.CardanoAccount != nil && n.CardanoAccount.BaseAddress != "" {
					account = n.CardanoAccount.BaseAddress
				}
				rows = append(rows, []string{
					n.ID.String(),
					format.Truncate(n.Description, 34),
					strconv.Itoa(n.Port),
					account,
					n.Status,
					format.AgeOf(n.CreatedAt),
				})
			}
			fmt.Fprintln(a.stdout, "\n🔗 Nodes:")
			fmt.Fprintln(a.stdout)
			printTable(a.stdout, []string{"Node ID", "Description", "Port", "Account", "Status", "Age"}, rows)
			fmt.Fprintln(a.stdout)
			return nil
		},
	}

	cmd.AddCommand(list)
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system health status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context(), a.logger(a.stderr))
			if err != nil {
				return err
			}
			status, err := client.GetSystemStatus(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := a.printStructured(status); ok {
				return err
			}

			health := "✗ Error"
			if status.Healthy() {
				health = "✓ Healthy"
			}
			fmt.Fprintln(a.stdout, "\n📊 System Status:")
			fmt.Fprintln(a.stdout)
			fmt.Fprintf(a.stdout, "Running Nodes: %d\n", status.RunningNodes)
			fmt.Fprintf(a.stdout, "Running Heads: %d\n", status.RunningHeads)
			fmt.Fprintf(a.stdout, "Total Heads:   %d\n", status.TotalHeads)
			fmt.Fprintf(a.stdout, "Status:        %s\n", health)
			fmt.Fprintln(a.stdout)
			return nil
		},
	}
}
