package main

import (
	"errors"
	"fmt"
	"strings"

	"bank-settlement-engine/internal/generator"
	"bank-settlement-engine/internal/kafka"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/services"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type loadgenOptions struct {
	accounts       int
	transfers      int
	initialBalance string
	overdraftShare float64
	seed           int64
}

func newLoadgenCmd() *cobra.Command {
	opts := loadgenOptions{}

	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Create accounts and submit random transfers",
		Long: `Creates --accounts funded accounts and submits --transfers random transfers between them
through the same acceptance path as the transfer API. A share of the transfers is larger than
the initial balance and is expected to be rejected on acceptance or settle as FAILED.`,
		Example: "settlementctl loadgen --accounts 20 --transfers 1000 --overdraft-share 0.2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadgen(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.accounts, "accounts", 10, "number of accounts to create")
	cmd.Flags().IntVar(&opts.transfers, "transfers", 100, "number of transfers to submit")
	cmd.Flags().StringVar(&opts.initialBalance, "initial-balance", "5000.00", "balance of every created account")
	cmd.Flags().Float64Var(&opts.overdraftShare, "overdraft-share", 0.1, "share of transfers above the initial balance")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed, 0 for time based")
	return cmd
}

func runLoadgen(cmd *cobra.Command, opts loadgenOptions) error {
	if opts.accounts < 2 {
		return fmt.Errorf("at least 2 accounts are required")
	}
	if opts.transfers < 0 {
		return fmt.Errorf("transfers must not be negative")
	}
	balance, err := money.Parse(opts.initialBalance)
	if err != nil || balance < 0 {
		return fmt.Errorf("invalid initial balance %q", opts.initialBalance)
	}

	store, _, cleanup, err := openLedger()
	if err != nil {
		return err
	}
	defer cleanup()

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return err
	}
	defer producer.Close()

	ctx := cmd.Context()
	batch := strings.Split(uuid.NewString(), "-")[0]

	accounts := make([]int64, 0, opts.accounts)
	owners := make(map[int64]int64, opts.accounts)
	for i := 0; i < opts.accounts; i++ {
		userID, err := store.CreateUser(ctx, fmt.Sprintf("loadgen-%s-%d", batch, i))
		if err != nil {
			return err
		}
		accountID, err := store.CreateAccount(ctx, userID, fmt.Sprintf("LG-%s-%04d", strings.ToUpper(batch), i), balance)
		if err != nil {
			return err
		}
		accounts = append(accounts, accountID)
		owners[accountID] = userID
	}
	pterm.Info.Printf("Created %d accounts with balance %s\n", len(accounts), balance)

	gen := generator.NewTransferGenerator()
	if opts.seed != 0 {
		gen = generator.NewTransferGeneratorWithSeed(opts.seed)
	}
	requests := gen.GenerateBatch(accounts, opts.transfers, opts.overdraftShare, balance)

	service := services.NewTransactionService(store, producer)
	counts := map[string]int{}

	progress, _ := pterm.DefaultProgressbar.WithTotal(len(requests)).WithTitle("Submitting transfers").Start()
	for _, req := range requests {
		_, err := service.InitiateTransfer(ctx, owners[req.SrcAccount], req)
		switch {
		case err == nil:
			counts["accepted"]++
		case errors.Is(err, services.ErrInsufficientFunds):
			counts["rejected: insufficient balance"]++
		case errors.Is(err, services.ErrQueueUnavailable):
			counts["queue unavailable"]++
		default:
			counts["error"]++
		}
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Stop()
	}

	rows := [][]string{{"Result", "Count"}}
	for _, key := range []string{"accepted", "rejected: insufficient balance", "queue unavailable", "error"} {
		rows = append(rows, []string{key, fmt.Sprint(counts[key])})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
