package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"bank-settlement-engine/internal/kafka"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/services"
	"bank-settlement-engine/internal/storage"
	"bank-settlement-engine/internal/sweep"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

func newReplayCmd() *cobra.Command {
	var enqueue bool

	cmd := &cobra.Command{
		Use:   "replay <txid>",
		Short: "Settle a transaction again",
		Long: `Runs settlement for the transaction in-process, or re-sends its message to Kafka
with --enqueue. Already settled transactions are reported as skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txID, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			store, redisClient, cleanup, err := openLedger()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			txn, err := store.GetTransaction(ctx, txID)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("transaction %d not found", txID)
			}
			if err != nil {
				return err
			}
			if txn.SrcAccount == nil {
				return fmt.Errorf("transaction %d is a credit and has nothing to settle", txID)
			}

			if enqueue {
				producer, err := kafka.NewProducer(cfg)
				if err != nil {
					return err
				}
				defer producer.Close()

				if err := sweep.NewSweeper(store, producer, nil, 0, 0).Requeue(txn); err != nil {
					return err
				}
				pterm.Success.Printf("Transaction %d sent to %s\n", txID, cfg.Kafka.TransferTopic)
				return nil
			}

			worker, closeWorker, err := newWorker(store, redisClient)
			if err != nil {
				return err
			}
			defer closeWorker()

			res, err := worker.Settle(ctx, &models.TransferIntent{
				TransactionID: txn.ID,
				SrcAccount:    *txn.SrcAccount,
				DestAccount:   txn.DestAccount,
				Amount:        txn.Amount.Decimal(),
			})
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "send the message to Kafka instead of settling in-process")
	return cmd
}

func newCreditCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:     "credit <account> <amount>",
		Short:   "Credit an account",
		Example: `settlementctl credit 42 1500.00 --reason "loan issued"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0], "account")
			if err != nil {
				return err
			}
			amount, err := money.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			store, redisClient, cleanup, err := openLedger()
			if err != nil {
				return err
			}
			defer cleanup()

			worker, closeWorker, err := newWorker(store, redisClient)
			if err != nil {
				return err
			}
			defer closeWorker()

			res, err := worker.Credit(cmd.Context(), accountID, amount, reason)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "manual credit", "reason shown to the account owner")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var resetCache bool

	cmd := &cobra.Command{
		Use:   "status <txid>",
		Short: "Show transaction status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txID, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			store, redisClient, cleanup, err := openLedger()
			if err != nil {
				return err
			}
			defer cleanup()

			var service services.TransactionService
			if redisClient != nil {
				if resetCache {
					if err := redisClient.ClearSettlementData(); err != nil {
						return err
					}
					pterm.Info.Println("Outcome cache and settlement counters cleared")
				}
				service = services.NewTransactionServiceWithRedis(store, nil, redisClient)
			} else {
				service = services.NewTransactionService(store, nil)
			}

			status, err := service.InspectTransaction(cmd.Context(), txID)
			if err != nil {
				return err
			}

			src := "-"
			if status.SrcAccount != nil {
				src = strconv.FormatInt(*status.SrcAccount, 10)
			}
			settled := "-"
			if status.SettledAt != nil {
				settled = status.SettledAt.Format("2006-01-02 15:04:05")
			}
			rows := [][]string{
				{"Transaction", "From", "To", "Amount", "Status", "Reason", "Settled"},
				{
					strconv.FormatInt(status.TransactionID, 10), src, strconv.FormatInt(status.DestAccount, 10),
					status.Amount.String(), string(status.Status), status.Reason, settled,
				},
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().BoolVar(&resetCache, "reset-cache", false, "clear cached outcomes and counters in Redis first")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var pendingAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-enqueue stale pending transactions once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			age := cfg.Sweep.PendingAge
			if pendingAge > 0 {
				age = pendingAge
			}

			store, redisClient, cleanup, err := openLedger()
			if err != nil {
				return err
			}
			defer cleanup()

			producer, err := kafka.NewProducer(cfg)
			if err != nil {
				return err
			}
			defer producer.Close()

			var locker sweep.Locker
			if redisClient != nil {
				locker = redisClient
			}

			requeued, err := sweep.NewSweeper(store, producer, locker, age, cfg.Sweep.BatchSize).SweepOnce(cmd.Context())
			if err != nil {
				return err
			}
			pterm.Success.Printf("Requeued %d pending transactions older than %s\n", requeued, age)
			return nil
		},
	}

	cmd.Flags().DurationVar(&pendingAge, "pending-age", 0, "minimum age of a pending transaction, e.g. 30s (default SWEEP_PENDING_AGE)")
	return cmd
}
