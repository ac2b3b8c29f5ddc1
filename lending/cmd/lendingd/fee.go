package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/library-lending/lending-ledger/lending/ledger"
)

type noReaders struct{}

func (noReaders) IsActive(string) bool { return false }

type noNotifications struct{}

func (noNotifications) Notify(string, string) {}

func feeCmd() *cobra.Command {
	var (
		overdueDays int
		bestseller  bool
		premium     bool
		schedule    string
	)

	c := &cobra.Command{
		Use:   "fee",
		Short: "Print the late fee for an overdue return",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feeSchedule, err := feeScheduleFor(schedule)
			if err != nil {
				return err
			}

			l := ledger.NewLendingLedger(noReaders{}, noNotifications{}, ledger.WithFeeSchedule(feeSchedule))

			fee, err := l.ComputeLateFee(overdueDays, bestseller, premium)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(fee, 'f', -1, 64))

			return err
		},
	}

	c.Flags().IntVar(&overdueDays, "overdue-days", 0, "days past the due date (required)")
	c.Flags().BoolVar(&bestseller, "bestseller", false, "the title is a bestseller")
	c.Flags().BoolVar(&premium, "premium", false, "the reader is a premium member")
	c.Flags().StringVar(&schedule, "schedule", "flat", "fee schedule: flat or tiered")

	_ = c.MarkFlagRequired("overdue-days")

	return c
}
