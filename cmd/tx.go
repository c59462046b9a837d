package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spyro-labs/spyro-relayer/core"
)

// transactionCmd represents the tx command
func transactionCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction Commands",
		Long:  "Commands that submit transactions to the target chain",
	}

	cmd.AddCommand(
		relayMsgCmd(ctx),
	)

	return cmd
}

func relayMsgCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Relay a single message of the configured emitter",
		Long: "Fetches the signed VAA of the given sequence from the guardians, verifies it and " +
			"submits it to the receiver contract. Use it to reconcile messages the service missed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := cmd.Flags().GetUint64(flagSequence)
			if err != nil {
				return err
			}
			r, err := buildRelayer(cmd.Context(), ctx.Config)
			if err != nil {
				return err
			}
			defer r.Close()

			res := r.service.RelaySequence(cmd.Context(), seq)
			bz, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			if res.Status != core.StatusDelivered {
				return fmt.Errorf("message %s was not delivered: %s %s", res.MessageID, res.Status, res.Reason)
			}
			return nil
		},
	}
	return sequenceFlag(cmd)
}
