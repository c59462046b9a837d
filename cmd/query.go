package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spyro-labs/spyro-relayer/chains/ethereum"
	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/coreutil"
)

// queryCmd represents the query command
func queryCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query Commands",
		Long:  "Commands to query signed VAAs and the relayer account.",
	}

	cmd.AddCommand(
		queryVAACmd(ctx),
		queryAccountCmd(ctx),
	)

	return cmd
}

type vaaOutput struct {
	MessageID        core.MessageID `json:"message_id"`
	Nonce            uint32         `json:"nonce"`
	ConsistencyLevel uint8          `json:"consistency_level"`
	Payload          string         `json:"payload"`
	VAA              string         `json:"vaa"`
}

func queryVAACmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaa",
		Short: "Fetch and verify the signed VAA of a message without submitting it",
		Args:  cobra.NoArgs,
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

			att, err := r.service.FetchAndVerify(cmd.Context(), seq)
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(vaaOutput{
				MessageID:        att.Message.ID(),
				Nonce:            att.Message.Nonce,
				ConsistencyLevel: att.Message.ConsistencyLevel,
				Payload:          hex.EncodeToString(att.Message.Payload),
				VAA:              hex.EncodeToString(att.Raw),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
	return sequenceFlag(cmd)
}

func queryAccountCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Print the relayer account submitting to the target chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildRelayer(cmd.Context(), ctx.Config)
			if err != nil {
				return err
			}
			defer r.Close()

			target, err := coreutil.UnwrapTarget[*ethereum.Target](r.publisher.Target())
			if err != nil {
				return err
			}
			asJSON, err := cmd.Flags().GetBool(flagJSON)
			if err != nil {
				return err
			}
			if asJSON {
				bz, err := json.Marshal(map[string]string{
					"chain_id": target.ChainID(),
					"address":  target.Address().Hex(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(bz))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (chain %s)\n", target.Address().Hex(), target.ChainID())
			return nil
		},
	}
	return jsonFlag(cmd)
}
