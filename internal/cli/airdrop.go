package cli

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/soldid/pkg/soldid"
)

var (
	airdropCmd = &cobra.Command{
		Use:   "airdrop",
		Short: "Request SOL for the keypair from a test cluster faucet",
		Args:  cobra.NoArgs,
		RunE:  runAirdrop,
	}
)

func init() {
	airdropCmd.Flags().Uint64("sol", 1, "amount of SOL to request")
	airdropCmd.Flags().String("confirm", "confirmed", "commitment to wait for, or none")
}

func runAirdrop(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	amount, _ := cmd.Flags().GetUint64("sol")
	level, _ := cmd.Flags().GetString("confirm")

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	if s.cfg.Cluster == soldid.ClusterMainnet {
		return errors.New("airdrops are not available on mainnet-beta")
	}

	sig, err := s.client.RequestAirdrop(ctx, s.wallet.PublicKey(), amount*solana.LAMPORTS_PER_SOL, s.cfg.Commitment)
	if err != nil {
		return errors.Wrap(err, "requesting airdrop")
	}

	if err := s.confirm(ctx, sig, level); err != nil {
		return errors.Wrap(err, "confirming airdrop")
	}

	fmt.Fprintf(out, "Airdropped %d SOL to %s: %s\n", amount, s.wallet.PublicKey(), sig)
	return nil
}
