package cli

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize the DID account of the keypair",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	closeCmd = &cobra.Command{
		Use:   "close",
		Short: "Close the DID account and reclaim its rent",
		Args:  cobra.NoArgs,
		RunE:  runClose,
	}
)

func init() {
	initCmd.Flags().Uint32("size", 0, "bytes to allocate for the account, 0 for the minimum")
	initCmd.Flags().String("confirm", "finalized", "commitment to wait for, or none")

	closeCmd.Flags().String("destination", "", "account receiving the reclaimed rent, defaults to the authority")
	closeCmd.Flags().String("confirm", confirmNone, "commitment to wait for, or none")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	size, _ := cmd.Flags().GetUint32("size")
	level, _ := cmd.Flags().GetString("confirm")

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	sig, err := s.svc.Initialize(ctx, size)
	if err != nil {
		reportSendError(err)
		return errors.Wrap(err, "creating DID")
	}

	if err := s.confirm(ctx, sig, level); err != nil {
		return errors.Wrap(err, "confirming DID creation")
	}
	fmt.Fprintln(out, "DID account initialized", sig.String())

	s.invalidate()

	doc, err := s.svc.Resolve(ctx)
	if err != nil {
		return errors.Wrap(err, "resolving created DID")
	}

	if err := printDocument(doc, s.cfg.Output); err != nil {
		return err
	}

	fmt.Fprintln(out, "Successfully created DID:", doc.ID)
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	dest, _ := cmd.Flags().GetString("destination")
	level, _ := cmd.Flags().GetString("confirm")

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	destination := s.wallet.PublicKey()
	if dest != "" {
		destination, err = solana.PublicKeyFromBase58(dest)
		if err != nil {
			return errors.Wrap(err, "parsing destination")
		}
	}

	sig, err := s.svc.Close(ctx, destination)
	if err != nil {
		reportSendError(err)
		return errors.Wrap(err, "closing DID")
	}

	if err := s.confirm(ctx, sig, level); err != nil {
		return errors.Wrap(err, "confirming close")
	}

	s.invalidate()

	fmt.Fprintln(out, "Cleanup completed successfully", sig.String())
	return nil
}
