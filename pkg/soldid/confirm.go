package soldid

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/tcfw/soldid/internal/utils/logging"
)

func commitmentRank(c string) int {
	switch c {
	case "":
		return -1
	case string(rpc.CommitmentProcessed):
		return 0
	case string(rpc.CommitmentConfirmed):
		return 1
	default:
		return 2
	}
}

// ConfirmTransaction waits until sig reaches commitment. A transaction that
// landed with an error is reported as a *TransactionError.
func ConfirmTransaction(ctx context.Context, client *rpc.Client, sig solana.Signature, commitment rpc.CommitmentType) error {
	bo := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
	}

	want := commitmentRank(string(commitment))

	for {
		out, err := client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return errors.Wrap(err, "fetching signature status")
		}

		if out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			st := out.Value[0]
			if st.Err != nil {
				return &TransactionError{Signature: sig, Err: st.Err}
			}

			if commitmentRank(string(st.ConfirmationStatus)) >= want {
				return nil
			}

			logging.Entry().
				WithField("signature", sig.String()).
				WithField("status", st.ConfirmationStatus).
				Debug("waiting for confirmation")
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for confirmation")
		case <-time.After(bo.Duration()):
		}
	}
}
