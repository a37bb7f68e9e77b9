package soldid

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
)

var (
	ErrInvalidDidFormat     = errors.New("invalid DID format")
	ErrInvalidAddressLength = errors.New("invalid Solana address length")
	ErrInvalidSolanaAddress = errors.New("invalid DID format - missing Solana address")
	ErrUnknownCluster       = errors.New("unknown cluster")

	ErrAccountNotFound      = errors.New("DID account not found")
	ErrAccountExists        = errors.New("DID account already initialized")
	ErrAccountTooShort      = errors.New("account data too short")
	ErrInvalidDiscriminator = errors.New("account is not a DID account")
	ErrWrongOwner           = errors.New("account not owned by the DID program")

	ErrFragmentExists   = errors.New("fragment already exists")
	ErrFragmentNotFound = errors.New("fragment not found")
	ErrInvalidKeyData   = errors.New("invalid key data")
	ErrUnknownFlag      = errors.New("unknown verification method flag")
	ErrUnknownType      = errors.New("unknown verification method type")

	ErrUnknownSigner = errors.New("unknown signer")
	ErrNotAuthority  = errors.New("wallet is not the DID authority")

	ErrInvalidKeypair = errors.New("invalid keypair")
)

// SendTransactionError is returned when the node refuses a transaction,
// usually because preflight simulation failed. Logs holds the simulation
// logs when the node reported them.
type SendTransactionError struct {
	Err  error
	Logs []string
}

func (e *SendTransactionError) Error() string {
	return "sending transaction: " + e.Err.Error()
}

func (e *SendTransactionError) Unwrap() error {
	return e.Err
}

// TransactionError is a transaction that landed but failed on chain
type TransactionError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

// TransactionLogs returns the program logs attached to a send failure, if any
func TransactionLogs(err error) []string {
	var se *SendTransactionError
	if errors.As(err, &se) {
		return se.Logs
	}

	return nil
}

func logsFromRPCError(err error) []string {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil
	}

	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return nil
	}

	raw, ok := data["logs"].([]interface{})
	if !ok {
		return nil
	}

	logs := make([]string, 0, len(raw))
	for _, l := range raw {
		if s, ok := l.(string); ok {
			logs = append(logs, s)
		}
	}

	return logs
}
