package soldid

import (
	"context"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultRPCTimeout = 30 * time.Second

// NewRPCClient builds a JSON-RPC client for endpoint with traced HTTP transport
func NewRPCClient(endpoint string, timeout time.Duration) *rpc.Client {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: httpClient,
	}))
}

type settings struct {
	programID  solana.PublicKey
	commitment rpc.CommitmentType
	endpoints  map[Cluster]string
	newClient  func(endpoint string) *rpc.Client
}

func defaultSettings() *settings {
	return &settings{
		programID:  DefaultProgramID,
		commitment: rpc.CommitmentConfirmed,
		endpoints:  map[Cluster]string{},
		newClient: func(endpoint string) *rpc.Client {
			return NewRPCClient(endpoint, DefaultRPCTimeout)
		},
	}
}

type Option func(*settings)

// WithProgramID points at a DID program deployed under another address
func WithProgramID(id solana.PublicKey) Option {
	return func(s *settings) {
		s.programID = id
	}
}

func WithCommitment(c rpc.CommitmentType) Option {
	return func(s *settings) {
		s.commitment = c
	}
}

// WithEndpoint overrides the RPC endpoint used for DIDs on cluster
func WithEndpoint(cluster Cluster, endpoint string) Option {
	return func(s *settings) {
		s.endpoints[cluster] = endpoint
	}
}

func WithClientFactory(f func(endpoint string) *rpc.Client) Option {
	return func(s *settings) {
		s.newClient = f
	}
}

// fetchAccount returns the decoded DID account and its allocated size
func fetchAccount(ctx context.Context, client *rpc.Client, programID, address solana.PublicKey, commitment rpc.CommitmentType) (*DidAccount, int, error) {
	out, err := client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, 0, ErrAccountNotFound
		}
		return nil, 0, errors.Wrap(err, "fetching DID account")
	}
	if out == nil || out.Value == nil {
		return nil, 0, ErrAccountNotFound
	}

	if !out.Value.Owner.Equals(programID) {
		return nil, 0, errors.Wrapf(ErrWrongOwner, "owner %s", out.Value.Owner)
	}

	data := out.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, 0, ErrAccountNotFound
	}

	acct, err := DecodeAccount(data)
	if err != nil {
		return nil, 0, err
	}

	return acct, len(data), nil
}
