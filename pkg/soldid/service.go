package soldid

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
)

// DidService performs DID operations for one identifier, signing with wallet.
// Every operation submits exactly one transaction.
type DidService struct {
	client *rpc.Client
	wallet Wallet
	id     Identifier

	programID   solana.PublicKey
	commitment  rpc.CommitmentType
	dataAccount solana.PublicKey
	bump        uint8
}

func NewService(client *rpc.Client, wallet Wallet, id Identifier, opts ...Option) (*DidService, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	addr, bump, err := id.DataAccount(s.programID)
	if err != nil {
		return nil, err
	}

	return &DidService{
		client:      client,
		wallet:      wallet,
		id:          id,
		programID:   s.programID,
		commitment:  s.commitment,
		dataAccount: addr,
		bump:        bump,
	}, nil
}

func (s *DidService) Identifier() Identifier {
	return s.id
}

func (s *DidService) DataAccount() solana.PublicKey {
	return s.dataAccount
}

// OpOption tunes a single operation
type OpOption func(*opConfig)

type opConfig struct {
	allocPayer *solana.PublicKey
}

// WithAutomaticAlloc grows the account first, paid by payer, when the
// change does not fit in the current allocation
func WithAutomaticAlloc(payer solana.PublicKey) OpOption {
	return func(c *opConfig) {
		c.allocPayer = &payer
	}
}

func (s *DidService) instructions() *instructions {
	return &instructions{
		programID:   s.programID,
		dataAccount: s.dataAccount,
		authority:   s.id.Authority(),
	}
}

func (s *DidService) checkAuthority() error {
	if !s.wallet.PublicKey().Equals(s.id.Authority()) {
		return errors.Wrapf(ErrNotAuthority, "wallet %s, authority %s", s.wallet.PublicKey(), s.id.Authority())
	}

	return nil
}

// Account fetches the current on-chain state
func (s *DidService) Account(ctx context.Context) (*DidAccount, error) {
	acct, _, err := fetchAccount(ctx, s.client, s.programID, s.dataAccount, s.commitment)
	return acct, err
}

// Resolve renders the DID document from current chain state
func (s *DidService) Resolve(ctx context.Context) (*w3cdid.Document, error) {
	acct, err := s.Account(ctx)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	return BuildDocument(s.id, acct), nil
}

// Initialize creates the DID account with size bytes allocated. A size of
// zero allocates InitialAccountSize.
func (s *DidService) Initialize(ctx context.Context, size uint32) (solana.Signature, error) {
	if err := s.checkAuthority(); err != nil {
		return solana.Signature{}, err
	}

	if size == 0 {
		size = InitialAccountSize
	}
	if size < InitialAccountSize {
		return solana.Signature{}, errors.Errorf("size %d below minimum account size %d", size, InitialAccountSize)
	}

	_, _, err := fetchAccount(ctx, s.client, s.programID, s.dataAccount, s.commitment)
	switch {
	case err == nil:
		return solana.Signature{}, ErrAccountExists
	case !errors.Is(err, ErrAccountNotFound):
		return solana.Signature{}, err
	}

	ix, err := s.instructions().Initialize(s.wallet.PublicKey(), size)
	if err != nil {
		return solana.Signature{}, err
	}

	return s.send(ctx, ix)
}

// mutate builds the instruction changing acct into next, prefixed by a
// resize when automatic allocation is requested and required
func (s *DidService) mutate(ctx context.Context, change func(*DidAccount) (*DidAccount, error), build func(*instructions) (solana.Instruction, error), opts []OpOption) (solana.Signature, error) {
	if err := s.checkAuthority(); err != nil {
		return solana.Signature{}, err
	}

	cfg := &opConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	acct, allocated, err := fetchAccount(ctx, s.client, s.programID, s.dataAccount, s.commitment)
	if err != nil {
		return solana.Signature{}, err
	}

	next, err := change(acct)
	if err != nil {
		return solana.Signature{}, err
	}

	ixs := []solana.Instruction{}

	need, err := next.Size()
	if err != nil {
		return solana.Signature{}, err
	}

	if cfg.allocPayer != nil && need > allocated {
		logging.Entry().
			WithField("allocated", allocated).
			WithField("required", need).
			Debug("resizing DID account")

		ix, err := s.instructions().Resize(*cfg.allocPayer, uint32(need))
		if err != nil {
			return solana.Signature{}, err
		}
		ixs = append(ixs, ix)
	}

	ix, err := build(s.instructions())
	if err != nil {
		return solana.Signature{}, err
	}
	ixs = append(ixs, ix)

	return s.send(ctx, ixs...)
}

func (s *DidService) AddService(ctx context.Context, svc Service, allowOverwrite bool, opts ...OpOption) (solana.Signature, error) {
	return s.mutate(ctx,
		func(a *DidAccount) (*DidAccount, error) { return a.WithService(svc, allowOverwrite) },
		func(b *instructions) (solana.Instruction, error) { return b.AddService(svc, allowOverwrite) },
		opts,
	)
}

func (s *DidService) RemoveService(ctx context.Context, fragment string, opts ...OpOption) (solana.Signature, error) {
	return s.mutate(ctx,
		func(a *DidAccount) (*DidAccount, error) { return a.WithoutService(fragment) },
		func(b *instructions) (solana.Instruction, error) { return b.RemoveService(fragment) },
		opts,
	)
}

func (s *DidService) AddVerificationMethod(ctx context.Context, vm VerificationMethod, opts ...OpOption) (solana.Signature, error) {
	if err := ValidateKeyData(vm.Type(), vm.KeyData); err != nil {
		return solana.Signature{}, err
	}

	return s.mutate(ctx,
		func(a *DidAccount) (*DidAccount, error) { return a.WithVerificationMethod(vm) },
		func(b *instructions) (solana.Instruction, error) { return b.AddVerificationMethod(vm) },
		opts,
	)
}

func (s *DidService) RemoveVerificationMethod(ctx context.Context, fragment string, opts ...OpOption) (solana.Signature, error) {
	return s.mutate(ctx,
		func(a *DidAccount) (*DidAccount, error) { return a.WithoutVerificationMethod(fragment) },
		func(b *instructions) (solana.Instruction, error) { return b.RemoveVerificationMethod(fragment) },
		opts,
	)
}

// Close deletes the DID account returning its rent to destination
func (s *DidService) Close(ctx context.Context, destination solana.PublicKey) (solana.Signature, error) {
	if err := s.checkAuthority(); err != nil {
		return solana.Signature{}, err
	}

	ix, err := s.instructions().Close(destination)
	if err != nil {
		return solana.Signature{}, err
	}

	return s.send(ctx, ix)
}

// Confirm waits for sig to reach commitment
func (s *DidService) Confirm(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error {
	return ConfirmTransaction(ctx, s.client, sig, commitment)
}

func (s *DidService) send(ctx context.Context, ixs ...solana.Instruction) (solana.Signature, error) {
	bh, err := s.client.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "fetching blockhash")
	}

	tx, err := solana.NewTransaction(ixs, bh.Value.Blockhash, solana.TransactionPayer(s.wallet.PublicKey()))
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "building transaction")
	}

	tx, err = s.wallet.SignTransaction(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: s.commitment,
	})
	if err != nil {
		return solana.Signature{}, &SendTransactionError{Err: err, Logs: logsFromRPCError(err)}
	}

	logging.Entry().
		WithField("did", s.id.String()).
		WithField("signature", sig.String()).
		Debug("transaction sent")

	return sig, nil
}
