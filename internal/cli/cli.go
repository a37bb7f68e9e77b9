package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/soldid/internal/cache"
	"github.com/tcfw/soldid/internal/config"
	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
	"github.com/tcfw/soldid/pkg/soldid"
)

const (
	opTimeout = 3 * time.Minute

	confirmNone = "none"
)

var (
	rootCmd = &cobra.Command{
		Use:           "soldid",
		Short:         "Manage and resolve did:sol identities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	out io.Writer = os.Stdout
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	rootCmd.PersistentFlags().StringP("keypair", "k", "", "keypair file of the DID authority")
	rootCmd.PersistentFlags().StringP("cluster", "c", "", "cluster: mainnet-beta, testnet, devnet or localnet")
	rootCmd.PersistentFlags().String("commitment", "", "commitment used for reads and preflight")
	rootCmd.PersistentFlags().String("rpc", "", "override the RPC endpoint of the selected cluster")
	rootCmd.PersistentFlags().StringP("output", "o", "", "document output format: json or yaml")

	viper.BindPFlag(config.Cfg_verbose, rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag(config.Cfg_keypair, rootCmd.PersistentFlags().Lookup("keypair"))
	viper.BindPFlag(config.Cfg_cluster, rootCmd.PersistentFlags().Lookup("cluster"))
	viper.BindPFlag(config.Cfg_commitment, rootCmd.PersistentFlags().Lookup("commitment"))
	viper.BindPFlag(config.Cfg_output, rootCmd.PersistentFlags().Lookup("output"))

	regCommands()

	if err := rootCmd.Execute(); err != nil {
		logging.WithError(err).Error("command failed")
		return err
	}

	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	cfg.RPCOverride, _ = cmd.Flags().GetString("rpc")

	return cfg, nil
}

// session is everything one DID operation needs: key material, the
// identifier it controls and a service bound to the cluster's endpoint
type session struct {
	cfg    *config.Config
	client *rpc.Client
	wallet *soldid.KeypairWallet
	id     soldid.Identifier
	svc    *soldid.DidService
}

// newSession loads key material before touching the network. When
// testDataPath is set the keypair and DID come from that file instead of
// the configured keypair and cluster.
func newSession(cmd *cobra.Command, testDataPath string) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var key solana.PrivateKey
	var id soldid.Identifier

	if testDataPath != "" {
		td, err := soldid.LoadTestData(testDataPath)
		if err != nil {
			return nil, err
		}
		key = td.Keypair
		id = td.DID
		cfg.Cluster = id.Cluster()
	} else {
		key, err = soldid.LoadKeypair(cfg.Keypair)
		if err != nil {
			return nil, err
		}
		id = soldid.NewIdentifier(key.PublicKey(), cfg.Cluster)
	}

	wallet := soldid.NewKeypairWallet(key)
	client := cfg.NewClient(cfg.Endpoint())

	svc, err := soldid.NewService(client, wallet, id,
		soldid.WithProgramID(cfg.ProgramID),
		soldid.WithCommitment(cfg.Commitment),
	)
	if err != nil {
		return nil, err
	}

	logging.Entry().
		WithField("did", id.String()).
		WithField("endpoint", cfg.Endpoint()).
		Debug("session ready")

	return &session{cfg: cfg, client: client, wallet: wallet, id: id, svc: svc}, nil
}

func (s *session) confirm(ctx context.Context, sig solana.Signature, level string) error {
	if level == "" || level == confirmNone {
		return nil
	}

	return s.svc.Confirm(ctx, sig, rpc.CommitmentType(level))
}

// invalidate drops any cached document of the session's DID after a change
func (s *session) invalidate() {
	if s.cfg.CacheTTL <= 0 {
		return
	}

	c, err := cache.Open(s.cfg.CacheDir, s.cfg.CacheTTL)
	if err != nil {
		logging.WithError(err).Warn("opening document cache")
		return
	}
	defer c.Close()

	if err := c.Invalidate(s.id.String()); err != nil {
		logging.WithError(err).Warn("invalidating cached document")
	}
}

// finish confirms sig, drops stale cache entries and prints the document
func (s *session) finish(ctx context.Context, sig solana.Signature, level string, heading string) error {
	fmt.Fprintln(out, "Transaction:", sig.String())

	if err := s.confirm(ctx, sig, level); err != nil {
		return errors.Wrap(err, "confirming transaction")
	}

	s.invalidate()

	doc, err := s.svc.Resolve(ctx)
	if err != nil {
		return errors.Wrap(err, "resolving DID")
	}

	fmt.Fprintln(out, heading)
	return printDocument(doc, s.cfg.Output)
}

func reportSendError(err error) {
	logs := soldid.TransactionLogs(err)
	if len(logs) == 0 {
		return
	}

	logging.Entry().Error("Transaction error:")
	for _, l := range logs {
		logging.Entry().Error(l)
	}
}

func printDocument(doc *w3cdid.Document, format string) error {
	var b []byte
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		b, err = yaml.Marshal(doc)
	case "json", "":
		b, err = json.MarshalIndent(doc, "", "  ")
		b = append(b, '\n')
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return errors.Wrap(err, "marshalling document")
	}

	_, err = out.Write(b)
	return err
}
