package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/soldid"
)

const (
	Cfg_verbose    = "verbose"
	Cfg_cluster    = "cluster"
	Cfg_commitment = "commitment"
	Cfg_keypair    = "keypair"
	Cfg_programID  = "program_id"
	Cfg_rpcTimeout = "rpc_timeout"
	Cfg_cacheDir   = "cache.dir"
	Cfg_cacheTTL   = "cache.ttl"
	Cfg_output     = "output"

	cfg_rpcPrefix = "rpc."
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose:    false,
		Cfg_cluster:    string(soldid.ClusterDevnet),
		Cfg_commitment: string(rpc.CommitmentConfirmed),
		Cfg_keypair:    "$HOME/.config/solana/id.json",
		Cfg_programID:  soldid.DefaultProgramID.String(),
		Cfg_rpcTimeout: soldid.DefaultRPCTimeout,
		Cfg_cacheDir:   "$HOME/.soldid/cache",
		Cfg_cacheTTL:   time.Duration(0),
		Cfg_output:     "json",

		cfg_rpcPrefix + string(soldid.ClusterMainnet):  soldid.MainnetRPC,
		cfg_rpcPrefix + string(soldid.ClusterTestnet):  soldid.TestnetRPC,
		cfg_rpcPrefix + string(soldid.ClusterDevnet):   soldid.DevnetRPC,
		cfg_rpcPrefix + string(soldid.ClusterLocalnet): soldid.LocalnetRPC,
	}

	clusters = []soldid.Cluster{
		soldid.ClusterMainnet,
		soldid.ClusterTestnet,
		soldid.ClusterDevnet,
		soldid.ClusterLocalnet,
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

type Config struct {
	Cluster    soldid.Cluster
	Commitment rpc.CommitmentType
	Keypair    string
	ProgramID  solana.PublicKey
	RPC        map[soldid.Cluster]string
	RPCTimeout time.Duration
	CacheDir   string
	CacheTTL   time.Duration
	Output     string

	// RPCOverride replaces the endpoint of whichever cluster is finally selected
	RPCOverride string
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("soldid")
	viper.AddConfigPath("/etc/soldid/")
	viper.AddConfigPath("$HOME/.soldid")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("SOLDID")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.Entry().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	if viper.GetBool(Cfg_verbose) {
		logging.SetLevel(logrus.DebugLevel)
		logging.Entry().WithField("level", "debug").Debug("setting log level")
	}

	return build()
}

func build() (*Config, error) {
	c := &Config{
		Commitment: rpc.CommitmentType(viper.GetString(Cfg_commitment)),
		Keypair:    expandPath(viper.GetString(Cfg_keypair)),
		RPC:        map[soldid.Cluster]string{},
		RPCTimeout: viper.GetDuration(Cfg_rpcTimeout),
		CacheDir:   expandPath(viper.GetString(Cfg_cacheDir)),
		CacheTTL:   viper.GetDuration(Cfg_cacheTTL),
		Output:     viper.GetString(Cfg_output),
	}

	cluster, err := soldid.ParseCluster(viper.GetString(Cfg_cluster))
	if err != nil {
		return nil, errors.Wrap(err, "cluster config")
	}
	c.Cluster = cluster

	switch c.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return nil, errors.Errorf("unsupported commitment %q", c.Commitment)
	}

	c.ProgramID, err = solana.PublicKeyFromBase58(viper.GetString(Cfg_programID))
	if err != nil {
		return nil, errors.Wrap(err, "program id config")
	}

	for _, cl := range clusters {
		c.RPC[cl] = viper.GetString(cfg_rpcPrefix + string(cl))
	}

	return c, nil
}

// Endpoint is the RPC endpoint configured for the selected cluster
func (c *Config) Endpoint() string {
	if c.RPCOverride != "" {
		return c.RPCOverride
	}

	if e := c.RPC[c.Cluster]; e != "" {
		return e
	}

	return c.Cluster.DefaultRPC()
}

// ResolverOptions configures a resolver with the endpoints and program of c
func (c *Config) ResolverOptions() []soldid.Option {
	opts := []soldid.Option{
		soldid.WithProgramID(c.ProgramID),
		soldid.WithCommitment(c.Commitment),
		soldid.WithClientFactory(c.NewClient),
	}

	for cl, e := range c.RPC {
		opts = append(opts, soldid.WithEndpoint(cl, e))
	}

	if c.RPCOverride != "" {
		opts = append(opts, soldid.WithEndpoint(c.Cluster, c.RPCOverride))
	}

	return opts
}

func (c *Config) NewClient(endpoint string) *rpc.Client {
	return soldid.NewRPCClient(endpoint, c.RPCTimeout)
}

func expandPath(p string) string {
	p = os.ExpandEnv(p)

	if len(p) > 1 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}

	return p
}
