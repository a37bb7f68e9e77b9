package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/soldid/internal/cache"
	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/did/resolver"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
	"github.com/tcfw/soldid/pkg/soldid"
)

var (
	resolveCmd = &cobra.Command{
		Use:   "resolve <did>...",
		Short: "Resolve one or more DIDs to their documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResolve,
	}
)

func init() {
	resolveCmd.Flags().Bool("no-cache", false, "skip the local document cache")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var opts []resolver.Option
	if !noCache && cfg.CacheTTL > 0 {
		c, err := cache.Open(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			logging.WithError(err).Warn("document cache unavailable")
		} else {
			defer c.Close()
			opts = append(opts, resolver.WithCache(c))
		}
	}

	r := resolver.NewResolver(soldid.NewResolver(cfg.ResolverOptions()...), opts...)

	dids := make([]w3cdid.URL, 0, len(args))
	for _, a := range args {
		dids = append(dids, w3cdid.URL(a))
	}

	docs, err := r.ResolveMany(ctx, dids)
	if err != nil {
		return errors.Wrap(err, "resolving")
	}

	for i, doc := range docs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printDocument(doc, cfg.Output); err != nil {
			return err
		}
	}

	return nil
}
