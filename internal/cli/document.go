package cli

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/soldid/pkg/soldid"
)

var (
	addServiceCmd = &cobra.Command{
		Use:   "add-service [test-data-file]",
		Short: "Add a service entry to the DID document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAddService,
	}

	removeServiceCmd = &cobra.Command{
		Use:   "remove-service",
		Short: "Remove a service entry from the DID document",
		Args:  cobra.NoArgs,
		RunE:  runRemoveService,
	}

	addVerificationMethodCmd = &cobra.Command{
		Use:   "add-verification-method",
		Short: "Add a verification method to the DID document",
		Args:  cobra.NoArgs,
		RunE:  runAddVerificationMethod,
	}

	removeVerificationMethodCmd = &cobra.Command{
		Use:   "remove-verification-method",
		Short: "Remove a verification method from the DID document",
		Args:  cobra.NoArgs,
		RunE:  runRemoveVerificationMethod,
	}
)

func init() {
	addServiceCmd.Flags().String("fragment", "agent", "service fragment")
	addServiceCmd.Flags().String("type", "TestService", "service type")
	addServiceCmd.Flags().String("endpoint", "https://test-service.com", "service endpoint")
	addServiceCmd.Flags().Bool("overwrite", false, "replace an existing service with the same fragment")

	removeServiceCmd.Flags().String("fragment", "agent", "service fragment")

	addVerificationMethodCmd.Flags().String("fragment", "key-2", "verification method fragment")
	addVerificationMethodCmd.Flags().String("type", "Ed25519VerificationKey2018", "verification method type")
	addVerificationMethodCmd.Flags().StringSlice("flag", []string{"assertion", "keyAgreement"}, "capability flags, can be used multiple times")
	addVerificationMethodCmd.Flags().String("key", "", "base58 ed25519 public key, defaults to the authority key")
	addVerificationMethodCmd.Flags().String("secp256k1", "", "hex secp256k1 public key for secp256k1 method types")

	removeVerificationMethodCmd.Flags().String("fragment", "key-2", "verification method fragment")

	for _, c := range []*cobra.Command{addServiceCmd, removeServiceCmd, addVerificationMethodCmd, removeVerificationMethodCmd} {
		c.Flags().String("confirm", "finalized", "commitment to wait for, or none")
	}
}

func runAddService(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var testData string
	if len(args) == 1 {
		testData = args[0]
	}

	svc := soldid.Service{}
	svc.Fragment, _ = cmd.Flags().GetString("fragment")
	svc.ServiceType, _ = cmd.Flags().GetString("type")
	svc.ServiceEndpoint, _ = cmd.Flags().GetString("endpoint")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	level, _ := cmd.Flags().GetString("confirm")

	s, err := newSession(cmd, testData)
	if err != nil {
		return err
	}

	sig, err := s.svc.AddService(ctx, svc, overwrite, soldid.WithAutomaticAlloc(s.wallet.PublicKey()))
	if err != nil {
		reportSendError(err)
		return errors.Wrap(err, "adding service")
	}

	return s.finish(ctx, sig, level, "DID Document after adding service:")
}

func runRemoveService(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	fragment, _ := cmd.Flags().GetString("fragment")
	level, _ := cmd.Flags().GetString("confirm")

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	sig, err := s.svc.RemoveService(ctx, fragment)
	if err != nil {
		reportSendError(err)
		return errors.Wrap(err, "removing service")
	}

	return s.finish(ctx, sig, level, "DID Document after removing service:")
}

func runAddVerificationMethod(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	fragment, _ := cmd.Flags().GetString("fragment")
	typeName, _ := cmd.Flags().GetString("type")
	flagNames, _ := cmd.Flags().GetStringSlice("flag")
	keyB58, _ := cmd.Flags().GetString("key")
	secpHex, _ := cmd.Flags().GetString("secp256k1")
	level, _ := cmd.Flags().GetString("confirm")

	methodType, err := soldid.ParseMethodType(typeName)
	if err != nil {
		return err
	}

	flags, err := soldid.ParseFlags(flagNames)
	if err != nil {
		return err
	}

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	keyData, err := methodKeyData(methodType, keyB58, secpHex, s.wallet.PublicKey())
	if err != nil {
		return err
	}

	vm := soldid.VerificationMethod{
		Fragment:   fragment,
		Flags:      uint16(flags),
		MethodType: uint8(methodType),
		KeyData:    keyData,
	}

	sig, err := s.svc.AddVerificationMethod(ctx, vm, soldid.WithAutomaticAlloc(s.wallet.PublicKey()))
	if err != nil {
		reportSendError(err)
		return errors.Wrap(err, "adding verification method")
	}

	return s.finish(ctx, sig, level, "DID Document after adding verification method:")
}

func methodKeyData(t soldid.MethodType, keyB58, secpHex string, authority solana.PublicKey) ([]byte, error) {
	switch t {
	case soldid.MethodTypeEd25519VerificationKey2018:
		if keyB58 == "" {
			return authority.Bytes(), nil
		}
		pk, err := solana.PublicKeyFromBase58(keyB58)
		if err != nil {
			return nil, errors.Wrap(err, "parsing key")
		}
		return pk.Bytes(), nil
	default:
		if secpHex == "" {
			return nil, errors.Errorf("--secp256k1 is required for %s", t.W3CType())
		}
		return soldid.KeyDataFromSecp256k1(t, secpHex)
	}
}

func runRemoveVerificationMethod(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	fragment, _ := cmd.Flags().GetString("fragment")
	level, _ := cmd.Flags().GetString("confirm")

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	sig, err := s.svc.RemoveVerificationMethod(ctx, fragment)
	if err != nil {
		reportSendError(err)
		return errors.Wrap(err, "removing verification method")
	}

	return s.finish(ctx, sig, level, "DID Document after removing verification method:")
}
