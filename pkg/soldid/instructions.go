package soldid

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const (
	instrInitialize               = "initialize"
	instrResize                   = "resize"
	instrAddVerificationMethod    = "add_verification_method"
	instrRemoveVerificationMethod = "remove_verification_method"
	instrAddService               = "add_service"
	instrRemoveService            = "remove_service"
	instrClose                    = "close"
)

// optionNone is the Borsh encoding of an absent Option<T>. Every mutating
// instruction takes a trailing optional Ethereum signature which is never
// supplied here.
const optionNone byte = 0

type sizeArgs struct {
	Size uint32
}

type fragmentArgs struct {
	Fragment string
}

type addServiceArgs struct {
	Service        Service
	AllowOverwrite bool
}

func instructionData(name string, args interface{}, ethSignature bool) ([]byte, error) {
	d := discriminator("global", name)

	buf := bytes.NewBuffer(nil)
	buf.Write(d[:])

	if args != nil {
		if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
			return nil, errors.Wrapf(err, "encoding %s args", name)
		}
	}

	if ethSignature {
		buf.WriteByte(optionNone)
	}

	return buf.Bytes(), nil
}

// instructions builds DID program instructions for one data account
type instructions struct {
	programID   solana.PublicKey
	dataAccount solana.PublicKey
	authority   solana.PublicKey
}

func (b *instructions) build(name string, args interface{}, ethSignature bool, accounts solana.AccountMetaSlice) (solana.Instruction, error) {
	data, err := instructionData(name, args, ethSignature)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(b.programID, accounts, data), nil
}

func (b *instructions) Initialize(payer solana.PublicKey, size uint32) (solana.Instruction, error) {
	return b.build(instrInitialize, &sizeArgs{Size: size}, false, solana.AccountMetaSlice{
		solana.NewAccountMeta(b.dataAccount, true, false),
		solana.NewAccountMeta(b.authority, false, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	})
}

func (b *instructions) Resize(payer solana.PublicKey, size uint32) (solana.Instruction, error) {
	return b.build(instrResize, &sizeArgs{Size: size}, true, solana.AccountMetaSlice{
		solana.NewAccountMeta(b.dataAccount, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(b.authority, false, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	})
}

func (b *instructions) mutate() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(b.dataAccount, true, false),
		solana.NewAccountMeta(b.authority, false, true),
	}
}

func (b *instructions) AddVerificationMethod(vm VerificationMethod) (solana.Instruction, error) {
	return b.build(instrAddVerificationMethod, &vm, true, b.mutate())
}

func (b *instructions) RemoveVerificationMethod(fragment string) (solana.Instruction, error) {
	return b.build(instrRemoveVerificationMethod, &fragmentArgs{Fragment: fragment}, true, b.mutate())
}

func (b *instructions) AddService(s Service, allowOverwrite bool) (solana.Instruction, error) {
	return b.build(instrAddService, &addServiceArgs{Service: s, AllowOverwrite: allowOverwrite}, true, b.mutate())
}

func (b *instructions) RemoveService(fragment string) (solana.Instruction, error) {
	return b.build(instrRemoveService, &fragmentArgs{Fragment: fragment}, true, b.mutate())
}

func (b *instructions) Close(destination solana.PublicKey) (solana.Instruction, error) {
	return b.build(instrClose, nil, true, solana.AccountMetaSlice{
		solana.NewAccountMeta(b.dataAccount, true, false),
		solana.NewAccountMeta(b.authority, false, true),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	})
}
