package soldid

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func globalDisc(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

func borshString(s string) []byte {
	b := make([]byte, 4, 4+len(s))
	binary.LittleEndian.PutUint32(b, uint32(len(s)))
	return append(b, s...)
}

func testInstructions() *instructions {
	return &instructions{
		programID:   DefaultProgramID,
		dataAccount: testKey(10).PublicKey(),
		authority:   testKey(1).PublicKey(),
	}
}

func ixData(t *testing.T, ix solana.Instruction) []byte {
	d, err := ix.Data()
	require.NoError(t, err)
	return d
}

func TestInitializeInstruction(t *testing.T) {
	b := testInstructions()
	payer := testKey(2).PublicKey()

	ix, err := b.Initialize(payer, 84)
	require.NoError(t, err)

	want := append(globalDisc("initialize"), 84, 0, 0, 0)
	assert.Equal(t, want, ixData(t, ix))
	assert.Equal(t, DefaultProgramID, ix.ProgramID())

	accts := ix.Accounts()
	require.Len(t, accts, 4)
	assert.Equal(t, b.dataAccount, accts[0].PublicKey)
	assert.True(t, accts[0].IsWritable)
	assert.Equal(t, b.authority, accts[1].PublicKey)
	assert.True(t, accts[1].IsSigner)
	assert.Equal(t, payer, accts[2].PublicKey)
	assert.True(t, accts[2].IsSigner)
	assert.True(t, accts[2].IsWritable)
	assert.Equal(t, solana.SystemProgramID, accts[3].PublicKey)
}

func TestResizeInstruction(t *testing.T) {
	b := testInstructions()
	payer := testKey(2).PublicKey()

	ix, err := b.Resize(payer, 300)
	require.NoError(t, err)

	want := append(globalDisc("resize"), 0x2c, 0x01, 0, 0, optionNone)
	assert.Equal(t, want, ixData(t, ix))

	accts := ix.Accounts()
	require.Len(t, accts, 4)
	assert.Equal(t, payer, accts[1].PublicKey)
	assert.Equal(t, b.authority, accts[2].PublicKey)
}

func TestAddServiceInstruction(t *testing.T) {
	ix, err := testInstructions().AddService(Service{
		Fragment:        "agent",
		ServiceType:     "TestService",
		ServiceEndpoint: "https://test-service.com",
	}, true)
	require.NoError(t, err)

	want := bytes.NewBuffer(globalDisc("add_service"))
	want.Write(borshString("agent"))
	want.Write(borshString("TestService"))
	want.Write(borshString("https://test-service.com"))
	want.WriteByte(1)
	want.WriteByte(optionNone)

	assert.Equal(t, want.Bytes(), ixData(t, ix))
	assert.Len(t, ix.Accounts(), 2)
}

func TestAddVerificationMethodInstruction(t *testing.T) {
	key := testKey(2).PublicKey().Bytes()

	ix, err := testInstructions().AddVerificationMethod(VerificationMethod{
		Fragment:   "key-2",
		Flags:      uint16(FlagAssertion | FlagKeyAgreement),
		MethodType: uint8(MethodTypeEd25519VerificationKey2018),
		KeyData:    key,
	})
	require.NoError(t, err)

	want := bytes.NewBuffer(globalDisc("add_verification_method"))
	want.Write(borshString("key-2"))
	want.Write([]byte{6, 0})
	want.WriteByte(0)
	want.Write([]byte{32, 0, 0, 0})
	want.Write(key)
	want.WriteByte(optionNone)

	assert.Equal(t, want.Bytes(), ixData(t, ix))
}

func TestRemoveInstructions(t *testing.T) {
	b := testInstructions()

	ix, err := b.RemoveService("agent")
	require.NoError(t, err)
	assert.Equal(t, append(append(globalDisc("remove_service"), borshString("agent")...), optionNone), ixData(t, ix))

	ix, err = b.RemoveVerificationMethod("key-2")
	require.NoError(t, err)
	assert.Equal(t, append(append(globalDisc("remove_verification_method"), borshString("key-2")...), optionNone), ixData(t, ix))
}

func TestCloseInstruction(t *testing.T) {
	b := testInstructions()
	dest := testKey(3).PublicKey()

	ix, err := b.Close(dest)
	require.NoError(t, err)
	assert.Equal(t, append(globalDisc("close"), optionNone), ixData(t, ix))

	accts := ix.Accounts()
	require.Len(t, accts, 4)
	assert.Equal(t, dest, accts[2].PublicKey)
	assert.True(t, accts[2].IsWritable)
	assert.False(t, accts[2].IsSigner)
}
