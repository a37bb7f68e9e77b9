package soldid

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testKey(seed byte) solana.PrivateKey {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}

	return solana.PrivateKey(ed25519.NewKeyFromSeed(s))
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcErrorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// fakeChain answers the handful of JSON-RPC calls the DID service makes
type fakeChain struct {
	t *testing.T

	mu       sync.Mutex
	accounts map[string][]byte
	owner    solana.PublicKey
	sent     []*solana.Transaction
	calls    map[string]int

	sendErr  *rpcErrorBody
	status   string
	statusTx interface{}

	srv *httptest.Server
}

func newFakeChain(t *testing.T) *fakeChain {
	f := &fakeChain{
		t:        t,
		accounts: map[string][]byte{},
		owner:    DefaultProgramID,
		calls:    map[string]int{},
		status:   string(rpc.CommitmentFinalized),
	}

	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeChain) client() *rpc.Client {
	return rpc.New(f.srv.URL)
}

// setAccount stores acct at addr padded to allocated bytes
func (f *fakeChain) setAccount(addr solana.PublicKey, acct *DidAccount, allocated int) {
	data, err := acct.Encode()
	require.NoError(f.t, err)

	if allocated > len(data) {
		data = append(data, make([]byte, allocated-len(data))...)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[addr.String()] = data
}

func (f *fakeChain) sentTransactions() []*solana.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*solana.Transaction{}, f.sent...)
}

func (f *fakeChain) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeChain) handle(w http.ResponseWriter, r *http.Request) {
	req := &rpcRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.Method]++

	ctx := map[string]interface{}{"slot": 1}

	var result interface{}
	var rpcErr *rpcErrorBody

	switch req.Method {
	case "getAccountInfo":
		var addr string
		json.Unmarshal(req.Params[0], &addr)

		data, ok := f.accounts[addr]
		if !ok {
			result = map[string]interface{}{"context": ctx, "value": nil}
			break
		}
		result = map[string]interface{}{
			"context": ctx,
			"value": map[string]interface{}{
				"lamports":   1000000,
				"owner":      f.owner.String(),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
				"rentEpoch":  0,
			},
		}
	case "getLatestBlockhash":
		result = map[string]interface{}{
			"context": ctx,
			"value": map[string]interface{}{
				"blockhash":            solana.Hash(testKey(9).PublicKey()).String(),
				"lastValidBlockHeight": 100,
			},
		}
	case "sendTransaction":
		if f.sendErr != nil {
			rpcErr = f.sendErr
			break
		}

		var encoded string
		json.Unmarshal(req.Params[0], &encoded)
		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(f.t, err)

		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		require.NoError(f.t, err)

		if err := f.apply(tx); err != nil {
			rpcErr = &rpcErrorBody{
				Code:    -32002,
				Message: "Transaction simulation failed",
				Data:    map[string]interface{}{"logs": []string{"Program log: " + err.Error()}},
			}
			break
		}

		f.sent = append(f.sent, tx)
		result = tx.Signatures[0].String()
	case "getSignatureStatuses":
		result = map[string]interface{}{
			"context": ctx,
			"value": []interface{}{map[string]interface{}{
				"slot":               1,
				"confirmations":      nil,
				"err":                f.statusTx,
				"confirmationStatus": f.status,
			}},
		}
	default:
		rpcErr = &rpcErrorBody{Code: -32601, Message: "method not found"}
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// instructionAccounts resolves the account keys of compiled instruction i
func instructionAccounts(tx *solana.Transaction, i int) []solana.PublicKey {
	ci := tx.Message.Instructions[i]

	keys := make([]solana.PublicKey, 0, len(ci.Accounts))
	for _, idx := range ci.Accounts {
		keys = append(keys, tx.Message.AccountKeys[idx])
	}

	return keys
}

func instructionProgram(tx *solana.Transaction, i int) solana.PublicKey {
	return tx.Message.AccountKeys[tx.Message.Instructions[i].ProgramIDIndex]
}

var programInstructions = map[[discriminatorSize]byte]string{}

func init() {
	for _, n := range []string{
		instrInitialize,
		instrResize,
		instrAddVerificationMethod,
		instrRemoveVerificationMethod,
		instrAddService,
		instrRemoveService,
		instrClose,
	} {
		programInstructions[discriminator("global", n)] = n
	}
}

// apply executes the DID program instructions of tx against the stored
// accounts, all or nothing. Callers hold f.mu.
func (f *fakeChain) apply(tx *solana.Transaction) error {
	state := map[string][]byte{}
	for k, v := range f.accounts {
		state[k] = v
	}

	for i, ci := range tx.Message.Instructions {
		if !instructionProgram(tx, i).Equals(DefaultProgramID) {
			continue
		}

		data := []byte(ci.Data)
		if len(data) < discriminatorSize {
			return errors.New("instruction data too short")
		}

		var d [discriminatorSize]byte
		copy(d[:], data)
		name, ok := programInstructions[d]
		if !ok {
			return errors.New("unknown instruction")
		}

		if err := execute(state, name, data[discriminatorSize:], instructionAccounts(tx, i)); err != nil {
			return errors.Wrap(err, name)
		}
	}

	f.accounts = state
	return nil
}

func execute(state map[string][]byte, name string, args []byte, accts []solana.PublicKey) error {
	addr := accts[0].String()
	current, exists := state[addr]

	if name == instrInitialize {
		if exists {
			return errors.New("account already in use")
		}

		authority := accts[1]
		_, bump, err := NewIdentifier(authority, "").DataAccount(DefaultProgramID)
		if err != nil {
			return err
		}

		return store(state, addr, NewDidAccount(authority, bump), int(binary.LittleEndian.Uint32(args)))
	}

	if !exists {
		return errors.New("account not initialized")
	}

	acct, err := DecodeAccount(current)
	if err != nil {
		return err
	}

	var next *DidAccount
	switch name {
	case instrResize:
		return store(state, addr, acct, int(binary.LittleEndian.Uint32(args)))
	case instrClose:
		delete(state, addr)
		return nil
	case instrAddService:
		a := &addServiceArgs{}
		if err := bin.NewBorshDecoder(args).Decode(a); err != nil {
			return err
		}
		next, err = acct.WithService(a.Service, a.AllowOverwrite)
	case instrRemoveService:
		a := &fragmentArgs{}
		if err := bin.NewBorshDecoder(args).Decode(a); err != nil {
			return err
		}
		next, err = acct.WithoutService(a.Fragment)
	case instrAddVerificationMethod:
		vm := &VerificationMethod{}
		if err := bin.NewBorshDecoder(args).Decode(vm); err != nil {
			return err
		}
		next, err = acct.WithVerificationMethod(*vm)
	case instrRemoveVerificationMethod:
		a := &fragmentArgs{}
		if err := bin.NewBorshDecoder(args).Decode(a); err != nil {
			return err
		}
		next, err = acct.WithoutVerificationMethod(a.Fragment)
	}
	if err != nil {
		return err
	}

	return store(state, addr, next, len(current))
}

// store writes acct padded to allocated bytes, failing when it does not fit
func store(state map[string][]byte, addr string, acct *DidAccount, allocated int) error {
	data, err := acct.Encode()
	if err != nil {
		return err
	}

	if len(data) > allocated {
		return errors.Errorf("account data too small: need %d, allocated %d", len(data), allocated)
	}

	state[addr] = append(data, make([]byte, allocated-len(data))...)
	return nil
}
