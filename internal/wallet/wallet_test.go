package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anvil 默认账户 #1
const (
	testKey     = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

type fakeBackend struct {
	chainId *big.Int
	nonce   uint64
	sent    []*types.Transaction
	sendErr error
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) { return f.chainId, nil }
func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}
func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (f *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 21000 + uint64(len(msg.Data))*16, nil
}
func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.nonce++
	return nil
}

func TestKeyedWallet_SendTransaction(t *testing.T) {
	backend := &fakeBackend{chainId: big.NewInt(31337), nonce: 4}
	w, err := NewKeyedWallet(testKey, big.NewInt(31337), backend)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), w.Address())

	to := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	_, err = w.SendTransaction(context.Background(), to, []byte{1, 2, 3, 4}, nil)
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, w.Connect(context.Background()))
	assert.True(t, w.IsConnected())

	hash, err := w.SendTransaction(context.Background(), to, []byte{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint64(4), tx.Nonce())
	assert.Equal(t, to, *tx.To())
	assert.Equal(t, []byte{1, 2, 3, 4}, tx.Data())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), sender)

	w.Disconnect()
	assert.False(t, w.IsConnected())
}

func TestKeyedWallet_ChainMismatch(t *testing.T) {
	w, err := NewKeyedWallet(testKey, big.NewInt(84532), &fakeBackend{chainId: big.NewInt(31337)})
	require.NoError(t, err)
	assert.Error(t, w.Connect(context.Background()))
	assert.False(t, w.IsConnected())
}

func TestKeyedWallet_BadKey(t *testing.T) {
	_, err := NewKeyedWallet("0xnothex", big.NewInt(1), &fakeBackend{})
	assert.Error(t, err)
}

type ethService struct {
	accounts []common.Address
	last     *sendTxArgs
}

func (s *ethService) Accounts() []common.Address {
	return s.accounts
}

func (s *ethService) SendTransaction(args sendTxArgs) common.Hash {
	s.last = &args
	return common.HexToHash("0xbeef")
}

func newNodeClient(t *testing.T, service *ethService) *rpc.Client {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", service))
	client := rpc.DialInProc(server)
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	return client
}

func TestNodeWallet(t *testing.T) {
	first := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	second := common.HexToAddress(testAddress)
	service := &ethService{accounts: []common.Address{first, second}}
	ctx := context.Background()

	w := NewNodeWallet(newNodeClient(t, service), "")
	require.NoError(t, w.Connect(ctx))
	assert.Equal(t, first, w.Address())

	w = NewNodeWallet(newNodeClient(t, service), testAddress)
	require.NoError(t, w.Connect(ctx))
	assert.Equal(t, second, w.Address())

	to := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	hash, err := w.SendTransaction(ctx, to, []byte{0xab}, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xbeef"), hash)
	require.NotNil(t, service.last)
	assert.Equal(t, second, service.last.From)
	assert.Equal(t, to, service.last.To)
	assert.Equal(t, hexutil.Bytes{0xab}, service.last.Data)
	assert.Equal(t, int64(7), service.last.Value.ToInt().Int64())
}

func TestNodeWallet_UnknownFrom(t *testing.T) {
	service := &ethService{accounts: []common.Address{common.HexToAddress(testAddress)}}
	w := NewNodeWallet(newNodeClient(t, service), "0x0000000000000000000000000000000000000001")
	assert.Error(t, w.Connect(context.Background()))

	empty := NewNodeWallet(newNodeClient(t, &ethService{}), "")
	assert.Error(t, empty.Connect(context.Background()))
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(config.WalletConfig{Provider: "ledger"}, 1, nil)
	assert.Error(t, err)
}

type receiptSeq struct {
	calls    int
	readyAt  int
	status   uint64
	otherErr error
}

func (r *receiptSeq) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	r.calls++
	if r.otherErr != nil {
		return nil, r.otherErr
	}
	if r.calls < r.readyAt {
		return nil, ethereum.NotFound
	}
	return &types.Receipt{Status: r.status, TxHash: hash}, nil
}

func TestWaitMined(t *testing.T) {
	ctx := context.Background()
	hash := common.HexToHash("0x01")

	seq := &receiptSeq{readyAt: 3, status: types.ReceiptStatusSuccessful}
	receipt, err := WaitMined(ctx, seq, hash, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, hash, receipt.TxHash)
	assert.Equal(t, 3, seq.calls)

	_, err = WaitMined(ctx, &receiptSeq{readyAt: 1, status: types.ReceiptStatusFailed}, hash, time.Millisecond)
	assert.Error(t, err)

	_, err = WaitMined(ctx, &receiptSeq{otherErr: errors.New("boom")}, hash, time.Millisecond)
	assert.EqualError(t, err, "boom")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = WaitMined(cancelled, &receiptSeq{readyAt: 100}, hash, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}
