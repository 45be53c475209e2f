package wallet_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/chain/chaintest"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

type providerFixture struct {
	wallets  *wallet.Manager
	store    storage.Store
	backend  *chaintest.Backend
	mu       sync.Mutex
	dialed   []string
	approved int
}

func newProviderFixture(t *testing.T, withWallet bool) *providerFixture {
	t.Helper()
	f := &providerFixture{
		wallets: wallet.NewManager(wallet.WithInMemoryStore()),
		store:   storage.NewMemoryStore(),
		backend: chaintest.New(31337),
	}
	if withWallet {
		_, err := f.wallets.AddWithKey("dev", devKey)
		require.NoError(t, err)
	}
	return f
}

func (f *providerFixture) provider(approve bool) *wallet.LocalProvider {
	return wallet.NewLocalProvider(f.wallets, f.store, chain.NewRegistry(),
		wallet.NetworkConfig{Network: "localhost", Mode: chain.ModeMainnet},
		wallet.WithDialer(func(_ context.Context, url string) (chain.Backend, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.dialed = append(f.dialed, url)
			return f.backend, nil
		}),
		wallet.WithSelector(func(_ context.Context, urls []string, _ string) (string, error) {
			return urls[0], nil
		}),
		wallet.WithApprover(func([]string) bool {
			f.approved++
			return approve
		}),
	)
}

func TestConnectWithoutProvider(t *testing.T) {
	c := wallet.NewConnector(nil)

	_, err := c.Connect(context.Background())
	assert.ErrorIs(t, err, wallet.ErrProviderNotInstalled)

	_, ok := c.CheckConnection(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, c.SwitchChain(context.Background(), 1), wallet.ErrProviderNotInstalled)
	assert.Nil(t, c.Backend())
}

func TestConnectWithoutWallets(t *testing.T) {
	f := newProviderFixture(t, false)
	c := wallet.NewConnector(f.provider(true))

	_, err := c.Connect(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoAuthorizedAccount)
	assert.False(t, c.IsConnected())
}

func TestConnectReturnsPrimaryAccount(t *testing.T) {
	f := newProviderFixture(t, true)
	c := wallet.NewConnector(f.provider(true))

	account, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, devAddress, account)
	assert.Equal(t, int64(31337), c.ChainID())
	assert.True(t, c.IsConnected())
	assert.NotNil(t, c.Backend())
	assert.Equal(t, []string{"http://127.0.0.1:8545"}, f.dialed)

	v, ok, err := f.store.GetItem(config.KeyWalletAuthorized)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestConnectRejectedByUser(t *testing.T) {
	f := newProviderFixture(t, true)
	c := wallet.NewConnector(f.provider(false))

	_, err := c.Connect(context.Background())
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	assert.Equal(t, 1, f.approved)
}

func TestApprovalAskedOnlyOnce(t *testing.T) {
	f := newProviderFixture(t, true)
	p := f.provider(true)
	c := wallet.NewConnector(p)

	_, err := c.Connect(context.Background())
	require.NoError(t, err)
	_, err = c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.approved)
}

func TestCheckConnectionDoesNotPrompt(t *testing.T) {
	f := newProviderFixture(t, true)

	_, ok := wallet.NewConnector(f.provider(true)).CheckConnection(context.Background())
	assert.False(t, ok)
	assert.Zero(t, f.approved)

	_, err := wallet.NewConnector(f.provider(true)).Connect(context.Background())
	require.NoError(t, err)

	// A fresh provider over the same storage sees the earlier grant.
	c := wallet.NewConnector(f.provider(true))
	account, ok := c.CheckConnection(context.Background())
	assert.True(t, ok)
	assert.Equal(t, devAddress, account)
	assert.Equal(t, 1, f.approved)
}

func TestSwitchChainUnknown(t *testing.T) {
	f := newProviderFixture(t, true)
	c := wallet.NewConnector(f.provider(true))

	err := c.SwitchChain(context.Background(), 123456789)
	assert.ErrorIs(t, err, wallet.ErrUnknownChain)
}

func TestSwitchChainNotifiesObservers(t *testing.T) {
	f := newProviderFixture(t, true)
	p := f.provider(true)
	c := wallet.NewConnector(p)
	_, err := c.Connect(context.Background())
	require.NoError(t, err)

	var got []int64
	c.OnChainChanged(func(id int64) { got = append(got, id) })

	require.NoError(t, c.SwitchChain(context.Background(), 84532))
	assert.Equal(t, []int64{84532}, got)
	assert.Equal(t, int64(84532), c.ChainID())
	assert.Equal(t, "https://sepolia.base.org", f.dialed[len(f.dialed)-1])

	current, url := p.Network()
	assert.Equal(t, "base", current.Name)
	assert.Equal(t, "https://sepolia.base.org", url)
}

func TestRevokedAccessIsDisconnect(t *testing.T) {
	f := newProviderFixture(t, true)
	p := f.provider(true)
	c := wallet.NewConnector(p)
	_, err := c.Connect(context.Background())
	require.NoError(t, err)

	var disconnects, accountChanges int
	c.OnDisconnect(func() { disconnects++ })
	c.OnAccountsChanged(func([]string) { accountChanges++ })

	require.NoError(t, p.Disconnect())
	assert.Equal(t, 1, disconnects)
	assert.Zero(t, accountChanges)
	assert.False(t, c.IsConnected())

	_, ok := c.CheckConnection(context.Background())
	assert.False(t, ok)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f := newProviderFixture(t, true)
	p := f.provider(true)
	c := wallet.NewConnector(p)

	var n int
	cancel := c.Subscribe(func(wallet.Event) { n++ })
	_, err := c.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n, "first grant emits AccountsChanged")

	cancel()
	require.NoError(t, p.Disconnect())
	assert.Equal(t, 1, n)

	c.Close()
}

func TestClosedConnectorLeavesProviderBus(t *testing.T) {
	f := newProviderFixture(t, true)
	p := f.provider(true)

	first := wallet.NewConnector(p)
	second := wallet.NewConnector(p)
	require.Equal(t, 2, wallet.SubscriberCount(p))

	_, err := second.Connect(context.Background())
	require.NoError(t, err)
	_, ok := first.CheckConnection(context.Background())
	require.True(t, ok)

	first.Close()
	first.Close()
	assert.Equal(t, 1, wallet.SubscriberCount(p))

	// Only the open connector still follows the provider.
	require.NoError(t, p.Disconnect())
	assert.False(t, second.IsConnected())
	assert.True(t, first.IsConnected())

	second.Close()
	assert.Zero(t, wallet.SubscriberCount(p))
}

func TestWatchReportsChainChangeAndOutage(t *testing.T) {
	f := newProviderFixture(t, true)
	p := f.provider(true)
	c := wallet.NewConnector(p)
	_, err := c.Connect(context.Background())
	require.NoError(t, err)

	events := make(chan wallet.Event, 16)
	c.Subscribe(func(ev wallet.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Watch(ctx, 5*time.Millisecond)

	f.backend.SetChainID(1)
	select {
	case ev := <-events:
		assert.Equal(t, wallet.ChainChanged{ChainID: 1}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no ChainChanged event")
	}

	f.backend.FailChainID(errors.New("connection refused"))
	select {
	case ev := <-events:
		_, ok := ev.(wallet.Disconnected)
		assert.True(t, ok, "got %T", ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no Disconnected event")
	}
	assert.False(t, c.IsConnected())

	f.backend.FailChainID(nil)
	select {
	case ev := <-events:
		changed, ok := ev.(wallet.AccountsChanged)
		require.True(t, ok, "got %T", ev)
		assert.NotEmpty(t, changed.Accounts)
	case <-time.After(2 * time.Second):
		t.Fatal("no AccountsChanged event after recovery")
	}
	assert.True(t, c.IsConnected())
}

func TestSignerForConnectedAccount(t *testing.T) {
	f := newProviderFixture(t, true)
	c := wallet.NewConnector(f.provider(true))

	_, err := c.Signer(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNotConnected)

	_, err = c.Connect(context.Background())
	require.NoError(t, err)
	opts, err := c.Signer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(devAddress), opts.From)
}
