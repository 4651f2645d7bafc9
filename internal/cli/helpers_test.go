package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/evmwallet/internal/config"
	"github.com/mrz1836/evmwallet/internal/network"
)

const (
	testMnemonic  = "either dismiss upset disease clump hazard paddle twist fetch tissue hello buyer"
	testAddress   = "0xfaAd0567f7a6CD4a583F49967D21A07af8f0B4B6"
	importKeyHex  = "d1c8e18ef9265b8e58c1d66318fd2a8366839960b71afab031ef0c3ceb324e8d"
	importAddress = "0x840f6500ee60c0acfb13cd40cbeba501d7226fda"
	destination   = "0x2a6acbb6ab2fbcc8ea3d6fa0d5a3eac8bbc9d0a1"
	pendingTxID   = "0xabc"
)

func own() string { return strings.ToLower(testAddress) }

// fakeIndexer serves the indexer routes the CLI reaches.
type fakeIndexer struct {
	mu       sync.Mutex
	balances map[string]string
	txs      []map[string]any
	sent     []string
}

func newFakeIndexer(t *testing.T) (*fakeIndexer, *httptest.Server) {
	t.Helper()

	f := &fakeIndexer{
		balances: map[string]string{
			own():         "2000000000000000000",
			importAddress: "1000000000000000000",
		},
		txs: []map[string]any{{
			"_id":           pendingTxID,
			"from":          own(),
			"to":            destination,
			"value":         "1000000000000000",
			"gas":           "21000",
			"gasPrice":      "30000000000",
			"nonce":         "3",
			"timestamp":     1700000000,
			"confirmations": 0,
		}},
	}

	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeIndexer) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	var body any
	switch {
	case strings.HasPrefix(p, "addr/") && strings.HasSuffix(p, "/balance"):
		bal, ok := f.balances[strings.TrimSuffix(strings.TrimPrefix(p, "addr/"), "/balance")]
		if !ok {
			bal = "0"
		}
		body = map[string]string{"balance": bal, "confirmedBalance": bal}
	case strings.HasSuffix(p, "/txsCount"):
		body = map[string]int{"count": 4}
	case strings.HasSuffix(p, "/txs"):
		body = map[string]any{"txs": f.txs, "limit": 20}
	case p == "gasPrice":
		body = map[string]string{"price": "30000000000"}
	case p == "tx/send":
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.sent = append(f.sent, req["rawtx"])
		body = map[string]string{"txId": "0xfeed"}
	case strings.HasPrefix(p, "tx/"):
		id := strings.TrimPrefix(p, "tx/")
		for _, tx := range f.txs {
			if tx["_id"] == id {
				body = tx
			}
		}
		if body == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeIndexer) sentRaw() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// setupHome writes a config for a BSC coin wallet against indexerURL.
func setupHome(t *testing.T, indexerURL string) string {
	t.Helper()

	home := t.TempDir()
	c := config.Defaults()
	c.Home = home
	c.Network.Platform = string(network.BinanceSmart)
	c.Network.IndexerURL = indexerURL
	c.Network.Retry = config.RetryConfig{MaxAttempts: 1}
	c.Network.RatePerSecond = 1000
	c.Network.Burst = 1000
	c.Asset = config.AssetConfig{ID: "bnb@binance-smart-chain", Symbol: "BNB", Decimals: 18, Type: config.AssetCoin}
	c.Storage.Driver = config.StorageFile
	c.Logging.Level = "off"
	c.Logging.File = ""

	require.NoError(t, config.Save(c, config.Path(home)))
	return home
}

// withPrompts answers hidden prompts from secrets in order and every
// confirmation with confirm. Restored on cleanup.
func withPrompts(t *testing.T, confirm bool, secrets ...string) {
	t.Helper()

	origSecret, origConfirm := promptSecretFn, promptConfirmFn
	t.Cleanup(func() {
		promptSecretFn, promptConfirmFn = origSecret, origConfirm
	})

	var mu sync.Mutex
	queue := append([]string(nil), secrets...)
	promptSecretFn = func(prompt string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(queue) == 0 {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		next := queue[0]
		queue = queue[1:]
		return []byte(next), nil
	}
	promptConfirmFn = func(string) bool { return confirm }
}

// resetFlags restores every flag to its default so commands run
// independently.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(data), v), data)
}
