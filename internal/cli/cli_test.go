package cli

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/evmwallet/internal/config"
	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/output"
	"github.com/mrz1836/evmwallet/internal/seed"
	"github.com/mrz1836/evmwallet/internal/version"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

func TestVersionCommand(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := run(t, "--home", home, "-o", "json", "version")
	require.NoError(t, err)

	var info version.Info
	decodeJSON(t, stdout, &info)
	assert.Equal(t, version.Get().Version, info.Version)

	stdout, _, err = run(t, "--home", home, "-o", "text", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "evmwallet "))
}

func TestInitGlobals_FlagsOverrideConfig(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)

	_, _, err := run(t, "--home", home, "--platform", "base", "--development", "--log-level", "off", "version")
	require.NoError(t, err)

	require.NotNil(t, Config())
	assert.Equal(t, home, Config().GetHome())
	assert.Equal(t, "base", Config().Network.Platform)
	assert.True(t, Config().IsDevelopment())
	assert.Equal(t, "off", Config().GetLoggingLevel())
}

func TestInitGlobals_InvalidPlatform(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)

	_, _, err := run(t, "--home", home, "--platform", "dogecoin", "version")
	require.ErrorIs(t, err, walleterr.ErrConfigInvalid)
	assert.Equal(t, walleterr.ExitInput, ExitCode(err))
}

func TestInitGlobals_InvalidOutputFormat(t *testing.T) {
	home := t.TempDir()

	_, _, err := run(t, "--home", home, "-o", "yaml", "version")
	require.ErrorIs(t, err, output.ErrInvalidFormat)
	assert.Equal(t, walleterr.ExitInput, ExitCode(err))
}

func TestInitGlobals_MissingExplicitConfig(t *testing.T) {
	home := t.TempDir()

	_, _, err := run(t, "--home", home, "--config", home+"/nope.yaml", "version")
	require.Error(t, err)
}

func TestAddressCommand_CachesPublicKey(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	stdout, _, err := run(t, "--home", home, "-o", "text", "address")
	require.NoError(t, err)
	assert.Equal(t, testAddress+"\n", stdout)

	// The second run opens from the cached public key without prompting.
	stdout, _, err = run(t, "--home", home, "-o", "json", "address")
	require.NoError(t, err)

	var resp AddressResponse
	decodeJSON(t, stdout, &resp)
	assert.Equal(t, testAddress, resp.Address)
	assert.Equal(t, "binance-smart-chain", resp.Platform)
	assert.Equal(t, "BNB Smart Chain", resp.Network)
	assert.Empty(t, resp.TokenURL)
}

func TestAddressCommand_InvalidMnemonic(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, "either dismiss upset disease clump hazard paddle twist fetch tissue hello buyr")

	_, _, err := run(t, "--home", home, "address")
	require.ErrorIs(t, err, walleterr.ErrInvalidMnemonic)
	assert.Contains(t, walleterr.Code(err), walleterr.ErrInvalidMnemonic.Code)
}

func TestBalanceCommand(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	stdout, _, err := run(t, "--home", home, "-o", "json", "balance")
	require.NoError(t, err)

	var resp BalanceResponse
	decodeJSON(t, stdout, &resp)
	assert.Equal(t, testAddress, resp.Address)
	assert.Equal(t, "2", resp.Balance)
	assert.Equal(t, "BNB", resp.Symbol)
	assert.Empty(t, resp.CoinBalance)
}

func TestMaxAndFeeCommands(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	stdout, _, err := run(t, "--home", home, "-o", "json", "max")
	require.NoError(t, err)
	var maxResp AmountResponse
	decodeJSON(t, stdout, &maxResp)
	assert.Equal(t, "1.99937", maxResp.Amount)
	assert.Equal(t, uint64(21000), maxResp.GasLimit)

	stdout, _, err = run(t, "--home", home, "-o", "json", "fee", "--to", destination, "--amount", "0.5")
	require.NoError(t, err)
	var feeResp AmountResponse
	decodeJSON(t, stdout, &feeResp)
	assert.Equal(t, "0.00063", feeResp.Amount)

	stdout, _, err = run(t, "--home", home, "-o", "json", "fee", "--to", destination, "--amount", "0.5", "--gas-limit", "50000")
	require.NoError(t, err)
	decodeJSON(t, stdout, &feeResp)
	assert.Equal(t, "0.0015", feeResp.Amount)
	assert.Equal(t, uint64(50000), feeResp.GasLimit)

	_, _, err = run(t, "--home", home, "fee", "--to", destination, "--amount", "abc")
	require.ErrorIs(t, err, walleterr.ErrInvalidInput)

	_, _, err = run(t, "--home", home, "fee", "--to", "0x12", "--amount", "1")
	require.ErrorIs(t, err, walleterr.ErrInvalidAddress)
}

func TestSendCommand(t *testing.T) {
	node, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	// The first prompt unlocks the wallet; send always needs the seed.
	withPrompts(t, true, testMnemonic)

	stdout, stderr, err := run(t, "--home", home, "-o", "json", "send", "--to", destination, "--amount", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Network fee: 0.00063")

	var resp SendResponse
	decodeJSON(t, stdout, &resp)
	assert.Equal(t, "0xfeed", resp.TxID)
	assert.Equal(t, uint64(4), resp.Nonce)
	assert.Equal(t, "0.00063", resp.Fee)
	assert.Equal(t, "https://bscscan.com/tx/0xfeed", resp.URL)

	sent := node.sentRaw()
	require.Len(t, sent, 1)
	tx, from, err := evm.DecodeSigned(sent[0])
	require.NoError(t, err)
	assert.Equal(t, testAddress, from.Hex())
	assert.Equal(t, destination, strings.ToLower(tx.To().Hex()))
	assert.Equal(t, "1000000000000000000", tx.Value().String())
	assert.Equal(t, uint64(4), tx.Nonce())
}

func TestSendCommand_Declined(t *testing.T) {
	node, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, false, testMnemonic)

	_, _, err := run(t, "--home", home, "send", "--to", destination, "--amount", "1")
	require.ErrorIs(t, err, errCancelled)
	assert.Empty(t, node.sentRaw())
}

func TestSendCommand_TooMuch(t *testing.T) {
	node, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	_, _, err := run(t, "--home", home, "send", "--to", destination, "--amount", "2", "--yes")
	require.ErrorIs(t, err, walleterr.ErrBigAmount)
	assert.Equal(t, walleterr.ExitPermission, ExitCode(err))

	q, ok := walleterr.QuantityOf(err)
	require.True(t, ok)
	assert.Equal(t, "1.99937", q.String())
	assert.Empty(t, node.sentRaw())
}

func TestSendCommand_Max(t *testing.T) {
	node, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	_, _, err := run(t, "--home", home, "-o", "json", "send", "--to", destination, "--amount", "max", "--yes")
	require.NoError(t, err)

	sent := node.sentRaw()
	require.Len(t, sent, 1)
	tx, _, err := evm.DecodeSigned(sent[0])
	require.NoError(t, err)
	assert.Equal(t, "1999370000000000000", tx.Value().String())
}

func TestHistoryCommand(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	stdout, _, err := run(t, "--home", home, "-o", "json", "history")
	require.NoError(t, err)

	var resp HistoryResponse
	decodeJSON(t, stdout, &resp)
	require.Len(t, resp.Transactions, 1)
	tx := resp.Transactions[0]
	assert.Equal(t, pendingTxID, tx.ID)
	assert.False(t, tx.Incoming)
	assert.Equal(t, "pending", tx.Status)
	assert.True(t, tx.RBF)
	assert.Equal(t, "0.00063", tx.Fee)
	assert.Equal(t, "2023-11-14T22:13:20Z", tx.Timestamp)
	assert.False(t, resp.HasMore)

	stdout, _, err = run(t, "--home", home, "-o", "text", "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TXID")
	assert.Contains(t, stdout, "pending (replaceable)")
}

func TestReplaceCommand(t *testing.T) {
	node, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	stdout, stderr, err := run(t, "--home", home, "-o", "json", "replace", pendingTxID)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Raise fee by 20%")
	assert.Contains(t, stderr, "extra 0.000126")

	var resp SendResponse
	decodeJSON(t, stdout, &resp)
	assert.Equal(t, "0xfeed", resp.TxID)

	sent := node.sentRaw()
	require.Len(t, sent, 1)
	tx, _, err := evm.DecodeSigned(sent[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, "36000000000", tx.GasPrice().String())
}

func TestReplaceCommand_UnknownTransaction(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	_, _, err := run(t, "--home", home, "replace", "0xmissing")
	require.ErrorIs(t, err, walleterr.ErrNotFound)
	assert.Equal(t, walleterr.ExitNotFound, ExitCode(err))
}

func TestImportCommand(t *testing.T) {
	node, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic, "0x"+importKeyHex)

	stdout, stderr, err := run(t, "--home", home, "-o", "json", "import")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Import 0.99937 BNB into "+testAddress)

	var resp SendResponse
	decodeJSON(t, stdout, &resp)
	assert.Equal(t, "0xfeed", resp.TxID)

	sent := node.sentRaw()
	require.Len(t, sent, 1)
	tx, from, err := evm.DecodeSigned(sent[0])
	require.NoError(t, err)
	assert.Equal(t, importAddress, strings.ToLower(from.Hex()))
	assert.Equal(t, own(), strings.ToLower(tx.To().Hex()))
	assert.Equal(t, "999370000000000000", tx.Value().String())
}

func TestStakeCommand_NotSupported(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic)

	_, _, err := run(t, "--home", home, "stake", "info")
	require.ErrorIs(t, err, walleterr.ErrNotSupported)
}

func TestSeedEncrypt_ThenUnlock(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	withPrompts(t, true, testMnemonic, "correct horse", "correct horse", "correct horse")

	_, _, err := run(t, "--home", home, "-o", "text", "seed", "encrypt")
	require.NoError(t, err)
	assert.True(t, seed.VaultExists(seed.VaultPath(home)))

	info, err := os.Stat(seed.VaultPath(home))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Unlock with the passphrase instead of the words.
	stdout, _, err := run(t, "--home", home, "-o", "text", "address")
	require.NoError(t, err)
	assert.Equal(t, testAddress+"\n", stdout)

	_, _, err = run(t, "--home", home, "seed", "encrypt")
	require.ErrorIs(t, err, errVaultExists)
}

func TestSeedVault_WrongPassphrase(t *testing.T) {
	_, server := newFakeIndexer(t)
	home := setupHome(t, server.URL)
	require.NoError(t, seed.WriteVault(seed.VaultPath(home), testMnemonic, "correct horse"))
	withPrompts(t, true, "wrong horse")

	_, _, err := run(t, "--home", home, "address")
	require.ErrorIs(t, err, walleterr.ErrDecryptionFailed)
	assert.Equal(t, walleterr.ExitAuth, ExitCode(err))
}

func TestSeedEncrypt_PassphraseRules(t *testing.T) {
	home := t.TempDir()

	withPrompts(t, true, testMnemonic, "short")
	_, _, err := run(t, "--home", home, "seed", "encrypt")
	require.ErrorIs(t, err, walleterr.ErrInvalidInput)

	withPrompts(t, true, testMnemonic, "correct horse", "battery staple")
	_, _, err = run(t, "--home", home, "seed", "encrypt")
	require.ErrorIs(t, err, walleterr.ErrInvalidInput)
	assert.False(t, seed.VaultExists(seed.VaultPath(home)))
}

func TestSeedGenerate(t *testing.T) {
	home := t.TempDir()
	withPrompts(t, true, "correct horse", "correct horse")

	_, stderr, err := run(t, "--home", home, "-o", "text", "seed", "generate", "--words", "24")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Write these words down")

	mnemonic, err := seed.ReadVault(seed.VaultPath(home), "correct horse")
	require.NoError(t, err)
	defer mnemonic.Destroy()
	assert.Len(t, strings.Fields(mnemonic.String()), 24)
	require.NoError(t, seed.Validate(mnemonic.String()))

	withPrompts(t, true)
	_, _, err = run(t, "--home", t.TempDir(), "seed", "generate", "--words", "15")
	require.ErrorIs(t, err, seed.ErrInvalidWordCount)
}

func TestOpenStore(t *testing.T) {
	c := config.Defaults()
	c.Home = t.TempDir()
	c.Asset.ID = "ethereum@ethereum"

	c.Storage.Driver = config.StorageMemory
	s, closer, err := openStore(c)
	require.NoError(t, err)
	assert.Nil(t, closer)
	s.Set("k", "v")

	c.Storage.Driver = config.StorageBadger
	s, closer, err = openStore(c)
	require.NoError(t, err)
	require.NotNil(t, closer)
	s.Set("balance", "42")
	require.NoError(t, s.Save(t.Context()))
	require.NoError(t, closer.Close())

	s, closer, err = openStore(c)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()
	v, ok := s.Get("balance")
	require.True(t, ok)
	assert.Equal(t, "42", v)
}
