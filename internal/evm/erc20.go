package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// TransferSelector is keccak256("transfer(address,uint256)")[0:4].
const TransferSelector = "a9059cbb"

const erc20ABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

//nolint:gochecknoglobals // parsed once
var parsedERC20 = mustParseABI(erc20ABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// TransferData returns the call data of transfer(to, value).
func TransferData(to string, value *big.Int) ([]byte, error) {
	addr, err := NormalizeAddress(to)
	if err != nil {
		return nil, err
	}
	if value == nil || value.Sign() < 0 {
		return nil, fmt.Errorf("%w: transfer value must be non-negative", ErrInvalidTransaction)
	}

	data, err := parsedERC20.Pack("transfer", common.HexToAddress(addr), value)
	if err != nil {
		return nil, fmt.Errorf("packing transfer: %w", err)
	}
	return data, nil
}

// TransferDataHex returns TransferData as a 0x-prefixed hex string.
func TransferDataHex(to string, value *big.Int) (string, error) {
	data, err := TransferData(to, value)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(data), nil
}
