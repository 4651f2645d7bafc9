package network

import (
	"math/big"

	"github.com/shopspring/decimal"
)

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func profile(p Profile) Profile {
	if p.RBFFactor.IsZero() {
		p.RBFFactor = decimal.RequireFromString("1.2")
	}
	if p.CoinGasLimit == 0 {
		p.CoinGasLimit = CoinGasLimit
	}
	if p.TokenGasLimit == 0 {
		p.TokenGasLimit = TokenGasLimit
	}
	if p.ContractGasLimit == 0 {
		p.ContractGasLimit = ContractGasLimit
	}
	if p.BIP44 == "" {
		p.BIP44 = "m/44'/60'/0'"
	}
	return p
}

//nolint:gochecknoglobals // Static network table
var mainnet = map[Platform]Profile{
	Ethereum: profile(Profile{
		Platform: Ethereum, Name: "Ethereum", ChainID: 1, MinConf: 12, EIP1559: true,
		MaxGasPrice: gwei(5000), Staking: true,
		TxURL:    "https://etherscan.io/tx/${txId}",
		TokenURL: "https://etherscan.io/token/${tokenAddress}",
	}),
	EthereumClassic: profile(Profile{
		Platform: EthereumClassic, Name: "Ethereum Classic", ChainID: 61, MinConf: 120,
		MaxGasPrice: gwei(5000), BIP44: "m/44'/61'/0'",
		TxURL:    "https://blockscout.com/etc/mainnet/tx/${txId}",
		TokenURL: "https://blockscout.com/etc/mainnet/token/${tokenAddress}",
	}),
	BinanceSmart: profile(Profile{
		Platform: BinanceSmart, Name: "BNB Smart Chain", ChainID: 56, MinConf: 15,
		MaxGasPrice: gwei(1000),
		TxURL:       "https://bscscan.com/tx/${txId}",
		TokenURL:    "https://bscscan.com/token/${tokenAddress}",
	}),
	Polygon: profile(Profile{
		Platform: Polygon, Name: "Polygon", ChainID: 137, MinConf: 128, EIP1559: true,
		MaxGasPrice: gwei(50000),
		TxURL:       "https://polygonscan.com/tx/${txId}",
		TokenURL:    "https://polygonscan.com/token/${tokenAddress}",
	}),
	AvalancheC: profile(Profile{
		Platform: AvalancheC, Name: "Avalanche C-Chain", ChainID: 43114, MinConf: 1, EIP1559: true,
		MaxGasPrice: gwei(10000),
		TxURL:       "https://snowtrace.io/tx/${txId}",
		TokenURL:    "https://snowtrace.io/token/${tokenAddress}",
	}),
	Arbitrum: profile(Profile{
		Platform: Arbitrum, Name: "Arbitrum One", ChainID: 42161, MinConf: 1, EIP1559: true,
		MaxGasPrice: gwei(1000),
		TxURL:    "https://arbiscan.io/tx/${txId}",
		TokenURL: "https://arbiscan.io/token/${tokenAddress}",
	}),
	Optimism: profile(Profile{
		Platform: Optimism, Name: "Optimism", ChainID: 10, MinConf: 1, EIP1559: true, AdditionalFee: true,
		MaxGasPrice: gwei(1000),
		TxURL:       "https://optimistic.etherscan.io/tx/${txId}",
		TokenURL:    "https://optimistic.etherscan.io/token/${tokenAddress}",
	}),
	Base: profile(Profile{
		Platform: Base, Name: "Base", ChainID: 8453, MinConf: 1, EIP1559: true, AdditionalFee: true,
		MaxGasPrice: gwei(1000),
		TxURL:       "https://basescan.org/tx/${txId}",
		TokenURL:    "https://basescan.org/token/${tokenAddress}",
	}),
	Fantom: profile(Profile{
		Platform: Fantom, Name: "Fantom", ChainID: 250, MinConf: 1, EIP1559: true,
		MaxGasPrice: gwei(50000),
		TxURL:       "https://ftmscan.com/tx/${txId}",
		TokenURL:    "https://ftmscan.com/token/${tokenAddress}",
	}),
}

//nolint:gochecknoglobals // Static network table
var testnet = map[Platform]Profile{
	Ethereum: profile(Profile{
		Platform: Ethereum, Name: "Sepolia", ChainID: 11155111, MinConf: 12, EIP1559: true,
		MaxGasPrice: gwei(5000), Staking: true,
		TxURL:    "https://sepolia.etherscan.io/tx/${txId}",
		TokenURL: "https://sepolia.etherscan.io/token/${tokenAddress}",
	}),
	EthereumClassic: profile(Profile{
		Platform: EthereumClassic, Name: "Mordor", ChainID: 63, MinConf: 12,
		MaxGasPrice: gwei(5000), BIP44: "m/44'/61'/0'",
		TxURL:    "https://blockscout.com/etc/mordor/tx/${txId}",
		TokenURL: "https://blockscout.com/etc/mordor/token/${tokenAddress}",
	}),
	BinanceSmart: profile(Profile{
		Platform: BinanceSmart, Name: "BNB Smart Chain Testnet", ChainID: 97, MinConf: 15,
		MaxGasPrice: gwei(1000),
		TxURL:       "https://testnet.bscscan.com/tx/${txId}",
		TokenURL:    "https://testnet.bscscan.com/token/${tokenAddress}",
	}),
	Polygon: profile(Profile{
		Platform: Polygon, Name: "Polygon Amoy", ChainID: 80002, MinConf: 12, EIP1559: true,
		MaxGasPrice: gwei(50000),
		TxURL:       "https://amoy.polygonscan.com/tx/${txId}",
		TokenURL:    "https://amoy.polygonscan.com/token/${tokenAddress}",
	}),
	AvalancheC: profile(Profile{
		Platform: AvalancheC, Name: "Avalanche Fuji", ChainID: 43113, MinConf: 1, EIP1559: true,
		MaxGasPrice: gwei(10000),
		TxURL:       "https://testnet.snowtrace.io/tx/${txId}",
		TokenURL:    "https://testnet.snowtrace.io/token/${tokenAddress}",
	}),
	Arbitrum: profile(Profile{
		Platform: Arbitrum, Name: "Arbitrum Sepolia", ChainID: 421614, MinConf: 1, EIP1559: true,
		MaxGasPrice: gwei(1000),
		TxURL:    "https://sepolia.arbiscan.io/tx/${txId}",
		TokenURL: "https://sepolia.arbiscan.io/token/${tokenAddress}",
	}),
	Optimism: profile(Profile{
		Platform: Optimism, Name: "OP Sepolia", ChainID: 11155420, MinConf: 1, EIP1559: true, AdditionalFee: true,
		MaxGasPrice: gwei(1000),
		TxURL:       "https://sepolia-optimism.etherscan.io/tx/${txId}",
		TokenURL:    "https://sepolia-optimism.etherscan.io/token/${tokenAddress}",
	}),
	Base: profile(Profile{
		Platform: Base, Name: "Base Sepolia", ChainID: 84532, MinConf: 1, EIP1559: true, AdditionalFee: true,
		MaxGasPrice: gwei(1000),
		TxURL:       "https://sepolia.basescan.org/tx/${txId}",
		TokenURL:    "https://sepolia.basescan.org/token/${tokenAddress}",
	}),
	Fantom: profile(Profile{
		Platform: Fantom, Name: "Fantom Testnet", ChainID: 4002, MinConf: 1, EIP1559: true,
		MaxGasPrice: gwei(50000),
		TxURL:       "https://testnet.ftmscan.com/tx/${txId}",
		TokenURL:    "https://testnet.ftmscan.com/token/${tokenAddress}",
	}),
}
