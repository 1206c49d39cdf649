package contracts

// zkStackChains lists chains whose deployment mechanism differs from the
// standard CREATE2 derivation. Address prediction must refuse these chains
// outright instead of computing a plausible-looking wrong address.
var zkStackChains = map[int64]struct{}{
	280:  {}, // zkSync Era testnet (goerli)
	300:  {}, // zkSync Era sepolia
	324:  {}, // zkSync Era mainnet
	388:  {}, // Cronos zkEVM
	552:  {}, // Gravity alpha
	8022: {}, // Sophon testnet
}

// IsZKStackChain reports whether the chain uses the zk-stack deployment
// mechanism that this package cannot derive addresses for.
func IsZKStackChain(chainID int64) bool {
	_, ok := zkStackChains[chainID]
	return ok
}
