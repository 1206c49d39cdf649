package account

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/contracts"
)

// ErrZKStackChain signals that the target chain deploys accounts through a
// mechanism this derivation cannot model. Prediction fails closed instead of
// returning a plausible-looking wrong address.
var ErrZKStackChain = errors.New("address prediction is not supported on zk-stack chains")

const (
	addressLength = 20
	wordLength    = 32
)

// PredictRequest carries everything the CREATE2 derivation needs.
type PredictRequest struct {
	ChainID        int64
	Factory        common.Address
	Singleton      common.Address
	Config         *Config
	SaltNonce      *big.Int
	AccountVersion string
}

// PredictAddress computes the deterministic deployment address of an account
// before it is deployed:
//
//	salt      = keccak256(keccak256(initializer) ++ pad32(saltNonce))
//	initCode  = proxyCreationCode(version) ++ pad32(singleton)
//	predicted = keccak256(0xff ++ factory ++ salt ++ keccak256(initCode))[12:]
//
// Every encoding step is a strict external contract with the factory; any
// deviation silently breaks prediction.
func PredictAddress(req PredictRequest) (common.Address, error) {
	if contracts.IsZKStackChain(req.ChainID) {
		return common.Address{}, errors.Wrapf(ErrZKStackChain, "chain %d", req.ChainID)
	}

	initializer, err := EncodeSetup(req.Config, req.AccountVersion)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to encode setup initializer")
	}

	proxyCode, err := contracts.ProxyCreationCode(req.AccountVersion)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to select proxy creation code")
	}

	saltNonce := req.SaltNonce
	if saltNonce == nil {
		saltNonce = new(big.Int)
	}

	saltPreimage := make([]byte, 0, wordLength+wordLength)
	saltPreimage = append(saltPreimage, crypto.Keccak256(initializer)...)
	saltPreimage = append(saltPreimage, common.LeftPadBytes(saltNonce.Bytes(), wordLength)...)
	salt := crypto.Keccak256(saltPreimage)

	initCode := make([]byte, 0, len(proxyCode)+wordLength)
	initCode = append(initCode, proxyCode...)
	initCode = append(initCode, common.LeftPadBytes(req.Singleton.Bytes(), wordLength)...)

	preimage := make([]byte, 0, 1+addressLength+wordLength+wordLength)
	preimage = append(preimage, 0xff)
	preimage = append(preimage, req.Factory.Bytes()...)
	preimage = append(preimage, salt...)
	preimage = append(preimage, crypto.Keccak256(initCode)...)

	hash := crypto.Keccak256(preimage)

	return common.BytesToAddress(hash[wordLength-addressLength:]), nil
}
