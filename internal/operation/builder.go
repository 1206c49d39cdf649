package operation

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-relayer/internal/account"
)

// BootstrapStepKind identifies one bootstrap sub-operation.
type BootstrapStepKind string

const (
	StepEnableModule           BootstrapStepKind = "enable_module"
	StepApproveToken           BootstrapStepKind = "approve_token"
	StepConfigurePasskeySigner BootstrapStepKind = "configure_passkey_signer"
)

// BootstrapStep is one ordered sub-operation of the account deployment call.
// Order is significant: the module must be enabled before later steps run in
// the same deployment transaction.
type BootstrapStep struct {
	Kind BootstrapStepKind
	Tx   BatchTx
}

// PaymasterConfig describes the paymaster the operation should use.
type PaymasterConfig struct {
	Address common.Address

	// Data is appended to the paymaster address in paymasterAndData.
	Data []byte

	// Sponsoring marks a paymaster that sponsors the operation itself; no
	// token approval is needed in that case.
	Sponsoring bool

	// Token is the fee token the paymaster pulls from, zero when none.
	Token common.Address

	// ApproveAmount overrides the token allowance granted during bootstrap.
	// Nil grants the maximum uint256 allowance once, so no further approval
	// operation is ever needed.
	ApproveAmount *big.Int
}

// PasskeyConfig carries the shared passkey signer and the public key
// coordinates configured into it during bootstrap.
type PasskeyConfig struct {
	SharedSigner common.Address
	X            *big.Int
	Y            *big.Int
	Verifiers    *big.Int
}

// BootstrapParams are the inputs for assembling a not-yet-deployed account.
type BootstrapParams struct {
	Owners      []common.Address
	Threshold   int
	ModuleSetup common.Address
	Module      common.Address
	MultiSend   common.Address
	Paymaster   *PaymasterConfig
	Passkey     *PasskeyConfig
}

// BootstrapResult is the assembled deployment call plus the final account
// configuration it implies.
type BootstrapResult struct {
	To     common.Address
	Data   []byte
	Steps  []BootstrapStep
	Config *account.Config
}

// BuildParams are the inputs for producing the operation payload.
type BuildParams struct {
	Account    account.Account
	Batch      []BatchTx
	EntryPoint common.Address
	Module     common.Address
	MultiSend  common.Address
	InitCode   []byte // deployment initCode for an undeployed account
	Paymaster  *PaymasterConfig
	Tag        []byte // inert attribution bytes appended to the call payload
	ValidAfter string
	ValidUntil string
}

// Builder assembles bootstrap deployment calls and operation payloads.
type Builder interface {
	// BuildBootstrap assembles the ordered bootstrap steps for an undeployed
	// account and collapses or aggregates them into one deployment call.
	BuildBootstrap(ctx context.Context, params BootstrapParams) (*BootstrapResult, error)

	// BuildOperation produces the operation payload for a new or deployed
	// account. Gas fields are left for the estimation pipeline.
	BuildOperation(ctx context.Context, params BuildParams) (*Operation, error)
}

type builder struct{}

// NewBuilder creates an operation builder.
//
//nolint:ireturn
func NewBuilder() Builder {
	return &builder{}
}

const (
	enableModulesSignature   = "enableModules(address[])"
	approveSignature         = "approve(address,uint256)"
	configureSignerSignature = "configure((uint256,uint256,uint176))"
	executeUserOpSignature   = "executeUserOp(address,uint256,bytes,uint8)"
	createProxySignature     = "createProxyWithNonce(address,bytes,uint256)"
	maxApprovalBits          = 256
)

// maxUint256 is the "approve once, never again" default allowance.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), maxApprovalBits), big.NewInt(1))

func (b *builder) BuildBootstrap(_ context.Context, params BootstrapParams) (*BootstrapResult, error) {
	if len(params.Owners) == 0 {
		return nil, errors.New("bootstrap requires at least one owner")
	}
	if params.Threshold < 1 {
		return nil, errors.New("bootstrap requires a threshold of at least 1")
	}

	owners := make([]common.Address, len(params.Owners))
	copy(owners, params.Owners)

	steps := make([]BootstrapStep, 0, 3)

	// Module enablement always comes first and runs in the account's own
	// storage context during construction.
	enableData, err := encodeCall(enableModulesSignature, abi.Arguments{{Type: typeAddressSlice}}, []common.Address{params.Module})
	if err != nil {
		return nil, err
	}
	steps = append(steps, BootstrapStep{
		Kind: StepEnableModule,
		Tx:   BatchTx{Kind: DelegateCall, To: params.ModuleSetup, Data: enableData},
	})

	if pm := params.Paymaster; pm != nil && !pm.Sponsoring && pm.Token != (common.Address{}) {
		amount := pm.ApproveAmount
		if amount == nil {
			amount = maxUint256
		}

		approveData, err := encodeCall(approveSignature, abi.Arguments{{Type: typeAddress}, {Type: typeUint256}}, pm.Address, amount)
		if err != nil {
			return nil, err
		}
		steps = append(steps, BootstrapStep{
			Kind: StepApproveToken,
			Tx:   BatchTx{Kind: Call, To: pm.Token, Data: approveData},
		})
	}

	if pk := params.Passkey; pk != nil {
		verifiers := pk.Verifiers
		if verifiers == nil {
			verifiers = new(big.Int)
		}

		configureData, err := encodeCall(configureSignerSignature,
			abi.Arguments{{Type: typeUint256}, {Type: typeUint256}, {Type: typeUint176}},
			pk.X, pk.Y, verifiers)
		if err != nil {
			return nil, err
		}
		steps = append(steps, BootstrapStep{
			Kind: StepConfigurePasskeySigner,
			Tx:   BatchTx{Kind: DelegateCall, To: pk.SharedSigner, Data: configureData},
		})

		// The shared signer must be an owner so it can later satisfy the
		// signing precondition.
		if !containsAddress(owners, pk.SharedSigner) {
			owners = append(owners, pk.SharedSigner)
		}
	}

	var (
		target common.Address
		data   []byte
	)

	if len(steps) == 1 {
		// No aggregator indirection for the common single-step case.
		target = steps[0].Tx.To
		data = steps[0].Tx.Data
	} else {
		txs := make([]BatchTx, 0, len(steps))
		for _, step := range steps {
			txs = append(txs, step.Tx)
		}

		data, err = EncodeMultiSendCall(txs)
		if err != nil {
			return nil, err
		}
		target = params.MultiSend
	}

	cfg := &account.Config{
		Owners:          owners,
		Threshold:       params.Threshold,
		To:              target,
		Data:            data,
		FallbackHandler: params.Module,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("component", "operation_builder").
		Int("steps", len(steps)).
		Str("target", target.Hex()).
		Msg("Assembled bootstrap deployment call")

	return &BootstrapResult{To: target, Data: data, Steps: steps, Config: cfg}, nil
}

func (b *builder) BuildOperation(ctx context.Context, params BuildParams) (*Operation, error) {
	if params.Account == nil {
		return nil, errors.New("operation requires an account")
	}
	if len(params.Batch) == 0 {
		return nil, errors.New("operation requires at least one transaction")
	}

	deployed, err := params.Account.IsDeployed(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read account deployment state")
	}

	if deployed {
		if err := account.CheckModuleCompatibility(ctx, params.Account, params.Module); err != nil {
			return nil, err
		}
	} else if len(params.InitCode) == 0 {
		return nil, errors.New("operation for an undeployed account requires initCode")
	}

	nonce, err := params.Account.Nonce(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read account nonce")
	}

	callData, err := encodeExecuteUserOp(params.Batch, params.MultiSend)
	if err != nil {
		return nil, err
	}

	// The attribution tag is inert data for off-chain bookkeeping; it only
	// affects payload length.
	if len(params.Tag) > 0 {
		callData = append(callData, params.Tag...)
	}

	validAfter, validUntil, err := ParseValidityWindow(params.ValidAfter, params.ValidUntil)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		Sender:     params.Account.Address(),
		Nonce:      nonce,
		CallData:   callData,
		ValidAfter: validAfter,
		ValidUntil: validUntil,
	}

	if !deployed {
		op.InitCode = params.InitCode
	}

	if pm := params.Paymaster; pm != nil && pm.Address != (common.Address{}) {
		op.PaymasterAndData = append(pm.Address.Bytes(), pm.Data...)
	}

	return op, nil
}

// encodeExecuteUserOp wraps the batch into the module's executeUserOp call.
// A single transaction executes directly; a larger batch goes through the
// call-only aggregator via delegate call.
func encodeExecuteUserOp(batch []BatchTx, multiSend common.Address) ([]byte, error) {
	var (
		to    common.Address
		value *big.Int
		data  []byte
		kind  CallKind
	)

	if len(batch) == 1 {
		tx := batch[0]
		to = tx.To
		value = tx.Value
		data = tx.Data
		kind = tx.Kind
	} else {
		aggregated, err := EncodeMultiSendCall(batch)
		if err != nil {
			return nil, err
		}
		to = multiSend
		data = aggregated
		kind = DelegateCall
	}

	if value == nil {
		value = new(big.Int)
	}

	return encodeCall(executeUserOpSignature,
		abi.Arguments{{Type: typeAddress}, {Type: typeUint256}, {Type: typeBytes}, {Type: typeUint8}},
		to, value, data, uint8(kind))
}

// EncodeDeploymentInitCode builds the operation initCode for first-time
// deployment: the factory address followed by its createProxyWithNonce
// calldata.
func EncodeDeploymentInitCode(factory, singleton common.Address, initializer []byte, saltNonce *big.Int) ([]byte, error) {
	if saltNonce == nil {
		saltNonce = new(big.Int)
	}

	calldata, err := encodeCall(createProxySignature,
		abi.Arguments{{Type: typeAddress}, {Type: typeBytes}, {Type: typeUint256}},
		singleton, initializer, saltNonce)
	if err != nil {
		return nil, err
	}

	initCode := make([]byte, 0, len(factory)+len(calldata))
	initCode = append(initCode, factory.Bytes()...)
	initCode = append(initCode, calldata...)

	return initCode, nil
}

func containsAddress(list []common.Address, address common.Address) bool {
	for _, a := range list {
		if a == address {
			return true
		}
	}
	return false
}
