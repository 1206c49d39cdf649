package operation_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/account"
	"github/chapool/go-relayer/internal/operation"
)

type stubAccount struct {
	address         common.Address
	deployed        bool
	owners          []common.Address
	threshold       int
	version         string
	moduleEnabled   bool
	fallbackHandler common.Address
	nonce           *big.Int
	chainID         *big.Int
}

func (a *stubAccount) Address() common.Address                  { return a.address }
func (a *stubAccount) IsDeployed(context.Context) (bool, error) { return a.deployed, nil }
func (a *stubAccount) Owners(context.Context) ([]common.Address, error) {
	return a.owners, nil
}
func (a *stubAccount) Threshold(context.Context) (int, error)  { return a.threshold, nil }
func (a *stubAccount) Version(context.Context) (string, error) { return a.version, nil }
func (a *stubAccount) IsModuleEnabled(context.Context, common.Address) (bool, error) {
	return a.moduleEnabled, nil
}
func (a *stubAccount) FallbackHandler(context.Context) (common.Address, error) {
	return a.fallbackHandler, nil
}
func (a *stubAccount) Nonce(context.Context) (*big.Int, error)   { return a.nonce, nil }
func (a *stubAccount) ChainID(context.Context) (*big.Int, error) { return a.chainID, nil }

var (
	moduleAddr       = common.HexToAddress("0x75cf11467937ce3F2f357CE24ffc3DBF8fD5c226")
	moduleSetupAddr  = common.HexToAddress("0x2dd68b007B46fBe91B9A7c3EDa5A7a1063cB5b47")
	multiSendAddr    = common.HexToAddress("0x38869bf66a61cF6bDB996A6aE40D5853Fd43B526")
	sharedSignerAddr = common.HexToAddress("0x94a4F6affBd8975951142c3999aEAB7ecee555c2")
	ownerAddr        = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func bootstrapParams() operation.BootstrapParams {
	return operation.BootstrapParams{
		Owners:      []common.Address{ownerAddr},
		Threshold:   1,
		ModuleSetup: moduleSetupAddr,
		Module:      moduleAddr,
		MultiSend:   multiSendAddr,
	}
}

func TestBuildBootstrapSingleStepCollapse(t *testing.T) {
	builder := operation.NewBuilder()

	result, err := builder.BuildBootstrap(context.Background(), bootstrapParams())
	require.NoError(t, err)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, operation.StepEnableModule, result.Steps[0].Kind)
	assert.Equal(t, operation.DelegateCall, result.Steps[0].Tx.Kind)

	// no aggregator indirection: the deployment call is the step itself
	assert.Equal(t, result.Steps[0].Tx.To, result.To)
	assert.Equal(t, result.Steps[0].Tx.Data, result.Data)
	assert.Equal(t, moduleSetupAddr, result.To)

	// final config points the bootstrap call at the deployment target
	assert.Equal(t, result.To, result.Config.To)
	assert.Equal(t, result.Data, result.Config.Data)
	assert.Equal(t, moduleAddr, result.Config.FallbackHandler)
}

func TestBuildBootstrapStepOrdering(t *testing.T) {
	builder := operation.NewBuilder()

	params := bootstrapParams()
	params.Paymaster = &operation.PaymasterConfig{
		Address: common.HexToAddress("0xAAA0000000000000000000000000000000000aaa"),
		Token:   common.HexToAddress("0xBBB0000000000000000000000000000000000bbb"),
	}
	params.Passkey = &operation.PasskeyConfig{
		SharedSigner: sharedSignerAddr,
		X:            big.NewInt(1),
		Y:            big.NewInt(2),
	}

	result, err := builder.BuildBootstrap(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, operation.StepEnableModule, result.Steps[0].Kind)
	assert.Equal(t, operation.StepApproveToken, result.Steps[1].Kind)
	assert.Equal(t, operation.StepConfigurePasskeySigner, result.Steps[2].Kind)

	// multiple steps always go through the aggregator, never a single step
	assert.Equal(t, multiSendAddr, result.To)
	multiSendSelector := crypto.Keccak256([]byte("multiSend(bytes)"))[:4]
	assert.Equal(t, multiSendSelector, result.Data[:4])

	// the shared signer becomes a prospective owner
	assert.Contains(t, result.Config.Owners, sharedSignerAddr)
	assert.Len(t, result.Config.Owners, 2)
}

func TestBuildBootstrapApprovalDefaultsToMaxAllowance(t *testing.T) {
	builder := operation.NewBuilder()

	params := bootstrapParams()
	params.Paymaster = &operation.PaymasterConfig{
		Address: common.HexToAddress("0xAAA0000000000000000000000000000000000aaa"),
		Token:   common.HexToAddress("0xBBB0000000000000000000000000000000000bbb"),
	}

	result, err := builder.BuildBootstrap(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Steps, 2)

	approve := result.Steps[1]
	assert.Equal(t, operation.Call, approve.Tx.Kind)
	assert.Equal(t, params.Paymaster.Token, approve.Tx.To)

	// allowance defaults to max uint256: the amount word is all 0xff
	maxWord := bytes.Repeat([]byte{0xff}, 32)
	assert.Equal(t, maxWord, approve.Tx.Data[len(approve.Tx.Data)-32:])
}

func TestBuildBootstrapSkipsApprovalWhenSponsoring(t *testing.T) {
	builder := operation.NewBuilder()

	params := bootstrapParams()
	params.Paymaster = &operation.PaymasterConfig{
		Address:    common.HexToAddress("0xAAA0000000000000000000000000000000000aaa"),
		Token:      common.HexToAddress("0xBBB0000000000000000000000000000000000bbb"),
		Sponsoring: true,
	}

	result, err := builder.BuildBootstrap(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, operation.StepEnableModule, result.Steps[0].Kind)
}

func TestBuildBootstrapDoesNotDuplicateSharedSignerOwner(t *testing.T) {
	builder := operation.NewBuilder()

	params := bootstrapParams()
	params.Owners = []common.Address{ownerAddr, sharedSignerAddr}
	params.Passkey = &operation.PasskeyConfig{SharedSigner: sharedSignerAddr, X: big.NewInt(1), Y: big.NewInt(2)}

	result, err := builder.BuildBootstrap(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Config.Owners, 2)
}

func TestBuildBootstrapConfigErrors(t *testing.T) {
	builder := operation.NewBuilder()
	ctx := context.Background()

	params := bootstrapParams()
	params.Owners = nil
	_, err := builder.BuildBootstrap(ctx, params)
	require.Error(t, err)

	params = bootstrapParams()
	params.Threshold = 0
	_, err = builder.BuildBootstrap(ctx, params)
	require.Error(t, err)

	params = bootstrapParams()
	params.Threshold = 2 // exceeds owner count
	_, err = builder.BuildBootstrap(ctx, params)
	require.Error(t, err)
}

func deployedAccount() *stubAccount {
	return &stubAccount{
		address:         common.HexToAddress("0xCCC0000000000000000000000000000000000ccc"),
		deployed:        true,
		owners:          []common.Address{ownerAddr},
		threshold:       1,
		version:         "1.4.1",
		moduleEnabled:   true,
		fallbackHandler: moduleAddr,
		nonce:           big.NewInt(5),
		chainID:         big.NewInt(11155111),
	}
}

func buildParams(acc account.Account) operation.BuildParams {
	return operation.BuildParams{
		Account:   acc,
		Batch:     []operation.BatchTx{{To: common.HexToAddress("0x01"), Value: big.NewInt(1)}},
		Module:    moduleAddr,
		MultiSend: multiSendAddr,
	}
}

func TestBuildOperationForDeployedAccount(t *testing.T) {
	builder := operation.NewBuilder()

	op, err := builder.BuildOperation(context.Background(), buildParams(deployedAccount()))
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xCCC0000000000000000000000000000000000ccc"), op.Sender)
	assert.Equal(t, int64(5), op.Nonce.Int64())
	assert.Empty(t, op.InitCode)

	executeSelector := crypto.Keccak256([]byte("executeUserOp(address,uint256,bytes,uint8)"))[:4]
	assert.Equal(t, executeSelector, op.CallData[:4])
}

func TestBuildOperationBatchGoesThroughAggregator(t *testing.T) {
	builder := operation.NewBuilder()

	params := buildParams(deployedAccount())
	params.Batch = []operation.BatchTx{
		{To: common.HexToAddress("0x01"), Data: []byte{0x01}},
		{To: common.HexToAddress("0x02"), Data: []byte{0x02}},
	}

	op, err := builder.BuildOperation(context.Background(), params)
	require.NoError(t, err)

	// the outer call targets the aggregator address
	aggregatorWord := common.LeftPadBytes(multiSendAddr.Bytes(), 32)
	assert.True(t, bytes.Contains(op.CallData, aggregatorWord))
}

// An account below the minimum compatible version must fail before any
// remote estimation is attempted.
func TestBuildOperationIncompatibleVersionIsFatal(t *testing.T) {
	builder := operation.NewBuilder()

	acc := deployedAccount()
	acc.version = "1.3.0"

	_, err := builder.BuildOperation(context.Background(), buildParams(acc))
	require.Error(t, err)
	assert.ErrorIs(t, err, account.ErrVersionTooOld)
}

func TestBuildOperationUndeployedRequiresInitCode(t *testing.T) {
	builder := operation.NewBuilder()

	acc := deployedAccount()
	acc.deployed = false
	acc.nonce = big.NewInt(0)

	params := buildParams(acc)
	_, err := builder.BuildOperation(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initCode")

	params.InitCode = []byte{0xfa, 0xce}
	op, err := builder.BuildOperation(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfa, 0xce}, op.InitCode)
}

func TestBuildOperationAppendsAttributionTag(t *testing.T) {
	builder := operation.NewBuilder()

	params := buildParams(deployedAccount())
	bare, err := builder.BuildOperation(context.Background(), params)
	require.NoError(t, err)

	tag := []byte{0x5a, 0xfe, 0x00, 0x01}
	params.Tag = tag
	tagged, err := builder.BuildOperation(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, len(bare.CallData)+len(tag), len(tagged.CallData))
	assert.Equal(t, tag, tagged.CallData[len(tagged.CallData)-len(tag):])
	assert.Equal(t, bare.CallData, tagged.CallData[:len(bare.CallData)])
}

func TestBuildOperationPaymasterAndData(t *testing.T) {
	builder := operation.NewBuilder()

	params := buildParams(deployedAccount())
	params.Paymaster = &operation.PaymasterConfig{
		Address: common.HexToAddress("0xAAA0000000000000000000000000000000000aaa"),
		Data:    []byte{0x01, 0x02},
	}

	op, err := builder.BuildOperation(context.Background(), params)
	require.NoError(t, err)

	expected := append(params.Paymaster.Address.Bytes(), 0x01, 0x02)
	assert.Equal(t, expected, op.PaymasterAndData)
}

func TestBuildOperationValidityWindow(t *testing.T) {
	builder := operation.NewBuilder()

	params := buildParams(deployedAccount())
	params.ValidAfter = "100"
	params.ValidUntil = "200"

	op, err := builder.BuildOperation(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int64(100), op.ValidAfter.Int64())
	assert.Equal(t, int64(200), op.ValidUntil.Int64())

	params.ValidAfter = "whenever"
	_, err = builder.BuildOperation(context.Background(), params)
	require.Error(t, err)
}

func TestEncodeDeploymentInitCode(t *testing.T) {
	factory := common.HexToAddress("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2")
	singleton := common.HexToAddress("0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552")
	initializer := []byte{0x01, 0x02, 0x03}

	initCode, err := operation.EncodeDeploymentInitCode(factory, singleton, initializer, big.NewInt(7))
	require.NoError(t, err)

	assert.Equal(t, factory.Bytes(), initCode[:20])

	createSelector := crypto.Keccak256([]byte("createProxyWithNonce(address,bytes,uint256)"))[:4]
	assert.Equal(t, createSelector, initCode[20:24])
}
