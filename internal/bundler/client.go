package bundler

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-relayer/internal/operation"
	"github/chapool/go-relayer/internal/operation/estimate"
)

// Client talks to a bundler over JSON-RPC. Calls are independent
// request/response operations; retry and backoff are the transport caller's
// concern, not this client's.
type Client struct {
	rpc *rpc.Client
	url string
}

// Dial connects to the bundler RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, errors.New("bundler URL is required")
	}

	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to bundler at %s", url)
	}

	return &Client{rpc: client, url: url}, nil
}

// NewClient wraps an existing RPC client, mainly for tests.
func NewClient(rpcClient *rpc.Client) *Client {
	return &Client{rpc: rpcClient}
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainID queries the bundler's chain identifier.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := c.rpc.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return nil, errors.Wrap(err, "failed to get chain id")
	}

	return (*big.Int)(&result), nil
}

// SupportedEntryPoints returns the bundler's entry points, preferred first.
func (c *Client) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	var result []common.Address
	if err := c.rpc.CallContext(ctx, &result, "eth_supportedEntryPoints"); err != nil {
		return nil, errors.Wrap(err, "failed to get supported entry points")
	}

	return result, nil
}

// EstimateOperationGas runs the remote gas estimation for the operation.
func (c *Client) EstimateOperationGas(ctx context.Context, op *operation.Operation, entryPoint common.Address) (*estimate.GasEstimate, error) {
	var result gasEstimateResult
	if err := c.rpc.CallContext(ctx, &result, "eth_estimateUserOperationGas", toRPCOperation(op), entryPoint); err != nil {
		return nil, errors.Wrap(err, "failed to estimate operation gas")
	}

	return &estimate.GasEstimate{
		CallGasLimit:         hexToBig(result.CallGasLimit),
		VerificationGasLimit: hexToBig(result.VerificationGasLimit),
		PreVerificationGas:   hexToBig(result.PreVerificationGas),
		MaxFeePerGas:         hexToBig(result.MaxFeePerGas),
		MaxPriorityFeePerGas: hexToBig(result.MaxPriorityFeePerGas),
	}, nil
}

// Submit sends the finished operation to the bundler.
func (c *Client) Submit(ctx context.Context, op *operation.Operation, entryPoint common.Address) (common.Hash, error) {
	var result common.Hash
	if err := c.rpc.CallContext(ctx, &result, "eth_sendUserOperation", toRPCOperation(op), entryPoint); err != nil {
		submissionFailures.Inc()
		return common.Hash{}, errors.Wrap(err, "failed to submit operation")
	}

	submittedOperations.Inc()

	log.Info().
		Str("component", "bundler_client").
		Str("sender", op.Sender.Hex()).
		Str("operation_hash", result.Hex()).
		Msg("Submitted operation")

	return result, nil
}

// GetOperationByHash fetches a submitted operation. A nil result means the
// bundler does not know the hash yet; that is not an error.
func (c *Client) GetOperationByHash(ctx context.Context, hash common.Hash) (*OperationResult, error) {
	var result *OperationResult
	if err := c.rpc.CallContext(ctx, &result, "eth_getUserOperationByHash", hash); err != nil {
		return nil, errors.Wrap(err, "failed to get operation by hash")
	}

	return result, nil
}

// GetOperationReceipt fetches the inclusion receipt, nil while pending.
func (c *Client) GetOperationReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var result *Receipt
	if err := c.rpc.CallContext(ctx, &result, "eth_getUserOperationReceipt", hash); err != nil {
		return nil, errors.Wrap(err, "failed to get operation receipt")
	}

	return result, nil
}

func hexToBig(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}
