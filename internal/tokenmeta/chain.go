package tokenmeta

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Caller performs read-only contract calls. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ChainResolver loads ERC-20 metadata over RPC and caches the result.
type ChainResolver struct {
	caller       Caller
	cache        *Cache
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

func NewChainResolver(caller Caller, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *ChainResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChainResolver{
		caller:       caller,
		cache:        NewCache(),
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		logger:       logger,
	}
}

func (r *ChainResolver) Resolve(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	if meta, ok := r.cache.Get(token); ok {
		return meta, nil
	}

	var meta model.TokenMeta
	err := withRetry(ctx, r.maxRetries, r.retryBackoff, func(ctx context.Context) error {
		var err error
		meta, err = r.fetch(ctx, token)
		if err != nil {
			r.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return model.TokenMeta{Address: token.Hex()}, err
	}

	r.cache.Set(token, meta)
	return meta, nil
}

// fetch requires decimals; symbol and name are best effort.
func (r *ChainResolver) fetch(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if r.caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}

	stringABI, err := erc20StringABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &token, Data: data}
		resp, err := r.caller.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("unpack %s: empty result", method)
		}
		return values, nil
	}

	values, err := call("decimals", stringABI)
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("unsupported decimals type %T", values[0])
	}
	meta.Decimals = decimals

	meta.Symbol = r.text(token, "symbol", call, stringABI, bytes32ABI)
	meta.Name = r.text(token, "name", call, stringABI, bytes32ABI)
	return meta, nil
}

func (r *ChainResolver) text(
	token common.Address,
	method string,
	call func(string, abi.ABI) ([]interface{}, error),
	stringABI, bytes32ABI abi.ABI,
) string {
	if values, err := call(method, stringABI); err == nil {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	values, err := call(method, bytes32ABI)
	if err != nil {
		r.logger.Debug("metadata call failed", zap.String("token", token.Hex()), zap.String("method", method), zap.Error(err))
		return ""
	}
	if s, ok := bytes32ToString(values[0]); ok {
		return s
	}
	return ""
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
