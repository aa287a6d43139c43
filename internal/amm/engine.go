// Package amm implements the bonding-curve pools, the fee vault and the
// capability gate around them.
//
// The engine does no locking. Callers serialize access, see package ledger.
// Every exported operation validates and prices in full before it mutates
// anything, so an error leaves the engine exactly as it was.
package amm

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CasuinoOfficial/bonding-curve/internal/curve"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Notifier receives events for committed operations.
type Notifier interface {
	Notify(event model.Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(model.Event)

func (f NotifierFunc) Notify(event model.Event) { f(event) }

// Engine owns every pool and the shared fee vault.
type Engine struct {
	params   Params
	vault    *FeeVault
	pools    map[common.Address]*Pool
	created  uint64
	admin    *AdminCap
	notifier Notifier
}

// New initializes an engine and mints its only AdminCap.
func New(params Params, notifier Notifier) (*Engine, *AdminCap, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	e := &Engine{
		params:   params,
		vault:    &FeeVault{creationFee: params.CreationFee},
		pools:    make(map[common.Address]*Pool),
		notifier: notifier,
	}
	e.admin = &AdminCap{engine: e}
	return e, e.admin, nil
}

// SetNotifier replaces the event receiver. Nil discards events.
func (e *Engine) SetNotifier(notifier Notifier) {
	e.notifier = notifier
}

func (e *Engine) Params() Params { return e.params }
func (e *Engine) Vault() *FeeVault { return e.vault }

// Pool returns the pool trading token.
func (e *Engine) Pool(token common.Address) (*Pool, error) {
	pool, ok := e.pools[token]
	if !ok {
		return nil, fmt.Errorf("token %s: %w", token.Hex(), ErrPoolNotFound)
	}
	return pool, nil
}

// Pools returns every pool ordered by token address.
func (e *Engine) Pools() []*Pool {
	out := make([]*Pool, 0, len(e.pools))
	for _, pool := range e.pools {
		out = append(out, pool)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].token.Hex() < out[j].token.Hex()
	})
	return out
}

// Create opens a pool from the full token supply and a settlement deposit.
// The creation fee is taken from the deposit and the rest becomes the
// settlement reserve.
func (e *Engine) Create(actor, token common.Address, tokenDeposit, settlementDeposit uint64) (*Pool, error) {
	pool, _, err := e.create(actor, token, tokenDeposit, settlementDeposit, false)
	return pool, err
}

// CreateAndSeed opens a pool with a single unit of settlement reserve and, in
// the same step, swaps the rest of the deposit into it so the creator is the
// first trader. It returns the tokens bought by that swap.
func (e *Engine) CreateAndSeed(actor, token common.Address, tokenDeposit, settlementDeposit uint64) (uint64, error) {
	_, payout, err := e.create(actor, token, tokenDeposit, settlementDeposit, true)
	return payout, err
}

func (e *Engine) create(actor, token common.Address, tokenDeposit, settlementDeposit uint64, seed bool) (*Pool, uint64, error) {
	if _, ok := e.pools[token]; ok {
		return nil, 0, fmt.Errorf("token %s: %w", token.Hex(), ErrPoolExists)
	}
	if tokenDeposit >= curve.MaxPoolValue || settlementDeposit >= curve.MaxPoolValue {
		return nil, 0, fmt.Errorf("deposit at ceiling: %w", ErrPoolFull)
	}
	if tokenDeposit != e.params.Supply {
		return nil, 0, fmt.Errorf("token deposit %d, want %d: %w", tokenDeposit, e.params.Supply, ErrIncorrectAmount)
	}
	creationFee := e.vault.creationFee
	if settlementDeposit <= creationFee {
		return nil, 0, fmt.Errorf("settlement deposit %d must exceed creation fee %d: %w", settlementDeposit, creationFee, ErrIncorrectAmount)
	}

	pool := &Pool{
		id:                poolID(token, e.created),
		token:             token,
		creator:           actor,
		settlementReserve: settlementDeposit - creationFee,
		tokenReserve:      tokenDeposit,
		tradingEnabled:    true,
	}
	collected := creationFee

	var seedSwap *SwapResult
	if seed {
		seedIn := pool.settlementReserve - seedReserve
		pool.settlementReserve = seedReserve
		if seedIn > 0 {
			res, err := SettlementForToken(e.params, pool.settlementReserve, pool.tokenReserve, seedIn)
			if err != nil {
				return nil, 0, fmt.Errorf("seed swap: %w", err)
			}
			seedSwap = &res
			collected += res.Fee
		}
	}

	nextBalance, err := e.vault.afterCredit(collected)
	if err != nil {
		return nil, 0, err
	}

	created := pool.Snapshot()
	if seedSwap != nil {
		pool.settlementReserve = seedSwap.SettlementReserve
		pool.tokenReserve = seedSwap.TokenReserve
	}
	e.vault.balance = nextBalance
	e.pools[token] = pool
	e.created++

	e.emit(pool, actor, model.EventPoolCreated, model.PoolCreatedEventData{
		Creator:           actor.Hex(),
		SettlementReserve: created.SettlementReserve,
		TokenReserve:      created.TokenReserve,
		CreationFee:       creationFee,
		Seeded:            seed,
	})

	var payout uint64
	if seedSwap != nil {
		payout = seedSwap.AmountOut
		e.emitSwap(pool, actor, model.DirectionSettlementToToken, *seedSwap)
	}
	return pool, payout, nil
}

// AddLiquidity tops up both reserves. Deposits are not attributed to the
// depositor and only RemoveLiquidity can take them out again.
func (e *Engine) AddLiquidity(token common.Address, settlementAmount, tokenAmount uint64) error {
	pool, err := e.Pool(token)
	if err != nil {
		return err
	}
	if settlementAmount == 0 || tokenAmount == 0 {
		return fmt.Errorf("add liquidity %d/%d: %w", settlementAmount, tokenAmount, ErrIncorrectAmount)
	}

	nextSettlement, ok := curve.AddChecked(pool.settlementReserve, settlementAmount)
	if !ok {
		return fmt.Errorf("settlement reserve: %w", ErrPoolFull)
	}
	nextToken, ok := curve.AddChecked(pool.tokenReserve, tokenAmount)
	if !ok {
		return fmt.Errorf("token reserve: %w", ErrPoolFull)
	}

	pool.settlementReserve = nextSettlement
	pool.tokenReserve = nextToken
	return nil
}

// RemoveLiquidity drains both reserves of a pool to the capability holder.
func (e *Engine) RemoveLiquidity(admin *AdminCap, actor, token common.Address) (settlementOut, tokenOut uint64, err error) {
	if err := e.authorize(admin); err != nil {
		return 0, 0, err
	}
	pool, err := e.Pool(token)
	if err != nil {
		return 0, 0, err
	}

	settlementOut, tokenOut = pool.settlementReserve, pool.tokenReserve
	pool.settlementReserve = 0
	pool.tokenReserve = 0

	e.emit(pool, actor, model.EventMigrate, model.MigrateEventData{
		SettlementAmount: settlementOut,
		TokenAmount:      tokenOut,
	})
	return settlementOut, tokenOut, nil
}

// SetTradingEnabled opens or closes a pool to swaps.
func (e *Engine) SetTradingEnabled(admin *AdminCap, token common.Address, enabled bool) error {
	if err := e.authorize(admin); err != nil {
		return err
	}
	pool, err := e.Pool(token)
	if err != nil {
		return err
	}
	pool.tradingEnabled = enabled
	return nil
}

// WithdrawFees pays out the whole fee balance.
func (e *Engine) WithdrawFees(admin *AdminCap) (uint64, error) {
	if err := e.authorize(admin); err != nil {
		return 0, err
	}
	amount := e.vault.balance
	e.vault.balance = 0
	return amount, nil
}

// SetCreationFee changes the fee charged on future pool creations.
func (e *Engine) SetCreationFee(admin *AdminCap, fee uint64) error {
	if err := e.authorize(admin); err != nil {
		return err
	}
	if fee >= curve.MaxPoolValue-1 {
		return fmt.Errorf("creation fee %d: %w", fee, ErrIncorrectAmount)
	}
	e.vault.creationFee = fee
	return nil
}

// SwapSettlementForToken sells settlement for tokens and returns the tokens paid out.
func (e *Engine) SwapSettlementForToken(actor, token common.Address, settlementIn uint64) (uint64, error) {
	pool, err := e.tradable(token)
	if err != nil {
		return 0, err
	}
	res, err := SettlementForToken(e.params, pool.settlementReserve, pool.tokenReserve, settlementIn)
	if err != nil {
		return 0, err
	}
	if err := e.commitSwap(pool, actor, model.DirectionSettlementToToken, res); err != nil {
		return 0, err
	}
	return res.AmountOut, nil
}

// SwapTokenForSettlement sells tokens for settlement and returns the settlement paid out after fees.
func (e *Engine) SwapTokenForSettlement(actor, token common.Address, tokenIn uint64) (uint64, error) {
	pool, err := e.tradable(token)
	if err != nil {
		return 0, err
	}
	res, err := TokenForSettlement(e.params, pool.settlementReserve, pool.tokenReserve, tokenIn)
	if err != nil {
		return 0, err
	}
	if err := e.commitSwap(pool, actor, model.DirectionTokenToSettlement, res); err != nil {
		return 0, err
	}
	return res.AmountOut, nil
}

// QuoteSettlementForToken estimates a settlement-in swap without fees or mutation.
func (e *Engine) QuoteSettlementForToken(token common.Address, amount uint64) (uint64, error) {
	pool, err := e.Pool(token)
	if err != nil {
		return 0, err
	}
	return QuoteSettlementForToken(e.params, pool.settlementReserve, pool.tokenReserve, amount), nil
}

// QuoteTokenForSettlement estimates a token-in swap without fees or mutation.
func (e *Engine) QuoteTokenForSettlement(token common.Address, amount uint64) (uint64, error) {
	pool, err := e.Pool(token)
	if err != nil {
		return 0, err
	}
	return QuoteTokenForSettlement(e.params, pool.settlementReserve, pool.tokenReserve, amount), nil
}

func (e *Engine) tradable(token common.Address) (*Pool, error) {
	pool, err := e.Pool(token)
	if err != nil {
		return nil, err
	}
	if !pool.tradingEnabled {
		return nil, fmt.Errorf("token %s: %w", token.Hex(), ErrTradingDisabled)
	}
	return pool, nil
}

func (e *Engine) commitSwap(pool *Pool, actor common.Address, direction string, res SwapResult) error {
	nextBalance, err := e.vault.afterCredit(res.Fee)
	if err != nil {
		return err
	}
	e.vault.balance = nextBalance
	pool.settlementReserve = res.SettlementReserve
	pool.tokenReserve = res.TokenReserve

	e.emitSwap(pool, actor, direction, res)
	return nil
}

func (e *Engine) emitSwap(pool *Pool, actor common.Address, direction string, res SwapResult) {
	data := model.SwapEventData{
		Sender:            actor.Hex(),
		Direction:         direction,
		Fee:               res.Fee,
		SettlementReserve: res.SettlementReserve,
		TokenReserve:      res.TokenReserve,
	}
	if direction == model.DirectionSettlementToToken {
		data.SettlementAmount = res.AmountIn
		data.TokenAmount = res.AmountOut
	} else {
		data.SettlementAmount = res.AmountOut
		data.TokenAmount = res.AmountIn
	}
	e.emit(pool, actor, model.EventSwap, data)
}

func (e *Engine) emit(pool *Pool, actor common.Address, name string, data interface{}) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(model.Event{
		EventName: name,
		PoolID:    pool.id.Hex(),
		Token:     pool.token.Hex(),
		Actor:     actor.Hex(),
		Decoded:   data,
	})
}
