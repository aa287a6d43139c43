package replay

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/ledger"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

func (r *Runner) apply(ctx context.Context, x *ledger.Executor, params amm.Params, op model.Operation) error {
	actor, err := ParseAddress(op.Actor)
	if err != nil {
		return fmt.Errorf("actor: %w", err)
	}

	var token common.Address
	if op.Op != model.OpWithdrawFees && op.Op != model.OpSetCreationFee {
		token, err = ParseAddress(op.Token)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
	}

	log := r.logger.With(zap.Uint64("seq", op.Seq), zap.String("op", op.Op))
	do := func(tx ledger.Tx) error {
		return x.DoAt(op.Seq, op.Timestamp, tx)
	}

	switch op.Op {
	case model.OpCreate, model.OpCreateAndSeed:
		if err := r.checkTokenMeta(ctx, params, token, op); err != nil {
			return err
		}
		return do(func(e *amm.Engine, _ *amm.AdminCap) error {
			if op.Op == model.OpCreate {
				_, err := e.Create(actor, token, op.TokenAmount, op.SettlementAmount)
				return err
			}
			bought, err := e.CreateAndSeed(actor, token, op.TokenAmount, op.SettlementAmount)
			if err == nil {
				log.Debug("pool seeded", zap.Uint64("tokens_out", bought))
			}
			return err
		})

	case model.OpAddLiquidity:
		return do(func(e *amm.Engine, _ *amm.AdminCap) error {
			return e.AddLiquidity(token, op.SettlementAmount, op.TokenAmount)
		})

	case model.OpRemoveLiquidity:
		return do(func(e *amm.Engine, admin *amm.AdminCap) error {
			settlementOut, tokenOut, err := e.RemoveLiquidity(r.present(op, admin), actor, token)
			if err == nil {
				log.Info("liquidity removed", zap.Uint64("settlement_out", settlementOut), zap.Uint64("token_out", tokenOut))
			}
			return err
		})

	case model.OpSwapSettlement:
		return do(func(e *amm.Engine, _ *amm.AdminCap) error {
			_, err := e.SwapSettlementForToken(actor, token, op.SettlementAmount)
			return err
		})

	case model.OpSwapToken:
		return do(func(e *amm.Engine, _ *amm.AdminCap) error {
			_, err := e.SwapTokenForSettlement(actor, token, op.TokenAmount)
			return err
		})

	case model.OpSetTrading:
		return do(func(e *amm.Engine, admin *amm.AdminCap) error {
			return e.SetTradingEnabled(r.present(op, admin), token, op.Enabled)
		})

	case model.OpWithdrawFees:
		return do(func(e *amm.Engine, admin *amm.AdminCap) error {
			amount, err := e.WithdrawFees(r.present(op, admin))
			if err == nil {
				log.Info("fees withdrawn", zap.String("to", actor.Hex()), zap.Uint64("amount", amount))
			}
			return err
		})

	case model.OpSetCreationFee:
		return do(func(e *amm.Engine, admin *amm.AdminCap) error {
			return e.SetCreationFee(r.present(op, admin), op.SettlementAmount)
		})

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func (r *Runner) present(op model.Operation, admin *amm.AdminCap) *amm.AdminCap {
	if op.PresentsAdmin() {
		return admin
	}
	return nil
}

// checkTokenMeta validates the decimals of a token about to get a pool. A
// decimals value on the operation takes precedence over the resolver.
func (r *Runner) checkTokenMeta(ctx context.Context, params amm.Params, token common.Address, op model.Operation) error {
	var meta model.TokenMeta
	if op.Decimals != nil {
		meta = model.TokenMeta{Address: token.Hex(), Decimals: *op.Decimals}
	} else {
		var err error
		meta, err = r.resolver.Resolve(ctx, token)
		if err != nil {
			return fmt.Errorf("resolve token metadata: %w", err)
		}
	}
	return params.ValidateTokenMeta(meta)
}
