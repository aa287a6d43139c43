package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/config"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

type quoteOutput struct {
	Direction         string `json:"direction"`
	AmountIn          uint64 `json:"amount_in,string"`
	Quote             uint64 `json:"quote,string"`
	AmountOut         uint64 `json:"amount_out,string"`
	Fee               uint64 `json:"fee,string"`
	SettlementReserve uint64 `json:"settlement_reserve,string"`
	TokenReserve      uint64 `json:"token_reserve,string"`
	Error             string `json:"error,omitempty"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	params, err := cfg.Engine.Params()
	if err != nil {
		return fmt.Errorf("engine params: %w", err)
	}

	out := quote(params, cfg)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// quote reports both the fee-free estimate and the swap the engine would
// execute; a swap that would abort is reported through Error.
func quote(params amm.Params, cfg config.QuoteConfig) quoteOutput {
	out := quoteOutput{Direction: cfg.Direction, AmountIn: cfg.Amount}

	var res amm.SwapResult
	var err error
	if cfg.Direction == model.DirectionSettlementToToken {
		out.Quote = amm.QuoteSettlementForToken(params, cfg.SettlementReserve, cfg.TokenReserve, cfg.Amount)
		res, err = amm.SettlementForToken(params, cfg.SettlementReserve, cfg.TokenReserve, cfg.Amount)
	} else {
		out.Quote = amm.QuoteTokenForSettlement(params, cfg.SettlementReserve, cfg.TokenReserve, cfg.Amount)
		res, err = amm.TokenForSettlement(params, cfg.SettlementReserve, cfg.TokenReserve, cfg.Amount)
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.AmountOut = res.AmountOut
	out.Fee = res.Fee
	out.SettlementReserve = res.SettlementReserve
	out.TokenReserve = res.TokenReserve
	return out
}
