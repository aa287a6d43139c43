package amm

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

var (
	testCreator = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTrader  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testToken   = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testToken2  = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type eventRecorder struct {
	events []model.Event
}

func (r *eventRecorder) Notify(event model.Event) {
	r.events = append(r.events, event)
}

func newTestEngine(t *testing.T) (*Engine, *AdminCap, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	e, admin, err := New(DefaultParams(), rec)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, admin, rec
}

// createTestPool opens a pool whose settlement reserve is exactly settlementReserve.
func createTestPool(t *testing.T, e *Engine, token common.Address, settlementReserve uint64) *Pool {
	t.Helper()
	pool, err := e.Create(testCreator, token, DefaultSupply, DefaultCreationFee+settlementReserve)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return pool
}

func TestCreate(t *testing.T) {
	e, _, rec := newTestEngine(t)
	pool := createTestPool(t, e, testToken, 1_000_000_000)

	if pool.SettlementReserve() != 1_000_000_000 {
		t.Fatalf("settlement reserve %d", pool.SettlementReserve())
	}
	if pool.TokenReserve() != DefaultSupply {
		t.Fatalf("token reserve %d", pool.TokenReserve())
	}
	if !pool.TradingEnabled() {
		t.Fatalf("trading should start enabled")
	}
	if pool.Creator() != testCreator || pool.Token() != testToken {
		t.Fatalf("unexpected identity %s/%s", pool.Creator().Hex(), pool.Token().Hex())
	}
	if e.Vault().Balance() != DefaultCreationFee {
		t.Fatalf("vault balance %d", e.Vault().Balance())
	}

	if len(rec.events) != 1 || rec.events[0].EventName != model.EventPoolCreated {
		t.Fatalf("expected one creation event, got %+v", rec.events)
	}
	data := rec.events[0].Decoded.(model.PoolCreatedEventData)
	if data.Seeded || data.CreationFee != DefaultCreationFee || data.SettlementReserve != 1_000_000_000 {
		t.Fatalf("unexpected creation payload %+v", data)
	}
	if rec.events[0].PoolID != pool.ID().Hex() {
		t.Fatalf("event pool id %s != %s", rec.events[0].PoolID, pool.ID().Hex())
	}
}

func TestCreateBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		token      uint64
		settlement uint64
		want       error
	}{
		{"supply minus one", DefaultSupply - 1, DefaultCreationFee + 1, ErrIncorrectAmount},
		{"supply plus one", DefaultSupply + 1, DefaultCreationFee + 1, ErrIncorrectAmount},
		{"deposit equals fee", DefaultSupply, DefaultCreationFee, ErrIncorrectAmount},
		{"deposit below fee", DefaultSupply, DefaultCreationFee - 1, ErrIncorrectAmount},
		{"settlement at ceiling", DefaultSupply, math.MaxUint64, ErrPoolFull},
		{"token at ceiling", math.MaxUint64, DefaultCreationFee + 1, ErrPoolFull},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, rec := newTestEngine(t)
			if _, err := e.Create(testCreator, testToken, tc.token, tc.settlement); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if _, err := e.CreateAndSeed(testCreator, testToken, tc.token, tc.settlement); !errors.Is(err, tc.want) {
				t.Fatalf("seeded: expected %v, got %v", tc.want, err)
			}
			if len(e.Pools()) != 0 || e.Vault().Balance() != 0 || len(rec.events) != 0 {
				t.Fatalf("aborted create left state behind")
			}
		})
	}
}

func TestCreateSmallestDeposit(t *testing.T) {
	e, _, _ := newTestEngine(t)
	pool := createTestPool(t, e, testToken, 1)
	if pool.SettlementReserve() != 1 {
		t.Fatalf("settlement reserve %d", pool.SettlementReserve())
	}
}

func TestCreateDuplicateToken(t *testing.T) {
	e, _, _ := newTestEngine(t)
	createTestPool(t, e, testToken, 1)
	if _, err := e.Create(testCreator, testToken, DefaultSupply, DefaultCreationFee+1); !errors.Is(err, ErrPoolExists) {
		t.Fatalf("expected ErrPoolExists, got %v", err)
	}
	if e.Vault().Balance() != DefaultCreationFee {
		t.Fatalf("duplicate create charged a fee")
	}
}

func TestCreateAndSeed(t *testing.T) {
	e, _, rec := newTestEngine(t)

	payout, err := e.CreateAndSeed(testCreator, testToken, DefaultSupply, DefaultCreationFee+1+25_000_000_000_000)
	if err != nil {
		t.Fatalf("create and seed: %v", err)
	}
	if payout != 854_922_279_792_716_582 {
		t.Fatalf("seed payout %d", payout)
	}

	pool, err := e.Pool(testToken)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.SettlementReserve() != 24_750_000_000_001 {
		t.Fatalf("settlement reserve %d", pool.SettlementReserve())
	}
	if pool.TokenReserve() != 145_077_720_207_283_418 {
		t.Fatalf("token reserve %d", pool.TokenReserve())
	}
	if e.Vault().Balance() != DefaultCreationFee+250_000_000_000 {
		t.Fatalf("vault balance %d", e.Vault().Balance())
	}

	if len(rec.events) != 2 {
		t.Fatalf("expected creation and swap events, got %d", len(rec.events))
	}
	created := rec.events[0].Decoded.(model.PoolCreatedEventData)
	if !created.Seeded || created.SettlementReserve != 1 || created.TokenReserve != DefaultSupply {
		t.Fatalf("unexpected creation payload %+v", created)
	}
	swap := rec.events[1].Decoded.(model.SwapEventData)
	if swap.Sender != testCreator.Hex() || swap.TokenAmount != payout || swap.SettlementAmount != 25_000_000_000_000 {
		t.Fatalf("unexpected seed swap payload %+v", swap)
	}
}

func TestCreateAndSeedWithoutRemainder(t *testing.T) {
	e, _, rec := newTestEngine(t)

	payout, err := e.CreateAndSeed(testCreator, testToken, DefaultSupply, DefaultCreationFee+1)
	if err != nil {
		t.Fatalf("create and seed: %v", err)
	}
	if payout != 0 {
		t.Fatalf("expected no payout, got %d", payout)
	}
	pool, _ := e.Pool(testToken)
	if pool.SettlementReserve() != 1 || pool.TokenReserve() != DefaultSupply {
		t.Fatalf("unexpected reserves %d/%d", pool.SettlementReserve(), pool.TokenReserve())
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected only the creation event, got %d", len(rec.events))
	}
}

func TestAddLiquidity(t *testing.T) {
	e, _, _ := newTestEngine(t)
	pool := createTestPool(t, e, testToken, 1_000)

	if err := e.AddLiquidity(testToken, 500, 700); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	if pool.SettlementReserve() != 1_500 || pool.TokenReserve() != DefaultSupply+700 {
		t.Fatalf("unexpected reserves %d/%d", pool.SettlementReserve(), pool.TokenReserve())
	}

	if err := e.AddLiquidity(testToken, 0, 1); !errors.Is(err, ErrIncorrectAmount) {
		t.Fatalf("expected ErrIncorrectAmount for zero settlement, got %v", err)
	}
	if err := e.AddLiquidity(testToken, 1, 0); !errors.Is(err, ErrIncorrectAmount) {
		t.Fatalf("expected ErrIncorrectAmount for zero token, got %v", err)
	}
	if err := e.AddLiquidity(testToken, 1, math.MaxUint64-pool.TokenReserve()); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("expected ErrPoolFull, got %v", err)
	}
	if pool.SettlementReserve() != 1_500 || pool.TokenReserve() != DefaultSupply+700 {
		t.Fatalf("aborted add changed reserves")
	}
	if err := e.AddLiquidity(testToken2, 1, 1); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

// Scenario C: removal without the capability leaves the pool untouched.
func TestRemoveLiquidityRequiresAdmin(t *testing.T) {
	e, admin, rec := newTestEngine(t)
	pool := createTestPool(t, e, testToken, 1_000_000_000)
	rec.events = nil

	other, _, _ := newTestEngine(t)
	for _, candidate := range []*AdminCap{nil, {}, other.admin} {
		if _, _, err := e.RemoveLiquidity(candidate, testTrader, testToken); !errors.Is(err, ErrNotAdmin) {
			t.Fatalf("expected ErrNotAdmin, got %v", err)
		}
	}
	if pool.SettlementReserve() != 1_000_000_000 || pool.TokenReserve() != DefaultSupply {
		t.Fatalf("unauthorized removal changed reserves")
	}
	if len(rec.events) != 0 {
		t.Fatalf("unauthorized removal emitted events")
	}

	settlement, tokens, err := e.RemoveLiquidity(admin, testCreator, testToken)
	if err != nil {
		t.Fatalf("remove liquidity: %v", err)
	}
	if settlement != 1_000_000_000 || tokens != DefaultSupply {
		t.Fatalf("unexpected payout %d/%d", settlement, tokens)
	}
	if pool.SettlementReserve() != 0 || pool.TokenReserve() != 0 {
		t.Fatalf("pool not drained")
	}
	if len(rec.events) != 1 || rec.events[0].EventName != model.EventMigrate {
		t.Fatalf("expected migrate event, got %+v", rec.events)
	}

	if _, err := e.SwapSettlementForToken(testTrader, testToken, 1_000); !errors.Is(err, ErrReservesEmpty) {
		t.Fatalf("expected ErrReservesEmpty after drain, got %v", err)
	}
	if _, err := e.SwapTokenForSettlement(testTrader, testToken, 1_000); !errors.Is(err, ErrReservesEmpty) {
		t.Fatalf("expected ErrReservesEmpty after drain, got %v", err)
	}
}

// Scenario D: a disabled pool refuses swaps regardless of reserves.
func TestTradingDisabled(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	createTestPool(t, e, testToken, 1_000_000_000)

	if err := e.SetTradingEnabled(nil, testToken, false); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if err := e.SetTradingEnabled(admin, testToken, false); err != nil {
		t.Fatalf("disable trading: %v", err)
	}

	if _, err := e.SwapSettlementForToken(testTrader, testToken, 1_000_000); !errors.Is(err, ErrTradingDisabled) {
		t.Fatalf("expected ErrTradingDisabled, got %v", err)
	}
	if _, err := e.SwapTokenForSettlement(testTrader, testToken, 1_000_000); !errors.Is(err, ErrTradingDisabled) {
		t.Fatalf("expected ErrTradingDisabled, got %v", err)
	}
	if _, err := e.SwapSettlementForToken(testTrader, testToken, 0); !errors.Is(err, ErrTradingDisabled) {
		t.Fatalf("gate should be checked first, got %v", err)
	}

	if err := e.SetTradingEnabled(admin, testToken, true); err != nil {
		t.Fatalf("enable trading: %v", err)
	}
	if _, err := e.SwapSettlementForToken(testTrader, testToken, 1_000_000); err != nil {
		t.Fatalf("swap after re-enable: %v", err)
	}
}

func TestWithdrawFees(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	createTestPool(t, e, testToken, 1_000_000_000)
	if _, err := e.SwapSettlementForToken(testTrader, testToken, 25_000_000_000_000); err != nil {
		t.Fatalf("swap: %v", err)
	}

	if _, err := e.WithdrawFees(nil); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	amount, err := e.WithdrawFees(admin)
	if err != nil {
		t.Fatalf("withdraw fees: %v", err)
	}
	if amount != DefaultCreationFee+250_000_000_000 {
		t.Fatalf("withdrawn %d", amount)
	}
	if e.Vault().Balance() != 0 {
		t.Fatalf("vault not drained")
	}
	if amount, _ := e.WithdrawFees(admin); amount != 0 {
		t.Fatalf("second withdrawal paid %d", amount)
	}
}

func TestSetCreationFee(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	if err := e.SetCreationFee(nil, 5); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if err := e.SetCreationFee(admin, 5); err != nil {
		t.Fatalf("set creation fee: %v", err)
	}
	if _, err := e.Create(testCreator, testToken, DefaultSupply, 5); !errors.Is(err, ErrIncorrectAmount) {
		t.Fatalf("expected ErrIncorrectAmount, got %v", err)
	}
	pool, err := e.Create(testCreator, testToken, DefaultSupply, 6)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pool.SettlementReserve() != 1 || e.Vault().Balance() != 5 {
		t.Fatalf("unexpected split %d/%d", pool.SettlementReserve(), e.Vault().Balance())
	}
}

func TestSnapshotRestore(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	createTestPool(t, e, testToken, 1_000_000_000)
	if _, err := e.CreateAndSeed(testCreator, testToken2, DefaultSupply, DefaultCreationFee+1+1_000_000_000); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := e.SetTradingEnabled(admin, testToken, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	snap := e.Snapshot()
	restored, restoredAdmin, err := Restore(DefaultParams(), snap, nil)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Fatalf("snapshot mismatch: %+v != %+v", restored.Snapshot(), snap)
	}

	if _, err := restored.WithdrawFees(admin); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("old capability must not authorize restored engine, got %v", err)
	}
	if _, err := restored.WithdrawFees(restoredAdmin); err != nil {
		t.Fatalf("withdraw on restored engine: %v", err)
	}

	if _, err := restored.Create(testCreator, testToken, DefaultSupply, DefaultCreationFee+1); !errors.Is(err, ErrPoolExists) {
		t.Fatalf("expected ErrPoolExists after restore, got %v", err)
	}
}

func TestRestoreRejectsCreationFeeAtCeiling(t *testing.T) {
	snap := Snapshot{Vault: model.Vault{CreationFee: math.MaxUint64}}
	if _, _, err := Restore(DefaultParams(), snap, nil); !errors.Is(err, ErrIncorrectAmount) {
		t.Fatalf("expected ErrIncorrectAmount, got %v", err)
	}

	snap.Vault.CreationFee = math.MaxUint64 - 2
	if _, _, err := Restore(DefaultParams(), snap, nil); err != nil {
		t.Fatalf("largest settable fee should restore: %v", err)
	}
}

func TestValidateTokenMeta(t *testing.T) {
	p := DefaultParams()
	if err := p.ValidateTokenMeta(model.TokenMeta{Address: testToken.Hex(), Decimals: 9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.ValidateTokenMeta(model.TokenMeta{Address: testToken.Hex(), Decimals: 18}); !errors.Is(err, ErrIncorrectDecimalMetadata) {
		t.Fatalf("expected ErrIncorrectDecimalMetadata, got %v", err)
	}
}
