package replay

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
	"github.com/CasuinoOfficial/bonding-curve/internal/tokenmeta"
)

const (
	opCreate     = `{"seq":1,"op":"create","actor":"0x1111111111111111111111111111111111111111","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","token_amount":"1000000000000000000","settlement_amount":"2000000000"}`
	opBuy        = `{"seq":2,"op":"swap_settlement","actor":"0x2222222222222222222222222222222222222222","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","settlement_amount":"100000000"}`
	opSell       = `{"seq":3,"op":"swap_token","actor":"0x2222222222222222222222222222222222222222","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","token_amount":"1000000000"}`
	opHalt       = `{"seq":4,"op":"set_trading","actor":"0x3333333333333333333333333333333333333333","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","enabled":false,"admin":false}`
	opBuyAgain   = `{"seq":5,"op":"swap_settlement","actor":"0x2222222222222222222222222222222222222222","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","settlement_amount":"5000000"}`
	opWithdraw   = `{"seq":6,"op":"withdraw_fees","actor":"0x1111111111111111111111111111111111111111"}`
	opBadDecimal = `{"seq":7,"op":"create","actor":"0x1111111111111111111111111111111111111111","token":"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb","token_amount":"1000000000000000000","settlement_amount":"2000000000","decimals":6}`
)

type memorySink struct {
	batches int
	events  []model.Event
}

func (m *memorySink) PutEventBatch(events []model.Event) error {
	m.batches++
	m.events = append(m.events, events...)
	return nil
}

type memoryErrors struct {
	errs []model.OpError
}

func (m *memoryErrors) PutOpErrors(errs []model.OpError) error {
	m.errs = append(m.errs, errs...)
	return nil
}

func newTestRunner(t *testing.T, checkpoint string, batchSize int, sink *memorySink, errs *memoryErrors) *Runner {
	t.Helper()
	cfg := RunConfig{
		Params:            amm.DefaultParams(),
		BatchSize:         batchSize,
		CheckpointPath:    checkpoint,
		CheckpointEnabled: checkpoint != "",
	}
	return NewRunner(cfg, nil, sink, errs, nil, zap.NewNop())
}

func ops(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func eventNames(events []model.Event) []string {
	names := make([]string, 0, len(events))
	for _, event := range events {
		names = append(names, event.EventName)
	}
	return names
}

func loadCheckpoint(t *testing.T, path string) Checkpoint {
	t.Helper()
	cp, ok, err := NewCheckpointStore(path, true).Load()
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if !ok {
		t.Fatalf("expected checkpoint at %s", path)
	}
	return cp
}

func TestRunnerAppliesOperations(t *testing.T) {
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.json")
	sink := &memorySink{}
	errs := &memoryErrors{}
	runner := newTestRunner(t, checkpoint, 100, sink, errs)

	summary, err := runner.Run(context.Background(), ops(opCreate, opBuy, opSell, opHalt, opBuyAgain, opWithdraw))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Summary{Total: 6, Applied: 5, Failed: 1, LastSeq: 6}
	if summary != want {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	names := eventNames(sink.events)
	wantNames := []string{model.EventPoolCreated, model.EventSwap, model.EventSwap, model.EventSwap}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("unexpected events: %v", names)
	}
	for i, seq := range []uint64{1, 2, 3, 5} {
		if sink.events[i].Seq != seq {
			t.Fatalf("event %d: seq %d, want %d", i, sink.events[i].Seq, seq)
		}
	}

	if len(errs.errs) != 1 || errs.errs[0].Seq != 4 || errs.errs[0].Op != model.OpSetTrading {
		t.Fatalf("unexpected op errors: %+v", errs.errs)
	}
	if !strings.Contains(errs.errs[0].Error, amm.ErrNotAdmin.Error()) {
		t.Fatalf("unexpected error text: %s", errs.errs[0].Error)
	}

	cp := loadCheckpoint(t, checkpoint)
	if cp.LastProcessedSeq != 6 {
		t.Fatalf("unexpected checkpoint seq: %d", cp.LastProcessedSeq)
	}
	if cp.State.Vault.SettlementFeeBalance != 0 {
		t.Fatalf("fees should be withdrawn, got %d", cp.State.Vault.SettlementFeeBalance)
	}
	if len(cp.State.Pools) != 1 || !cp.State.Pools[0].TradingEnabled {
		t.Fatalf("unexpected pools: %+v", cp.State.Pools)
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	splitPath := filepath.Join(t.TempDir(), "checkpoint.json")

	first := newTestRunner(t, splitPath, 100, &memorySink{}, nil)
	if _, err := first.Run(context.Background(), ops(opCreate, opBuy, opSell)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	sink := &memorySink{}
	second := newTestRunner(t, splitPath, 100, sink, nil)
	summary, err := second.Run(context.Background(), ops(opCreate, opBuy, opSell, opBuyAgain))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Skipped != 3 || summary.Applied != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sink.events) != 1 || sink.events[0].Seq != 5 {
		t.Fatalf("expected only the new swap, got %+v", sink.events)
	}

	wholePath := filepath.Join(t.TempDir(), "checkpoint.json")
	whole := newTestRunner(t, wholePath, 100, &memorySink{}, nil)
	if _, err := whole.Run(context.Background(), ops(opCreate, opBuy, opSell, opBuyAgain)); err != nil {
		t.Fatalf("whole run: %v", err)
	}

	split := loadCheckpoint(t, splitPath)
	oneShot := loadCheckpoint(t, wholePath)
	if !reflect.DeepEqual(split.State, oneShot.State) {
		t.Fatalf("resumed state differs:\n%+v\n%+v", split.State, oneShot.State)
	}
}

func TestRunnerFlushesPerBatch(t *testing.T) {
	sink := &memorySink{}
	runner := newTestRunner(t, "", 2, sink, nil)

	if _, err := runner.Run(context.Background(), ops(opCreate, opBuy, opSell, opBuyAgain, opWithdraw)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sink.batches != 3 {
		t.Fatalf("expected 3 batches, got %d", sink.batches)
	}
}

func TestRunnerRejectsIncorrectDecimals(t *testing.T) {
	errs := &memoryErrors{}
	runner := newTestRunner(t, "", 10, &memorySink{}, errs)

	summary, err := runner.Run(context.Background(), ops(opBadDecimal))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 1 || len(errs.errs) != 1 {
		t.Fatalf("expected one failure, got %+v", summary)
	}
	if !strings.Contains(errs.errs[0].Error, amm.ErrIncorrectDecimalMetadata.Error()) {
		t.Fatalf("unexpected error: %s", errs.errs[0].Error)
	}
}

func TestRunnerUsesResolver(t *testing.T) {
	token := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	resolver := tokenmeta.StaticResolver{
		Decimals: amm.DefaultTokenDecimals,
		Known:    map[common.Address]model.TokenMeta{token: {Decimals: 18}},
	}
	errs := &memoryErrors{}
	cfg := RunConfig{Params: amm.DefaultParams(), BatchSize: 10}
	runner := NewRunner(cfg, resolver, &memorySink{}, errs, nil, nil)

	summary, err := runner.Run(context.Background(), ops(opCreate))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected resolver decimals to reject the pool, got %+v", summary)
	}
}

func TestRunnerRecordsMalformedLines(t *testing.T) {
	errs := &memoryErrors{}
	runner := newTestRunner(t, "", 10, &memorySink{}, errs)

	summary, err := runner.Run(context.Background(), ops(`{"seq":`, opCreate, `{"seq":2,"op":"mint","actor":"0x1111111111111111111111111111111111111111","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 2 || summary.Applied != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(errs.errs) != 2 || !strings.Contains(errs.errs[1].Error, "unknown op") {
		t.Fatalf("unexpected op errors: %+v", errs.errs)
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := ParseAddress("not-an-address"); err == nil {
		t.Fatalf("expected error")
	}
	addr, err := ParseAddress(" 0x1111111111111111111111111111111111111111 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr != common.HexToAddress("0x1111111111111111111111111111111111111111") {
		t.Fatalf("unexpected address: %s", addr.Hex())
	}
}

func TestRunnerStampsOperationTimestamps(t *testing.T) {
	sink := &memorySink{}
	runner := newTestRunner(t, "", 10, sink, nil)

	created := `{"seq":1,"ts":1700000000,"op":"create","actor":"0x1111111111111111111111111111111111111111","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","token_amount":"1000000000000000000","settlement_amount":"2000000000"}`
	bought := `{"seq":2,"ts":1700000600,"op":"swap_settlement","actor":"0x2222222222222222222222222222222222222222","token":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","settlement_amount":"100000000"}`
	if _, err := runner.Run(context.Background(), ops(created, bought)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].Timestamp != 1_700_000_000 || sink.events[1].Timestamp != 1_700_000_600 {
		t.Fatalf("events not stamped from operations: %d, %d", sink.events[0].Timestamp, sink.events[1].Timestamp)
	}
}

func TestRunnerRecordsMissingSeq(t *testing.T) {
	errs := &memoryErrors{}
	runner := newTestRunner(t, "", 10, &memorySink{}, errs)

	noSeq := `{"op":"withdraw_fees","actor":"0x1111111111111111111111111111111111111111"}`
	summary, err := runner.Run(context.Background(), ops(noSeq, opCreate))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 1 || summary.Skipped != 0 || summary.Applied != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(errs.errs) != 1 || errs.errs[0].Error != "missing seq" || errs.errs[0].Op != model.OpWithdrawFees {
		t.Fatalf("unexpected op errors: %+v", errs.errs)
	}
}
