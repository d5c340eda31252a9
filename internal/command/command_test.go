// internal/command/command_test.go
package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
	"github.com/tamzrod/gpsdoctl/internal/planner"
	"github.com/tamzrod/gpsdoctl/internal/regmap"
	"github.com/tamzrod/gpsdoctl/internal/transport"
	"github.com/tamzrod/gpsdoctl/internal/transport/sim"
)

type rig struct {
	dev    *sim.Device
	out    *bytes.Buffer
	d      *Dispatcher
	sleeps []time.Duration
}

func newRig(t *testing.T) *rig {
	t.Helper()
	dev := sim.New()
	tr := transport.New(dev, zerolog.Nop())
	t.Cleanup(func() { _ = tr.Close() })

	r := &rig{dev: dev, out: &bytes.Buffer{}}
	r.d = NewDispatcher(gpsdo.New(tr, zerolog.Nop()), r.out, zerolog.Nop())
	r.d.sleep = func(ctx context.Context, d time.Duration) error {
		r.sleeps = append(r.sleeps, d)
		return ctx.Err()
	}
	return r
}

func TestSort_FixedOrder(t *testing.T) {
	in := []Command{Check{}, Reset{}, Disable{}, Enable{}, Dump{}}
	got := Sort(in)

	want := []Kind{KindDump, KindEnable, KindDisable, KindReset, KindCheck}
	for i := range want {
		if got[i].Kind() != want[i] {
			t.Fatalf("pos %d got=%s want=%s", i, got[i].Kind(), want[i])
		}
	}
	if in[0].Kind() != KindCheck {
		t.Fatalf("Sort must not modify its input")
	}
}

func TestRun_DumpFormat(t *testing.T) {
	r := newRig(t)
	r.dev.Poke(regmap.Control, 0x0003)
	r.dev.Poke(regmap.Status, 0x0111)

	if err := r.d.Run(context.Background(), []Command{Dump{Count: 2, Delay: time.Second}}); err != nil {
		t.Fatalf("err=%v", err)
	}

	got := strings.Split(strings.TrimRight(r.out.String(), "\n"), "\n")
	// header + 18 + blank + "Dump 2:" + 18
	if len(got) != 1+18+2+18 {
		t.Fatalf("lines got=%d\n%s", len(got), r.out.String())
	}
	if got[0] != "Dumping gpsdocfg registers:" {
		t.Fatalf("header got=%q", got[0])
	}
	if got[1] != "0x0000 (CONTROL          ): 0x0003" {
		t.Fatalf("first row got=%q", got[1])
	}
	if got[18] != "0x0011 (STATUS           ): 0x0111" {
		t.Fatalf("last row got=%q", got[18])
	}
	if got[19] != "" || got[20] != "Dump 2:" {
		t.Fatalf("separator got=%q,%q", got[19], got[20])
	}
	if len(r.sleeps) != 1 || r.sleeps[0] != time.Second {
		t.Fatalf("sleeps got=%v want=[1s]", r.sleeps)
	}
}

func TestRun_DumpCountZeroMeansOnce(t *testing.T) {
	r := newRig(t)
	if err := r.d.Run(context.Background(), []Command{Dump{}}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if r.dev.Transactions() != regmap.Count {
		t.Fatalf("transactions got=%d want=%d", r.dev.Transactions(), regmap.Count)
	}
	if len(r.sleeps) != 0 {
		t.Fatalf("no sleep before the first dump")
	}
}

func TestRun_EnableMessageAndRegisters(t *testing.T) {
	r := newRig(t)

	if err := r.d.Run(context.Background(), []Command{Enable{FrequencyHz: 30.72e6, PPM: 0.1}}); err != nil {
		t.Fatalf("err=%v", err)
	}

	want := "GPSDO enabled: CLK_SEL=0 (30.72MHz), 0.1ppm tolerance (1s tol=3Hz, 10s=30Hz, 100s=300Hz).\n"
	if r.out.String() != want {
		t.Fatalf("got=%q want=%q", r.out.String(), want)
	}
	if got := r.dev.Peek(regmap.Control); got != 0x0001 {
		t.Fatalf("CONTROL got=0x%04X want=0x0001", got)
	}
	if got := r.dev.Peek(regmap.PPS100sTargetH); got != 0xB71B {
		t.Fatalf("100s target high got=0x%04X", got)
	}
}

func TestRun_Enable10MHz(t *testing.T) {
	r := newRig(t)

	if err := r.d.Run(context.Background(), []Command{Enable{FrequencyHz: 10e6, PPM: 0.1}}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if !strings.Contains(r.out.String(), "CLK_SEL=1 (10MHz)") {
		t.Fatalf("got=%q", r.out.String())
	}
	if got := r.dev.Peek(regmap.Control); got != 0x0003 {
		t.Fatalf("CONTROL got=0x%04X want=0x0003", got)
	}
}

func TestRun_EnablePlanningErrorWritesNothing(t *testing.T) {
	r := newRig(t)

	err := r.d.Run(context.Background(), []Command{Enable{FrequencyHz: 50e6, PPM: 0.1}})
	var pe *planner.PlanningError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PlanningError, got %v", err)
	}
	if r.dev.Transactions() != 0 {
		t.Fatalf("no transaction expected, got %d", r.dev.Transactions())
	}
}

func TestRun_DisablePreservesOtherBits(t *testing.T) {
	r := newRig(t)
	r.dev.Poke(regmap.Control, 0x0013)

	if err := r.d.Run(context.Background(), []Command{Disable{}}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := r.dev.Peek(regmap.Control); got != 0x0012 {
		t.Fatalf("CONTROL got=0x%04X want=0x0012", got)
	}
	if r.out.String() != "GPSDO disabled.\n" {
		t.Fatalf("got=%q", r.out.String())
	}
}

func TestRun_ResetSequence(t *testing.T) {
	r := newRig(t)
	r.dev.Poke(regmap.Control, 0x0003)

	if err := r.d.Run(context.Background(), []Command{Reset{Delay: 2 * time.Second}}); err != nil {
		t.Fatalf("err=%v", err)
	}

	w := r.dev.Writes()
	if len(w) != 2 || w[0].Value != 0x0002 || w[1].Value != 0x0003 {
		t.Fatalf("writes got=%+v", w)
	}
	if len(r.sleeps) != 1 || r.sleeps[0] != 2*time.Second {
		t.Fatalf("sleeps got=%v", r.sleeps)
	}
	want := "Resetting GPSDO...\nGPSDO reset complete (re-enabled).\n"
	if r.out.String() != want {
		t.Fatalf("got=%q want=%q", r.out.String(), want)
	}
}

func TestRun_ResetDelayIgnoresCancellation(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C arrives while the device is disabled
	var sawErr error
	r.d.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		sawErr = ctx.Err()
		return sawErr
	}
	if err := r.d.Run(ctx, []Command{Reset{Delay: time.Second}}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if sawErr != nil {
		t.Fatalf("reset delay must not see cancellation, got %v", sawErr)
	}
	if got := r.dev.Peek(regmap.Control); got != 0x0001 {
		t.Fatalf("CONTROL got=0x%04X want=0x0001 (re-enabled)", got)
	}
}

func TestRun_FixedOrderAcrossCommands(t *testing.T) {
	r := newRig(t)

	cmds := []Command{
		Check{Count: 1, BannerInterval: 10},
		Disable{},
		Enable{FrequencyHz: 30.72e6, PPM: 0.1},
		Dump{Count: 1},
	}
	if err := r.d.Run(context.Background(), cmds); err != nil {
		t.Fatalf("err=%v", err)
	}

	out := r.out.String()
	idx := []int{
		strings.Index(out, "Dumping gpsdocfg registers:"),
		strings.Index(out, "GPSDO enabled:"),
		strings.Index(out, "GPSDO disabled."),
		strings.Index(out, "Monitoring GPSDO regulation loop"),
	}
	for i, v := range idx {
		if v < 0 {
			t.Fatalf("marker %d missing in\n%s", i, out)
		}
		if i > 0 && v < idx[i-1] {
			t.Fatalf("marker %d out of order in\n%s", i, out)
		}
	}
	if got := r.dev.Peek(regmap.Control); got != 0x0000 {
		t.Fatalf("CONTROL got=0x%04X want=0x0000", got)
	}
}

func TestRun_TransportErrorAbortsRemaining(t *testing.T) {
	r := newRig(t)
	r.dev.FailAt(1, errors.New("spi gone"))

	err := r.d.Run(context.Background(), []Command{Disable{}, Check{Count: 1, BannerInterval: 1}})
	var te *transport.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if strings.Contains(r.out.String(), "Monitoring") {
		t.Fatalf("check must not run after a failed command")
	}
}

func TestRun_CancelledSkipsRemaining(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.d.Run(ctx, []Command{Dump{}, Disable{}}); err != nil {
		t.Fatalf("cancellation is not an error, got %v", err)
	}
	if r.dev.Transactions() != 0 {
		t.Fatalf("no transaction expected, got %d", r.dev.Transactions())
	}
}
