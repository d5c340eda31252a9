// internal/sink/modbus/mirror_test.go
package modbus

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
	"github.com/tamzrod/gpsdoctl/internal/status"
)

// ---- fake endpoint client ----

type fakeWriter struct {
	lastAddr uint16
	lastRegs []uint16
	calls    int
	err      error
}

func (f *fakeWriter) WriteRegisters(addr uint16, regs []uint16) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.lastAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

func sample(dac uint16) gpsdo.Snapshot {
	return gpsdo.Snapshot{Enabled: true, DAC: dac, Status: gpsdo.DecodeStatus(0x0011)}
}

// ---- tests ----

func TestMirror_FullThenIncremental(t *testing.T) {
	cli := &fakeWriter{}
	m := newMirror(cli, 100, zerolog.Nop(), nil)

	// ---- first write: FULL ASSERT ----
	if err := m.Publish(context.Background(), sample(0x8000)); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}
	if cli.lastAddr != 100 || len(cli.lastRegs) != status.SlotsPerBlock {
		t.Fatalf("expected full block at 100, got addr=%d len=%d", cli.lastAddr, len(cli.lastRegs))
	}
	if cli.lastRegs[status.SlotHealthCode] != status.HealthOK {
		t.Fatalf("health got=%d want=%d", cli.lastRegs[status.SlotHealthCode], status.HealthOK)
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := m.Publish(context.Background(), sample(0x8001)); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	// DAC (slot 5) and sequence (slot 12) changed
	if cli.lastAddr != 100+status.SlotDAC {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastAddr, 100+status.SlotDAC)
	}
	if len(cli.lastRegs) != status.SlotSequence-status.SlotDAC+1 {
		t.Fatalf("incremental update must not re-write full block, got %d regs", len(cli.lastRegs))
	}
	if cli.lastRegs[len(cli.lastRegs)-1] != 2 {
		t.Fatalf("sequence got=%d want=2", cli.lastRegs[len(cli.lastRegs)-1])
	}
}

func TestMirror_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeWriter{}
	m := newMirror(cli, 0, zerolog.Nop(), nil)

	_ = m.Publish(context.Background(), sample(1))

	cli.err = errors.New("endpoint down")
	if err := m.Publish(context.Background(), sample(2)); err == nil {
		t.Fatalf("expected write error")
	}

	cli.err = nil
	if err := m.Publish(context.Background(), sample(3)); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerBlock {
		t.Fatalf("expected full re-assert after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestMirror_FailSetsErrorHealthOnly(t *testing.T) {
	cli := &fakeWriter{}
	m := newMirror(cli, 0, zerolog.Nop(), nil)

	_ = m.Publish(context.Background(), sample(0x1234))
	if err := m.Fail(context.Background(), errors.New("bus fault")); err != nil {
		t.Fatalf("Fail err=%v", err)
	}
	if cli.lastAddr != status.SlotHealthCode || len(cli.lastRegs) != 1 {
		t.Fatalf("expected single health slot write, got addr=%d len=%d", cli.lastAddr, len(cli.lastRegs))
	}
	if cli.lastRegs[0] != status.HealthError {
		t.Fatalf("health got=%d want=%d", cli.lastRegs[0], status.HealthError)
	}
}

func TestMirror_CloseWritesStaleAndReleases(t *testing.T) {
	cli := &fakeWriter{}
	closed := 0
	m := newMirror(cli, 0, zerolog.Nop(), func() error { closed++; return nil })

	_ = m.Publish(context.Background(), sample(1))
	if err := m.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if cli.lastRegs[0] != status.HealthStale {
		t.Fatalf("health got=%d want=%d", cli.lastRegs[0], status.HealthStale)
	}
	_ = m.Close()
	if closed != 1 {
		t.Fatalf("connection closed %d times, want 1", closed)
	}
}

func TestMirror_UnchangedBlockWritesNothing(t *testing.T) {
	cli := &fakeWriter{}
	m := newMirror(cli, 0, zerolog.Nop(), nil)

	_ = m.Publish(context.Background(), sample(1))
	before := cli.calls
	if err := m.Fail(context.Background(), nil); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := m.Fail(context.Background(), nil); err != nil {
		t.Fatalf("err=%v", err)
	}
	if cli.calls != before+1 {
		t.Fatalf("repeated identical block must not be rewritten, calls=%d", cli.calls-before)
	}
}

func TestPackRegisters_BigEndian(t *testing.T) {
	got := packRegisters([]uint16{0x1234, 0xABCD})
	want := []byte{0x12, 0x34, 0xAB, 0xCD}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d got=0x%02X want=0x%02X", i, got[i], want[i])
		}
	}
}
