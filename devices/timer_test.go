package devices

import (
	"testing"
	"time"
)

// TestTimerCompareMatchLatchesStatus verifies the timer's background
// goroutine latches STATUS once CURRENT_TIME reaches the compare value,
// and that CONTROL=1 clears it again.
func TestTimerCompareMatchLatchesStatus(t *testing.T) {
	tm := NewTimer(0x3000, time.Millisecond)
	defer tm.Stop()

	tm.WriteWord(0x3000+timerCompareValue, 5)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if tm.ReadWord(0x3000+timerStatus) == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if tm.ReadWord(0x3000+timerStatus) != 1 {
		t.Fatal("STATUS never latched after CURRENT_TIME should have reached COMPARE_VALUE")
	}

	tm.WriteWord(0x3000+timerControl, 1)
	if tm.ReadWord(0x3000+timerStatus) != 0 {
		t.Fatal("CONTROL=1 should clear STATUS")
	}
}

// TestTimerResetRestartsCurrentTime verifies CONTROL=2 restarts
// CURRENT_TIME from zero.
func TestTimerResetRestartsCurrentTime(t *testing.T) {
	tm := NewTimer(0, time.Millisecond)
	defer tm.Stop()

	time.Sleep(20 * time.Millisecond)
	before := tm.ReadWord(timerCurrentTime)
	if before == 0 {
		t.Fatal("CURRENT_TIME should have advanced before reset")
	}

	tm.WriteWord(timerControl, 2)
	after := tm.ReadWord(timerCurrentTime)
	if after > before {
		t.Fatalf("CURRENT_TIME after reset = %d, want <= %d", after, before)
	}
}
