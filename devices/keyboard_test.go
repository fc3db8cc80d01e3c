package devices

import "testing"

// TestKeyboardFIFOOrder verifies characters drain in enqueue order and
// BUFFER_READY reflects whether at least two characters are buffered.
func TestKeyboardFIFOOrder(t *testing.T) {
	kb := NewKeyboard(0x1000)
	kb.Enqueue('a')
	if kb.ReadWord(0x1000+kbBufferReady) != 0 {
		t.Fatal("BUFFER_READY must be 0 with only one character buffered")
	}
	kb.Enqueue('b')
	if kb.ReadWord(0x1000+kbBufferReady) != 1 {
		t.Fatal("BUFFER_READY must be 1 with two characters buffered")
	}

	if got := kb.ReadWord(0x1000 + kbFirstChar); got != 'a' {
		t.Fatalf("FIRST_CHAR = %c, want 'a'", got)
	}

	kb.WriteWord(0x1000+kbControl, 1) // consume oldest
	if got := kb.ReadWord(0x1000 + kbFirstChar); got != 'b' {
		t.Fatalf("FIRST_CHAR after consume = %c, want 'b'", got)
	}
}

// TestKeyboardOverflowDropsOldest verifies the ring buffer drops the
// oldest character once its 32-slot capacity is exceeded.
func TestKeyboardOverflowDropsOldest(t *testing.T) {
	kb := NewKeyboard(0)
	for i := 0; i < keyboardCapacity+1; i++ {
		kb.Enqueue(byte('A' + i%26))
	}
	if got := kb.ReadWord(kbFirstChar); got != uint32('A'+1) {
		t.Fatalf("FIRST_CHAR = %c, want %c (oldest dropped)", got, 'A'+1)
	}
}

// TestKeyboardClearEmptiesBuffer verifies the CONTROL=2 clear command.
func TestKeyboardClearEmptiesBuffer(t *testing.T) {
	kb := NewKeyboard(0)
	kb.Enqueue('x')
	kb.WriteWord(kbControl, 2)
	if got := kb.ReadWord(kbFirstChar); got != 0 {
		t.Fatalf("FIRST_CHAR after clear = %d, want 0", got)
	}
}

// TestKeyboardEnqueueRawByteTranslatesTTYBytes verifies the raw-tty
// translation a host terminal adapter relies on: CR becomes LF and DEL
// becomes BS, while an ordinary byte passes through unchanged.
func TestKeyboardEnqueueRawByteTranslatesTTYBytes(t *testing.T) {
	kb := NewKeyboard(0)
	kb.EnqueueRawByte('\r')
	if got := kb.ReadWord(kbFirstChar); got != '\n' {
		t.Fatalf("CR => %d, want LF (0x0A)", got)
	}
	kb.WriteWord(kbControl, 2) // clear

	kb.EnqueueRawByte(0x7F)
	if got := kb.ReadWord(kbFirstChar); got != 0x08 {
		t.Fatalf("DEL => %d, want BS (0x08)", got)
	}
	kb.WriteWord(kbControl, 2)

	kb.EnqueueRawByte('q')
	if got := kb.ReadWord(kbFirstChar); got != 'q' {
		t.Fatalf("'q' => %d, want unchanged 'q'", got)
	}
}

// TestKeyboardEnqueueKeyEventMapsNamedKeys verifies the host-event
// translation table used by hostio/cmd frontends.
func TestKeyboardEnqueueKeyEventMapsNamedKeys(t *testing.T) {
	kb := NewKeyboard(0)
	kb.EnqueueKeyEvent("Enter")
	if got := kb.ReadWord(kbFirstChar); got != 0x0A {
		t.Fatalf("Enter => %d, want 0x0A", got)
	}
}
