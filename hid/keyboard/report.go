package keyboard

// ReportSize is the fixed length of a boot-keyboard input report.
const ReportSize = 8

// Report is an 8-byte HID boot-keyboard input report.
//
// Layout:
//
//	Byte 0: Modifier bitmask
//	Byte 1: Reserved (0x00)
//	Bytes 2-7: Up to six concurrently pressed key usage codes, zero-padded
type Report [ReportSize]byte

// KeyEvent is a single resolved keystroke: a modifier bitmask plus the
// usage code of the one non-modifier key it presses. A modifier-only
// event has Key 0.
type KeyEvent struct {
	Modifiers uint8
	Key       uint8
}

// Report encodes the event into a boot-keyboard report with the key in
// slot 0. The remaining five key slots stay zero; the layout reserves
// them so the wire format can carry true multi-key chords later.
func (e KeyEvent) Report() Report {
	var r Report
	r[0] = e.Modifiers
	r[2] = e.Key
	return r
}

// RestReport returns the canonical all-zero "no keys pressed" report.
// It is the terminal report of every send sequence.
func RestReport() Report {
	return Report{}
}

// DecodeReport recovers the KeyEvent from a report's modifier byte and
// key slot 0.
func DecodeReport(r Report) KeyEvent {
	return KeyEvent{Modifiers: r[0], Key: r[2]}
}
