package mem

// Reader is the debuggee-memory read primitive the decoders are built on.
// Reads are synchronous and never retried: a read that fails (unmapped
// address, detached target) will not succeed later without external
// intervention, so the failure propagates to the caller as-is.
//
// Implementations:
//   - Buffer / Map over post-mortem snapshot regions
//   - test fixtures
//   - a live debug transport, on the host side
type Reader interface {
	// ReadBytes fills buf from memory starting at addr. Short reads are
	// errors; the decoders always know exactly how many bytes they need.
	ReadBytes(addr uint64, buf []byte) error

	// ReadUint reads a little-endian unsigned integer of the given byte
	// width (1, 2, 4 or 8) at addr.
	ReadUint(addr uint64, width int) (uint64, error)
}

func readUint(r Reader, addr uint64, width int) (uint64, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return 0, &ReadError{Addr: addr, Len: width, Reason: "unsupported scalar width"}
	}
	var buf [8]byte
	if err := r.ReadBytes(addr, buf[:width]); err != nil {
		return 0, err
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}
