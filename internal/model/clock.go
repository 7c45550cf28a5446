package model

// VectorClock is per-device causal-ordering metadata carried alongside an
// event: device ID -> highest sequence number observed from that device.
// The sync engine transports it verbatim; it never interprets entries
// beyond the merge and tick helpers used when stamping outgoing events.
type VectorClock map[string]int64

// Clone returns an independent copy of the clock. A nil clock clones to nil.
func (vc VectorClock) Clone() VectorClock {
	if vc == nil {
		return nil
	}
	out := make(VectorClock, len(vc))
	for k, v := range vc {
		out[k] = v
	}
	return out
}

// Merge folds other into vc, keeping the highest seq per device, and
// returns the result. The receiver may be nil.
func (vc VectorClock) Merge(other VectorClock) VectorClock {
	if len(other) == 0 {
		return vc
	}
	out := vc
	if out == nil {
		out = make(VectorClock, len(other))
	}
	for k, v := range other {
		if v > out[k] {
			out[k] = v
		}
	}
	return out
}

// Tick records seq as the latest observed value for deviceID and returns
// the clock. The receiver may be nil.
func (vc VectorClock) Tick(deviceID string, seq int64) VectorClock {
	out := vc
	if out == nil {
		out = make(VectorClock, 1)
	}
	if seq > out[deviceID] {
		out[deviceID] = seq
	}
	return out
}
