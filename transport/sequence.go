package transport

// validateID implements spec.md §4.3: the first ever message from the
// peer is always accepted; afterward a received id is valid iff it
// equals lastAckID+1 (mod 2^32).
func (e *Endpoint) validateID(id uint32) bool {
	if e.lastAckID == nil {
		return true
	}
	return id == *e.lastAckID+1
}

// advanceID records id as the most recently accepted message from the
// peer (the AdvanceID operation in spec.md §4.3).
func (e *Endpoint) advanceID(id uint32) {
	v := id
	e.lastAckID = &v
}

// ackIDMissingIsMalformed implements the open-question resolution in
// spec.md §9: a missing ack_id is malformed unless the receiver has no
// lastAckID yet (i.e. this is the very first message it has seen).
func (e *Endpoint) ackIDMissingIsMalformed(hasAckID bool) bool {
	return e.lastAckID != nil && !hasAckID
}

// ackAdvancesNextID reports whether a peer's ack_id matches this
// endpoint's outstanding next_id, per spec.md §4.3: "An endpoint's own
// next_id advances by one only when the peer acknowledges it."
func (e *Endpoint) ackAdvancesNextID(ackID uint32, hasAckID bool) bool {
	return hasAckID && ackID == e.nextID
}

// advanceNextID increments this endpoint's own outgoing sequence ID.
// Called only once the peer's ack_id has been confirmed to match the
// current next_id (ackAdvancesNextID).
func (e *Endpoint) advanceNextID() {
	e.nextID++
}
