package transport

import "testing"

func TestValidateIDFirstMessageAccepted(t *testing.T) {
	e := newTestEndpoint()
	if !e.validateID(12345) {
		t.Fatal("first message from peer must always validate")
	}
}

func TestValidateIDSequential(t *testing.T) {
	e := newTestEndpoint()
	e.advanceID(10)
	if !e.validateID(11) {
		t.Fatal("id == lastAckID+1 must validate")
	}
	if e.validateID(13) {
		t.Fatal("non-sequential id must not validate")
	}
}

func TestAckAdvancesNextIDOnlyOnMatch(t *testing.T) {
	e := newTestEndpoint()
	e.nextID = 7
	if e.ackAdvancesNextID(6, true) {
		t.Fatal("ack for the wrong id must not advance next_id")
	}
	if !e.ackAdvancesNextID(7, true) {
		t.Fatal("ack matching next_id must advance")
	}
	e.advanceNextID()
	if e.nextID != 8 {
		t.Fatalf("nextID = %d, want 8", e.nextID)
	}
}

func TestAckAdvancesNextIDRequiresAckID(t *testing.T) {
	e := newTestEndpoint()
	e.nextID = 3
	if e.ackAdvancesNextID(3, false) {
		t.Fatal("a message with no ack_id must never advance next_id")
	}
}

func TestAckIDMissingIsMalformed(t *testing.T) {
	e := newTestEndpoint()
	if e.ackIDMissingIsMalformed(false) {
		t.Fatal("missing ack_id on the very first message must not be malformed")
	}
	e.advanceID(1)
	if !e.ackIDMissingIsMalformed(false) {
		t.Fatal("missing ack_id after the first message must be malformed")
	}
	if e.ackIDMissingIsMalformed(true) {
		t.Fatal("a present ack_id is never malformed")
	}
}
