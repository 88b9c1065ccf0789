package sbi

import "testing"

func TestSetTimerMarshalsDeadline(t *testing.T) {
	var gotEID, gotFID, gotArg0 uint64
	old := callFn
	callFn = func(eid, fid, arg0, arg1 uint64) (uint64, uint64) {
		gotEID, gotFID, gotArg0 = eid, fid, arg0
		return 0, 0
	}
	defer func() { callFn = old }()

	SetTimer(0x1234)

	if gotEID != eidSetTimer || gotFID != fidLegacy || gotArg0 != 0x1234 {
		t.Fatalf("SetTimer(0x1234) issued eid=%#x fid=%#x arg0=%#x", gotEID, gotFID, gotArg0)
	}
}

func TestConsolePutcharMarshalsByte(t *testing.T) {
	var gotEID, gotArg0 uint64
	old := callFn
	callFn = func(eid, fid, arg0, arg1 uint64) (uint64, uint64) {
		gotEID, gotArg0 = eid, arg0
		return 0, 0
	}
	defer func() { callFn = old }()

	ConsolePutchar('A')

	if gotEID != eidConsolePutchar || gotArg0 != uint64('A') {
		t.Fatalf("ConsolePutchar('A') issued eid=%#x arg0=%#x", gotEID, gotArg0)
	}
}
