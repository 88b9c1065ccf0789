package vdso

import "testing"

func TestKernelMeow(t *testing.T) {
	if got := KernelMeow(); got != 0x6D656F77 {
		t.Fatalf("KernelMeow() = %#x; want 0x6d656f77", got)
	}
}

func TestExportsContainsKernelMeow(t *testing.T) {
	addr, ok := Exports["kernel_meow"]
	if !ok {
		t.Fatal("expected Exports to contain kernel_meow")
	}
	if addr != funcAddr0(vdsoKernelMeow) {
		t.Fatal("Exports[\"kernel_meow\"] does not match vdsoKernelMeow's resident address")
	}
}

func TestExportsContainsPutcharEntries(t *testing.T) {
	if addr, ok := Exports["putchar"]; !ok || addr != funcAddr1(vdsoPutchar) {
		t.Fatal("expected Exports[\"putchar\"] to match vdsoPutchar's resident address")
	}
	if addr, ok := Exports["putchar_async"]; !ok || addr != funcAddr1(vdsoPutcharAsync) {
		t.Fatal("expected Exports[\"putchar_async\"] to match vdsoPutcharAsync's resident address")
	}
}

func TestPhysPagesSpansKernelBase(t *testing.T) {
	pages := PhysPages()
	if len(pages) == 0 {
		t.Fatal("expected at least one vDSO text page")
	}
	if uint64(pages[0].Address()) != uint64(KernelBase())&^0xFFF {
		t.Fatalf("first PhysPages() entry = %#x; want the page containing KernelBase() %#x", pages[0].Address(), KernelBase())
	}
}
