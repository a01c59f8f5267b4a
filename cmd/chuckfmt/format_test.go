package main

import "testing"

func TestResolveUIFlag(t *testing.T) {
	on, err := resolveUIFlag("on")
	if err != nil || !on {
		t.Errorf("resolveUIFlag(\"on\") = %v, %v; want true, nil", on, err)
	}
	off, err := resolveUIFlag("off")
	if err != nil || off {
		t.Errorf("resolveUIFlag(\"off\") = %v, %v; want false, nil", off, err)
	}
	if _, err := resolveUIFlag("yes"); err == nil {
		t.Error("resolveUIFlag(\"yes\") should be rejected")
	}
	// "auto" and "" follow the terminal; they must at least agree
	auto, err := resolveUIFlag("auto")
	if err != nil {
		t.Fatalf("resolveUIFlag(\"auto\"): %v", err)
	}
	empty, err := resolveUIFlag("")
	if err != nil {
		t.Fatalf("resolveUIFlag(\"\"): %v", err)
	}
	if auto != empty {
		t.Errorf("auto = %v but empty = %v", auto, empty)
	}
}
