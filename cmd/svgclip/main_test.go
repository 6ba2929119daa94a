package main

import (
	"testing"

	"github.com/paulhankin/rectclip/paths"
)

func TestFlagWindowValue(t *testing.T) {
	var fw flagWindowValue
	if err := fw.Set("0, 0.5,10,12.25"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if want := paths.Rect(0, 0.5, 10, 12.25); !fw.Given || fw.B != want {
		t.Errorf("window = %v (given %v), want %v", fw.B, fw.Given, want)
	}
	if got := fw.String(); got != "0,0.5,10,12.25" {
		t.Errorf("String() = %q, want 0,0.5,10,12.25", got)
	}

	for _, in := range []string{
		"0,0,10",
		"0,0,10,ten",
		"0,0,inf,10",
		"-Inf,0,10,10",
		"0,NaN,10,10",
	} {
		var fw flagWindowValue
		if err := fw.Set(in); err == nil {
			t.Errorf("Set(%q) succeeded, want an error", in)
		}
		if fw.Given {
			t.Errorf("Set(%q) marked the window as given", in)
		}
	}
}

func TestFlagSizeValue(t *testing.T) {
	var fs flagSizeValue
	if err := fs.Set("300x200"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if fs.W != 300 || fs.H != 200 {
		t.Errorf("size = %s, want 300x200", &fs)
	}
	if err := fs.Set("300"); err == nil {
		t.Errorf("Set(\"300\") succeeded, want an error")
	}
}
