package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spaghettifunk/timber/engine"
	"github.com/spaghettifunk/timber/testbed"
	"github.com/spaghettifunk/timber/testbed/demo"
)

func TestParseBreak(t *testing.T) {
	tests := []struct {
		in      string
		want    breakSpec
		wantErr bool
	}{
		{in: "hull:2:3", want: breakSpec{Group: "hull", Board: 2, Segment: 3, Aftward: true}},
		{in: "hull:0:1:fwd", want: breakSpec{Group: "hull", Segment: 1}},
		{in: "boat/mast:0:4:aft", want: breakSpec{Object: "boat", Group: "mast", Segment: 4, Aftward: true}},
		{in: "hull:2", wantErr: true},
		{in: "hull:x:1", wantErr: true},
		{in: "hull:0:1:up", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseBreak(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBreak(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseBreak(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestBreakAndInspect(t *testing.T) {
	cfg := engine.DefaultApplicationConfig()
	cfg.TickRate = 0
	e, err := engine.New(&engine.Game{ApplicationConfig: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	obj, err := e.AddObject(demo.Object, testbed.NewHullMesh(testbed.DefaultHull()))
	if err != nil {
		t.Fatal(err)
	}

	var list breakList
	for _, v := range []string{"mast:0:2", "hull:1:0:fwd"} {
		if err := list.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	for _, b := range list {
		if err := b.apply(e); err != nil {
			t.Fatalf("apply %+v: %v", b, err)
		}
	}
	if err := (breakSpec{Group: "mats"}).apply(e); err == nil || !strings.Contains(err.Error(), "did you mean 'mast'") {
		t.Errorf("typo error = %v", err)
	}

	var out bytes.Buffer
	if err := inspect(&out, obj, "mast"); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "mast\n") || !strings.Contains(text, "board 0: 6 segments") || !strings.Contains(text, "1 broken") {
		t.Errorf("inspect output:\n%s", text)
	}
	if strings.Contains(text, "ribs") {
		t.Errorf("group filter ignored:\n%s", text)
	}
}
