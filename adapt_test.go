package entropy

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestAdaptNoCounts(t *testing.T) {
	pre := NewModel()
	out, err := Adapt(pre, new(Counts), InterFrame, nil)
	if err != nil {
		t.Fatal(err)
	}
	if *out != *pre {
		t.Error("adapting without statistics changed the model")
	}
	if out == pre {
		t.Error("Adapt returned its input")
	}
}

func TestAdaptKeepsPre(t *testing.T) {
	frame := buildFrame(5, frameTiles[:1], true)
	enc, err := NewTileEncoder(NewModel(), frameTiles[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := encodeTile(enc, frame[0], 0); err != nil {
		t.Fatal(err)
	}
	pre := NewModel()
	out, err := Adapt(pre, enc.Counts(), InterAfterKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	if *pre != *NewModel() {
		t.Error("Adapt modified its input model")
	}
	if out.Coeff == pre.Coeff {
		t.Error("coefficient model unchanged by adaptation")
	}
	if out.MV == pre.MV {
		t.Error("motion vector model unchanged by adaptation")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("adapted model: %v", err)
	}
}

func TestAdaptHighPrecisionGate(t *testing.T) {
	var c Counts
	// Class 0 vectors with the eighth-pel bit clear.
	for i := 0; i < 200; i++ {
		c.MV.IncMV(MV{Row: 1, Col: 1}, PrecisionHigh)
	}
	pre := NewModel()
	off, err := Adapt(pre, &c, InterFrame, &Options{})
	if err != nil {
		t.Fatal(err)
	}
	on, err := Adapt(pre, &c, InterFrame, &Options{AllowHighPrecisionMV: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 2 {
		if off.MV.Comps[i].Class0HP != pre.MV.Comps[i].Class0HP {
			t.Errorf("component %d: class0 hp adapted without high precision", i)
		}
		if on.MV.Comps[i].Class0HP <= pre.MV.Comps[i].Class0HP {
			t.Errorf("component %d: class0 hp = %d, want above %d", i, on.MV.Comps[i].Class0HP, pre.MV.Comps[i].Class0HP)
		}
	}
}

func TestAdaptLogs(t *testing.T) {
	var buf bytes.Buffer
	opts := &Options{Logger: log.New(&buf, "", 0)}
	pre := NewModel()
	if _, err := Adapt(pre, new(Counts), KeyFrame, opts); err != nil {
		t.Fatal(err)
	}
	if s := buf.String(); !strings.Contains(s, "coefficient probabilities: unchanged") {
		t.Errorf("log = %q, want unchanged coefficient probabilities", s)
	}

	buf.Reset()
	var c Counts
	c.MV.IncMV(MV{Row: 8}, PrecisionLow)
	if _, err := Adapt(pre, &c, InterFrame, opts); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	if !strings.Contains(s, "motion vector probabilities: ") || !strings.Contains(s, "changes") {
		t.Errorf("log = %q, want motion vector changes", s)
	}
	if !strings.Contains(s, "Joints") {
		t.Errorf("log = %q, want the changed field path", s)
	}
}

func TestAdaptRejectsOptions(t *testing.T) {
	if _, err := Adapt(NewModel(), new(Counts), KeyFrame, &Options{BitDepth: 9}); !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("err = %v, want ErrConfigMismatch", err)
	}
}
