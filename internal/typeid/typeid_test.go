package typeid

import (
	"strings"
	"testing"
)

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	if !strings.HasPrefix(id, "run_") {
		t.Errorf("id %q lacks the run_ prefix", id)
	}
	if err := Validate(id, PrefixRun); err != nil {
		t.Error(err)
	}
	if err := Validate(id, PrefixPlayer); err == nil {
		t.Error("run id validated as a player id")
	}
	if NewRunID() == id {
		t.Error("ids repeat")
	}
}

func TestValidate_Garbage(t *testing.T) {
	if err := Validate("not an id", PrefixRun); err == nil {
		t.Error("garbage id validated")
	}
}
