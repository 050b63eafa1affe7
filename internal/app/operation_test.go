package app

import (
	"errors"
	"testing"
	"time"
)

func TestOperation(t *testing.T) {
	op := NewOperation("log", time.Date(2024, 1, 15, 12, 30, 5, 0, time.FixedZone("X", 3600)))
	if op.ID != "20240115T113005Z" {
		t.Errorf("ID = %q, want 20240115T113005Z", op.ID)
	}

	op.record(false, nil)
	if op.Mutated || op.Status() != "success" {
		t.Errorf("after read: %+v", op)
	}

	op.record(true, errors.New("boom"))
	if op.Mutated {
		t.Error("failed mutation marked the operation mutated")
	}
	if op.Status() != "error" {
		t.Errorf("Status() = %q, want error", op.Status())
	}

	op.record(true, nil)
	if !op.Mutated {
		t.Error("successful mutation not recorded")
	}
}
