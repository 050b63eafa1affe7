package main

import (
	"errors"
	"testing"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseApp(t *testing.T) {
	backupErr := errors.New("automatic backup: vault unreachable")
	runErr := errors.New("no match")

	tests := []struct {
		name     string
		runErr   error
		closeErr error
		want     error
	}{
		{"both succeed", nil, nil, nil},
		{"close fails after success", nil, backupErr, backupErr},
		{"command error wins", runErr, backupErr, runErr},
		{"command error kept", runErr, nil, runErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closed := false
			run := func() (err error) {
				defer closeApp(closerFunc(func() error {
					closed = true
					return tt.closeErr
				}), &err)
				return tt.runErr
			}

			if err := run(); !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !closed {
				t.Error("Close was not called")
			}
		})
	}
}
