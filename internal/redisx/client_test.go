package redisx

import (
	"testing"
	"time"
)

func TestNewAppliesTimeout(t *testing.T) {
	r := New("localhost:6379")
	defer r.Close()

	opts := r.Options()
	if opts.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", opts.ReadTimeout, 2*time.Second)
	}
	if opts.WriteTimeout != 2*time.Second {
		t.Errorf("WriteTimeout = %v, want %v", opts.WriteTimeout, 2*time.Second)
	}
}
