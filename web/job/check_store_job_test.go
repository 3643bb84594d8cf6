package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	errs  []error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	err := f.errs[f.calls]
	f.calls++
	return err
}

func TestCheckStoreJobCountsFailures(t *testing.T) {
	down := errors.New("down")
	p := &fakePinger{errs: []error{down, down, nil, down}}
	j := NewCheckStoreJob(p)

	tests := []struct {
		name     string
		expected int
	}{
		{"first failure", 1},
		{"second failure", 2},
		{"recovered", 0},
		{"failed again", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j.Run()
			assert.Equal(t, tt.expected, j.failures)
		})
	}
	assert.Equal(t, 4, p.calls)
}
