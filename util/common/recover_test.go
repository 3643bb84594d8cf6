package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverSwallowsPanic(t *testing.T) {
	var got any
	func() {
		defer func() { got = recover() }()
		func() {
			defer Recover("job")
			panic("boom")
		}()
	}()
	assert.Nil(t, got)
}
