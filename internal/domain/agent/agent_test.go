package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapacityRemaining(t *testing.T) {
	tests := []struct {
		name     string
		target   int
		pipeline int
		want     int
	}{
		{"open slots", 10, 4, 6},
		{"full", 10, 10, 0},
		{"overfull never negative", 10, 14, 0},
		{"zero target", 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &ScoringInput{CapacityTarget: tt.target, ActivePipeline: tt.pipeline}
			assert.Equal(t, tt.want, in.CapacityRemaining())
		})
	}
}
