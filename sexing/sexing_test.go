package sexing_test

import (
	"math"
	"testing"

	"github.com/grailbio/bio-sexing/sexing"
	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.25, sexing.Ratio(100, 400))
	assert.True(t, math.IsInf(sexing.Ratio(5, 0), 1))
	assert.True(t, math.IsNaN(sexing.Ratio(0, 0)))
}

func TestClassifySingleThreshold(t *testing.T) {
	policy := sexing.Policy{Threshold: 0.1, MinX: 1}
	tests := []struct {
		yReads, xReads int64
		want           sexing.Label
	}{
		{100, 400, sexing.Male},     // 0.25 >= 0.1
		{10, 400, sexing.Female},    // 0.025 < 0.1
		{40, 400, sexing.Male},      // exactly at the threshold
		{39, 400, sexing.Female},    // just below
		{5, 0, sexing.Undetermined}, // gated by MinX
		{0, 400, sexing.Female},
	}
	for _, test := range tests {
		got := sexing.Classify(test.yReads, test.xReads, policy)
		assert.Equal(t, test.want, got, "Classify(%d, %d)", test.yReads, test.xReads)
	}
}

func TestClassifyInfiniteRatio(t *testing.T) {
	// x = 0 with the gate disabled: the ratio is +Inf, male under any
	// finite threshold in either mode.
	policy := sexing.Policy{Threshold: 1e9}
	assert.Equal(t, sexing.Male, sexing.Classify(1, 0, policy))

	policy = sexing.Policy{TwoThresholds: true, Upper: 1e9, Lower: 0.05}
	assert.Equal(t, sexing.Male, sexing.Classify(1, 0, policy))
}

func TestClassifyTwoThresholds(t *testing.T) {
	policy := sexing.Policy{TwoThresholds: true, Upper: 0.2, Lower: 0.05, MinX: 1}
	tests := []struct {
		yReads, xReads int64
		want           sexing.Label
	}{
		{100, 400, sexing.Male},        // 0.25 >= upper
		{80, 400, sexing.Male},         // exactly at upper
		{20, 400, sexing.Female},       // exactly at lower
		{10, 400, sexing.Female},       // below lower
		{40, 400, sexing.Undetermined}, // strictly between
	}
	for _, test := range tests {
		got := sexing.Classify(test.yReads, test.xReads, policy)
		assert.Equal(t, test.want, got, "Classify(%d, %d)", test.yReads, test.xReads)
	}
}

func TestClassifyGatesDominate(t *testing.T) {
	// A clearly male ratio stays undetermined below either gate.
	policy := sexing.Policy{Threshold: 0.1, MinY: 50, MinX: 1}
	assert.Equal(t, sexing.Undetermined, sexing.Classify(49, 100, policy))
	assert.Equal(t, sexing.Male, sexing.Classify(50, 100, policy))

	policy = sexing.Policy{TwoThresholds: true, Upper: 0.2, Lower: 0.05, MinX: 500}
	assert.Equal(t, sexing.Undetermined, sexing.Classify(400, 499, policy))
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "male", sexing.Male.String())
	assert.Equal(t, "female", sexing.Female.String())
	assert.Equal(t, "undetermined", sexing.Undetermined.String())
}
