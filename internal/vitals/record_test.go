package vitals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesOrder(t *testing.T) {
	r := Record{Age: 30, HeartRate: 70, Systolic: 115, Diastolic: 75, Cholesterol: 180}
	assert.Equal(t, Features{30, 70, 115, 180}, r.Features())
}

func TestFeaturesDefaultCholesterol(t *testing.T) {
	r := Record{Age: 40, HeartRate: 80, Systolic: 120, Diastolic: 80}
	f := r.Features()
	assert.Equal(t, float64(DefaultCholesterol), f[3])
	assert.Zero(t, r.Cholesterol, "Features must not mutate the caller's record")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		record    Record
		wantField string
	}{
		{"complete", Record{Age: 30, HeartRate: 70, Systolic: 115, Diastolic: 75, Cholesterol: 180}, ""},
		{"cholesterol optional", Record{Age: 30, HeartRate: 70, Systolic: 115, Diastolic: 75}, ""},
		{"missing heart rate", Record{Age: 30, Systolic: 115, Diastolic: 75}, "heartRate"},
		{"missing systolic", Record{Age: 30, HeartRate: 70, Diastolic: 75}, "systolic"},
		{"missing diastolic", Record{Age: 30, HeartRate: 70, Systolic: 115}, "diastolic"},
		{"missing age", Record{HeartRate: 70, Systolic: 115, Diastolic: 75}, "age"},
		{"negative cholesterol", Record{Age: 30, HeartRate: 70, Systolic: 115, Diastolic: 75, Cholesterol: -1}, "cholesterol"},
		{"extreme values accepted", Record{Age: 200, HeartRate: 300, Systolic: 115, Diastolic: 75}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestRecordString(t *testing.T) {
	r := Record{Age: 52, HeartRate: 72, Systolic: 120, Diastolic: 80}
	assert.Equal(t, "age 52, 72 BPM, 120/80 mmHg, cholesterol 200 mg/dL", r.String())
}
