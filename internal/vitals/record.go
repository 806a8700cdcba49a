package vitals

import "fmt"

// DefaultCholesterol is used when a reading omits cholesterol (mg/dL).
const DefaultCholesterol = 200

// NumFeatures is the width of the classifier input.
const NumFeatures = 4

// FeatureNames lists the classifier inputs in vector order.
var FeatureNames = [NumFeatures]string{"age", "heartRate", "systolic", "cholesterol"}

// Features is the classifier input vector. The order is fixed; the
// synthetic generator and inference both build vectors through this type.
type Features [NumFeatures]float64

// Record is one set of vitals submitted by a caller.
type Record struct {
	Age         float64 `json:"age"`
	HeartRate   float64 `json:"heartRate"`
	Systolic    float64 `json:"systolic"`
	Diastolic   float64 `json:"diastolic"`
	Cholesterol float64 `json:"cholesterol,omitempty"`
}

// WithDefaults returns a copy with the cholesterol default applied.
func (r Record) WithDefaults() Record {
	if r.Cholesterol == 0 {
		r.Cholesterol = DefaultCholesterol
	}
	return r
}

// Features returns [age, heartRate, systolic, cholesterol].
// Diastolic pressure is recorded but not a model input.
func (r Record) Features() Features {
	r = r.WithDefaults()
	return Features{r.Age, r.HeartRate, r.Systolic, r.Cholesterol}
}

// String renders the record the way the tracker lists readings.
func (r Record) String() string {
	r = r.WithDefaults()
	return fmt.Sprintf("age %g, %g BPM, %g/%g mmHg, cholesterol %g mg/dL",
		r.Age, r.HeartRate, r.Systolic, r.Diastolic, r.Cholesterol)
}

// ValidationError reports a missing or non-positive field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid vitals: %s %s", e.Field, e.Reason)
}

// Validate checks the required fields are present and positive.
// Cholesterol is optional; ranges are not checked.
func (r Record) Validate() error {
	required := []struct {
		name  string
		value float64
	}{
		{"heartRate", r.HeartRate},
		{"systolic", r.Systolic},
		{"diastolic", r.Diastolic},
		{"age", r.Age},
	}
	for _, f := range required {
		if f.value <= 0 {
			return &ValidationError{Field: f.name, Reason: "is required and must be greater than zero"}
		}
	}
	if r.Cholesterol < 0 {
		return &ValidationError{Field: "cholesterol", Reason: "must be greater than zero"}
	}
	return nil
}
