package bench

import (
	"fmt"
	"math"
	"strings"

	"github.com/iamkarasik/hardwood/internal/contender"
	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// DefaultTolerance is the relative tolerance applied to floating-point
// fields during verification.
const DefaultTolerance = 1e-6

// FieldComparison is one field of a contender's first run checked against
// the reference.
type FieldComparison struct {
	Name      string
	Reference aggregate.Field
	Actual    aggregate.Field
	OK        bool
}

// ContenderVerification holds the field-by-field comparison for one
// contender.
type ContenderVerification struct {
	Contender contender.Contender
	Fields    []FieldComparison
	OK        bool
}

// Verification is the outcome of comparing every contender's first run
// against the reference run.
type Verification struct {
	// Skipped is set when fewer than two contenders ran.
	Skipped    bool
	Tolerance  float64
	Contenders []ContenderVerification
	OK         bool
}

// Verify compares each contender's first run against the session
// reference: the first contender's first run. Integer fields must match
// exactly; floating-point fields within the relative tolerance, with
// exact matches (including zero against zero) always passing. A
// non-positive tolerance falls back to DefaultTolerance.
func Verify(session *Session, tolerance float64) Verification {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	v := Verification{Tolerance: tolerance, OK: true}
	if len(session.Results) < 2 {
		v.Skipped = true
		return v
	}

	reference := session.Reference().Fields()
	for _, result := range session.Results[1:] {
		cv := ContenderVerification{Contender: result.Contender, OK: true}
		actual := result.Runs[0].Aggregate.Fields()
		for i, ref := range reference {
			fc := FieldComparison{Name: ref.Name, Reference: ref, Actual: actual[i]}
			switch ref.Kind {
			case aggregate.KindInt:
				fc.OK = ref.Int == actual[i].Int
			case aggregate.KindFloat:
				fc.OK = floatsEqual(ref.Float, actual[i].Float, tolerance)
			}
			if !fc.OK {
				cv.OK = false
				v.OK = false
			}
			cv.Fields = append(cv.Fields, fc)
		}
		v.Contenders = append(v.Contenders, cv)
	}
	return v
}

// floatsEqual reports whether two floats agree within a relative
// tolerance. Exact matches pass without a magnitude check.
func floatsEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	largest := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= tolerance*largest
}

// Err returns nil when verification passed or was skipped, and a
// verification error naming the disagreeing contenders and fields
// otherwise.
func (v Verification) Err() error {
	if v.OK {
		return nil
	}
	var parts []string
	for _, cv := range v.Contenders {
		if cv.OK {
			continue
		}
		var fields []string
		for _, fc := range cv.Fields {
			if !fc.OK {
				fields = append(fields, fc.Name)
			}
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", cv.Contender.Key, strings.Join(fields, ", ")))
	}
	return errors.NewVerifyError(fmt.Sprintf("results differ from reference: %s", strings.Join(parts, "; ")))
}
