package coreutil_test

import (
	"errors"
	"testing"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/coreutil"
	"github.com/spyro-labs/spyro-relayer/otelcore"
)

func TestUnwrapTarget(t *testing.T) {
	type testTarget struct {
		core.TargetChain
		initialized bool
	}
	type anotherTestTarget struct {
		core.TargetChain
	}
	type wrapperTarget struct {
		core.TargetChain
	}

	wantTarget := testTarget{
		initialized: true,
	}

	tests := []struct {
		name   string
		tc     core.TargetChain
		target any
		err    error
	}{
		{
			name:   "target pointer directly",
			tc:     &wantTarget,
			target: &testTarget{},
			err:    nil,
		},
		{
			name:   "target directly",
			tc:     wantTarget,
			target: testTarget{},
			err:    nil,
		},
		{
			name:   "traced target pointer",
			tc:     otelcore.NewTarget(&wantTarget, nil),
			target: &testTarget{},
			err:    nil,
		},
		{
			name:   "target traced twice",
			tc:     otelcore.NewTarget(otelcore.NewTarget(wantTarget, nil), nil),
			target: testTarget{},
			err:    nil,
		},
		{
			name:   "different struct",
			tc:     otelcore.NewTarget(anotherTestTarget{}, nil),
			target: testTarget{},
			err:    errors.New("failed to unwrap target: expected=coreutil_test.testTarget, actual=coreutil_test.anotherTestTarget"),
		},
		{
			name:   "target wrapped by an unknown target",
			tc:     wrapperTarget{wantTarget},
			target: testTarget{},
			err:    errors.New("failed to unwrap target: expected=coreutil_test.testTarget, actual=coreutil_test.wrapperTarget"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			switch c := tt.target.(type) {
			case testTarget:
				c, err = coreutil.UnwrapTarget[testTarget](tt.tc)
				if err == nil && c != wantTarget {
					t.Errorf("c = %v, want %v", c, wantTarget)
				}
			case *testTarget:
				c, err = coreutil.UnwrapTarget[*testTarget](tt.tc)
				if err == nil && c != &wantTarget {
					t.Errorf("unwrapped target has an unexpected address")
				}
			}
			if err != tt.err && (err == nil || tt.err == nil || err.Error() != tt.err.Error()) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestUnwrapVerifier(t *testing.T) {
	type testVerifier struct {
		core.Verifier
		initialized bool
	}

	wantVerifier := &testVerifier{initialized: true}

	v, err := coreutil.UnwrapVerifier[*testVerifier](otelcore.NewVerifier(wantVerifier, nil))
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if v != wantVerifier {
		t.Errorf("unwrapped verifier has an unexpected address")
	}

	_, err = coreutil.UnwrapVerifier[*testVerifier](core.VerifierFunc(nil))
	want := "failed to unwrap verifier: expected=*coreutil_test.testVerifier, actual=core.VerifierFunc"
	if err == nil || err.Error() != want {
		t.Errorf("err = %v, want %v", err, want)
	}
}
