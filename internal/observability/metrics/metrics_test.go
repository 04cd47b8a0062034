package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAddsServiceLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg, "auth"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	AuthLoginsTotal.WithLabelValues("success").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() != "auth_logins_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "service" && lp.GetValue() == "auth" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("auth_logins_total missing service label")
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg, "auth"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg, "auth"); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestResult(t *testing.T) {
	if Result(nil) != "success" || Result(errors.New("x")) != "failure" {
		t.Fatalf("unexpected result labels")
	}
	before := testutil.ToFloat64(TokensIssuedTotal.WithLabelValues("issue", "success"))
	TokensIssuedTotal.WithLabelValues("issue", Result(nil)).Inc()
	if got := testutil.ToFloat64(TokensIssuedTotal.WithLabelValues("issue", "success")); got != before+1 {
		t.Fatalf("counter did not move: %v -> %v", before, got)
	}
}
