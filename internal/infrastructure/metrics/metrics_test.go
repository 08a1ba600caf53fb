package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMenuFetch(t *testing.T) {
	beforeOK := testutil.ToFloat64(MenuFetchTotal.WithLabelValues(ModeHTTP, "success"))
	beforeErr := testutil.ToFloat64(MenuFetchTotal.WithLabelValues(ModeRenderer, "error"))

	RecordMenuFetch(ModeHTTP, 42, 120*time.Millisecond, nil)
	if got := testutil.ToFloat64(MenuItemsExtracted); got != 42 {
		t.Errorf("MenuItemsExtracted = %v, want 42", got)
	}

	RecordMenuFetch(ModeRenderer, 0, time.Second, errors.New("timeout"))
	if got := testutil.ToFloat64(MenuItemsExtracted); got != 42 {
		t.Errorf("failed fetch should keep the gauge, got %v", got)
	}

	if got := testutil.ToFloat64(MenuFetchTotal.WithLabelValues(ModeHTTP, "success")); got != beforeOK+1 {
		t.Errorf("success counter = %v, want %v", got, beforeOK+1)
	}
	if got := testutil.ToFloat64(MenuFetchTotal.WithLabelValues(ModeRenderer, "error")); got != beforeErr+1 {
		t.Errorf("error counter = %v, want %v", got, beforeErr+1)
	}
}

func TestRecordFragmentFailure(t *testing.T) {
	before := testutil.ToFloat64(FragmentFailuresTotal)

	RecordFragmentFailure()
	RecordFragmentFailure()

	if got := testutil.ToFloat64(FragmentFailuresTotal); got != before+2 {
		t.Errorf("FragmentFailuresTotal = %v, want %v", got, before+2)
	}
}

func TestRecordOptimization(t *testing.T) {
	tests := []struct {
		name         string
		limitPrimary bool
		err          error
		label        string
		result       string
	}{
		{name: "制限なし", limitPrimary: false, label: "false", result: "success"},
		{name: "制限あり", limitPrimary: true, label: "true", result: "success"},
		{name: "失敗", limitPrimary: true, err: errors.New("negative budget"), label: "true", result: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := OptimizerRunsTotal.WithLabelValues(tt.label, tt.result)
			before := testutil.ToFloat64(counter)

			RecordOptimization(tt.limitPrimary, time.Millisecond, tt.err)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("POST", "/api/calculate", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("POST", "/api/calculate", "200", 300*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", got, before+1)
	}
}

func TestRecordCafeteriaRefresh(t *testing.T) {
	RecordCafeteriaRefresh(7, nil)
	if got := testutil.ToFloat64(CafeteriasKnown); got != 7 {
		t.Errorf("CafeteriasKnown = %v, want 7", got)
	}

	before := testutil.ToFloat64(CafeteriaRefreshTotal.WithLabelValues("error"))
	RecordCafeteriaRefresh(0, errors.New("no anchors"))
	if got := testutil.ToFloat64(CafeteriasKnown); got != 7 {
		t.Errorf("failed refresh should keep the gauge, got %v", got)
	}
	if got := testutil.ToFloat64(CafeteriaRefreshTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}
