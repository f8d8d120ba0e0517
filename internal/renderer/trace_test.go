package renderer

import (
	"errors"
	"testing"
)

// TestParseTrace tests boundary validation of raw trace payloads.
func TestParseTrace(t *testing.T) {
	t.Parallel()

	t.Run("valid full payload", func(t *testing.T) {
		t.Parallel()

		payload := `{
			"pageWeightBytes": 3584,
			"resources": [
				{"url": "/a.js", "initiatorType": "script", "transferSizeBytes": 2048},
				{"url": "/b.png", "initiatorType": "img", "transferSizeBytes": 1024},
				{"url": "/c.css", "initiatorType": "link", "transferSizeBytes": 512}
			],
			"greenHostingStatus": "Green",
			"emissions": {"totalGrams": 0.12, "rating": "A"}
		}`

		trace, err := ParseTrace([]byte(payload))
		if err != nil {
			t.Fatalf("ParseTrace returned error: %v", err)
		}
		if trace.PageWeight != 3584 {
			t.Errorf("PageWeight = %d, want 3584", trace.PageWeight)
		}
		if len(trace.Resources) != 3 {
			t.Errorf("got %d resources, want 3", len(trace.Resources))
		}
		if trace.Emissions == nil || trace.Emissions.TotalGrams != 0.12 {
			t.Errorf("Emissions = %+v, want totalGrams 0.12", trace.Emissions)
		}
		if trace.GreenHostingStatus != "Green" {
			t.Errorf("GreenHostingStatus = %q, want Green", trace.GreenHostingStatus)
		}
	})

	t.Run("minimal payload without optional fields", func(t *testing.T) {
		t.Parallel()

		trace, err := ParseTrace([]byte(`{"pageWeightBytes": 0, "resources": []}`))
		if err != nil {
			t.Fatalf("ParseTrace returned error: %v", err)
		}
		if trace.Emissions != nil {
			t.Errorf("Emissions = %+v, want nil", trace.Emissions)
		}
		if len(trace.Resources) != 0 {
			t.Errorf("got %d resources, want 0", len(trace.Resources))
		}
	})

	t.Run("rejected payloads", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			payload string
		}{
			{"not json", `<html>error page</html>`},
			{"missing resources", `{"pageWeightBytes": 100}`},
			{"missing page weight", `{"resources": []}`},
			{"negative page weight", `{"pageWeightBytes": -1, "resources": []}`},
			{"resource missing url", `{"pageWeightBytes": 1, "resources": [{"initiatorType": "img", "transferSizeBytes": 1}]}`},
			{"resource size wrong type", `{"pageWeightBytes": 1, "resources": [{"url": "/a", "initiatorType": "img", "transferSizeBytes": "big"}]}`},
			{"invalid hosting status", `{"pageWeightBytes": 1, "resources": [], "greenHostingStatus": "Greenish"}`},
			{"negative emissions", `{"pageWeightBytes": 1, "resources": [], "emissions": {"totalGrams": -0.5}}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				if _, err := ParseTrace([]byte(tt.payload)); !errors.Is(err, ErrInvalidTrace) {
					t.Errorf("ParseTrace error = %v, want ErrInvalidTrace", err)
				}
			})
		}
	})
}
