package web

import (
	"io"
	"strings"
	"testing"
)

func TestLookupTemplateRendering(t *testing.T) {
	reader, err := RenderLookup(LookupData{
		CompanyName:    "Provedor Exemplo",
		StatusEndpoint: "/status",
		TaxID:          "12345678901",
	})
	if err != nil {
		t.Fatalf("failed to render lookup template: %v", err)
	}

	contentBytes, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read rendered template: %v", err)
	}
	content := string(contentBytes)

	expectedElements := []string{
		"Provedor Exemplo",
		"2ª via de boleto",
		`value="123.456.789-01"`,
		"lookup-form",
		"pix-modal",
		"status-widget",
	}
	for _, element := range expectedElements {
		if !strings.Contains(content, element) {
			t.Errorf("rendered template missing expected element: %s", element)
		}
	}
}

func TestLookupTemplateWithoutStatusWidget(t *testing.T) {
	reader, err := RenderLookup(LookupData{})
	if err != nil {
		t.Fatalf("failed to render lookup template: %v", err)
	}
	content, _ := io.ReadAll(reader)

	if strings.Contains(string(content), `id="status-widget"`) {
		t.Error("expected no status widget without a status endpoint")
	}
}

func TestLookupTemplateEscapesInput(t *testing.T) {
	reader, err := RenderLookup(LookupData{TaxID: `"><script>alert(1)</script>`})
	if err != nil {
		t.Fatalf("failed to render lookup template: %v", err)
	}
	content, _ := io.ReadAll(reader)

	if strings.Contains(string(content), "<script>alert(1)</script>") {
		t.Error("expected tax id to be escaped")
	}
}
