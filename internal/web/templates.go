// Package web renders the public second-copy invoice lookup page.
package web

import (
	"bytes"
	"io"
)

// LookupData holds the values the lookup page is rendered with.
type LookupData struct {
	Title          string
	CompanyName    string
	LookupEndpoint string
	StatusEndpoint string
	// TaxID prefills the form, digits only. It is shown masked.
	TaxID string
	// StatusPollSeconds is how often the status widget refreshes.
	StatusPollSeconds int
}

// RenderLookup renders the second-copy lookup page.
func RenderLookup(data LookupData) (io.Reader, error) {
	if data.Title == "" {
		data.Title = "2ª via de boleto"
	}
	if data.LookupEndpoint == "" {
		data.LookupEndpoint = "/faturas"
	}
	if data.StatusPollSeconds <= 0 {
		data.StatusPollSeconds = 900
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "segunda_via.html", data); err != nil {
		return nil, err
	}
	return &buf, nil
}
