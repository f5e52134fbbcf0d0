package web

import (
	"embed"
	"html/template"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
)

//go:embed templates/*
var embedFS embed.FS

var templates *template.Template

var funcs = template.FuncMap{
	"formatTaxID": domain.FormatTaxID,
}

func init() {
	var err error
	templates, err = template.New("").Funcs(funcs).ParseFS(embedFS, "templates/*.html")
	if err != nil {
		panic("failed to parse embedded templates: " + err.Error())
	}
}
