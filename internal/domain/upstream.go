package domain

// ============================================================
// Billing system wire contract (list / create / update)
// ============================================================

// Record is one raw row returned by the billing system. Values are strings,
// json.Number or nested objects depending on the resource.
type Record map[string]any

// Query filters a list call. Field is qualified by the resource
// (e.g. "fn_areceber.id_cliente").
type Query struct {
	Field     string
	Value     string
	Oper      string
	Page      int
	Rows      int
	SortName  string
	SortOrder string
}

// ListResult is what a list call yields. Degraded is set when the call
// soft-failed and Records is empty because of it, not because there was
// no data.
type ListResult struct {
	Total    int
	Records  []Record
	Degraded bool
}

// WriteResult is what a create/update call yields. It never carries a Go
// error; callers must check Error.
type WriteResult struct {
	Success bool
	ID      string
	Error   bool
	Status  int
	Message string
}
