package model

import "testing"

func runParams(from, to, wire string) map[string]string {
	return map[string]string{
		"From":      from,
		"To":        to,
		"Wire Size": wire,
		"Comments":  "",
		"Set(s)":    "1",
	}
}

// linearDocument is C1 - F1 - C2 - JB.
func linearDocument() *Document {
	return &Document{
		Elements: []Element{
			{ID: 1, Category: "Conduits", Name: "C1", Connectors: 2, Parameters: runParams("PNL-A", "JB-1", "#12")},
			{ID: 2, Category: "Conduit Fittings", Name: "F1", Connectors: 2, Parameters: runParams("", "", "")},
			{ID: 3, Category: "Conduits", Name: "C2", Connectors: 2, Parameters: runParams("", "", "")},
			{ID: 4, Category: "Junction Boxes", Name: "JB-1", Connectors: 1, Parameters: map[string]string{
				"From": "", "To": "", "Wire Size": "", "Comments": "",
			}},
		},
		Connections: []Connection{
			{A: ConnectorRef{1, 1}, B: ConnectorRef{2, 0}},
			{A: ConnectorRef{2, 1}, B: ConnectorRef{3, 0}},
			{A: ConnectorRef{3, 1}, B: ConnectorRef{4, 0}},
		},
	}
}

func newLinearModel(t *testing.T) *Model {
	t.Helper()
	m, err := FromDocument(linearDocument())
	if err != nil {
		t.Fatalf("FromDocument failed: %v", err)
	}
	return m
}
