package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

type modelBackend struct {
	m *model.Model
}

func (b modelBackend) Element(id model.ElementID) (*model.Element, error) {
	return b.m.Element(id)
}

func (b modelBackend) Discover(start model.ElementID) (*traversal.Result, error) {
	return traversal.Traverse(connectivity.NewModelGraph(b.m, nil), start)
}

func ref(id model.ElementID, c model.Connector) model.ConnectorRef {
	return model.ConnectorRef{Element: id, Connector: c}
}

// C1(1) - F1(2) - C2(3) - JB(4), plus an unconnected electrical panel (5).
func newHandler(t *testing.T) *GraphQLHandler {
	t.Helper()
	m, err := model.FromDocument(&model.Document{
		Elements: []model.Element{
			{ID: 1, Category: connectivity.CategoryConduits, Name: "C1", Connectors: 2,
				Parameters: map[string]string{"Wire Size": "#12", "From": "PNL-A"}},
			{ID: 2, Category: connectivity.CategoryConduitFittings, Connectors: 2},
			{ID: 3, Category: connectivity.CategoryConduits, Connectors: 2},
			{ID: 4, Category: connectivity.CategoryJunctionBoxes, Name: "JB-1", Connectors: 4},
			{ID: 5, Category: "Electrical Equipment", Connectors: 1},
		},
		Connections: []model.Connection{
			{A: ref(1, 1), B: ref(2, 0)},
			{A: ref(2, 1), B: ref(3, 0)},
			{A: ref(3, 1), B: ref(4, 0)},
		},
	})
	require.NoError(t, err)

	schema, err := GenerateSchema(modelBackend{m: m})
	require.NoError(t, err)
	return NewGraphQLHandler(schema)
}

func TestElementQuery(t *testing.T) {
	h := newHandler(t)

	resp := h.Execute(context.Background(), GraphQLRequest{
		Query: `{ element(id: "1") { id category name connectors parameters { name value } } }`,
	})
	require.Empty(t, resp.Errors)

	data := resp.Data.(map[string]any)
	el := data["element"].(map[string]any)
	assert.Equal(t, "1", el["id"])
	assert.Equal(t, "Conduits", el["category"])
	assert.Equal(t, "C1", el["name"])
	assert.Equal(t, 2, el["connectors"])

	params := el["parameters"].([]any)
	require.Len(t, params, 2)
	assert.Equal(t, "From", params[0].(map[string]any)["name"], "parameters are sorted by name")
	assert.Equal(t, "#12", params[1].(map[string]any)["value"])
}

func TestElementQuery_Unknown(t *testing.T) {
	h := newHandler(t)

	resp := h.Execute(context.Background(), GraphQLRequest{Query: `{ element(id: "99") { id } }`})
	require.Empty(t, resp.Errors)
	assert.Nil(t, resp.Data.(map[string]any)["element"])
}

func TestElementQuery_InvalidID(t *testing.T) {
	h := newHandler(t)

	resp := h.Execute(context.Background(), GraphQLRequest{Query: `{ element(id: "abc") { id } }`})
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "invalid id")
}

func TestNetworkQuery(t *testing.T) {
	h := newHandler(t)

	resp := h.Execute(context.Background(), GraphQLRequest{
		Query:     `query N($start: ID!) { network(start: $start) { start visited runs { id } fittings { id } junctionBoxes { id name } skipped } }`,
		Variables: map[string]any{"start": "1"},
	})
	require.Empty(t, resp.Errors)

	network := resp.Data.(map[string]any)["network"].(map[string]any)
	assert.Equal(t, "1", network["start"])
	assert.Equal(t, 4, network["visited"])

	ids := func(field string) []string {
		var out []string
		for _, item := range network[field].([]any) {
			out = append(out, item.(map[string]any)["id"].(string))
		}
		return out
	}
	assert.Equal(t, []string{"1", "3"}, ids("runs"))
	assert.Equal(t, []string{"2"}, ids("fittings"))
	assert.Equal(t, []string{"4"}, ids("junctionBoxes"))
	assert.Empty(t, network["skipped"])
}

func TestNetworkQuery_InvalidStart(t *testing.T) {
	h := newHandler(t)

	resp := h.Execute(context.Background(), GraphQLRequest{Query: `{ network(start: "42") { visited } }`})
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, traversal.ErrInvalidStartElement.Error())
}

func TestHealthQuery(t *testing.T) {
	h := newHandler(t)

	resp := h.Execute(context.Background(), GraphQLRequest{Query: `{ health }`})
	require.Empty(t, resp.Errors)
	assert.Equal(t, "ok", resp.Data.(map[string]any)["health"])
}

func TestValidateQueryDepth(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		max     int
		wantErr bool
	}{
		{"flat", `{ health }`, 1, false},
		{"nested within limit", `{ network(start: "1") { runs { parameters { name } } } }`, 4, false},
		{"nested beyond limit", `{ network(start: "1") { runs { parameters { name } } } }`, 3, true},
		{"introspection ignored", `{ __schema { types { fields { name } } } }`, 1, false},
		{"parse error", `{ network(`, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQueryDepth(tt.query, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecute_DepthLimit(t *testing.T) {
	h := newHandler(t)
	h.maxDepth = 2

	resp := h.Execute(context.Background(), GraphQLRequest{Query: `{ network(start: "1") { runs { id } } }`})
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "exceeds maximum allowed depth")
	assert.Nil(t, resp.Data)
}

func TestServeHTTP(t *testing.T) {
	h := newHandler(t)

	t.Run("post", func(t *testing.T) {
		body, _ := json.Marshal(GraphQLRequest{Query: `{ element(id: "4") { name } }`})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp GraphQLResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Empty(t, resp.Errors)
		assert.Contains(t, mustJSON(t, resp.Data), "JB-1")
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
