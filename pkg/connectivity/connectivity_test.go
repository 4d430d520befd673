package connectivity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

func buildModel(t *testing.T) *model.Model {
	t.Helper()
	doc := &model.Document{
		Elements: []model.Element{
			{ID: 10, Category: CategoryConduits, Connectors: 2},
			{ID: 20, Category: CategoryConduitFittings, Connectors: 3},
			{ID: 30, Category: CategoryConduits, Connectors: 2},
			{ID: 40, Category: CategoryJunctionBoxes, Connectors: 2},
			{ID: 50, Category: "Cable Trays", Connectors: 2},
			{ID: 60, Category: CategoryElectricalFixtures, Connectors: 1},
		},
		Connections: []model.Connection{
			{A: model.ConnectorRef{Element: 10, Connector: 1}, B: model.ConnectorRef{Element: 20, Connector: 0}},
			// Two connections between the same pair must yield one neighbor.
			{A: model.ConnectorRef{Element: 20, Connector: 1}, B: model.ConnectorRef{Element: 30, Connector: 0}},
			{A: model.ConnectorRef{Element: 20, Connector: 2}, B: model.ConnectorRef{Element: 30, Connector: 1}},
			{A: model.ConnectorRef{Element: 10, Connector: 0}, B: model.ConnectorRef{Element: 50, Connector: 0}},
			{A: model.ConnectorRef{Element: 30, Connector: 1}, B: model.ConnectorRef{Element: 40, Connector: 0}},
			// A junction box joined to itself across two connectors.
			{A: model.ConnectorRef{Element: 40, Connector: 0}, B: model.ConnectorRef{Element: 40, Connector: 1}},
		},
	}
	m, err := model.FromDocument(doc)
	require.NoError(t, err)
	return m
}

func TestClassificationString(t *testing.T) {
	for _, c := range []Classification{RunSegment, Fitting, JunctionBox} {
		parsed, err := ParseClassification(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "unclassified", Unclassified.String())

	_, err := ParseClassification("cable_tray")
	assert.Error(t, err)
}

func TestDefaultClassifier(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		category string
		want     Classification
	}{
		{CategoryConduits, RunSegment},
		{CategoryConduitFittings, Fitting},
		{CategoryElectricalFixtures, JunctionBox},
		{CategoryJunctionBoxes, JunctionBox},
	}
	for _, tt := range tests {
		got, err := c.Classify(tt.category)
		require.NoError(t, err, tt.category)
		assert.Equal(t, tt.want, got, tt.category)
	}

	_, err := c.Classify("Cable Trays")
	assert.ErrorIs(t, err, ErrUnclassifiableElement)

	assert.Equal(t, []string{CategoryElectricalFixtures, CategoryJunctionBoxes}, c.Categories(JunctionBox))
}

func TestNewClassifier_IgnoresUnclassified(t *testing.T) {
	c := NewClassifier(map[string]Classification{"Cable Trays": Unclassified, "Wireways": RunSegment})

	_, err := c.Classify("Cable Trays")
	assert.ErrorIs(t, err, ErrUnclassifiableElement)

	got, err := c.Classify("Wireways")
	require.NoError(t, err)
	assert.Equal(t, RunSegment, got)
}

func TestModelGraph_Classify(t *testing.T) {
	g := NewModelGraph(buildModel(t), nil)

	class, err := g.Classify(20)
	require.NoError(t, err)
	assert.Equal(t, Fitting, class)

	_, err = g.Classify(50)
	assert.ErrorIs(t, err, ErrUnclassifiableElement)

	_, err = g.Classify(999)
	assert.ErrorIs(t, err, model.ErrElementNotFound)
}

func TestModelGraph_Neighbors(t *testing.T) {
	g := NewModelGraph(buildModel(t), nil)

	tests := []struct {
		id   model.ElementID
		want []model.ElementID
	}{
		{10, []model.ElementID{20, 50}},
		{20, []model.ElementID{10, 30}},
		{30, []model.ElementID{20, 40}},
		{40, []model.ElementID{30}},
		{60, []model.ElementID{}},
	}
	for _, tt := range tests {
		got, err := g.Neighbors(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "neighbors of %d", tt.id)
	}

	_, err := g.Neighbors(999)
	assert.ErrorIs(t, err, model.ErrElementNotFound)
}

func TestModelGraph_Deterministic(t *testing.T) {
	g := NewModelGraph(buildModel(t), nil)
	first, err := g.Neighbors(20)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := g.Neighbors(20)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestModelGraph_CustomClassifier(t *testing.T) {
	c := NewClassifier(map[string]Classification{"Cable Trays": RunSegment})
	g := NewModelGraph(buildModel(t), c)

	class, err := g.Classify(50)
	require.NoError(t, err)
	assert.Equal(t, RunSegment, class)

	_, err = g.Classify(10)
	assert.ErrorIs(t, err, ErrUnclassifiableElement)
}

func TestMemoryGraph(t *testing.T) {
	failure := errors.New("connector lookup failed")
	g := NewMemoryGraph().
		Add(1, RunSegment).
		Add(2, Fitting).
		Add(3, JunctionBox).
		Add(4, Unclassified).
		Chain(1, 2, 3).
		Join(2, 4).
		Join(1, 2).
		FailNeighbors(4, failure)

	assert.True(t, g.Exists(1))
	assert.False(t, g.Exists(9))
	assert.Len(t, g.IDs(), 4)

	got, err := g.Neighbors(2)
	require.NoError(t, err)
	assert.Equal(t, []model.ElementID{1, 3, 4}, got)

	_, err = g.Classify(4)
	assert.ErrorIs(t, err, ErrUnclassifiableElement)

	_, err = g.Neighbors(4)
	assert.ErrorIs(t, err, failure)

	assert.Panics(t, func() { g.Join(1, 42) })
}
