package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth admits network { runs { parameters { name } } } with room to spare.
const DefaultMaxDepth = 5

// calculateQueryDepth calculates the maximum depth of a GraphQL query
func calculateQueryDepth(document *ast.Document) int {
	maxDepth := 0

	for _, definition := range document.Definitions {
		if def, ok := definition.(*ast.OperationDefinition); ok {
			if depth := calculateSelectionSetDepth(def.SelectionSet, 1); depth > maxDepth {
				maxDepth = depth
			}
		}
	}

	return maxDepth
}

// calculateSelectionSetDepth recursively calculates the depth of a selection set
func calculateSelectionSetDepth(selectionSet *ast.SelectionSet, currentDepth int) int {
	if selectionSet == nil || len(selectionSet.Selections) == 0 {
		return currentDepth
	}

	maxDepth := currentDepth

	for _, selection := range selectionSet.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name.Value, "__") {
				continue
			}
			if sel.SelectionSet != nil {
				if depth := calculateSelectionSetDepth(sel.SelectionSet, currentDepth+1); depth > maxDepth {
					maxDepth = depth
				}
			}

		case *ast.InlineFragment:
			if depth := calculateSelectionSetDepth(sel.SelectionSet, currentDepth); depth > maxDepth {
				maxDepth = depth
			}

		case *ast.FragmentSpread:
			// Not resolved; counted as one level.
			if maxDepth < currentDepth+1 {
				maxDepth = currentDepth + 1
			}
		}
	}

	return maxDepth
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if queryDepth := calculateQueryDepth(document); queryDepth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", queryDepth, maxDepth)
	}
	return nil
}
