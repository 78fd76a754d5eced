package flatindex

import "fmt"

// DimensionError is returned when a query vector's dimensionality does not
// match the index. It indicates the query embedder and the embedder used at
// build time disagree.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("query vector dimension %d does not match index dimension %d", e.Got, e.Want)
}
