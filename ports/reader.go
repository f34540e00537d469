package ports

import (
	"modelrank/domain/dataset"
)

// DatasetReader loads a dataset frame from an external source
type DatasetReader interface {
	ReadFrame() (*dataset.Frame, error)
}
