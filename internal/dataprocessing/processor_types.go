package dataprocessing

// ProcessingOptions names the columns the missing-value processor acts on
type ProcessingOptions struct {
	// FilterColumns are required before imputation; rows missing any of them
	// are dropped and take no part in the medians
	FilterColumns []string

	// KeyColumns are required in the output; rows missing any of them are
	// dropped after imputation
	KeyColumns []string

	// NumericColumns have missing entries filled with the column median
	NumericColumns []string
}
