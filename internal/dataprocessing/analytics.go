package dataprocessing

// Analyze computes the end-of-run statistics. Empty option fields are
// skipped. A value column without values yields no value statistics.
func Analyze(f *Frame, opts AnalysisOptions) (Statistics, error) {
	stats := Statistics{TotalRows: f.Len()}

	if opts.IDColumn != "" {
		n, err := UniqueCount(f, opts.IDColumn)
		if err != nil {
			return stats, err
		}
		stats.UniqueLocations = n
	}

	if opts.TimestampColumn != "" {
		if kind, _ := f.Kind(opts.TimestampColumn); kind == KindTime {
			earliest, latest, ok, err := TimeRange(f, opts.TimestampColumn)
			if err != nil {
				return stats, err
			}
			if ok {
				stats.Earliest, stats.Latest = earliest, latest
			}
		}
	}

	if opts.ValueColumn != "" {
		if kind, _ := f.Kind(opts.ValueColumn); kind == KindFloat {
			if desc, err := Describe(f, opts.ValueColumn); err == nil {
				stats.Value = &desc
			}
		}
	}

	return stats, nil
}
