// Package operations runs the air-quality cleaning pipeline.
//
// A Pipeline executes an ordered list of stages against a RunState. Each
// stage reads state.Frame, replaces it with a derived copy and records its
// statistics on state.Current. The first failing stage aborts the run; its
// error is an AppError carrying the stage ID, so callers can report which
// step failed and why.
//
// Default stages, in order:
//
//	load              read and validate the CSV or Excel input
//	select_columns    keep the configured columns, drop repeated header rows
//	coerce_numeric    turn unparseable numbers into missing values
//	parse_timestamps  normalize timestamps to UTC
//	handle_missing    drop rows without keys, median-impute numeric columns
//	deduplicate       keep the first row of each (location, timestamp)
//	sort              order by location then timestamp
//	save              write the CSV atomically and read it back
//
// Example usage:
//
//	p, err := operations.NewPipeline(cfg, logger,
//		operations.WithTracer(tel.Tracer),
//		operations.WithMetrics(metrics))
//	if err != nil {
//		return err
//	}
//	result, err := p.Run(ctx)
package operations
