// Package bootstrap runs one CLI command inside a uniform lifecycle: the
// logger is built from configuration, components such as the trace exporter
// are started, the task runs, and everything is shut down within a grace
// period even when the task fails.
//
//	app, err := bootstrap.NewApp(loaded)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return dispatcher.Dispatch(ctx, req)
//	})
package bootstrap
