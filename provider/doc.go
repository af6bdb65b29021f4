// Package provider holds the small generic framework transcription backends
// plug into: a Provider identity, the RequestResponse call shape, a
// factory Registry keyed by backend name and composable Middleware.
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.RegisterFactory("cli", whispercli.Factory)
//	p, err := reg.Create(cfg.Transcription.Backend, settings)
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithTracing[In, Out]("offlinestt"),
//	)(p)
package provider
