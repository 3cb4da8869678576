// Package server runs the small loopback HTTP server that receives OAuth
// redirects for command-line sign-in.
//
//	addr, path, err := server.CallbackAddr(cfg.RedirectURL)
//	if err != nil {
//		return err
//	}
//	mux := http.NewServeMux()
//	mux.Handle(path, provider.CallbackHandler())
//
//	srv := server.New(addr, server.WithLogger(log))
//	if _, err := srv.Listen(); err != nil {
//		return err // port taken: do not start the flow
//	}
//	g.Go(srv.Run(ctx, mux))
//
// Run is meant for errgroup: it serves until the context is canceled and then
// shuts down within the shutdown timeout.
package server
