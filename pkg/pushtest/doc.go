// Package pushtest provides an in-process webcast push server for tests
// and local development.
//
// The server upgrades handshakes that carry the expected cookie and query
// parameters, hands each connection to the caller, and records what the
// client writes back: acks by id and keepalive frames by count.
//
//	srv := pushtest.NewServer(pushtest.WithCookie("ttwid=abc"))
//	defer srv.Close()
//
//	cfg.URL = srv.URL()
//	sess := session.Connect(ctx, cfg)
//
//	conn, _ := srv.Accept(time.Second)
//	conn.Send(&protocol.Container{ID: 42, Type: protocol.TypeMessage, Raw: payload})
//	id := <-conn.Acks()
package pushtest
