// Package ws implements the WebSocket hub, the reactive loop of the
// dashboard.
//
// New(engine, settings, opts...) creates a Hub. Hub.ServeHTTP upgrades the
// connection and immediately sends the dataset description followed by the
// views for the default filter (seq 0). After that every filter message is
// answered, in order, with both views recomputed for that filter:
//
//	client → {"type":"filter","seq":7,"site":"KSC LC-39A","payload":[600,2000]}
//	server ← {"event":"views","seq":7,"data":{"filter":…,"summary":…,"scatter":…}}
//	server ← {"event":"error","seq":7,"error":"compute: invalid filter: …"}
//
// Site and bounds are read the way the REST API reads them: a blank site means
// the configured default, and a bound may be a string such as "+Inf" to leave
// that side of the range open.
//
// Seq is echoed so a client that sent several changes quickly can drop
// replies older than its latest request. BroadcastSettings pushes a
// {"event":"settings"} message to every client after a config reload.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
//
// Clients whose send buffer fills up are disconnected. The upgrader accepts
// all origins. The hub is mounted at /ws/stream by the api package.
package ws
