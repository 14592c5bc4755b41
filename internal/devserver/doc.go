// Package devserver assembles the dev-time pipeline: watcher, rebuild
// scheduler, build engine, bootstrap writer, update broadcaster and the HTTP
// surface that serves the public directory and the update socket.
//
// A Server is the single context object owning every component; nothing in
// the pipeline is package-level state.
package devserver
