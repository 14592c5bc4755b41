// Package watch turns filesystem activity under the source root into Events
// for the rebuild scheduler.
//
// A recursive fsnotify watcher is the primary source. Hidden files, editor
// swap files and .gitignore'd paths are dropped. Where inotify is not
// available a gocron job polls the tree and emits synthetic change events.
package watch
