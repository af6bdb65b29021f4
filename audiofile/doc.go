// Package audiofile finds recordings on disk: the newest accepted audio
// file in a directory, or a newest-first listing of them. Directories are
// never searched recursively.
package audiofile
