// Command reelmux is the command-line front end for the reelmux merge and
// extraction services.
//
// It can run the HTTP daemon in the foreground (serve), resolve a page URL
// into downloadable medias (extract), merge a video-only and an audio-only
// stream into one MP4 on disk (merge), report daemon and dependency health
// (status), and manage the configuration file and temp directory.
package main
