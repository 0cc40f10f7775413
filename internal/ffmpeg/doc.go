// Package ffmpeg multiplexes a video-only and an audio-only file into a single
// MP4 container by stream copy.
//
// The argument list is assembled with ffmpeg-go and executed through
// exec.CommandContext so request cancellation kills the child process. The
// binary path is supplied by the caller; nothing here reads global state.
package ffmpeg
