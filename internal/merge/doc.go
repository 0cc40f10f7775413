// Package merge implements the download-and-remux operation behind
// POST /api/merge and `reelmux merge`.
//
// A merge validates the two source URLs, downloads both into request-owned
// temporary files concurrently, stream-copies them into one MP4 with ffmpeg,
// optionally verifies the result with ffprobe, and hands the open file to a
// caller-supplied delivery function. Every temporary file is removed after
// delivery returns, on success and on failure alike.
package merge
