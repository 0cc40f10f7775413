// Package api exposes the reelmux HTTP surface on an echo router.
//
// Routes:
//
//	POST    /api/merge    download a video and an audio URL, mux them and stream the MP4 back
//	OPTIONS /api/merge    CORS preflight
//	POST    /api/extract  resolve a page URL into downloadable medias through the provider chain
//	GET     /api/status   daemon, dependency and preflight report
//
// Every response carries permissive CORS headers. Failures are JSON bodies of
// the form {"error": "...", "details": "..."}; validation failures map to 400,
// extraction failures to 502 and everything else to 500. Requests are rate
// limited per client IP when api.requests_per_second is positive.
package api
