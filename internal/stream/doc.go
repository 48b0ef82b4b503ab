// Package stream tracks video streams opened by device connect callbacks.
//
// Device callbacks open streams (RTSP restreams, recording sinks) when a
// camera connects. Those streams outlive any single poll cycle and must all
// be destroyed during shutdown, before camera handles are torn down. The
// registry collects them so the fleet manager can destroy them in one call.
//
//	registry := stream.NewRegistry()
//
//	// inside a device OnConnect callback:
//	registry.Register("cam-entrance", "cam-entrance/h264", sink.Close)
//
//	// during shutdown (invoked by the fleet manager):
//	err := registry.DestroyAllStreams()
package stream
