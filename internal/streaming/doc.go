/*
Package streaming delivers stored images to HTTP clients.

# Asset delivery

AssetStreamer.Send validates a file before any byte of it is sent:

  - missing, unreadable or non-regular files get 404
  - files whose sniffed content is not an image get 500
  - files larger than MaxSize (10 MiB by default) get 413

Successful responses carry the sniffed Content-Type, an inline
Content-Disposition with a sanitized filename, Content-Length and a fixed set
of hardening headers (nosniff, DENY framing, no referrer and a sandboxing
Content-Security-Policy). HEAD requests receive the headers only.

	streamer := streaming.NewAssetStreamer(cfg.MaxAssetSize)
	if err := streamer.Send(w, r, fullPath, ""); err != nil {
		logging.Warn("asset %s: %v", fullPath, err)
	}

Send never resolves paths itself; callers must confine the path to the
gallery first.

# Timeout protection

Bodies are written through a TimeoutWriter, which bounds each write by
WriteTimeout, cancels the stream after IdleTimeout without progress and
splits large writes into flushed chunks. A client that disconnects surfaces
as ErrClientGone, a stalled one as ErrWriteTimeout.

	written, err := streaming.Copy(r.Context(), w, file, streaming.DefaultWriterConfig())
*/
package streaming
