/*
Package linereader publishes the lines of a backing resource with the
backpressure and cancellation rules of package reactive.

A Resource opens a Handle for a locator; the Handle yields one line per
ReadLine until io.EOF. Each subscription owns exactly one handle:

  - the handle is opened on the first Request, never twice;
  - each Request reads at most as many lines as it was granted;
  - end of resource closes the handle, then signals OnComplete;
  - a read failure closes the handle (best effort), then signals OnError
    with the original cause; a failing close is attached as CloseErr;
  - Cancel closes the handle before returning when no read is in flight,
    otherwise right after the in-flight read, and nothing more is read.

Blank lines:

A blank or whitespace-only line ends the sequence just like end of
resource. Content after an embedded blank line is therefore never emitted.
Set Config.KeepBlankLines to emit blank lines as items instead.

Resources:

	FileResource       local files, one line per item
	ReaderResource     any io.ReadCloser returned by an opener function
	RedisListResource  elements of a Redis list, fetched in LRANGE pages

Example:

	pub, err := linereader.File("orders.txt")
	if err != nil {
		return err
	}
	c := subscriber.NewCollector[string](0)
	pub.Subscribe(c)
	c.Request(1) // opens orders.txt and emits its first line

Request may block on I/O. Moving that onto a worker goroutine is the
caller's job; see package demand.
*/
package linereader
