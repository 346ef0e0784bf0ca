package shmbuf

// consumerConfig holds the variadic options NewConsumer accepts.
type consumerConfig struct {
	sizeHint uint32
}

// ConsumerOption configures NewConsumer.
type ConsumerOption func(*consumerConfig)

// WithSizeHint supplies the total region size (header included) when
// the platform backend cannot auto-detect it (see region_windows.go).
// On backends that can auto-detect (region_unix.go, via file stat),
// passing 0 (the default) is the normal and recommended case.
func WithSizeHint(totalSize uint32) ConsumerOption {
	return func(c *consumerConfig) { c.sizeHint = totalSize }
}

// Consumer is the consumer-side channel facade of spec section 4.3. It
// opens an existing named region by name and binds a consumer-mode Ring
// View to it; it never initialises the header.
type Consumer struct {
	region regionProvider
	ring   *ring
	status Status
	err    error
	closed bool
}

// NewConsumer opens an existing named shared-memory region and binds a
// consumer-mode Ring View to it, reading the capacity the producer
// published rather than assuming one.
//
// Construction failures never panic: check IsValid (or Err) after the
// call. A non-valid Consumer is inert — every method is then a no-op
// returning its zero value, except ReadDetailed, which reports ReadEmpty.
func NewConsumer(name string, opts ...ConsumerOption) *Consumer {
	var cfg consumerConfig
	for _, o := range opts {
		o(&cfg)
	}

	region, err := openRegion(name, cfg.sizeHint)
	if err != nil {
		return &Consumer{status: statusOf(err), err: err}
	}

	rv, err := newConsumerRing(region.Base())
	if err != nil {
		region.Close()
		return &Consumer{status: statusOf(err), err: err}
	}

	return &Consumer{region: region, ring: rv, status: StatusOK}
}

// IsValid reports whether construction succeeded and the facade is
// usable.
func (c *Consumer) IsValid() bool { return c.status == StatusOK && !c.closed }

// Status returns the construction-time Status, StatusOK on success.
func (c *Consumer) Status() Status { return c.status }

// Err returns the construction error, or nil if IsValid.
func (c *Consumer) Err() error { return c.err }

// Capacity returns the data-area size read from the producer's header.
func (c *Consumer) Capacity() uint32 {
	if !c.IsValid() {
		return 0
	}
	return c.ring.Capacity()
}

// ReadableBytes returns the number of raw bytes currently occupied.
func (c *Consumer) ReadableBytes() uint32 {
	if !c.IsValid() {
		return 0
	}
	return c.ring.ReadableBytes()
}

// HasData reports whether at least a length prefix is available.
func (c *Consumer) HasData() bool {
	if !c.IsValid() {
		return false
	}
	return c.ring.HasData()
}

// Read copies the next frame's payload into dst, returning its length,
// or 0 if there is nothing to read right now. Per spec section 7.3, a
// 0 is deliberately ambiguous between "empty", "partial frame still
// being written", and "frame discarded because dst was too small" — use
// ReadDetailed to tell those apart.
func (c *Consumer) Read(dst []byte) int {
	if !c.IsValid() {
		return 0
	}
	return c.ring.Read(dst)
}

// ReadDetailed is the auxiliary API spec section 9 anticipates for
// callers that need to distinguish the cases Read conflates into 0.
func (c *Consumer) ReadDetailed(dst []byte) (int, ReadOutcome) {
	if !c.IsValid() {
		return 0, ReadEmpty
	}
	return c.ring.ReadDetailed(dst)
}

// Close unmaps the region. The consumer never owns the name, so Close
// never unlinks it.
func (c *Consumer) Close() error {
	if c.closed || c.region == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	return c.region.Close()
}
