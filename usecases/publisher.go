package usecases

// Publisher broadcasts cache invalidation keys to connected clients.
type Publisher interface {
	Publish(key ...string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(...string) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
