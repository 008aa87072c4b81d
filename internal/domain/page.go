package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

func (p Page) Limit() int {
	return p.Normalize().Size
}

// List is one page of results plus the total count.
type List[T any] struct {
	Count int
	Items []T
}
