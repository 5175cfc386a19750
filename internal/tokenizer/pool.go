package tokenizer

import "context"

// Pool hands out sessions built from one Shared so that concurrent callers
// do not queue on a single session lock.
type Pool struct {
	shared   *Shared
	sessions chan *Session
}

// NewPool creates size sessions over sh. A size below one is treated as one.
func NewPool(sh *Shared, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		shared:   sh,
		sessions: make(chan *Session, size),
	}
	for range size {
		p.sessions <- sh.NewSession()
	}
	return p
}

// Size returns the number of sessions in the pool.
func (p *Pool) Size() int { return cap(p.sessions) }

// Shared returns the read-only state the pool's sessions share.
func (p *Pool) Shared() *Shared { return p.shared }

// Acquire waits for a free session or for ctx to end.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	select {
	case s := <-p.sessions:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns s to the pool.
func (p *Pool) Release(s *Session) {
	p.sessions <- s
}

// Tokenize runs TryTokenize on a pooled session.
func (p *Pool) Tokenize(ctx context.Context, text string) (*TokenList, error) {
	s, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(s)
	return s.TryTokenize(text)
}

// TokenizeToString runs TryTokenizeToString on a pooled session.
func (p *Pool) TokenizeToString(ctx context.Context, text string) (string, error) {
	s, err := p.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer p.Release(s)
	return s.TryTokenizeToString(text)
}

// Do runs fn with a pooled session.
func (p *Pool) Do(ctx context.Context, fn func(*Session) error) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(s)
	return fn(s)
}
