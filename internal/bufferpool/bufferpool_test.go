package bufferpool

import "testing"

func TestGetReturnsRequestedSize(t *testing.T) {
	p := New(2, 128)
	buf := p.Get()
	defer p.Put(buf)

	if len(buf) != 128 {
		t.Errorf("len(buf) = %d, want 128", len(buf))
	}
}

func TestPoolRecyclesBuffers(t *testing.T) {
	p := New(1, 64)
	first := p.Get()
	p.Put(first)
	second := p.Get()

	if &first[0] != &second[0] {
		t.Error("expected Get after Put to return the same underlying buffer")
	}
}

func TestGetBlocksUntilPut(t *testing.T) {
	p := New(1, 16)
	buf := p.Get()

	done := make(chan struct{})
	go func() {
		p.Get()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Get returned before a buffer was available")
	default:
	}

	p.Put(buf)
	<-done
}
