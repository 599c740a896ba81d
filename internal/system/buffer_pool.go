package system

import (
	"bytes"
	"sync"
)

// maxPooledBuffer keeps one oversized upload from pinning its memory forever.
const maxPooledBuffer = 16 << 20

// BufferPool переиспользует bytes.Buffer для загрузок и симуляций,
// чтобы снизить нагрузку на Garbage Collector (GC).
type BufferPool struct {
	pool sync.Pool
}

var globalPool = &BufferPool{
	pool: sync.Pool{New: func() interface{} { return new(bytes.Buffer) }},
}

// GetBuffer возвращает пустой буфер из пула.
func GetBuffer() *bytes.Buffer {
	return globalPool.Get()
}

// PutBuffer возвращает буфер в пул для повторного использования.
func PutBuffer(b *bytes.Buffer) {
	globalPool.Put(b)
}

func (p *BufferPool) Get() *bytes.Buffer {
	b := p.pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

func (p *BufferPool) Put(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxPooledBuffer {
		return
	}
	p.pool.Put(b)
}
